// Package storage keeps copies of applied spreadsheet uploads in object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	importapp "github.com/stockledger/backend/internal/application/import"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ importapp.UploadArchive = (*S3UploadArchive)(nil)

// objectAPI is the part of the S3 client the archive needs
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3UploadArchive stores uploads in an S3 compatible bucket (AWS S3, MinIO, RustFS)
type S3UploadArchive struct {
	client objectAPI
	bucket string
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// S3UploadArchiveOption is a functional option for configuring S3UploadArchive
type S3UploadArchiveOption func(*S3UploadArchive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3UploadArchiveOption {
	return func(a *S3UploadArchive) {
		a.logger = logger
	}
}

// WithClock overrides the time source used for key date partitions
func WithClock(now func() time.Time) S3UploadArchiveOption {
	return func(a *S3UploadArchive) {
		a.now = now
	}
}

// NewS3UploadArchive creates an archive from configuration
func NewS3UploadArchive(ctx context.Context, cfg config.StorageConfig, opts ...S3UploadArchiveOption) (*S3UploadArchive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3UploadArchive(client, cfg.Bucket, cfg.Prefix, opts...), nil
}

func newS3UploadArchive(client objectAPI, bucket, prefix string, opts ...S3UploadArchiveOption) *S3UploadArchive {
	a := &S3UploadArchive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *S3UploadArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads the raw sheet and returns its object key
func (a *S3UploadArchive) Archive(ctx context.Context, kind importapp.Kind, registerID uint64, filename string, data []byte) (string, error) {
	key := a.objectKey(kind, registerID, filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(filename)),
		Metadata: map[string]string{
			"register-kind": string(kind),
			"register-id":   fmt.Sprintf("%d", registerID),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	a.logger.Debug("archived upload",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return key, nil
}

// objectKey builds <prefix>/<kind>/<yyyy>/<mm>/<dd>/<register>-<uuid>-<file>
func (a *S3UploadArchive) objectKey(kind importapp.Kind, registerID uint64, filename string) string {
	base := sanitizeFilename(filename)
	day := a.now().UTC().Format("2006/01/02")
	name := fmt.Sprintf("%d-%s-%s", registerID, uuid.NewString(), base)
	if a.prefix == "" {
		return path.Join(string(kind), day, name)
	}
	return path.Join(a.prefix, string(kind), day, name)
}

func sanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xlsm":
		return "application/vnd.ms-excel.sheet.macroEnabled.12"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
