package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	importapp "github.com/stockledger/backend/internal/application/import"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts         []*s3.PutObjectInput
	bodies       [][]byte
	putErr       error
	headErr      error
	createErr    error
	createCalled bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalled = true
	return &s3.CreateBucketOutput{}, f.createErr
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)
}

func TestS3UploadArchive_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("puts the sheet under a dated key", func(t *testing.T) {
		fake := &fakeS3{}
		archive := newS3UploadArchive(fake, "ledger-uploads", "/imports/", WithClock(fixedClock))

		key, err := archive.Archive(ctx, importapp.KindInward, 42, `C:\Users\store\March receipts.xlsx`, []byte("sheet-bytes"))
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(key, "imports/inward/2024/03/09/42-"), key)
		assert.True(t, strings.HasSuffix(key, "-March_receipts.xlsx"), key)
		require.Len(t, fake.puts, 1)
		put := fake.puts[0]
		assert.Equal(t, "ledger-uploads", aws.ToString(put.Bucket))
		assert.Equal(t, key, aws.ToString(put.Key))
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", aws.ToString(put.ContentType))
		assert.Equal(t, int64(11), aws.ToInt64(put.ContentLength))
		assert.Equal(t, "42", put.Metadata["register-id"])
		assert.Equal(t, []byte("sheet-bytes"), fake.bodies[0])
	})

	t.Run("csv without prefix", func(t *testing.T) {
		fake := &fakeS3{}
		archive := newS3UploadArchive(fake, "b", "", WithClock(fixedClock))

		key, err := archive.Archive(ctx, importapp.KindOutward, 7, "out.csv", []byte("a,b"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "outward/2024/03/09/7-"), key)
		assert.Equal(t, "text/csv", aws.ToString(fake.puts[0].ContentType))
	})

	t.Run("upload failure", func(t *testing.T) {
		archive := newS3UploadArchive(&fakeS3{putErr: errors.New("boom")}, "b", "")
		_, err := archive.Archive(ctx, importapp.KindInward, 1, "a.csv", nil)
		assert.ErrorContains(t, err, "failed to upload object")
	})
}

func TestS3UploadArchive_EnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("existing bucket", func(t *testing.T) {
		fake := &fakeS3{}
		require.NoError(t, newS3UploadArchive(fake, "b", "").EnsureBucket(ctx))
		assert.False(t, fake.createCalled)
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		fake := &fakeS3{headErr: &types.NotFound{}}
		require.NoError(t, newS3UploadArchive(fake, "b", "").EnsureBucket(ctx))
		assert.True(t, fake.createCalled)
	})

	t.Run("creation race is tolerated", func(t *testing.T) {
		fake := &fakeS3{headErr: &types.NoSuchBucket{}, createErr: &types.BucketAlreadyOwnedByYou{}}
		assert.NoError(t, newS3UploadArchive(fake, "b", "").EnsureBucket(ctx))
	})

	t.Run("other head errors surface", func(t *testing.T) {
		fake := &fakeS3{headErr: errors.New("forbidden")}
		assert.Error(t, newS3UploadArchive(fake, "b", "").EnsureBucket(ctx))
		assert.False(t, fake.createCalled)
	})
}

func TestNewS3UploadArchive(t *testing.T) {
	_, err := NewS3UploadArchive(context.Background(), config.StorageConfig{})
	assert.ErrorContains(t, err, "bucket is required")

	archive, err := NewS3UploadArchive(context.Background(), config.StorageConfig{
		Bucket:          "ledger",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Prefix:          "imports",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ledger", archive.bucket)
	assert.Equal(t, "imports", archive.prefix)
}

func TestMemoryArchive(t *testing.T) {
	archive := NewMemoryArchive()
	data := []byte("row")

	key, err := archive.Archive(context.Background(), importapp.KindInward, 3, "../etc/in.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "inward/3/in.csv", key)

	data[0] = 'X'
	got, ok := archive.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("row"), got)
	assert.Equal(t, 1, archive.Len())
}
