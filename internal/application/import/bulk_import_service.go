// Package importapp applies uploaded inventory sheets to the ledger. An
// upload becomes one inward or outward register, committed all or nothing.
package importapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	sheetimport "github.com/stockledger/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// Kind is the register an upload is applied as
type Kind string

const (
	KindInward  Kind = "inward"
	KindOutward Kind = "outward"
)

// UploadArchive keeps a copy of an applied upload
type UploadArchive interface {
	Archive(ctx context.Context, kind Kind, registerID uint64, filename string, data []byte) (string, error)
}

// ImportRowError attributes an import failure to a spreadsheet row. It
// unwraps to the underlying domain error.
type ImportRowError struct {
	Row int
	Err error
}

// Error implements the error interface
func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Unwrap returns the underlying error
func (e *ImportRowError) Unwrap() error {
	return e.Err
}

// InwardImportRequest is an uploaded inward sheet with its header fields
type InwardImportRequest struct {
	Filename     string
	Data         []byte
	DefaultUnit  string
	InwardDate   time.Time
	PurchaseType string
	ReceivedBy   string
	Remarks      string
}

// OutwardImportRequest is an uploaded outward sheet with its header fields
type OutwardImportRequest struct {
	Filename    string
	Data        []byte
	DefaultUnit string
	Header      inventory.OutwardHeader
}

// ImportResult reports a committed upload
type ImportResult struct {
	RegisterID  uint64 `json:"register_id"`
	TotalRows   int    `json:"total_rows"`
	AppliedRows int    `json:"applied_rows"`
	SkippedRows int    `json:"skipped_rows"`
	ArchiveKey  string `json:"archive_key,omitempty"`
}

// BulkImportService turns uploaded sheets into ledger registers
type BulkImportService struct {
	inward   *appinv.InwardService
	outward  *appinv.OutwardService
	units    *appcatalog.UnitResolver
	archive  UploadArchive
	logger   *zap.Logger
	maxBytes int64
}

// NewBulkImportService creates a BulkImportService. archive may be nil.
func NewBulkImportService(
	inward *appinv.InwardService,
	outward *appinv.OutwardService,
	units *appcatalog.UnitResolver,
	archive UploadArchive,
	logger *zap.Logger,
	maxBytes int64,
) *BulkImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkImportService{
		inward:   inward,
		outward:  outward,
		units:    units,
		archive:  archive,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// ImportInward applies an inward sheet. Rows with a blank or non-positive
// quantity are skipped; any other failing row aborts the whole upload.
func (s *BulkImportService) ImportInward(ctx context.Context, req InwardImportRequest) (*ImportResult, error) {
	sheet, err := s.read(req.Filename, req.Data, colInwardQty)
	if err != nil {
		return nil, err
	}
	defaultUnit, err := s.defaultUnit(ctx, req.DefaultUnit)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{TotalRows: len(sheet.Rows)}
	lines := make([]appinv.InwardLineInput, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		line, ok, err := inwardLine(row, defaultUnit)
		if err != nil {
			return nil, &ImportRowError{Row: row.Number, Err: err}
		}
		if !ok {
			result.SkippedRows++
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		s.logger.Info("inward upload had no applicable rows", zap.String("file", req.Filename))
		return result, nil
	}

	res, err := s.inward.CreateInward(ctx, appinv.CreateInwardRequest{
		InwardDate:   req.InwardDate,
		PurchaseType: req.PurchaseType,
		ReceivedBy:   req.ReceivedBy,
		Remarks:      req.Remarks,
		Lines:        lines,
	})
	if err != nil {
		return nil, rowError(err)
	}
	result.RegisterID = res.InwardID
	result.AppliedRows = res.LinesApplied
	result.ArchiveKey = s.store(ctx, KindInward, res.InwardID, req.Filename, req.Data)

	s.logger.Info("inward upload applied",
		zap.String("file", req.Filename),
		zap.Uint64("inward_id", result.RegisterID),
		zap.Int("applied", result.AppliedRows),
		zap.Int("skipped", result.SkippedRows),
	)
	return result, nil
}

// ImportOutward applies an outward sheet under one outward register
func (s *BulkImportService) ImportOutward(ctx context.Context, req OutwardImportRequest) (*ImportResult, error) {
	sheet, err := s.read(req.Filename, req.Data, colOutwardQty)
	if err != nil {
		return nil, err
	}
	defaultUnit, err := s.defaultUnit(ctx, req.DefaultUnit)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{TotalRows: len(sheet.Rows)}
	lines := make([]appinv.OutwardLineInput, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		line, ok, err := outwardLine(row, defaultUnit)
		if err != nil {
			return nil, &ImportRowError{Row: row.Number, Err: err}
		}
		if !ok {
			result.SkippedRows++
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		s.logger.Info("outward upload had no applicable rows", zap.String("file", req.Filename))
		return result, nil
	}

	res, err := s.outward.CreateOutward(ctx, appinv.CreateOutwardRequest{Header: req.Header, Lines: lines})
	if err != nil {
		return nil, rowError(err)
	}
	result.RegisterID = res.OutwardID
	result.AppliedRows = res.LinesApplied
	result.ArchiveKey = s.store(ctx, KindOutward, res.OutwardID, req.Filename, req.Data)

	s.logger.Info("outward upload applied",
		zap.String("file", req.Filename),
		zap.Uint64("outward_id", result.RegisterID),
		zap.Int("applied", result.AppliedRows),
		zap.Int("skipped", result.SkippedRows),
	)
	return result, nil
}

func (s *BulkImportService) read(filename string, data []byte, qtyColumns []string) (*sheetimport.Sheet, error) {
	sheet, err := sheetimport.ReadSheet(filename, data, s.maxBytes)
	if err != nil {
		return nil, shared.NewDomainErrorWithDetails(sheetimport.Code(err), err.Error(),
			map[string]any{"file": filename})
	}
	if !sheet.HasColumn(qtyColumns...) {
		return nil, shared.NewDomainErrorWithDetails(sheetimport.ErrCodeImportMissingHeader,
			"Sheet has no quantity column", map[string]any{"expected": qtyColumns})
	}
	return sheet, nil
}

// defaultUnit resolves the upload-wide unit hint. An unknown hint is not an
// error; the per-row fallback chain continues without it.
func (s *BulkImportService) defaultUnit(ctx context.Context, hint string) (*uint64, error) {
	if hint == "" {
		return nil, nil
	}
	res, err := s.units.Resolve(ctx, hint)
	if err != nil {
		return nil, err
	}
	if !res.Found {
		s.logger.Warn("default unit not found, ignoring", zap.String("unit", hint))
		return nil, nil
	}
	return &res.UnitID, nil
}

// store archives the upload after commit. Failures are logged only; the
// register stays committed.
func (s *BulkImportService) store(ctx context.Context, kind Kind, registerID uint64, filename string, data []byte) string {
	if s.archive == nil {
		return ""
	}
	key, err := s.archive.Archive(ctx, kind, registerID, filename, data)
	if err != nil {
		s.logger.Warn("failed to archive upload",
			zap.String("kind", string(kind)),
			zap.Uint64("register_id", registerID),
			zap.Error(err),
		)
		return ""
	}
	return key
}

// rowError re-attributes a ledger line failure to its spreadsheet row
func rowError(err error) error {
	var lineErr *appinv.LineError
	if !errors.As(err, &lineErr) || lineErr.Kind != "row" {
		return err
	}
	inner := lineErr.Err
	if errors.Is(inner, inventory.ErrProductRequired) {
		inner = inventory.NewMalformedRowError(lineErr.Number, colProduct[0], "", "product id is required to create a new lot")
	}
	return &ImportRowError{Row: lineErr.Number, Err: inner}
}
