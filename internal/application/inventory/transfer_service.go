package inventory

import (
	"context"
	"fmt"

	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransferService moves lots between locations. A transfer never changes a
// lot's quantities.
type TransferService struct {
	runner    *ledgerRunner
	transfers inventory.StockTransferRepository
	logger    *zap.Logger
}

// NewTransferService creates a TransferService. transfers serves the
// read-only history outside of transactions.
func NewTransferService(scope TransactionScope, units *appcatalog.UnitResolver, transfers inventory.StockTransferRepository, events shared.EventPublisher, logger *zap.Logger, opts LedgerOptions) *TransferService {
	r := newLedgerRunner(scope, units, events, logger, opts)
	return &TransferService{runner: r, transfers: transfers, logger: r.logger}
}

// CreateTransfer relocates a lot and records the transfer. A lot that does
// not exist fails with LotNotFound and nothing is recorded.
func (s *TransferService) CreateTransfer(ctx context.Context, req CreateTransferRequest) (*TransferResult, error) {
	if req.ProductItemID == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product item ID is required")
	}

	result := &TransferResult{LotID: req.ProductItemID}
	err := s.runner.run(ctx, "create_transfer", func(ctx context.Context, l *ledger) error {
		lot, err := l.canonical(ctx, req.ProductItemID)
		if err != nil {
			return err
		}

		transfer, err := inventory.NewStockTransfer(lot, req.FromLocation, req.ToLocation, req.TransferBy, req.Remarks, req.TransferDate)
		if err != nil {
			return err
		}
		if err := l.store.Relocate(ctx, lot, transfer.ToLocation); err != nil {
			return err
		}
		l.touch(lot)

		if err := l.repos.Transfers().Create(ctx, transfer); err != nil {
			return fmt.Errorf("record transfer: %w", err)
		}
		result.TransferID = transfer.ID
		result.FromLocation = transfer.FromLocation
		result.ToLocation = transfer.ToLocation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lot transferred",
		zap.Uint64("lot_id", result.LotID),
		zap.String("from", result.FromLocation),
		zap.String("to", result.ToLocation),
	)
	return result, nil
}

// ListTransfers returns the transfer history, newest first
func (s *TransferService) ListTransfers(ctx context.Context, page, pageSize int) (shared.Paginated[inventory.StockTransfer], error) {
	filter := pageFilter(page, pageSize)
	items, total, err := s.transfers.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.StockTransfer]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
