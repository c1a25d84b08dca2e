package inventory

import (
	"context"
	"fmt"

	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InwardService records receipts. Each register commits atomically: the
// header, every lot merge or creation, and every line, or nothing at all.
type InwardService struct {
	runner *ledgerRunner
	logger *zap.Logger
}

// NewInwardService creates an InwardService
func NewInwardService(scope TransactionScope, units *appcatalog.UnitResolver, events shared.EventPublisher, logger *zap.Logger, opts LedgerOptions) *InwardService {
	r := newLedgerRunner(scope, units, events, logger, opts)
	return &InwardService{runner: r, logger: r.logger}
}

// CreateInward records an inward register.
//
// Lines with zero quantity are skipped. A negative quantity rejects the whole
// register. A line that carries a barcode or IMEI already known to the ledger
// tops that lot up; otherwise a new lot is created.
func (s *InwardService) CreateInward(ctx context.Context, req CreateInwardRequest) (*InwardResult, error) {
	purchaseType, err := inventory.ParsePurchaseType(req.PurchaseType)
	if err != nil {
		return nil, err
	}

	lines, positions, skipped, err := selectInwardLines(req.Lines)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(inventory.CodeInvalidQuantity, "Inward has no line with a positive quantity")
	}

	result := &InwardResult{LinesSkipped: skipped}
	err = s.runner.run(ctx, "create_inward", func(ctx context.Context, l *ledger) error {
		if err := l.prelockInward(ctx, lines, positions); err != nil {
			return err
		}

		register := inventory.NewInwardRegister(req.InwardDate, purchaseType, req.ReceivedBy, req.Remarks)
		if err := l.repos.Inwards().CreateRegister(ctx, register); err != nil {
			return fmt.Errorf("create inward register: %w", err)
		}
		result.InwardID = register.ID

		seen := make(map[uint64]struct{})
		for i, line := range lines {
			out, err := l.applyInward(ctx, register.ID, line)
			if err != nil {
				return wrapLineError(positions[i], line.SourceRow, err)
			}
			result.LinesApplied++
			if _, dup := seen[out.Lot.ID]; dup {
				continue
			}
			seen[out.Lot.ID] = struct{}{}
			if out.Created {
				result.CreatedLots = append(result.CreatedLots, out.Lot.ID)
			} else {
				result.UpdatedLots = append(result.UpdatedLots, out.Lot.ID)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("inward rejected", zap.Error(err))
		return nil, err
	}

	s.logger.Info("inward committed",
		zap.Uint64("inward_id", result.InwardID),
		zap.Int("lines", result.LinesApplied),
		zap.Int("created_lots", len(result.CreatedLots)),
	)
	return result, nil
}

// selectInwardLines drops zero-quantity lines and rejects negative ones.
// positions maps each kept line back to its index in the request.
func selectInwardLines(in []InwardLineInput) (lines []InwardLineInput, positions []int, skipped int, err error) {
	for i, line := range in {
		switch {
		case line.Quantity.IsNegative():
			return nil, nil, 0, wrapLineError(i, line.SourceRow, inventory.NewInvalidQuantityError(line.Quantity))
		case line.Quantity.IsZero():
			skipped++
		default:
			lines = append(lines, line)
			positions = append(positions, i)
		}
	}
	return lines, positions, skipped, nil
}
