package inventory

import (
	"context"
	"errors"
	"fmt"

	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	"github.com/stockledger/backend/internal/domain/fleet"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OutwardService records consumption against existing lots
type OutwardService struct {
	runner *ledgerRunner
	logger *zap.Logger
}

// NewOutwardService creates an OutwardService
func NewOutwardService(scope TransactionScope, units *appcatalog.UnitResolver, events shared.EventPublisher, logger *zap.Logger, opts LedgerOptions) *OutwardService {
	r := newLedgerRunner(scope, units, events, logger, opts)
	return &OutwardService{runner: r, logger: r.logger}
}

// CreateOutward records an outward register.
//
// Every referenced lot is locked in ascending id order before any balance
// is checked. If any line cannot be covered the register is rejected and
// no lot changes. When the header names a vehicle, a usage entry is written
// in the same transaction.
func (s *OutwardService) CreateOutward(ctx context.Context, req CreateOutwardRequest) (*OutwardResult, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(inventory.CodeInvalidQuantity, "Outward has no lines")
	}
	for i, line := range req.Lines {
		if !line.Quantity.IsPositive() {
			return nil, wrapLineError(i, line.SourceRow, inventory.NewInvalidQuantityError(line.Quantity))
		}
	}

	result := &OutwardResult{}
	err := s.runner.run(ctx, "create_outward", func(ctx context.Context, l *ledger) error {
		lotIDs := make([]uint64, len(req.Lines))
		for i, line := range req.Lines {
			id, err := l.resolveLot(ctx, line.Lot)
			if err != nil {
				return wrapLineError(i, line.SourceRow, err)
			}
			lotIDs[i] = id
		}
		if err := l.lock(ctx, inventory.SortedUniqueIDs(lotIDs)); err != nil {
			return err
		}

		if id := req.Header.VehicleID; id != nil {
			if _, err := l.repos.Vehicles().FindByID(ctx, *id); err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return fleet.NewVehicleNotFoundError(*id)
				}
				return fmt.Errorf("find vehicle: %w", err)
			}
		}

		register := inventory.NewOutwardRegister(req.Header)
		if err := l.repos.Outwards().CreateRegister(ctx, register); err != nil {
			return fmt.Errorf("create outward register: %w", err)
		}
		result.OutwardID = register.ID

		exhausted := make(map[uint64]struct{})
		for i, line := range req.Lines {
			_, lot, err := l.applyOutward(ctx, register.ID, lotIDs[i], line)
			if err != nil {
				return wrapLineError(i, line.SourceRow, err)
			}
			result.LinesApplied++
			if lot.IsExhausted() {
				if _, ok := exhausted[lot.ID]; !ok {
					exhausted[lot.ID] = struct{}{}
					result.ExhaustedLotIDs = append(result.ExhaustedLotIDs, lot.ID)
				}
			}
		}

		if register.VehicleID != nil {
			usage := fleet.NewOutwardUsage(*register.VehicleID, register.ID, register.OutwardDate,
				register.SalesCategory, register.InchargePerson)
			if err := l.repos.Vehicles().CreateUsage(ctx, usage); err != nil {
				return fmt.Errorf("log vehicle usage: %w", err)
			}
			result.VehicleUsageID = &usage.ID
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("outward rejected", zap.Error(err))
		return nil, err
	}

	s.logger.Info("outward committed",
		zap.Uint64("outward_id", result.OutwardID),
		zap.Int("lines", result.LinesApplied),
		zap.Uint64s("exhausted_lots", result.ExhaustedLotIDs),
	)
	return result, nil
}
