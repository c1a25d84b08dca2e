package inventory

import (
	"context"
	"errors"
	"time"

	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrTransactionTimeout is returned when a ledger transaction exceeds its deadline.
// The transaction has been rolled back when this is returned.
var ErrTransactionTimeout = shared.NewDomainError("TRANSACTION_TIMEOUT", "Ledger transaction timed out and was rolled back")

// LedgerOptions configures how processors run their transactions
type LedgerOptions struct {
	TxTimeout       time.Duration
	UnitPolicy      catalog.UnitPolicy
	DefaultLocation string
}

// DefaultLedgerOptions returns the options used when none are configured
func DefaultLedgerOptions() LedgerOptions {
	return LedgerOptions{
		TxTimeout:       30 * time.Second,
		UnitPolicy:      catalog.UnitPolicyConvert,
		DefaultLocation: inventory.DefaultLocation,
	}
}

func (o LedgerOptions) normalized() LedgerOptions {
	def := DefaultLedgerOptions()
	if o.TxTimeout <= 0 {
		o.TxTimeout = def.TxTimeout
	}
	if o.UnitPolicy == "" {
		o.UnitPolicy = def.UnitPolicy
	}
	if o.DefaultLocation == "" {
		o.DefaultLocation = def.DefaultLocation
	}
	return o
}

// ledgerRunner runs ledger work in a bounded transaction and publishes the
// collected domain events once it has committed.
type ledgerRunner struct {
	scope  TransactionScope
	units  *appcatalog.UnitResolver
	events shared.EventPublisher
	logger *zap.Logger
	opts   LedgerOptions
}

func newLedgerRunner(scope TransactionScope, units *appcatalog.UnitResolver, events shared.EventPublisher, logger *zap.Logger, opts LedgerOptions) *ledgerRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ledgerRunner{
		scope:  scope,
		units:  units,
		events: events,
		logger: logger,
		opts:   opts.normalized(),
	}
}

func (r *ledgerRunner) run(ctx context.Context, op string, fn func(ctx context.Context, l *ledger) error) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", op,
		telemetry.WithAttribute(telemetry.SpanAttrUnitPolicy, string(r.opts.UnitPolicy)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	// The unit snapshot is taken before the transaction opens; the catalog
	// is read-only for the ledger.
	idx, err := r.units.Load(ctx)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, r.opts.TxTimeout)
	defer cancel()

	var events []shared.DomainEvent
	err = r.scope.Execute(txCtx, func(repos TransactionalRepositories) error {
		l := newLedger(repos, idx, r.opts.UnitPolicy, r.opts.DefaultLocation)
		if err := fn(txCtx, l); err != nil {
			return err
		}
		events = l.events()
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(txCtx.Err(), context.DeadlineExceeded) {
			return ErrTransactionTimeout.WithDetail("timeout", r.opts.TxTimeout.String())
		}
		return err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrEventCount, len(events))
	r.publish(ctx, events)
	return nil
}

func (r *ledgerRunner) publish(ctx context.Context, events []shared.DomainEvent) {
	if r.events == nil || len(events) == 0 {
		return
	}
	if err := r.events.Publish(ctx, events...); err != nil {
		r.logger.Error("failed to publish ledger events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
