package shared

// BaseAggregateRoot carries the optimistic-lock version of an aggregate and
// the events it raised since it was loaded. Events are drained by the
// application layer once the surrounding transaction commits.
type BaseAggregateRoot struct {
	BaseEntity
	// Version starts at 1 and grows by one per persisted mutation
	Version int           `gorm:"not null;default:1"`
	pending []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot creates an unsaved aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// BumpVersion marks one more mutation
func (a *BaseAggregateRoot) BumpVersion() {
	a.Version++
}

// Raise queues an event for publication after commit
func (a *BaseAggregateRoot) Raise(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PendingEvents returns the queued events in the order they were raised
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// ClearEvents drops the queued events
func (a *BaseAggregateRoot) ClearEvents() {
	a.pending = nil
}
