package domain

// AggregateRoot is the consistency boundary that repositories load and save.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	Version() int
}

// BaseAggregateRoot collects uncommitted events and tracks the stored version
// used for optimistic concurrency.
type BaseAggregateRoot struct {
	BaseEntity
	domainEvents []DomainEvent
	version      int
}

// NewBaseAggregateRoot wraps a new entity. Version 0 means "never persisted".
func NewBaseAggregateRoot(entity BaseEntity) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// DomainEvents returns the events raised since the last save.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the uncommitted events.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// AddDomainEvent records an event for the outbox.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// Version returns the version the aggregate was loaded at.
func (a *BaseAggregateRoot) Version() int {
	return a.version
}

// IsNew reports whether the aggregate has never been stored.
func (a *BaseAggregateRoot) IsNew() bool {
	return a.version == 0
}

// MarkPersisted is called by repositories after a successful write.
func (a *BaseAggregateRoot) MarkPersisted() {
	a.version++
}
