package infrastructure

import (
	"context"

	"arena-ledger/application"
	"arena-ledger/database"
	"arena-ledger/domain/events"
	"arena-ledger/domain/interfaces"
	"arena-ledger/infrastructure/observability"
	"arena-ledger/repository"

	log "github.com/sirupsen/logrus"
)

// UnitOfWorkFactory implements the application.UnitOfWorkFactory interface.
// Every unit of work gets its own transactional publisher in front of the shared event publisher.
type UnitOfWorkFactory struct {
	db             *database.DB
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db:             db,
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler registers a handler that will be invoked locally for committed events.
// Publishers without local dispatch drop the handler.
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	registry, ok := f.eventPublisher.(LocalHandlerRegistry)
	if !ok {
		log.WithField("eventType", eventType).Warn("Event publisher has no local dispatch, handler not registered")
		return
	}
	registry.RegisterLocalHandler(eventType, handler)
}

// Create creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return repository.NewUnitOfWork(f.db, NewNATSTransactionalPublisher(f.eventPublisher))
}

// RegisterLedgerMetrics counts committed ledger entries from balance change events
func RegisterLedgerMetrics(registry LocalHandlerRegistry) {
	registry.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			observability.GetMetrics().RecordLedgerEntry(string(e.TransactionType), string(e.Currency))
		}
		return nil
	})
}
