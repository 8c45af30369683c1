package repository

import (
	"context"
	"testing"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"
	"arena-ledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher buffers events like the production transactional publisher
type recordingPublisher struct {
	pending   []events.Event
	flushed   []events.Event
	discarded int
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *recordingPublisher) Discard() {
	p.discarded += len(p.pending)
	p.pending = nil
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	t.Run("commit persists and flushes", func(t *testing.T) {
		publisher := &recordingPublisher{}
		uow := NewUnitOfWork(testDB.DB, publisher)
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.UserRepository().EnsureExists(ctx, "committed"))
		require.NoError(t, uow.EventBus().Publish(events.TournamentClosedEvent{TournamentID: 1}))
		assert.Empty(t, publisher.flushed, "nothing leaves before commit")

		require.NoError(t, uow.Commit())
		assert.Len(t, publisher.flushed, 1)

		user, err := NewUserRepository(testDB.DB).GetByID(ctx, "committed")
		require.NoError(t, err)
		assert.NotNil(t, user)
	})

	t.Run("rollback discards", func(t *testing.T) {
		publisher := &recordingPublisher{}
		uow := NewUnitOfWork(testDB.DB, publisher)
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.UserRepository().EnsureExists(ctx, "rolled-back"))
		_, _, err := uow.HouseWalletRepository().Adjust(ctx, entities.CurrencyCash, 500)
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.TournamentClosedEvent{TournamentID: 2}))

		require.NoError(t, uow.Rollback())
		require.NoError(t, uow.Rollback(), "rollback is idempotent")
		assert.Empty(t, publisher.flushed)
		assert.Equal(t, 1, publisher.discarded)

		user, err := NewUserRepository(testDB.DB).GetByID(ctx, "rolled-back")
		require.NoError(t, err)
		assert.Nil(t, user)

		house, err := NewHouseWalletRepository(testDB.DB).Get(ctx)
		require.NoError(t, err)
		assert.Zero(t, house.Cash)
	})

	t.Run("getters panic before begin", func(t *testing.T) {
		uow := NewUnitOfWork(testDB.DB, &recordingPublisher{})
		assert.Panics(t, func() { uow.MatchRepository() })
		assert.Error(t, uow.Commit())
	})
}
