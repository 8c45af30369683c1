package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"arena-ledger/application"
	"arena-ledger/config"
	"arena-ledger/database"
	"arena-ledger/domain/events"
	"arena-ledger/domain/services"
	"arena-ledger/infrastructure"
	"arena-ledger/repository/testutil"

	"github.com/stretchr/testify/require"
)

// eventRecorder collects events after their unit of work committed
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []events.Event
	for _, event := range r.events {
		if event.Type() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type testApp struct {
	db          *database.DB
	ledger      *application.LedgerService
	matches     *application.MatchService
	tournaments *application.TournamentService
	referrals   *application.ReferralService
	deposits    *application.DepositService
	worker      *application.TournamentSettlementWorker
	recorder    *eventRecorder
}

// setupTestApp wires the application services to a fresh Postgres container
func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := config.Get()
	testDB := testutil.SetupTestDatabase(t)

	publisher := infrastructure.NewNATSEventPublisher(nil, infrastructure.NewEventSubjectMapper())
	uowFactory := infrastructure.NewUnitOfWorkFactory(testDB.DB, publisher)
	recorder := &eventRecorder{}
	for _, eventType := range []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeMatchSettled,
		events.EventTypeTournamentClosed,
		events.EventTypePrizesDistributed,
		events.EventTypeReferralRewarded,
		events.EventTypeDepositConfirmed,
	} {
		uowFactory.RegisterLocalHandler(eventType, recorder.handle)
	}

	games := services.NewGameRegistry(cfg.SupportedGames...)
	rewards := application.ReferralRewards{Referrer: cfg.ReferrerReward, Referee: cfg.RefereeReward}

	referrals := application.NewReferralService(uowFactory, rewards, cfg.SettlementTimeout)
	tournaments := application.NewTournamentService(uowFactory, games, cfg.SettlementTimeout)

	return &testApp{
		db:          testDB.DB,
		ledger:      application.NewLedgerService(uowFactory, cfg.SettlementTimeout),
		matches:     application.NewMatchService(uowFactory, games, cfg.SettlementTimeout),
		tournaments: tournaments,
		referrals:   referrals,
		deposits:    application.NewDepositService(uowFactory, referrals, cfg.SettlementTimeout),
		worker:      application.NewTournamentSettlementWorker(tournaments, time.Hour),
		recorder:    recorder,
	}
}

// countByReference returns how many ledger entries carry reference
func (a *testApp) countByReference(t *testing.T, reference string) int {
	t.Helper()

	var count int
	err := a.db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM wallet_transactions WHERE reference = $1`, reference,
	).Scan(&count)
	require.NoError(t, err)
	return count
}

// requireBalanced checks the stored balances of accountID against its ledger
func (a *testApp) requireBalanced(t *testing.T, accountID string) {
	t.Helper()

	results, err := a.ledger.Reconcile(context.Background(), accountID)
	require.NoError(t, err)
	for _, r := range results {
		require.Truef(t, r.Balanced(), "%s %s: stored %d, ledger %d", r.AccountID, r.Currency, r.Stored, r.Ledger)
	}
}
