package application

import (
	"context"
	"sync"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"
	"arena-ledger/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// TournamentSettlementWorker starts due tournaments, closes expired ones and pays out
// completed tournaments that have not been distributed yet, including ones left over
// by a crash between close and payout
type TournamentSettlementWorker struct {
	tournaments *TournamentService
	interval    time.Duration
	now         func() time.Time
}

// NewTournamentSettlementWorker creates a new worker sweeping every interval
func NewTournamentSettlementWorker(tournaments *TournamentService, interval time.Duration) *TournamentSettlementWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TournamentSettlementWorker{
		tournaments: tournaments,
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the worker until ctx is done or the returned stop function is called.
// Stop returns once the sweep in flight has finished; calling it again is a no-op.
func (w *TournamentSettlementWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithField("interval", w.interval).Info("Tournament settlement worker started")

		for {
			w.Sweep(ctx)

			select {
			case <-ctx.Done():
				log.Info("Tournament settlement worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Tournament settlement worker shutting down (stop requested)...")
				return
			case <-time.After(w.interval):
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopChan) })
		<-done
	}
}

// Sweep does one pass over the tournaments that need attention. Each tournament is
// handled in its own unit of work; one failure does not stop the others.
func (w *TournamentSettlementWorker) Sweep(ctx context.Context) {
	now := w.now()

	dueToStart, err := w.tournaments.tournamentIDs(ctx, func(ctx context.Context, repo interfaces.TournamentRepository) ([]*entities.Tournament, error) {
		return repo.ListDueToStart(ctx, now)
	})
	if err != nil {
		log.WithError(err).Error("Failed to list tournaments due to start")
	}
	for _, id := range dueToStart {
		if _, err := w.tournaments.StartTournament(ctx, id); err != nil {
			log.WithFields(log.Fields{"tournamentID": id, "error": err}).Error("Failed to start tournament")
			continue
		}
		observability.GetMetrics().RecordWorkerSweep("start")
	}

	dueToClose, err := w.tournaments.tournamentIDs(ctx, func(ctx context.Context, repo interfaces.TournamentRepository) ([]*entities.Tournament, error) {
		return repo.ListDueToClose(ctx, now)
	})
	if err != nil {
		log.WithError(err).Error("Failed to list tournaments due to close")
	}
	for _, id := range dueToClose {
		_, closed, err := w.tournaments.CloseTournament(ctx, id)
		if err != nil {
			log.WithFields(log.Fields{"tournamentID": id, "error": err}).Error("Failed to close tournament")
			continue
		}
		if closed {
			observability.GetMetrics().RecordWorkerSweep("close")
		}
	}

	// Includes the tournaments closed above
	pending, err := w.tournaments.tournamentIDs(ctx, func(ctx context.Context, repo interfaces.TournamentRepository) ([]*entities.Tournament, error) {
		return repo.ListPendingDistribution(ctx)
	})
	if err != nil {
		log.WithError(err).Error("Failed to list tournaments pending distribution")
		return
	}
	for _, id := range pending {
		result, err := w.tournaments.DistributePrizes(ctx, id)
		if err != nil {
			log.WithFields(log.Fields{"tournamentID": id, "error": err}).Error("Failed to distribute prizes")
			continue
		}
		if !result.AlreadySettled && !result.Skipped {
			observability.GetMetrics().RecordWorkerSweep("distribute")
		}
	}

	if len(dueToStart)+len(dueToClose)+len(pending) > 0 {
		log.WithFields(log.Fields{
			"started":     len(dueToStart),
			"closed":      len(dueToClose),
			"distributed": len(pending),
		}).Info("Completed tournament settlement sweep")
	}
}
