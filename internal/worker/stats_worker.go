package worker

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"competition-voting/internal/metrics"
)

// VoteEvent is published after a vote has been recorded.
type VoteEvent struct {
	CompetitionID string
	ContestantID  string
	UserID        string
	// Method and Amount are empty for free votes.
	Method string
	Amount decimal.Decimal
}

type StatsWorker struct {
	Ch  <-chan VoteEvent
	log *zap.Logger
}

func NewStatsWorker(ch <-chan VoteEvent, log *zap.Logger) *StatsWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsWorker{Ch: ch, log: log}
}

func (w *StatsWorker) Run(ctx context.Context) {
	w.log.Info("stats worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("stats worker stopped")
			return
		case ev, ok := <-w.Ch:
			if !ok {
				w.log.Info("stats worker channel closed")
				return
			}
			w.handle(ev)
		}
	}
}

func (w *StatsWorker) handle(ev VoteEvent) {
	paid := ev.Method != ""
	metrics.IncVote(ev.CompetitionID, paid)
	if paid {
		metrics.AddRevenue(ev.Method, ev.Amount.InexactFloat64())
	}
	w.log.Debug("vote event processed",
		zap.String("competition_id", ev.CompetitionID),
		zap.String("contestant_id", ev.ContestantID),
		zap.Bool("paid", paid))
}
