package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"competition-voting/internal/domain"
)

type Request struct {
	UserID        string
	CompetitionID string
	ContestantID  string
	Amount        decimal.Decimal
	Method        Method
}

type Receipt struct {
	TransactionID string
	SettledAt     time.Time
}

// Settler moves money for a paid vote. Errors that should be shown to the
// voter as a declined payment wrap domain.ErrPaymentFailed.
type Settler interface {
	Settle(ctx context.Context, req Request) (Receipt, error)
}

// SimulatedSettler stands in for a payment gateway: it waits Delay and
// always succeeds.
type SimulatedSettler struct {
	Delay time.Duration
	now   func() time.Time
}

func NewSimulatedSettler(delay time.Duration) *SimulatedSettler {
	return &SimulatedSettler{Delay: delay, now: time.Now}
}

func (s *SimulatedSettler) Settle(ctx context.Context, req Request) (Receipt, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, fmt.Errorf("settle %s payment: %w", req.Method.Name(), ctx.Err())
		case <-t.C:
		}
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return Receipt{
		TransactionID: "tx_" + uuid.NewString(),
		SettledAt:     now().UTC(),
	}, nil
}

// Declined builds a payment failure with the gateway's reason.
func Declined(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrPaymentFailed, reason)
}
