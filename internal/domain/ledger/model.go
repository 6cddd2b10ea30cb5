package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"competition-voting/internal/domain"
)

var (
	ErrHistoryNotFound  = domain.NotFound("vote history")
	ErrVoteLimitReached = fmt.Errorf("vote limit reached for this competition: %w", domain.ErrLimitExceeded)
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Vote is append-only.
type Vote struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CompetitionID string    `json:"competition_id"`
	ContestantID  string    `json:"contestant_id"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	IPAddress     string    `json:"ip_address"`
	Verified      bool      `json:"verified"`
}

// Transaction is a payment backing a paid vote. Card details are never stored.
type Transaction struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	CompetitionID string            `json:"competition_id"`
	ContestantID  string            `json:"contestant_id"`
	Amount        decimal.Decimal   `json:"amount"`
	PaymentMethod string            `json:"payment_method"`
	Status        TransactionStatus `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Phone         string            `json:"phone,omitempty"`
	IPAddress     string            `json:"ip_address"`
}

// History is the running per-user, per-competition tally.
type History struct {
	UserID        string    `json:"user_id"`
	CompetitionID string    `json:"competition_id"`
	VotesUsed     int       `json:"votes_used"`
	MaxVotes      int       `json:"max_votes"`
	LastVoteDate  time.Time `json:"last_vote_date"`
}

// Record is everything a vote writes. MaxVotes is the limit in force when the
// vote was cast; Record refuses the vote once the voter's history reaches it.
type Record struct {
	Vote     Vote
	MaxVotes int
}

type VoteFilter struct {
	CompetitionID string
	ContestantID  string
	UserID        string
}

func (f VoteFilter) Match(v Vote) bool {
	return (f.CompetitionID == "" || v.CompetitionID == f.CompetitionID) &&
		(f.ContestantID == "" || v.ContestantID == f.ContestantID) &&
		(f.UserID == "" || v.UserID == f.UserID)
}

type TransactionFilter struct {
	CompetitionID string
	ContestantID  string
	Status        *TransactionStatus
	Method        string
}

func (f TransactionFilter) Match(t Transaction) bool {
	return (f.CompetitionID == "" || t.CompetitionID == f.CompetitionID) &&
		(f.ContestantID == "" || t.ContestantID == f.ContestantID) &&
		(f.Status == nil || t.Status == *f.Status) &&
		(f.Method == "" || t.PaymentMethod == f.Method)
}

// Repository is the ledger store. AppendTransaction stores a settled payment on
// its own, so a payment is kept even when its vote cannot be recorded. Record is
// atomic: it appends the vote, bumps the contestant's and competition's vote
// counters by one and upserts the voter's history, or writes nothing at all.
// Lists return rows in insertion order.
type Repository interface {
	AppendTransaction(ctx context.Context, t Transaction) error
	Record(ctx context.Context, rec *Record) error
	GetHistory(ctx context.Context, userID, competitionID string) (*History, error)
	ListVotes(ctx context.Context, f VoteFilter) ([]Vote, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]Transaction, error)
}
