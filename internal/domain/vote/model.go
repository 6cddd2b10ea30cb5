package vote

import (
	"github.com/shopspring/decimal"

	"competition-voting/internal/domain/ledger"
	"competition-voting/internal/domain/payment"
)

type SubmitInput struct {
	UserID        string
	CompetitionID string
	ContestantID  string
	// Payment and Amount are required when the competition charges per vote
	// and ignored otherwise.
	Payment   payment.Method
	Amount    *decimal.Decimal
	IPAddress string
}

type Result struct {
	Vote        ledger.Vote         `json:"vote"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
	VotesUsed   int                 `json:"votes_used"`
	MaxVotes    int                 `json:"max_votes"`
}

// Eligibility is the read model behind the voter's "can I vote" check.
type Eligibility struct {
	CompetitionID  string `json:"competition_id"`
	CanVote        bool   `json:"can_vote"`
	VotesUsed      int    `json:"votes_used"`
	MaxVotes       int    `json:"max_votes"`
	RemainingVotes int    `json:"remaining_votes"`
}
