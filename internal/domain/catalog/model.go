package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusEnded:
		return true
	}
	return false
}

type VotingRules struct {
	MaxVotesPerUser int             `json:"max_votes_per_user"`
	RequirePayment  bool            `json:"require_payment"`
	VotePrice       decimal.Decimal `json:"vote_price"`
}

type Competition struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	CoverImage       string      `json:"cover_image"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	Status           Status      `json:"status"`
	VotingRules      VotingRules `json:"voting_rules"`
	TotalVotes       int64       `json:"total_votes"`
	TotalContestants int64       `json:"total_contestants"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type Contestant struct {
	ID            string    `json:"id"`
	CompetitionID string    `json:"competition_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Photo         string    `json:"photo"`
	Category      string    `json:"category"`
	IsActive      bool      `json:"is_active"`
	Votes         int64     `json:"votes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CompetitionInput carries the administrator-editable fields of a Competition.
type CompetitionInput struct {
	Title       string
	Description string
	CoverImage  string
	StartDate   time.Time
	EndDate     time.Time
	Status      Status
	VotingRules VotingRules
}

// ContestantInput carries the administrator-editable fields of a Contestant.
type ContestantInput struct {
	CompetitionID string
	Name          string
	Description   string
	Photo         string
	Category      string
	IsActive      bool
}

type CompetitionFilter struct {
	Status *Status
	Search string
}

type ContestantFilter struct {
	CompetitionID string
	Search        string
	ActiveOnly    bool
}

// Repository persists the catalog. Implementations own the denormalized
// counters: CreateContestant, UpdateContestant and DeleteContestant adjust
// Competition.TotalContestants in the same operation, DeleteCompetition
// removes the competition's contestants.
type Repository interface {
	CreateCompetition(ctx context.Context, c *Competition) error
	GetCompetition(ctx context.Context, id string) (*Competition, error)
	ListCompetitions(ctx context.Context, f CompetitionFilter) ([]Competition, error)
	UpdateCompetition(ctx context.Context, c *Competition) error
	DeleteCompetition(ctx context.Context, id string) error

	CreateContestant(ctx context.Context, c *Contestant) error
	GetContestant(ctx context.Context, id string) (*Contestant, error)
	ListContestants(ctx context.Context, f ContestantFilter) ([]Contestant, error)
	UpdateContestant(ctx context.Context, c *Contestant) error
	DeleteContestant(ctx context.Context, id string) error
}
