package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
)

// UnknownName stands in for a contestant or competition that has been deleted
// since the vote or transaction was recorded.
const UnknownName = "Unknown"

// TopN is the length of every ranking on the dashboard.
const TopN = 5

type CompetitionStats struct {
	CompetitionID     string          `json:"competition_id"`
	TotalVotes        int             `json:"total_votes"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	ActiveContestants int             `json:"active_contestants"`
	TotalTransactions int             `json:"total_transactions"`
	UniqueVoters      int             `json:"unique_voters"`
}

type Totals struct {
	TotalVotes         int64           `json:"total_votes"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	ActiveCompetitions int             `json:"active_competitions"`
	TotalContestants   int             `json:"total_contestants"`
}

// TransactionView is a transaction with its references resolved for display.
type TransactionView struct {
	ledger.Transaction
	ContestantName  string `json:"contestant_name"`
	CompetitionName string `json:"competition_name"`
}

type Dashboard struct {
	CompetitionID      string                `json:"competition_id,omitempty"`
	Totals             Totals                `json:"totals"`
	TopCompetitions    []catalog.Competition `json:"top_competitions"`
	TopContestants     []catalog.Contestant  `json:"top_contestants"`
	RecentTransactions []TransactionView     `json:"recent_transactions"`
}

type ContestantShare struct {
	ContestantID  string          `json:"contestant_id"`
	CompetitionID string          `json:"competition_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Votes         int64           `json:"votes"`
	Percentage    float64         `json:"percentage"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type LogFilter struct {
	CompetitionID string
	Status        *ledger.TransactionStatus
	Method        string
	// Search matches the contestant name, transaction id or phone number.
	Search string
}

type Summary struct {
	Total        int             `json:"total"`
	Completed    int             `json:"completed"`
	Pending      int             `json:"pending"`
	Failed       int             `json:"failed"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// ExportFileName is the download name for a CSV export taken at t.
func ExportFileName(t time.Time) string {
	return "transactions_" + t.UTC().Format("2006-01-02") + ".csv"
}
