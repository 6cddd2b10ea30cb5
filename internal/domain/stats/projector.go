// Package stats derives read-only views over the catalog and the ledger.
package stats

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
)

// Projector never writes to either store.
type Projector struct {
	catalog catalog.Repository
	ledger  ledger.Repository
}

func NewProjector(cat catalog.Repository, led ledger.Repository) *Projector {
	return &Projector{catalog: cat, ledger: led}
}

func (p *Projector) CompetitionStats(ctx context.Context, competitionID string) (*CompetitionStats, error) {
	if _, err := p.catalog.GetCompetition(ctx, competitionID); err != nil {
		return nil, err
	}

	votes, err := p.ledger.ListVotes(ctx, ledger.VoteFilter{CompetitionID: competitionID})
	if err != nil {
		return nil, err
	}
	txs, err := p.ledger.ListTransactions(ctx, ledger.TransactionFilter{CompetitionID: competitionID})
	if err != nil {
		return nil, err
	}
	contestants, err := p.catalog.ListContestants(ctx, catalog.ContestantFilter{
		CompetitionID: competitionID,
		ActiveOnly:    true,
	})
	if err != nil {
		return nil, err
	}

	voters := make(map[string]struct{}, len(votes))
	for _, v := range votes {
		voters[v.UserID] = struct{}{}
	}

	return &CompetitionStats{
		CompetitionID:     competitionID,
		TotalVotes:        len(votes),
		TotalRevenue:      completedRevenue(txs),
		ActiveContestants: len(contestants),
		TotalTransactions: len(txs),
		UniqueVoters:      len(voters),
	}, nil
}

// Dashboard builds the admin overview. Totals always cover everything; the
// rankings are narrowed to competitionID when it is set.
func (p *Projector) Dashboard(ctx context.Context, competitionID string) (*Dashboard, error) {
	if competitionID != "" {
		if _, err := p.catalog.GetCompetition(ctx, competitionID); err != nil {
			return nil, err
		}
	}

	comps, err := p.catalog.ListCompetitions(ctx, catalog.CompetitionFilter{})
	if err != nil {
		return nil, err
	}
	contestants, err := p.catalog.ListContestants(ctx, catalog.ContestantFilter{})
	if err != nil {
		return nil, err
	}
	txs, err := p.ledger.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		CompetitionID: competitionID,
		Totals: Totals{
			TotalRevenue:     completedRevenue(txs),
			TotalContestants: len(contestants),
		},
	}
	for _, c := range comps {
		d.Totals.TotalVotes += c.TotalVotes
		if c.Status == catalog.StatusActive {
			d.Totals.ActiveCompetitions++
		}
	}

	scopedComps := comps
	scopedTxs := txs
	if competitionID != "" {
		scopedComps = filterCompetitions(comps, competitionID)
		scopedTxs = filterTransactions(txs, competitionID)
	}
	active := make([]catalog.Contestant, 0, len(contestants))
	for _, c := range contestants {
		if c.IsActive && (competitionID == "" || c.CompetitionID == competitionID) {
			active = append(active, c)
		}
	}

	d.TopCompetitions = TopCompetitions(scopedComps, TopN)
	d.TopContestants = TopContestants(active, TopN)

	names := newNameIndex(comps, contestants)
	recent := RecentTransactions(scopedTxs, TopN)
	d.RecentTransactions = make([]TransactionView, 0, len(recent))
	for _, t := range recent {
		d.RecentTransactions = append(d.RecentTransactions, names.view(t))
	}
	return d, nil
}

// ContestantShares lists active contestants with their share of the votes
// cast for active contestants in the same scope, most voted first.
func (p *Projector) ContestantShares(ctx context.Context, competitionID string) ([]ContestantShare, error) {
	contestants, err := p.catalog.ListContestants(ctx, catalog.ContestantFilter{
		CompetitionID: competitionID,
		ActiveOnly:    true,
	})
	if err != nil {
		return nil, err
	}
	txs, err := p.ledger.ListTransactions(ctx, ledger.TransactionFilter{CompetitionID: competitionID})
	if err != nil {
		return nil, err
	}

	revenue := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Status == ledger.StatusCompleted {
			revenue[t.ContestantID] = revenue[t.ContestantID].Add(t.Amount)
		}
	}

	var total int64
	for _, c := range contestants {
		total += c.Votes
	}

	ranked := TopContestants(contestants, len(contestants))
	shares := make([]ContestantShare, 0, len(ranked))
	for _, c := range ranked {
		shares = append(shares, ContestantShare{
			ContestantID:  c.ID,
			CompetitionID: c.CompetitionID,
			Name:          c.Name,
			Category:      c.Category,
			Votes:         c.Votes,
			Percentage:    Percentage(c.Votes, total),
			Revenue:       revenue[c.ID],
		})
	}
	return shares, nil
}

// TransactionLog returns the matching transactions, newest first.
func (p *Projector) TransactionLog(ctx context.Context, f LogFilter) ([]TransactionView, error) {
	txs, err := p.ledger.ListTransactions(ctx, ledger.TransactionFilter{
		CompetitionID: f.CompetitionID,
		Status:        f.Status,
		Method:        f.Method,
	})
	if err != nil {
		return nil, err
	}
	names, err := p.names(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	views := make([]TransactionView, 0, len(txs))
	for _, t := range RecentTransactions(txs, len(txs)) {
		v := names.view(t)
		if term != "" && !v.matches(term) {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// TransactionSummary counts every transaction in the ledger by status.
func (p *Projector) TransactionSummary(ctx context.Context) (*Summary, error) {
	txs, err := p.ledger.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	s := &Summary{Total: len(txs), TotalRevenue: completedRevenue(txs)}
	for _, t := range txs {
		switch t.Status {
		case ledger.StatusCompleted:
			s.Completed++
		case ledger.StatusPending:
			s.Pending++
		case ledger.StatusFailed:
			s.Failed++
		}
	}
	return s, nil
}

func (p *Projector) names(ctx context.Context) (*nameIndex, error) {
	comps, err := p.catalog.ListCompetitions(ctx, catalog.CompetitionFilter{})
	if err != nil {
		return nil, err
	}
	contestants, err := p.catalog.ListContestants(ctx, catalog.ContestantFilter{})
	if err != nil {
		return nil, err
	}
	return newNameIndex(comps, contestants), nil
}

// TopCompetitions sorts by total votes, keeping input order among ties.
func TopCompetitions(comps []catalog.Competition, n int) []catalog.Competition {
	out := append([]catalog.Competition(nil), comps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalVotes > out[j].TotalVotes })
	return head(out, n)
}

// TopContestants sorts by votes, keeping input order among ties.
func TopContestants(contestants []catalog.Contestant, n int) []catalog.Contestant {
	out := append([]catalog.Contestant(nil), contestants...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Votes > out[j].Votes })
	return head(out, n)
}

// RecentTransactions sorts newest first, keeping input order among ties.
func RecentTransactions(txs []ledger.Transaction, n int) []ledger.Transaction {
	out := append([]ledger.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return head(out, n)
}

// Percentage is part/total*100, or 0 when total is 0.
func Percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func completedRevenue(txs []ledger.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Status == ledger.StatusCompleted {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

func filterCompetitions(comps []catalog.Competition, id string) []catalog.Competition {
	out := make([]catalog.Competition, 0, 1)
	for _, c := range comps {
		if c.ID == id {
			out = append(out, c)
		}
	}
	return out
}

func filterTransactions(txs []ledger.Transaction, competitionID string) []ledger.Transaction {
	f := ledger.TransactionFilter{CompetitionID: competitionID}
	out := make([]ledger.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

type nameIndex struct {
	competitions map[string]string
	contestants  map[string]string
}

func newNameIndex(comps []catalog.Competition, contestants []catalog.Contestant) *nameIndex {
	idx := &nameIndex{
		competitions: make(map[string]string, len(comps)),
		contestants:  make(map[string]string, len(contestants)),
	}
	for _, c := range comps {
		idx.competitions[c.ID] = c.Title
	}
	for _, c := range contestants {
		idx.contestants[c.ID] = c.Name
	}
	return idx
}

func (idx *nameIndex) view(t ledger.Transaction) TransactionView {
	v := TransactionView{
		Transaction:     t,
		ContestantName:  UnknownName,
		CompetitionName: UnknownName,
	}
	if name, ok := idx.contestants[t.ContestantID]; ok {
		v.ContestantName = name
	}
	if name, ok := idx.competitions[t.CompetitionID]; ok {
		v.CompetitionName = name
	}
	return v
}

// matches expects term to be lower-cased already.
func (v TransactionView) matches(term string) bool {
	return strings.Contains(strings.ToLower(v.ContestantName), term) ||
		strings.Contains(strings.ToLower(v.ID), term) ||
		(v.Phone != "" && strings.Contains(v.Phone, term))
}
