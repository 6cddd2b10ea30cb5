// Package memory holds the in-process store used by default and in tests.
package memory

import (
	"context"
	"sync"

	"competition-voting/internal/domain/admin"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
)

// Store keeps every collection in insertion order behind one lock, which
// makes ledger.Repository.Record atomic with respect to the catalog counters.
type Store struct {
	mu           sync.RWMutex
	competitions []*catalog.Competition
	contestants  []*catalog.Contestant
	votes        []ledger.Vote
	transactions []ledger.Transaction
	history      map[historyKey]*ledger.History
	admins       map[string]admin.Admin
}

type historyKey struct {
	userID        string
	competitionID string
}

var (
	_ catalog.Repository = (*Store)(nil)
	_ ledger.Repository  = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		history: make(map[historyKey]*ledger.History),
		admins:  make(map[string]admin.Admin),
	}
}

func (s *Store) CreateCompetition(ctx context.Context, c *catalog.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyComp := *c
	copyComp.TotalVotes = 0
	copyComp.TotalContestants = 0
	s.competitions = append(s.competitions, &copyComp)
	c.TotalVotes, c.TotalContestants = 0, 0
	return nil
}

func (s *Store) GetCompetition(ctx context.Context, id string) (*catalog.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.competition(id)
	if c == nil {
		return nil, catalog.ErrCompetitionNotFound
	}
	copyComp := *c
	return &copyComp, nil
}

func (s *Store) ListCompetitions(ctx context.Context, f catalog.CompetitionFilter) ([]catalog.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := []catalog.Competition{}
	for _, c := range s.competitions {
		if f.Match(*c) {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (s *Store) UpdateCompetition(ctx context.Context, c *catalog.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.competition(c.ID)
	if stored == nil {
		return catalog.ErrCompetitionNotFound
	}
	stored.Title = c.Title
	stored.Description = c.Description
	stored.CoverImage = c.CoverImage
	stored.StartDate = c.StartDate
	stored.EndDate = c.EndDate
	stored.Status = c.Status
	stored.VotingRules = c.VotingRules
	stored.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *Store) DeleteCompetition(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, c := range s.competitions {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return catalog.ErrCompetitionNotFound
	}
	s.competitions = append(s.competitions[:idx], s.competitions[idx+1:]...)

	kept := s.contestants[:0]
	for _, c := range s.contestants {
		if c.CompetitionID != id {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(s.contestants); i++ {
		s.contestants[i] = nil
	}
	s.contestants = kept
	return nil
}

func (s *Store) CreateContestant(ctx context.Context, c *catalog.Contestant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp := s.competition(c.CompetitionID)
	if comp == nil {
		return catalog.ErrCompetitionNotFound
	}
	copyContestant := *c
	copyContestant.Votes = 0
	s.contestants = append(s.contestants, &copyContestant)
	comp.TotalContestants++
	c.Votes = 0
	return nil
}

func (s *Store) GetContestant(ctx context.Context, id string) (*catalog.Contestant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.contestant(id)
	if c == nil {
		return nil, catalog.ErrContestantNotFound
	}
	copyContestant := *c
	return &copyContestant, nil
}

func (s *Store) ListContestants(ctx context.Context, f catalog.ContestantFilter) ([]catalog.Contestant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := []catalog.Contestant{}
	for _, c := range s.contestants {
		if f.Match(*c) {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (s *Store) UpdateContestant(ctx context.Context, c *catalog.Contestant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.contestant(c.ID)
	if stored == nil {
		return catalog.ErrContestantNotFound
	}
	if stored.CompetitionID != c.CompetitionID {
		to := s.competition(c.CompetitionID)
		if to == nil {
			return catalog.ErrCompetitionNotFound
		}
		if from := s.competition(stored.CompetitionID); from != nil && from.TotalContestants > 0 {
			from.TotalContestants--
		}
		to.TotalContestants++
	}
	stored.CompetitionID = c.CompetitionID
	stored.Name = c.Name
	stored.Description = c.Description
	stored.Photo = c.Photo
	stored.Category = c.Category
	stored.IsActive = c.IsActive
	stored.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *Store) DeleteContestant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.contestants {
		if c.ID != id {
			continue
		}
		if comp := s.competition(c.CompetitionID); comp != nil && comp.TotalContestants > 0 {
			comp.TotalContestants--
		}
		s.contestants = append(s.contestants[:i], s.contestants[i+1:]...)
		return nil
	}
	return catalog.ErrContestantNotFound
}

func (s *Store) AppendTransaction(ctx context.Context, t ledger.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *Store) Record(ctx context.Context, rec *ledger.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	comp := s.competition(rec.Vote.CompetitionID)
	if comp == nil {
		return catalog.ErrCompetitionNotFound
	}
	contestant := s.contestant(rec.Vote.ContestantID)
	if contestant == nil {
		return catalog.ErrContestantNotFound
	}

	key := historyKey{userID: rec.Vote.UserID, competitionID: rec.Vote.CompetitionID}
	h, ok := s.history[key]
	if ok && rec.MaxVotes > 0 && h.VotesUsed >= rec.MaxVotes {
		return ledger.ErrVoteLimitReached
	}
	if !ok {
		h = &ledger.History{UserID: key.userID, CompetitionID: key.competitionID}
		s.history[key] = h
	}

	s.votes = append(s.votes, rec.Vote)
	contestant.Votes++
	comp.TotalVotes++
	h.VotesUsed++
	h.MaxVotes = rec.MaxVotes
	h.LastVoteDate = rec.Vote.Timestamp
	return nil
}

func (s *Store) GetHistory(ctx context.Context, userID, competitionID string) (*ledger.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.history[historyKey{userID: userID, competitionID: competitionID}]
	if !ok {
		return nil, ledger.ErrHistoryNotFound
	}
	copyHistory := *h
	return &copyHistory, nil
}

func (s *Store) ListVotes(ctx context.Context, f ledger.VoteFilter) ([]ledger.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := []ledger.Vote{}
	for _, v := range s.votes {
		if f.Match(v) {
			res = append(res, v)
		}
	}
	return res, nil
}

func (s *Store) ListTransactions(ctx context.Context, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := []ledger.Transaction{}
	for _, t := range s.transactions {
		if f.Match(t) {
			res = append(res, t)
		}
	}
	return res, nil
}

func (s *Store) competition(id string) *catalog.Competition {
	for _, c := range s.competitions {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) contestant(id string) *catalog.Contestant {
	for _, c := range s.contestants {
		if c.ID == id {
			return c
		}
	}
	return nil
}
