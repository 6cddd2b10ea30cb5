package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competition-voting/internal/domain"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
)

func seedCompetition(t *testing.T, s *Store, id string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, s.CreateCompetition(context.Background(), &catalog.Competition{
		ID:          id,
		Title:       "Competition " + id,
		Status:      catalog.StatusActive,
		StartDate:   now,
		EndDate:     now.Add(24 * time.Hour),
		VotingRules: catalog.VotingRules{MaxVotesPerUser: 1},
	}))
}

func seedContestant(t *testing.T, s *Store, id, competitionID string) {
	t.Helper()
	require.NoError(t, s.CreateContestant(context.Background(), &catalog.Contestant{
		ID:            id,
		CompetitionID: competitionID,
		Name:          "Contestant " + id,
		IsActive:      true,
	}))
}

func TestStore_ContestantCounters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedCompetition(t, s, "c1")
	seedCompetition(t, s, "c2")
	seedContestant(t, s, "p1", "c1")
	seedContestant(t, s, "p2", "c1")

	c1, err := s.GetCompetition(ctx, "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, c1.TotalContestants)

	moved, err := s.GetContestant(ctx, "p2")
	require.NoError(t, err)
	moved.CompetitionID = "c2"
	require.NoError(t, s.UpdateContestant(ctx, moved))

	c1, _ = s.GetCompetition(ctx, "c1")
	c2, _ := s.GetCompetition(ctx, "c2")
	assert.EqualValues(t, 1, c1.TotalContestants)
	assert.EqualValues(t, 1, c2.TotalContestants)

	require.NoError(t, s.DeleteContestant(ctx, "p1"))
	c1, _ = s.GetCompetition(ctx, "c1")
	assert.EqualValues(t, 0, c1.TotalContestants)

	err = s.DeleteContestant(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpdateContestantUnknownCompetition(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedCompetition(t, s, "c1")
	seedContestant(t, s, "p1", "c1")

	p, _ := s.GetContestant(ctx, "p1")
	p.CompetitionID = "missing"
	err := s.UpdateContestant(ctx, p)
	assert.ErrorIs(t, err, catalog.ErrCompetitionNotFound)

	c1, _ := s.GetCompetition(ctx, "c1")
	assert.EqualValues(t, 1, c1.TotalContestants)
}

func TestStore_DeleteCompetitionCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedCompetition(t, s, "c1")
	seedCompetition(t, s, "c2")
	seedContestant(t, s, "p1", "c1")
	seedContestant(t, s, "p2", "c2")
	seedContestant(t, s, "p3", "c1")

	require.NoError(t, s.Record(ctx, &ledger.Record{
		Vote:     ledger.Vote{ID: "v1", UserID: "u1", CompetitionID: "c1", ContestantID: "p1"},
		MaxVotes: 1,
	}))
	require.NoError(t, s.DeleteCompetition(ctx, "c1"))

	_, err := s.GetCompetition(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	left, err := s.ListContestants(ctx, catalog.ContestantFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "p2", left[0].ID)

	votes, err := s.ListVotes(ctx, ledger.VoteFilter{})
	require.NoError(t, err)
	assert.Len(t, votes, 1, "votes survive catalog deletes")
}

func TestStore_RecordUpdatesCountersAndHistory(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedCompetition(t, s, "c1")
	seedContestant(t, s, "p1", "c1")

	_, err := s.GetHistory(ctx, "u1", "c1")
	assert.ErrorIs(t, err, ledger.ErrHistoryNotFound)

	txID := "tx_1"
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.AppendTransaction(ctx, ledger.Transaction{
		ID: txID, UserID: "u1", CompetitionID: "c1", ContestantID: "p1",
		Amount: decimal.NewFromInt(20), PaymentMethod: "card", Status: ledger.StatusCompleted,
	}))
	require.NoError(t, s.Record(ctx, &ledger.Record{
		Vote: ledger.Vote{
			ID: "v1", UserID: "u1", CompetitionID: "c1", ContestantID: "p1",
			TransactionID: &txID, Timestamp: ts,
		},
		MaxVotes: 3,
	}))

	c1, _ := s.GetCompetition(ctx, "c1")
	p1, _ := s.GetContestant(ctx, "p1")
	assert.EqualValues(t, 1, c1.TotalVotes)
	assert.EqualValues(t, 1, p1.Votes)

	h, err := s.GetHistory(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, h.VotesUsed)
	assert.Equal(t, 3, h.MaxVotes)
	assert.Equal(t, ts, h.LastVoteDate)

	txs, err := s.ListTransactions(ctx, ledger.TransactionFilter{Method: "card"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(20)))
}

func TestStore_RecordUnknownContestantWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedCompetition(t, s, "c1")

	err := s.Record(ctx, &ledger.Record{
		Vote:     ledger.Vote{ID: "v1", UserID: "u1", CompetitionID: "c1", ContestantID: "nope"},
		MaxVotes: 1,
	})
	assert.ErrorIs(t, err, catalog.ErrContestantNotFound)

	votes, _ := s.ListVotes(ctx, ledger.VoteFilter{})
	assert.Empty(t, votes)
	_, err = s.GetHistory(ctx, "u1", "c1")
	assert.ErrorIs(t, err, ledger.ErrHistoryNotFound)
}

func TestStore_RecordRefusesPastLimit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedCompetition(t, s, "c1")
	seedContestant(t, s, "p1", "c1")

	rec := func(id string) *ledger.Record {
		return &ledger.Record{
			Vote:     ledger.Vote{ID: id, UserID: "u1", CompetitionID: "c1", ContestantID: "p1"},
			MaxVotes: 2,
		}
	}
	require.NoError(t, s.Record(ctx, rec("v1")))
	require.NoError(t, s.Record(ctx, rec("v2")))
	assert.ErrorIs(t, s.Record(ctx, rec("v3")), ledger.ErrVoteLimitReached)

	p1, _ := s.GetContestant(ctx, "p1")
	assert.EqualValues(t, 2, p1.Votes)
	h, err := s.GetHistory(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, h.VotesUsed)
}

func TestStore_ListCompetitionsFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedCompetition(t, s, "c1")
	seedCompetition(t, s, "c2")

	c2, _ := s.GetCompetition(ctx, "c2")
	c2.Status = catalog.StatusEnded
	require.NoError(t, s.UpdateCompetition(ctx, c2))

	ended := catalog.StatusEnded
	got, err := s.ListCompetitions(ctx, catalog.CompetitionFilter{Status: &ended})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)

	all, err := s.ListCompetitions(ctx, catalog.CompetitionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c1", all[0].ID, "insertion order")
}
