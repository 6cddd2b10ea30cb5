package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competition-voting/internal/domain"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/repository/memory"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func competitionInput() catalog.CompetitionInput {
	return catalog.CompetitionInput{
		Title:       "Voice",
		Description: "Singing contest",
		CoverImage:  "https://example.com/cover.jpg",
		StartDate:   start,
		EndDate:     start.Add(30 * 24 * time.Hour),
		VotingRules: catalog.VotingRules{MaxVotesPerUser: 3},
	}
}

func contestantInput(competitionID string) catalog.ContestantInput {
	return catalog.ContestantInput{
		CompetitionID: competitionID,
		Name:          "Amina",
		Description:   "Soprano",
		Photo:         "https://example.com/amina.jpg",
		Category:      "Vocal",
		IsActive:      true,
	}
}

func invalidField(t *testing.T, err error) string {
	t.Helper()
	require.ErrorIs(t, err, domain.ErrValidation)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve.Field
}

func TestCreateCompetition_DefaultsToDraft(t *testing.T) {
	svc := catalog.NewService(memory.NewStore(), nil)

	in := competitionInput()
	in.Title = "  Voice  "
	c, err := svc.CreateCompetition(context.Background(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, catalog.StatusDraft, c.Status)
	assert.Equal(t, "Voice", c.Title)
	assert.Zero(t, c.TotalVotes)
	assert.Zero(t, c.TotalContestants)
}

func TestCreateCompetition_Validation(t *testing.T) {
	svc := catalog.NewService(memory.NewStore(), nil)

	tests := []struct {
		name  string
		edit  func(in *catalog.CompetitionInput)
		field string
	}{
		{"blank title", func(in *catalog.CompetitionInput) { in.Title = " " }, "title"},
		{"missing cover", func(in *catalog.CompetitionInput) { in.CoverImage = "" }, "cover_image"},
		{"end before start", func(in *catalog.CompetitionInput) { in.EndDate = in.StartDate }, "end_date"},
		{"unknown status", func(in *catalog.CompetitionInput) { in.Status = "paused" }, "status"},
		{"zero limit", func(in *catalog.CompetitionInput) { in.VotingRules.MaxVotesPerUser = 0 }, "max_votes_per_user"},
		{"negative price", func(in *catalog.CompetitionInput) { in.VotingRules.VotePrice = decimal.NewFromInt(-1) }, "vote_price"},
		{"paid without price", func(in *catalog.CompetitionInput) { in.VotingRules.RequirePayment = true }, "vote_price"},
		{"sub-cent price", func(in *catalog.CompetitionInput) {
			in.VotingRules.RequirePayment = true
			in.VotingRules.VotePrice = decimal.RequireFromString("0.004")
		}, "vote_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := competitionInput()
			tt.edit(&in)
			_, err := svc.CreateCompetition(context.Background(), in)
			assert.Equal(t, tt.field, invalidField(t, err))
		})
	}
}

func TestUpdateCompetition_KeepsCounters(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore(), nil)

	c, err := svc.CreateCompetition(ctx, competitionInput())
	require.NoError(t, err)
	_, err = svc.CreateContestant(ctx, contestantInput(c.ID))
	require.NoError(t, err)

	in := competitionInput()
	in.Title = "Voice 2025"
	in.Status = catalog.StatusActive
	in.VotingRules = catalog.VotingRules{MaxVotesPerUser: 5, RequirePayment: true, VotePrice: decimal.NewFromInt(20)}
	updated, err := svc.UpdateCompetition(ctx, c.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Voice 2025", updated.Title)
	assert.Equal(t, catalog.StatusActive, updated.Status)
	assert.EqualValues(t, 1, updated.TotalContestants)
	assert.True(t, updated.VotingRules.VotePrice.Equal(decimal.NewFromInt(20)))

	_, err = svc.UpdateCompetition(ctx, "missing", in)
	assert.ErrorIs(t, err, catalog.ErrCompetitionNotFound)
}

func TestListCompetitions_StatusAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore(), nil)

	in := competitionInput()
	in.Status = catalog.StatusActive
	_, err := svc.CreateCompetition(ctx, in)
	require.NoError(t, err)
	in = competitionInput()
	in.Title = "Dance Off"
	_, err = svc.CreateCompetition(ctx, in)
	require.NoError(t, err)

	active := catalog.StatusActive
	got, err := svc.ListCompetitions(ctx, catalog.CompetitionFilter{Status: &active})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Voice", got[0].Title)

	got, err = svc.ListCompetitions(ctx, catalog.CompetitionFilter{Search: "dance"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dance Off", got[0].Title)

	bad := catalog.Status("paused")
	_, err = svc.ListCompetitions(ctx, catalog.CompetitionFilter{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateContestant_RequiresCompetition(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore(), nil)

	_, err := svc.CreateContestant(ctx, contestantInput("missing"))
	assert.Equal(t, "competition_id", invalidField(t, err))

	c, err := svc.CreateCompetition(ctx, competitionInput())
	require.NoError(t, err)
	in := contestantInput(c.ID)
	in.Category = ""
	_, err = svc.CreateContestant(ctx, in)
	assert.Equal(t, "category", invalidField(t, err))
}

func TestUpdateContestant_MovesBetweenCompetitions(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore(), nil)

	a, err := svc.CreateCompetition(ctx, competitionInput())
	require.NoError(t, err)
	b, err := svc.CreateCompetition(ctx, competitionInput())
	require.NoError(t, err)
	x, err := svc.CreateContestant(ctx, contestantInput(a.ID))
	require.NoError(t, err)

	in := contestantInput(b.ID)
	in.IsActive = false
	moved, err := svc.UpdateContestant(ctx, x.ID, in)
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.CompetitionID)
	assert.False(t, moved.IsActive)

	a, err = svc.GetCompetition(ctx, a.ID)
	require.NoError(t, err)
	b, err = svc.GetCompetition(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, a.TotalContestants)
	assert.EqualValues(t, 1, b.TotalContestants)

	visible, err := svc.ListContestantsForCompetition(ctx, b.ID, true)
	require.NoError(t, err)
	assert.Empty(t, visible)
	all, err := svc.ListContestantsForCompetition(ctx, b.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.UpdateContestant(ctx, x.ID, contestantInput("missing"))
	assert.Equal(t, "competition_id", invalidField(t, err))
}

func TestDeleteCompetition_RemovesContestants(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore(), nil)

	c, err := svc.CreateCompetition(ctx, competitionInput())
	require.NoError(t, err)
	x, err := svc.CreateContestant(ctx, contestantInput(c.ID))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCompetition(ctx, c.ID))
	_, err = svc.GetContestant(ctx, x.ID)
	assert.ErrorIs(t, err, catalog.ErrContestantNotFound)
	assert.ErrorIs(t, svc.DeleteCompetition(ctx, c.ID), domain.ErrNotFound)
}

func TestCreateCompetition_AcceptsCentPrice(t *testing.T) {
	svc := catalog.NewService(memory.NewStore(), nil)

	in := competitionInput()
	in.VotingRules.RequirePayment = true
	in.VotingRules.VotePrice = decimal.RequireFromString("0.50")
	c, err := svc.CreateCompetition(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, c.VotingRules.VotePrice.Equal(decimal.RequireFromString("0.5")))
}

func TestListContestantsForCompetition_RequiresID(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(memory.NewStore(), nil)

	c, err := svc.CreateCompetition(ctx, competitionInput())
	require.NoError(t, err)
	_, err = svc.CreateContestant(ctx, contestantInput(c.ID))
	require.NoError(t, err)

	got, err := svc.ListContestantsForCompetition(ctx, " ", false)
	assert.Equal(t, "competition_id", invalidField(t, err))
	assert.Nil(t, got)
}
