package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"competition-voting/internal/domain"
)

// priceScale is the number of decimal places a vote price may carry.
const priceScale = 2

var (
	ErrCompetitionNotFound = domain.NotFound("competition")
	ErrContestantNotFound  = domain.NotFound("contestant")
)

// Service is the only writer of competitions and contestants.
type Service struct {
	repo  Repository
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Service) CreateCompetition(ctx context.Context, in CompetitionInput) (*Competition, error) {
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if err := validateCompetition(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &Competition{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		CoverImage:  strings.TrimSpace(in.CoverImage),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      in.Status,
		VotingRules: in.VotingRules,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCompetition(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("competition created", zap.String("competition_id", c.ID), zap.String("status", string(c.Status)))
	return c, nil
}

func (s *Service) GetCompetition(ctx context.Context, id string) (*Competition, error) {
	return s.repo.GetCompetition(ctx, id)
}

func (s *Service) ListCompetitions(ctx context.Context, f CompetitionFilter) ([]Competition, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, domain.Invalid("status", "must be one of draft, active, ended")
	}
	return s.repo.ListCompetitions(ctx, f)
}

// UpdateCompetition replaces the editable fields. Counters are left to the store.
func (s *Service) UpdateCompetition(ctx context.Context, id string, in CompetitionInput) (*Competition, error) {
	c, err := s.repo.GetCompetition(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = c.Status
	}
	if err := validateCompetition(in); err != nil {
		return nil, err
	}

	c.Title = strings.TrimSpace(in.Title)
	c.Description = strings.TrimSpace(in.Description)
	c.CoverImage = strings.TrimSpace(in.CoverImage)
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	c.Status = in.Status
	c.VotingRules = in.VotingRules
	c.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateCompetition(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetCompetition(ctx, id)
}

// DeleteCompetition removes the competition and all of its contestants.
// Votes and transactions that reference them are kept.
func (s *Service) DeleteCompetition(ctx context.Context, id string) error {
	if err := s.repo.DeleteCompetition(ctx, id); err != nil {
		return err
	}
	s.log.Info("competition deleted", zap.String("competition_id", id))
	return nil
}

func (s *Service) CreateContestant(ctx context.Context, in ContestantInput) (*Contestant, error) {
	if err := validateContestant(in); err != nil {
		return nil, err
	}
	if err := s.requireCompetition(ctx, in.CompetitionID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &Contestant{
		ID:            s.newID(),
		CompetitionID: in.CompetitionID,
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Photo:         strings.TrimSpace(in.Photo),
		Category:      strings.TrimSpace(in.Category),
		IsActive:      in.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateContestant(ctx, c); err != nil {
		return nil, contestantStoreError(err)
	}

	s.log.Info("contestant created",
		zap.String("contestant_id", c.ID),
		zap.String("competition_id", c.CompetitionID))
	return c, nil
}

func (s *Service) GetContestant(ctx context.Context, id string) (*Contestant, error) {
	return s.repo.GetContestant(ctx, id)
}

func (s *Service) ListContestants(ctx context.Context, f ContestantFilter) ([]Contestant, error) {
	return s.repo.ListContestants(ctx, f)
}

// ListContestantsForCompetition returns the competition's contestants in
// insertion order, optionally only those visible to voters.
func (s *Service) ListContestantsForCompetition(ctx context.Context, competitionID string, activeOnly bool) ([]Contestant, error) {
	if strings.TrimSpace(competitionID) == "" {
		return nil, domain.Invalid("competition_id", "is required")
	}
	return s.repo.ListContestants(ctx, ContestantFilter{
		CompetitionID: competitionID,
		ActiveOnly:    activeOnly,
	})
}

// UpdateContestant replaces the editable fields. Moving a contestant to another
// competition moves it between both competitions' contestant counts; its vote
// count stays with the contestant.
func (s *Service) UpdateContestant(ctx context.Context, id string, in ContestantInput) (*Contestant, error) {
	c, err := s.repo.GetContestant(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CompetitionID == "" {
		in.CompetitionID = c.CompetitionID
	}
	if err := validateContestant(in); err != nil {
		return nil, err
	}
	if in.CompetitionID != c.CompetitionID {
		if err := s.requireCompetition(ctx, in.CompetitionID); err != nil {
			return nil, err
		}
		s.log.Info("contestant moved",
			zap.String("contestant_id", id),
			zap.String("from", c.CompetitionID),
			zap.String("to", in.CompetitionID))
	}

	c.CompetitionID = in.CompetitionID
	c.Name = strings.TrimSpace(in.Name)
	c.Description = strings.TrimSpace(in.Description)
	c.Photo = strings.TrimSpace(in.Photo)
	c.Category = strings.TrimSpace(in.Category)
	c.IsActive = in.IsActive
	c.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateContestant(ctx, c); err != nil {
		return nil, contestantStoreError(err)
	}
	return s.repo.GetContestant(ctx, id)
}

func (s *Service) DeleteContestant(ctx context.Context, id string) error {
	if err := s.repo.DeleteContestant(ctx, id); err != nil {
		return err
	}
	s.log.Info("contestant deleted", zap.String("contestant_id", id))
	return nil
}

func (s *Service) requireCompetition(ctx context.Context, id string) error {
	_, err := s.repo.GetCompetition(ctx, id)
	if errors.Is(err, ErrCompetitionNotFound) {
		return domain.Invalid("competition_id", "must reference an existing competition")
	}
	return err
}

// The competition can disappear between the existence check and the write.
func contestantStoreError(err error) error {
	if errors.Is(err, ErrCompetitionNotFound) {
		return domain.Invalid("competition_id", "must reference an existing competition")
	}
	return err
}

func validateCompetition(in CompetitionInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return domain.Invalid("title", "is required")
	case strings.TrimSpace(in.Description) == "":
		return domain.Invalid("description", "is required")
	case strings.TrimSpace(in.CoverImage) == "":
		return domain.Invalid("cover_image", "is required")
	case in.StartDate.IsZero():
		return domain.Invalid("start_date", "is required")
	case in.EndDate.IsZero():
		return domain.Invalid("end_date", "is required")
	case !in.EndDate.After(in.StartDate):
		return domain.Invalid("end_date", "must be after start date")
	case !in.Status.Valid():
		return domain.Invalid("status", "must be one of draft, active, ended")
	case in.VotingRules.MaxVotesPerUser < 1:
		return domain.Invalid("max_votes_per_user", "must be at least 1")
	case in.VotingRules.VotePrice.IsNegative():
		return domain.Invalid("vote_price", "must not be negative")
	case !in.VotingRules.VotePrice.Equal(in.VotingRules.VotePrice.Round(priceScale)):
		return domain.Invalid("vote_price", "must have at most 2 decimal places")
	case in.VotingRules.RequirePayment && !in.VotingRules.VotePrice.IsPositive():
		return domain.Invalid("vote_price", "must be greater than 0 when payment is required")
	}
	return nil
}

func validateContestant(in ContestantInput) error {
	switch {
	case strings.TrimSpace(in.CompetitionID) == "":
		return domain.Invalid("competition_id", "is required")
	case strings.TrimSpace(in.Name) == "":
		return domain.Invalid("name", "is required")
	case strings.TrimSpace(in.Description) == "":
		return domain.Invalid("description", "is required")
	case strings.TrimSpace(in.Photo) == "":
		return domain.Invalid("photo", "is required")
	case strings.TrimSpace(in.Category) == "":
		return domain.Invalid("category", "is required")
	}
	return nil
}
