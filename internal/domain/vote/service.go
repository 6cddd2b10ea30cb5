package vote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"competition-voting/internal/domain"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
	"competition-voting/internal/domain/payment"
)

var (
	ErrVoteLimitReached    = ledger.ErrVoteLimitReached
	ErrCompetitionInactive = fmt.Errorf("competition is not accepting votes: %w", domain.ErrLimitExceeded)
)

// Service is the eligibility engine and the only path that records votes.
type Service struct {
	catalog catalog.Repository
	ledger  ledger.Repository
	settler payment.Settler
	locks   *keyedMutex
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewService(cat catalog.Repository, led ledger.Repository, settler payment.Settler, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalog: cat,
		ledger:  led,
		settler: settler,
		locks:   newKeyedMutex(),
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// CanVote reports whether userID may cast another vote in the competition.
// Unknown competitions are simply not votable.
func (s *Service) CanVote(ctx context.Context, userID, competitionID string) (bool, error) {
	comp, err := s.catalog.GetCompetition(ctx, competitionID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := s.check(ctx, userID, comp); err != nil {
		if errors.Is(err, domain.ErrLimitExceeded) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Eligibility is CanVote plus the voter's running tally.
func (s *Service) Eligibility(ctx context.Context, userID, competitionID string) (*Eligibility, error) {
	comp, err := s.catalog.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	used, err := s.check(ctx, userID, comp)
	if err != nil && !errors.Is(err, domain.ErrLimitExceeded) {
		return nil, err
	}

	limit := comp.VotingRules.MaxVotesPerUser
	remaining := limit - used
	if remaining < 0 || comp.Status != catalog.StatusActive {
		remaining = 0
	}
	return &Eligibility{
		CompetitionID:  comp.ID,
		CanVote:        err == nil,
		VotesUsed:      used,
		MaxVotes:       limit,
		RemainingVotes: remaining,
	}, nil
}

func (s *Service) History(ctx context.Context, userID, competitionID string) (*ledger.History, error) {
	return s.ledger.GetHistory(ctx, userID, competitionID)
}

// check returns the votes already used and nil when another vote is allowed.
// The limit is the competition's current rule, so raising it re-opens voting.
func (s *Service) check(ctx context.Context, userID string, comp *catalog.Competition) (int, error) {
	used := 0
	h, err := s.ledger.GetHistory(ctx, userID, comp.ID)
	switch {
	case err == nil:
		used = h.VotesUsed
	case !errors.Is(err, ledger.ErrHistoryNotFound):
		return 0, err
	}

	if comp.Status != catalog.StatusActive {
		return used, ErrCompetitionInactive
	}
	if used >= comp.VotingRules.MaxVotesPerUser {
		return used, ErrVoteLimitReached
	}
	return used, nil
}

// Submit checks eligibility, settles the payment when the competition charges
// for votes and records the vote. Calls for the same voter and competition run
// one at a time. Nothing is written unless the payment settles; a settled
// payment stays in the transaction log even if the vote is then refused.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Result, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, domain.Invalid("user_id", "is required")
	}

	unlock := s.locks.Lock(in.UserID + "\x00" + in.CompetitionID)
	defer unlock()

	comp, err := s.catalog.GetCompetition(ctx, in.CompetitionID)
	if err != nil {
		return nil, err
	}

	used, err := s.check(ctx, in.UserID, comp)
	if err != nil {
		s.log.Debug("vote declined",
			zap.String("user_id", in.UserID),
			zap.String("competition_id", comp.ID),
			zap.Error(err))
		return nil, err
	}

	contestant, err := s.catalog.GetContestant(ctx, in.ContestantID)
	if err != nil {
		return nil, err
	}
	if contestant.CompetitionID != comp.ID {
		return nil, domain.Invalid("contestant_id", "contestant does not belong to this competition")
	}
	if !contestant.IsActive {
		return nil, domain.Invalid("contestant_id", "contestant is not accepting votes")
	}

	var tx *ledger.Transaction
	if comp.VotingRules.RequirePayment {
		tx, err = s.pay(ctx, in, comp)
		if err != nil {
			return nil, err
		}
	}

	v := ledger.Vote{
		ID:            s.newID(),
		UserID:        in.UserID,
		CompetitionID: comp.ID,
		ContestantID:  contestant.ID,
		Timestamp:     s.now().UTC(),
		IPAddress:     in.IPAddress,
		Verified:      true,
	}
	if tx != nil {
		id := tx.ID
		v.TransactionID = &id
	}

	rec := &ledger.Record{
		Vote:     v,
		MaxVotes: comp.VotingRules.MaxVotesPerUser,
	}
	if err := s.ledger.Record(ctx, rec); err != nil {
		if tx != nil {
			s.log.Warn("vote not recorded after settled payment",
				zap.String("transaction_id", tx.ID),
				zap.String("contestant_id", v.ContestantID),
				zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("vote recorded",
		zap.String("vote_id", v.ID),
		zap.String("competition_id", v.CompetitionID),
		zap.String("contestant_id", v.ContestantID),
		zap.Bool("paid", tx != nil))

	return &Result{
		Vote:        v,
		Transaction: tx,
		VotesUsed:   used + 1,
		MaxVotes:    comp.VotingRules.MaxVotesPerUser,
	}, nil
}

func (s *Service) pay(ctx context.Context, in SubmitInput, comp *catalog.Competition) (*ledger.Transaction, error) {
	if in.Payment == nil {
		return nil, domain.Invalid("payment_method", "is required")
	}
	if in.Amount == nil {
		return nil, domain.Invalid("amount", "is required")
	}
	if !in.Amount.Equal(comp.VotingRules.VotePrice) {
		return nil, domain.Invalid("amount", "must equal the competition's vote price")
	}
	if err := in.Payment.Validate(); err != nil {
		return nil, err
	}

	receipt, err := s.settler.Settle(ctx, payment.Request{
		UserID:        in.UserID,
		CompetitionID: comp.ID,
		ContestantID:  in.ContestantID,
		Amount:        *in.Amount,
		Method:        in.Payment,
	})
	if err != nil {
		s.log.Warn("payment not settled",
			zap.String("competition_id", comp.ID),
			zap.String("method", in.Payment.Name()),
			zap.Error(err))
		return nil, err
	}

	id := receipt.TransactionID
	if id == "" {
		id = "tx_" + s.newID()
	}
	ts := receipt.SettledAt
	if ts.IsZero() {
		ts = s.now().UTC()
	}
	tx := ledger.Transaction{
		ID:            id,
		UserID:        in.UserID,
		CompetitionID: comp.ID,
		ContestantID:  in.ContestantID,
		Amount:        *in.Amount,
		PaymentMethod: in.Payment.Name(),
		Status:        ledger.StatusCompleted,
		Timestamp:     ts,
		Phone:         in.Payment.Phone(),
		IPAddress:     in.IPAddress,
	}
	if err := s.ledger.AppendTransaction(ctx, tx); err != nil {
		s.log.Error("settled payment not stored",
			zap.String("transaction_id", tx.ID),
			zap.Error(err))
		return nil, err
	}
	return &tx, nil
}
