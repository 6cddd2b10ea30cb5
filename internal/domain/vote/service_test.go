package vote

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competition-voting/internal/domain"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
	"competition-voting/internal/domain/payment"
	"competition-voting/internal/repository/memory"
)

type stubSettler struct {
	err   error
	calls atomic.Int32
	// during runs while the payment is being settled.
	during func()
}

func (s *stubSettler) Settle(ctx context.Context, req payment.Request) (payment.Receipt, error) {
	s.calls.Add(1)
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return payment.Receipt{}, s.err
	}
	return payment.Receipt{TransactionID: "tx_stub", SettledAt: time.Now().UTC()}, nil
}

type fixture struct {
	store   *memory.Store
	catalog *catalog.Service
	settler *stubSettler
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	settler := &stubSettler{}
	return &fixture{
		store:   store,
		catalog: catalog.NewService(store, nil),
		settler: settler,
		svc:     NewService(store, store, settler, nil),
	}
}

func (f *fixture) competition(t *testing.T, rules catalog.VotingRules) *catalog.Competition {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := f.catalog.CreateCompetition(context.Background(), catalog.CompetitionInput{
		Title:       "Best Voice",
		Description: "Singing contest",
		CoverImage:  "cover.jpg",
		StartDate:   start,
		EndDate:     start.Add(30 * 24 * time.Hour),
		Status:      catalog.StatusActive,
		VotingRules: rules,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) contestant(t *testing.T, competitionID string, active bool) *catalog.Contestant {
	t.Helper()
	c, err := f.catalog.CreateContestant(context.Background(), catalog.ContestantInput{
		CompetitionID: competitionID,
		Name:          "Amina",
		Description:   "Soprano",
		Photo:         "amina.jpg",
		Category:      "Vocal",
		IsActive:      active,
	})
	require.NoError(t, err)
	return c
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestSubmit_FreeVoteThenLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 1})
	p := f.contestant(t, comp.ID, true)

	ok, err := f.svc.CanVote(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := f.svc.Submit(ctx, SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID, IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Nil(t, res.Transaction)
	assert.Nil(t, res.Vote.TransactionID)
	assert.True(t, res.Vote.Verified)
	assert.Equal(t, 1, res.VotesUsed)
	assert.Zero(t, f.settler.calls.Load())

	_, err = f.svc.Submit(ctx, SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	assert.ErrorIs(t, err, ErrVoteLimitReached)

	gotComp, _ := f.store.GetCompetition(ctx, comp.ID)
	gotP, _ := f.store.GetContestant(ctx, p.ID)
	assert.EqualValues(t, 1, gotComp.TotalVotes)
	assert.EqualValues(t, 1, gotP.Votes)

	ok, err = f.svc.CanVote(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanVote(ctx, "u2", comp.ID)
	require.NoError(t, err)
	assert.True(t, ok, "limits are per voter")
}

func TestSubmit_PaidCardVote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 3, RequirePayment: true, VotePrice: decimal.NewFromInt(20)})
	p := f.contestant(t, comp.ID, true)

	card := payment.Card{Number: "4111111111111111", Expiry: "12/30", CVV: "123", Holder: "A. Voter"}
	res, err := f.svc.Submit(ctx, SubmitInput{
		UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID,
		Payment: card, Amount: price(20), IPAddress: "10.0.0.2",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	require.NotNil(t, res.Vote.TransactionID)
	assert.Equal(t, res.Transaction.ID, *res.Vote.TransactionID)
	assert.Equal(t, "tx_stub", res.Transaction.ID)
	assert.Equal(t, payment.MethodCard, res.Transaction.PaymentMethod)
	assert.Equal(t, ledger.StatusCompleted, res.Transaction.Status)
	assert.Empty(t, res.Transaction.Phone)
	assert.True(t, res.Transaction.Amount.Equal(decimal.NewFromInt(20)))

	txs, err := f.store.ListTransactions(ctx, ledger.TransactionFilter{CompetitionID: comp.ID})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	e, err := f.svc.Eligibility(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.True(t, e.CanVote)
	assert.Equal(t, 1, e.VotesUsed)
	assert.Equal(t, 2, e.RemainingVotes)
}

func TestSubmit_MobileMoneyStoresPhone(t *testing.T) {
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 1, RequirePayment: true, VotePrice: decimal.NewFromInt(5)})
	p := f.contestant(t, comp.ID, true)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID,
		Payment: payment.MobileMoney{Provider: payment.ProviderMTN, PhoneNumber: " 670000000 "},
		Amount:  price(5),
	})
	require.NoError(t, err)
	assert.Equal(t, payment.ProviderMTN, res.Transaction.PaymentMethod)
	assert.Equal(t, "670000000", res.Transaction.Phone)
}

func TestSubmit_PaymentValidation(t *testing.T) {
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 5, RequirePayment: true, VotePrice: decimal.NewFromInt(20)})
	p := f.contestant(t, comp.ID, true)

	cases := []struct {
		name   string
		method payment.Method
		amount *decimal.Decimal
		field  string
	}{
		{"missing method", nil, price(20), "payment_method"},
		{"missing amount", payment.Card{Number: "1", Expiry: "1", CVV: "1"}, nil, "amount"},
		{"wrong amount", payment.Card{Number: "1", Expiry: "1", CVV: "1"}, price(10), "amount"},
		{"card without cvv", payment.Card{Number: "1", Expiry: "1"}, price(20), "card.cvv"},
		{"mobile money without phone", payment.MobileMoney{Provider: payment.ProviderOrange}, price(20), "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), SubmitInput{
				UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID,
				Payment: tc.method, Amount: tc.amount,
			})
			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	votes, _ := f.store.ListVotes(context.Background(), ledger.VoteFilter{})
	assert.Empty(t, votes)
	assert.Zero(t, f.settler.calls.Load())
}

func TestSubmit_PaymentFailureRecordsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.settler.err = payment.Declined("insufficient funds")
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 1, RequirePayment: true, VotePrice: decimal.NewFromInt(20)})
	p := f.contestant(t, comp.ID, true)

	_, err := f.svc.Submit(ctx, SubmitInput{
		UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID,
		Payment: payment.Card{Number: "1", Expiry: "1", CVV: "1"}, Amount: price(20),
	})
	require.ErrorIs(t, err, domain.ErrPaymentFailed)

	votes, _ := f.store.ListVotes(ctx, ledger.VoteFilter{})
	txs, _ := f.store.ListTransactions(ctx, ledger.TransactionFilter{})
	assert.Empty(t, votes)
	assert.Empty(t, txs)

	ok, err := f.svc.CanVote(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmit_ContestantChecks(t *testing.T) {
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 5})
	other := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 5})
	inactive := f.contestant(t, comp.ID, false)
	foreign := f.contestant(t, other.ID, true)

	_, err := f.svc.Submit(context.Background(), SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Submit(context.Background(), SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: inactive.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Submit(context.Background(), SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: foreign.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Submit(context.Background(), SubmitInput{CompetitionID: comp.ID, ContestantID: foreign.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmit_InactiveCompetition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 5})
	p := f.contestant(t, comp.ID, true)

	_, err := f.catalog.UpdateCompetition(ctx, comp.ID, catalog.CompetitionInput{
		Title: comp.Title, Description: comp.Description, CoverImage: comp.CoverImage,
		StartDate: comp.StartDate, EndDate: comp.EndDate,
		Status: catalog.StatusEnded, VotingRules: comp.VotingRules,
	})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID})
	assert.ErrorIs(t, err, ErrCompetitionInactive)
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	ok, err := f.svc.CanVote(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanVote(ctx, "u1", "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEligibility_RaisedLimitReopensVoting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 1})
	p := f.contestant(t, comp.ID, true)

	_, err := f.svc.Submit(ctx, SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID})
	require.NoError(t, err)

	e, err := f.svc.Eligibility(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.False(t, e.CanVote)
	assert.Equal(t, 0, e.RemainingVotes)

	_, err = f.catalog.UpdateCompetition(ctx, comp.ID, catalog.CompetitionInput{
		Title: comp.Title, Description: comp.Description, CoverImage: comp.CoverImage,
		StartDate: comp.StartDate, EndDate: comp.EndDate,
		VotingRules: catalog.VotingRules{MaxVotesPerUser: 2},
	})
	require.NoError(t, err)

	res, err := f.svc.Submit(ctx, SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, res.VotesUsed)

	h, err := f.svc.History(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, h.VotesUsed)
	assert.Equal(t, 2, h.MaxVotes)
}

func TestSubmit_ConcurrentVotesRespectLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 3})
	p := f.contestant(t, comp.ID, true)

	const attempts = 20
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		limited  atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(ctx, SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID})
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, domain.ErrLimitExceeded):
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, accepted.Load())
	assert.EqualValues(t, attempts-3, limited.Load())

	gotComp, _ := f.store.GetCompetition(ctx, comp.ID)
	gotP, _ := f.store.GetContestant(ctx, p.ID)
	votes, _ := f.store.ListVotes(ctx, ledger.VoteFilter{CompetitionID: comp.ID})
	assert.EqualValues(t, 3, gotComp.TotalVotes)
	assert.EqualValues(t, 3, gotP.Votes)
	assert.Len(t, votes, 3)
	assert.Zero(t, f.svc.locks.size())
}

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.size())

	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock("a")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder entered while key was locked")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	<-acquired
	unlockB()
	assert.Eventually(t, func() bool { return k.size() == 0 }, time.Second, time.Millisecond)
}

func TestSubmit_SettledPaymentKeptWhenContestantRemoved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 3, RequirePayment: true, VotePrice: decimal.NewFromInt(20)})
	p := f.contestant(t, comp.ID, true)
	f.settler.during = func() {
		require.NoError(t, f.catalog.DeleteContestant(ctx, p.ID))
	}

	_, err := f.svc.Submit(ctx, SubmitInput{
		UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID,
		Payment: payment.MobileMoney{Provider: payment.ProviderMTN, PhoneNumber: "670000001"},
		Amount:  price(20),
	})
	assert.ErrorIs(t, err, catalog.ErrContestantNotFound)

	txs, err := f.store.ListTransactions(ctx, ledger.TransactionFilter{CompetitionID: comp.ID})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "tx_stub", txs[0].ID)
	assert.Equal(t, ledger.StatusCompleted, txs[0].Status)
	assert.Equal(t, p.ID, txs[0].ContestantID)

	votes, err := f.store.ListVotes(ctx, ledger.VoteFilter{CompetitionID: comp.ID})
	require.NoError(t, err)
	assert.Empty(t, votes)
	_, err = f.svc.History(ctx, "u1", comp.ID)
	assert.ErrorIs(t, err, ledger.ErrHistoryNotFound)
}

func TestEligibility_EndedCompetitionKeepsVotesUsed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comp := f.competition(t, catalog.VotingRules{MaxVotesPerUser: 3})
	p := f.contestant(t, comp.ID, true)

	_, err := f.svc.Submit(ctx, SubmitInput{UserID: "u1", CompetitionID: comp.ID, ContestantID: p.ID})
	require.NoError(t, err)

	_, err = f.catalog.UpdateCompetition(ctx, comp.ID, catalog.CompetitionInput{
		Title: comp.Title, Description: comp.Description, CoverImage: comp.CoverImage,
		StartDate: comp.StartDate, EndDate: comp.EndDate,
		Status: catalog.StatusEnded, VotingRules: comp.VotingRules,
	})
	require.NoError(t, err)

	e, err := f.svc.Eligibility(ctx, "u1", comp.ID)
	require.NoError(t, err)
	assert.False(t, e.CanVote)
	assert.Equal(t, 1, e.VotesUsed)
	assert.Equal(t, 0, e.RemainingVotes)
}
