package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"competition-voting/internal/domain"
	"competition-voting/internal/domain/payment"
	"competition-voting/internal/domain/vote"
	"competition-voting/internal/metrics"
	"competition-voting/internal/platform/apperr"
	"competition-voting/internal/worker"
)

type voteRequest struct {
	ContestantID string           `json:"contestant_id"`
	Payment      *payment.Details `json:"payment,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
}

// @Summary     Voter eligibility
// @Tags        votes
// @Produce     json
// @Param       id          path      string  true   "Competition ID"
// @Param       X-Voter-ID  header    string  false  "Voter identity"
// @Success     200         {object}  vote.Eligibility
// @Failure     404         {object}  map[string]string  "not found"
// @Router      /api/v1/competitions/{id}/eligibility [get]
func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	e, err := h.votes.Eligibility(r.Context(), voterID(r), chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// @Summary     Cast a vote
// @Description Paid competitions need a payment and an amount equal to the vote price.
// @Tags        votes
// @Accept      json
// @Produce     json
// @Param       id          path      string       true   "Competition ID"
// @Param       X-Voter-ID  header    string       false  "Voter identity"
// @Param       request     body      voteRequest  true   "Vote payload"
// @Success     201         {object}  vote.Result
// @Failure     400         {object}  map[string]string  "validation error"
// @Failure     402         {object}  map[string]string  "payment failed"
// @Failure     404         {object}  map[string]string  "not found"
// @Failure     409         {object}  map[string]string  "vote limit reached or competition inactive"
// @Failure     429         {object}  map[string]string  "rate limited"
// @Router      /api/v1/competitions/{id}/votes [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	if req.ContestantID == "" {
		errorResponse(w, apperr.BadRequest("invalid_input", "contestant_id is required", nil))
		return
	}

	in := vote.SubmitInput{
		UserID:        voterID(r),
		CompetitionID: chi.URLParam(r, "id"),
		ContestantID:  req.ContestantID,
		Amount:        req.Amount,
		IPAddress:     clientIP(r),
	}
	if req.Payment != nil {
		method, err := payment.Parse(*req.Payment)
		if err != nil {
			errorResponse(w, err)
			return
		}
		in.Payment = method
	}

	res, err := h.votes.Submit(r.Context(), in)
	if err != nil {
		metrics.IncVoteRejection(rejectionReason(err))
		errorResponse(w, err)
		return
	}

	ev := worker.VoteEvent{
		CompetitionID: res.Vote.CompetitionID,
		ContestantID:  res.Vote.ContestantID,
		UserID:        res.Vote.UserID,
	}
	if res.Transaction != nil {
		ev.Method = res.Transaction.PaymentMethod
		ev.Amount = res.Transaction.Amount
	}
	select {
	case h.voteCh <- ev:
	default:
	}

	writeJSON(w, http.StatusCreated, res)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, vote.ErrCompetitionInactive):
		return "competition_inactive"
	case errors.Is(err, domain.ErrLimitExceeded):
		return "limit_reached"
	case errors.Is(err, domain.ErrPaymentFailed):
		return "payment_failed"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
