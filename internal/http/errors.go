package api

import (
	"errors"
	"net/http"

	"competition-voting/internal/domain"
	"competition-voting/internal/domain/admin"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
	"competition-voting/internal/domain/vote"
	"competition-voting/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), appErr)
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return apperr.BadRequest("validation_error", verr.Error(), err).WithField(verr.Field)
	case errors.Is(err, admin.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, catalog.ErrCompetitionNotFound):
		return apperr.NotFound("competition_not_found", "competition not found", err)
	case errors.Is(err, catalog.ErrContestantNotFound):
		return apperr.NotFound("contestant_not_found", "contestant not found", err)
	case errors.Is(err, ledger.ErrHistoryNotFound):
		return apperr.NotFound("history_not_found", "no votes cast in this competition yet", err)
	case errors.Is(err, domain.ErrNotFound):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, vote.ErrCompetitionInactive):
		return apperr.Conflict("competition_inactive", "competition is not accepting votes", err)
	case errors.Is(err, domain.ErrLimitExceeded):
		return apperr.Conflict("vote_limit_reached", "you have used all your votes in this competition", err)
	case errors.Is(err, domain.ErrPaymentFailed):
		return apperr.PaymentRequired("payment_failed", err.Error(), err)
	case errors.Is(err, domain.ErrValidation):
		return apperr.BadRequest("validation_error", err.Error(), err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
