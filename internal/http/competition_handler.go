package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"competition-voting/internal/domain/catalog"
)

type votingRulesRequest struct {
	MaxVotesPerUser int             `json:"max_votes_per_user"`
	RequirePayment  bool            `json:"require_payment"`
	VotePrice       decimal.Decimal `json:"vote_price"`
}

type competitionRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CoverImage  string             `json:"cover_image"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	Status      string             `json:"status"`
	VotingRules votingRulesRequest `json:"voting_rules"`
}

func (req competitionRequest) input() catalog.CompetitionInput {
	return catalog.CompetitionInput{
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      catalog.Status(strings.ToLower(strings.TrimSpace(req.Status))),
		VotingRules: catalog.VotingRules{
			MaxVotesPerUser: req.VotingRules.MaxVotesPerUser,
			RequirePayment:  req.VotingRules.RequirePayment,
			VotePrice:       req.VotingRules.VotePrice,
		},
	}
}

// @Summary     List competitions
// @Tags        competitions
// @Produce     json
// @Param       status  query    string  false  "draft, active or ended"
// @Param       q       query    string  false  "search in title and description"
// @Success     200     {array}  catalog.Competition
// @Failure     400     {object} map[string]string  "invalid status"
// @Router      /api/v1/competitions [get]
func (h *Handler) handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	f := catalog.CompetitionFilter{Search: r.URL.Query().Get("q")}
	if s := r.URL.Query().Get("status"); s != "" {
		status := catalog.Status(strings.ToLower(s))
		f.Status = &status
	}

	comps, err := h.catalog.ListCompetitions(r.Context(), f)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comps)
}

// @Summary     Get competition
// @Tags        competitions
// @Produce     json
// @Param       id   path      string  true  "Competition ID"
// @Success     200  {object}  catalog.Competition
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/competitions/{id} [get]
func (h *Handler) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.GetCompetition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary     Create competition
// @Tags        competitions
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      competitionRequest  true  "Competition"
// @Success     201      {object}  catalog.Competition
// @Failure     400      {object}  map[string]string  "validation error"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Failure     403      {object}  map[string]string  "forbidden"
// @Router      /api/v1/competitions [post]
func (h *Handler) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	c, err := h.catalog.CreateCompetition(r.Context(), req.input())
	if err != nil {
		errorResponse(w, err)
		return
	}

	h.log.Info("admin action", zap.String("admin", usernameFromCtx(r)),
		zap.String("action", "create_competition"), zap.String("competition_id", c.ID))
	writeJSON(w, http.StatusCreated, c)
}

// @Summary     Update competition
// @Description Replaces the editable fields. Raising max_votes_per_user lets voters who used up their votes vote again.
// @Tags        competitions
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      string              true  "Competition ID"
// @Param       request  body      competitionRequest  true  "Competition"
// @Success     200      {object}  catalog.Competition
// @Failure     400      {object}  map[string]string  "validation error"
// @Failure     404      {object}  map[string]string  "not found"
// @Router      /api/v1/competitions/{id} [put]
func (h *Handler) handleUpdateCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	c, err := h.catalog.UpdateCompetition(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary     Delete competition
// @Description Also deletes its contestants. Votes and transactions are kept.
// @Tags        competitions
// @Security    BearerAuth
// @Param       id   path  string  true  "Competition ID"
// @Success     204
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/competitions/{id} [delete]
func (h *Handler) handleDeleteCompetition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalog.DeleteCompetition(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}

	h.log.Info("admin action", zap.String("admin", usernameFromCtx(r)),
		zap.String("action", "delete_competition"), zap.String("competition_id", id))
	w.WriteHeader(http.StatusNoContent)
}
