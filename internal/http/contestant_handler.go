package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"competition-voting/internal/domain/catalog"
)

type contestantRequest struct {
	CompetitionID string `json:"competition_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Photo         string `json:"photo"`
	Category      string `json:"category"`
	// IsActive defaults to true when omitted.
	IsActive *bool `json:"is_active"`
}

func (req contestantRequest) input() catalog.ContestantInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return catalog.ContestantInput{
		CompetitionID: req.CompetitionID,
		Name:          req.Name,
		Description:   req.Description,
		Photo:         req.Photo,
		Category:      req.Category,
		IsActive:      active,
	}
}

// @Summary     Contestants open for voting
// @Tags        competitions
// @Produce     json
// @Param       id   path     string  true  "Competition ID"
// @Success     200  {array}  catalog.Contestant
// @Failure     404  {object} map[string]string  "not found"
// @Router      /api/v1/competitions/{id}/contestants [get]
func (h *Handler) handleListCompetitionContestants(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.catalog.GetCompetition(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}

	list, err := h.catalog.ListContestantsForCompetition(r.Context(), id, true)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary     List contestants
// @Tags        contestants
// @Security    BearerAuth
// @Produce     json
// @Param       competition_id  query    string  false  "Competition ID"
// @Param       q               query    string  false  "search in name and category"
// @Param       active          query    bool    false  "only active contestants"
// @Success     200             {array}  catalog.Contestant
// @Router      /api/v1/contestants [get]
func (h *Handler) handleListContestants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.catalog.ListContestants(r.Context(), catalog.ContestantFilter{
		CompetitionID: q.Get("competition_id"),
		Search:        q.Get("q"),
		ActiveOnly:    q.Get("active") == "true",
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary     Get contestant
// @Tags        contestants
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Contestant ID"
// @Success     200  {object}  catalog.Contestant
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/contestants/{id} [get]
func (h *Handler) handleGetContestant(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.GetContestant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary     Create contestant
// @Tags        contestants
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      contestantRequest  true  "Contestant"
// @Success     201      {object}  catalog.Contestant
// @Failure     400      {object}  map[string]string  "validation error"
// @Router      /api/v1/contestants [post]
func (h *Handler) handleCreateContestant(w http.ResponseWriter, r *http.Request) {
	var req contestantRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	c, err := h.catalog.CreateContestant(r.Context(), req.input())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// @Summary     Update contestant
// @Description An empty competition_id keeps the current competition.
// @Tags        contestants
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      string             true  "Contestant ID"
// @Param       request  body      contestantRequest  true  "Contestant"
// @Success     200      {object}  catalog.Contestant
// @Failure     400      {object}  map[string]string  "validation error"
// @Failure     404      {object}  map[string]string  "not found"
// @Router      /api/v1/contestants/{id} [put]
func (h *Handler) handleUpdateContestant(w http.ResponseWriter, r *http.Request) {
	var req contestantRequest
	if err := decodeJSON(r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	c, err := h.catalog.UpdateContestant(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary     Delete contestant
// @Tags        contestants
// @Security    BearerAuth
// @Param       id   path  string  true  "Contestant ID"
// @Success     204
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/contestants/{id} [delete]
func (h *Handler) handleDeleteContestant(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteContestant(r.Context(), chi.URLParam(r, "id")); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
