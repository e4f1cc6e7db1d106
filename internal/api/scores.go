package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Admit/internal/advisor"
	"github.com/MikeSquared-Agency/Admit/internal/scoring"
	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

type ScoresHandler struct {
	svc    Service
	logger *slog.Logger
}

func NewScoresHandler(svc Service, logger *slog.Logger) *ScoresHandler {
	return &ScoresHandler{svc: svc, logger: logger}
}

type ScoreRequest struct {
	Subjects        []subject.Result `json:"subjects"`
	Institutions    []string         `json:"institutions,omitempty"`
	ProgramCategory string           `json:"program_category,omitempty"`
}

func (h *ScoresHandler) Score(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScoreRequest(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Score(req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ScoresHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScoreRequest(w, r)
	if !ok {
		return
	}
	eval, err := h.svc.Evaluate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eval)
}

func decodeScoreRequest(w http.ResponseWriter, r *http.Request) (advisor.Request, bool) {
	var body ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return advisor.Request{}, false
	}
	if len(body.Subjects) == 0 {
		writeError(w, http.StatusBadRequest, "subjects required")
		return advisor.Request{}, false
	}
	category, err := scoring.ParseCategory(body.ProgramCategory)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return advisor.Request{}, false
	}
	return advisor.Request{
		Subjects:       body.Subjects,
		InstitutionIDs: body.Institutions,
		Category:       category,
	}, true
}

func (h *ScoresHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subject.ErrInvalidMark):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, advisor.ErrUnknownInstitution):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, advisor.ErrCatalogNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
	default:
		h.logger.Error("advisory request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
