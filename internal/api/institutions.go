package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Admit/internal/advisor"
)

type InstitutionsHandler struct {
	svc Service
}

func NewInstitutionsHandler(svc Service) *InstitutionsHandler {
	return &InstitutionsHandler{svc: svc}
}

type InstitutionListItem struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Abbreviation      string `json:"abbreviation"`
	UsesCustomScoring bool   `json:"uses_custom_scoring"`
	FacultyCount      int    `json:"faculty_count"`
	ProgramCount      int    `json:"program_count"`
}

func (h *InstitutionsHandler) List(w http.ResponseWriter, r *http.Request) {
	institutions, err := h.svc.Institutions()
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	out := make([]InstitutionListItem, 0, len(institutions))
	for _, inst := range institutions {
		out = append(out, InstitutionListItem{
			ID:                inst.ID,
			Name:              inst.Name,
			Abbreviation:      inst.Abbreviation,
			UsesCustomScoring: inst.UsesCustomScoring,
			FacultyCount:      len(inst.Faculties),
			ProgramCount:      inst.ProgramCount(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *InstitutionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	inst, err := h.svc.Institution(chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advisor.ErrUnknownInstitution):
		writeError(w, http.StatusNotFound, "institution not found")
	case errors.Is(err, advisor.ErrCatalogNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
