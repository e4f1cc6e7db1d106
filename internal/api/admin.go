package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

type AdminHandler struct {
	svc    Service
	logger *slog.Logger
}

func NewAdminHandler(svc Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

type CatalogReportResponse struct {
	Status   string          `json:"status"`
	Fatal    []catalog.Issue `json:"fatal"`
	Warnings []catalog.Issue `json:"warnings"`
}

func newReportResponse(status string, report catalog.Report) CatalogReportResponse {
	resp := CatalogReportResponse{
		Status:   status,
		Fatal:    report.Fatal(),
		Warnings: report.Warnings(),
	}
	if resp.Fatal == nil {
		resp.Fatal = []catalog.Issue{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []catalog.Issue{}
	}
	return resp
}

// Reload publishes the current catalog source. A catalog with fatal issues is
// refused with 422 and the previous catalog stays live.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reload(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newReportResponse("applied", report))
	case errors.Is(err, catalog.ErrCatalogIntegrity):
		writeJSON(w, http.StatusUnprocessableEntity, newReportResponse("rejected", report))
	default:
		h.logger.Error("catalog reload failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *AdminHandler) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Validate(r.Context())
	if err != nil {
		h.logger.Error("catalog validation failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	status := "valid"
	if report.HasFatal() {
		status = "invalid"
	}
	writeJSON(w, http.StatusOK, newReportResponse(status, report))
}
