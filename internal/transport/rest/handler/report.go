package handler

import (
	"clausecheck/internal/cache"
	"clausecheck/internal/repository"
	"net/http"

	"github.com/gorilla/mux"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportRepo  repository.ReportRepo
	reportCache cache.ReportCache
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportRepo repository.ReportRepo, reportCache cache.ReportCache) *ReportHandler {
	return &ReportHandler{
		reportRepo:  reportRepo,
		reportCache: reportCache,
	}
}

// Get handles GET /v1/contracts/{id}/report
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.reportCache.Get(r.Context(), id)
	if err == nil && report != nil {
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err = h.reportRepo.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not available")
		return
	}

	_ = h.reportCache.Set(r.Context(), report)

	writeJSON(w, http.StatusOK, report)
}
