package handlers

import (
	"fmt"
	"net/http"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// writeReport sends the report body with an ETag so unchanged reports can be
// answered with 304.
func writeReport(w http.ResponseWriter, r *http.Request, data interface{}) {
	etag, err := utils.GenerateETag(data)
	if err != nil {
		logger.L.Error("Failed to generate report ETag", "error", err)
	} else {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	utils.WriteJSON(w, http.StatusOK, data)
}

func (h *ReportHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	summary, err := h.reportService.GetSummary(userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	writeReport(w, r, summary)
}

func (h *ReportHandler) HandleGetCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	txType := models.TransactionType(r.URL.Query().Get("type"))
	if !txType.Valid() {
		utils.SendJSONError(w, fmt.Sprintf("invalid transaction type %q, expected expense or income", txType), http.StatusBadRequest)
		return
	}

	breakdown, err := h.reportService.GetCategoryBreakdown(userID, txType)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	writeReport(w, r, breakdown)
}

func (h *ReportHandler) HandleGetMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	trend, err := h.reportService.GetMonthlyTrend(userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), statusForError(err))
		return
	}
	writeReport(w, r, trend)
}
