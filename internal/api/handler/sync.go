package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/spendboard/internal/api/middleware"
	"github.com/mcoot/spendboard/internal/api/request"
	"github.com/mcoot/spendboard/internal/api/response"
	"github.com/mcoot/spendboard/internal/services/ranking"
	"github.com/mcoot/spendboard/internal/services/reconcile"
)

// SyncHandler exposes the batch triggers
type SyncHandler struct {
	reconcileService *reconcile.Service
	rankingService   *ranking.Service
	logger           *slog.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(reconcileService *reconcile.Service, rankingService *ranking.Service, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		reconcileService: reconcileService,
		rankingService:   rankingService,
		logger:           logger.With(slog.String("component", "sync-handler")),
	}
}

// Libraries handles POST /api/v1/sync/libraries
func (h *SyncHandler) Libraries(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("library sync triggered", slog.String("caller", middleware.GetCaller(r.Context())))

	report, err := h.reconcileService.SyncLibraries(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SyncFromReport(report))
}

// Returns handles POST /api/v1/sync/returns
func (h *SyncHandler) Returns(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("return detection triggered", slog.String("caller", middleware.GetCaller(r.Context())))

	report, err := h.reconcileService.DetectReturns(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ReturnsFromReport(report))
}

// CloseMonth handles POST /api/v1/months/close. Without a body the previous
// calendar month is closed.
func (h *SyncHandler) CloseMonth(w http.ResponseWriter, r *http.Request) {
	var req request.CloseMonthRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info("month close triggered",
		slog.String("caller", middleware.GetCaller(r.Context())),
		slog.Int("month", req.Month),
		slog.Int("year", req.Year),
	)

	var (
		report *ranking.CloseReport
		err    error
	)
	switch {
	case req.Month == 0 && req.Year == 0:
		report, err = h.rankingService.ClosePreviousMonth(r.Context())
	default:
		report, err = h.rankingService.CloseMonth(r.Context(), req.Month, req.Year)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, report)
}
