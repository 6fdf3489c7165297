package importshandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/attendance"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/imports"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/platform/jobs"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/api"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/middleware"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/shared"
)

// reportErrorLimit caps how many row errors the PDF report lists.
const reportErrorLimit = 25

type Handler struct {
	Store      imports.StoreAPI
	Attendance attendance.StoreAPI
	Jobs       *jobs.Service
}

func NewHandler(store imports.StoreAPI, attendanceStore attendance.StoreAPI, jobsService *jobs.Service) *Handler {
	return &Handler{Store: store, Attendance: attendanceStore, Jobs: jobsService}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Get("/", h.handleListHistory)
		r.Post("/reconcile", h.handleReconcile)
		r.Get("/{batchID}", h.handleGetHistory)
		r.Delete("/{batchID}", h.handleDeleteHistory)
		r.Get("/{batchID}/report.pdf", h.handleReport)
	})
	r.Get("/import-logs", h.handleListLogs)
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePage(r)
	histories, total, err := h.Store.ListHistory(r.Context(), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		slog.Error("upload history list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "history_list_failed", "failed to list upload history", middleware.GetRequestID(r.Context()))
		return
	}
	if histories == nil {
		histories = []imports.UploadHistory{}
	}

	api.Success(w, map[string]any{
		"uploads": histories,
		"total":   total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	history, err := h.Store.GetHistory(r.Context(), batchID)
	if errors.Is(err, imports.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "upload not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		slog.Error("upload history lookup failed", "batchId", batchID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "history_lookup_failed", "failed to load upload", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	err := h.Store.DeleteHistory(r.Context(), batchID)
	if errors.Is(err, imports.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "upload not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		slog.Error("upload history delete failed", "batchId", batchID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "history_delete_failed", "failed to delete upload", middleware.GetRequestID(r.Context()))
		return
	}
	api.SuccessMessage(w, map[string]string{"batchId": batchID}, "upload history deleted", middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePage(r)
	logs, total, err := h.Store.ListLogs(r.Context(), r.URL.Query().Get("fileType"), page.Limit, page.Offset)
	if err != nil {
		slog.Error("import log list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "log_list_failed", "failed to list import logs", middleware.GetRequestID(r.Context()))
		return
	}
	if logs == nil {
		logs = []imports.ImportLog{}
	}

	api.Success(w, map[string]any{
		"logs":   logs,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

// handleReconcile force-runs the stale-upload job instead of waiting for the
// next scheduler tick.
func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		api.Fail(w, http.StatusServiceUnavailable, "jobs_disabled", "background jobs are not running", middleware.GetRequestID(r.Context()))
		return
	}
	details, err := h.Jobs.ReconcileNow(r.Context())
	if err != nil {
		slog.Error("stale upload reconcile failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "reconcile_failed", "failed to reconcile stale uploads", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	history, err := h.Store.GetHistory(r.Context(), batchID)
	if errors.Is(err, imports.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "upload not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		slog.Error("upload history lookup failed", "batchId", batchID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to load upload", middleware.GetRequestID(r.Context()))
		return
	}

	persisted, err := h.Attendance.CountByBatch(r.Context(), batchID)
	if err != nil {
		slog.Warn("batch record count failed", "batchId", batchID, "err", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Import Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Batch: %s", history.BatchID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("File: %s (%s)", history.Filename, history.FileType))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", history.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Started: %s", history.StartedAt.Format("2006-01-02 15:04:05")))
	pdf.Ln(7)
	if history.FinishedAt != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Finished: %s", history.FinishedAt.Format("2006-01-02 15:04:05")))
		pdf.Ln(7)
	}
	pdf.Ln(3)
	pdf.Cell(0, 8, fmt.Sprintf("Total rows: %d", history.TotalRecords))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Processed: %d", history.ProcessedRecords))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Errors: %d", history.ErrorRecords))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Records in store: %d", persisted))
	pdf.Ln(10)

	if len(history.Errors) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Row errors")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		shown := history.Errors
		if len(shown) > reportErrorLimit {
			shown = shown[:reportErrorLimit]
		}
		for _, rowErr := range shown {
			pdf.Cell(0, 6, fmt.Sprintf("Row %d: %s", rowErr.Row, rowErr.Message))
			pdf.Ln(6)
		}
		if len(history.Errors) > reportErrorLimit {
			pdf.Cell(0, 6, fmt.Sprintf("... and %d more", len(history.Errors)-reportErrorLimit))
			pdf.Ln(6)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=import-%s.pdf", batchID))
	if err := pdf.Output(w); err != nil {
		slog.Error("report pdf write failed", "batchId", batchID, "err", err)
	}
}
