package attendancehandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/attendance"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/api"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/middleware"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/import", h.handleImport)
		r.Get("/", h.handleList)
	})
}

// handleImport accepts a multipart upload: a required "file" part and an
// optional "date" part overriding the attendance date for device exports.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "missing_file", "multipart field 'file' is required", middleware.GetRequestID(r.Context()))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "unreadable_file", "unable to read uploaded file", middleware.GetRequestID(r.Context()))
		return
	}

	overrideDate, err := shared.ParseDate(r.FormValue("date"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Service.Ingest(r.Context(), attendance.UploadInput{
		Filename:     header.Filename,
		Content:      content,
		OverrideDate: overrideDate,
	})
	if err != nil {
		var structural *attendance.StructuralError
		if errors.As(err, &structural) {
			api.FailWithDetails(w, http.StatusBadRequest, structural.Code, structural.Message, structural.Details, middleware.GetRequestID(r.Context()))
			return
		}
		slog.Error("attendance import failed", "filename", header.Filename, "err", err)
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to process upload", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}

	filter := attendance.Filter{
		EmployeeCode: r.URL.Query().Get("employeeCode"),
		From:         from,
		To:           to,
	}
	page := shared.ParsePage(r)

	records, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("attendance list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", middleware.GetRequestID(r.Context()))
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}

	api.Success(w, map[string]any{
		"records": records,
		"total":   total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	}, middleware.GetRequestID(r.Context()))
}
