package employeeshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/employee"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/api"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/middleware"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/shared"
)

type Handler struct {
	Store employee.StoreAPI
}

func NewHandler(store employee.StoreAPI) *Handler {
	return &Handler{Store: store}
}

type employeePayload struct {
	EmployeeCode string `json:"employeeCode"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	Designation  string `json:"designation"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{employeeCode}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePage(r)
	emps, total, err := h.Store.List(r.Context(), r.URL.Query().Get("q"), page.Limit, page.Offset)
	if err != nil {
		slog.Error("employee list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	if emps == nil {
		emps = []employee.Employee{}
	}

	api.Success(w, map[string]any{
		"employees": emps,
		"total":     total,
		"limit":     page.Limit,
		"offset":    page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "employeeCode")
	emp, err := h.Store.FindByCode(r.Context(), code)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		slog.Error("employee lookup failed", "code", code, "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_lookup_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if strings.TrimSpace(payload.EmployeeCode) == "" || strings.TrimSpace(payload.Name) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeCode and name are required", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Store.Create(r.Context(), employee.Employee{
		EmployeeCode: payload.EmployeeCode,
		Name:         payload.Name,
		Email:        payload.Email,
		Department:   payload.Department,
		Designation:  payload.Designation,
		IsActive:     true,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			api.Fail(w, http.StatusConflict, "duplicate_code", "employee code already exists", middleware.GetRequestID(r.Context()))
			return
		}
		slog.Error("employee create failed", "code", payload.EmployeeCode, "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
