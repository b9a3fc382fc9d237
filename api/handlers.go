/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the staff model via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to staff.Company.

ENDPOINTS:
  Collaborators:
    GET    /api/collaborators                           List in hire order
    POST   /api/collaborators                           Hire (optionally under a chief)
    DELETE /api/collaborators                           Remove everyone
    GET    /api/collaborators/{id}                      Details
    PATCH  /api/collaborators/{id}                      Rename, re-date, change base rate
    DELETE /api/collaborators/{id}                      Fire
    GET    /api/collaborators/{id}/salary?at=           Salary breakdown
    POST   /api/collaborators/{id}/subordinates         Add a direct subordinate
    DELETE /api/collaborators/{id}/subordinates         Orphan all direct subordinates
    DELETE /api/collaborators/{id}/subordinates/{subID} Remove one subordinate

  Payroll:
    GET    /api/payroll/total?at=                       Company total
    GET    /api/payroll/runs                            Recorded runs
    POST   /api/payroll/runs                            Record a run

  Roster:
    GET    /api/roster                                  Export as roster JSON
    PUT    /api/roster                                  Replace from roster JSON

ARCHITECTURE:
  Handler owns the single in-memory staff.Company. staff.Company is not safe
  for concurrent use, so every handler (and the payroll scheduler) holds
  Handler.mu for the whole operation.

  Mutations never touch h.company directly. They run against a clone, the
  clone is saved, and only a saved clone replaces h.company. A rejected
  change or a failed save leaves both memory and the database as they were.

ERROR HANDLING:
  - 400: Invalid input, rejected hierarchy change, salary before hire
  - 404: Unknown collaborator
  - 409: Payroll run key already recorded
  - 500: Calendar conversion failures, store errors

LOGGING:
  Failures are logged through the request-scoped logger that RequestLogger
  puts in the context (it carries the request ID).

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - scheduler.go: Monthly payroll runs
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/staff"
	"github.com/warp/payroll-engine/store/sqlite"
)

var errNotFound = errors.New("collaborator not found")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Ledger *payroll.Ledger
	Roster *factory.RosterFactory
	Logger *slog.Logger

	// Now is the clock used when a request omits "at".
	Now func() time.Time

	validate *validator.Validate

	mu              sync.Mutex
	company         *staff.Company
	currentScenario string
}

// NewHandler creates a handler with an empty company. Call LoadRoster to
// restore the stored one.
func NewHandler(store *sqlite.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:    store,
		Ledger:   payroll.NewLedger(store),
		Roster:   factory.NewRosterFactory(),
		Logger:   logger,
		Now:      time.Now,
		validate: validator.New(),
		company:  staff.NewCompany(),
	}
}

// LoadRoster replaces the in-memory company with the stored roster.
func (h *Handler) LoadRoster(ctx context.Context) error {
	co, err := h.Store.LoadRoster(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.company = co
	return nil
}

// RequestLogger is middleware that stores a logger tagged with the chi
// request ID in the request context.
func (h *Handler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.Logger.With(slog.String("request_id", middleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	})
}

// mutate applies fn to a clone of the company, saves the clone and swaps
// it in. It returns the new company. Callers hold h.mu.
func (h *Handler) mutate(ctx context.Context, fn func(co *staff.Company) error) (*staff.Company, error) {
	work := h.company.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	if err := h.replaceCompany(ctx, work); err != nil {
		return nil, err
	}
	return work, nil
}

// replaceCompany persists co and then swaps it in. Callers hold h.mu.
func (h *Handler) replaceCompany(ctx context.Context, co *staff.Company) error {
	if err := h.Store.SaveRoster(ctx, co); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	h.company.RemoveAllCollaborators()
	h.company = co
	return nil
}

// lookup finds a collaborator of co by the {param} URL segment.
func lookup(co *staff.Company, r *http.Request, param string) (*staff.Collaborator, error) {
	return lookupID(co, chi.URLParam(r, param))
}

func lookupID(co *staff.Company, raw string) (*staff.Collaborator, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid collaborator id %q", staff.ErrInvalidArgument, raw)
	}
	c, ok := co.Collaborator(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotFound, id)
	}
	return c, nil
}

// at reads the "at" query parameter, defaulting to now.
func (h *Handler) at(r *http.Request) (staff.Timestamp, error) {
	return h.parseAt(r.URL.Query().Get("at"))
}

func (h *Handler) parseAt(s string) (staff.Timestamp, error) {
	if s == "" {
		return staff.TimestampOf(h.Now()), nil
	}
	return staff.ParseTimestamp(s)
}

// decode reads a JSON body into v and runs struct validation.
func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", staff.ErrInvalidArgument, err)
	}
	if err := h.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", staff.ErrInvalidArgument, err)
	}
	return nil
}

// =============================================================================
// COLLABORATOR HANDLERS
// =============================================================================

// ListCollaborators returns the staff in hire order.
func (h *Handler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	collaborators := h.company.Collaborators()
	dtos := make([]CollaboratorDTO, 0, len(collaborators))
	for _, c := range collaborators {
		dtos = append(dtos, toCollaboratorDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCollaborator hires a new collaborator, optionally under a chief.
func (h *Handler) CreateCollaborator(w http.ResponseWriter, r *http.Request) {
	const op = "CreateCollaborator"

	var req CreateCollaboratorRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}

	c, err := staff.New(staff.Role(req.Role), req.Name)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if req.HiredAt != "" {
		hired, err := staff.ParseTimestamp(req.HiredAt)
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		c.SetHireTime(hired)
	}
	if req.BaseRate != nil {
		if err := c.SetBaseRate(*req.BaseRate); err != nil {
			h.fail(w, r, op, err)
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err = h.mutate(r.Context(), func(co *staff.Company) error {
		var chief *staff.Collaborator
		if req.ChiefID != "" {
			var err error
			if chief, err = lookupID(co, req.ChiefID); err != nil {
				return fmt.Errorf("chief: %w", err)
			}
		}
		if err := co.Hire(c); err != nil {
			return err
		}
		if chief != nil {
			return co.AddSubordinate(chief, c)
		}
		return nil
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	logging.FromContext(r.Context()).Info("collaborator hired",
		slog.String("collaborator_id", c.ID().String()),
		slog.String("role", c.Role().String()))
	writeJSON(w, http.StatusCreated, toCollaboratorDTO(c))
}

// RemoveAllCollaborators empties the staff. Payroll history is kept.
func (h *Handler) RemoveAllCollaborators(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.replaceCompany(r.Context(), staff.NewCompany()); err != nil {
		h.fail(w, r, "RemoveAllCollaborators", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetCollaborator(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := lookup(h.company, r, "id")
	if err != nil {
		h.fail(w, r, "GetCollaborator", err)
		return
	}
	writeJSON(w, http.StatusOK, toCollaboratorDTO(c))
}

// UpdateCollaborator applies a partial update. Every field is validated
// before any is changed.
func (h *Handler) UpdateCollaborator(w http.ResponseWriter, r *http.Request) {
	const op = "UpdateCollaborator"

	var req UpdateCollaboratorRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}

	var hired *staff.Timestamp
	if req.HiredAt != nil {
		ts, err := staff.ParseTimestamp(*req.HiredAt)
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		hired = &ts
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var updated *staff.Collaborator
	_, err := h.mutate(r.Context(), func(co *staff.Company) error {
		c, err := lookup(co, r, "id")
		if err != nil {
			return err
		}
		if req.Name != nil {
			if err := c.SetName(*req.Name); err != nil {
				return err
			}
		}
		if req.BaseRate != nil {
			if err := c.SetBaseRate(*req.BaseRate); err != nil {
				return err
			}
		}
		if hired != nil {
			c.SetHireTime(*hired)
		}
		updated = c
		return nil
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toCollaboratorDTO(updated))
}

// FireCollaborator removes a collaborator; its subordinates become orphans.
func (h *Handler) FireCollaborator(w http.ResponseWriter, r *http.Request) {
	const op = "FireCollaborator"

	h.mu.Lock()
	defer h.mu.Unlock()

	var fired uuid.UUID
	_, err := h.mutate(r.Context(), func(co *staff.Company) error {
		c, err := lookup(co, r, "id")
		if err != nil {
			return err
		}
		fired = c.ID()
		return co.Fire(c)
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	logging.FromContext(r.Context()).Info("collaborator fired", slog.String("collaborator_id", fired.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetSalary returns the salary breakdown at ?at= (default now).
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	const op = "GetSalary"

	at, err := h.at(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := lookup(h.company, r, "id")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	b, err := c.SalaryBreakdown(at)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	withSubtree, err := c.AggregateSalaryDownward(at)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryDTO(c, b, withSubtree))
}

// =============================================================================
// REPORTING LINE HANDLERS
// =============================================================================

func (h *Handler) AddSubordinate(w http.ResponseWriter, r *http.Request) {
	const op = "AddSubordinate"

	var req AddSubordinateRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.editLines(w, r, op, func(co *staff.Company, chief *staff.Collaborator) error {
		sub, err := lookupID(co, req.SubordinateID)
		if err != nil {
			return fmt.Errorf("subordinate: %w", err)
		}
		return co.AddSubordinate(chief, sub)
	})
}

func (h *Handler) RemoveSubordinate(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.editLines(w, r, "RemoveSubordinate", func(co *staff.Company, chief *staff.Collaborator) error {
		sub, err := lookup(co, r, "subID")
		if err != nil {
			return err
		}
		return co.RemoveSubordinate(chief, sub)
	})
}

func (h *Handler) RemoveAllSubordinates(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.editLines(w, r, "RemoveAllSubordinates", func(co *staff.Company, chief *staff.Collaborator) error {
		return co.RemoveAllSubordinates(chief)
	})
}

// editLines runs fn on the chief named by {id} and answers with the chief
// as it is afterwards. Callers hold h.mu.
func (h *Handler) editLines(w http.ResponseWriter, r *http.Request, op string, fn func(co *staff.Company, chief *staff.Collaborator) error) {
	var chief *staff.Collaborator
	_, err := h.mutate(r.Context(), func(co *staff.Company) error {
		var err error
		if chief, err = lookup(co, r, "id"); err != nil {
			return err
		}
		return fn(co, chief)
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toCollaboratorDTO(chief))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

func (h *Handler) GetPayrollTotal(w http.ResponseWriter, r *http.Request) {
	const op = "GetPayrollTotal"

	at, err := h.at(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	total, err := h.company.CalculateTotalSalary(at)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, PayrollTotalDTO{
		At:        at.String(),
		Headcount: h.company.Len(),
		Total:     total,
	})
}

func (h *Handler) ListPayrollRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Ledger.Runs(r.Context())
	if err != nil {
		h.fail(w, r, "ListPayrollRuns", err)
		return
	}

	dtos := make([]PayrollRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toPayrollRunDTO(run))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePayrollRun(w http.ResponseWriter, r *http.Request) {
	const op = "CreatePayrollRun"

	var req CreatePayrollRunRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	at, err := h.parseAt(req.At)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	run, err := h.recordRun(r.Context(), at, req.Key)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayrollRunDTO(run))
}

// recordRun computes and appends a run. Callers hold h.mu.
func (h *Handler) recordRun(ctx context.Context, at staff.Timestamp, key string) (payroll.Run, error) {
	run, err := payroll.Compute(h.company, at, key)
	if err != nil {
		return payroll.Run{}, err
	}
	if err := h.Ledger.Append(ctx, run); err != nil {
		return payroll.Run{}, err
	}
	logging.FromContext(ctx).Info("payroll run recorded",
		slog.String("run_id", run.ID.String()),
		slog.String("key", key),
		slog.String("as_of", at.String()),
		slog.String("total", run.Total.String()),
		slog.Int("lines", len(run.Lines)))
	return run, nil
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

func (h *Handler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	writeJSON(w, http.StatusOK, h.Roster.Export(h.company))
}

// ImportRoster replaces the whole company. A rejected roster leaves the
// current company untouched.
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	const op = "ImportRoster"

	var rj factory.RosterJSON
	if err := json.NewDecoder(r.Body).Decode(&rj); err != nil {
		h.fail(w, r, op, fmt.Errorf("%w: invalid request body: %v", staff.ErrInvalidArgument, err))
		return
	}
	co, err := h.Roster.Build(rj)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.replaceCompany(r.Context(), co); err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Roster.Export(h.company))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps err to a status code, logs it and writes the error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message := classify(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{slog.String("operation", op), slog.Int("status", status), slog.Any("error", err)}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}
	writeError(w, status, message, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, payroll.ErrDuplicateRun):
		return http.StatusConflict, "Payroll run already recorded"
	case staff.IsCalendarFailure(err):
		return http.StatusInternalServerError, "Calendar conversion failed"
	case staff.IsInvalidArgument(err):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
