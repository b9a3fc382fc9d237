/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built organizations that replace the current company for
  demos and integration tests.

AVAILABLE SCENARIOS:
  empty:       No collaborators, no payroll history
  small-team:  One manager with two employees
  sales-org:   Three-level sales organization plus three recorded monthly
               payroll runs (January to March 2024)

HOW SCENARIOS WORK:
 1. Build the company from a factory preset roster
 2. Compute its payroll history, if any
 3. Replace roster and payroll history in one transaction
 4. Swap the new company in

  A loader that fails leaves the database and the current company as they
  were.

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "sales-org"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler, fail
  - store/sqlite/sqlite.go: ReplaceAll
  - factory/presets.go: Preset roster documents
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/staff"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty Company",
		Description: "No collaborators and no payroll history",
	},
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "One manager with two direct reports",
	},
	{
		ID:          "sales-org",
		Name:        "Sales Organization",
		Description: "Head of sales over a manager and a sales lead, plus Q1 2024 payroll runs",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets everything and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	const op = "LoadScenario"

	var req LoadScenarioRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		h.fail(w, r, op, err)
		return
	}

	logging.FromContext(r.Context()).Info("scenario loaded", slog.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetScenario clears the roster and payroll history.
func (h *Handler) ResetScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.loadScenario(r.Context(), "empty"); err != nil {
		h.fail(w, r, "ResetScenario", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// scenarioLoader builds a company and the payroll history that goes with it.
type scenarioLoader func() (*staff.Company, []payroll.Run, error)

// loadScenario dispatches to a loader and installs its result. Callers
// hold h.mu.
func (h *Handler) loadScenario(ctx context.Context, id string) error {
	var load scenarioLoader
	switch id {
	case "empty":
		load = h.loadEmptyScenario
	case "small-team":
		load = h.loadSmallTeamScenario
	case "sales-org":
		load = h.loadSalesOrgScenario
	default:
		return fmt.Errorf("%w: unknown scenario %q", staff.ErrInvalidArgument, id)
	}

	co, runs, err := load()
	if err != nil {
		return fmt.Errorf("failed to load scenario %s: %w", id, err)
	}
	if err := h.Store.ReplaceAll(ctx, co, runs); err != nil {
		return fmt.Errorf("failed to store scenario %s: %w", id, err)
	}

	h.company.RemoveAllCollaborators()
	h.company = co
	h.currentScenario = id
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadEmptyScenario() (*staff.Company, []payroll.Run, error) {
	return staff.NewCompany(), nil, nil
}

func (h *Handler) loadSmallTeamScenario() (*staff.Company, []payroll.Run, error) {
	co, err := h.Roster.ParseRoster(factory.SmallTeamJSON())
	return co, nil, err
}

func (h *Handler) loadSalesOrgScenario() (*staff.Company, []payroll.Run, error) {
	co, err := h.Roster.ParseRoster(factory.SalesOrgJSON())
	if err != nil {
		return nil, nil, err
	}

	var runs []payroll.Run
	for month := time.January; month <= time.March; month++ {
		at, err := payroll.MonthStart(2024, month)
		if err != nil {
			return nil, nil, err
		}
		run, err := payroll.Compute(co, at, payroll.MonthKey(2024, month))
		if err != nil {
			return nil, nil, err
		}
		runs = append(runs, run)
	}
	return co, runs, nil
}
