/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Collaborators and reporting lines are created
	- Payroll history is recorded where the scenario includes it
	- Loading a scenario replaces everything loaded before
*/
package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func TestScenario_SmallTeam(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "small-team"))

	assert.Equal(t, "small-team", h.currentScenario)
	assert.Equal(t, 3, h.company.Len())

	ann := h.company.Collaborators()[0]
	assert.Equal(t, "Ann Lee", ann.Name())
	assert.Len(t, ann.Subordinates(), 2)

	runs, err := h.Ledger.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestScenario_SalesOrg(t *testing.T) {
	// GIVEN: The sales-org scenario
	// WHEN: Loading it
	// THEN: Seven collaborators and one recorded run per month of Q1 2024

	h := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "sales-org"))
	assert.Equal(t, 7, h.company.Len())

	runs, err := h.Ledger.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	for i, run := range runs {
		month := time.Month(i + 1)
		assert.Equal(t, payroll.MonthKey(2024, month), run.Key)

		want, err := payroll.MonthStart(2024, month)
		require.NoError(t, err)
		assert.Equal(t, want, run.AsOf)

		total, err := h.company.CalculateTotalSalary(run.AsOf)
		require.NoError(t, err)
		assert.True(t, total.Equal(run.Total), "run %s: want %s, got %s", run.Key, total, run.Total)
		assert.Len(t, run.Lines, 7)
	}
}

func TestScenario_LoadReplacesPrevious(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "sales-org"))
	require.NoError(t, h.loadScenario(ctx, "small-team"))

	assert.Equal(t, 3, h.company.Len())
	runs, err := h.Ledger.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs, "payroll history is reset with the roster")

	stored, err := h.Store.LoadRoster(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Len())
}

func TestScenario_Unknown(t *testing.T) {
	h := setupTestHandler(t)
	require.NoError(t, h.loadScenario(context.Background(), "small-team"))

	err := h.loadScenario(context.Background(), "nope")
	assert.Error(t, err)
	assert.Equal(t, "small-team", h.currentScenario, "an unknown id leaves the current scenario loaded")
	assert.Equal(t, 3, h.company.Len())
}

func TestScenario_HTTP(t *testing.T) {
	_, router := setupRouter(t)

	list := decodeBody[[]ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", nil))
	assert.Len(t, list, len(scenarios))

	rec := do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "sales-org"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	current := decodeBody[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "sales-org", current.ID)

	assert.Equal(t, http.StatusBadRequest,
		do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, router, http.MethodPost, "/api/scenarios/load", `{}`).Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	collaborators := decodeBody[[]CollaboratorDTO](t, do(t, router, http.MethodGet, "/api/collaborators", nil))
	assert.Empty(t, collaborators)
	runs := decodeBody[[]PayrollRunDTO](t, do(t, router, http.MethodGet, "/api/payroll/runs", nil))
	assert.Empty(t, runs)
	assert.Equal(t, "null\n", do(t, router, http.MethodGet, "/api/scenarios/current", nil).Body.String())
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			h := setupTestHandler(t)
			assert.NoError(t, h.loadScenario(context.Background(), s.ID))
		})
	}
}
