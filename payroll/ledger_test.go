package payroll_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
	"github.com/warp/payroll-engine/staff"
)

func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

// =============================================================================
// TEST SETUP
// =============================================================================

// newTeam returns Mia (manager) over Eve and Eli, hired 2015-10-18.
func newTeam(t *testing.T) *staff.Company {
	t.Helper()
	co := staff.NewCompany()
	hired, err := staff.MakeTimestamp(2015, 10, 18, 0, 0, 0)
	require.NoError(t, err)

	mia, err := staff.NewManager("Mia")
	require.NoError(t, err)
	eve, err := staff.NewEmployee("Eve")
	require.NoError(t, err)
	eli, err := staff.NewEmployee("Eli")
	require.NoError(t, err)

	for _, c := range []*staff.Collaborator{mia, eve, eli} {
		c.SetHireTime(hired)
		require.NoError(t, co.Hire(c))
	}
	require.NoError(t, co.AddSubordinate(mia, eve))
	require.NoError(t, co.AddSubordinate(mia, eli))
	return co
}

func at(t *testing.T, year, month, day int) staff.Timestamp {
	t.Helper()
	v, err := staff.MakeTimestamp(year, month, day, 0, 0, 0)
	require.NoError(t, err)
	return v
}

// =============================================================================
// COMPUTE
// =============================================================================

func TestCompute_LinesMatchCompanyTotal(t *testing.T) {
	// GIVEN: A manager with two employees, five years in
	// WHEN: Computing a run
	// THEN: One line per collaborator, total equals the company total

	co := newTeam(t)
	when := at(t, 2020, 10, 19)

	run, err := payroll.Compute(co, when, "adhoc-1")
	require.NoError(t, err)

	require.Len(t, run.Lines, 3)
	assert.Equal(t, "Mia", run.Lines[0].Name)
	assert.Equal(t, staff.RoleManager, run.Lines[0].Role)
	assert.Equal(t, 5, run.Lines[0].WorkYears)
	assert.True(t, decimal.RequireFromString("2523").Equal(run.Lines[0].Salary))

	want, err := co.CalculateTotalSalary(when)
	require.NoError(t, err)
	assert.True(t, want.Equal(run.Total))
	assert.True(t, decimal.RequireFromString("7123").Equal(run.Total))
	assert.Equal(t, "adhoc-1", run.Key)
	assert.Equal(t, when, run.AsOf)
}

func TestCompute_BeforeHireFails(t *testing.T) {
	co := newTeam(t)

	_, err := payroll.Compute(co, at(t, 2015, 1, 1), "k")

	assert.ErrorIs(t, err, staff.ErrBeforeHireTime)
}

func TestCompute_EmptyCompany(t *testing.T) {
	run, err := payroll.Compute(staff.NewCompany(), at(t, 2020, 1, 1), "")
	require.NoError(t, err)

	assert.Empty(t, run.Lines)
	assert.True(t, run.Total.IsZero())
}

// =============================================================================
// LEDGER
// =============================================================================

func TestLedger_DuplicateKeyRejected(t *testing.T) {
	ctx := context.Background()
	ledger := payroll.NewLedger(store.NewMemory())
	co := newTeam(t)

	first, err := payroll.Compute(co, at(t, 2020, 3, 1), payroll.MonthKey(2020, time.March))
	require.NoError(t, err)
	require.NoError(t, ledger.Append(ctx, first))

	again, err := payroll.Compute(co, at(t, 2020, 3, 1), payroll.MonthKey(2020, time.March))
	require.NoError(t, err)
	assert.ErrorIs(t, ledger.Append(ctx, again), payroll.ErrDuplicateRun)

	runs, err := ledger.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	done, err := ledger.Recorded(ctx, "monthly-2020-03")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestLedger_UnkeyedRunsAlwaysAppend(t *testing.T) {
	ctx := context.Background()
	ledger := payroll.NewLedger(store.NewMemory())
	co := newTeam(t)

	for i := 0; i < 2; i++ {
		run, err := payroll.Compute(co, at(t, 2020, 3, 1), "")
		require.NoError(t, err)
		require.NoError(t, ledger.Append(ctx, run))
	}

	runs, err := ledger.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestMemory_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	run, err := payroll.Compute(newTeam(t), at(t, 2020, 3, 1), "k")
	require.NoError(t, err)
	require.NoError(t, mem.Append(ctx, run))

	runs, err := mem.List(ctx)
	require.NoError(t, err)
	runs[0].Lines[0].Name = "changed"

	again, err := mem.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mia", again[0].Lines[0].Name)

	assert.ErrorIs(t, mem.Append(ctx, run), payroll.ErrDuplicateRun)
}

// =============================================================================
// MONTHLY SCHEDULE
// =============================================================================

func TestMonthKeyAndStart(t *testing.T) {
	assert.Equal(t, "monthly-2025-03", payroll.MonthKey(2025, time.March))

	start, err := payroll.MonthStart(2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, at(t, 2025, 3, 1), start)
}
