package staff_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/staff"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// org builds, all hired 2015-10-18 at the default rate of 2000:
//
//	sales
//	└── manager
//	    ├── e1
//	    └── e2
type org struct {
	co                     *staff.Company
	sales, manager, e1, e2 *staff.Collaborator
}

func newOrg(t *testing.T) org {
	t.Helper()
	co := staff.NewCompany()
	hired := ts(t, 2015, 10, 18)

	o := org{
		co:      co,
		sales:   hire(t, co, staff.RoleSales, "Sid"),
		manager: hire(t, co, staff.RoleManager, "Mia"),
		e1:      hire(t, co, staff.RoleEmployee, "Eve"),
		e2:      hire(t, co, staff.RoleEmployee, "Eli"),
	}
	for _, c := range co.Collaborators() {
		c.SetHireTime(hired)
	}
	require.NoError(t, co.AddSubordinate(o.sales, o.manager))
	require.NoError(t, co.AddSubordinate(o.manager, o.e1))
	require.NoError(t, co.AddSubordinate(o.manager, o.e2))
	return o
}

// =============================================================================
// PER-ROLE SALARY
// =============================================================================

func TestEmployeeSalary_GrowthAndCap(t *testing.T) {
	e, err := staff.NewEmployee("Eve")
	require.NoError(t, err)
	e.SetHireTime(ts(t, 2015, 10, 18))

	tests := []struct {
		name string
		at   staff.Timestamp
		want string
	}{
		{"on hire day", ts(t, 2015, 10, 18), "2000"},
		{"first anniversary not passed", ts(t, 2016, 10, 18), "2000"},
		{"one year", ts(t, 2016, 10, 19), "2060"},
		{"five years", ts(t, 2020, 10, 19), "2300"},
		{"ten years hits cap", ts(t, 2025, 10, 19), "2600"},
		{"twenty years stays capped", ts(t, 2035, 10, 19), "2600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CalculateSalary(tt.at)
			require.NoError(t, err)
			assertMoney(t, tt.want, got)
		})
	}
}

func TestSalary_BeforeHireTime(t *testing.T) {
	e, err := staff.NewEmployee("Eve")
	require.NoError(t, err)
	e.SetHireTime(ts(t, 2015, 10, 18))

	_, err = e.CalculateSalary(ts(t, 2015, 10, 17))

	assert.ErrorIs(t, err, staff.ErrBeforeHireTime)
	assert.True(t, staff.IsInvalidArgument(err))
}

func TestManagerSalary_DirectSubordinatesOnly(t *testing.T) {
	// GIVEN: A manager with two employees, five years in
	// WHEN: Computing the manager's salary
	// THEN: 2000 * 1.25 plus 0.5% of 2300 + 2300

	o := newOrg(t)
	at := ts(t, 2020, 10, 19)

	got, err := o.manager.CalculateSalary(at)
	require.NoError(t, err)
	assertMoney(t, "2523", got)
}

func TestManagerSalary_CapAndNoSubordinates(t *testing.T) {
	m, err := staff.NewManager("Mia")
	require.NoError(t, err)
	require.NoError(t, m.SetBaseRate(dec("3000")))

	got, err := m.CalculateSalary(ts(t, 1990, 1, 1))
	require.NoError(t, err)
	assertMoney(t, "4200", got)
}

func TestSalesSalary_AllLevels(t *testing.T) {
	// GIVEN: Sales above the manager subtree, five years in
	// WHEN: Computing the sales salary
	// THEN: 2000 * 1.05 plus 0.3% of (2523 + 2300 + 2300)

	o := newOrg(t)
	at := ts(t, 2020, 10, 19)

	got, err := o.sales.CalculateSalary(at)
	require.NoError(t, err)
	assertMoney(t, "2121.369", got)
}

func TestSalesSalary_CapAtThirtyFive(t *testing.T) {
	s, err := staff.NewSales("Sid")
	require.NoError(t, err)

	got, err := s.CalculateSalary(ts(t, 2010, 1, 2))
	require.NoError(t, err)
	assertMoney(t, "2700", got)
}

func TestSalary_SubordinateHiredLaterFails(t *testing.T) {
	// GIVEN: A manager whose subordinate was hired after the evaluation time
	// WHEN: Computing the manager's salary at that time
	// THEN: The subordinate's failure propagates

	o := newOrg(t)
	o.e2.SetHireTime(ts(t, 2021, 1, 1))

	_, err := o.manager.CalculateSalary(ts(t, 2020, 10, 19))
	assert.ErrorIs(t, err, staff.ErrBeforeHireTime)

	_, err = o.sales.AggregateSalaryDownward(ts(t, 2020, 10, 19))
	assert.ErrorIs(t, err, staff.ErrBeforeHireTime)
}

// =============================================================================
// AGGREGATES
// =============================================================================

func TestAggregateSalaryDownward(t *testing.T) {
	o := newOrg(t)
	at := ts(t, 2020, 10, 19)

	got, err := o.manager.AggregateSalaryDownward(at)
	require.NoError(t, err)
	assertMoney(t, "7123", got)

	got, err = o.sales.AggregateSalaryDownward(at)
	require.NoError(t, err)
	assertMoney(t, "9244.369", got)

	got, err = o.e1.AggregateSalaryDownward(at)
	require.NoError(t, err)
	assertMoney(t, "2300", got)
}

func TestSalaryBreakdown_Consistent(t *testing.T) {
	o := newOrg(t)
	at := ts(t, 2020, 10, 19)

	b, err := o.sales.SalaryBreakdown(at)
	require.NoError(t, err)

	assert.Equal(t, staff.RoleSales, b.Role)
	assert.Equal(t, 5, b.WorkYears)
	assertMoney(t, "5", b.GrowthPercent)
	assertMoney(t, "2100", b.BasePart)
	assertMoney(t, "7123", b.SubordinateSum)
	assertMoney(t, "21.369", b.SubordinatePart)
	assertMoney(t, b.BasePart.Add(b.SubordinatePart).String(), b.Total)

	total, err := o.sales.CalculateSalary(at)
	require.NoError(t, err)
	assert.True(t, total.Equal(b.Total))
}

func TestRuleFor(t *testing.T) {
	rule, err := staff.RuleFor(staff.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, staff.ReachDirect, rule.Reach)
	assertMoney(t, "0.5", rule.SubordinatePercent)

	_, err = staff.RuleFor("intern")
	assert.ErrorIs(t, err, staff.ErrUnknownRole)
}
