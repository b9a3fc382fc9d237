/*
Package payroll records salary runs computed from a staff.Company.

PURPOSE:
  A Run is a frozen picture of what every collaborator earned as of one
  instant: one Line per collaborator plus the company total. Runs are
  appended to a Ledger and never edited, so the history of what was paid
  survives later roster changes (raises, firings, reorganizations).

KEY CONCEPTS:
  - Run:  Header with idempotency key, evaluation time and total
  - Line: One collaborator's salary inside a run
  - Key:  Idempotency key; MonthKey gives the key of a scheduled monthly run

USAGE:
  run, err := payroll.Compute(company, at, payroll.MonthKey(2025, time.March))
  err = ledger.Append(ctx, run)
  if errors.Is(err, payroll.ErrDuplicateRun) {
      // already paid this month
  }

SEE ALSO:
  - ledger.go: Store interface and append-only Ledger
  - store/memory.go: In-memory Store
  - store/sqlite/sqlite.go: SQLite Store
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/staff"
)

// =============================================================================
// RUN - One payroll evaluation
// =============================================================================

type Run struct {
	ID        uuid.UUID
	Key       string
	AsOf      staff.Timestamp
	Total     decimal.Decimal
	Lines     []Line
	CreatedAt time.Time
}

type Line struct {
	CollaboratorID uuid.UUID
	Name           string
	Role           staff.Role
	WorkYears      int
	Salary         decimal.Decimal
}

// Compute evaluates every collaborator of co at the given time, in hire
// order. The run total equals co.CalculateTotalSalary(at).
func Compute(co *staff.Company, at staff.Timestamp, key string) (Run, error) {
	collaborators := co.Collaborators()
	run := Run{
		ID:        uuid.New(),
		Key:       key,
		AsOf:      at,
		Total:     decimal.Zero,
		Lines:     make([]Line, 0, len(collaborators)),
		CreatedAt: time.Now().UTC(),
	}

	for _, c := range collaborators {
		b, err := c.SalaryBreakdown(at)
		if err != nil {
			return Run{}, fmt.Errorf("salary of %s (%s): %w", c.Name(), c.ID(), err)
		}
		run.Lines = append(run.Lines, Line{
			CollaboratorID: c.ID(),
			Name:           c.Name(),
			Role:           c.Role(),
			WorkYears:      b.WorkYears,
			Salary:         b.Total,
		})
		run.Total = run.Total.Add(b.Total)
	}
	return run, nil
}

// =============================================================================
// MONTHLY SCHEDULE
// =============================================================================

// MonthKey is the idempotency key of the scheduled run for a month.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("monthly-%04d-%02d", year, int(month))
}

// MonthStart is the first local instant of a month.
func MonthStart(year int, month time.Month) (staff.Timestamp, error) {
	return staff.MakeTimestamp(year, int(month), 1, 0, 0, 0)
}
