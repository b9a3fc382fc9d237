/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the staff model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TIMES:
  Timestamps travel as local "2006-01-02T15:04:05" strings; requests also
  accept "2006-01-02". Money travels as decimal strings ("2523.5").

VALIDATION:
  Request types carry go-playground/validator tags for shape checks
  (required fields, known roles, UUID syntax). Domain rules (base rate
  range, hierarchy rules) are enforced by the staff package.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/roster.go: RosterJSON, used as-is by /api/roster
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/staff"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

type CollaboratorDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Role           string          `json:"role"`
	HiredAt        string          `json:"hired_at"`
	BaseRate       decimal.Decimal `json:"base_rate"`
	ChiefID        *string         `json:"chief_id"`
	SubordinateIDs []string        `json:"subordinate_ids"`
}

type CreateCollaboratorRequest struct {
	Name     string           `json:"name" validate:"required,min=1,max=200"`
	Role     string           `json:"role" validate:"required,oneof=employee manager sales"`
	HiredAt  string           `json:"hired_at"`
	BaseRate *decimal.Decimal `json:"base_rate"`
	ChiefID  string           `json:"chief_id" validate:"omitempty,uuid"`
}

// UpdateCollaboratorRequest changes only the fields present.
type UpdateCollaboratorRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	HiredAt  *string          `json:"hired_at" validate:"omitempty,min=1"`
	BaseRate *decimal.Decimal `json:"base_rate"`
}

type AddSubordinateRequest struct {
	SubordinateID string `json:"subordinate_id" validate:"required,uuid"`
}

// =============================================================================
// SALARY
// =============================================================================

type SalaryDTO struct {
	CollaboratorID  string          `json:"collaborator_id"`
	Name            string          `json:"name"`
	Role            string          `json:"role"`
	At              string          `json:"at"`
	WorkYears       int             `json:"work_years"`
	GrowthPercent   decimal.Decimal `json:"growth_percent"`
	BasePart        decimal.Decimal `json:"base_part"`
	SubordinateSum  decimal.Decimal `json:"subordinate_sum"`
	SubordinatePart decimal.Decimal `json:"subordinate_part"`
	Salary          decimal.Decimal `json:"salary"`
	WithSubtree     decimal.Decimal `json:"with_subtree"`
}

type PayrollTotalDTO struct {
	At        string          `json:"at"`
	Headcount int             `json:"headcount"`
	Total     decimal.Decimal `json:"total"`
}

// =============================================================================
// PAYROLL RUNS
// =============================================================================

type PayrollRunDTO struct {
	ID        string           `json:"id"`
	Key       string           `json:"key,omitempty"`
	AsOf      string           `json:"as_of"`
	Total     decimal.Decimal  `json:"total"`
	CreatedAt string           `json:"created_at"`
	Lines     []PayrollLineDTO `json:"lines"`
}

type PayrollLineDTO struct {
	CollaboratorID string          `json:"collaborator_id"`
	Name           string          `json:"name"`
	Role           string          `json:"role"`
	WorkYears      int             `json:"work_years"`
	Salary         decimal.Decimal `json:"salary"`
}

// CreatePayrollRunRequest records a run. Without "at" the run is evaluated
// now; with a key, a second run with the same key is rejected.
type CreatePayrollRunRequest struct {
	At  string `json:"at"`
	Key string `json:"key" validate:"omitempty,max=100"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCollaboratorDTO(c *staff.Collaborator) CollaboratorDTO {
	dto := CollaboratorDTO{
		ID:             c.ID().String(),
		Name:           c.Name(),
		Role:           c.Role().String(),
		HiredAt:        c.HireTime().String(),
		BaseRate:       c.BaseRate(),
		SubordinateIDs: []string{},
	}
	if chief := c.Chief(); chief != nil {
		id := chief.ID().String()
		dto.ChiefID = &id
	}
	for _, sub := range c.Subordinates() {
		dto.SubordinateIDs = append(dto.SubordinateIDs, sub.ID().String())
	}
	return dto
}

func toSalaryDTO(c *staff.Collaborator, b staff.Breakdown, withSubtree decimal.Decimal) SalaryDTO {
	return SalaryDTO{
		CollaboratorID:  c.ID().String(),
		Name:            c.Name(),
		Role:            c.Role().String(),
		At:              b.At.String(),
		WorkYears:       b.WorkYears,
		GrowthPercent:   b.GrowthPercent,
		BasePart:        b.BasePart,
		SubordinateSum:  b.SubordinateSum,
		SubordinatePart: b.SubordinatePart,
		Salary:          b.Total,
		WithSubtree:     withSubtree,
	}
}

func toPayrollRunDTO(run payroll.Run) PayrollRunDTO {
	dto := PayrollRunDTO{
		ID:        run.ID.String(),
		Key:       run.Key,
		AsOf:      run.AsOf.String(),
		Total:     run.Total,
		CreatedAt: run.CreatedAt.UTC().Format(time.RFC3339),
		Lines:     make([]PayrollLineDTO, 0, len(run.Lines)),
	}
	for _, l := range run.Lines {
		dto.Lines = append(dto.Lines, PayrollLineDTO{
			CollaboratorID: l.CollaboratorID.String(),
			Name:           l.Name,
			Role:           l.Role.String(),
			WorkYears:      l.WorkYears,
			Salary:         l.Salary,
		})
	}
	return dto
}
