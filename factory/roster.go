/*
Package factory converts roster JSON to a staff.Company and back.

PURPOSE:
  A roster is the portable form of a company: its collaborators and the
  reporting lines between them. Importing goes through Company.Hire and
  Company.AddSubordinate, so imported data is held to exactly the same
  rules as interactive edits (no employee chiefs, no second chief, no
  cycles).

JSON SCHEMA:
  {
    "collaborators": [
      {"key": "ann", "name": "Ann", "role": "manager",
       "hired_at": "2015-10-18", "base_rate": "3000"},
      {"key": "bob", "name": "Bob", "role": "employee"}
    ],
    "reporting_lines": [
      {"chief": "ann", "subordinate": "bob"}
    ]
  }

  Keys are local to one document. "id" may carry a UUID to keep identity
  across export/import; exports use the ID as key.

USAGE:
  f := factory.NewRosterFactory()
  co, err := f.ParseRoster(factory.SmallTeamJSON())
  doc := f.Export(co)

SEE ALSO:
  - presets.go: Demo rosters
  - staff/company.go: The rules every import is checked against
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/staff"
)

var (
	ErrDuplicateKey = fmt.Errorf("%w: duplicate collaborator key", staff.ErrInvalidArgument)
	ErrUnknownKey   = fmt.Errorf("%w: unknown collaborator key", staff.ErrInvalidArgument)
	ErrMissingKey   = fmt.Errorf("%w: collaborator key is required", staff.ErrInvalidArgument)
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type RosterJSON struct {
	Collaborators  []CollaboratorJSON  `json:"collaborators"`
	ReportingLines []ReportingLineJSON `json:"reporting_lines,omitempty"`
}

type CollaboratorJSON struct {
	Key      string           `json:"key"`
	ID       string           `json:"id,omitempty"`
	Name     string           `json:"name"`
	Role     string           `json:"role"`
	HiredAt  string           `json:"hired_at,omitempty"`  // RFC 3339, or 2006-01-02[T15:04:05] in local time
	BaseRate *decimal.Decimal `json:"base_rate,omitempty"` // default 2000
}

type ReportingLineJSON struct {
	Chief       string `json:"chief"`
	Subordinate string `json:"subordinate"`
}

// =============================================================================
// ROSTER FACTORY
// =============================================================================

type RosterFactory struct{}

func NewRosterFactory() *RosterFactory {
	return &RosterFactory{}
}

// ParseRoster parses a roster document into a new Company.
func (f *RosterFactory) ParseRoster(jsonStr string) (*staff.Company, error) {
	var rj RosterJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse roster JSON: %v", staff.ErrInvalidArgument, err)
	}
	return f.Build(rj)
}

// Build creates a Company from a decoded roster. Nothing is returned on
// error; the first offending collaborator or line is named in the error.
func (f *RosterFactory) Build(rj RosterJSON) (*staff.Company, error) {
	co := staff.NewCompany()
	byKey := make(map[string]*staff.Collaborator, len(rj.Collaborators))

	for i, cj := range rj.Collaborators {
		if cj.Key == "" {
			return nil, fmt.Errorf("collaborator #%d: %w", i, ErrMissingKey)
		}
		if _, dup := byKey[cj.Key]; dup {
			return nil, fmt.Errorf("collaborator %q: %w", cj.Key, ErrDuplicateKey)
		}
		c, err := f.newCollaborator(cj)
		if err != nil {
			return nil, fmt.Errorf("collaborator %q: %w", cj.Key, err)
		}
		if err := co.Hire(c); err != nil {
			return nil, fmt.Errorf("collaborator %q: %w", cj.Key, err)
		}
		byKey[cj.Key] = c
	}

	for _, lj := range rj.ReportingLines {
		chief, ok := byKey[lj.Chief]
		if !ok {
			return nil, fmt.Errorf("reporting line %q -> %q: chief: %w", lj.Chief, lj.Subordinate, ErrUnknownKey)
		}
		sub, ok := byKey[lj.Subordinate]
		if !ok {
			return nil, fmt.Errorf("reporting line %q -> %q: subordinate: %w", lj.Chief, lj.Subordinate, ErrUnknownKey)
		}
		if err := co.AddSubordinate(chief, sub); err != nil {
			return nil, fmt.Errorf("reporting line %q -> %q: %w", lj.Chief, lj.Subordinate, err)
		}
	}

	return co, nil
}

func (f *RosterFactory) newCollaborator(cj CollaboratorJSON) (*staff.Collaborator, error) {
	role, err := staff.ParseRole(cj.Role)
	if err != nil {
		return nil, err
	}

	id := uuid.Nil
	if cj.ID != "" {
		id, err = uuid.Parse(cj.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: id: %v", staff.ErrInvalidArgument, err)
		}
	}

	c, err := staff.NewWithID(id, role, cj.Name)
	if err != nil {
		return nil, err
	}

	if cj.HiredAt != "" {
		hired, err := staff.ParseTimestamp(cj.HiredAt)
		if err != nil {
			return nil, fmt.Errorf("hired_at: %w", err)
		}
		c.SetHireTime(hired)
	}
	if cj.BaseRate != nil {
		if err := c.SetBaseRate(*cj.BaseRate); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Export writes co as a roster keyed by collaborator ID, in hire order.
func (f *RosterFactory) Export(co *staff.Company) RosterJSON {
	collaborators := co.Collaborators()
	rj := RosterJSON{Collaborators: make([]CollaboratorJSON, 0, len(collaborators))}

	for _, c := range collaborators {
		rate := c.BaseRate()
		rj.Collaborators = append(rj.Collaborators, CollaboratorJSON{
			Key:      c.ID().String(),
			ID:       c.ID().String(),
			Name:     c.Name(),
			Role:     c.Role().String(),
			HiredAt:  staff.FormatInstant(c.HireTime()),
			BaseRate: &rate,
		})
	}
	for _, c := range collaborators {
		for _, sub := range c.Subordinates() {
			rj.ReportingLines = append(rj.ReportingLines, ReportingLineJSON{
				Chief:       c.ID().String(),
				Subordinate: sub.ID().String(),
			})
		}
	}
	return rj
}

// ExportJSON is Export followed by indented JSON encoding.
func (f *RosterFactory) ExportJSON(co *staff.Company) (string, error) {
	b, err := json.MarshalIndent(f.Export(co), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode roster: %w", err)
	}
	return string(b), nil
}
