/*
collaborator.go - A person on the payroll

PURPOSE:
  Collaborator holds the personal attributes that drive salary: name,
  hire time, base rate and role. Reporting lines are NOT stored here; the
  owning Company keeps them in side tables keyed by ID, so Chief() and
  Subordinates() are views resolved through that Company.

LIFECYCLE:
  c, _ := staff.NewManager("Ann")   // unattached, no edges
  co.Hire(c)                        // owned by co
  co.AddSubordinate(c, other)       // edges live in co
  co.Fire(c)                        // unattached again, edges dropped

SEE ALSO:
  - company.go: The only mutator of reporting lines
  - salary.go: CalculateSalary and AggregateSalaryDownward
*/
package staff

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Base rate bounds and default.
var (
	MinBaseRate     = decimal.NewFromInt(1000)
	MaxBaseRate     = decimal.NewFromInt(5000)
	DefaultBaseRate = decimal.NewFromInt(2000)
)

// =============================================================================
// COLLABORATOR
// =============================================================================

type Collaborator struct {
	id       uuid.UUID
	role     Role
	name     string
	hireTime Timestamp
	baseRate decimal.Decimal

	// company that owns this collaborator, nil while unattached
	staff *Company
}

// New creates an unattached collaborator with a fresh ID, hire time 0 and
// the default base rate.
func New(role Role, name string) (*Collaborator, error) {
	return NewWithID(uuid.New(), role, name)
}

func NewEmployee(name string) (*Collaborator, error) { return New(RoleEmployee, name) }

func NewManager(name string) (*Collaborator, error) { return New(RoleManager, name) }

func NewSales(name string) (*Collaborator, error) { return New(RoleSales, name) }

// NewWithID restores a collaborator whose identity was assigned earlier,
// e.g. when loading a roster from storage. A nil UUID gets a fresh one.
func NewWithID(id uuid.UUID, role Role, name string) (*Collaborator, error) {
	if !role.Valid() {
		return nil, ErrUnknownRole
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Collaborator{
		id:       id,
		role:     role,
		name:     name,
		baseRate: DefaultBaseRate,
	}, nil
}

// =============================================================================
// ATTRIBUTES
// =============================================================================

func (c *Collaborator) ID() uuid.UUID { return c.id }

func (c *Collaborator) Role() Role { return c.role }

func (c *Collaborator) Name() string { return c.name }

func (c *Collaborator) SetName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	c.name = name
	return nil
}

func (c *Collaborator) HireTime() Timestamp { return c.hireTime }

// SetHireTime accepts any timestamp.
func (c *Collaborator) SetHireTime(ts Timestamp) { c.hireTime = ts }

func (c *Collaborator) BaseRate() decimal.Decimal { return c.baseRate }

// SetBaseRate fails with a RangeError outside [MinBaseRate, MaxBaseRate].
func (c *Collaborator) SetBaseRate(rate decimal.Decimal) error {
	if rate.LessThan(MinBaseRate) || rate.GreaterThan(MaxBaseRate) {
		return &RangeError{
			Field: "base rate",
			Value: rate.String(),
			Min:   MinBaseRate.String(),
			Max:   MaxBaseRate.String(),
		}
	}
	c.baseRate = rate
	return nil
}

// =============================================================================
// HIERARCHY VIEWS - Resolved through the owning Company
// =============================================================================

// Chief returns the direct chief, or nil.
func (c *Collaborator) Chief() *Collaborator {
	co := c.owner()
	if co == nil {
		return nil
	}
	return co.chiefOf(c.id)
}

// Subordinates returns a copy of the direct subordinates in link order.
func (c *Collaborator) Subordinates() []*Collaborator {
	co := c.owner()
	if co == nil {
		return nil
	}
	return co.subordinatesOf(c.id)
}

// HasInSubordination reports whether x is a direct subordinate of c.
func (c *Collaborator) HasInSubordination(x *Collaborator) bool {
	if x == nil {
		return false
	}
	co := c.owner()
	if co == nil || x.owner() != co {
		return false
	}
	return co.chiefs[x.id] == c.id
}

// owner returns the company currently holding c, or nil.
func (c *Collaborator) owner() *Company {
	if c.staff == nil || !c.staff.owns(c) {
		return nil
	}
	return c.staff
}
