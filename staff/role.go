/*
role.go - Collaborator roles and their salary rules

PURPOSE:
  The collaborator variants form a closed set. Instead of one type per
  variant, every Collaborator carries a Role and the salary engine looks
  the role up in a fixed rule table.

RULES:
  Role      Growth/yr  Cap   Subordinate share  Reach
  employee  3%         30%   -                  -
  manager   5%         40%   0.5%               direct subordinates
  sales     1%         35%   0.3%               all levels below

SEE ALSO:
  - salary.go: Applies the rules
  - collaborator.go: Role-specific constructors
*/
package staff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLE
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleSales    Role = "sales"
)

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleSales}
}

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleRules[r]
	return ok
}

// CanLead reports whether collaborators of this role may have subordinates.
func (r Role) CanLead() bool {
	return r != RoleEmployee && r.Valid()
}

func (r Role) String() string { return string(r) }

// =============================================================================
// RULE TABLE
// =============================================================================

// Reach says which subordinates contribute to a chief's salary.
type Reach int

const (
	// ReachNone: subordinates add nothing.
	ReachNone Reach = iota
	// ReachDirect: the sum of direct subordinates' salaries.
	ReachDirect
	// ReachAllLevels: the sum of every salary below, at any depth.
	ReachAllLevels
)

func (r Reach) String() string {
	switch r {
	case ReachDirect:
		return "direct"
	case ReachAllLevels:
		return "all_levels"
	default:
		return "none"
	}
}

// Rule holds the salary constants of a role. Percentages are whole percent.
type Rule struct {
	YearlyPercent      decimal.Decimal
	CapPercent         decimal.Decimal
	SubordinatePercent decimal.Decimal
	Reach              Reach
}

var roleRules = map[Role]Rule{
	RoleEmployee: {
		YearlyPercent:      decimal.NewFromInt(3),
		CapPercent:         decimal.NewFromInt(30),
		SubordinatePercent: decimal.Zero,
		Reach:              ReachNone,
	},
	RoleManager: {
		YearlyPercent:      decimal.NewFromInt(5),
		CapPercent:         decimal.NewFromInt(40),
		SubordinatePercent: decimal.RequireFromString("0.5"),
		Reach:              ReachDirect,
	},
	RoleSales: {
		YearlyPercent:      decimal.NewFromInt(1),
		CapPercent:         decimal.NewFromInt(35),
		SubordinatePercent: decimal.RequireFromString("0.3"),
		Reach:              ReachAllLevels,
	},
}

// RuleFor returns the salary rule of r.
func RuleFor(r Role) (Rule, error) {
	rule, ok := roleRules[r]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
	return rule, nil
}
