package staff

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Breakdown shows how a salary was computed.
//
//	Total = BasePart + SubordinatePart
//	BasePart = base rate * (1 + GrowthPercent/100)
//	SubordinatePart = SubordinateSum * rule share / 100
type Breakdown struct {
	At              Timestamp
	Role            Role
	BaseRate        decimal.Decimal
	WorkYears       int
	GrowthPercent   decimal.Decimal
	BasePart        decimal.Decimal
	SubordinateSum  decimal.Decimal
	SubordinatePart decimal.Decimal
	Total           decimal.Decimal
}

// CalculateSalary returns the salary of c at the given time.
// It fails with ErrBeforeHireTime when at precedes the hire time, and with
// any error raised while computing subordinates' salaries.
func (c *Collaborator) CalculateSalary(at Timestamp) (decimal.Decimal, error) {
	b, err := c.SalaryBreakdown(at)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

// SalaryBreakdown is CalculateSalary with every intermediate value.
func (c *Collaborator) SalaryBreakdown(at Timestamp) (Breakdown, error) {
	rule, err := RuleFor(c.role)
	if err != nil {
		return Breakdown{}, err
	}
	if at < c.hireTime {
		return Breakdown{}, ErrBeforeHireTime
	}

	years, err := WholeWorkYears(c.hireTime, at)
	if err != nil {
		return Breakdown{}, err
	}

	growth := rule.YearlyPercent.Mul(decimal.NewFromInt(int64(years)))
	if growth.GreaterThan(rule.CapPercent) {
		growth = rule.CapPercent
	}
	basePart := c.baseRate.Mul(decimal.NewFromInt(1).Add(growth.Div(hundred)))

	subSum, err := c.subordinateSum(at, rule.Reach)
	if err != nil {
		return Breakdown{}, err
	}
	subPart := subSum.Mul(rule.SubordinatePercent).Div(hundred)

	return Breakdown{
		At:              at,
		Role:            c.role,
		BaseRate:        c.baseRate,
		WorkYears:       years,
		GrowthPercent:   growth,
		BasePart:        basePart,
		SubordinateSum:  subSum,
		SubordinatePart: subPart,
		Total:           basePart.Add(subPart),
	}, nil
}

func (c *Collaborator) subordinateSum(at Timestamp, reach Reach) (decimal.Decimal, error) {
	sum := decimal.Zero
	if reach == ReachNone {
		return sum, nil
	}
	for _, sub := range c.Subordinates() {
		var (
			s   decimal.Decimal
			err error
		)
		if reach == ReachAllLevels {
			s, err = sub.AggregateSalaryDownward(at)
		} else {
			s, err = sub.CalculateSalary(at)
		}
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(s)
	}
	return sum, nil
}

// AggregateSalaryDownward returns the salary of c plus the salary of every
// collaborator below it at any depth. The first failure aborts the sum.
func (c *Collaborator) AggregateSalaryDownward(at Timestamp) (decimal.Decimal, error) {
	total, err := c.CalculateSalary(at)
	if err != nil {
		return decimal.Zero, err
	}
	for _, sub := range c.Subordinates() {
		s, err := sub.AggregateSalaryDownward(at)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(s)
	}
	return total, nil
}
