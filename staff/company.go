/*
company.go - The staff registry and owner of every reporting line

PURPOSE:
  Company owns an insertion-ordered set of collaborators and the edges
  between them. Edges are two side tables keyed by collaborator ID:

    chiefs:       subordinate ID -> chief ID
    subordinates: chief ID       -> ordered subordinate IDs

  Every public mutation validates first and mutates second, so a failed
  call leaves the company unchanged.

INVARIANTS:
  - Employees never lead
  - At most one chief per collaborator
  - Both ends of a link are in staff of this company
  - No duplicate subordinate under one chief
  - The hierarchy is a forest (no collaborator reports to itself or to
    one of its own subordinates at any depth)

CONCURRENCY:
  Not safe for concurrent use. Hosts serialize access.

SEE ALSO:
  - collaborator.go: Chief/Subordinates views over these tables
  - errors.go: HierarchyError
*/
package staff

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Company struct {
	members      map[uuid.UUID]*Collaborator
	order        []uuid.UUID
	chiefs       map[uuid.UUID]uuid.UUID
	subordinates map[uuid.UUID][]uuid.UUID
}

func NewCompany() *Company {
	co := &Company{}
	co.reset()
	return co
}

func (co *Company) reset() {
	co.members = make(map[uuid.UUID]*Collaborator)
	co.order = nil
	co.chiefs = make(map[uuid.UUID]uuid.UUID)
	co.subordinates = make(map[uuid.UUID][]uuid.UUID)
}

// =============================================================================
// QUERIES
// =============================================================================

// Collaborators returns the owned collaborators in hire order.
func (co *Company) Collaborators() []*Collaborator {
	out := make([]*Collaborator, 0, len(co.order))
	for _, id := range co.order {
		out = append(out, co.members[id])
	}
	return out
}

// Collaborator looks up an owned collaborator by ID.
func (co *Company) Collaborator(id uuid.UUID) (*Collaborator, bool) {
	c, ok := co.members[id]
	return c, ok
}

func (co *Company) Len() int { return len(co.order) }

// IsInStaff reports whether c is owned by this company. Identity matters:
// a different collaborator with the same ID is not in staff.
func (co *Company) IsInStaff(c *Collaborator) (bool, error) {
	if c == nil {
		return false, ErrNilCollaborator
	}
	return co.owns(c), nil
}

// CalculateTotalSalary sums CalculateSalary over every owned collaborator.
// Subordinate contributions are therefore counted inside each chief's own
// salary and again as the subordinate's own salary.
func (co *Company) CalculateTotalSalary(at Timestamp) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, id := range co.order {
		s, err := co.members[id].CalculateSalary(at)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(s)
	}
	return total, nil
}

func (co *Company) owns(c *Collaborator) bool {
	return c != nil && co.members[c.id] == c
}

func (co *Company) chiefOf(id uuid.UUID) *Collaborator {
	chiefID, ok := co.chiefs[id]
	if !ok {
		return nil
	}
	return co.members[chiefID]
}

func (co *Company) subordinatesOf(id uuid.UUID) []*Collaborator {
	ids := co.subordinates[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Collaborator, 0, len(ids))
	for _, sid := range ids {
		out = append(out, co.members[sid])
	}
	return out
}

// Clone returns an independent copy of co: new collaborators carrying the
// same IDs and attributes, in the same hire order, with the same reporting
// lines. Changes to either company never show in the other.
func (co *Company) Clone() *Company {
	cp := NewCompany()
	for _, id := range co.order {
		c := *co.members[id]
		c.staff = cp
		cp.members[id] = &c
		cp.order = append(cp.order, id)
	}
	for sub, chief := range co.chiefs {
		cp.chiefs[sub] = chief
	}
	for chief, subs := range co.subordinates {
		cp.subordinates[chief] = slices.Clone(subs)
	}
	return cp
}

// =============================================================================
// STAFF MUTATIONS
// =============================================================================

// Hire adds an unattached collaborator to the staff.
func (co *Company) Hire(c *Collaborator) error {
	const op = "hire"
	if c == nil {
		return &HierarchyError{Op: op, Err: ErrNilCollaborator}
	}
	if co.owns(c) {
		return &HierarchyError{Op: op, Subordinate: c.name, Err: ErrAlreadyInStaff}
	}
	if c.Chief() != nil {
		return &HierarchyError{Op: op, Subordinate: c.name, Err: ErrHasChief}
	}
	if len(c.Subordinates()) > 0 {
		return &HierarchyError{Op: op, Subordinate: c.name, Err: ErrHasSubordinates}
	}
	if c.owner() != nil {
		return &HierarchyError{Op: op, Subordinate: c.name, Err: ErrEmployedElsewhere}
	}
	if _, taken := co.members[c.id]; taken {
		return &HierarchyError{Op: op, Subordinate: c.name, Err: ErrAlreadyInStaff}
	}

	co.members[c.id] = c
	co.order = append(co.order, c.id)
	c.staff = co
	return nil
}

// Fire removes c from the staff. It leaves its chief's subordinates and
// its own direct subordinates lose their chief.
func (co *Company) Fire(c *Collaborator) error {
	const op = "fire"
	if c == nil {
		return &HierarchyError{Op: op, Err: ErrNilCollaborator}
	}
	if !co.owns(c) {
		return &HierarchyError{Op: op, Subordinate: c.name, Err: ErrNotInStaff}
	}

	if chiefID, ok := co.chiefs[c.id]; ok {
		if err := co.unlink(chiefID, c.id); err != nil {
			return &HierarchyError{Op: op, Subordinate: c.name, Err: err}
		}
	}
	co.unlinkAll(c.id)

	delete(co.members, c.id)
	co.order = slices.DeleteFunc(co.order, func(id uuid.UUID) bool { return id == c.id })
	c.staff = nil
	return nil
}

// RemoveAllCollaborators empties the staff and drops every reporting line.
func (co *Company) RemoveAllCollaborators() {
	for _, c := range co.members {
		c.staff = nil
	}
	co.reset()
}

// =============================================================================
// REPORTING LINES
// =============================================================================

// AddSubordinate makes sub report directly to chief.
func (co *Company) AddSubordinate(chief, sub *Collaborator) error {
	if err := co.checkLinkEnds("add subordinate", chief, sub); err != nil {
		return err
	}

	fail := func(err error) error {
		return &HierarchyError{Op: "add subordinate", Chief: chief.name, Subordinate: sub.name, Err: err}
	}
	if chief.HasInSubordination(sub) {
		return fail(ErrAlreadySubordinate)
	}
	if _, ok := co.chiefs[sub.id]; ok {
		return fail(ErrHasChief)
	}
	if co.reachesUp(chief.id, sub.id) {
		return fail(ErrCyclicReporting)
	}

	co.link(chief.id, sub.id)
	return nil
}

// RemoveSubordinate detaches sub from chief. Sub must report to chief.
func (co *Company) RemoveSubordinate(chief, sub *Collaborator) error {
	const op = "remove subordinate"
	if err := co.checkLinkEnds(op, chief, sub); err != nil {
		return err
	}
	if !chief.HasInSubordination(sub) {
		return &HierarchyError{Op: op, Chief: chief.name, Subordinate: sub.name, Err: ErrOtherChief}
	}
	if err := co.unlink(chief.id, sub.id); err != nil {
		return &HierarchyError{Op: op, Chief: chief.name, Subordinate: sub.name, Err: err}
	}
	return nil
}

// RemoveAllSubordinates orphans every direct subordinate of chief. They
// are not re-parented. A chief outside this company has no edges here, so
// the call is a no-op for it.
func (co *Company) RemoveAllSubordinates(chief *Collaborator) error {
	const op = "remove all subordinates"
	if chief == nil {
		return &HierarchyError{Op: op, Err: ErrNilCollaborator}
	}
	if !chief.role.CanLead() {
		return &HierarchyError{Op: op, Chief: chief.name, Err: ErrEmployeeCannotLead}
	}
	if co.owns(chief) {
		co.unlinkAll(chief.id)
	}
	return nil
}

func (co *Company) checkLinkEnds(op string, chief, sub *Collaborator) error {
	if chief == nil || sub == nil {
		return &HierarchyError{Op: op, Err: ErrNilCollaborator}
	}
	if !chief.role.CanLead() {
		return &HierarchyError{Op: op, Chief: chief.name, Err: ErrEmployeeCannotLead}
	}
	if !co.owns(chief) {
		return &HierarchyError{Op: op, Chief: chief.name, Err: ErrNotInStaff}
	}
	if !co.owns(sub) {
		return &HierarchyError{Op: op, Subordinate: sub.name, Err: ErrNotInStaff}
	}
	return nil
}

// reachesUp reports whether target is from or one of its ancestors.
func (co *Company) reachesUp(from, target uuid.UUID) bool {
	for id, ok := from, true; ok; id, ok = co.chiefs[id] {
		if id == target {
			return true
		}
	}
	return false
}

// =============================================================================
// PRIMITIVES - Callers have validated; violations are programming errors
// =============================================================================

func (co *Company) link(chief, sub uuid.UUID) {
	if !co.members[chief].role.CanLead() {
		panic("staff: link under a collaborator that cannot lead")
	}
	if _, ok := co.chiefs[sub]; ok {
		panic("staff: link of a collaborator that already has a chief")
	}
	co.subordinates[chief] = append(co.subordinates[chief], sub)
	co.chiefs[sub] = chief
}

func (co *Company) unlink(chief, sub uuid.UUID) error {
	ids := co.subordinates[chief]
	i := slices.Index(ids, sub)
	if i < 0 {
		return ErrSubordinateNotFound
	}
	ids = slices.Delete(ids, i, i+1)
	if len(ids) == 0 {
		delete(co.subordinates, chief)
	} else {
		co.subordinates[chief] = ids
	}
	delete(co.chiefs, sub)
	return nil
}

func (co *Company) unlinkAll(chief uuid.UUID) {
	for _, sub := range co.subordinates[chief] {
		delete(co.chiefs, sub)
	}
	delete(co.subordinates, chief)
}
