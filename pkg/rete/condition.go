package rete

import "fmt"

// Condition is a node in the boolean condition tree a rule is built
// from, before and after DNF normalization. And/Or/Not are boolean
// connectives eliminated by DNF(); CondClause/NegClause/NccClause/
// BindClause/FilterClause are the leaf kinds that survive into a
// compiled conjunct.
type Condition interface {
	isCondition()
}

// CondClause is a positive pattern test: it matches every WME whose
// fields satisfy the (possibly variable) triple.
type CondClause struct {
	Id, Attr, Val Field
}

func (CondClause) isCondition() {}

func (c CondClause) String() string {
	return fmt.Sprintf("Cond(%s, %s, %s)", c.Id, c.Attr, c.Val)
}

// Cond builds a positive condition.
func Cond(id, attr, val Field) CondClause {
	return CondClause{Id: id, Attr: attr, Val: val}
}

// NegClause succeeds iff no WME matches the triple under the current
// bindings. It is either written directly, or produced by negating a
// CondClause with Not.
type NegClause struct {
	Id, Attr, Val Field
}

func (NegClause) isCondition() {}

func (c NegClause) String() string {
	return fmt.Sprintf("Neg(%s, %s, %s)", c.Id, c.Attr, c.Val)
}

// Neg builds a negative condition directly (equivalent to
// Not(Cond(id, attr, val))).
func Neg(id, attr, val Field) NegClause {
	return NegClause{Id: id, Attr: attr, Val: val}
}

// NccClause (negated conjunctive condition) succeeds iff the
// conjunction of Sub has zero matches under the current bindings.
type NccClause struct {
	Sub []Condition
}

func (NccClause) isCondition() {}

func (c NccClause) String() string {
	return fmt.Sprintf("Ncc(%v)", c.Sub)
}

// Ncc builds a negated-conjunctive-condition over the given
// sub-conditions (conjoined).
func Ncc(sub ...Condition) NccClause {
	return NccClause{Sub: sub}
}

// BindThunk deterministically computes a value from the bindings
// accumulated so far in its conjunct.
type BindThunk func(b *Bindings) (Value, error)

// BindClause computes Thunk and binds its result to Target.
type BindClause struct {
	Thunk  BindThunk
	Target *Variable
}

func (BindClause) isCondition() {}

func (c BindClause) String() string {
	return fmt.Sprintf("Bind(-> %s)", c.Target)
}

// Bind builds a deterministic-binding condition.
func Bind(thunk BindThunk, target *Variable) BindClause {
	return BindClause{Thunk: thunk, Target: target}
}

// FilterThunk succeeds iff it returns true.
type FilterThunk func(b *Bindings) (bool, error)

// FilterClause succeeds iff Thunk returns true under the current
// bindings.
type FilterClause struct {
	Thunk FilterThunk
}

func (FilterClause) isCondition() {}

func (c FilterClause) String() string {
	return "Filter(...)"
}

// Filter builds a filter condition.
func Filter(thunk FilterThunk) FilterClause {
	return FilterClause{Thunk: thunk}
}

// AndNode is the boolean connective eliminated by DNF's distribution
// step.
type AndNode struct {
	Children []Condition
}

func (AndNode) isCondition() {}

// And builds a conjunction of sub-conditions.
func And(children ...Condition) AndNode {
	return AndNode{Children: children}
}

// OrNode is the boolean connective DNF distributes over.
type OrNode struct {
	Children []Condition
}

func (OrNode) isCondition() {}

// Or builds a disjunction of sub-conditions.
func Or(children ...Condition) OrNode {
	return OrNode{Children: children}
}

// NotNode negates its child. DNF() pushes Not through And/Or (De
// Morgan), eliminates double negation, and converts a Not over a
// CondClause into a NegClause. Negating anything else (NegClause,
// NccClause, BindClause, FilterClause) is a malformed condition,
// reported via ErrMalformedCondition (see DESIGN.md for this
// decision).
type NotNode struct {
	Child Condition
}

func (NotNode) isCondition() {}

// Not builds a negation.
func Not(child Condition) NotNode {
	return NotNode{Child: child}
}
