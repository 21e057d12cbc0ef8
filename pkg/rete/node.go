package rete

import "github.com/google/uuid"

// newID generates a fresh identifier for a network node.
func newID() uuid.UUID {
	return uuid.New()
}

// leftActivatable is any node that can sit directly below a plain
// (non-join) node in the beta network and accept a single already-
// materialized parent token: NegativeNode, NccNode, NccPartnerNode,
// BindNode, FilterNode, ProductionNode, and JoinNode all implement it
// (one interface per activation shape rather than a closed sum type).
type leftActivatable interface {
	leftActivate(t *Token)
}

// memory is any node that can serve as a join's left input: it
// exposes its currently-visible (downstream-propagating) tokens and
// lets a compiler register/unregister the next node in the chain.
type memory interface {
	items() []*Token
	addChild(c leftActivatable)
	removeChild(c leftActivatable)
}

// memoryBase is embedded by every node kind that stores tokens of its
// own and propagates to a list of children. It factors the ordering
// rule common to all of them: children activate in the reverse of
// their registration order.
type memoryBase struct {
	stored   []*Token
	children []leftActivatable
}

func (m *memoryBase) items() []*Token { return m.stored }

func (m *memoryBase) addChild(c leftActivatable) {
	m.children = append(m.children, c)
}

func (m *memoryBase) removeChild(c leftActivatable) {
	out := m.children[:0]
	for _, x := range m.children {
		if x != c {
			out = append(out, x)
		}
	}
	m.children = out
}

func (m *memoryBase) store(t *Token) {
	m.stored = append(m.stored, t)
}

func (m *memoryBase) unstore(t *Token) {
	m.stored = removeTokenFromSlice(m.stored, t)
}

// propagateReverse left-activates every child with t, in reverse
// registration order.
func (m *memoryBase) propagateReverse(t *Token) {
	for i := len(m.children) - 1; i >= 0; i-- {
		m.children[i].leftActivate(t)
	}
}

// rootMemory is the singleton sentinel row the dummy top join of
// every first clause reads its "left side" from.
type rootMemory struct {
	tok *Token
}

func (r rootMemory) items() []*Token           { return []*Token{r.tok} }
func (rootMemory) addChild(leftActivatable)    {}
func (rootMemory) removeChild(leftActivatable) {}

// fieldBinding records that a clause's right-hand WME field at
// position Field introduces a fresh variable Name into the
// downstream binding map (as opposed to a JoinTest, which checks an
// already-bound variable).
type fieldBinding struct {
	Field Position
	Name  string
}

// JoinTest links one field of the right-side WME to a value already
// known on the left: either the field of an ancestor token's WME at a
// fixed depth (the classical Rete shape, used when the variable's
// first occurrence was a positive Cond clause), or a named lookup in
// the accumulated bindings map (used when the first occurrence was a
// Bind clause, which has no WME of its own to point at — see
// DESIGN.md for this design choice).
type JoinTest struct {
	RightField Position

	// WME-ancestor form:
	Depth     int
	LeftField Position

	// Bindings-map form (used when ByName != ""):
	ByName string
}

func (t JoinTest) leftValue(left *Token) (Value, bool) {
	if t.ByName != "" {
		return left.Bind.Get(t.ByName)
	}
	anc := left.ancestor(t.Depth)
	if anc == nil || anc.WME == nil {
		return nil, false
	}
	return anc.WME.Field(t.LeftField), true
}

// evalAndExtend runs tests against (left, w); on success it returns
// the bindings extended with any fresh variables this clause
// introduces.
func evalAndExtend(tests []JoinTest, binds []fieldBinding, left *Token, w *WME) (*Bindings, bool) {
	for _, t := range tests {
		lv, ok := t.leftValue(left)
		if !ok || lv != w.Field(t.RightField) {
			return nil, false
		}
	}
	bind := left.Bind
	for _, fb := range binds {
		bind = bind.With(fb.Name, w.Field(fb.Field))
	}
	return bind, true
}
