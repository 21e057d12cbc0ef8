package rete

import "github.com/google/uuid"

// Bindings is an immutable variable binding map. Extension (With)
// yields a new Bindings value sharing the parent's entries; it never
// mutates the receiver, so a token's Bindings can be handed to
// sibling tokens safely.
type Bindings struct {
	parent *Bindings
	name   string
	value  Value
}

// Get returns the value bound to name and whether it was bound.
func (b *Bindings) Get(name string) (Value, bool) {
	for cur := b; cur != nil; cur = cur.parent {
		if cur.name == "" {
			continue
		}
		if cur.name == name {
			return cur.value, true
		}
	}
	return nil, false
}

// With returns a new Bindings extending b with name -> value.
func (b *Bindings) With(name string, value Value) *Bindings {
	return &Bindings{parent: b, name: name, value: value}
}

// Map flattens the binding chain into a plain map, closest binding
// wins (there should never be a conflicting rebind in a well-formed
// token chain).
func (b *Bindings) Map() map[string]Value {
	out := make(map[string]Value)
	for cur := b; cur != nil; cur = cur.parent {
		if cur.name == "" {
			continue
		}
		if _, seen := out[cur.name]; !seen {
			out[cur.name] = cur.value
		}
	}
	return out
}

// tokenOwner is a node that stores tokens of its own and can remove
// one from its storage. BetaMemory, NegativeNode, NccNode and
// ProductionNode all own tokens this way.
type tokenOwner interface {
	removeToken(t *Token)
}

// Token is an entry in a beta memory (or negative/NCC/bind/filter
// node) representing a partial match. It is a linked chain back to a
// sentinel root: Parent is the enclosing partial match, WME is the
// fact bound at this level (nil for negative/NCC/bind/filter levels),
// Node is the node that produced it, and Bindings extends the
// parent's bindings.
type Token struct {
	ID uuid.UUID

	Parent *Token
	WME    *WME
	Node   tokenOwner
	Bind   *Bindings

	// children lists every token produced downstream from this one, so
	// that retracting this token cascades without a separate index.
	children []*Token

	// blockers is populated only for tokens owned by a NegativeNode:
	// the set of alpha-memory WMEs currently satisfying the negative
	// node's tests under this token's bindings. The token is
	// downstream-visible iff this set is empty.
	blockers map[*WME]struct{}

	// nccResults is populated only for tokens owned by an NccNode: the
	// partner-produced result tokens sharing this token's prefix. The
	// token is downstream-visible iff this list is empty.
	nccResults []*Token

	// nccOwner is set only on result tokens produced by an
	// NccPartnerNode: the owning NccNode's token whose nccResults this
	// token is linked into.
	nccOwner *Token
}

// newToken builds a new token extending parent with wme (nil if this
// level binds no WME) and the given node/bindings.
func newToken(parent *Token, wme *WME, node tokenOwner, bind *Bindings) *Token {
	t := &Token{ID: uuid.New(), Parent: parent, WME: wme, Node: node, Bind: bind}
	if parent != nil {
		parent.children = append(parent.children, t)
	}
	if wme != nil {
		wme.tokens = append(wme.tokens, t)
	}
	return t
}

// WMEs returns the ordered list of per-level WMEs along this token's
// ancestry, root-first, with nil preserved positionally for
// negative/NCC/bind/filter levels. The sentinel root token itself
// (identified by having no Parent) is never included.
func (t *Token) WMEs() []*WME {
	var chain []*Token
	for cur := t; cur != nil && cur.Parent != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	out := make([]*WME, len(chain))
	for i, tok := range chain {
		out[len(chain)-1-i] = tok.WME
	}
	return out
}

// ancestor walks depth steps up the parent chain (0 = t itself).
func (t *Token) ancestor(depth int) *Token {
	cur := t
	for i := 0; i < depth && cur != nil; i++ {
		cur = cur.Parent
	}
	return cur
}

// retract removes t and, recursively, every token produced downstream
// from it. It detaches t from its owning node's storage and clears
// the WME back-reference it holds, but it does not unlink t from its
// parent's children slice (the parent is either also being retracted
// in the same cascade, or is unaffected and the stale entry is
// harmless since nothing dereferences a removed token after this
// call).
func retractToken(t *Token) {
	if t == nil {
		return
	}
	for _, child := range t.children {
		retractToken(child)
	}
	t.children = nil
	if t.WME != nil {
		t.WME.tokens = removeTokenFromSlice(t.WME.tokens, t)
	}
	if t.Node != nil {
		t.Node.removeToken(t)
	}
}

func removeTokenFromSlice(s []*Token, t *Token) []*Token {
	out := s[:0]
	for _, x := range s {
		if x != t {
			out = append(out, x)
		}
	}
	return out
}
