package rete

import "github.com/google/uuid"

// Activation is one matching row a production has currently fired on:
// its bindings, and the ordered WMEs that satisfied the rule's Cond
// clauses (nil entries for Neg/Bind/Filter/Ncc levels, mirroring
// Token.WMEs).
type Activation struct {
	Token *Token
	WMEs  []*WME
	Bind  *Bindings
}

// ProductionNode is the terminal of one compiled conjunct. It stores
// one token per currently-satisfied match; Network.Matches reads
// these to report a rule's current activations.
type ProductionNode struct {
	ID uuid.UUID

	RuleName string
	memoryBase
}

func (p *ProductionNode) leftActivate(parent *Token) {
	tok := newToken(parent, nil, p, parent.Bind)
	p.store(tok)
}

func (p *ProductionNode) removeToken(t *Token) {
	p.unstore(t)
}

// Activations returns the production's current matches. Each stored
// token is ProductionNode's own synthetic wrapper (see leftActivate),
// carrying no WME of its own, so its conjunct's WMEs are read off its
// parent rather than itself.
func (p *ProductionNode) Activations() []Activation {
	out := make([]Activation, len(p.stored))
	for i, t := range p.stored {
		out[i] = Activation{Token: t, WMEs: t.Parent.WMEs(), Bind: t.Bind}
	}
	return out
}
