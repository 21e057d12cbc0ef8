package rete

import "github.com/google/uuid"

// NccNode implements a negated conjunctive condition: it stores one
// token per left activation and tracks, per token, the partner-
// produced result tokens sharing that token's prefix. A token only
// propagates downstream while its result list is empty.
//
// Its sub-conjunction is compiled as an ordinary conjunct attached to
// the same prefix node as the NccNode itself, with an NccPartnerNode
// in place of a production terminal. The compiler registers the
// sub-conjunction's entry node as a child of that shared prefix AFTER
// the NccNode, so that reverse-order activation runs the partner path
// first and the emptiness check the NccNode performs on left
// activation always sees a fully settled result set.
type NccNode struct {
	ID uuid.UUID

	partners []*NccPartnerNode
	memoryBase
}

func (n *NccNode) leftActivate(parent *Token) {
	tok := newToken(parent, nil, n, parent.Bind)
	n.store(tok)
	if len(tok.nccResults) == 0 {
		n.propagateReverse(tok)
	}
}

func (n *NccNode) removeToken(t *Token) {
	n.unstore(t)
}

// findOwner returns the stored token whose prefix token is prefixTok,
// or nil if none (can happen only if the owner token was itself
// retracted in the same mutation that is still unwinding).
func (n *NccNode) findOwner(prefixTok *Token) *Token {
	for _, tok := range n.stored {
		if tok.Parent == prefixTok {
			return tok
		}
	}
	return nil
}

// NccPartnerNode is the terminal of an NccClause's sub-conjunction: it
// links each match it sees back to the owning NccNode token whose
// prefix it shares, and keeps that token's downstream descendants
// retracted for as long as the result list is non-empty.
type NccPartnerNode struct {
	ID uuid.UUID

	owner *NccNode
	// depth is the number of clauses in the sub-conjunction: walking
	// that many levels up from a partner-produced token's parent
	// reaches the prefix token shared with the owning NccNode.
	depth int
}

func (p *NccPartnerNode) leftActivate(parent *Token) {
	prefix := parent.ancestor(p.depth)
	owner := p.owner.findOwner(prefix)
	if owner == nil {
		return
	}
	result := &Token{ID: uuid.New(), Parent: parent, Node: p, Bind: parent.Bind, nccOwner: owner}
	parent.children = append(parent.children, result)
	owner.nccResults = append(owner.nccResults, result)
	if len(owner.nccResults) == 1 {
		for _, child := range owner.children {
			retractToken(child)
		}
		owner.children = nil
	}
}

// removeToken unlinks a retracted result token from its owner's
// result list, re-propagating the owner if that empties it.
func (p *NccPartnerNode) removeToken(t *Token) {
	owner := t.nccOwner
	owner.nccResults = removeTokenFromSlice(owner.nccResults, t)
	if len(owner.nccResults) == 0 {
		p.owner.propagateReverse(owner)
	}
}
