package rete

import "github.com/google/uuid"

// NegativeNode combines a join and a memory: it stores one token per
// left activation and tracks, per token, the set of alpha-memory WMEs
// currently satisfying its tests ("blockers"). A token only propagates
// downstream while its blocker set is empty.
type NegativeNode struct {
	ID uuid.UUID

	alpha    *AlphaMemory
	tests    []JoinTest
	refCount int
	memoryBase
}

// leftActivate materializes a new token for parent, scans the current
// alpha memory contents for blockers, and propagates only if none are
// found.
func (n *NegativeNode) leftActivate(parent *Token) {
	tok := newToken(parent, nil, n, parent.Bind)
	tok.blockers = make(map[*WME]struct{})
	n.store(tok)
	for _, w := range n.alpha.wmes {
		if _, ok := evalAndExtend(n.tests, nil, parent, w); ok {
			tok.blockers[w] = struct{}{}
			w.blocking = append(w.blocking, tok)
		}
	}
	if len(tok.blockers) == 0 {
		n.propagateReverse(tok)
	}
}

// rightActivate re-checks every stored token against a newly inserted
// WME; a token transitioning from unblocked to blocked has its
// downstream descendants retracted.
func (n *NegativeNode) rightActivate(w *WME) {
	for _, tok := range n.stored {
		if _, ok := evalAndExtend(n.tests, nil, tok.Parent, w); !ok {
			continue
		}
		wasEmpty := len(tok.blockers) == 0
		tok.blockers[w] = struct{}{}
		w.blocking = append(w.blocking, tok)
		if wasEmpty {
			for _, child := range tok.children {
				retractToken(child)
			}
			tok.children = nil
		}
	}
}

// rightDeactivate drops w from every token it blocks; a token whose
// blocker set becomes empty as a result is re-propagated downstream.
func (n *NegativeNode) rightDeactivate(w *WME) {
	for _, tok := range n.stored {
		if _, ok := tok.blockers[w]; !ok {
			continue
		}
		delete(tok.blockers, w)
		if len(tok.blockers) == 0 {
			n.propagateReverse(tok)
		}
	}
}

func (n *NegativeNode) removeToken(t *Token) {
	for w := range t.blockers {
		w.blocking = removeTokenFromSlice(w.blocking, t)
	}
	n.unstore(t)
}
