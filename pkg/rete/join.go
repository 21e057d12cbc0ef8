package rete

import "github.com/google/uuid"

// JoinNode tests a right-side alpha memory's WMEs against a left-side
// memory's tokens, and feeds matches to a single paired BetaMemory.
// The dummy top join of a conjunct's first Cond clause has left ==
// rootMemory, so it only ever has the sentinel row to test against
//.
type JoinNode struct {
	ID uuid.UUID

	alpha *AlphaMemory
	left  memory
	tests []JoinTest
	binds []fieldBinding
	child *BetaMemory
}

// leftActivate is called by the left memory when it propagates a
// token t: the join tests t against every WME currently in its alpha
// memory and forwards each match to its beta memory.
func (j *JoinNode) leftActivate(t *Token) {
	for _, w := range j.alpha.wmes {
		if bind, ok := evalAndExtend(j.tests, j.binds, t, w); ok {
			j.child.receive(t, w, bind)
		}
	}
}

// rightActivate is called by the alpha memory when a new WME enters
// it: the join tests w against every token currently in its left
// memory.
func (j *JoinNode) rightActivate(w *WME) {
	for _, t := range j.left.items() {
		if bind, ok := evalAndExtend(j.tests, j.binds, t, w); ok {
			j.child.receive(t, w, bind)
		}
	}
}

// rightDeactivate is a no-op: a WME leaving the alpha memory retracts
// every token that embeds it directly (AlphaNetwork.deactivate), and
// a join never stores tokens of its own.
func (j *JoinNode) rightDeactivate(w *WME) {}
