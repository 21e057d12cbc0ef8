package rete

import "github.com/google/uuid"

// BetaMemory stores every token that has matched a positive Cond
// clause, paired one-to-one with the JoinNode that feeds it. It is
// the shared node two rules collapse onto when their conjuncts share
// a prefix up to and including this clause.
type BetaMemory struct {
	ID uuid.UUID

	join     *JoinNode
	refCount int
	memoryBase
}

// receive is called by this memory's paired join with a fully tested
// (parent, wme, bindings) triple: it materializes the new token,
// stores it, and propagates to children in reverse registration
// order.
func (bm *BetaMemory) receive(parent *Token, w *WME, bind *Bindings) {
	tok := newToken(parent, w, bm, bind)
	bm.store(tok)
	bm.propagateReverse(tok)
}

func (bm *BetaMemory) removeToken(t *Token) {
	bm.unstore(t)
}
