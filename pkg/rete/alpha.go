package rete

import "github.com/google/uuid"

// betaInput is a node fed directly by an alpha memory: JoinNode and
// NegativeNode are right-activated/deactivated when a WME enters or
// leaves their alpha memory.
type betaInput interface {
	rightActivate(w *WME)
	rightDeactivate(w *WME)
}

// patternKey is the constant-test portion of a condition: the
// discrimination key two patterns share an alpha memory under iff
// their constant-test sets are identical. A field with
// hasX == false is a wildcard (the condition leaves it variable).
type patternKey struct {
	hasID, hasAttr, hasVal bool
	id, attr, val          Value
}

func keyFor(c CondClause) patternKey {
	var k patternKey
	if cf, ok := c.Id.(constField); ok {
		k.hasID, k.id = true, cf.value
	}
	if cf, ok := c.Attr.(constField); ok {
		k.hasAttr, k.attr = true, cf.value
	}
	if cf, ok := c.Val.(constField); ok {
		k.hasVal, k.val = true, cf.value
	}
	return k
}

func (k patternKey) matches(w *WME) bool {
	if k.hasID && k.id != w.Identifier {
		return false
	}
	if k.hasAttr && k.attr != w.Attribute {
		return false
	}
	if k.hasVal && k.val != w.Val {
		return false
	}
	return true
}

// AlphaMemory holds every currently-interned WME matching one
// pattern's constant tests, plus its ordered list of beta-network
// successors.
type AlphaMemory struct {
	ID uuid.UUID

	net        *AlphaNetwork
	pattern    patternKey
	wmes       []*WME
	successors []betaInput
	refCount   int
}

// WMEs returns the alpha memory's current contents.
func (m *AlphaMemory) WMEs() []*WME {
	return m.wmes
}

func (m *AlphaMemory) addSuccessor(b betaInput) {
	m.successors = append(m.successors, b)
}

func (m *AlphaMemory) removeSuccessor(b betaInput) {
	out := m.successors[:0]
	for _, x := range m.successors {
		if x != b {
			out = append(out, x)
		}
	}
	m.successors = out
}

// release decrements the alpha memory's reference count, tearing it
// down (unlinking it from its WMEs and its network's index) once no
// compiled conjunct depends on it any longer.
func (m *AlphaMemory) release() {
	m.refCount--
	if m.refCount > 0 {
		return
	}
	delete(m.net.index, m.pattern)
	m.net.memories = removeAlphaMemFromSlice(m.net.memories, m)
	for _, w := range m.wmes {
		w.alphaMemories = removeAlphaMemFromSlice(w.alphaMemories, m)
	}
	m.wmes = nil
	m.successors = nil
}

func removeAlphaMemFromSlice(s []*AlphaMemory, m *AlphaMemory) []*AlphaMemory {
	out := s[:0]
	for _, x := range s {
		if x != m {
			out = append(out, x)
		}
	}
	return out
}

// AlphaNetwork is the discrimination tree of constant tests rooted at
// the WME store: a flat index from constant-test-set to the shared
// alpha memory that set routes to.
type AlphaNetwork struct {
	index    map[patternKey]*AlphaMemory
	memories []*AlphaMemory
}

func newAlphaNetwork() *AlphaNetwork {
	return &AlphaNetwork{index: make(map[patternKey]*AlphaMemory)}
}

// buildOrShare returns the alpha memory for cond's constant tests,
// creating and populating it from allWMEs if this is the first
// pattern to need that test set.
func (an *AlphaNetwork) buildOrShare(cond CondClause, allWMEs []*WME) *AlphaMemory {
	key := keyFor(cond)
	if m, ok := an.index[key]; ok {
		return m
	}
	m := &AlphaMemory{ID: uuid.New(), net: an, pattern: key}
	an.index[key] = m
	an.memories = append(an.memories, m)
	for _, w := range allWMEs {
		if key.matches(w) {
			m.wmes = append(m.wmes, w)
			w.alphaMemories = append(w.alphaMemories, m)
		}
	}
	return m
}

// activate routes a newly-inserted WME into every alpha memory whose
// constant tests it satisfies, right-activating each memory's
// successors in their insertion order.
func (an *AlphaNetwork) activate(w *WME) {
	for _, m := range an.memories {
		if !m.pattern.matches(w) {
			continue
		}
		m.wmes = append(m.wmes, w)
		w.alphaMemories = append(w.alphaMemories, m)
		for _, succ := range m.successors {
			succ.rightActivate(w)
		}
	}
}

// deactivate removes w from every alpha memory it belongs to,
// right-deactivating successors (in the same order as activation),
// then retracts every token that directly embeds w.
func (an *AlphaNetwork) deactivate(w *WME) {
	memories := w.alphaMemories
	w.alphaMemories = nil
	for _, m := range memories {
		m.wmes = removeWMEFromSlice(m.wmes, w)
		for _, succ := range m.successors {
			succ.rightDeactivate(w)
		}
	}

	tokens := append([]*Token(nil), w.tokens...)
	for _, t := range tokens {
		retractToken(t)
	}
}

func removeWMEFromSlice(s []*WME, w *WME) []*WME {
	out := s[:0]
	for _, x := range s {
		if x != w {
			out = append(out, x)
		}
	}
	return out
}
