package rete

import (
	"fmt"
	"strings"
)

// varInfo records where in the token chain a variable was first
// bound, relative to whatever node is about to be compiled next:
// depth is the number of parent hops from that node's input token to
// the token carrying the binding, and pos/viaWME says whether that
// token has a WME to read the value from (a Cond-origin binding) or
// the value must instead be looked up by name in the bindings map (a
// Bind-origin binding; see DESIGN.md).
type varInfo struct {
	depth  int
	pos    Position
	viaWME bool
}

func cloneVarState(v map[string]varInfo) map[string]varInfo {
	out := make(map[string]varInfo, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func advanceVarState(v map[string]varInfo) {
	for k, val := range v {
		val.depth++
		v[k] = val
	}
}

// shareKey is the cache key node-sharing decisions are keyed on: two
// conjuncts compiling the same clause against the same prefix node
// and the same alpha memory, with the same test list, collapse onto
// one network node.
type shareKey struct {
	prefix interface{}
	alpha  *AlphaMemory
	tests  string
}

func testsKey(tests []JoinTest) string {
	var b strings.Builder
	for _, t := range tests {
		fmt.Fprintf(&b, "%d:%d:%d:%s|", t.RightField, t.Depth, t.LeftField, t.ByName)
	}
	return b.String()
}

// compiler turns one rule's DNF conjuncts into network nodes, sharing
// prefixes across conjuncts and across rules via its alpha network
// and node-sharing caches.
type compiler struct {
	alpha   *AlphaNetwork
	allWMEs func() []*WME
	joins   map[shareKey]*BetaMemory
	negs    map[shareKey]*NegativeNode
	errs    errReporter
}

func newCompiler(alpha *AlphaNetwork, allWMEs func() []*WME, errs errReporter) *compiler {
	return &compiler{
		alpha:   alpha,
		allWMEs: allWMEs,
		joins:   make(map[shareKey]*BetaMemory),
		negs:    make(map[shareKey]*NegativeNode),
		errs:    errs,
	}
}

// compileConjunct compiles clauses onto prefix (rootMemory for a
// fresh rule), returning the resulting terminal prefix memory ready
// for a production or NCC-partner to attach to, teardown closures in
// compile order (root to terminal; the caller releases them in
// reverse), and an error if a clause's thunk raises one during the
// seeding pass or the condition tree itself is structurally invalid.
func (c *compiler) compileConjunct(prefix memory, varState map[string]varInfo, clauses Conjunct) (memory, []func(), error) {
	var teardown []func()
	for _, clause := range clauses {
		newPrefix, newVars, err := c.compileClause(prefix, varState, clause, &teardown)
		if err != nil {
			return nil, teardown, err
		}
		// The reference point for "depth 0" moves from prefix to
		// newPrefix: bindings recorded before this clause are now one
		// hop further away, while this clause's own bindings are
		// already relative to newPrefix and must not be advanced too.
		advanceVarState(varState)
		for name, info := range newVars {
			varState[name] = info
		}
		prefix = newPrefix
	}
	return prefix, teardown, nil
}

func (c *compiler) compileClause(prefix memory, varState map[string]varInfo, clause Condition, teardown *[]func()) (memory, map[string]varInfo, error) {
	switch cl := clause.(type) {
	case CondClause:
		return c.compileCond(prefix, varState, cl, teardown)
	case NegClause:
		m, err := c.compileNeg(prefix, varState, cl, teardown)
		return m, nil, err
	case NccClause:
		m, err := c.compileNcc(prefix, varState, cl, teardown)
		return m, nil, err
	case BindClause:
		return c.compileBind(prefix, varState, cl, teardown)
	case FilterClause:
		m, err := c.compileFilter(prefix, varState, cl, teardown)
		return m, nil, err
	default:
		return nil, nil, fmt.Errorf("%w: unrecognized conjunct clause %T", ErrMalformedCondition, clause)
	}
}

func fieldsOf(c CondClause) [3]Field { return [3]Field{c.Id, c.Attr, c.Val} }

// testsAndBinds scans a clause's three fields against varState,
// emitting a JoinTest for every already-bound variable occurrence and
// a fieldBinding for every fresh one. bindNew controls whether fresh
// variables are recorded at all: Neg clauses test but never bind.
func testsAndBinds(fields [3]Field, varState map[string]varInfo, bindNew bool) ([]JoinTest, []fieldBinding, map[string]Position) {
	var tests []JoinTest
	var binds []fieldBinding
	newVars := make(map[string]Position)
	for i, f := range fields {
		v, ok := f.(*Variable)
		if !ok {
			continue
		}
		pos := Position(i)
		if info, known := varState[v.Name]; known {
			t := JoinTest{RightField: pos}
			if info.viaWME {
				t.Depth, t.LeftField = info.depth, info.pos
			} else {
				t.ByName = v.Name
			}
			tests = append(tests, t)
			continue
		}
		if bindNew {
			binds = append(binds, fieldBinding{Field: pos, Name: v.Name})
			newVars[v.Name] = pos
		}
	}
	return tests, binds, newVars
}

// compileCond builds (or shares) a join+beta-memory pair for cl. Its
// return value reports cl's own newly-bound variables separately from
// varState so the caller can advance the pre-existing bindings' depth
// before folding these in at depth 0 (see compileConjunct).
func (c *compiler) compileCond(prefix memory, varState map[string]varInfo, cl CondClause, teardown *[]func()) (memory, map[string]varInfo, error) {
	alpha := c.alpha.buildOrShare(cl, c.allWMEs())
	tests, binds, newVars := testsAndBinds(fieldsOf(cl), varState, true)
	newState := make(map[string]varInfo, len(newVars))
	for name, pos := range newVars {
		newState[name] = varInfo{depth: 0, pos: pos, viaWME: true}
	}

	key := shareKey{prefix: keyOf(prefix), alpha: alpha, tests: testsKey(tests)}
	alpha.refCount++
	*teardown = append(*teardown, func() { alpha.release() })

	if bm, ok := c.joins[key]; ok {
		bm.refCount++
		*teardown = append(*teardown, func() {
			bm.refCount--
			if bm.refCount == 0 {
				c.destroyBeta(key, bm, prefix)
			}
		})
		return bm, newState, nil
	}

	bm := &BetaMemory{ID: newID(), refCount: 1}
	join := &JoinNode{ID: newID(), alpha: alpha, left: prefix, tests: tests, binds: binds, child: bm}
	bm.join = join
	c.joins[key] = bm

	alpha.addSuccessor(join)
	prefix.addChild(join)
	for _, t := range prefix.items() {
		join.leftActivate(t)
	}

	*teardown = append(*teardown, func() {
		bm.refCount--
		if bm.refCount == 0 {
			c.destroyBeta(key, bm, prefix)
		}
	})

	return bm, newState, nil
}

func (c *compiler) destroyBeta(key shareKey, bm *BetaMemory, prefix memory) {
	delete(c.joins, key)
	bm.join.alpha.removeSuccessor(bm.join)
	prefix.removeChild(bm.join)
	bm.stored = nil
	bm.children = nil
}

func (c *compiler) compileNeg(prefix memory, varState map[string]varInfo, cl NegClause, teardown *[]func()) (memory, error) {
	synthetic := CondClause{Id: cl.Id, Attr: cl.Attr, Val: cl.Val}
	alpha := c.alpha.buildOrShare(synthetic, c.allWMEs())
	tests, _, _ := testsAndBinds(fieldsOf(synthetic), varState, false)

	key := shareKey{prefix: keyOf(prefix), alpha: alpha, tests: testsKey(tests)}
	alpha.refCount++
	*teardown = append(*teardown, func() { alpha.release() })

	if neg, ok := c.negs[key]; ok {
		neg.refCount++
		*teardown = append(*teardown, func() {
			neg.refCount--
			if neg.refCount == 0 {
				c.destroyNeg(key, neg, prefix)
			}
		})
		return neg, nil
	}

	neg := &NegativeNode{ID: newID(), alpha: alpha, tests: tests, refCount: 1}
	c.negs[key] = neg

	alpha.addSuccessor(neg)
	prefix.addChild(neg)
	for _, t := range prefix.items() {
		neg.leftActivate(t)
	}

	*teardown = append(*teardown, func() {
		neg.refCount--
		if neg.refCount == 0 {
			c.destroyNeg(key, neg, prefix)
		}
	})
	return neg, nil
}

func (c *compiler) destroyNeg(key shareKey, neg *NegativeNode, prefix memory) {
	delete(c.negs, key)
	neg.alpha.removeSuccessor(neg)
	prefix.removeChild(neg)
	for _, t := range neg.stored {
		for w := range t.blockers {
			w.blocking = removeTokenFromSlice(w.blocking, t)
		}
	}
	neg.stored = nil
	neg.children = nil
}

func (c *compiler) compileNcc(prefix memory, varState map[string]varInfo, cl NccClause, teardown *[]func()) (memory, error) {
	ncc := &NccNode{ID: newID()}
	prefix.addChild(ncc)
	*teardown = append(*teardown, func() { prefix.removeChild(ncc) })

	for _, t := range prefix.items() {
		ncc.leftActivate(t)
	}

	// Sub is itself a full condition list, not necessarily already
	// flat: DNF it the same way a rule's own condition tree is
	// normalized, then compile one sub-network per resulting disjunct,
	// each ending in its own partner feeding the same owner. The NCC
	// fails to be empty if ANY disjunct produces a match.
	subConjuncts, err := DNF(AndNode{Children: cl.Sub})
	if err != nil {
		return nil, err
	}
	for _, sub := range subConjuncts {
		subState := cloneVarState(varState)
		subPrefix, subTeardown, err := c.compileConjunct(prefix, subState, sub)
		*teardown = append(*teardown, subTeardown...)
		if err != nil {
			return nil, err
		}

		partner := &NccPartnerNode{ID: newID(), owner: ncc, depth: len(sub)}
		ncc.partners = append(ncc.partners, partner)
		subPrefix.addChild(partner)
		*teardown = append(*teardown, func() { subPrefix.removeChild(partner) })
		for _, t := range subPrefix.items() {
			partner.leftActivate(t)
		}
	}

	return ncc, nil
}

func (c *compiler) compileBind(prefix memory, varState map[string]varInfo, cl BindClause, teardown *[]func()) (memory, map[string]varInfo, error) {
	bn := &BindNode{ID: newID(), thunk: cl.Thunk, target: cl.Target, errs: c.errs}
	prefix.addChild(bn)
	*teardown = append(*teardown, func() { prefix.removeChild(bn) })

	for _, t := range prefix.items() {
		bn.leftActivate(t)
	}
	if err := c.errs.pending(); err != nil {
		return nil, nil, err
	}

	newState := map[string]varInfo{cl.Target.Name: {depth: 0, viaWME: false}}
	return bn, newState, nil
}

func (c *compiler) compileFilter(prefix memory, varState map[string]varInfo, cl FilterClause, teardown *[]func()) (memory, error) {
	fn := &FilterNode{ID: newID(), thunk: cl.Thunk, errs: c.errs}
	prefix.addChild(fn)
	*teardown = append(*teardown, func() { prefix.removeChild(fn) })

	for _, t := range prefix.items() {
		fn.leftActivate(t)
	}
	if err := c.errs.pending(); err != nil {
		return nil, err
	}
	return fn, nil
}

// keyOf turns a memory into a comparable map key: rootMemory compares
// by its sentinel token pointer, every other kind is already a
// pointer.
func keyOf(m memory) interface{} {
	if r, ok := m.(rootMemory); ok {
		return r.tok
	}
	return m
}
