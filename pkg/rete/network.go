package rete

import (
	"fmt"
	"sync"

	"github.com/gitrdm/gorete/internal/arena"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// triple is a staged fact awaiting commit, used only by LoadWMEs'
// arena-backed staging buffer.
type triple struct {
	id, attr, val Value
}

// rule is everything the network keeps for one registered production:
// one ProductionNode per DNF conjunct, and the full teardown chain
// that undoes every node that conjunct's compilation created or
// shared.
type rule struct {
	conjuncts []*conjunctRecord
}

type conjunctRecord struct {
	production *ProductionNode
	teardown   []func()
}

// Network is the compiled discrimination/join network for a set of
// productions over a shared working-memory store. It is not
// goroutine-safe internally but serializes its own mutating calls, in
// keeping with the single-threaded cooperative model the rest of the
// package assumes; callers running concurrently must
// synchronize externally or rely on this lock.
type Network struct {
	mu sync.Mutex

	alpha    *AlphaNetwork
	store    *Store
	root     *Token
	compiler *compiler

	productions map[string]*rule

	log        *zap.Logger
	pendingErr error
}

// Option configures a Network at construction time.
type Option func(*Network)

// WithLogger attaches a zap logger the network uses for structured,
// leveled diagnostics of rule compilation and match activity.
func WithLogger(log *zap.Logger) Option {
	return func(n *Network) { n.log = log }
}

// New builds an empty network: no WMEs, no productions.
func New(opts ...Option) *Network {
	n := &Network{
		alpha:       newAlphaNetwork(),
		productions: make(map[string]*rule),
		log:         zap.NewNop(),
	}
	n.store = newStore(n.alpha)
	n.root = &Token{ID: uuid.New()}
	n.compiler = newCompiler(n.alpha, n.store.all, n)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Network) report(err error) {
	if n.pendingErr == nil {
		n.pendingErr = err
	}
}

func (n *Network) pending() error { return n.pendingErr }

func (n *Network) rootMem() memory { return rootMemory{tok: n.root} }

// AddWME inserts a fact triple, routing it through the alpha network
// and propagating into every affected join/negative/NCC/bind/filter
// node. Inserting a triple already present is a no-op: duplicate WMEs
// are interned, not multiset-counted. It returns the first error
// raised by a user Bind/Filter thunk reached during propagation, if
// any.
func (n *Network) AddWME(id, attr, val Value) (*WME, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pendingErr = nil
	w := NewWME(id, attr, val)
	stored := n.store.Add(w)
	n.log.Debug("wme added", zap.Stringer("wme", stored))
	return stored, n.pendingErr
}

// RemoveWME retracts a fact triple by value, cascading retraction
// through every token that embedded it. Retracting a triple that was
// never added, or was already removed, is a silent no-op.
func (n *Network) RemoveWME(id, attr, val Value) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pendingErr = nil
	n.store.Remove(&WME{Identifier: id, Attribute: attr, Val: val})
	n.log.Debug("wme removed", zap.Any("id", id), zap.Any("attr", attr), zap.Any("val", val))
	return n.pendingErr
}

// LoadWMEs bulk-inserts triples, staging each in an arena before
// committing it through AddWME and freeing its slot. Each call creates
// its own arena, so no allocator state is carried from one load to the
// next. It returns the first thunk error encountered, if any, but
// still attempts every remaining triple.
func (n *Network) LoadWMEs(triples [][3]Value) error {
	a := arena.New[triple]()
	handles := make([]arena.Handle, len(triples))
	for i, t := range triples {
		handles[i] = a.Put(triple{id: t[0], attr: t[1], val: t[2]})
	}

	var firstErr error
	for _, h := range handles {
		t, ok := a.Get(h)
		if !ok {
			continue
		}
		if _, err := n.AddWME(t.id, t.attr, t.val); err != nil && firstErr == nil {
			firstErr = err
		}
		a.Free(h)
	}
	n.log.Debug("bulk wme load", zap.Int("count", len(triples)))
	return firstErr
}

// AddProduction compiles cond (via DNF normalization) and registers
// it under name, sharing prefixes with every already-registered
// production where their conjuncts coincide. The
// network is seeded against its current WMEs, so a rule added after
// facts already exist reports matches immediately. On any error
// (malformed condition tree, or a Bind/Filter thunk failure during
// seeding) the network is left exactly as it was before the call.
func (n *Network) AddProduction(name string, cond Condition) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.productions[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProduction, name)
	}

	conjuncts, err := DNF(cond)
	if err != nil {
		return err
	}

	r := &rule{}
	for _, conjunct := range conjuncts {
		n.pendingErr = nil
		varState := make(map[string]varInfo)
		prefix, teardown, err := n.compiler.compileConjunct(n.rootMem(), varState, conjunct)
		if err != nil {
			n.unwind(r)
			n.runTeardown(teardown)
			return err
		}

		pn := &ProductionNode{ID: newID(), RuleName: name}
		prefix.addChild(pn)
		teardown = append(teardown, func() { prefix.removeChild(pn) })
		for _, t := range prefix.items() {
			pn.leftActivate(t)
		}
		if err := n.pendingErr; err != nil {
			n.runTeardown(teardown)
			n.unwind(r)
			return err
		}

		r.conjuncts = append(r.conjuncts, &conjunctRecord{production: pn, teardown: teardown})
	}

	n.productions[name] = r
	n.log.Info("production added", zap.String("name", name), zap.Int("conjuncts", len(conjuncts)))
	return nil
}

// unwind tears down every conjunct already compiled for a production
// whose compilation failed partway through.
func (n *Network) unwind(r *rule) {
	for _, cr := range r.conjuncts {
		n.runTeardown(cr.teardown)
	}
}

func (n *Network) runTeardown(teardown []func()) {
	for i := len(teardown) - 1; i >= 0; i-- {
		teardown[i]()
	}
}

// RemoveProduction tears down every node uniquely owned by name's
// conjuncts, decrementing the reference count of every shared node
// along the way and pruning it once no production depends on it any
// longer.
func (n *Network) RemoveProduction(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.productions[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduction, name)
	}
	n.unwind(r)
	delete(n.productions, name)
	n.log.Info("production removed", zap.String("name", name))
	return nil
}

// Matches returns name's current activations across every DNF
// conjunct it compiled to.
func (n *Network) Matches(name string) ([]Activation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.productions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduction, name)
	}
	var out []Activation
	for _, cr := range r.conjuncts {
		out = append(out, cr.production.Activations()...)
	}
	return out, nil
}

// BuildOrShareAlphaMemory exposes the alpha network's discrimination
// step directly, for introspection and testing: it returns the alpha
// memory cond's constant tests route to, creating it if this is the
// first use of that test set.
func (n *Network) BuildOrShareAlphaMemory(cond CondClause) *AlphaMemory {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.alpha.buildOrShare(cond, n.store.all())
}

// Stats reports WME store statistics.
func (n *Network) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Stats()
}
