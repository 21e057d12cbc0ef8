package rete

import "github.com/google/uuid"

// errReporter collects the first error raised by a user thunk during
// a single network mutation. A thunk failure aborts propagation along
// that branch but does not unwind state already committed elsewhere;
// the error is surfaced to the caller of the mutation that triggered
// it. Network implements this, resetting its pending
// error at the start of every mutating call.
type errReporter interface {
	report(err error)
	pending() error
}

// BindNode computes a deterministic value from the accumulated
// bindings and either binds it to a fresh variable, or, if the target
// is already bound, admits the token only when the computed value
// agrees with the existing binding.
type BindNode struct {
	ID uuid.UUID

	thunk  BindThunk
	target *Variable
	errs   errReporter
	memoryBase
}

func (b *BindNode) leftActivate(parent *Token) {
	val, err := b.thunk(parent.Bind)
	if err != nil {
		b.errs.report(err)
		return
	}
	bind := parent.Bind
	if existing, ok := bind.Get(b.target.Name); ok {
		if existing != val {
			return
		}
	} else {
		bind = bind.With(b.target.Name, val)
	}
	tok := newToken(parent, nil, b, bind)
	b.store(tok)
	b.propagateReverse(tok)
}

func (b *BindNode) removeToken(t *Token) {
	b.unstore(t)
}

// FilterNode admits the token only when its thunk returns true under
// the accumulated bindings.
type FilterNode struct {
	ID uuid.UUID

	thunk FilterThunk
	errs  errReporter
	memoryBase
}

func (f *FilterNode) leftActivate(parent *Token) {
	ok, err := f.thunk(parent.Bind)
	if err != nil {
		f.errs.report(err)
		return
	}
	if !ok {
		return
	}
	tok := newToken(parent, nil, f, parent.Bind)
	f.store(tok)
	f.propagateReverse(tok)
}

func (f *FilterNode) removeToken(t *Token) {
	f.unstore(t)
}
