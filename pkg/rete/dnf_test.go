package rete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDNF_FlattensSingleConjunct(t *testing.T) {
	x, y := V("x"), V("y")
	cond := And(Cond(x, C("on"), y), Cond(y, C("color"), C("green")))

	conjuncts, err := DNF(cond)
	require.NoError(t, err)
	require.Len(t, conjuncts, 1)
	assert.Len(t, conjuncts[0], 2)
}

func TestDNF_DistributesOrOverAnd(t *testing.T) {
	x := V("x")
	cond := And(
		Or(Cond(x, C("a"), C(1)), Cond(x, C("b"), C(2))),
		Cond(x, C("c"), C(3)),
	)

	conjuncts, err := DNF(cond)
	require.NoError(t, err)
	require.Len(t, conjuncts, 2)

	for _, c := range conjuncts {
		require.Len(t, c, 2)
		assert.Equal(t, Cond(x, C("c"), C(3)), c[1])
	}
}

func TestDNF_PreservesSourceOrderWithinConjunct(t *testing.T) {
	x := V("x")
	c1 := Cond(x, C("a"), C(1))
	c2 := Cond(x, C("b"), C(2))
	c3 := Cond(x, C("c"), C(3))

	conjuncts, err := DNF(And(c1, c2, c3))
	require.NoError(t, err)
	require.Len(t, conjuncts, 1)
	assert.Equal(t, Conjunct{c1, c2, c3}, conjuncts[0])
}

func TestDNF_DoubleNegationEliminates(t *testing.T) {
	x, y := V("x"), V("y")
	cond := Not(Not(Cond(x, C("on"), y)))

	conjuncts, err := DNF(cond)
	require.NoError(t, err)
	require.Len(t, conjuncts, 1)
	require.Len(t, conjuncts[0], 1)
	assert.Equal(t, Cond(x, C("on"), y), conjuncts[0][0])
}

func TestDNF_NegatedCondBecomesNeg(t *testing.T) {
	x, y := V("x"), V("y")
	cond := Not(Cond(x, C("on"), y))

	conjuncts, err := DNF(cond)
	require.NoError(t, err)
	require.Len(t, conjuncts, 1)
	require.Len(t, conjuncts[0], 1)
	assert.Equal(t, NegClause{Id: x, Attr: C("on"), Val: y}, conjuncts[0][0])
}

func TestDNF_DeMorganPushesThroughAnd(t *testing.T) {
	x := V("x")
	a := Cond(x, C("a"), C(1))
	b := Cond(x, C("b"), C(2))

	conjuncts, err := DNF(Not(And(a, b)))
	require.NoError(t, err)
	require.Len(t, conjuncts, 2)
	assert.Equal(t, NegClause{Id: x, Attr: C("a"), Val: C(1)}, conjuncts[0][0])
	assert.Equal(t, NegClause{Id: x, Attr: C("b"), Val: C(2)}, conjuncts[1][0])
}

func TestDNF_DeMorganPushesThroughOr(t *testing.T) {
	x := V("x")
	a := Cond(x, C("a"), C(1))
	b := Cond(x, C("b"), C(2))

	conjuncts, err := DNF(Not(Or(a, b)))
	require.NoError(t, err)
	require.Len(t, conjuncts, 1)
	require.Len(t, conjuncts[0], 2)
	assert.Equal(t, NegClause{Id: x, Attr: C("a"), Val: C(1)}, conjuncts[0][0])
	assert.Equal(t, NegClause{Id: x, Attr: C("b"), Val: C(2)}, conjuncts[0][1])
}

func TestDNF_NegatingNccIsMalformed(t *testing.T) {
	_, err := DNF(Not(Ncc(Cond(V("x"), C("a"), C(1)))))
	assert.ErrorIs(t, err, ErrMalformedCondition)
}

func TestDNF_NegatingBindIsMalformed(t *testing.T) {
	bind := Bind(func(b *Bindings) (Value, error) { return 1, nil }, V("x"))
	_, err := DNF(Not(bind))
	assert.ErrorIs(t, err, ErrMalformedCondition)
}

func TestDNF_EmptyAndIsSingleEmptyConjunct(t *testing.T) {
	conjuncts, err := DNF(And())
	require.NoError(t, err)
	require.Len(t, conjuncts, 1)
	assert.Empty(t, conjuncts[0])
}
