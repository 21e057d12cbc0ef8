package rete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAdd(t *testing.T, n *Network, id, attr, val Value) {
	t.Helper()
	_, err := n.AddWME(id, attr, val)
	require.NoError(t, err)
}

func TestNetwork_PositiveThreeClauseJoinMatchesAndRetracts(t *testing.T) {
	n := New()
	x, y, z := V("x"), V("y"), V("z")
	cond := And(
		Cond(x, C("on"), y),
		Cond(y, C("left-of"), z),
		Cond(z, C("color"), C("red")),
	)
	require.NoError(t, n.AddProduction("clear", cond))

	for _, f := range [][3]Value{
		{"B1", "on", "B2"},
		{"B1", "on", "B3"},
		{"B1", "color", "red"},
		{"B2", "on", "table"},
		{"B2", "left-of", "B3"},
		{"B2", "color", "blue"},
		{"B3", "left-of", "B4"},
		{"B3", "on", "table"},
		{"B3", "color", "red"},
	} {
		mustAdd(t, n, f[0], f[1], f[2])
	}

	matches, err := n.Matches("clear")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, map[string]Value{"x": "B1", "y": "B2", "z": "B3"}, matches[0].Bind.Map())

	require.NoError(t, n.RemoveWME("B1", "on", "B2"))
	matches, err = n.Matches("clear")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNetwork_NegationBlocksOnlyTheChainWithTheNegatedFact(t *testing.T) {
	n := New()
	x, y, z := V("x"), V("y"), V("z")
	cond := And(
		Cond(x, C("on"), y),
		Cond(y, C("left-of"), z),
		Neg(z, C("color"), C("red")),
	)
	require.NoError(t, n.AddProduction("clear", cond))

	for _, f := range [][3]Value{
		{"B1", "on", "B2"},
		{"B1", "on", "B3"},
		{"B2", "left-of", "B3"},
		{"B3", "left-of", "B4"},
		{"B3", "color", "red"},
	} {
		mustAdd(t, n, f[0], f[1], f[2])
	}

	// (B1,B2,B3) is blocked by B3 color red; (B1,B3,B4) has no color
	// fact for B4 at all, so it is the sole survivor.
	matches, err := n.Matches("clear")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, map[string]Value{"x": "B1", "y": "B3", "z": "B4"}, matches[0].Bind.Map())

	require.NoError(t, n.RemoveWME("B3", "color", "red"))
	matches, err = n.Matches("clear")
	require.NoError(t, err)
	assert.Len(t, matches, 2, "removing the blocking fact must re-admit the B1,B2,B3 chain")
}

func TestNetwork_EmptyConjunctYieldsSingleEmptyActivation(t *testing.T) {
	n := New()
	require.NoError(t, n.AddProduction("always", And()))

	matches, err := n.Matches("always")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].Bind.Map())
}

func TestNetwork_DisjunctiveFilterProducesOneActivationPerTrueDisjunct(t *testing.T) {
	alwaysTrue := func(b *Bindings) (bool, error) { return true, nil }
	alwaysFalse := func(b *Bindings) (bool, error) { return false, nil }

	n := New()
	require.NoError(t, n.AddProduction("both", Or(Filter(alwaysTrue), Filter(alwaysTrue))))
	require.NoError(t, n.AddProduction("one", Or(Filter(alwaysFalse), Filter(alwaysTrue))))

	matches, err := n.Matches("both")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = n.Matches("one")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNetwork_NccRetractionAsMatchingFactsAreAdded(t *testing.T) {
	n := New()
	x, y, z, w := V("x"), V("y"), V("z"), V("w")
	cond := And(
		Cond(x, C("on"), y),
		Cond(y, C("left-of"), z),
		Ncc(Cond(z, C("color"), C("red")), Cond(z, C("on"), w)),
	)
	require.NoError(t, n.AddProduction("clear", cond))

	for _, f := range [][3]Value{
		{"A1", "on", "A2"}, {"A2", "left-of", "Z1"}, {"Z1", "on", "W1"},
		{"B1", "on", "B2"}, {"B2", "left-of", "Z2"},
		{"C1", "on", "C2"}, {"C2", "left-of", "Z3"},
	} {
		mustAdd(t, n, f[0], f[1], f[2])
	}

	matches, err := n.Matches("clear")
	require.NoError(t, err)
	require.Len(t, matches, 3, "no z has a color-red fact yet, so the NCC blocks nothing")

	// Z1 already has a "Z1 on W1" fact, so adding color red alone
	// completes its NCC sub-conjunction and blocks that chain.
	mustAdd(t, n, "Z1", "color", "red")
	matches, err = n.Matches("clear")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// Z2 has no pre-existing "on" fact, so it takes both new facts to
	// complete its sub-conjunction.
	mustAdd(t, n, "Z2", "color", "red")
	mustAdd(t, n, "Z2", "on", "W2")
	matches, err = n.Matches("clear")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	mustAdd(t, n, "Z3", "color", "red")
	mustAdd(t, n, "Z3", "on", "W3")
	matches, err = n.Matches("clear")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNetwork_NccOfNegationsExpressesCategoryMembership(t *testing.T) {
	n := New()
	item, shop, cat := V("item"), V("shop"), V("cat")
	// An NCC whose sub-conjunction is a set of Neg clauses matches
	// (and so blocks downstream) only when the item's category is
	// NONE of the three allowed ones: the double negation admits
	// exactly the items that ARE in one of them.
	cond := And(
		Cond(item, C("in-shop"), shop),
		Cond(item, C("category"), cat),
		Ncc(
			Neg(item, C("category"), C("electronics")),
			Neg(item, C("category"), C("books")),
			Neg(item, C("category"), C("toys")),
		),
		Neg(item, C("in-shop"), C("shop:banned1")),
		Neg(item, C("in-shop"), C("shop:banned2")),
		Neg(item, C("in-shop"), C("shop:banned3")),
	)
	require.NoError(t, n.AddProduction("allowed", cond))

	for _, f := range [][3]Value{
		{"item:1", "in-shop", "shop:ok"},
		{"item:1", "category", "electronics"},
		{"item:2", "in-shop", "shop:banned1"},
		{"item:2", "category", "books"},
		{"item:3", "in-shop", "shop:ok"},
		{"item:3", "category", "furniture"},
	} {
		mustAdd(t, n, f[0], f[1], f[2])
	}

	matches, err := n.Matches("allowed")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "item:1", matches[0].Bind.Map()["item"])
}

func TestNetwork_AddProductionRejectsDuplicateName(t *testing.T) {
	n := New()
	require.NoError(t, n.AddProduction("r", And()))
	err := n.AddProduction("r", And())
	assert.ErrorIs(t, err, ErrDuplicateProduction)
}

func TestNetwork_RemoveProductionRejectsUnknownName(t *testing.T) {
	n := New()
	err := n.RemoveProduction("nope")
	assert.ErrorIs(t, err, ErrUnknownProduction)
}

func TestNetwork_RemoveProductionTearsDownItsNodes(t *testing.T) {
	n := New()
	x, y := V("x"), V("y")
	require.NoError(t, n.AddProduction("r", Cond(x, C("on"), y)))
	mustAdd(t, n, "b1", "on", "b2")

	require.NoError(t, n.RemoveProduction("r"))

	_, err := n.Matches("r")
	assert.ErrorIs(t, err, ErrUnknownProduction)
	assert.Empty(t, n.compiler.joins, "the rule's join/beta-memory pair must be pruned")
	assert.Empty(t, n.alpha.memories, "the rule's alpha memory must be released")
}

func TestNetwork_AddWMEIsIdempotentForIdenticalTriple(t *testing.T) {
	n := New()
	x, y := V("x"), V("y")
	require.NoError(t, n.AddProduction("r", Cond(x, C("on"), y)))

	mustAdd(t, n, "b1", "on", "b2")
	mustAdd(t, n, "b1", "on", "b2")

	matches, err := n.Matches("r")
	require.NoError(t, err)
	assert.Len(t, matches, 1, "re-adding an identical triple must not duplicate the activation")
}

func TestNetwork_LoadWMEsBulkInsertsAllTriples(t *testing.T) {
	n := New()
	x, y := V("x"), V("y")
	require.NoError(t, n.AddProduction("r", Cond(x, C("on"), y)))

	require.NoError(t, n.LoadWMEs([][3]Value{
		{"b1", "on", "b2"},
		{"b2", "on", "b3"},
	}))

	matches, err := n.Matches("r")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestNetwork_RemoveWMEOfUnknownTripleIsNoOp(t *testing.T) {
	n := New()
	assert.NoError(t, n.RemoveWME("nope", "nope", "nope"))
}

func TestNetwork_RulesSharePrefixNodesAcrossProductions(t *testing.T) {
	n := New()
	x, y, z := V("x"), V("y"), V("z")
	require.NoError(t, n.AddProduction("a", And(Cond(x, C("on"), y), Cond(y, C("color"), C("green")))))
	require.NoError(t, n.AddProduction("b", And(Cond(x, C("on"), y), Cond(y, C("color"), C("red")))))

	mustAdd(t, n, "b1", "on", "b2")
	mustAdd(t, n, "b2", "color", "green")

	aMatches, err := n.Matches("a")
	require.NoError(t, err)
	assert.Len(t, aMatches, 1)

	bMatches, err := n.Matches("b")
	require.NoError(t, err)
	assert.Empty(t, bMatches)

	require.NoError(t, n.RemoveProduction("a"))
	aMatches2, err := n.Matches("a")
	assert.ErrorIs(t, err, ErrUnknownProduction)
	assert.Nil(t, aMatches2)

	bMatches, err = n.Matches("b")
	require.NoError(t, err)
	assert.Empty(t, bMatches, "removing the sibling production must not disturb b's still-live prefix")
}
