package rete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaNetwork_SharesMemoryForIdenticalConstantTests(t *testing.T) {
	an := newAlphaNetwork()
	c1 := Cond(V("x"), C("on"), V("y"))
	c2 := Cond(V("a"), C("on"), V("b"))

	m1 := an.buildOrShare(c1, nil)
	m2 := an.buildOrShare(c2, nil)

	assert.Same(t, m1, m2, "patterns differing only in variable names must share an alpha memory")
}

func TestAlphaNetwork_DistinctConstantTestsGetDistinctMemories(t *testing.T) {
	an := newAlphaNetwork()
	m1 := an.buildOrShare(Cond(V("x"), C("on"), V("y")), nil)
	m2 := an.buildOrShare(Cond(V("x"), C("color"), V("y")), nil)

	assert.NotSame(t, m1, m2)
}

func TestAlphaNetwork_BuildOrSharePopulatesFromExistingWMEs(t *testing.T) {
	an := newAlphaNetwork()
	existing := []*WME{
		NewWME("b1", "on", "b2"),
		NewWME("b1", "color", "red"),
	}

	m := an.buildOrShare(Cond(V("x"), C("on"), V("y")), existing)
	require.Len(t, m.WMEs(), 1)
	assert.Equal(t, "b2", m.WMEs()[0].Val)
}

type recordingSuccessor struct {
	activated   []*WME
	deactivated []*WME
}

func (r *recordingSuccessor) rightActivate(w *WME)   { r.activated = append(r.activated, w) }
func (r *recordingSuccessor) rightDeactivate(w *WME) { r.deactivated = append(r.deactivated, w) }

func TestAlphaNetwork_ActivateRoutesToMatchingMemoriesOnly(t *testing.T) {
	an := newAlphaNetwork()
	onMem := an.buildOrShare(Cond(V("x"), C("on"), V("y")), nil)
	colorMem := an.buildOrShare(Cond(V("x"), C("color"), V("y")), nil)

	onSucc := &recordingSuccessor{}
	colorSucc := &recordingSuccessor{}
	onMem.addSuccessor(onSucc)
	colorMem.addSuccessor(colorSucc)

	w := NewWME("b1", "on", "b2")
	an.activate(w)

	assert.Equal(t, []*WME{w}, onSucc.activated)
	assert.Empty(t, colorSucc.activated)
}

func TestAlphaNetwork_DeactivateRetractsEmbeddingTokens(t *testing.T) {
	an := newAlphaNetwork()
	mem := an.buildOrShare(Cond(V("x"), C("on"), V("y")), nil)

	w := NewWME("b1", "on", "b2")
	an.activate(w)

	owner := &fakeTokenOwner{}
	tok := newToken(nil, w, owner, nil)
	assert.Len(t, mem.WMEs(), 1)

	an.deactivate(w)
	assert.Empty(t, mem.WMEs())
	assert.True(t, owner.removed[tok])
}

type fakeTokenOwner struct {
	removed map[*Token]bool
}

func (f *fakeTokenOwner) removeToken(t *Token) {
	if f.removed == nil {
		f.removed = make(map[*Token]bool)
	}
	f.removed[t] = true
}
