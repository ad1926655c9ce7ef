package hostmem_test

import (
	"testing"

	"github.com/delaneyj/fiberparty/hostmem"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appending an attached node moves it
func TestAppendMoves(t *testing.T) {
	h := hostmem.New(nil)
	root := h.Container()
	a := h.CreateInstance("a", nil)
	b := h.CreateInstance("b", nil)
	h.AppendChild(root, a)
	h.AppendChild(root, b)
	h.AppendChild(root, a)

	assert.Equal(t, "<b></b><a></a>", h.Markup())
	require.Len(t, root.Children, 2)
}

func TestInsertBefore(t *testing.T) {
	h := hostmem.New(nil)
	root := h.Container()
	a := h.CreateInstance("a", nil)
	b := h.CreateInstance("b", nil)
	c := h.CreateInstance("c", nil)
	h.AppendChild(root, a)
	h.AppendChild(root, b)
	h.InsertBefore(root, c, a)
	assert.Equal(t, "<c></c><a></a><b></b>", h.Markup())

	h.InsertBefore(root, b, c)
	assert.Equal(t, "<b></b><c></c><a></a>", h.Markup())
}

func TestRemoveChildOfOtherParentPanics(t *testing.T) {
	h := hostmem.New(nil)
	a := h.CreateInstance("a", nil)
	b := h.CreateInstance("b", nil)
	h.AppendChild(h.Container(), a)
	assert.Panics(t, func() { h.RemoveChild(a, b) })
}

// props are sorted, escaped, funcs skipped
func TestMarkup(t *testing.T) {
	h := hostmem.New(nil)
	div := h.CreateInstance("div", map[string]any{
		"title":   `a "b" <c>`,
		"id":      7,
		"onClick": func() {},
	})
	txt := h.CreateTextInstance("x < y")
	h.AppendInitialChild(div, txt)
	h.AppendChild(h.Container(), div)

	assert.Equal(t, `<div id="7" title="a &quot;b&quot; &lt;c&gt;">x &lt; y</div>`, h.Markup())

	h.Hide(div)
	assert.Equal(t, `<div id="7" title="a &quot;b&quot; &lt;c&gt;" hidden>x &lt; y</div>`, h.Markup())
}

func TestFingerprintFollowsMarkup(t *testing.T) {
	h := hostmem.New(nil)
	div := h.CreateInstance("div", nil)
	h.AppendChild(h.Container(), div)
	before := h.Fingerprint()
	assert.Equal(t, before, h.Fingerprint())

	h.CommitUpdate(div, "div", nil, map[string]any{"id": "x"})
	assert.NotEqual(t, before, h.Fingerprint())
}

func TestOpsLog(t *testing.T) {
	h := hostmem.New(nil)
	div := h.CreateInstance("div", nil)
	txt := h.CreateTextInstance("hi")
	h.AppendInitialChild(div, txt)
	h.AppendChild(h.Container(), div)
	h.CommitTextUpdate(txt, "hi", "ho")
	h.RemoveChild(h.Container(), div)

	want := []string{
		"create div2",
		`create-text #text3 "hi"`,
		"append-initial #text3 -> div2",
		"append div2 -> #root1",
		`text #text3 "ho"`,
		"remove div2 <- #root1",
	}
	if diff := cmp.Diff(want, hostmem.Strings(h.Ops())); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
	assert.Len(t, hostmem.Mutations(h.Ops()), 3)

	h.ResetOps()
	assert.Empty(t, h.Ops())
}

func TestMicrotasks(t *testing.T) {
	var queued []func()
	h := hostmem.New(func(fn func()) { queued = append(queued, fn) })
	ran := 0
	h.ScheduleMicrotask(func() { ran++ })
	assert.Equal(t, 0, ran)
	require.Len(t, queued, 1)
	queued[0]()
	assert.Equal(t, 1, ran)

	local := hostmem.New(nil)
	local.ScheduleMicrotask(func() { ran++ })
	local.FlushMicrotasks()
	assert.Equal(t, 2, ran)
}
