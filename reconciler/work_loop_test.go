package reconciler_test

import (
	"testing"

	. "github.com/delaneyj/fiberparty/reconciler"
	"github.com/stretchr/testify/assert"
)

// list renders three items that log "<id>:<label>@<lane>" when evaluated.
func list(log *[]string) func(label string) *Element {
	item := Define("Item", func(h *Hooks, props Props) (any, error) {
		*log = append(*log, Text("%s:%s@%s", props["id"], props["label"], h.Lane()))
		return H("li", nil, props["id"]), nil
	})
	return func(label string) *Element {
		return H("ul", nil,
			H(item, Props{"id": "a", "label": label}),
			H(item, Props{"id": "b", "label": label}),
			H(item, Props{"id": "c", "label": label}),
		)
	}
}

func TestConcurrentRenderYieldsAndResumes(t *testing.T) {
	var log []string
	tree := list(&log)
	hs := newHarness(t)

	hs.root.RenderWithLane(tree("v1"), DefaultLane)
	// root, ul and the first item
	hs.step(3)
	assert.Equal(t, []string{"a:v1@default"}, log)
	assert.Equal(t, "", hs.markup())
	assert.Empty(t, hs.mutations())
	assert.Equal(t, DefaultLane, hs.root.PendingLanes())

	hs.flush()
	assert.Equal(t, []string{"a:v1@default", "b:v1@default", "c:v1@default"}, log)
	assert.Equal(t, "<ul><li>a</li><li>b</li><li>c</li></ul>", hs.markup())
	assert.Equal(t, 1, hs.root.Commits())
	assert.Equal(t, NoLanes, hs.root.PendingLanes())
}

func TestSyncInterruptsIdleRender(t *testing.T) {
	var log []string
	tree := list(&log)
	hs := newHarness(t)

	hs.root.RenderWithLane(tree("slow"), IdleLane)
	hs.step(3)
	assert.Equal(t, []string{"a:slow@idle"}, log)
	assert.Equal(t, "", hs.markup())

	hs.root.RenderWithLane(tree("fast"), SyncLane)
	hs.flush()
	assert.Equal(t, []string{
		"a:slow@idle",
		"a:fast@sync", "b:fast@sync", "c:fast@sync",
	}, log)
	assert.Equal(t, "<ul><li>a</li><li>b</li><li>c</li></ul>", hs.markup())
	assert.Equal(t, NoLanes, hs.root.PendingLanes())
}

// an update at the lane being rendered may land on a node the paused render
// already passed, so the render starts over
func TestSameLaneUpdateRestartsPausedRender(t *testing.T) {
	var log []string
	tree := list(&log)
	hs := newHarness(t)

	hs.root.RenderWithLane(tree("v1"), DefaultLane)
	hs.step(3)
	hs.root.RenderWithLane(tree("v2"), DefaultLane)
	hs.flush()

	assert.Equal(t, []string{
		"a:v1@default",
		"a:v2@default", "b:v2@default", "c:v2@default",
	}, log)
	assert.Equal(t, 1, hs.root.Commits())
}

// the host sees nothing until a render completes
func TestPartialRenderNeverCommits(t *testing.T) {
	var log []string
	tree := list(&log)
	hs := newHarness(t)
	hs.render(tree("v1"))
	hs.mutations()
	commits := hs.root.Commits()

	hs.root.RenderWithLane(H("ol", nil, "replaced"), TransitionLane)
	hs.step(1)
	assert.Equal(t, "<ul><li>a</li><li>b</li><li>c</li></ul>", hs.markup())
	assert.Empty(t, hs.mutations())
	assert.Equal(t, commits, hs.root.Commits())

	hs.flush()
	assert.Equal(t, "<ol>replaced</ol>", hs.markup())
	assert.Equal(t, []string{"remove ul8 <- #root1", "append ol10 -> #root1"}, hs.mutations())
}

func TestExitStatusString(t *testing.T) {
	assert.Equal(t, "completed", RootCompleted.String())
	assert.Equal(t, "did-not-complete", RootDidNotComplete.String())
	assert.Equal(t, "status(42)", ExitStatus(42).String())
}
