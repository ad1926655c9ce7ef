package reconciler_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/fiberparty/hostmem"
	. "github.com/delaneyj/fiberparty/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reader renders the value of the future in its "f" prop.
var reader = Define("Reader", func(h *Hooks, props Props) (any, error) {
	v, err := Use(h, props["f"].(*Future[string]))
	if err != nil {
		return nil, err
	}
	return H("p", nil, v), nil
})

func TestSuspenseShowsFallbackUntilResolved(t *testing.T) {
	f := NewFuture[string]()
	hs := newHarness(t)
	hs.render(H("main", nil, Suspense("loading", H(reader, Props{"f": f}))))
	assert.Equal(t, "<main>loading</main>", hs.markup())
	require.NoError(t, hs.root.Err())

	// the suspended reader never reaches the host
	ops := hs.host.TakeOps()
	assert.Equal(t, []string{"append main3 -> #root1"}, hostmem.Strings(hostmem.Mutations(ops)))
	for _, op := range ops {
		assert.NotEqual(t, "p", op.Node.Type, op.String())
	}

	f.Resolve("done")
	hs.flush()
	assert.Equal(t, "<main><p>done</p></main>", hs.markup())
	assert.Equal(t, NoLanes, hs.root.PendingLanes())
}

// committed content stays mounted, hidden, while the fallback shows
func TestSuspenseHidesCommittedContent(t *testing.T) {
	var log []string
	tracked := Define("Tracked", func(h *Hooks, props Props) (any, error) {
		UseEffect(h, func() func() {
			log = append(log, "mount")
			return func() { log = append(log, "unmount") }
		}, []any{})
		return H(reader, props), nil
	})
	tree := func(f *Future[string]) *Element {
		return H("main", nil, Suspense(H("i", nil, "loading"), H(tracked, Props{"f": f})))
	}

	hs := newHarness(t)
	hs.render(tree(Resolved("one")))
	assert.Equal(t, "<main><p>one</p></main>", hs.markup())
	p := hs.host.Container().Children[0].Children[0]

	f := NewFuture[string]()
	hs.render(tree(f))
	assert.Equal(t, "<main><p hidden>one</p><i>loading</i></main>", hs.markup())
	assert.Same(t, p, hs.host.Container().Children[0].Children[0])

	f.Resolve("two")
	hs.flush()
	assert.Equal(t, "<main><p>two</p></main>", hs.markup())
	assert.Same(t, p, hs.host.Container().Children[0].Children[0])
	assert.Equal(t, []string{"mount"}, log)
}

// with no boundary the render does not commit and the lane waits for the
// ping
func TestSuspendWithoutBoundary(t *testing.T) {
	f := NewFuture[string]()
	hs := newHarness(t)
	hs.render(H("main", nil, H(reader, Props{"f": f})))
	assert.Equal(t, "", hs.markup())
	assert.Equal(t, 0, hs.root.Commits())
	assert.Equal(t, SyncLane, hs.root.SuspendedLanes())
	require.NoError(t, hs.root.Err())

	f.Resolve("late")
	hs.flush()
	assert.Equal(t, "<main><p>late</p></main>", hs.markup())
	assert.Equal(t, NoLanes, hs.root.PendingLanes())
}

// a suspension inside the fallback belongs to the outer boundary
func TestNestedBoundaries(t *testing.T) {
	inner := NewFuture[string]()
	fallback := NewFuture[string]()
	hs := newHarness(t)
	hs.render(Suspense("outer",
		Suspense(H(reader, Props{"f": fallback}), H(reader, Props{"f": inner})),
	))
	assert.Equal(t, "outer", hs.markup())

	fallback.Resolve("inner loading")
	hs.flush()
	assert.Equal(t, "<p>inner loading</p>", hs.markup())

	inner.Resolve("ready")
	hs.flush()
	assert.Equal(t, "<p>ready</p>", hs.markup())
}

func TestSiblingsOfSuspendedChild(t *testing.T) {
	f := NewFuture[string]()
	hs := newHarness(t)
	hs.render(H("div", nil,
		H("h1", nil, "title"),
		Suspense("...", H("span", nil, "a"), H(reader, Props{"f": f})),
		H("footer", nil),
	))
	assert.Equal(t, "<div><h1>title</h1>...<footer></footer></div>", hs.markup())

	f.Resolve("b")
	hs.flush()
	assert.Equal(t, "<div><h1>title</h1><span>a</span><p>b</p><footer></footer></div>", hs.markup())
}

func TestRejectedFutureFailsRender(t *testing.T) {
	cause := errors.New("fetch failed")

	t.Run("already rejected", func(t *testing.T) {
		f := NewFuture[string]()
		f.Reject(cause)
		hs := newHarness(t)
		hs.render(Suspense("loading", H(reader, Props{"f": f})))

		var ce *ComponentError
		require.ErrorAs(t, hs.root.Err(), &ce)
		assert.Equal(t, "Reader", ce.Component)
		assert.ErrorIs(t, ce, cause)
		assert.Equal(t, "", hs.markup())
	})

	t.Run("rejected while suspended", func(t *testing.T) {
		f := NewFuture[string]()
		hs := newHarness(t)
		hs.render(Suspense("loading", H(reader, Props{"f": f})))
		assert.Equal(t, "loading", hs.markup())

		f.Reject(cause)
		hs.flush()
		assert.ErrorIs(t, hs.root.Err(), cause)
		assert.Equal(t, "loading", hs.markup())
		assert.Equal(t, NoLanes, hs.root.PendingLanes())
	})
}

// one ping per wakeable and lane, however many readers
func TestSharedFuturePingsOnce(t *testing.T) {
	f := NewFuture[string]()
	hs := newHarness(t)
	hs.render(Suspense("loading",
		H(reader, Props{"f": f}),
		H(reader, Props{"f": f}),
	))
	commits := hs.root.Commits()

	f.Resolve("x")
	hs.flush()
	assert.Equal(t, "<p>x</p><p>x</p>", hs.markup())
	assert.Equal(t, commits+1, hs.root.Commits())
}
