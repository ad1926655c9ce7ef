package reconciler

import "fmt"

type contextCore struct {
	name         string
	defaultValue any
	required     bool
}

func (c *contextCore) String() string { return c.name }

// Context is a value passed down the tree without threading props.
type Context[T any] struct {
	core *contextCore
}

func CreateContext[T any](name string, defaultValue T) *Context[T] {
	return &Context[T]{core: &contextCore{name: name, defaultValue: defaultValue}}
}

// RequiredContext has no default: reading it without a provider above is a
// usage error.
func RequiredContext[T any](name string) *Context[T] {
	return &Context[T]{core: &contextCore{name: name, required: true}}
}

func (c *Context[T]) Name() string { return c.core.name }

// Provider makes value visible to every descendant of children.
func (c *Context[T]) Provider(value T, children ...any) *Element {
	el := H(c.core, nil, children...)
	el.Props["value"] = value
	return el
}

type providerFrame struct {
	core    *contextCore
	prev    any
	hadPrev bool
}

// contextStack holds the provided values along the current traversal path.
// Pushes happen in begin, pops in complete or unwind, so the stack always
// mirrors the ancestors of the work pointer.
type contextStack struct {
	frames []providerFrame
	values map[*contextCore]any
}

func (cs *contextStack) push(core *contextCore, value any) {
	if cs.values == nil {
		cs.values = map[*contextCore]any{}
	}
	prev, had := cs.values[core]
	cs.frames = append(cs.frames, providerFrame{core: core, prev: prev, hadPrev: had})
	cs.values[core] = value
}

func (cs *contextStack) pop(core *contextCore) {
	last := len(cs.frames) - 1
	if last < 0 {
		panic("reconciler: context stack underflow")
	}
	f := cs.frames[last]
	if f.core != core {
		panic(fmt.Sprintf("reconciler: context stack mismatch: popping %s, top is %s", core, f.core))
	}
	cs.frames = cs.frames[:last]
	if f.hadPrev {
		cs.values[core] = f.prev
	} else {
		delete(cs.values, core)
	}
}

func (cs *contextStack) read(core *contextCore) (any, bool) {
	v, ok := cs.values[core]
	return v, ok
}

func (cs *contextStack) depth() int { return len(cs.frames) }

// propagateContextChange marks every consumer of core below provider with
// lane so a bailout above them cannot skip the new value.
func propagateContextChange(provider *Node, core *contextCore, lane Lane) {
	isProvider := func(n *Node) bool {
		return n == provider || n == provider.alternate
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		for ; n != nil; n = n.sibling {
			if n.dependsOn(core) {
				n.markLane(lane)
				for p := n.parent; p != nil && !isProvider(p); p = p.parent {
					p.markChildLane(lane)
				}
			}
			if n.kind == ContextProvider && n.typ == core {
				continue
			}
			walk(n.child)
		}
	}
	walk(provider.child)
}
