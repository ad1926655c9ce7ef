package reconciler

import "fmt"

type hookKind uint8

const (
	hookState hookKind = iota + 1
	hookEffect
	hookRef
	hookContext
	hookTransition
)

func (k hookKind) String() string {
	switch k {
	case hookState:
		return "state"
	case hookEffect:
		return "effect"
	case hookRef:
		return "ref"
	case hookContext:
		return "context"
	case hookTransition:
		return "transition"
	default:
		return fmt.Sprintf("hook(%d)", uint8(k))
	}
}

// hook is one cell of a component's hook list. Cells are matched to calls by
// position.
type hook struct {
	kind hookKind
	// *stateCell, *effect, *RefObject, the read context value, or the
	// transition starter
	memoizedState any
	next          *hook
}

type effect struct {
	tag     hookFlags
	create  func() func()
	destroy func()
	deps    []any
	next    *effect
}

// effectList is a circular list anchored at its last effect.
type effectList struct {
	lastEffect *effect
}

func (l *effectList) push(e *effect) *effect {
	if l.lastEffect == nil {
		e.next = e
	} else {
		e.next = l.lastEffect.next
		l.lastEffect.next = e
	}
	l.lastEffect = e
	return e
}

func (l *effectList) each(fn func(e *effect)) {
	if l == nil || l.lastEffect == nil {
		return
	}
	first := l.lastEffect.next
	e := first
	for {
		next := e.next
		fn(e)
		e = next
		if e == first {
			return
		}
	}
}

// RefObject is a mutable box that survives re-renders.
type RefObject struct {
	Current any
}

// Hooks is handed to a component for one evaluation only.
type Hooks struct {
	session   *renderSession
	node      *Node
	current   *Node
	component *Component
	lane      Lane
	d         dispatcher

	currentHook *hook
	wipHook     *hook
	index       int
	done        bool
}

// Lane is the lane being rendered.
func (h *Hooks) Lane() Lane { return h.lane }

func (h *Hooks) fail(err error) {
	panic(&HookError{Component: h.component.String(), Index: h.index, Err: err})
}

func (h *Hooks) use() dispatcher {
	if h == nil {
		panic(&HookError{Component: "unknown", Err: ErrNotInRender})
	}
	if h.done {
		h.fail(ErrNotInRender)
	}
	return h.d
}

func (h *Hooks) link(hk *hook) *hook {
	if h.wipHook == nil {
		h.node.memoizedState = hk
	} else {
		h.wipHook.next = hk
	}
	h.wipHook = hk
	h.index++
	return hk
}

func (h *Hooks) mountHook(kind hookKind) *hook {
	return h.link(&hook{kind: kind})
}

// updateHook clones the next cell of the current list.
func (h *Hooks) updateHook(kind hookKind) *hook {
	var next *hook
	if h.currentHook == nil {
		next, _ = h.current.memoizedState.(*hook)
	} else {
		next = h.currentHook.next
	}
	if next == nil {
		h.fail(ErrTooManyHooks)
	}
	if next.kind != kind {
		h.fail(fmt.Errorf("%w: %s became %s", ErrHookKindChanged, next.kind, kind))
	}
	h.currentHook = next
	return h.link(&hook{kind: kind, memoizedState: next.memoizedState})
}

// unusedHooks reports whether the current list has cells this evaluation did
// not reach.
func (h *Hooks) unusedHooks() bool {
	if h.current == nil {
		return false
	}
	if h.currentHook == nil {
		first, _ := h.current.memoizedState.(*hook)
		return first != nil
	}
	return h.currentHook.next != nil
}

func (h *Hooks) pushEffect(tag hookFlags, create func() func(), destroy func(), deps []any) *effect {
	list, _ := h.node.updateQueue.(*effectList)
	if list == nil {
		list = &effectList{}
		h.node.updateQueue = list
	}
	return list.push(&effect{tag: tag, create: create, destroy: destroy, deps: deps})
}

func (h *Hooks) readContext(core *contextCore) any {
	v, ok := h.session.contexts.read(core)
	if !ok {
		if core.required {
			h.fail(fmt.Errorf("%w: %s", ErrNoProvider, core.name))
		}
		v = core.defaultValue
	}
	if !h.node.dependsOn(core) {
		h.node.dependencies = append(h.node.dependencies, core)
	}
	return v
}

// dispatcher is picked once per evaluation: mount when the node has no
// committed counterpart, update otherwise.
type dispatcher interface {
	state(h *Hooks, initial func() any) *stateCell
	effect(h *Hooks, create func() func(), deps []any)
	ref(h *Hooks, initial any) *RefObject
	context(h *Hooks, core *contextCore) any
	transition(h *Hooks) (bool, func(func()))
}

type mountDispatcher struct{}

func (mountDispatcher) state(h *Hooks, initial func() any) *stateCell {
	hk := h.mountHook(hookState)
	v := initial()
	cell := &stateCell{memoizedState: v, baseState: v, queue: &updateQueue{node: h.node}}
	hk.memoizedState = cell
	return cell
}

func (mountDispatcher) effect(h *Hooks, create func() func(), deps []any) {
	hk := h.mountHook(hookEffect)
	h.node.flags |= PassiveEffect
	hk.memoizedState = h.pushEffect(hookPassive|hookHasEffect, create, nil, deps)
}

func (mountDispatcher) ref(h *Hooks, initial any) *RefObject {
	hk := h.mountHook(hookRef)
	r := &RefObject{Current: initial}
	hk.memoizedState = r
	return r
}

func (mountDispatcher) context(h *Hooks, core *contextCore) any {
	hk := h.mountHook(hookContext)
	v := h.readContext(core)
	hk.memoizedState = v
	return v
}

func (d mountDispatcher) transition(h *Hooks) (bool, func(func())) {
	cell := d.state(h, func() any { return false })
	hk := h.mountHook(hookTransition)
	q := cell.queue
	start := func(fn func()) { startTransition(q, fn) }
	hk.memoizedState = start
	return false, start
}

type updateDispatcher struct{}

func (updateDispatcher) state(h *Hooks, _ func() any) *stateCell {
	hk := h.updateHook(hookState)
	cur := hk.memoizedState.(*stateCell)
	next, skipped := resolveCell(cur, h.lane)
	h.node.lanes |= skipped
	if !is(next.memoizedState, cur.memoizedState) {
		h.session.didReceiveUpdate = true
	}
	hk.memoizedState = next
	return next
}

func (updateDispatcher) effect(h *Hooks, create func() func(), deps []any) {
	hk := h.updateHook(hookEffect)
	prev := hk.memoizedState.(*effect)
	if deps != nil && depsEqual(deps, prev.deps) {
		hk.memoizedState = h.pushEffect(hookPassive, create, prev.destroy, deps)
		return
	}
	h.node.flags |= PassiveEffect
	hk.memoizedState = h.pushEffect(hookPassive|hookHasEffect, create, prev.destroy, deps)
}

func (updateDispatcher) ref(h *Hooks, _ any) *RefObject {
	return h.updateHook(hookRef).memoizedState.(*RefObject)
}

func (updateDispatcher) context(h *Hooks, core *contextCore) any {
	hk := h.updateHook(hookContext)
	v := h.readContext(core)
	if !is(hk.memoizedState, v) {
		h.session.didReceiveUpdate = true
	}
	hk.memoizedState = v
	return v
}

func (d updateDispatcher) transition(h *Hooks) (bool, func(func())) {
	cell := d.state(h, nil)
	hk := h.updateHook(hookTransition)
	pending, _ := cell.memoizedState.(bool)
	return pending, hk.memoizedState.(func(func()))
}

func depsEqual(next, prev []any) bool {
	if prev == nil || len(next) != len(prev) {
		return false
	}
	for i := range next {
		if !is(next[i], prev[i]) {
			return false
		}
	}
	return true
}

func valueAs[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Dispatch enqueues updates on one state slot.
type Dispatch[T any] struct {
	q *updateQueue
}

func (d Dispatch[T]) Set(v T) {
	dispatchUpdate(d.q, &update{payload: v})
}

func (d Dispatch[T]) Update(fn func(prev T) T) {
	dispatchUpdate(d.q, &update{reducer: func(prev any) any { return fn(valueAs[T](prev)) }})
}

func dispatchUpdate(q *updateQueue, u *update) {
	if q == nil {
		return
	}
	r := rootOf(q.node)
	if r == nil {
		return
	}
	u.lane = r.requestUpdateLane()
	q.enqueue(u)
	r.scheduleUpdateOnNode(q.node, u.lane)
}

func startTransition(q *updateQueue, fn func()) {
	r := rootOf(q.node)
	if r == nil {
		fn()
		return
	}
	dispatchUpdate(q, &update{payload: true})
	r.transitionDepth++
	defer func() { r.transitionDepth-- }()
	dispatchUpdate(q, &update{payload: false})
	fn()
}

// UseState returns the current value of a state slot and its dispatcher.
func UseState[T any](h *Hooks, initial T) (T, Dispatch[T]) {
	cell := h.use().state(h, func() any { return initial })
	return valueAs[T](cell.memoizedState), Dispatch[T]{q: cell.queue}
}

// UseStateFunc is UseState with a lazily computed initial value.
func UseStateFunc[T any](h *Hooks, initial func() T) (T, Dispatch[T]) {
	cell := h.use().state(h, func() any { return initial() })
	return valueAs[T](cell.memoizedState), Dispatch[T]{q: cell.queue}
}

// UseEffect runs create after commit. A nil deps slice re-runs it after every
// commit, an empty one only after the first.
func UseEffect(h *Hooks, create func() func(), deps []any) {
	h.use().effect(h, create, deps)
}

func UseRef(h *Hooks, initial any) *RefObject {
	return h.use().ref(h, initial)
}

func UseContext[T any](h *Hooks, ctx *Context[T]) T {
	return valueAs[T](h.use().context(h, ctx.core))
}

// UseTransition returns whether a transition is pending and a function that
// runs its argument with every update inside demoted to the transition lane.
func UseTransition(h *Hooks) (bool, func(func())) {
	return h.use().transition(h)
}

// Use reads a future. While it is pending the returned error is a
// *SuspendError that the component must return.
func Use[T any](h *Hooks, f *Future[T]) (T, error) {
	h.use()
	var zero T
	switch f.state {
	case futureResolved:
		return f.value, nil
	case futureRejected:
		return zero, f.err
	default:
		return zero, &SuspendError{Wakeable: f}
	}
}

// renderWithHooks evaluates a function component.
func (s *renderSession) renderWithHooks(current, wip *Node, comp *Component) (any, error) {
	wip.memoizedState = nil
	wip.updateQueue = nil
	wip.dependencies = nil

	h := &Hooks{session: s, node: wip, current: current, component: comp, lane: s.lane}
	if current != nil {
		h.d = updateDispatcher{}
	} else {
		h.d = mountDispatcher{}
	}
	defer func() { h.done = true }()

	children, err := comp.Render(h, wip.pendingProps)
	if err != nil {
		if IsSuspend(err) {
			return nil, err
		}
		return nil, &ComponentError{Component: comp.String(), Err: err}
	}
	if h.unusedHooks() {
		return nil, &HookError{Component: comp.String(), Index: h.index, Err: ErrTooFewHooks}
	}
	return children, nil
}

// bailoutHooks undoes the effects of an evaluation whose output is reused.
func bailoutHooks(current, wip *Node, lane Lane) {
	wip.updateQueue = current.updateQueue
	wip.flags &^= PassiveEffect | Update
	current.lanes &^= lane
}
