package reconciler

import (
	mapset "github.com/deckarep/golang-set/v2"
)

func (s *renderSession) pushSuspenseHandler(n *Node) {
	s.handlers = append(s.handlers, n)
}

// pushFallbackHandler is used while a boundary renders its fallback: a
// suspension inside the fallback belongs to the enclosing boundary.
func (s *renderSession) pushFallbackHandler() {
	s.handlers = append(s.handlers, s.suspenseHandler())
}

func (s *renderSession) popSuspenseHandler() {
	last := len(s.handlers) - 1
	if last < 0 {
		panic("reconciler: suspense handler stack underflow")
	}
	s.handlers[last] = nil
	s.handlers = s.handlers[:last]
}

func (s *renderSession) suspenseHandler() *Node {
	if len(s.handlers) == 0 {
		return nil
	}
	return s.handlers[len(s.handlers)-1]
}

// updateSuspenseBoundary renders a boundary as an Offscreen wrapper around
// the primary children, plus a Fragment holding the fallback while the
// primary children are suspended.
func (s *renderSession) updateSuspenseBoundary(wip *Node) (*Node, error) {
	current := wip.alternate
	props := wip.pendingProps

	showFallback := wip.flags&DidCapture != 0
	if showFallback {
		wip.flags &^= DidCapture
		s.pushFallbackHandler()
	} else {
		s.pushSuspenseHandler(wip)
	}

	primary := props[ChildrenKey]
	fallback := props[fallbackProp]

	if current == nil {
		if showFallback {
			return mountSuspenseFallback(wip, primary, fallback), nil
		}
		return mountSuspensePrimary(wip, primary), nil
	}
	if showFallback {
		return updateSuspenseFallback(wip, primary, fallback), nil
	}
	return updateSuspensePrimary(wip, primary), nil
}

func mountSuspensePrimary(wip *Node, primary any) *Node {
	off := createOffscreen(Props{modeKey: modeVisible, ChildrenKey: primary})
	off.parent = wip
	wip.child = off
	return off
}

// mountSuspenseFallback leaves the hidden primary wrapper empty and goes
// straight to the fallback.
func mountSuspenseFallback(wip *Node, primary, fallback any) *Node {
	off := createOffscreen(Props{modeKey: modeHidden, ChildrenKey: primary})
	frag := createFragment(fallback, "")
	off.parent = wip
	frag.parent = wip
	off.sibling = frag
	wip.child = off
	return frag
}

// updateSuspenseFallback keeps the committed primary children in place,
// hidden, and renders the fallback next to them.
func updateSuspenseFallback(wip *Node, primary, fallback any) *Node {
	current := wip.alternate
	curPrimary := current.child
	curFallback := curPrimary.sibling

	off := cloneForWork(curPrimary, Props{modeKey: modeHidden, ChildrenKey: primary})
	var frag *Node
	if curFallback != nil {
		frag = cloneForWork(curFallback, Props{ChildrenKey: fallback})
	} else {
		frag = createFragment(fallback, "")
		frag.flags |= Placement
	}
	off.parent = wip
	frag.parent = wip
	off.sibling = frag
	frag.sibling = nil
	wip.child = off
	return frag
}

func updateSuspensePrimary(wip *Node, primary any) *Node {
	current := wip.alternate
	curPrimary := current.child
	curFallback := curPrimary.sibling

	off := cloneForWork(curPrimary, Props{modeKey: modeVisible, ChildrenKey: primary})
	off.parent = wip
	off.sibling = nil
	wip.child = off

	if curFallback != nil {
		wip.deletions = append(wip.deletions, curFallback)
		wip.flags |= ChildDeletion
	}
	return off
}

// completeSuspenseBoundary flags the primary wrapper when its visibility
// flipped and there are committed children to toggle. A boundary holding
// wakeables is flagged so commit attaches its retry listeners.
func completeSuspenseBoundary(wip *Node) {
	if wakeables, _ := wip.updateQueue.(mapset.Set[Wakeable]); wakeables != nil && wakeables.Cardinality() > 0 {
		wip.flags |= Update
	}
	off := wip.child
	if off == nil || off.kind != Offscreen {
		return
	}
	if cur := wip.alternate; cur != nil && cur.child == off {
		// bailed out: off is the committed wrapper
		return
	}
	cur := off.alternate
	if cur == nil || cur.child == nil {
		return
	}
	if offscreenHidden(cur) != offscreenHidden(off) {
		off.flags |= Visibility
	}
}

// throwException routes a suspension to the nearest boundary. The boundary
// remembers w so the committed fallback can retry once w settles; the root
// listens too, for lanes that suspend without a boundary.
func (s *renderSession) throwException(w Wakeable) {
	boundary := s.suspenseHandler()
	if boundary != nil {
		boundary.flags |= ShouldCapture
		wakeables, _ := boundary.updateQueue.(mapset.Set[Wakeable])
		if wakeables == nil {
			wakeables = mapset.NewThreadUnsafeSet[Wakeable]()
			boundary.updateQueue = wakeables
		}
		wakeables.Add(w)
	}
	s.root.logger().Debug().
		Stringer("lane", s.lane).
		Bool("captured", boundary != nil).
		Log("reconciler: suspended")
	s.root.attachPingListener(w, s.lane)
}

// attachPingListener registers lane against w once per (w, lane) pair.
func (r *Root) attachPingListener(w Wakeable, lane Lane) {
	if r.pingCache == nil {
		r.pingCache = map[Wakeable]mapset.Set[Lane]{}
	}
	lanes, ok := r.pingCache[w]
	if !ok {
		lanes = mapset.NewThreadUnsafeSet[Lane]()
		r.pingCache[w] = lanes
	}
	if lanes.Contains(lane) {
		return
	}
	lanes.Add(lane)
	w.Then(func() { r.ping(w, lane) })
}

func (r *Root) ping(w Wakeable, lane Lane) {
	delete(r.pingCache, w)
	if s := r.session; s != nil && !r.rendering && s.lane == lane {
		// the paused attempt may already have given up on w
		r.session = nil
	}
	r.lanes.markPinged(lane)
	r.logger().Debug().
		Stringer("lane", lane).
		Log("reconciler: pinged")
	r.ensureRootIsScheduled()
}

// retryBoundary re-renders a committed boundary that shows its fallback.
func (r *Root) retryBoundary(boundary *Node, lane Lane) {
	if markUpdateLaneToRoot(boundary, lane) != r {
		return
	}
	r.lanes.markUpdated(lane)
	r.logger().Debug().
		Stringer("lane", lane).
		Log("reconciler: retrying boundary")
	r.ensureRootIsScheduled()
}
