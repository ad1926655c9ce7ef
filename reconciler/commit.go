package reconciler

import (
	"fmt"

	"github.com/delaneyj/fiberparty/scheduler"
	mapset "github.com/deckarep/golang-set/v2"
)

// pendingPassive holds the effect lists waiting for the passive flush.
type pendingPassive struct {
	unmount []*effectList
	update  []*effectList
}

func (p pendingPassive) empty() bool {
	return len(p.unmount) == 0 && len(p.update) == 0
}

// commitRoot publishes the finished tree. Host mutations and ref detaches
// happen first, then the tree is swapped, then refs are attached. Passive
// effects are left for a later normal priority callback.
func (r *Root) commitRoot() {
	finished, lane := r.finishedWork, r.finishedLane
	if finished == nil {
		return
	}
	r.finishedWork = nil
	r.finishedLane = NoLane
	r.callbackNode = nil
	r.callbackPriority = NoLane
	r.lanes.markFinished(lane)

	all := finished.flags | finished.subtreeFlags
	if all&PassiveMask != 0 && !r.passiveScheduled {
		r.passiveScheduled = true
		r.sched.ScheduleCallback(scheduler.NormalPriority, func(bool) scheduler.Callback {
			r.flushPassiveEffects()
			return nil
		})
	}

	c := &committer{root: r, host: r.host}
	if all&(MutationMask|PassiveMask) != 0 {
		c.commitMutationEffects(finished)
	}
	r.current = finished
	if all&LayoutMask != 0 {
		c.commitLayoutEffects(finished)
	}
	r.commits++
	c.attachRetryListeners(lane)

	r.logger().Debug().
		Stringer("lane", lane).
		Int("placements", c.placements).
		Int("updates", c.updates).
		Int("deletions", c.deletions).
		Log("reconciler: committed")

	r.ensureRootIsScheduled()
}

type committer struct {
	root *Root
	host Host

	placements int
	updates    int
	deletions  int

	// boundaries that committed a fallback, with what they wait on
	retries []*Node
}

// commitMutationEffects handles the deletions recorded on n, then n's
// children, then n itself.
func (c *committer) commitMutationEffects(n *Node) {
	for _, d := range n.deletions {
		c.commitDeletion(n, d)
	}
	n.deletions = nil

	if n.subtreeFlags&(MutationMask|PassiveMask) != 0 {
		for child := n.child; child != nil; child = child.sibling {
			c.commitMutationEffects(child)
		}
	}

	flags := n.flags
	if flags&Placement != 0 {
		c.commitPlacement(n)
	}
	if flags&Update != 0 {
		c.commitUpdate(n)
	}
	if flags&Ref != 0 {
		if cur := n.alternate; cur != nil && cur.ref != nil {
			detachRef(cur.ref)
		}
	}
	if flags&Visibility != 0 && n.kind == Offscreen {
		c.hideOrUnhide(n, offscreenHidden(n))
	}
	if flags&PassiveEffect != 0 && n.kind == FunctionComponent {
		if list, _ := n.updateQueue.(*effectList); list != nil {
			c.root.passive.update = append(c.root.passive.update, list)
		}
	}

	n.flags &^= commitMask &^ Ref
	n.subtreeFlags &^= commitMask &^ Ref
}

func (c *committer) commitPlacement(n *Node) {
	c.placements++
	parent := hostParentOf(n.parent)
	before := hostSiblingOf(n)
	c.insertOrAppend(n, parent, before)
}

func (c *committer) insertOrAppend(n *Node, parent, before any) {
	if n.kind.isHost() {
		if before != nil {
			c.host.InsertBefore(parent, n.stateNode, before)
		} else {
			c.host.AppendChild(parent, n.stateNode)
		}
		return
	}
	for child := n.child; child != nil; child = child.sibling {
		c.insertOrAppend(child, parent, before)
	}
}

func (c *committer) commitUpdate(n *Node) {
	if n.kind == SuspenseBoundary {
		c.retries = append(c.retries, n)
		return
	}
	cur := n.alternate
	if cur == nil {
		return
	}
	switch n.kind {
	case HostComponent:
		c.updates++
		c.host.CommitUpdate(n.stateNode, n.typ.(string), hostProps(cur.memoizedProps), hostProps(n.memoizedProps))
	case HostText:
		c.updates++
		c.host.CommitTextUpdate(n.stateNode, textOfNode(cur.memoizedProps), textOfNode(n.memoizedProps))
	}
}

// commitDeletion removes the top level host nodes of d from the host tree,
// detaches refs and queues unmount effects for the whole subtree.
func (c *committer) commitDeletion(parent, d *Node) {
	c.deletions++
	hostParent := hostParentOf(parent)
	var roots []any
	c.unmountSubtree(d, false, &roots)
	for _, inst := range roots {
		c.host.RemoveChild(hostParent, inst)
	}
	detachNode(d)
}

func (c *committer) unmountSubtree(n *Node, underHost bool, roots *[]any) {
	switch n.kind {
	case HostComponent:
		if n.ref != nil {
			detachRef(n.ref)
		}
		if !underHost {
			*roots = append(*roots, n.stateNode)
		}
		underHost = true
	case HostText:
		if !underHost {
			*roots = append(*roots, n.stateNode)
		}
		underHost = true
	case FunctionComponent:
		if list, _ := n.updateQueue.(*effectList); list != nil {
			c.root.passive.unmount = append(c.root.passive.unmount, list)
		}
	case HostRoot, Fragment, ContextProvider, SuspenseBoundary, Offscreen:
	default:
		unhandledKind("deletion", n.kind)
	}
	for child := n.child; child != nil; child = child.sibling {
		c.unmountSubtree(child, underHost, roots)
	}
}

// attachRetryListeners re-renders each boundary that committed a fallback
// once one of the values it waits on settles. Listeners go on after the
// swap because a value that already settled calls back straight away.
func (c *committer) attachRetryListeners(lane Lane) {
	for _, b := range c.retries {
		wakeables, _ := b.updateQueue.(mapset.Set[Wakeable])
		b.updateQueue = nil
		if wakeables == nil {
			continue
		}
		wakeables.Each(func(w Wakeable) bool {
			w.Then(func() { c.root.retryBoundary(b, lane) })
			return false
		})
	}
}

// detachNode cuts d from the tree so late dispatches from inside it find no
// root.
func detachNode(d *Node) {
	d.parent = nil
	if alt := d.alternate; alt != nil {
		alt.parent = nil
	}
}

// hideOrUnhide toggles the top level host nodes below an Offscreen. Nested
// hidden wrappers stay hidden.
func (c *committer) hideOrUnhide(off *Node, hide bool) {
	var walk func(n *Node)
	walk = func(n *Node) {
		for ; n != nil; n = n.sibling {
			if n.kind.isHost() {
				if hide {
					c.host.Hide(n.stateNode)
				} else {
					c.host.Unhide(n.stateNode)
				}
				continue
			}
			if n.kind == Offscreen && !hide && offscreenHidden(n) {
				continue
			}
			walk(n.child)
		}
	}
	walk(off.child)
}

func (c *committer) commitLayoutEffects(n *Node) {
	if n.subtreeFlags&LayoutMask != 0 {
		for child := n.child; child != nil; child = child.sibling {
			c.commitLayoutEffects(child)
		}
	}
	if n.flags&Ref != 0 && n.kind == HostComponent && n.ref != nil {
		attachRef(n.ref, n.stateNode)
	}
	n.flags &^= Ref
	n.subtreeFlags &^= LayoutMask
}

func attachRef(ref, inst any) {
	switch r := ref.(type) {
	case *RefObject:
		r.Current = inst
	case func(any):
		r(inst)
	default:
		panic(fmt.Sprintf("reconciler: unsupported ref %T", ref))
	}
}

func detachRef(ref any) {
	switch r := ref.(type) {
	case *RefObject:
		r.Current = nil
	case func(any):
		r(nil)
	}
}

// hostParentOf finds the host instance children of n are inserted into.
func hostParentOf(n *Node) any {
	for ; n != nil; n = n.parent {
		switch n.kind {
		case HostComponent:
			return n.stateNode
		case HostRoot:
			return n.stateNode.(*Root).container
		}
	}
	panic("reconciler: node has no host parent")
}

// hostSiblingOf finds the host node that n's host nodes go before, skipping
// nodes that are themselves being placed. Nil means append.
func hostSiblingOf(n *Node) any {
	node := n
siblings:
	for {
		for node.sibling == nil {
			p := node.parent
			if p == nil || p.kind == HostComponent || p.kind == HostRoot {
				return nil
			}
			node = p
		}
		node.sibling.parent = node.parent
		node = node.sibling
		for !node.kind.isHost() {
			if node.flags&Placement != 0 || node.child == nil {
				continue siblings
			}
			node.child.parent = node
			node = node.child
		}
		if node.flags&Placement == 0 {
			return node.stateNode
		}
	}
}

// flushPassiveEffects runs queued passive effects: every destroy of
// unmounted components, then the destroys of changed effects, then their
// creates. It reports whether anything ran.
func (r *Root) flushPassiveEffects() bool {
	p := r.passive
	r.passive = pendingPassive{}
	r.passiveScheduled = false
	if p.empty() {
		return false
	}

	const changed = hookPassive | hookHasEffect
	for _, list := range p.unmount {
		list.each(func(e *effect) {
			if e.tag&hookPassive != 0 && e.destroy != nil {
				destroy := e.destroy
				e.destroy = nil
				destroy()
			}
		})
	}
	for _, list := range p.update {
		list.each(func(e *effect) {
			if e.tag&changed == changed && e.destroy != nil {
				destroy := e.destroy
				e.destroy = nil
				destroy()
			}
		})
	}
	for _, list := range p.update {
		list.each(func(e *effect) {
			if e.tag&changed == changed && e.create != nil {
				e.destroy = e.create()
			}
		})
	}
	r.logger().Trace().
		Int("unmounted", len(p.unmount)).
		Int("updated", len(p.update)).
		Log("reconciler: passive effects flushed")

	r.flushSyncCallbacks()
	return true
}
