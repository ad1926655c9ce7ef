// Package hostmem is an in memory host for the reconciler. It keeps a plain
// node tree, logs every call made against it and renders the tree as
// markup, which makes it the host of choice for tests, scenarios and
// benchmarks.
package hostmem

import (
	"fmt"
	"maps"
	"slices"

	"github.com/delaneyj/fiberparty/reconciler"
)

const RootType = "#root"

// Node is a host instance.
type Node struct {
	ID       int
	Type     string
	Props    map[string]any
	Text     string
	IsText   bool
	Hidden   bool
	Parent   *Node
	Children []*Node
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.IsText {
		return fmt.Sprintf("#text%d", n.ID)
	}
	return fmt.Sprintf("%s%d", n.Type, n.ID)
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.Children, child)
}

// Host implements reconciler.Host.
type Host struct {
	root   *Node
	nextID int
	ops    []Op

	scheduleMicrotask func(func())
	microtasks        []func()
}

var _ reconciler.Host = (*Host)(nil)

// New creates a host with an empty container. scheduleMicrotask is usually
// (*scheduler.Scheduler).QueueMicrotask. When nil, microtasks wait for
// FlushMicrotasks.
func New(scheduleMicrotask func(func())) *Host {
	h := &Host{scheduleMicrotask: scheduleMicrotask}
	h.root = h.newNode(RootType)
	return h
}

func (h *Host) newNode(typ string) *Node {
	h.nextID++
	return &Node{ID: h.nextID, Type: typ}
}

// Container is the node the reconciler renders into.
func (h *Host) Container() *Node { return h.root }

func (h *Host) Ops() []Op { return h.ops }

// TakeOps returns the log and clears it.
func (h *Host) TakeOps() []Op {
	ops := h.ops
	h.ops = nil
	return ops
}

func (h *Host) ResetOps() { h.ops = nil }

func (h *Host) record(op Op) { h.ops = append(h.ops, op) }

func (h *Host) CreateInstance(typ string, props reconciler.Props) any {
	n := h.newNode(typ)
	n.Props = maps.Clone(props)
	h.record(Op{Kind: OpCreate, Node: n})
	return n
}

func (h *Host) CreateTextInstance(text string) any {
	n := h.newNode("#text")
	n.IsText = true
	n.Text = text
	h.record(Op{Kind: OpCreateText, Node: n, Text: text})
	return n
}

func (h *Host) AppendInitialChild(parent, child any) {
	p, c := asNode(parent), asNode(child)
	h.attach(p, c, nil)
	h.record(Op{Kind: OpAppendInitial, Node: c, Parent: p})
}

func (h *Host) AppendChild(parent, child any) {
	p, c := asNode(parent), asNode(child)
	h.attach(p, c, nil)
	h.record(Op{Kind: OpAppend, Node: c, Parent: p})
}

func (h *Host) InsertBefore(parent, child, before any) {
	p, c, b := asNode(parent), asNode(child), asNode(before)
	if b.Parent != p {
		panic(fmt.Sprintf("hostmem: insert %s before %s: not a child of %s", c, b, p))
	}
	h.attach(p, c, b)
	h.record(Op{Kind: OpInsert, Node: c, Parent: p, Before: b})
}

func (h *Host) RemoveChild(parent, child any) {
	p, c := asNode(parent), asNode(child)
	if c.Parent != p {
		panic(fmt.Sprintf("hostmem: remove %s: not a child of %s", c, p))
	}
	detach(c)
	h.record(Op{Kind: OpRemove, Node: c, Parent: p})
}

func (h *Host) CommitUpdate(instance any, typ string, oldProps, newProps reconciler.Props) {
	n := asNode(instance)
	n.Props = maps.Clone(newProps)
	h.record(Op{Kind: OpUpdate, Node: n})
}

func (h *Host) CommitTextUpdate(instance any, oldText, newText string) {
	n := asNode(instance)
	n.Text = newText
	h.record(Op{Kind: OpTextUpdate, Node: n, Text: newText})
}

func (h *Host) Hide(instance any) {
	n := asNode(instance)
	n.Hidden = true
	h.record(Op{Kind: OpHide, Node: n})
}

func (h *Host) Unhide(instance any) {
	n := asNode(instance)
	n.Hidden = false
	h.record(Op{Kind: OpUnhide, Node: n})
}

func (h *Host) ScheduleMicrotask(fn func()) {
	if h.scheduleMicrotask != nil {
		h.scheduleMicrotask(fn)
		return
	}
	h.microtasks = append(h.microtasks, fn)
}

// FlushMicrotasks runs microtasks queued while no scheduler was attached.
func (h *Host) FlushMicrotasks() {
	for len(h.microtasks) > 0 {
		fn := h.microtasks[0]
		h.microtasks = h.microtasks[1:]
		fn()
	}
}

// attach moves child under parent, before before or at the end. A child
// that is already attached somewhere is moved, not copied.
func (h *Host) attach(parent, child, before *Node) {
	if child.Parent != nil {
		detach(child)
	}
	child.Parent = parent
	if before == nil {
		parent.Children = append(parent.Children, child)
		return
	}
	i := parent.indexOf(before)
	parent.Children = slices.Insert(parent.Children, i, child)
}

func detach(child *Node) {
	p := child.Parent
	if i := p.indexOf(child); i >= 0 {
		p.Children = slices.Delete(p.Children, i, i+1)
	}
	child.Parent = nil
}

func asNode(v any) *Node {
	n, ok := v.(*Node)
	if !ok || n == nil {
		panic(fmt.Sprintf("hostmem: not a host node: %T", v))
	}
	return n
}
