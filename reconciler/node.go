package reconciler

// Node is one unit of tree work. Two buffers of nodes exist at any time: the
// committed tree reachable from Root.Current and the work in progress tree,
// linked pairwise through alternate.
type Node struct {
	kind Kind
	typ  any
	key  string
	ref  any

	pendingProps  Props
	memoizedProps Props
	// host instance for host kinds, *Root for HostRoot
	stateNode any

	parent  *Node
	child   *Node
	sibling *Node
	index   int

	alternate *Node

	flags        Flags
	subtreeFlags Flags
	deletions    []*Node

	// *hook list for components, *stateCell for HostRoot
	memoizedState any
	// *effectList for components, the awaited Wakeables for a suspended
	// SuspenseBoundary
	updateQueue any

	lanes      Lane
	childLanes Lane

	dependencies []*contextCore
}

func newNode(kind Kind, props Props, key string) *Node {
	return &Node{kind: kind, pendingProps: props, key: key}
}

func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Type() any { return n.typ }
func (n *Node) Key() string { return n.key }
func (n *Node) Index() int { return n.index }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Child() *Node { return n.child }
func (n *Node) Sibling() *Node { return n.sibling }
func (n *Node) Alternate() *Node { return n.alternate }
func (n *Node) Flags() Flags { return n.flags }
func (n *Node) SubtreeFlags() Flags { return n.subtreeFlags }
func (n *Node) Lanes() Lane { return n.lanes }
func (n *Node) ChildLanes() Lane { return n.childLanes }
func (n *Node) Props() Props { return n.memoizedProps }

// StateNode is the host instance of host kinds.
func (n *Node) StateNode() any { return n.stateNode }

// Children lists the direct children in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.child; c != nil; c = c.sibling {
		out = append(out, c)
	}
	return out
}

// cloneForWork returns the work in progress counterpart of current, reusing
// the alternate when one exists.
func cloneForWork(current *Node, pendingProps Props) *Node {
	wip := current.alternate
	if wip == nil {
		wip = newNode(current.kind, pendingProps, current.key)
		wip.typ = current.typ
		wip.stateNode = current.stateNode
		wip.alternate = current
		current.alternate = wip
	} else {
		wip.pendingProps = pendingProps
		wip.flags = NoFlags
		wip.subtreeFlags = NoFlags
		wip.deletions = nil
	}
	wip.typ = current.typ
	wip.ref = current.ref
	wip.updateQueue = current.updateQueue
	wip.child = current.child
	wip.memoizedProps = current.memoizedProps
	wip.memoizedState = current.memoizedState
	wip.index = current.index
	wip.sibling = current.sibling
	wip.lanes = current.lanes
	wip.childLanes = current.childLanes
	wip.dependencies = current.dependencies
	return wip
}

func createFromElement(el *Element) (*Node, error) {
	kind, err := kindOf(el.Type)
	if err != nil {
		return nil, err
	}
	if err := checkRef(el.Ref); err != nil {
		return nil, err
	}
	n := newNode(kind, el.Props, el.Key)
	n.typ = el.Type
	n.ref = el.Ref
	return n, nil
}

func createFromText(text string) *Node {
	return newNode(HostText, textProps(text), "")
}

func createFragment(children any, key string) *Node {
	n := newNode(Fragment, Props{ChildrenKey: children}, key)
	n.typ = FragmentType
	return n
}

func createOffscreen(props Props) *Node {
	return newNode(Offscreen, props, "")
}

const (
	textKey      = "text"
	modeKey      = "mode"
	modeHidden   = "hidden"
	modeVisible  = "visible"
	fallbackProp = "fallback"
)

func textProps(text string) Props { return Props{textKey: text} }

func textOfNode(props Props) string {
	s, _ := props[textKey].(string)
	return s
}

func offscreenHidden(n *Node) bool {
	return n.pendingProps[modeKey] == modeHidden
}

func (n *Node) dependsOn(core *contextCore) bool {
	for _, d := range n.dependencies {
		if d == core {
			return true
		}
	}
	return false
}

// markLane sets lane on n and on its alternate.
func (n *Node) markLane(lane Lane) {
	n.lanes |= lane
	if alt := n.alternate; alt != nil {
		alt.lanes |= lane
	}
}

func (n *Node) markChildLane(lane Lane) {
	n.childLanes |= lane
	if alt := n.alternate; alt != nil {
		alt.childLanes |= lane
	}
}

// markUpdateLaneToRoot marks lane on n and on the child lanes of every
// ancestor, in both buffers, and returns the owning root if n is still
// mounted.
func markUpdateLaneToRoot(n *Node, lane Lane) *Root {
	n.markLane(lane)
	node := n
	for p := n.parent; p != nil; p = p.parent {
		p.markChildLane(lane)
		node = p
	}
	if node.kind == HostRoot {
		if r, ok := node.stateNode.(*Root); ok {
			return r
		}
	}
	return nil
}

// rootOf finds the root of a mounted node.
func rootOf(n *Node) *Root {
	for n.parent != nil {
		n = n.parent
	}
	if n.kind != HostRoot {
		return nil
	}
	r, _ := n.stateNode.(*Root)
	return r
}
