package reconciler

// beginWork renders one node and returns the child to descend into, or nil
// when the subtree bottoms out.
func (s *renderSession) beginWork(wip *Node) (*Node, error) {
	s.didReceiveUpdate = false
	current := wip.alternate

	if current != nil {
		if !sameProps(current.memoizedProps, wip.pendingProps) ||
			!is(current.typ, wip.typ) ||
			wip.flags&DidCapture != 0 {
			s.didReceiveUpdate = true
		} else if !IncludesSomeLane(current.lanes, s.lane) {
			s.pushOnBailout(wip)
			return s.bailoutOnAlreadyFinishedWork(wip), nil
		}
	}

	wip.lanes = NoLanes

	switch wip.kind {
	case HostRoot:
		return s.updateHostRoot(wip)
	case FunctionComponent:
		return s.updateFunctionComponent(current, wip)
	case HostComponent:
		return s.updateHostComponent(wip)
	case HostText:
		return nil, nil
	case Fragment:
		return s.reconcileChildren(wip, wip.pendingProps[ChildrenKey])
	case ContextProvider:
		return s.updateContextProvider(wip)
	case SuspenseBoundary:
		return s.updateSuspenseBoundary(wip)
	case Offscreen:
		return s.reconcileChildren(wip, wip.pendingProps[ChildrenKey])
	default:
		unhandledKind("begin", wip.kind)
		return nil, nil
	}
}

// pushOnBailout keeps the stacks balanced for nodes that skip rendering but
// still complete.
func (s *renderSession) pushOnBailout(wip *Node) {
	switch wip.kind {
	case ContextProvider:
		s.contexts.push(wip.typ.(*contextCore), wip.memoizedProps["value"])
	case SuspenseBoundary:
		if wip.child != nil && offscreenHidden(wip.child) {
			s.pushFallbackHandler()
		} else {
			s.pushSuspenseHandler(wip)
		}
	case HostRoot, FunctionComponent, HostComponent, HostText, Fragment, Offscreen:
	default:
		unhandledKind("bailout", wip.kind)
	}
}

// bailoutOnAlreadyFinishedWork reuses the committed output of wip. When no
// descendant has work at the render lane the whole subtree is skipped.
func (s *renderSession) bailoutOnAlreadyFinishedWork(wip *Node) *Node {
	s.root.logger().Trace().
		Stringer("kind", wip.kind).
		Str("key", wip.key).
		Bool("subtree", !IncludesSomeLane(wip.childLanes, s.lane)).
		Log("reconciler: bailout")
	if !IncludesSomeLane(wip.childLanes, s.lane) {
		return nil
	}
	cloneChildNodes(wip)
	return wip.child
}

func cloneChildNodes(wip *Node) {
	currentChild := wip.child
	if currentChild == nil {
		return
	}
	newChild := cloneForWork(currentChild, currentChild.pendingProps)
	wip.child = newChild
	newChild.parent = wip
	for currentChild.sibling != nil {
		currentChild = currentChild.sibling
		newChild.sibling = cloneForWork(currentChild, currentChild.pendingProps)
		newChild = newChild.sibling
		newChild.parent = wip
	}
	newChild.sibling = nil
}

func (s *renderSession) updateHostRoot(wip *Node) (*Node, error) {
	current := wip.alternate
	prevCell := current.memoizedState.(*stateCell)
	nextCell, skipped := resolveCell(prevCell, s.lane)
	wip.memoizedState = nextCell
	wip.lanes |= skipped

	if is(prevCell.memoizedState, nextCell.memoizedState) {
		return s.bailoutOnAlreadyFinishedWork(wip), nil
	}
	return s.reconcileChildren(wip, nextCell.memoizedState)
}

func (s *renderSession) updateFunctionComponent(current, wip *Node) (*Node, error) {
	comp := wip.typ.(*Component)
	children, err := s.renderWithHooks(current, wip, comp)
	if err != nil {
		return nil, err
	}
	if current != nil && !s.didReceiveUpdate {
		bailoutHooks(current, wip, s.lane)
		return s.bailoutOnAlreadyFinishedWork(wip), nil
	}
	return s.reconcileChildren(wip, children)
}

func (s *renderSession) updateHostComponent(wip *Node) (*Node, error) {
	return s.reconcileChildren(wip, wip.pendingProps[ChildrenKey])
}

func (s *renderSession) updateContextProvider(wip *Node) (*Node, error) {
	core := wip.typ.(*contextCore)
	newValue := wip.pendingProps["value"]
	if old := wip.memoizedProps; old != nil && !is(old["value"], newValue) {
		propagateContextChange(wip, core, s.lane)
	}
	s.contexts.push(core, newValue)
	return s.reconcileChildren(wip, wip.pendingProps[ChildrenKey])
}

// reconcileChildren diffs the children of wip. Nodes without a committed
// counterpart mount their whole subtree without tracking side effects; their
// own placement inserts it in one go.
func (s *renderSession) reconcileChildren(wip *Node, children any) (*Node, error) {
	current := wip.alternate
	var (
		first *Node
		err   error
	)
	if current != nil {
		first, err = updateReconciler.reconcileChildNodes(wip, current.child, children)
	} else {
		first, err = mountReconciler.reconcileChildNodes(wip, nil, children)
	}
	if err != nil {
		return nil, err
	}
	wip.child = first
	return first, nil
}
