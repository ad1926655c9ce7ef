package reconciler

// completeWork finishes wip once all of its children are done: host
// instances are created or diffed, pushed stacks are popped and the
// children's flags and lanes are bubbled up.
func (s *renderSession) completeWork(wip *Node) {
	current := wip.alternate
	host := s.root.host

	switch wip.kind {
	case HostComponent:
		if current != nil && wip.stateNode != nil {
			if !hostPropsEqual(current.memoizedProps, wip.pendingProps) {
				wip.flags |= Update
			}
			if !is(current.ref, wip.ref) {
				wip.flags |= Ref
			}
			break
		}
		inst := host.CreateInstance(wip.typ.(string), hostProps(wip.pendingProps))
		appendAllChildren(host, inst, wip)
		wip.stateNode = inst
		if wip.ref != nil {
			wip.flags |= Ref
		}
	case HostText:
		text := textOfNode(wip.pendingProps)
		if current != nil && wip.stateNode != nil {
			if textOfNode(current.memoizedProps) != text {
				wip.flags |= Update
			}
			break
		}
		wip.stateNode = host.CreateTextInstance(text)
	case ContextProvider:
		s.contexts.pop(wip.typ.(*contextCore))
	case SuspenseBoundary:
		s.popSuspenseHandler()
		completeSuspenseBoundary(wip)
	case HostRoot, FunctionComponent, Fragment, Offscreen:
	default:
		unhandledKind("complete", wip.kind)
	}

	bubbleProperties(wip)
}

// appendAllChildren attaches the top level host nodes below wip to parent.
// Deeper host nodes were attached when their own host parent completed.
func appendAllChildren(host Host, parent any, wip *Node) {
	node := wip.child
	for node != nil {
		if node.kind.isHost() {
			host.AppendInitialChild(parent, node.stateNode)
		} else if node.child != nil {
			node.child.parent = node
			node = node.child
			continue
		}
		if node == wip {
			return
		}
		for node.sibling == nil {
			if node.parent == nil || node.parent == wip {
				return
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling
	}
}

func bubbleProperties(wip *Node) {
	var subtree Flags
	var lanes Lane
	for c := wip.child; c != nil; c = c.sibling {
		subtree |= c.subtreeFlags | c.flags
		lanes |= c.lanes | c.childLanes
		c.parent = wip
	}
	wip.subtreeFlags |= subtree
	wip.childLanes = lanes
}
