package reconciler

// unwindWork pops what beginWork pushed for n. It returns n when n is the
// boundary that captures the suspension.
func (s *renderSession) unwindWork(n *Node) *Node {
	switch n.kind {
	case SuspenseBoundary:
		s.popSuspenseHandler()
		if n.flags&ShouldCapture != 0 && n.flags&DidCapture == 0 {
			n.flags = (n.flags &^ (ShouldCapture | ChildDeletion)) | DidCapture
			n.deletions = nil
			n.subtreeFlags = NoFlags
			return n
		}
	case ContextProvider:
		s.contexts.pop(n.typ.(*contextCore))
	case HostRoot, FunctionComponent, HostComponent, HostText, Fragment, Offscreen:
	default:
		unhandledKind("unwind", n.kind)
	}
	return nil
}

// unwindUnitOfWork walks up from a suspended unit to the capturing boundary.
// Without one the attempt does not complete.
func (s *renderSession) unwindUnitOfWork(unit *Node) {
	for n := unit; n != nil; n = n.parent {
		if next := s.unwindWork(n); next != nil {
			s.wip = next
			return
		}
		if p := n.parent; p != nil {
			p.subtreeFlags = NoFlags
			p.deletions = nil
			p.flags &^= ChildDeletion
		}
	}
	s.wip = nil
	s.exit = RootDidNotComplete
}
