package reconciler

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// childReconciler diffs a parent's committed children against new child
// descriptions. With trackSideEffects off it records neither placements nor
// deletions, which is what a freshly mounting subtree wants.
type childReconciler struct {
	trackSideEffects bool
}

var (
	updateReconciler = childReconciler{trackSideEffects: true}
	mountReconciler  = childReconciler{trackSideEffects: false}
)

// reconcileChildNodes returns the new first child of returnNode.
func (cr childReconciler) reconcileChildNodes(returnNode, currentFirst *Node, newChild any) (*Node, error) {
	if el, ok := newChild.(*Element); ok && el != nil && el.Type == FragmentType && el.Key == "" {
		newChild = el.Props[ChildrenKey]
	}

	switch c := newChild.(type) {
	case nil:
	case *Element:
		if c == nil {
			break
		}
		n, err := cr.reconcileSingleElement(returnNode, currentFirst, c)
		if err != nil {
			return nil, err
		}
		return cr.placeSingleChild(n), nil
	case []any:
		return cr.reconcileChildrenArray(returnNode, currentFirst, c)
	case []*Element:
		items := make([]any, len(c))
		for i, el := range c {
			items[i] = el
		}
		return cr.reconcileChildrenArray(returnNode, currentFirst, items)
	case bool:
	default:
		text, ok := textOf(c)
		if !ok {
			return nil, fmt.Errorf("%w: %T under %s", ErrInvalidChild, c, returnNode.kind)
		}
		return cr.placeSingleChild(cr.reconcileSingleText(returnNode, currentFirst, text)), nil
	}

	cr.deleteRemainingChildren(returnNode, currentFirst)
	return nil, nil
}

func (cr childReconciler) deleteChild(returnNode, child *Node) {
	if !cr.trackSideEffects {
		return
	}
	returnNode.deletions = append(returnNode.deletions, child)
	returnNode.flags |= ChildDeletion
}

func (cr childReconciler) deleteRemainingChildren(returnNode, child *Node) {
	if !cr.trackSideEffects {
		return
	}
	for ; child != nil; child = child.sibling {
		cr.deleteChild(returnNode, child)
	}
}

// useNode reuses a committed node for new props.
func useNode(n *Node, props Props) *Node {
	clone := cloneForWork(n, props)
	clone.index = 0
	clone.sibling = nil
	return clone
}

func (cr childReconciler) placeSingleChild(n *Node) *Node {
	if cr.trackSideEffects && n.alternate == nil {
		n.flags |= Placement
	}
	return n
}

func (cr childReconciler) reconcileSingleElement(returnNode, currentFirst *Node, el *Element) (*Node, error) {
	for child := currentFirst; child != nil; child = child.sibling {
		if child.key != el.Key {
			cr.deleteChild(returnNode, child)
			continue
		}
		if child.kind != HostText && is(child.typ, el.Type) {
			if err := checkRef(el.Ref); err != nil {
				return nil, err
			}
			cr.deleteRemainingChildren(returnNode, child.sibling)
			existing := useNode(child, el.Props)
			existing.parent = returnNode
			existing.ref = el.Ref
			return existing, nil
		}
		// same key, different kind: nothing below can match
		cr.deleteRemainingChildren(returnNode, child)
		break
	}

	n, err := createFromElement(el)
	if err != nil {
		return nil, err
	}
	n.parent = returnNode
	return n, nil
}

func (cr childReconciler) reconcileSingleText(returnNode, currentFirst *Node, text string) *Node {
	if currentFirst != nil && currentFirst.kind == HostText {
		cr.deleteRemainingChildren(returnNode, currentFirst.sibling)
		existing := useNode(currentFirst, textProps(text))
		existing.parent = returnNode
		return existing
	}
	cr.deleteRemainingChildren(returnNode, currentFirst)
	n := createFromText(text)
	n.parent = returnNode
	return n
}

// childKey identifies a child in the lookup built for list reconciliation:
// the explicit key when there is one, the position otherwise.
type childKey struct {
	explicit bool
	key      string
	index    int
}

func keyOfNode(n *Node) childKey {
	if n.key != "" {
		return childKey{explicit: true, key: n.key}
	}
	return childKey{index: n.index}
}

func keyOfItem(item any, index int) childKey {
	if el, ok := item.(*Element); ok && el != nil && el.Key != "" {
		return childKey{explicit: true, key: el.Key}
	}
	return childKey{index: index}
}

// reconcileChildrenArray reuses committed nodes by key. A reused node whose
// old index is below the highest old index reused so far has moved and is
// flagged for placement; nodes reused in increasing order stay put.
func (cr childReconciler) reconcileChildrenArray(returnNode, currentFirst *Node, items []any) (*Node, error) {
	existing := map[childKey]*Node{}
	for c := currentFirst; c != nil; c = c.sibling {
		// a repeated key can only match its first holder
		if k := keyOfNode(c); existing[k] == nil {
			existing[k] = c
		}
	}
	reused := mapset.NewThreadUnsafeSet[*Node]()

	var first, prev *Node
	lastPlacedIndex := 0
	for i, item := range items {
		n, err := cr.updateFromMap(existing, i, item)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		n.index = i
		n.parent = returnNode
		if prev == nil {
			first = n
		} else {
			prev.sibling = n
		}
		prev = n
		if n.alternate != nil {
			reused.Add(n.alternate)
		}

		if !cr.trackSideEffects {
			continue
		}
		if cur := n.alternate; cur != nil {
			if cur.index < lastPlacedIndex {
				n.flags |= Placement
				continue
			}
			lastPlacedIndex = cur.index
		} else {
			n.flags |= Placement
		}
	}

	// leftovers in their old order, for a deterministic commit
	for c := currentFirst; c != nil; c = c.sibling {
		if !reused.Contains(c) {
			cr.deleteChild(returnNode, c)
		}
	}
	return first, nil
}

// updateFromMap produces the node for one list entry. A reused node is
// removed from existing; a stale node with a matching key but another kind
// stays there and is deleted after the pass.
func (cr childReconciler) updateFromMap(existing map[childKey]*Node, index int, item any) (*Node, error) {
	key := keyOfItem(item, index)
	before := existing[key]
	reuse := func(n *Node, props Props) *Node {
		delete(existing, key)
		return useNode(n, props)
	}

	switch c := item.(type) {
	case nil, bool:
		return nil, nil
	case *Element:
		if c == nil {
			return nil, nil
		}
		if before != nil && before.kind != HostText && is(before.typ, c.Type) {
			if err := checkRef(c.Ref); err != nil {
				return nil, err
			}
			n := reuse(before, c.Props)
			n.ref = c.Ref
			return n, nil
		}
		return createFromElement(c)
	case []any:
		if before != nil && before.kind == Fragment && before.typ == FragmentType {
			return reuse(before, Props{ChildrenKey: c}), nil
		}
		return createFragment(c, ""), nil
	case []*Element:
		items := make([]any, len(c))
		for i, el := range c {
			items[i] = el
		}
		return cr.updateFromMap(existing, index, items)
	}

	text, ok := textOf(item)
	if !ok {
		return nil, fmt.Errorf("%w: %T in list", ErrInvalidChild, item)
	}
	if before != nil && before.kind == HostText {
		return reuse(before, textProps(text)), nil
	}
	return createFromText(text), nil
}
