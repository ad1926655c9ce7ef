package reconciler

import "strings"

// Flags are the side effects a node carries into commit.
type Flags uint16

const NoFlags Flags = 0

const (
	Placement Flags = 1 << iota
	Update
	ChildDeletion
	PassiveEffect
	Ref
	Visibility
	ShouldCapture
	DidCapture
)

const (
	MutationMask = Placement | Update | ChildDeletion | Ref | Visibility
	LayoutMask   = Ref
	PassiveMask  = PassiveEffect | ChildDeletion
	// commit leaves these set on the published tree only until the node is
	// cloned again
	commitMask = MutationMask | PassiveEffect
)

var flagNames = [...]struct {
	flag Flags
	name string
}{
	{Placement, "placement"},
	{Update, "update"},
	{ChildDeletion, "deletion"},
	{PassiveEffect, "passive"},
	{Ref, "ref"},
	{Visibility, "visibility"},
	{ShouldCapture, "should-capture"},
	{DidCapture, "did-capture"},
}

func (f Flags) String() string {
	if f == NoFlags {
		return "none"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

type hookFlags uint8

const (
	hookHasEffect hookFlags = 1 << iota
	hookPassive
)
