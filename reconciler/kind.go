package reconciler

import "fmt"

// Kind is the closed set of node kinds. Every phase switches over all of them
// and panics on a value it does not know.
type Kind uint8

const (
	HostRoot Kind = iota
	FunctionComponent
	HostComponent
	HostText
	Fragment
	ContextProvider
	SuspenseBoundary
	Offscreen
)

func (k Kind) String() string {
	switch k {
	case HostRoot:
		return "HostRoot"
	case FunctionComponent:
		return "FunctionComponent"
	case HostComponent:
		return "HostComponent"
	case HostText:
		return "HostText"
	case Fragment:
		return "Fragment"
	case ContextProvider:
		return "ContextProvider"
	case SuspenseBoundary:
		return "SuspenseBoundary"
	case Offscreen:
		return "Offscreen"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) isHost() bool { return k == HostComponent || k == HostText }

func unhandledKind(phase string, k Kind) {
	panic(fmt.Sprintf("reconciler: %s: unhandled node kind %s", phase, k))
}
