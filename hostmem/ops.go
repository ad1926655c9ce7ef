package hostmem

import "fmt"

type OpKind uint8

const (
	OpCreate OpKind = iota + 1
	OpCreateText
	OpAppendInitial
	OpAppend
	OpInsert
	OpRemove
	OpUpdate
	OpTextUpdate
	OpHide
	OpUnhide
)

var opNames = map[OpKind]string{
	OpCreate:        "create",
	OpCreateText:    "create-text",
	OpAppendInitial: "append-initial",
	OpAppend:        "append",
	OpInsert:        "insert",
	OpRemove:        "remove",
	OpUpdate:        "update",
	OpTextUpdate:    "text",
	OpHide:          "hide",
	OpUnhide:        "unhide",
}

func (k OpKind) String() string {
	if s, ok := opNames[k]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// Mutates reports whether the op touches the attached tree. Creating
// instances and building detached subtrees does not.
func (k OpKind) Mutates() bool {
	switch k {
	case OpCreate, OpCreateText, OpAppendInitial:
		return false
	}
	return true
}

// Op is one logged host call.
type Op struct {
	Kind   OpKind
	Node   *Node
	Parent *Node
	Before *Node
	Text   string
}

func (o Op) String() string {
	switch o.Kind {
	case OpAppend, OpAppendInitial:
		return fmt.Sprintf("%s %s -> %s", o.Kind, o.Node, o.Parent)
	case OpInsert:
		return fmt.Sprintf("%s %s -> %s before %s", o.Kind, o.Node, o.Parent, o.Before)
	case OpRemove:
		return fmt.Sprintf("%s %s <- %s", o.Kind, o.Node, o.Parent)
	case OpCreateText, OpTextUpdate:
		return fmt.Sprintf("%s %s %q", o.Kind, o.Node, o.Text)
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Node)
	}
}

// Mutations filters ops down to those that touch the attached tree.
func Mutations(ops []Op) []Op {
	var out []Op
	for _, op := range ops {
		if op.Kind.Mutates() {
			out = append(out, op)
		}
	}
	return out
}

// Strings renders ops one per entry, for diffs.
func Strings(ops []Op) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.String()
	}
	return out
}
