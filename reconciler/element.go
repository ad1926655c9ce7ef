package reconciler

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Props are the inputs of an element. Child descriptions live under
// ChildrenKey.
type Props = map[string]any

const ChildrenKey = "children"

// Element describes one desired node.
//
// Type is a host tag (string), a *Component, a context provider created by
// Context.Provider, or one of the Fragment / Suspense markers. Key keeps
// identity across reorders; the empty key means "match by position".
// Ref is a *RefObject or a func(any) that receives the host instance.
type Element struct {
	Type  any
	Key   string
	Ref   any
	Props Props
}

// Component is a function component. Returning a *SuspendError (usually via
// Use) suspends the nearest boundary. Any other error fails the render.
type Component struct {
	Name   string
	Render func(h *Hooks, props Props) (any, error)
}

// Define names a component function.
func Define(name string, render func(h *Hooks, props Props) (any, error)) *Component {
	return &Component{Name: name, Render: render}
}

func (c *Component) String() string {
	if c == nil || c.Name == "" {
		return "anonymous"
	}
	return c.Name
}

type marker uint8

const (
	fragmentMarker marker = iota + 1
	suspenseMarker
)

var (
	// FragmentType groups children without a host node.
	FragmentType any = fragmentMarker
	// SuspenseType shows Props["fallback"] while its children are suspended.
	SuspenseType any = suspenseMarker
)

// H builds an element. A single child is stored as is, several as []any.
func H(typ any, props Props, children ...any) *Element {
	p := make(Props, len(props)+1)
	for k, v := range props {
		p[k] = v
	}
	switch len(children) {
	case 0:
	case 1:
		p[ChildrenKey] = children[0]
	default:
		p[ChildrenKey] = children
	}
	el := &Element{Type: typ, Props: p}
	if k, ok := p["key"]; ok {
		if k != nil {
			el.Key = fmt.Sprint(k)
		}
		delete(p, "key")
	}
	if r, ok := p["ref"]; ok {
		el.Ref = r
		delete(p, "ref")
	}
	return el
}

// Keyed sets the key and returns el.
func (el *Element) Keyed(key string) *Element {
	el.Key = key
	return el
}

func (el *Element) WithRef(ref any) *Element {
	el.Ref = ref
	return el
}

func Frag(children ...any) *Element {
	return H(FragmentType, nil, children...)
}

func Suspense(fallback any, children ...any) *Element {
	return H(SuspenseType, Props{"fallback": fallback}, children...)
}

func checkRef(ref any) error {
	switch ref.(type) {
	case nil, *RefObject, func(any):
		return nil
	}
	return fmt.Errorf("%w, got %T", ErrInvalidRef, ref)
}

// kindOf classifies an element type.
func kindOf(typ any) (Kind, error) {
	switch t := typ.(type) {
	case string:
		return HostComponent, nil
	case *Component:
		if t == nil || t.Render == nil {
			return 0, fmt.Errorf("%w: nil component", ErrInvalidChild)
		}
		return FunctionComponent, nil
	case *contextCore:
		return ContextProvider, nil
	case marker:
		switch t {
		case fragmentMarker:
			return Fragment, nil
		case suspenseMarker:
			return SuspenseBoundary, nil
		}
	}
	return 0, fmt.Errorf("%w: element type %T", ErrInvalidChild, typ)
}

// textOf reports whether a child description renders as text.
func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(t), true
	}
	return "", false
}

// is compares with identity semantics: == for comparable values, pointer
// identity for maps and slices, closure identity for funcs.
func is(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Func:
		return funcIdentity(a) == funcIdentity(b)
	case reflect.Map, reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}

// funcIdentity returns the closure a func value points at. Value.Pointer
// reports the code pointer instead, which every closure built from one
// literal shares whatever it captured.
func funcIdentity(v any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&v))[1]
}

func sameProps(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// hostPropsEqual is a shallow compare ignoring children.
func hostPropsEqual(a, b Props) bool {
	n := 0
	for k, av := range a {
		if k == ChildrenKey {
			continue
		}
		n++
		bv, ok := b[k]
		if !ok || !is(av, bv) {
			return false
		}
	}
	for k := range b {
		if k != ChildrenKey {
			n--
		}
	}
	return n == 0
}

// hostProps strips children before props reach the host.
func hostProps(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		if k != ChildrenKey {
			out[k] = v
		}
	}
	return out
}

// Text formats a text child.
func Text(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
