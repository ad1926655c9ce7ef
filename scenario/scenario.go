// Package scenario describes a series of renders as YAML and replays them
// against the in memory host.
//
// A scenario file looks like:
//
//	name: reorder
//	steps:
//	  - render:
//	      type: ul
//	      children:
//	        - {type: li, key: a, text: A}
//	        - {type: li, key: b, text: B}
//	  - lane: transition
//	    render:
//	      type: ul
//	      children:
//	        - {type: li, key: b, text: B}
//	        - {type: li, key: a, text: A}
//
// A node with no type is a text node. The type "fragment" groups children
// without a host node.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/delaneyj/fiberparty/reconciler"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure of Load.
var ErrInvalid = errors.New("invalid scenario")

const FragmentType = "fragment"

type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

type Step struct {
	// Lane names the update lane, see reconciler.ParseLane. Empty is sync.
	Lane   string `yaml:"lane,omitempty"`
	Render *Node  `yaml:"render"`
}

// Node is one element of a rendered tree.
type Node struct {
	Type     string         `yaml:"type,omitempty"`
	Key      string         `yaml:"key,omitempty"`
	Props    map[string]any `yaml:"props,omitempty"`
	Text     string         `yaml:"text,omitempty"`
	Children []*Node        `yaml:"children,omitempty"`
}

// Load decodes and validates one scenario.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalid)
	}
	for i, st := range s.Steps {
		if _, err := st.lane(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if st.Render == nil {
			return fmt.Errorf("%w: step %d renders nothing", ErrInvalid, i)
		}
		if err := st.Render.validate("render"); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (st Step) lane() (reconciler.Lane, error) {
	if st.Lane == "" {
		return reconciler.SyncLane, nil
	}
	lane, ok := reconciler.ParseLane(st.Lane)
	if !ok {
		return reconciler.NoLane, fmt.Errorf("%w: unknown lane %q", ErrInvalid, st.Lane)
	}
	return lane, nil
}

func (n *Node) validate(path string) error {
	if n == nil {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, path)
	}
	if n.Type == "" {
		if n.Key != "" || len(n.Props) > 0 || len(n.Children) > 0 {
			return fmt.Errorf("%w: %s: text nodes take no key, props or children", ErrInvalid, path)
		}
		return nil
	}
	if n.Type == FragmentType && len(n.Props) > 0 {
		return fmt.Errorf("%w: %s: fragments take no props", ErrInvalid, path)
	}
	for k, v := range n.Props {
		switch k {
		case reconciler.ChildrenKey, "key", "ref":
			return fmt.Errorf("%w: %s: reserved prop %q", ErrInvalid, path, k)
		}
		// props are compared by identity, so only scalars diff sensibly
		switch v.(type) {
		case nil, string, bool, int, int64, uint64, float64:
		default:
			return fmt.Errorf("%w: %s: prop %q is not a scalar", ErrInvalid, path, k)
		}
	}
	for i, c := range n.Children {
		if err := c.validate(fmt.Sprintf("%s/%s[%d]", path, n.Type, i)); err != nil {
			return err
		}
	}
	return nil
}

// Element converts n into the description the reconciler renders.
func (n *Node) Element() any {
	if n.Type == "" {
		return n.Text
	}
	children := make([]any, 0, len(n.Children)+1)
	if n.Text != "" {
		children = append(children, n.Text)
	}
	for _, c := range n.Children {
		children = append(children, c.Element())
	}

	var typ any = n.Type
	if n.Type == FragmentType {
		typ = reconciler.FragmentType
	}
	el := reconciler.H(typ, n.Props, children...)
	if n.Key != "" {
		el.Keyed(n.Key)
	}
	return el
}
