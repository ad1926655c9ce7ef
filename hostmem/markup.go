package hostmem

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	qt "github.com/valyala/quicktemplate"
)

// Markup renders the container's children.
func (h *Host) Markup() string {
	var buf bytes.Buffer
	h.WriteMarkup(&buf)
	return buf.String()
}

// WriteMarkup writes every child of the container as markup. Props are
// written in key order; func values are skipped and hidden nodes carry a
// bare hidden attribute.
func (h *Host) WriteMarkup(w io.Writer) {
	qw := qt.AcquireWriter(w)
	defer qt.ReleaseWriter(qw)
	for _, c := range h.root.Children {
		writeNode(qw, c)
	}
}

// Fingerprint identifies the current markup.
func (h *Host) Fingerprint() uint64 {
	return xxhash.Sum64String(h.Markup())
}

// NodeMarkup renders a single subtree.
func NodeMarkup(n *Node) string {
	var buf bytes.Buffer
	qw := qt.AcquireWriter(&buf)
	writeNode(qw, n)
	qt.ReleaseWriter(qw)
	return buf.String()
}

func writeNode(qw *qt.Writer, n *Node) {
	if n.IsText {
		if n.Hidden {
			qw.N().S(`<!--hidden:`)
			qw.E().S(n.Text)
			qw.N().S(`-->`)
			return
		}
		qw.E().S(n.Text)
		return
	}

	qw.N().S("<")
	qw.N().S(n.Type)
	keys := make([]string, 0, len(n.Props))
	for k, v := range n.Props {
		if isFunc(v) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		qw.N().S(" ")
		qw.N().S(k)
		qw.N().S(`="`)
		qw.E().S(propString(n.Props[k]))
		qw.N().S(`"`)
	}
	if n.Hidden {
		qw.N().S(" hidden")
	}
	qw.N().S(">")
	for _, c := range n.Children {
		writeNode(qw, c)
	}
	qw.N().S("</")
	qw.N().S(n.Type)
	qw.N().S(">")
}

func propString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, " ")
	default:
		return fmt.Sprint(v)
	}
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
