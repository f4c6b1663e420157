package memhost

import (
	"bytes"
	"io"
	"maps"
	"slices"

	"github.com/valyala/quicktemplate"
)

// WriteHTML serialises the subtree rooted at n. Text and attribute values are
// escaped; nil and false attributes are omitted and true renders bare.
func (n *Node) WriteHTML(w io.Writer) {
	qw := quicktemplate.AcquireWriter(w)
	defer quicktemplate.ReleaseWriter(qw)
	n.streamHTML(qw)
}

func (n *Node) HTML() string {
	buf := &bytes.Buffer{}
	n.WriteHTML(buf)
	return buf.String()
}

// InnerHTML serialises only the children of n.
func (n *Node) InnerHTML() string {
	buf := &bytes.Buffer{}
	qw := quicktemplate.AcquireWriter(buf)
	for _, c := range n.Children {
		c.streamHTML(qw)
	}
	quicktemplate.ReleaseWriter(qw)
	return buf.String()
}

func (n *Node) streamHTML(qw *quicktemplate.Writer) {
	if n.IsText() {
		qw.E().S(n.Text)
		return
	}

	qw.N().S("<")
	qw.N().S(n.Type)
	for _, key := range slices.Sorted(maps.Keys(n.Attrs)) {
		switch v := n.Attrs[key].(type) {
		case nil:
		case bool:
			if v {
				qw.N().S(" ")
				qw.N().S(key)
			}
		case string:
			qw.N().S(" ")
			qw.N().S(key)
			qw.N().S(`="`)
			qw.E().S(v)
			qw.N().S(`"`)
		default:
			qw.N().S(" ")
			qw.N().S(key)
			qw.N().S(`="`)
			qw.E().V(v)
			qw.N().S(`"`)
		}
	}
	qw.N().S(">")
	for _, c := range n.Children {
		c.streamHTML(qw)
	}
	qw.N().S("</")
	qw.N().S(n.Type)
	qw.N().S(">")
}
