// Package memhost is an in-memory renderer.Host. It keeps a plain node tree
// and logs every mutation, which makes renders easy to assert on.
package memhost

import (
	"fmt"
	"slices"

	"github.com/delaneyj/proxyparty/renderer"
)

type Node struct {
	Type     string
	Text     string
	Attrs    map[string]any
	Parent   *Node
	Children []*Node
}

func NewNode(typ string) *Node {
	return &Node{Type: typ}
}

func (n *Node) IsText() bool {
	return n.Type == renderer.Text
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	s := ""
	for _, c := range n.Children {
		s += c.TextContent()
	}
	return s
}

func (n *Node) detach() {
	p := n.Parent
	if p == nil {
		return
	}
	if i := slices.Index(p.Children, n); i >= 0 {
		p.Children = slices.Delete(p.Children, i, i+1)
	}
	n.Parent = nil
}

type OpKind int

const (
	OpCreate OpKind = iota
	OpInsert
	OpRemove
	OpSetText
	OpPatchAttribute
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpSetText:
		return "setText"
	case OpPatchAttribute:
		return "patchAttribute"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

type Op struct {
	Kind   OpKind
	Node   *Node
	Parent *Node
	Anchor *Node
	Key    string
	Value  any
}

type Host struct {
	ops []Op
}

func New() *Host {
	return &Host{}
}

func (h *Host) Ops() []Op {
	return h.ops
}

func (h *Host) ResetOps() {
	h.ops = nil
}

func (h *Host) Count(kind OpKind) int {
	n := 0
	for _, op := range h.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (h *Host) log(op Op) {
	h.ops = append(h.ops, op)
}

func asNode(v any) *Node {
	n, _ := v.(*Node)
	return n
}

func (h *Host) CreateNode(typ string) any {
	n := NewNode(typ)
	h.log(Op{Kind: OpCreate, Node: n, Value: typ})
	return n
}

func (h *Host) Remove(node any) {
	n := asNode(node)
	if n == nil {
		return
	}
	h.log(Op{Kind: OpRemove, Node: n, Parent: n.Parent})
	n.detach()
}

// InsertBefore moves node under parent, before anchor or at the end when
// anchor is nil or not a child of parent.
func (h *Host) InsertBefore(node, parent, anchor any) {
	n, p, a := asNode(node), asNode(parent), asNode(anchor)
	h.log(Op{Kind: OpInsert, Node: n, Parent: p, Anchor: a})
	n.detach()
	n.Parent = p
	i := -1
	if a != nil {
		i = slices.Index(p.Children, a)
	}
	if i < 0 {
		p.Children = append(p.Children, n)
		return
	}
	p.Children = slices.Insert(p.Children, i, n)
}

// SetText sets the content of a text node. On an element it replaces all
// children with a single text node, or none for the empty string.
func (h *Host) SetText(node any, text string) {
	n := asNode(node)
	h.log(Op{Kind: OpSetText, Node: n, Value: text})
	if n.IsText() {
		n.Text = text
		return
	}
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	if text != "" {
		n.Children = []*Node{{Type: renderer.Text, Text: text, Parent: n}}
	}
}

func (h *Host) NextSibling(node any) any {
	n := asNode(node)
	if n == nil || n.Parent == nil {
		return nil
	}
	siblings := n.Parent.Children
	i := slices.Index(siblings, n)
	if i < 0 || i+1 >= len(siblings) {
		return nil
	}
	return siblings[i+1]
}

// PatchAttribute sets key to next, removing it when next is nil.
func (h *Host) PatchAttribute(node any, key string, prev, next any) {
	n := asNode(node)
	h.log(Op{Kind: OpPatchAttribute, Node: n, Key: key, Value: next})
	if next == nil {
		delete(n.Attrs, key)
		return
	}
	if n.Attrs == nil {
		n.Attrs = map[string]any{}
	}
	n.Attrs[key] = next
}
