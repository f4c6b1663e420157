package renderer

import (
	"fmt"
	"strings"
)

// Text is the node type of text nodes.
const Text = "#text"

type Props map[string]any

type Shape uint8

const (
	ShapeElement Shape = 1 << iota
	ShapeTextChildren
	ShapeArrayChildren
)

// VNode describes one node of the tree to render. El is the host node it was
// last rendered to.
type VNode struct {
	Type     string
	Key      any
	Props    Props
	Children []*VNode
	// Text is the content of a text node, or the text children of an element
	// shaped ShapeTextChildren.
	Text  string
	Shape Shape
	El    any
}

// H builds an element. A single string child becomes the element's text;
// otherwise strings and other scalars become text nodes and nil children are
// dropped. The "key" prop sets the reconciliation key.
func H(typ string, props Props, children ...any) *VNode {
	v := &VNode{
		Type:  typ,
		Props: props,
		Shape: ShapeElement,
	}
	if key, ok := props["key"]; ok {
		v.Key = key
	}

	if len(children) == 1 {
		if s, ok := children[0].(string); ok {
			v.Text = s
			v.Shape |= ShapeTextChildren
			return v
		}
	}
	for _, c := range children {
		switch c := c.(type) {
		case nil:
		case *VNode:
			if c != nil {
				v.Children = append(v.Children, c)
			}
		case []*VNode:
			v.Children = append(v.Children, c...)
		case string:
			v.Children = append(v.Children, TextNode(c))
		default:
			v.Children = append(v.Children, TextNode(fmt.Sprint(c)))
		}
	}
	if len(v.Children) > 0 {
		v.Shape |= ShapeArrayChildren
	}
	return v
}

func TextNode(s string) *VNode {
	return &VNode{Type: Text, Text: s}
}

func (v *VNode) ItemKey() any {
	return v.Key
}

func (v *VNode) ItemType() any {
	return v.Type
}

func (v *VNode) IsText() bool {
	return v.Type == Text
}

func (v *VNode) hasTextChildren() bool {
	return v.Shape&ShapeTextChildren != 0
}

func (v *VNode) hasArrayChildren() bool {
	return v.Shape&ShapeArrayChildren != 0
}

func isSameVNode(a, b *VNode) bool {
	return a.Type == b.Type && a.Key == b.Key
}

func (v *VNode) String() string {
	sb := &strings.Builder{}
	v.write(sb)
	return sb.String()
}

func (v *VNode) write(sb *strings.Builder) {
	if v.IsText() {
		fmt.Fprintf(sb, "%q", v.Text)
		return
	}
	sb.WriteString(v.Type)
	if v.Key != nil {
		fmt.Fprintf(sb, "#%v", v.Key)
	}
	switch {
	case v.hasTextChildren():
		fmt.Fprintf(sb, "(%q)", v.Text)
	case v.hasArrayChildren():
		sb.WriteByte('(')
		for i, c := range v.Children {
			if i > 0 {
				sb.WriteByte(' ')
			}
			c.write(sb)
		}
		sb.WriteByte(')')
	}
}
