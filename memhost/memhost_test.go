package memhost_test

import (
	"testing"

	"github.com/delaneyj/proxyparty/memhost"
	"github.com/delaneyj/proxyparty/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertBefore(t *testing.T) {
	h := memhost.New()
	root := memhost.NewNode("ul")
	a := h.CreateNode("li").(*memhost.Node)
	b := h.CreateNode("li").(*memhost.Node)
	c := h.CreateNode("li").(*memhost.Node)

	h.InsertBefore(a, root, nil)
	h.InsertBefore(c, root, nil)
	h.InsertBefore(b, root, c)
	assert.Equal(t, []*memhost.Node{a, b, c}, root.Children)

	// moving an attached node detaches it first
	h.InsertBefore(c, root, a)
	assert.Equal(t, []*memhost.Node{c, a, b}, root.Children)
	assert.Same(t, root, c.Parent)

	assert.Equal(t, a, h.NextSibling(c))
	assert.Nil(t, h.NextSibling(b))

	h.Remove(a)
	assert.Equal(t, []*memhost.Node{c, b}, root.Children)
	assert.Nil(t, a.Parent)

	assert.Equal(t, 3, h.Count(memhost.OpCreate))
	assert.Equal(t, 4, h.Count(memhost.OpInsert))
	assert.Equal(t, 1, h.Count(memhost.OpRemove))

	h.ResetOps()
	assert.Empty(t, h.Ops())
}

func TestSetText(t *testing.T) {
	h := memhost.New()
	p := memhost.NewNode("p")
	h.InsertBefore(h.CreateNode("b"), p, nil)

	h.SetText(p, "hello")
	require.Len(t, p.Children, 1)
	assert.True(t, p.Children[0].IsText())
	assert.Equal(t, "hello", p.TextContent())

	h.SetText(p, "")
	assert.Empty(t, p.Children)

	txt := h.CreateNode(renderer.Text)
	h.SetText(txt, "raw")
	assert.Equal(t, "raw", txt.(*memhost.Node).Text)
}

func TestPatchAttribute(t *testing.T) {
	h := memhost.New()
	n := memhost.NewNode("input")

	h.PatchAttribute(n, "value", nil, "x")
	h.PatchAttribute(n, "disabled", nil, true)
	assert.Equal(t, map[string]any{"value": "x", "disabled": true}, n.Attrs)

	h.PatchAttribute(n, "value", "x", nil)
	assert.Equal(t, map[string]any{"disabled": true}, n.Attrs)

	ops := h.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, memhost.OpPatchAttribute, ops[2].Kind)
	assert.Equal(t, "value", ops[2].Key)
	assert.Nil(t, ops[2].Value)
}

func TestHTML(t *testing.T) {
	h := memhost.New()
	root := memhost.NewNode("div")
	a := h.CreateNode("a").(*memhost.Node)
	h.PatchAttribute(a, "href", nil, `/x?a=1&b="2"`)
	h.PatchAttribute(a, "hidden", nil, true)
	h.PatchAttribute(a, "draggable", nil, false)
	h.PatchAttribute(a, "tabindex", nil, 3)
	h.SetText(a, "<click>")
	h.InsertBefore(a, root, nil)

	want := `<div><a hidden href="/x?a=1&amp;b=&quot;2&quot;" tabindex="3">&lt;click&gt;</a></div>`
	assert.Equal(t, want, root.HTML())
	assert.Equal(t, `<a hidden href="/x?a=1&amp;b=&quot;2&quot;" tabindex="3">&lt;click&gt;</a>`, root.InnerHTML())
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "patchAttribute", memhost.OpPatchAttribute.String())
	assert.Equal(t, "OpKind(42)", memhost.OpKind(42).String())
}
