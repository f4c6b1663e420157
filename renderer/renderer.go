// Package renderer turns VNode trees into host nodes and keeps them in sync
// with later trees, reconciling child lists by key.
package renderer

import (
	"maps"
	"os"
	"reflect"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/proxyparty/reactivity"
	"github.com/delaneyj/proxyparty/reconcile"
	"github.com/delaneyj/proxyparty/scheduler"
)

// Host performs the actual tree mutations. A nil anchor appends.
type Host interface {
	CreateNode(typ string) any
	Remove(node any)
	InsertBefore(node, parent, anchor any)
	SetText(node any, text string)
	NextSibling(node any) any
	PatchAttribute(node any, key string, prev, next any)
}

type Hooks interface {
	// OnPatch reports the structural host edits made by one render.
	OnPatch(edits int, duration time.Duration)
}

type nopHooks struct{}

func (nopHooks) OnPatch(int, time.Duration) {}

type Renderer struct {
	host   Host
	hooks  Hooks
	logger *log.Logger
	roots  map[any]*VNode
	// failed holds the tree of a render that errored part way through
	failed map[any]*VNode
	edits  int
}

type Option func(r *Renderer)

func WithHooks(h Hooks) Option {
	return func(r *Renderer) {
		r.hooks = h
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

func New(host Host, opts ...Option) *Renderer {
	r := &Renderer{
		host:  host,
		hooks: nopHooks{},
		roots:  map[any]*VNode{},
		failed: map[any]*VNode{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "renderer",
			Level:  log.WarnLevel,
		})
	}
	return r
}

// Render makes container hold vnode, patching whatever was rendered there
// before. A nil vnode unmounts the previous tree.
//
// On error the host tree may be partially patched. It stays on screen and
// the previous tree stays current, but the next Render into the same
// container discards those host nodes and mounts from scratch instead of
// diffing against a model that no longer matches the host.
func (r *Renderer) Render(vnode *VNode, container any) error {
	start := time.Now()
	r.edits = 0

	prev := r.roots[container]
	if failed, ok := r.failed[container]; ok {
		r.logger.Debug("remounting after failed render")
		r.discard(prev, failed)
		delete(r.failed, container)
		delete(r.roots, container)
		prev = nil
	}

	switch {
	case vnode == nil && prev != nil:
		r.unmount(prev)
		delete(r.roots, container)
	case vnode != nil:
		if err := r.Patch(prev, vnode, container, nil); err != nil {
			r.failed[container] = vnode
			return err
		}
		r.roots[container] = vnode
	}

	d := time.Since(start)
	r.logger.Debug("render", "edits", r.edits, "took", d)
	r.hooks.OnPatch(r.edits, d)
	return nil
}

// discard removes the root host nodes of the last good tree and of the
// failed one, which may have replaced it.
func (r *Renderer) discard(prev, failed *VNode) {
	if prev != nil && prev.El != nil {
		r.unmount(prev)
	}
	if failed.El != nil && (prev == nil || failed.El != prev.El) {
		r.unmount(failed)
	}
}

// Root returns the tree last rendered into container.
func (r *Renderer) Root(container any) *VNode {
	return r.roots[container]
}

// Mount renders into container from an effect, so the tree is re-rendered
// whenever reactive state read by render changes. Re-renders are queued on q.
func (r *Renderer) Mount(rs *reactivity.ReactiveSystem, q *scheduler.Queue, container any, render func() *VNode) (*reactivity.ReactiveEffect, error) {
	return reactivity.NewEffect(rs, func() error {
		return r.Render(render(), container)
	}, reactivity.EffectOptions{Scheduler: q.Scheduler()})
}

// Patch updates n1's host nodes to match n2, or mounts n2 before anchor when
// n1 is nil or a different node.
func (r *Renderer) Patch(n1, n2 *VNode, container, anchor any) error {
	if n1 == n2 {
		return nil
	}
	if n1 != nil && !isSameVNode(n1, n2) {
		anchor = r.host.NextSibling(n1.El)
		r.unmount(n1)
		n1 = nil
	}

	if n2.IsText() {
		r.processText(n1, n2, container, anchor)
		return nil
	}
	if n1 == nil {
		return r.mountElement(n2, container, anchor)
	}
	return r.patchElement(n1, n2)
}

func (r *Renderer) processText(n1, n2 *VNode, container, anchor any) {
	if n1 == nil {
		n2.El = r.host.CreateNode(Text)
		r.host.SetText(n2.El, n2.Text)
		r.insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n1.Text != n2.Text {
		r.host.SetText(n2.El, n2.Text)
	}
}

func (r *Renderer) mountElement(v *VNode, container, anchor any) error {
	el := r.host.CreateNode(v.Type)
	v.El = el
	for _, key := range sortedProps(v.Props) {
		r.host.PatchAttribute(el, key, nil, v.Props[key])
	}

	switch {
	case v.hasTextChildren():
		r.host.SetText(el, v.Text)
	case v.hasArrayChildren():
		if err := r.mountChildren(v.Children, el); err != nil {
			return err
		}
	}
	r.insert(el, container, anchor)
	return nil
}

func (r *Renderer) mountChildren(children []*VNode, container any) error {
	for _, c := range children {
		if err := r.Patch(nil, c, container, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) patchElement(n1, n2 *VNode) error {
	el := n1.El
	n2.El = el
	r.patchProps(el, n1.Props, n2.Props)
	return r.patchChildren(n1, n2, el)
}

func (r *Renderer) patchProps(el any, prev, next Props) {
	for _, key := range sortedProps(next) {
		old, v := prev[key], next[key]
		if !reflect.DeepEqual(old, v) {
			r.host.PatchAttribute(el, key, old, v)
		}
	}
	for _, key := range sortedProps(prev) {
		if _, ok := next[key]; !ok {
			r.host.PatchAttribute(el, key, prev[key], nil)
		}
	}
}

func (r *Renderer) patchChildren(n1, n2 *VNode, el any) error {
	switch {
	case n2.hasTextChildren():
		if n1.hasArrayChildren() {
			r.unmountChildren(n1.Children)
		}
		if !n1.hasTextChildren() || n1.Text != n2.Text {
			r.host.SetText(el, n2.Text)
		}
	case n1.hasArrayChildren():
		if n2.hasArrayChildren() {
			return r.patchChildList(n1.Children, n2.Children, el)
		}
		r.unmountChildren(n1.Children)
	default:
		if n1.hasTextChildren() {
			r.host.SetText(el, "")
		}
		if n2.hasArrayChildren() {
			return r.mountChildren(n2.Children, el)
		}
	}
	return nil
}

// patchChildList diffs by key when any child on either side carries one and
// by position otherwise.
func (r *Renderer) patchChildList(prev, next []*VNode, el any) error {
	ops := &childOps{r: r, container: el}
	if hasKeys(prev) || hasKeys(next) {
		if err := reconcile.Keyed[*VNode](prev, next, ops); err != nil {
			return err
		}
	} else {
		reconcile.Unkeyed[*VNode](prev, next, ops)
	}
	return ops.err
}

func (r *Renderer) insert(node, container, anchor any) {
	r.host.InsertBefore(node, container, anchor)
	r.edits++
}

func (r *Renderer) unmount(v *VNode) {
	r.host.Remove(v.El)
	r.edits++
}

func (r *Renderer) unmountChildren(children []*VNode) {
	for _, c := range children {
		r.unmount(c)
	}
}

// childOps applies reconcile edits to the host nodes under container. The
// first error stops further patching.
type childOps struct {
	r         *Renderer
	container any
	err       error
}

func (c *childOps) Patch(prev, next *VNode) {
	if c.err == nil {
		c.err = c.r.Patch(prev, next, c.container, nil)
	}
}

func (c *childOps) Insert(next, anchor *VNode) {
	if c.err == nil {
		c.err = c.r.Patch(nil, next, c.container, anchorEl(anchor))
	}
}

func (c *childOps) Move(item, anchor *VNode) {
	c.r.insert(item.El, c.container, anchorEl(anchor))
}

func (c *childOps) Remove(prev *VNode) {
	c.r.unmount(prev)
}

func anchorEl(v *VNode) any {
	if v == nil {
		return nil
	}
	return v.El
}

func hasKeys(children []*VNode) bool {
	return slices.ContainsFunc(children, func(c *VNode) bool {
		return c.Key != nil
	})
}

// sortedProps lists prop names in a stable order, without the key prop.
func sortedProps(props Props) []string {
	keys := slices.Sorted(maps.Keys(props))
	return slices.DeleteFunc(keys, func(k string) bool {
		return k == "key"
	})
}
