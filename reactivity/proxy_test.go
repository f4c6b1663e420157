package reactivity_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/proxyparty/reactivity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should hand out one proxy per target and access mode
func TestProxyIdentity(t *testing.T) {
	rs := newSystem(t)
	raw := reactivity.NewRecord(map[string]any{"a": 1})

	assert.Same(t, reactivity.Reactive(rs, raw), reactivity.Reactive(rs, raw))
	assert.Same(t, reactivity.Readonly(rs, raw), reactivity.Readonly(rs, raw))
	assert.NotSame(t, reactivity.Reactive(rs, raw), reactivity.Readonly(rs, raw))

	assert.True(t, reactivity.IsReactive(reactivity.Reactive(rs, raw)))
	assert.False(t, reactivity.IsReactive(reactivity.Readonly(rs, raw)))
	assert.True(t, reactivity.IsReadonly(reactivity.Readonly(rs, raw)))
	assert.False(t, reactivity.IsReactive(raw))
	assert.Equal(t, raw, reactivity.ToRaw(reactivity.Reactive(rs, raw)))
	assert.Equal(t, 3, reactivity.ToRaw(3))
}

// should wrap nested targets only when they are read
func TestProxyLazyNesting(t *testing.T) {
	rs := newSystem(t)
	inner := reactivity.NewRecord(map[string]any{"b": 1})
	outer := reactivity.NewRecord(map[string]any{"a": inner})
	state := reactivity.Reactive(rs, outer)

	raw, _ := outer.Field("a")
	assert.Same(t, inner, raw)

	nested, ok := state.Get("a").(*reactivity.Proxy)
	require.True(t, ok)
	assert.Same(t, nested, state.Get("a"))
	assert.Same(t, reactivity.Reactive(rs, inner), nested)

	runs := 0
	reactivity.Effect(rs, func() error {
		runs++
		state.Get("a").(*reactivity.Proxy).Get("b")
		return nil
	})
	nested.Set("b", 2)
	assert.Equal(t, 2, runs)
}

// should return nested targets raw from shallow proxies
func TestProxyShallow(t *testing.T) {
	rs := newSystem(t)
	inner := reactivity.NewRecord(map[string]any{"b": 1})
	state := reactivity.ShallowReactive(rs, reactivity.NewRecord(map[string]any{"a": inner}))

	assert.Same(t, inner, state.Get("a"))

	runs := 0
	reactivity.Effect(rs, func() error {
		runs++
		state.Get("a").(*reactivity.Record).Field("b")
		return nil
	})
	inner.SetField("b", 2)
	assert.Equal(t, 1, runs)

	state.Set("a", reactivity.NewRecord(nil))
	assert.Equal(t, 2, runs)

	ro := reactivity.ShallowReadonly(rs, reactivity.NewRecord(map[string]any{"a": inner}))
	assert.Same(t, inner, ro.Get("a"))
}

// should drop writes through readonly proxies with a warning
func TestProxyReadonly(t *testing.T) {
	var buf bytes.Buffer
	rs := reactivity.CreateReactiveSystem(reactivity.WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})))
	inner := reactivity.NewRecord(map[string]any{"b": 1})
	raw := reactivity.NewRecord(map[string]any{"a": 1, "inner": inner})
	ro := reactivity.Readonly(rs, raw)

	assert.False(t, ro.Set("a", 2))
	assert.Equal(t, 1, ro.Get("a"))
	assert.Contains(t, buf.String(), "set on readonly target ignored")

	nested, ok := ro.Get("inner").(*reactivity.Proxy)
	require.True(t, ok)
	assert.True(t, reactivity.IsReadonly(nested))
	assert.False(t, nested.Set("b", 2))

	// readonly reads are not tracked
	runs := 0
	reactivity.Effect(rs, func() error {
		runs++
		ro.Get("a")
		return nil
	})
	reactivity.Reactive(rs, raw).Set("a", 5)
	assert.Equal(t, 1, runs)
	assert.Equal(t, 5, ro.Get("a"))
}

// should trigger readers of a key when the key is added
func TestProxyAddTriggers(t *testing.T) {
	rs := newSystem(t)
	state := reactivity.Reactive(rs, reactivity.NewRecord(nil))

	var seen []any
	reactivity.Effect(rs, func() error {
		if state.Has("x") {
			seen = append(seen, state.Get("x"))
		}
		return nil
	})
	assert.Empty(t, seen)

	state.Set("x", nil)
	assert.Equal(t, []any{nil}, seen)
	assert.Equal(t, []reactivity.Key{"x"}, state.Keys())
}

// should store raw targets when a proxy is written
func TestProxySetUnwraps(t *testing.T) {
	rs := newSystem(t)
	child := reactivity.NewRecord(map[string]any{"n": 1})
	raw := reactivity.NewRecord(nil)
	state := reactivity.Reactive(rs, raw)

	state.Set("child", reactivity.Reactive(rs, child))
	stored, _ := raw.Field("child")
	assert.Same(t, child, stored)

	runs := 0
	reactivity.Effect(rs, func() error {
		runs++
		state.Get("child")
		return nil
	})
	state.Set("child", child)
	assert.Equal(t, 1, runs)
}

// should re-run readers of indices that fall outside a shortened list
func TestListLengthTrigger(t *testing.T) {
	testCases := []struct {
		name    string
		newLen  int
		reruns  bool
		initLen int
	}{
		{name: "shrink past read index", newLen: 3, reruns: true, initLen: 10},
		{name: "shrink to read index", newLen: 5, reruns: true, initLen: 10},
		{name: "shrink above read index", newLen: 6, reruns: false, initLen: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rs := newSystem(t)
			items := make([]any, tc.initLen)
			for i := range items {
				items[i] = i
			}
			arr := reactivity.Reactive(rs, reactivity.NewList(items...))

			runs := 0
			reactivity.Effect(rs, func() error {
				runs++
				arr.Get(5)
				return nil
			})

			assert.True(t, arr.SetLen(tc.newLen))
			if tc.reruns {
				assert.Equal(t, 2, runs)
			} else {
				assert.Equal(t, 1, runs)
			}
			assert.Equal(t, tc.newLen, arr.Raw().(*reactivity.List).Len())
		})
	}
}

// should re-run length readers when an index is added
func TestListAppendTriggersLength(t *testing.T) {
	rs := newSystem(t)
	arr := reactivity.Reactive(rs, reactivity.NewList(1, 2))

	var lengths []int
	reactivity.Effect(rs, func() error {
		lengths = append(lengths, arr.Len())
		return nil
	})

	arr.Append(3)
	assert.Equal(t, []int{2, 3}, lengths)

	// overwriting an existing index leaves length readers alone
	arr.Set(0, 10)
	assert.Equal(t, []int{2, 3}, lengths)

	arr.Set(5, 6)
	assert.Equal(t, []int{2, 3, 6}, lengths)
	assert.Equal(t, []any{10, 2, 3, nil, nil, 6}, arr.Raw().(*reactivity.List).Items())
}

// should treat maps and slices by identity
func TestProxyIdentityCompare(t *testing.T) {
	rs := newSystem(t)
	m := map[string]int{"a": 1}
	state := reactivity.Reactive(rs, reactivity.NewRecord(map[string]any{"m": m}))

	runs := 0
	reactivity.Effect(rs, func() error {
		runs++
		state.Get("m")
		return nil
	})

	state.Set("m", m)
	assert.Equal(t, 1, runs)
	state.Set("m", map[string]int{"a": 1})
	assert.Equal(t, 2, runs)
}
