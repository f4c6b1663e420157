package reactivity

import (
	"maps"
	"slices"
)

// Target is a plain value that can be wrapped by a Proxy. Only *Record and
// *List implement it. Identity is pointer identity.
type Target interface {
	get(key Key) (value any, ok bool)
	has(key Key) bool
	set(key Key, value any) bool
}

// Record is a plain object: string keyed fields kept in insertion order.
type Record struct {
	keys   []string
	fields map[string]any
}

// NewRecord copies fields into a new record. Keys are ordered
// lexically since map iteration order is not stable.
func NewRecord(fields map[string]any) *Record {
	r := &Record{fields: make(map[string]any, len(fields))}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		r.SetField(k, fields[k])
	}
	return r
}

func (r *Record) Field(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

func (r *Record) SetField(key string, value any) {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
}

func (r *Record) HasField(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	return slices.Clone(r.keys)
}

func (r *Record) Len() int {
	return len(r.keys)
}

func (r *Record) get(key Key) (any, bool) {
	k, ok := key.(string)
	if !ok {
		return nil, false
	}
	return r.Field(k)
}

func (r *Record) has(key Key) bool {
	k, ok := key.(string)
	return ok && r.HasField(k)
}

func (r *Record) set(key Key, value any) bool {
	k, ok := key.(string)
	if !ok {
		return false
	}
	r.SetField(k, value)
	return true
}

// List is a plain sequence. Writing past the end grows it, filling the gap
// with nil.
type List struct {
	items []any
}

func NewList(items ...any) *List {
	return &List{items: slices.Clone(items)}
}

func (l *List) Len() int {
	return len(l.items)
}

// At returns nil for indices outside [0, Len()).
func (l *List) At(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

func (l *List) SetAt(i int, value any) {
	if i < 0 {
		return
	}
	if i >= len(l.items) {
		l.SetLen(i + 1)
	}
	l.items[i] = value
}

func (l *List) SetLen(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(l.items) {
		clear(l.items[n:])
		l.items = l.items[:n]
		return
	}
	l.items = append(l.items, make([]any, n-len(l.items))...)
}

func (l *List) Items() []any {
	return slices.Clone(l.items)
}

func (l *List) get(key Key) (any, bool) {
	if key == LengthKey {
		return len(l.items), true
	}
	i, ok := key.(int)
	if !ok || i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

func (l *List) has(key Key) bool {
	if key == LengthKey {
		return true
	}
	i, ok := key.(int)
	return ok && i >= 0 && i < len(l.items)
}

func (l *List) set(key Key, value any) bool {
	if key == LengthKey {
		n, ok := value.(int)
		if !ok {
			return false
		}
		l.SetLen(n)
		return true
	}
	i, ok := key.(int)
	if !ok || i < 0 {
		return false
	}
	l.SetAt(i, value)
	return true
}
