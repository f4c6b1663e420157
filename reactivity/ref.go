package reactivity

// Readable is anything with a tracked value: Ref, ObjectRef and Computed.
type Readable[T any] interface {
	Value() T
}

type refMarker interface {
	isRef()
}

// IsRef reports whether v is a Ref, ObjectRef or Computed.
func IsRef(v any) bool {
	_, ok := v.(refMarker)
	return ok
}

// Unref returns the value of a Readable[T], or v itself when it is a T.
func Unref[T any](v any) T {
	switch x := v.(type) {
	case Readable[T]:
		return x.Value()
	case T:
		return x
	}
	var zero T
	return zero
}

// Ref is a single reactive cell. A Target stored in a deep Ref[any] is
// handed out wrapped in a reactive proxy.
type Ref[T any] struct {
	rs       *ReactiveSystem
	rawValue T
	value    T
	shallow  bool
}

func NewRef[T any](rs *ReactiveSystem, value T) *Ref[T] {
	return createRef(rs, value, false)
}

// NewShallowRef tracks only replacement of the whole value.
func NewShallowRef[T any](rs *ReactiveSystem, value T) *Ref[T] {
	return createRef(rs, value, true)
}

func createRef[T any](rs *ReactiveSystem, value T, shallow bool) *Ref[T] {
	r := &Ref[T]{rs: rs, shallow: shallow}
	r.rawValue = rawOf(value)
	if shallow {
		r.value = value
	} else {
		r.value = convert(rs, r.rawValue)
	}
	return r
}

func (r *Ref[T]) isRef() {}

func (r *Ref[T]) Value() T {
	r.rs.Track(r, ValueKey)
	return r.value
}

func (r *Ref[T]) SetValue(newValue T) {
	raw := rawOf(newValue)
	if !hasChanged(r.rawValue, raw) {
		return
	}
	r.rawValue = raw
	if r.shallow {
		r.value = newValue
	} else {
		r.value = convert(r.rs, raw)
	}
	r.rs.Trigger(r, TriggerSet, ValueKey, newValue)
}

// Peek returns the value without tracking.
func (r *Ref[T]) Peek() T {
	return r.value
}

func rawOf[T any](v T) T {
	if raw, ok := ToRaw(v).(T); ok {
		return raw
	}
	return v
}

func convert[T any](rs *ReactiveSystem, v T) T {
	t, ok := any(v).(Target)
	if !ok {
		return v
	}
	if p, ok := any(Reactive(rs, t)).(T); ok {
		return p
	}
	return v
}

// ObjectRef forwards to one key of a proxy. It does no tracking of its own;
// the proxy tracks and triggers.
type ObjectRef struct {
	proxy *Proxy
	key   Key
}

func ToRef(p *Proxy, key Key) *ObjectRef {
	return &ObjectRef{proxy: p, key: key}
}

// ToRefs returns an ObjectRef for every field of a record or index of a list.
func ToRefs(p *Proxy) map[Key]*ObjectRef {
	keys := p.Keys()
	refs := make(map[Key]*ObjectRef, len(keys))
	for _, k := range keys {
		refs[k] = ToRef(p, k)
	}
	return refs
}

func (r *ObjectRef) isRef() {}

func (r *ObjectRef) Key() Key {
	return r.key
}

func (r *ObjectRef) Value() any {
	return r.proxy.Get(r.key)
}

func (r *ObjectRef) SetValue(v any) bool {
	return r.proxy.Set(r.key, v)
}
