package reactivity

type Access uint8

const (
	Mutable Access = iota
	ReadOnly
)

type Depth uint8

const (
	Deep Depth = iota
	Shallow
)

// Mode is fixed when a proxy is created and selects its read/write handler.
type Mode struct {
	Access Access
	Depth  Depth
}

var (
	reactiveMode        = Mode{Access: Mutable, Depth: Deep}
	shallowReactiveMode = Mode{Access: Mutable, Depth: Shallow}
	readonlyMode        = Mode{Access: ReadOnly, Depth: Deep}
	shallowReadonlyMode = Mode{Access: ReadOnly, Depth: Shallow}
)

// Proxy wraps a Target. Reads through it are tracked and writes trigger the
// effects that read the written key. Nested targets are wrapped on read.
type Proxy struct {
	rs     *ReactiveSystem
	target Target
	mode   Mode
}

func Reactive(rs *ReactiveSystem, target Target) *Proxy {
	return createReactiveObject(rs, target, reactiveMode)
}

// ShallowReactive tracks and triggers only the top level; nested targets are
// returned raw.
func ShallowReactive(rs *ReactiveSystem, target Target) *Proxy {
	return createReactiveObject(rs, target, shallowReactiveMode)
}

func Readonly(rs *ReactiveSystem, target Target) *Proxy {
	return createReactiveObject(rs, target, readonlyMode)
}

func ShallowReadonly(rs *ReactiveSystem, target Target) *Proxy {
	return createReactiveObject(rs, target, shallowReadonlyMode)
}

// createReactiveObject returns the cached proxy for target if there is one.
// The cache is split by access only, so the first depth requested for a
// target wins.
func createReactiveObject(rs *ReactiveSystem, target Target, mode Mode) *Proxy {
	if target == nil {
		return nil
	}
	cache := rs.reactiveCache
	if mode.Access == ReadOnly {
		cache = rs.readonlyCache
	}
	if existing, ok := cache[target]; ok {
		return existing
	}
	p := &Proxy{rs: rs, target: target, mode: mode}
	cache[target] = p
	return p
}

// wrap converts v to a proxy when it is a target and passes anything else
// through.
func wrap(rs *ReactiveSystem, v any, access Access) any {
	t, ok := v.(Target)
	if !ok {
		return v
	}
	if access == ReadOnly {
		return Readonly(rs, t)
	}
	return Reactive(rs, t)
}

func (p *Proxy) Mode() Mode {
	return p.mode
}

// Raw returns the wrapped target.
func (p *Proxy) Raw() Target {
	return p.target
}

// Get reads key. Record fields use string keys, list items int keys and a
// list's length LengthKey. Missing keys read as nil.
func (p *Proxy) Get(key Key) any {
	res, _ := p.target.get(key)
	if p.mode.Access != ReadOnly {
		p.rs.Track(p.target, key)
	}
	if p.mode.Depth == Shallow {
		return res
	}
	return wrap(p.rs, res, p.mode.Access)
}

// Set writes key and reports whether the write happened. Writes through a
// readonly proxy are dropped with a warning.
func (p *Proxy) Set(key Key, value any) bool {
	if p.mode.Access == ReadOnly {
		p.rs.logger.Warn("set on readonly target ignored", "key", key)
		return false
	}

	value = ToRaw(value)
	oldValue, _ := p.target.get(key)
	hadKey := p.target.has(key)
	if !p.target.set(key, value) {
		return false
	}

	if !hadKey {
		p.rs.Trigger(p.target, TriggerAdd, key, value)
	} else if hasChanged(oldValue, value) {
		p.rs.Trigger(p.target, TriggerSet, key, value)
	}
	return true
}

// Has reports whether key exists and tracks key the same way Get does.
func (p *Proxy) Has(key Key) bool {
	if p.mode.Access != ReadOnly {
		p.rs.Track(p.target, key)
	}
	return p.target.has(key)
}

// Len is the tracked length of a list or the field count of a record.
func (p *Proxy) Len() int {
	switch t := p.target.(type) {
	case *List:
		n, _ := p.Get(LengthKey).(int)
		return n
	case *Record:
		return t.Len()
	default:
		return 0
	}
}

// SetLen truncates or grows a list. Effects that read the length or an index
// that falls outside the new length are triggered.
func (p *Proxy) SetLen(n int) bool {
	if _, ok := p.target.(*List); !ok {
		return false
	}
	return p.Set(LengthKey, n)
}

// Append adds values to the end of a list, triggering an add for each index.
func (p *Proxy) Append(values ...any) bool {
	l, ok := p.target.(*List)
	if !ok {
		return false
	}
	for _, v := range values {
		if !p.Set(l.Len(), v) {
			return false
		}
	}
	return true
}

// Keys returns record field names or list indices. It is not tracked.
func (p *Proxy) Keys() []Key {
	switch t := p.target.(type) {
	case *Record:
		keys := make([]Key, 0, t.Len())
		for _, k := range t.keys {
			keys = append(keys, k)
		}
		return keys
	case *List:
		keys := make([]Key, t.Len())
		for i := range keys {
			keys[i] = i
		}
		return keys
	default:
		return nil
	}
}

func IsReactive(v any) bool {
	p, ok := v.(*Proxy)
	return ok && p.mode.Access == Mutable
}

func IsReadonly(v any) bool {
	p, ok := v.(*Proxy)
	return ok && p.mode.Access == ReadOnly
}

// ToRaw unwraps a proxy to its target; other values are returned unchanged.
func ToRaw(v any) any {
	if p, ok := v.(*Proxy); ok {
		return p.target
	}
	return v
}
