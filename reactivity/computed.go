package reactivity

type ComputedOptions[T any] struct {
	Get func() T
	Set func(value T)
}

// Computed caches the result of a getter. A change to anything the getter
// read only marks it dirty and notifies its readers; the getter runs again on
// the next Value call.
type Computed[T any] struct {
	rs     *ReactiveSystem
	effect *ReactiveEffect
	getter func() T
	setter func(value T)
	value  T
	dirty  bool
}

func NewComputed[T any](rs *ReactiveSystem, getter func() T) *Computed[T] {
	return NewWritableComputed(rs, ComputedOptions[T]{Get: getter})
}

func NewWritableComputed[T any](rs *ReactiveSystem, opts ComputedOptions[T]) *Computed[T] {
	c := &Computed[T]{
		rs:     rs,
		getter: opts.Get,
		setter: opts.Set,
		dirty:  true,
	}
	// lazy effects never return an error from creation
	c.effect, _ = NewEffect(rs, func() error {
		c.value = c.getter()
		c.dirty = false
		return nil
	}, EffectOptions{
		Lazy: true,
		Scheduler: func(*ReactiveEffect) {
			if !c.dirty {
				c.dirty = true
				c.rs.Trigger(c, TriggerSet, ValueKey, nil)
			}
		},
	})
	return c
}

func (c *Computed[T]) isRef() {}

func (c *Computed[T]) Value() T {
	// a read from inside the getter finds the effect running and leaves the
	// value dirty
	if c.dirty {
		if err := c.effect.Run(); err != nil {
			c.rs.reportError(c.effect, err)
		}
	}
	c.rs.Track(c, ValueKey)
	return c.value
}

// SetValue hands value to the setter. The cached value is not touched.
func (c *Computed[T]) SetValue(value T) {
	if c.setter == nil {
		c.rs.logger.Warn("write to computed without setter ignored")
		return
	}
	c.setter(value)
}

func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

func (c *Computed[T]) Effect() *ReactiveEffect {
	return c.effect
}
