package reactivity

type ErrFn func() error

// Scheduler is called instead of running an effect when the effect is
// triggered. It decides when, and whether, the effect runs.
type Scheduler func(e *ReactiveEffect)

type EffectOptions struct {
	// Lazy skips the run on creation; the caller runs the effect first.
	Lazy bool
	// Scheduler, when set, receives the effect on every trigger.
	Scheduler Scheduler
}

// ReactiveEffect is a re-runnable computation. Reads of reactive state made
// while it runs subscribe it to that state.
type ReactiveEffect struct {
	rs        *ReactiveSystem
	id        uint64
	fn        ErrFn
	scheduler Scheduler
	lazy      bool
}

// Effect creates an effect and runs it immediately.
func Effect(rs *ReactiveSystem, fn ErrFn) (*ReactiveEffect, error) {
	return NewEffect(rs, fn, EffectOptions{})
}

func NewEffect(rs *ReactiveSystem, fn ErrFn, opts EffectOptions) (*ReactiveEffect, error) {
	e := &ReactiveEffect{
		rs:        rs,
		id:        rs.nextID,
		fn:        fn,
		scheduler: opts.Scheduler,
		lazy:      opts.Lazy,
	}
	rs.nextID++

	if !e.lazy {
		if err := e.Run(); err != nil {
			return e, err
		}
	}
	return e, nil
}

// Run executes the effect with it as the active effect. A call made while the
// same effect is already executing further up the stack does nothing.
func (e *ReactiveEffect) Run() error {
	rs := e.rs
	if rs.isRunning(e) {
		return nil
	}
	prev := rs.push(e)
	defer rs.pop(prev)
	return e.fn()
}

// ID is the creation sequence number, used to order batched runs.
func (e *ReactiveEffect) ID() uint64 {
	return e.id
}

func (e *ReactiveEffect) Raw() ErrFn {
	return e.fn
}

func (e *ReactiveEffect) Scheduler() Scheduler {
	return e.scheduler
}

func (e *ReactiveEffect) Lazy() bool {
	return e.lazy
}
