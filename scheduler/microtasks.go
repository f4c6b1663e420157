package scheduler

// Deferrer runs fn at the end of the current synchronous turn of the host
// loop, never re-entrantly from Defer itself.
type Deferrer interface {
	Defer(fn func())
}

type DeferFunc func(fn func())

func (f DeferFunc) Defer(fn func()) {
	f(fn)
}

// Microtasks is a FIFO of deferred callbacks. The owning loop calls Drain
// once its synchronous work is done.
type Microtasks struct {
	tasks []func()
}

func (m *Microtasks) Defer(fn func()) {
	m.tasks = append(m.tasks, fn)
}

func (m *Microtasks) Len() int {
	return len(m.tasks)
}

// Drain runs queued callbacks, including ones deferred while draining, until
// none remain. It returns how many ran.
func (m *Microtasks) Drain() int {
	ran := 0
	for len(m.tasks) > 0 {
		fn := m.tasks[0]
		m.tasks[0] = nil
		m.tasks = m.tasks[1:]
		fn()
		ran++
	}
	m.tasks = nil
	return ran
}
