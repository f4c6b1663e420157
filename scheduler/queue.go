// Package scheduler batches triggered effects into a single deferred flush
// that runs them once each, in creation order.
package scheduler

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/proxyparty/reactivity"
)

const DefaultRecursionLimit = 100

var (
	ErrRecursionLimit = errors.New("job re-queued too many times in one flush")
	ErrJobPanic       = errors.New("job panicked")
)

// Job is a unit of deferred work. Jobs are compared by identity, so
// implementations should be pointers. *reactivity.ReactiveEffect is a Job.
type Job interface {
	ID() uint64
	Run() error
}

type Hooks interface {
	OnJob(job Job, err error)
	OnFlush(jobs int, duration time.Duration)
}

type nopHooks struct{}

func (nopHooks) OnJob(Job, error) {}
func (nopHooks) OnFlush(int, time.Duration) {}

type Queue struct {
	jobs         []Job
	index        int
	flushing     bool
	flushPending bool

	deferrer       Deferrer
	hooks          Hooks
	logger         *log.Logger
	onError        func(job Job, err error)
	recursionLimit int
}

type Option func(q *Queue)

func WithDeferrer(d Deferrer) Option {
	return func(q *Queue) {
		q.deferrer = d
	}
}

func WithHooks(h Hooks) Option {
	return func(q *Queue) {
		q.hooks = h
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithOnError receives errors returned by jobs during a flush. Without it
// they are logged.
func WithOnError(fn func(job Job, err error)) Option {
	return func(q *Queue) {
		q.onError = fn
	}
}

// WithRecursionLimit caps how many times one job may run in a single flush.
func WithRecursionLimit(n int) Option {
	return func(q *Queue) {
		q.recursionLimit = n
	}
}

func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		index:          -1,
		hooks:          nopHooks{},
		recursionLimit: DefaultRecursionLimit,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.deferrer == nil {
		q.deferrer = &Microtasks{}
	}
	if q.logger == nil {
		q.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "scheduler",
			Level:  log.WarnLevel,
		})
	}
	return q
}

// Deferrer returns the deferrer flushes are scheduled on.
func (q *Queue) Deferrer() Deferrer {
	return q.deferrer
}

// Scheduler adapts the queue for use as an effect scheduler.
func (q *Queue) Scheduler() reactivity.Scheduler {
	return func(e *reactivity.ReactiveEffect) {
		q.Enqueue(e)
	}
}

// Enqueue adds job unless it is already waiting to run, and schedules a
// flush if none is pending. During a flush a job that has already run may be
// queued again and runs again later in the same flush.
func (q *Queue) Enqueue(job Job) {
	if slices.Contains(q.jobs[q.index+1:], job) {
		return
	}
	q.jobs = append(q.jobs, job)
	if !q.flushPending {
		q.flushPending = true
		q.deferrer.Defer(q.Flush)
	}
}

// Pending is the number of jobs that have not run yet.
func (q *Queue) Pending() int {
	return len(q.jobs) - (q.index + 1)
}

// Flush runs every queued job in ascending id order. Jobs queued while
// flushing are appended and run in the same pass. A panicking job is reported
// as an ErrJobPanic error and the flush carries on with the next job.
func (q *Queue) Flush() {
	q.flushPending = false
	if q.flushing || len(q.jobs) == 0 {
		return
	}
	q.flushing = true
	start := time.Now()
	ran := 0
	defer func() {
		clear(q.jobs)
		q.jobs = q.jobs[:0]
		q.index = -1
		q.flushing = false
		q.hooks.OnFlush(ran, time.Since(start))
	}()

	slices.SortStableFunc(q.jobs, func(a, b Job) int {
		return cmp.Compare(a.ID(), b.ID())
	})

	runs := map[Job]int{}
	for q.index = 0; q.index < len(q.jobs); q.index++ {
		job := q.jobs[q.index]
		runs[job]++
		if runs[job] > q.recursionLimit {
			q.report(job, fmt.Errorf("%w: job %d ran %d times", ErrRecursionLimit, job.ID(), q.recursionLimit))
			continue
		}
		err := runJob(job)
		ran++
		q.hooks.OnJob(job, err)
		if err != nil {
			q.report(job, err)
		}
	}
}

func runJob(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: job %d: %v", ErrJobPanic, job.ID(), r)
		}
	}()
	return job.Run()
}

func (q *Queue) report(job Job, err error) {
	if q.onError != nil {
		q.onError(job, err)
		return
	}
	q.logger.Error("job failed", "job", job.ID(), "err", err)
}
