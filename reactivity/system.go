// Package reactivity tracks which effects read which (target, key) pairs and
// re-runs exactly those effects when the pairs are written.
package reactivity

import (
	"os"
	"slices"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
)

type OnErrorFunc func(from *ReactiveEffect, err error)

// ReactiveSystem owns every piece of state shared by effects, proxies and
// refs. It is not safe for concurrent use; all reads, writes and effect runs
// happen on the goroutine that owns the system.
type ReactiveSystem struct {
	targets map[any]map[Key]mapset.Set[*ReactiveEffect]

	reactiveCache map[Target]*Proxy
	readonlyCache map[Target]*Proxy

	activeEffect *ReactiveEffect
	effectStack  []*ReactiveEffect
	pauseStack   []*ReactiveEffect

	nextID  uint64
	logger  *log.Logger
	onError OnErrorFunc
}

type Option func(rs *ReactiveSystem)

// WithLogger replaces the default stderr logger used for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(rs *ReactiveSystem) {
		rs.logger = logger
	}
}

// WithOnError receives errors returned by effects that were run by a trigger
// rather than by a caller who could inspect the error.
func WithOnError(fn OnErrorFunc) Option {
	return func(rs *ReactiveSystem) {
		rs.onError = fn
	}
}

func CreateReactiveSystem(opts ...Option) *ReactiveSystem {
	rs := &ReactiveSystem{
		targets:       map[any]map[Key]mapset.Set[*ReactiveEffect]{},
		reactiveCache: map[Target]*Proxy{},
		readonlyCache: map[Target]*Proxy{},
	}
	for _, opt := range opts {
		opt(rs)
	}
	if rs.logger == nil {
		rs.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "reactivity",
			Level:  log.WarnLevel,
		})
	}
	return rs
}

// Reset drops every subscription, cached proxy and in-flight effect frame.
// Effect ids keep increasing so ordering stays total across resets.
func (rs *ReactiveSystem) Reset() {
	clear(rs.targets)
	clear(rs.reactiveCache)
	clear(rs.readonlyCache)
	rs.activeEffect = nil
	rs.effectStack = rs.effectStack[:0]
	rs.pauseStack = rs.pauseStack[:0]
}

// Release evicts target from the subscription store and from both proxy
// caches. Call it when the owner of target is done with it; nothing is
// evicted automatically.
func (rs *ReactiveSystem) Release(target any) {
	delete(rs.targets, target)
	if t, ok := target.(Target); ok {
		delete(rs.reactiveCache, t)
		delete(rs.readonlyCache, t)
	}
}

// Logger returns the diagnostics logger.
func (rs *ReactiveSystem) Logger() *log.Logger {
	return rs.logger
}

// ActiveEffect returns the effect whose reads are currently being tracked.
func (rs *ReactiveSystem) ActiveEffect() *ReactiveEffect {
	return rs.activeEffect
}

func (rs *ReactiveSystem) PauseTracking() {
	rs.pauseStack = append(rs.pauseStack, rs.activeEffect)
	rs.activeEffect = nil
}

func (rs *ReactiveSystem) ResumeTracking() {
	lastIdx := len(rs.pauseStack) - 1
	rs.activeEffect = rs.pauseStack[lastIdx]
	rs.pauseStack = rs.pauseStack[:lastIdx]
}

// Untracked runs fn without registering any of its reads.
func (rs *ReactiveSystem) Untracked(fn func()) {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	fn()
}

func (rs *ReactiveSystem) isRunning(e *ReactiveEffect) bool {
	return slices.Contains(rs.effectStack, e)
}

func (rs *ReactiveSystem) push(e *ReactiveEffect) (prev *ReactiveEffect) {
	prev = rs.activeEffect
	rs.effectStack = append(rs.effectStack, e)
	rs.activeEffect = e
	return prev
}

// pop restores the effect that was active before the matching push. Outside
// of an untracked section that is the new top of the stack.
func (rs *ReactiveSystem) pop(prev *ReactiveEffect) {
	rs.effectStack = rs.effectStack[:len(rs.effectStack)-1]
	rs.activeEffect = prev
}

func (rs *ReactiveSystem) reportError(e *ReactiveEffect, err error) {
	if rs.onError != nil {
		rs.onError(e, err)
		return
	}
	rs.logger.Error("effect failed", "effect", e.id, "err", err)
}
