package reactivity

import (
	"cmp"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

type TriggerOp uint8

const (
	TriggerSet TriggerOp = iota // existing key changed value
	TriggerAdd                  // key did not exist before the write
)

func (op TriggerOp) String() string {
	switch op {
	case TriggerSet:
		return "set"
	case TriggerAdd:
		return "add"
	default:
		return "unknown"
	}
}

// Track records that the active effect read key on target.
func (rs *ReactiveSystem) Track(target any, key Key) {
	if rs.activeEffect == nil {
		return
	}
	depsMap, ok := rs.targets[target]
	if !ok {
		depsMap = map[Key]mapset.Set[*ReactiveEffect]{}
		rs.targets[target] = depsMap
	}
	effects, ok := depsMap[key]
	if !ok {
		effects = mapset.NewThreadUnsafeSet[*ReactiveEffect]()
		depsMap[key] = effects
	}
	effects.Add(rs.activeEffect)
}

// Trigger runs, or hands to their schedulers, every effect that read key on
// target. For a length write on a list, newValue is the new length.
func (rs *ReactiveSystem) Trigger(target any, op TriggerOp, key Key, newValue any) {
	depsMap, ok := rs.targets[target]
	if !ok {
		return
	}

	toRun := mapset.NewThreadUnsafeSet[*ReactiveEffect]()
	add := func(effects mapset.Set[*ReactiveEffect]) {
		if effects == nil {
			return
		}
		effects.Each(func(e *ReactiveEffect) bool {
			toRun.Add(e)
			return false
		})
	}

	_, isList := target.(*List)
	if key == LengthKey && isList {
		newLength, _ := newValue.(int)
		for k, effects := range depsMap {
			if k == LengthKey {
				add(effects)
				continue
			}
			if idx, ok := k.(int); ok && idx >= newLength {
				add(effects)
			}
		}
	} else {
		if key != nil {
			add(depsMap[key])
		}
		if op == TriggerAdd && isList {
			if idx, ok := key.(int); ok && idx >= 0 {
				add(depsMap[LengthKey])
			}
		}
	}

	effects := toRun.ToSlice()
	slices.SortFunc(effects, func(a, b *ReactiveEffect) int {
		return cmp.Compare(a.id, b.id)
	})
	for _, e := range effects {
		if e.scheduler != nil {
			e.scheduler(e)
			continue
		}
		if err := e.Run(); err != nil {
			rs.reportError(e, err)
		}
	}
}

// Subscribers returns the number of effects subscribed to key on target.
func (rs *ReactiveSystem) Subscribers(target any, key Key) int {
	effects, ok := rs.targets[target][key]
	if !ok {
		return 0
	}
	return effects.Cardinality()
}
