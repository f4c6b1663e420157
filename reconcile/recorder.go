package reconcile

import "fmt"

type EditOp int

const (
	EditPatch EditOp = iota
	EditInsert
	EditMove
	EditRemove
)

func (op EditOp) String() string {
	switch op {
	case EditPatch:
		return "patch"
	case EditInsert:
		return "insert"
	case EditMove:
		return "move"
	case EditRemove:
		return "remove"
	default:
		return fmt.Sprintf("EditOp(%d)", int(op))
	}
}

// Edit is one recorded operation. Anchor is the key of the anchor item, nil
// for an append or for ops without an anchor.
type Edit struct {
	Op     EditOp
	Key    any
	Anchor any
}

func (e Edit) String() string {
	switch {
	case e.Op == EditPatch || e.Op == EditRemove:
		return fmt.Sprintf("%s %v", e.Op, e.Key)
	case e.Anchor == nil:
		return fmt.Sprintf("%s %v at end", e.Op, e.Key)
	default:
		return fmt.Sprintf("%s %v before %v", e.Op, e.Key, e.Anchor)
	}
}

// Recorder captures an edit script and forwards every op to an optional
// inner Ops.
type Recorder[I Item] struct {
	inner  Ops[I]
	edits  []Edit
	counts [EditRemove + 1]int
}

func NewRecorder[I Item](inner Ops[I]) *Recorder[I] {
	return &Recorder[I]{inner: inner}
}

func (r *Recorder[I]) record(op EditOp, item, anchor I) {
	var zero I
	e := Edit{Op: op, Key: item.ItemKey()}
	if anchor != zero {
		e.Anchor = anchor.ItemKey()
	}
	r.edits = append(r.edits, e)
	r.counts[op]++
}

func (r *Recorder[I]) Patch(prev, next I) {
	var zero I
	r.record(EditPatch, next, zero)
	if r.inner != nil {
		r.inner.Patch(prev, next)
	}
}

func (r *Recorder[I]) Insert(next, anchor I) {
	r.record(EditInsert, next, anchor)
	if r.inner != nil {
		r.inner.Insert(next, anchor)
	}
}

func (r *Recorder[I]) Move(item, anchor I) {
	r.record(EditMove, item, anchor)
	if r.inner != nil {
		r.inner.Move(item, anchor)
	}
}

func (r *Recorder[I]) Remove(prev I) {
	var zero I
	r.record(EditRemove, prev, zero)
	if r.inner != nil {
		r.inner.Remove(prev)
	}
}

func (r *Recorder[I]) Edits() []Edit {
	return r.edits
}

func (r *Recorder[I]) Count(op EditOp) int {
	if op < 0 || int(op) >= len(r.counts) {
		return 0
	}
	return r.counts[op]
}

// Structural is the number of edits that touch the host tree, everything
// except patches.
func (r *Recorder[I]) Structural() int {
	return r.counts[EditInsert] + r.counts[EditMove] + r.counts[EditRemove]
}

func (r *Recorder[I]) Reset() {
	r.edits = r.edits[:0]
	r.counts = [EditRemove + 1]int{}
}
