package reconcile_test

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/delaneyj/proxyparty/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	key string
	typ string
}

func (i item) ItemKey() any {
	if i.key == "" {
		return nil
	}
	return i.key
}

func (i item) ItemType() any { return i.typ }

func items(keys string) []item {
	out := make([]item, 0, len(keys))
	for _, k := range strings.Split(keys, "") {
		out = append(out, item{key: k, typ: "li"})
	}
	return out
}

// list applies ops to a slice of keys so the result can be checked
type list struct {
	keys []string
}

func (l *list) index(key string) int {
	return slices.Index(l.keys, key)
}

func (l *list) insertBefore(key string, anchor item) {
	if anchor == (item{}) {
		l.keys = append(l.keys, key)
		return
	}
	at := l.index(anchor.key)
	l.keys = slices.Insert(l.keys, at, key)
}

func (l *list) Patch(prev, next item) {}

func (l *list) Insert(next, anchor item) {
	l.insertBefore(next.key, anchor)
}

func (l *list) Move(it, anchor item) {
	l.keys = slices.Delete(l.keys, l.index(it.key), l.index(it.key)+1)
	l.insertBefore(it.key, anchor)
}

func (l *list) Remove(prev item) {
	l.keys = slices.Delete(l.keys, l.index(prev.key), l.index(prev.key)+1)
}

func reconcileKeys(t *testing.T, prev, next string) (*reconcile.Recorder[item], *list) {
	t.Helper()
	l := &list{keys: strings.Split(prev, "")}
	if prev == "" {
		l.keys = nil
	}
	rec := reconcile.NewRecorder[item](l)
	require.NoError(t, reconcile.Keyed[item](items(prev), items(next), rec))
	return rec, l
}

// should move exactly one item when two neighbours swap
func TestKeyedSwapIsOneMove(t *testing.T) {
	rec, l := reconcileKeys(t, "abcd", "acbd")

	assert.Equal(t, []string{"a", "c", "b", "d"}, l.keys)
	assert.Equal(t, 1, rec.Count(reconcile.EditMove))
	assert.Equal(t, 0, rec.Count(reconcile.EditInsert))
	assert.Equal(t, 0, rec.Count(reconcile.EditRemove))
	assert.Equal(t, 4, rec.Count(reconcile.EditPatch))
	assert.Contains(t, rec.Edits(), reconcile.Edit{Op: reconcile.EditMove, Key: "c", Anchor: "b"})
}

func TestKeyedRemoveAndInsert(t *testing.T) {
	rec, l := reconcileKeys(t, "abc", "acd")

	assert.Equal(t, []string{"a", "c", "d"}, l.keys)
	assert.Equal(t, []reconcile.Edit{
		{Op: reconcile.EditPatch, Key: "a"},
		{Op: reconcile.EditRemove, Key: "b"},
		{Op: reconcile.EditPatch, Key: "c"},
		{Op: reconcile.EditInsert, Key: "d"},
	}, rec.Edits())
	assert.Equal(t, 0, rec.Count(reconcile.EditMove))
}

func TestKeyedCases(t *testing.T) {
	tests := []struct {
		name             string
		prev, next       string
		moves, ins, rems int
	}{
		{name: "identical", prev: "abc", next: "abc"},
		{name: "append", prev: "ab", next: "abcd", ins: 2},
		{name: "prepend", prev: "cd", next: "abcd", ins: 2},
		{name: "insert middle", prev: "ad", next: "abcd", ins: 2},
		{name: "remove head", prev: "abcd", next: "cd", rems: 2},
		{name: "remove middle", prev: "abcd", next: "ad", rems: 2},
		{name: "clear", prev: "abc", next: "", rems: 3},
		{name: "from empty", prev: "", next: "abc", ins: 3},
		{name: "reverse", prev: "abcde", next: "edcba", moves: 4},
		{name: "head to tail", prev: "abcde", next: "bcdea", moves: 1},
		{name: "tail to head", prev: "abcde", next: "eabcd", moves: 1},
		{name: "mixed", prev: "abcdefg", next: "adcbhefg", moves: 2, ins: 1},
		{name: "replace all", prev: "abc", next: "xyz", ins: 3, rems: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, l := reconcileKeys(t, tt.prev, tt.next)
			want := strings.Split(tt.next, "")
			if tt.next == "" {
				want = nil
			}
			if len(want) == 0 {
				assert.Empty(t, l.keys)
			} else {
				assert.Equal(t, want, l.keys)
			}
			assert.Equal(t, tt.moves, rec.Count(reconcile.EditMove), "moves")
			assert.Equal(t, tt.ins, rec.Count(reconcile.EditInsert), "inserts")
			assert.Equal(t, tt.rems, rec.Count(reconcile.EditRemove), "removes")
		})
	}
}

// should always reproduce next for arbitrary reorderings
func TestKeyedRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	alphabet := strings.Split("abcdefghijklmnopqrstuvwxyz", "")

	pick := func() string {
		keys := slices.Clone(alphabet)
		r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
		return strings.Join(keys[:r.IntN(len(keys)+1)], "")
	}

	for range 500 {
		prev, next := pick(), pick()
		rec, l := reconcileKeys(t, prev, next)
		if next == "" {
			require.Empty(t, l.keys, "%q -> %q", prev, next)
			continue
		}
		require.Equal(t, strings.Split(next, ""), l.keys, "%q -> %q", prev, next)
		require.LessOrEqual(t, rec.Count(reconcile.EditMove), len(next))
	}
}

func TestKeyedDuplicateKey(t *testing.T) {
	rec := reconcile.NewRecorder[item](nil)
	err := reconcile.Keyed[item](items("ab"), items("abca"), rec)

	require.ErrorIs(t, err, reconcile.ErrDuplicateKey)
	var dup *reconcile.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Key)
	assert.Equal(t, 0, dup.First)
	assert.Equal(t, 3, dup.Second)
	assert.Empty(t, rec.Edits())
}

// should not treat items with equal keys but different types as the same
func TestKeyedTypeChange(t *testing.T) {
	prev := []item{{key: "a", typ: "li"}, {key: "b", typ: "li"}}
	next := []item{{key: "a", typ: "li"}, {key: "b", typ: "p"}}
	rec := reconcile.NewRecorder[item](nil)
	require.NoError(t, reconcile.Keyed[item](prev, next, rec))

	assert.Equal(t, 1, rec.Count(reconcile.EditRemove))
	assert.Equal(t, 1, rec.Count(reconcile.EditInsert))
}

// should reuse unkeyed items of the same type inside the reordered window
func TestKeyedUnkeyedItems(t *testing.T) {
	prev := []item{{key: "a", typ: "li"}, {typ: "hr"}, {key: "b", typ: "li"}}
	next := []item{{key: "b", typ: "li"}, {typ: "hr"}, {key: "a", typ: "li"}}
	rec := reconcile.NewRecorder[item](nil)
	require.NoError(t, reconcile.Keyed[item](prev, next, rec))

	assert.Equal(t, 0, rec.Count(reconcile.EditInsert))
	assert.Equal(t, 0, rec.Count(reconcile.EditRemove))
	assert.Equal(t, 3, rec.Count(reconcile.EditPatch))
}

func TestUnkeyed(t *testing.T) {
	prev := []item{{typ: "p"}, {typ: "p"}, {typ: "p"}}
	next := []item{{typ: "p"}}
	rec := reconcile.NewRecorder[item](nil)
	reconcile.Unkeyed[item](prev, next, rec)
	assert.Equal(t, 1, rec.Count(reconcile.EditPatch))
	assert.Equal(t, 2, rec.Count(reconcile.EditRemove))

	rec.Reset()
	reconcile.Unkeyed[item](next, prev, rec)
	assert.Equal(t, 1, rec.Count(reconcile.EditPatch))
	assert.Equal(t, 2, rec.Count(reconcile.EditInsert))
	assert.Equal(t, 2, rec.Structural())
}

func TestEditString(t *testing.T) {
	assert.Equal(t, "move c before b", reconcile.Edit{Op: reconcile.EditMove, Key: "c", Anchor: "b"}.String())
	assert.Equal(t, "insert d at end", reconcile.Edit{Op: reconcile.EditInsert, Key: "d"}.String())
	assert.Equal(t, "remove b", reconcile.Edit{Op: reconcile.EditRemove, Key: "b"}.String())
	assert.Equal(t, "EditOp(9)", reconcile.EditOp(9).String())
}
