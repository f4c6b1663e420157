package reactivity

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a tracked slot on a target: a string for record fields, an
// int for list indices, or one of the symbols below.
type Key = any

// symbol is a key that can never collide with a field name or an index. Its
// value is the hash of its name.
type symbol int64

var symbolNames = map[symbol]string{}

func newSymbol(name string) symbol {
	s := symbol(xxhash.Sum64String(name) & 0x7fffffffffffffff)
	if existing, ok := symbolNames[s]; ok && existing != name {
		panic(fmt.Sprintf("symbol %q collides with %q", name, existing))
	}
	symbolNames[s] = name
	return s
}

func (s symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", symbolNames[s])
}

var (
	// LengthKey is tracked by reads of a list's length.
	LengthKey Key = newSymbol("length")
	// ValueKey is tracked by reads of a Ref or Computed value.
	ValueKey Key = newSymbol("value")
)
