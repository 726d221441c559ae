package gen

import "strconv"

// NameAllocator hands out collision-free temporary identifiers within
// one generation run. A single monotonic counter shared by every prefix
// keeps the output deterministic given the same traversal order, which
// golden-file tests rely on.
type NameAllocator struct {
	n int
}

// Temp returns prefix + counter and advances the counter.
func (a *NameAllocator) Temp(prefix string) string {
	name := prefix + strconv.Itoa(a.n)
	a.n++
	return name
}
