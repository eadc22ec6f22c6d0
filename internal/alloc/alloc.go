// Package alloc implements the tape-cell allocator (spec.md §4.9): a
// bump-and-reuse bookkeeper over an unbounded array of tape cells. It never
// touches the tape itself -- it only hands out and reclaims integer cell
// indices for the IR generator and quad expander to build on.
package alloc

// lowCells is the number of cells the allocator starts with pre-marked
// free, matching original_source/src/ir/allocator.rs's reserved low range.
const lowCells = 30

// Allocator tracks which tape cells are currently in use. Reuse is
// lowest-index-first: a freed cell is handed back out before any new cell
// is appended past the current high-water mark.
type Allocator struct {
	used map[uint32]struct{}
	free map[uint32]struct{}
}

// New returns an Allocator with cells 0..29 pre-populated as free, exactly
// as the original allocator does -- cells in this range are low scratch
// that callers may assume is always available early in a compile.
func New() *Allocator {
	a := &Allocator{
		used: make(map[uint32]struct{}),
		free: make(map[uint32]struct{}, lowCells),
	}
	for i := uint32(0); i < lowCells; i++ {
		a.free[i] = struct{}{}
	}
	return a
}

func (a *Allocator) totalSize() uint32 {
	return uint32(len(a.used) + len(a.free))
}

// Reserve returns the lowest-indexed free cell, or appends a new one past
// the current high-water mark if none is free.
func (a *Allocator) Reserve() uint32 {
	if v, ok := lowest(a.free); ok {
		delete(a.free, v)
		a.used[v] = struct{}{}
		return v
	}
	v := a.totalSize()
	a.used[v] = struct{}{}
	return v
}

// Free returns a previously reserved cell to the free pool. Freeing a cell
// not currently reserved is a caller bug.
func (a *Allocator) Free(v uint32) {
	if _, ok := a.used[v]; !ok {
		panic("alloc: Free called on a cell that was not reserved")
	}
	delete(a.used, v)
	a.free[v] = struct{}{}
}

// ReserveRange returns the start of the lowest contiguous run of n free
// cells within the current tape extent, or appends n new cells past the
// high-water mark if no such run exists.
func (a *Allocator) ReserveRange(n uint32) uint32 {
	if n == 0 {
		panic("alloc: ReserveRange(0)")
	}
	total := a.totalSize()
	for start := uint32(0); start+n <= total; start++ {
		ok := true
		for i := start; i < start+n; i++ {
			if _, free := a.free[i]; !free {
				ok = false
				break
			}
		}
		if ok {
			for i := start; i < start+n; i++ {
				delete(a.free, i)
				a.used[i] = struct{}{}
			}
			return start
		}
	}
	start := total
	for i := start; i < start+n; i++ {
		a.used[i] = struct{}{}
	}
	return start
}

// ReserveArray always appends size+4 fresh cells strictly above every cell
// currently known to the allocator (used or free), never reusing a freed
// run. The 4 extra cells are scratch the array quads (SetArray/GetArray)
// need alongside the element storage itself.
func (a *Allocator) ReserveArray(size uint32) uint32 {
	start := uint32(0)
	for v := range a.used {
		if v+1 > start {
			start = v + 1
		}
	}
	for v := range a.free {
		if v+1 > start {
			start = v + 1
		}
	}
	total := size + 4
	for i := start; i < start+total; i++ {
		a.used[i] = struct{}{}
	}
	return start
}

// FreeArray returns the size+4 cells reserved by the matching
// ReserveArray(size) call back to the free pool.
func (a *Allocator) FreeArray(loc, size uint32) {
	total := size + 4
	for i := loc; i < loc+total; i++ {
		a.Free(i)
	}
}

// AssertEmpty panics if any cell is still reserved -- called once at the
// end of IR generation to catch a leaked reservation in the generator.
func (a *Allocator) AssertEmpty() {
	if len(a.used) != 0 {
		panic("alloc: cells still reserved at end of generation")
	}
}

func lowest(s map[uint32]struct{}) (uint32, bool) {
	if len(s) == 0 {
		return 0, false
	}
	min := ^uint32(0)
	for v := range s {
		if v < min {
			min = v
		}
	}
	return min, true
}
