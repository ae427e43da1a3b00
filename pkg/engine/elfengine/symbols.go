package elfengine

import (
	"sort"
)

// symbolRange is one function symbol with its address range.
type symbolRange struct {
	Name  string
	Start uint64
	End   uint64
}

// symbolIndex resolves an address to the function symbol whose range
// contains it. Ranges come from STT_FUNC symbol values and sizes.
type symbolIndex struct {
	ranges []symbolRange
}

// newSymbolIndex builds an index over the given ranges. Ranges are sorted
// by start address; zero-sized symbols only match their exact address.
func newSymbolIndex(ranges []symbolRange) *symbolIndex {
	sorted := make([]symbolRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return &symbolIndex{ranges: sorted}
}

// Resolve returns the name of the function containing addr, if any.
func (idx *symbolIndex) Resolve(addr uint64) (string, bool) {
	// First range starting after addr; the candidate is the one before it.
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return idx.ranges[i].Start > addr
	})
	if i == 0 {
		return "", false
	}
	candidate := idx.ranges[i-1]
	if addr == candidate.Start || (addr > candidate.Start && addr < candidate.End) {
		return candidate.Name, true
	}
	return "", false
}

// Len returns the number of indexed symbols.
func (idx *symbolIndex) Len() int {
	return len(idx.ranges)
}
