package stratify

import (
	"fmt"
	"sort"
)

// Allocation maps a group name to the number of records drawn from it.
type Allocation map[string]int

// Sum returns the total count across all groups.
func (a Allocation) Sum() int {
	n := 0
	for _, c := range a {
		n += c
	}
	return n
}

type share struct {
	name string
	size int
	// rem is the remainder of target*size/total. All shares have the same
	// denominator, so ordering by rem orders by fractional part.
	rem int64
}

// Allocate splits target across groups in proportion to their sizes.
//
// Each group first receives floor(target*size/total), capped at its size.
// Leftover units go one at a time to groups ordered by largest fractional
// share, ties broken by ascending group name, sweeping the order again until
// nothing is left. The result sums to target and never exceeds a group's
// size. It depends only on its arguments.
func Allocate(sizes map[string]int, target int) (Allocation, error) {
	if target < 0 {
		return nil, fmt.Errorf("%w: target %d is negative", ErrInvalidInput, target)
	}

	total := 0
	for name, s := range sizes {
		if s < 0 {
			return nil, fmt.Errorf("%w: group %q has negative size %d", ErrInvalidInput, name, s)
		}
		total += s
	}
	if total == 0 && target > 0 {
		return nil, fmt.Errorf("%w: cannot allocate %d from empty groups", ErrInvalidInput, target)
	}
	if target > total {
		return nil, fmt.Errorf("%w: target %d exceeds pool size %d", ErrInvalidInput, target, total)
	}

	alloc := make(Allocation, len(sizes))
	shares := make([]share, 0, len(sizes))
	allocated := 0
	for name, s := range sizes {
		var q, r int64
		if total > 0 {
			exact := int64(target) * int64(s)
			q, r = exact/int64(total), exact%int64(total)
		}
		base := s
		if q < int64(s) {
			base = int(q)
		}
		alloc[name] = base
		allocated += base
		shares = append(shares, share{name: name, size: s, rem: r})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].rem != shares[j].rem {
			return shares[i].rem > shares[j].rem
		}
		return shares[i].name < shares[j].name
	})

	remainder := target - allocated
	for remainder > 0 {
		progressed := false
		for _, sh := range shares {
			if remainder == 0 {
				break
			}
			if alloc[sh.name] >= sh.size {
				continue
			}
			alloc[sh.name]++
			remainder--
			progressed = true
		}
		if !progressed {
			break
		}
	}
	if remainder > 0 {
		return nil, fmt.Errorf("%w: %d units left after every group reached capacity", ErrInvalidInput, remainder)
	}

	return alloc, nil
}
