package stratify

import (
	"fmt"
	"sort"

	"lukechampine.com/frand"
)

// Selection is one record in a Sample.
type Selection struct {
	Record Record
	// Stratum is the group the record was drawn from.
	Stratum string
	// InstanceIndex is the 1-based position in the sample.
	InstanceIndex int
}

// Stratum reports how many records a group offered and how many were drawn.
type Stratum struct {
	Group     string `json:"group"`
	Available int    `json:"available"`
	Selected  int    `json:"selected"`
}

// Sample is the ordered result of a stratified draw.
type Sample struct {
	Seed       Seed
	Selections []Selection
	// Strata lists every pool group in ascending lexical order.
	Strata []Stratum
}

// Len returns the number of selected records.
func (s *Sample) Len() int { return len(s.Selections) }

// Assemble draws alloc[g] records without replacement from every group g,
// concatenates the draws in ascending group order and shuffles the result.
//
// Groups of the pool that alloc does not mention select nothing. An
// allocation naming an unknown group, or asking a group for more records
// than it holds, fails with ErrAllocationMismatch.
func Assemble(pool *Pool, alloc Allocation, seed Seed) (*Sample, error) {
	names := make([]string, 0, len(alloc))
	for name := range alloc {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n := alloc[name]
		if !pool.Has(name) {
			return nil, fmt.Errorf("%w: group %q is not in the pool", ErrAllocationMismatch, name)
		}
		if n < 0 || n > pool.Size(name) {
			return nil, fmt.Errorf("%w: group %q has %d records, %d requested",
				ErrAllocationMismatch, name, pool.Size(name), n)
		}
	}

	groups := pool.Groups()
	picked := make([]Record, 0, alloc.Sum())
	strata := make([]Stratum, 0, len(groups))
	for _, name := range groups {
		n := alloc[name]
		if n > 0 {
			picked = append(picked, drawWithoutReplacement(seed.groupSource(name), pool.groups[name], n)...)
		}
		strata = append(strata, Stratum{Group: name, Available: pool.Size(name), Selected: n})
	}

	seed.globalSource().Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	sels := make([]Selection, len(picked))
	for i, r := range picked {
		sels[i] = Selection{Record: r, Stratum: r.Group, InstanceIndex: i + 1}
	}
	return &Sample{Seed: seed, Selections: sels, Strata: strata}, nil
}

// drawWithoutReplacement returns n records chosen by a partial Fisher-Yates
// shuffle over a copy of the index space. rs is not modified.
func drawWithoutReplacement(rng *frand.RNG, rs []Record, n int) []Record {
	idx := make([]int, len(rs))
	for i := range idx {
		idx[i] = i
	}
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = rs[idx[i]]
	}
	return out
}

// Build clamps requested to the pool size, allocates and assembles.
// requested must be at least 1.
func Build(pool *Pool, requested int, seed Seed) (*Sample, error) {
	if requested < 1 {
		return nil, fmt.Errorf("%w: count must be >= 1, got %d", ErrInvalidInput, requested)
	}
	total := pool.Total()
	if total == 0 {
		return nil, fmt.Errorf("%w: cannot sample %d from an empty pool", ErrInvalidInput, requested)
	}
	target := requested
	if target > total {
		target = total
	}
	alloc, err := Allocate(pool.Sizes(), target)
	if err != nil {
		return nil, err
	}
	return Assemble(pool, alloc, seed)
}
