package stratify

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(group string, n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{ID: fmt.Sprintf("%s__%03d", group, i), Group: group}
	}
	return out
}

func mustPool(t *testing.T, groups map[string]int) *Pool {
	t.Helper()
	var records []Record
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		records = append(records, makeRecords(name, groups[name])...)
	}
	pool, err := NewPool(records)
	require.NoError(t, err)
	return pool
}

func idsOf(s *Sample) []string {
	out := make([]string, len(s.Selections))
	for i, sel := range s.Selections {
		out[i] = sel.Record.ID
	}
	return out
}

func drawnFrom(s *Sample, group string) []string {
	var out []string
	for _, sel := range s.Selections {
		if sel.Stratum == group {
			out = append(out, sel.Record.ID)
		}
	}
	sort.Strings(out)
	return out
}

func TestBuild_EvenSplit(t *testing.T) {
	pool := mustPool(t, map[string]int{"A": 10, "B": 10})

	sample, err := Build(pool, 10, Int64Seed(1))
	require.NoError(t, err)

	assert.Equal(t, 10, sample.Len())
	assert.Equal(t, []Stratum{
		{Group: "A", Available: 10, Selected: 5},
		{Group: "B", Available: 10, Selected: 5},
	}, sample.Strata)
	assert.Len(t, drawnFrom(sample, "A"), 5)
	assert.Len(t, drawnFrom(sample, "B"), 5)
}

func TestBuild_RemainderGoesToSmallGroup(t *testing.T) {
	pool := mustPool(t, map[string]int{"A": 3, "B": 1})

	sample, err := Build(pool, 3, Int64Seed(1))
	require.NoError(t, err)

	assert.Equal(t, []Stratum{
		{Group: "A", Available: 3, Selected: 2},
		{Group: "B", Available: 1, Selected: 1},
	}, sample.Strata)
	assert.Equal(t, []string{"B__000"}, drawnFrom(sample, "B"))
}

func TestBuild_ClampsToPoolSize(t *testing.T) {
	pool := mustPool(t, map[string]int{"x": 25, "y": 10, "z": 5})

	sample, err := Build(pool, 1000, Int64Seed(42))
	require.NoError(t, err)

	assert.Equal(t, 40, sample.Len())
	selected := 0
	for _, st := range sample.Strata {
		assert.Equal(t, st.Available, st.Selected, st.Group)
		selected += st.Selected
	}
	assert.Equal(t, 40, selected)
}

func TestBuild_SingleGroupPermutation(t *testing.T) {
	pool := mustPool(t, map[string]int{"only_group": 5})

	sample, err := Build(pool, 5, Int64Seed(1))
	require.NoError(t, err)

	require.Equal(t, 5, sample.Len())
	seenIdx := map[int]bool{}
	seenID := map[string]bool{}
	for i, sel := range sample.Selections {
		assert.Equal(t, i+1, sel.InstanceIndex)
		assert.Equal(t, "only_group", sel.Stratum)
		seenIdx[sel.InstanceIndex] = true
		seenID[sel.Record.ID] = true
	}
	assert.Len(t, seenIdx, 5)
	assert.Len(t, seenID, 5)
}

func TestBuild_Deterministic(t *testing.T) {
	pool := mustPool(t, map[string]int{"a": 40, "b": 13, "c": 7, "d": 2})

	first, err := Build(pool, 20, Seed("run-7"))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Build(pool, 20, Seed("run-7"))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuild_InputOrderDoesNotMatter(t *testing.T) {
	a := append(makeRecords("a", 12), makeRecords("b", 9)...)
	b := append(makeRecords("b", 9), makeRecords("a", 12)...)

	poolA, err := NewPool(a)
	require.NoError(t, err)
	poolB, err := NewPool(b)
	require.NoError(t, err)

	sa, err := Build(poolA, 8, Int64Seed(3))
	require.NoError(t, err)
	sb, err := Build(poolB, 8, Int64Seed(3))
	require.NoError(t, err)
	assert.Equal(t, idsOf(sa), idsOf(sb))
}

func TestBuild_SeedSensitivity(t *testing.T) {
	pool := mustPool(t, map[string]int{"A": 50, "B": 50, "C": 20})

	s1, err := Build(pool, 12, Int64Seed(1))
	require.NoError(t, err)
	s2, err := Build(pool, 12, Int64Seed(2))
	require.NoError(t, err)

	assert.NotEqual(t, idsOf(s1), idsOf(s2))
	assert.Equal(t, s1.Strata, s2.Strata)
}

func TestAssemble_StratumIsolation(t *testing.T) {
	seed := Int64Seed(99)

	before := mustPool(t, map[string]int{"A": 30, "B": 10})
	after := mustPool(t, map[string]int{"A": 30, "B": 4, "C": 8})

	s1, err := Assemble(before, Allocation{"A": 6, "B": 3}, seed)
	require.NoError(t, err)
	s2, err := Assemble(after, Allocation{"A": 6, "B": 1, "C": 2}, seed)
	require.NoError(t, err)

	assert.Equal(t, drawnFrom(s1, "A"), drawnFrom(s2, "A"))
}

func TestAssemble_UnallocatedGroupsReportZero(t *testing.T) {
	pool := mustPool(t, map[string]int{"A": 4, "B": 4})

	sample, err := Assemble(pool, Allocation{"B": 2}, Int64Seed(5))
	require.NoError(t, err)

	assert.Equal(t, []Stratum{
		{Group: "A", Available: 4, Selected: 0},
		{Group: "B", Available: 4, Selected: 2},
	}, sample.Strata)
	assert.Empty(t, drawnFrom(sample, "A"))
}

func TestAssemble_AllocationMismatch(t *testing.T) {
	pool := mustPool(t, map[string]int{"A": 2, "B": 1})

	tests := []struct {
		name  string
		alloc Allocation
	}{
		{name: "unknown group", alloc: Allocation{"A": 1, "Z": 1}},
		{name: "over capacity", alloc: Allocation{"A": 1, "B": 2}},
		{name: "negative count", alloc: Allocation{"A": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(pool, tt.alloc, Int64Seed(1))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAllocationMismatch)
		})
	}
}

func TestAssemble_DoesNotMutateInputs(t *testing.T) {
	pool := mustPool(t, map[string]int{"A": 6, "B": 6})
	alloc := Allocation{"A": 3, "B": 3}
	beforeA := pool.Records("A")

	_, err := Assemble(pool, alloc, Int64Seed(8))
	require.NoError(t, err)

	assert.Equal(t, beforeA, pool.Records("A"))
	assert.Equal(t, Allocation{"A": 3, "B": 3}, alloc)
}

func TestBuild_InvalidInput(t *testing.T) {
	pool := mustPool(t, map[string]int{"A": 3})

	_, err := Build(pool, 0, Int64Seed(1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	empty, err := NewPool(nil)
	require.NoError(t, err)
	_, err = Build(empty, 1, Int64Seed(1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewPool(t *testing.T) {
	pool, err := NewPool([]Record{
		{ID: " b-1 ", Group: "beta"},
		{ID: "a-1", Group: "alpha"},
		{ID: "b-2", Group: " beta"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, pool.Groups())
	assert.Equal(t, 3, pool.Total())
	assert.Equal(t, []Record{{ID: "b-1", Group: "beta"}, {ID: "b-2", Group: "beta"}}, pool.Records("beta"))
	assert.Equal(t, map[string]int{"alpha": 1, "beta": 2}, pool.Sizes())

	_, err = NewPool([]Record{{ID: "", Group: "g"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = NewPool([]Record{{ID: "x", Group: "  "}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
