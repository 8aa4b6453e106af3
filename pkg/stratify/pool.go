package stratify

import (
	"fmt"
	"sort"
	"strings"
)

// Record is a single labeled unit. Only ID and Group are interpreted.
type Record struct {
	ID    string `json:"id"`
	Group string `json:"group"`
}

// Pool is an immutable partition of records by group.
// Records within a group keep their insertion order.
type Pool struct {
	groups map[string][]Record
	names  []string
	total  int
}

// NewPool partitions records by Group. Surrounding whitespace is trimmed
// from ID and Group; a record with either field empty is rejected.
func NewPool(records []Record) (*Pool, error) {
	p := &Pool{groups: make(map[string][]Record)}
	for i, r := range records {
		r.ID = strings.TrimSpace(r.ID)
		r.Group = strings.TrimSpace(r.Group)
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record %d has empty id", ErrInvalidInput, i)
		}
		if r.Group == "" {
			return nil, fmt.Errorf("%w: record %d (%s) has empty group", ErrInvalidInput, i, r.ID)
		}
		if _, ok := p.groups[r.Group]; !ok {
			p.names = append(p.names, r.Group)
		}
		p.groups[r.Group] = append(p.groups[r.Group], r)
		p.total++
	}
	sort.Strings(p.names)
	return p, nil
}

// Groups returns the group names in ascending lexical order.
func (p *Pool) Groups() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Records returns a copy of the records in group, in insertion order.
func (p *Pool) Records(group string) []Record {
	rs := p.groups[group]
	out := make([]Record, len(rs))
	copy(out, rs)
	return out
}

// Has reports whether the pool contains group.
func (p *Pool) Has(group string) bool {
	_, ok := p.groups[group]
	return ok
}

// Size returns the number of records in group.
func (p *Pool) Size(group string) int { return len(p.groups[group]) }

// Total returns the number of records across all groups.
func (p *Pool) Total() int { return p.total }

// Sizes returns the size of every group.
func (p *Pool) Sizes() map[string]int {
	out := make(map[string]int, len(p.groups))
	for name, rs := range p.groups {
		out[name] = len(rs)
	}
	return out
}
