// Package unionfind implements a disjoint-set forest over densely
// allocated integer identifiers, with path compression and union by
// rank. Find and Union run in near-constant amortized time.
//
// The zero value is an empty forest ready for use.
package unionfind

import "fmt"

// Forest holds a collection of disjoint sets. Identifiers are
// allocated densely from zero by MakeSet; identifiers that were
// never allocated are out of range and cause a panic.
type Forest struct {
	parent []int
	rank   []uint8
}

// New returns an empty forest. It's equivalent to &Forest{}.
func New() *Forest {
	return &Forest{}
}

// MakeSet allocates a fresh singleton set and returns its identifier.
// Identifiers are assigned consecutively starting at zero.
func (f *Forest) MakeSet() int {
	id := len(f.parent)
	f.parent = append(f.parent, id)
	f.rank = append(f.rank, 0)
	return id
}

// Len returns the number of identifiers allocated so far, including
// identifiers that are no longer canonical.
func (f *Forest) Len() int {
	return len(f.parent)
}

// Find returns the canonical representative of the set containing x,
// compressing the path as it goes. For a fixed sequence of Union
// calls the result is deterministic.
func (f *Forest) Find(x int) int {
	f.check(x)
	// Path halving: every other node on the path is re-pointed at
	// its grandparent.
	for f.parent[x] != x {
		f.parent[x] = f.parent[f.parent[x]]
		x = f.parent[x]
	}
	return x
}

// Canonical reports whether x is the representative of its set.
func (f *Forest) Canonical(x int) bool {
	f.check(x)
	return f.parent[x] == x
}

// Union merges the sets containing a and b. It returns the
// representative of the merged set and the representative that was
// absorbed into it. If a and b are already in the same set, merged
// is false and both results are the common representative.
func (f *Forest) Union(a, b int) (root, absorbed int, merged bool) {
	ra, rb := f.Find(a), f.Find(b)
	if ra == rb {
		return ra, ra, false
	}
	// Union by rank: the shallower tree hangs off the deeper one.
	if f.rank[ra] < f.rank[rb] {
		ra, rb = rb, ra
	}
	if f.rank[ra] == f.rank[rb] {
		f.rank[ra]++
	}
	f.parent[rb] = ra
	return ra, rb, true
}

func (f *Forest) check(x int) {
	if x < 0 || x >= len(f.parent) {
		panic(fmt.Sprintf("unionfind: identifier %d out of range [0, %d)", x, len(f.parent)))
	}
}
