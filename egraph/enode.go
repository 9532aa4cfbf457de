package egraph

import (
	"hash/maphash"
	"slices"
)

// Id identifies an e-class. Ids are dense non-negative integers.
// A non-canonical Id may refer to a class that has since been merged
// into another; Find resolves it.
type Id int

// enode is a single node stored in an e-class: either an atom
// (leaf true, no args) or an operator application whose children
// are e-class ids. enodes are compared structurally.
type enode struct {
	op   any
	args []Id
	leaf bool
}

func (n enode) equal(o enode) bool {
	return n.leaf == o.leaf && n.op == o.op && slices.Equal(n.args, o.args)
}

func atomNode(v any) enode {
	return enode{op: v, leaf: true}
}

// memo is the hash-cons table: a mapping from canonical enodes to
// the class that contains them. enodes contain an id slice so they
// can't be native map keys; the table hashes them with maphash into
// buckets, like anyhash.Map does for arbitrary hashable keys.
type memo struct {
	seed  maphash.Seed
	table map[uint64][]memoEntry
	n     int
}

type memoEntry struct {
	key enode
	id  Id
}

func (m *memo) init() {
	if m.table == nil {
		m.seed = maphash.MakeSeed()
		m.table = make(map[uint64][]memoEntry)
	}
}

func (m *memo) hash(n enode) uint64 {
	var h maphash.Hash
	h.SetSeed(m.seed)
	maphash.WriteComparable(&h, n.leaf)
	maphash.WriteComparable(&h, n.op)
	for _, a := range n.args {
		maphash.WriteComparable(&h, a)
	}
	return h.Sum64()
}

// lookup returns the class registered for n, if any.
func (m *memo) lookup(n enode) (Id, bool) {
	if m.table == nil {
		return 0, false
	}
	for _, e := range m.table[m.hash(n)] {
		if e.key.equal(n) {
			return e.id, true
		}
	}
	return 0, false
}

// set registers n as belonging to class id, replacing any previous
// registration of an equal node.
func (m *memo) set(n enode, id Id) {
	m.init()
	hv := m.hash(n)
	b := m.table[hv]
	for i := range b {
		if b[i].key.equal(n) {
			b[i].id = id
			return
		}
	}
	m.table[hv] = append(b, memoEntry{key: n, id: id})
	m.n++
}

// delete removes the registration for n, if present.
func (m *memo) delete(n enode) {
	if m.table == nil {
		return
	}
	hv := m.hash(n)
	b := m.table[hv]
	for i := range b {
		if b[i].key.equal(n) {
			b[i] = b[len(b)-1]
			m.table[hv] = b[:len(b)-1]
			m.n--
			return
		}
	}
}

// len returns the number of registered nodes.
func (m *memo) len() int {
	return m.n
}
