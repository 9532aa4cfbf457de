package egraph

import (
	"fmt"
	"iter"
	"slices"

	"github.com/rogpeppe/eqsat/unionfind"
)

// eclass is one equivalence class: its member nodes in insertion
// order, the back-edges to nodes that have this class as a child,
// and the folded constant computed by the analysis, if any.
type eclass struct {
	id      Id
	nodes   []enode
	parents []parentEdge
	data    any
	hasData bool
}

// parentEdge records that node occurs in the class identified by
// owner and has the class holding the edge among its children.
type parentEdge struct {
	node  enode
	owner Id
}

// EGraph is a set of equivalence classes of expressions, closed
// under congruence. The zero value is not usable; call New.
type EGraph struct {
	uf      unionfind.Forest
	memo    memo
	classes map[Id]*eclass

	// pending holds classes whose parent nodes may have stale child
	// ids or stale hash-cons entries. Rebuild drains it FIFO.
	pending []Id

	// arity pins the child count of every operator head at first use.
	arity map[any]int

	// inserted counts distinct e-node insertions, for saturation
	// detection.
	inserted int

	analysis Analysis
	ctor     TermCtor
}

// New returns an empty e-graph configured by opts.
func New(opts ...Option) *EGraph {
	g := &EGraph{
		classes: make(map[Id]*eclass),
		arity:   make(map[any]int),
		ctor:    defaultCtor,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Add inserts a term and returns the id of the class that represents
// it. Adding the same term twice returns the same id. It panics if
// the term is a pattern variable or uses an operator head with an
// arity that differs from an earlier use.
func (g *EGraph) Add(term any) Id {
	switch t := term.(type) {
	case Var:
		panic(fmt.Sprintf("egraph: cannot add pattern variable %v as a term", t))
	case App:
		head := t.Head()
		children := t.Children()
		g.checkArity(head, len(children))
		args := make([]Id, len(children))
		for i, c := range children {
			args[i] = g.Add(c)
		}
		return g.addNode(enode{op: head, args: args})
	default:
		return g.addNode(atomNode(term))
	}
}

// addNode hash-conses a single node whose children, if any, are
// already inserted.
func (g *EGraph) addNode(n enode) Id {
	n = g.canonicalize(n)
	if id, ok := g.memo.lookup(n); ok {
		return g.find(id)
	}
	id := Id(g.uf.MakeSet())
	c := &eclass{id: id, nodes: []enode{n}}
	g.classes[id] = c
	g.memo.set(n, id)
	g.inserted++
	for i, a := range n.args {
		if slices.Contains(n.args[:i], a) {
			continue
		}
		child := g.classes[a]
		child.parents = append(child.parents, parentEdge{node: n, owner: id})
	}
	g.fold(c, n)
	return g.find(id)
}

// Union merges the classes of a and b and reports whether a merge
// happened; false means they were already equivalent. Union does not
// restore the congruence invariants: call Rebuild before matching or
// relying on Equiv.
func (g *EGraph) Union(a, b Id) bool {
	return g.union(a, b)
}

// UnionTerms adds both terms and unions their classes.
func (g *EGraph) UnionTerms(x, y any) bool {
	a := g.Add(x)
	b := g.Add(y)
	return g.union(a, b)
}

func (g *EGraph) union(a, b Id) bool {
	root, absorbed, merged := g.uf.Union(int(a), int(b))
	if !merged {
		return false
	}
	r, m := Id(root), Id(absorbed)
	rc, mc := g.classes[r], g.classes[m]
	rc.nodes = append(rc.nodes, mc.nodes...)
	rc.parents = append(rc.parents, mc.parents...)
	// The representative's analysis value wins when both sides have
	// one.
	if !rc.hasData && mc.hasData {
		rc.data, rc.hasData = mc.data, true
	}
	delete(g.classes, m)
	g.pending = append(g.pending, r)
	return true
}

// Rebuild restores the e-graph invariants after unions: every stored
// node has canonical children, the hash-cons table maps each
// canonical node to exactly one class, and congruent nodes share a
// class. It is idempotent and deterministic.
func (g *EGraph) Rebuild() {
	for len(g.pending) > 0 {
		todo := g.pending
		g.pending = nil
		done := make(map[Id]bool)
		for _, id := range todo {
			id = g.find(id)
			if !done[id] {
				done[id] = true
				g.repair(id)
			}
		}
	}
}

// repair re-canonicalizes every parent node of class id, merging
// classes whose nodes have become syntactically equal and refreshing
// the analysis of parents whose children now all have values.
func (g *EGraph) repair(id Id) {
	c := g.classes[id]
	old := c.parents
	c.parents = nil
	repaired := make([]parentEdge, 0, len(old))
	for _, pe := range old {
		g.memo.delete(pe.node)
		n := g.canonicalize(pe.node)
		owner := g.find(pe.owner)
		if existing, ok := g.memo.lookup(n); ok && g.find(existing) != owner {
			g.union(existing, owner)
			owner = g.find(owner)
		}
		g.memo.set(n, owner)
		g.replaceNode(owner, pe.node, n)
		g.fold(g.classes[owner], n)
		owner = g.find(owner)
		dup := false
		for _, q := range repaired {
			if q.node.equal(n) && g.find(q.owner) == owner {
				dup = true
				break
			}
		}
		if !dup {
			repaired = append(repaired, parentEdge{node: n, owner: owner})
		}
	}
	cur := g.classes[g.find(id)]
	cur.parents = append(cur.parents, repaired...)
}

// replaceNode swaps the stored form of a node in the owner class for
// its canonical form, dropping it instead if the canonical form is
// already present.
func (g *EGraph) replaceNode(owner Id, old, canon enode) {
	if old.equal(canon) {
		return
	}
	c := g.classes[owner]
	oldIdx, canonIdx := -1, -1
	for i := range c.nodes {
		switch {
		case oldIdx < 0 && c.nodes[i].equal(old):
			oldIdx = i
		case canonIdx < 0 && c.nodes[i].equal(canon):
			canonIdx = i
		}
	}
	if oldIdx < 0 {
		// Already replaced via another child's parent list.
		return
	}
	if canonIdx >= 0 {
		c.nodes = slices.Delete(c.nodes, oldIdx, oldIdx+1)
		return
	}
	c.nodes[oldIdx] = canon
}

// Equiv reports whether a and b are in the same class. The answer
// reflects congruence only when the graph has been rebuilt since the
// last union.
func (g *EGraph) Equiv(a, b Id) bool {
	return g.find(a) == g.find(b)
}

// Find returns the canonical id of a's class.
func (g *EGraph) Find(a Id) Id {
	return g.find(a)
}

func (g *EGraph) find(a Id) Id {
	return Id(g.uf.Find(int(a)))
}

// canonicalize replaces every child id with its representative.
func (g *EGraph) canonicalize(n enode) enode {
	for _, a := range n.args {
		if g.find(a) != a {
			args := make([]Id, len(n.args))
			for i, c := range n.args {
				args[i] = g.find(c)
			}
			return enode{op: n.op, args: args}
		}
	}
	return n
}

// Len returns the number of equivalence classes.
func (g *EGraph) Len() int {
	return len(g.classes)
}

// Classes returns an iterator over the canonical class ids in
// ascending order.
func (g *EGraph) Classes() iter.Seq[Id] {
	return func(yield func(Id) bool) {
		for _, id := range g.classIDs() {
			if !yield(id) {
				return
			}
		}
	}
}

func (g *EGraph) classIDs() []Id {
	ids := make([]Id, 0, len(g.classes))
	for i := 0; i < g.uf.Len(); i++ {
		if _, ok := g.classes[Id(i)]; ok {
			ids = append(ids, Id(i))
		}
	}
	return ids
}

func (g *EGraph) checkArity(head any, n int) {
	if prev, ok := g.arity[head]; ok {
		if prev != n {
			panic(fmt.Sprintf("egraph: operator %v used with %d children, previously %d", head, n, prev))
		}
		return
	}
	g.arity[head] = n
}
