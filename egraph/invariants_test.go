package egraph

import (
	"testing"

	"github.com/go-quicktest/qt"
	fuzz "github.com/google/gofuzz"
)

// checkInvariants asserts the e-graph invariants that must hold
// after every rebuild: canonical ids, canonical children, hash-cons
// uniqueness, congruence, parent consistency and analysis agreement.
func checkInvariants(t *testing.T, g *EGraph) {
	t.Helper()

	// find is a projection: find(find(a)) == find(a).
	for i := 0; i < g.uf.Len(); i++ {
		id := Id(i)
		if g.find(g.find(id)) != g.find(id) {
			t.Fatalf("find not idempotent for id %d", id)
		}
	}

	total := 0
	for id, c := range g.classes {
		if g.find(id) != id {
			t.Fatalf("class key %d is not canonical", id)
		}
		if len(c.nodes) == 0 {
			t.Fatalf("class %d has no nodes", id)
		}
		total += len(c.nodes)
		for i, n := range c.nodes {
			if !g.canonicalize(n).equal(n) {
				t.Fatalf("class %d node %d has non-canonical children: %+v", id, i, n)
			}
			for j := 0; j < i; j++ {
				if c.nodes[j].equal(n) {
					t.Fatalf("class %d holds duplicate node %+v", id, n)
				}
			}
			// Hash-cons: each stored node maps back to its class,
			// which also gives congruence: two equal canonical nodes
			// can't map to two classes.
			got, ok := g.memo.lookup(n)
			if !ok {
				t.Fatalf("class %d node %+v missing from table", id, n)
			}
			if g.find(got) != id {
				t.Fatalf("table maps %+v to class %d, stored in %d", n, g.find(got), id)
			}
		}
	}
	if g.memo.len() != total {
		t.Fatalf("table holds %d nodes, classes hold %d", g.memo.len(), total)
	}

	// Parent consistency, in both directions.
	for id, c := range g.classes {
		for _, pe := range c.parents {
			n := g.canonicalize(pe.node)
			owner := g.find(pe.owner)
			oc := g.classes[owner]
			found := false
			for _, on := range oc.nodes {
				if on.equal(n) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("parent edge %+v of class %d not found in class %d", n, id, owner)
			}
		}
	}
	for id, c := range g.classes {
		for _, n := range c.nodes {
			for _, a := range n.args {
				child := g.classes[g.find(a)]
				found := false
				for _, pe := range child.parents {
					if g.canonicalize(pe.node).equal(n) && g.find(pe.owner) == id {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("class %d node %+v has no back-edge from child %d", id, n, g.find(a))
				}
			}
		}
	}

	// Analysis agreement.
	if g.analysis == nil {
		return
	}
	for id, c := range g.classes {
		for _, n := range c.nodes {
			var v any
			var ok bool
			if n.leaf {
				v, ok = g.analysis(n.op, nil)
			} else {
				args := make([]any, len(n.args))
				ready := true
				for i, a := range n.args {
					child := g.classes[g.find(a)]
					if !child.hasData {
						ready = false
						break
					}
					args[i] = child.data
				}
				if !ready {
					continue
				}
				v, ok = g.analysis(n.op, args)
			}
			if !ok {
				continue
			}
			if !c.hasData {
				t.Fatalf("class %d misses folded value %v for node %+v", id, v, n)
			}
			if c.data != v {
				t.Fatalf("class %d folded value %v disagrees with node %+v fold %v", id, c.data, n, v)
			}
		}
	}
}

// testFold is a small integer analysis used by the randomized tests.
func testFold(op any, args []any) (any, bool) {
	if args == nil {
		i, ok := op.(int)
		return i, ok
	}
	vals := make([]int, len(args))
	for i, a := range args {
		n, ok := a.(int)
		if !ok {
			return nil, false
		}
		vals[i] = n
	}
	switch op {
	case "F":
		return vals[0] + vals[1], true
	case "G":
		return -vals[0], true
	}
	return nil, false
}

func TestInvariantsRandomized(t *testing.T) {
	for seed := int64(1); seed <= 15; seed++ {
		f := fuzz.NewWithSeed(seed).NilChance(0)
		var script []byte
		f.NumElements(60, 120).Fuzz(&script)
		var atoms []int
		f.NumElements(3, 6).Fuzz(&atoms)

		// No analysis here: random unions may assert equivalences that
		// contradict any fold, which the engine resolves by letting
		// the representative win, so strict agreement can't be
		// asserted. The analysis invariant is checked by the
		// deterministic run tests below.
		g := New()
		terms := make([]any, 0, 64)
		for _, v := range atoms {
			terms = append(terms, v%50)
		}
		terms = append(terms, "sym")
		var ids []Id
		pick := func(b byte, n int) int { return int(b) % n }

		for i := 0; i+2 < len(script); i += 3 {
			op, b1, b2 := script[i], script[i+1], script[i+2]
			switch op % 5 {
			case 0:
				x := terms[pick(b1, len(terms))]
				y := terms[pick(b2, len(terms))]
				terms = append(terms, Node{Op: "F", Args: []any{x, y}})
			case 1:
				x := terms[pick(b1, len(terms))]
				terms = append(terms, Node{Op: "G", Args: []any{x}})
			case 2:
				ids = append(ids, g.Add(terms[pick(b1, len(terms))]))
			case 3:
				if len(ids) >= 2 {
					g.Union(ids[pick(b1, len(ids))], ids[pick(b2, len(ids))])
				}
			case 4:
				g.Rebuild()
			}
		}
		g.Rebuild()
		checkInvariants(t, g)

		// Rebuild is idempotent.
		g.Rebuild()
		checkInvariants(t, g)
		if t.Failed() {
			t.Fatalf("seed %d", seed)
		}
	}
}

func TestInvariantsAfterRun(t *testing.T) {
	a, b := Var("a"), Var("b")
	addp := func(x, y any) Node { return Node{Op: "Add", Args: []any{x, y}} }
	mulp := func(x, y any) Node { return Node{Op: "Mul", Args: []any{x, y}} }
	rules := []Rewrite{
		NewRewrite(addp(a, b), addp(b, a), "commute-add"),
		NewRewrite(mulp(a, b), mulp(b, a), "commute-mul"),
		NewRewrite(addp(a, 0), a, "add-0"),
		NewRewrite(mulp(a, 0), 0, "mul-0"),
		NewRewrite(mulp(a, 1), a, "mul-1"),
	}
	g := New()
	id := g.Add(addp(0, mulp(1, "foo")))
	g.Run(rules, 7)
	checkInvariants(t, g)
	qt.Assert(t, qt.IsTrue(g.Equiv(id, g.Add("foo"))))
}

func TestInvariantsWithAnalysisRun(t *testing.T) {
	g := New(WithAnalysis(testFold))
	addF := func(x, y any) Node { return Node{Op: "F", Args: []any{x, y}} }
	id1 := g.Add(addF(1, addF(2, addF(3, 4))))
	id2 := g.Add(addF(4, addF(3, addF(2, 1))))
	a, b := Var("a"), Var("b")
	g.Run([]Rewrite{NewRewrite(addF(a, b), addF(b, a), "comm")}, 4)
	checkInvariants(t, g)
	qt.Assert(t, qt.IsTrue(g.Equiv(id1, id2)))
}
