package egraph

import "fmt"

// Extractor chooses, for every class, a minimum-cost member node
// under an AST-size cost: an atom costs 1 and an operator node costs
// one more than the sum of its chosen children's costs. Ties go to
// the node encountered first when scanning classes in ascending id
// order and members in insertion order, so extraction is
// deterministic for a given graph state.
//
// The choice is fixed at construction time; an Extractor is not
// invalidated by later graph mutation but keeps answering for the
// state it saw.
type Extractor struct {
	g      *EGraph
	canon  []Id
	cost   map[Id]int
	choice map[Id]enode
}

// NewExtractor computes the cost table for the current graph state
// by fixed-point relaxation: costs only decrease and are bounded
// below by 1, so the loop terminates.
func (g *EGraph) NewExtractor() *Extractor {
	e := &Extractor{
		g:      g,
		canon:  make([]Id, g.uf.Len()),
		cost:   make(map[Id]int, len(g.classes)),
		choice: make(map[Id]enode, len(g.classes)),
	}
	for i := range e.canon {
		e.canon[i] = g.find(Id(i))
	}
	ids := g.classIDs()
	for changed := true; changed; {
		changed = false
		for _, id := range ids {
			for _, n := range g.classes[id].nodes {
				k, ok := e.nodeCost(n)
				if !ok {
					continue
				}
				if best, seen := e.cost[id]; !seen || k < best {
					e.cost[id] = k
					e.choice[id] = n
					changed = true
				}
			}
		}
	}
	return e
}

// resolve maps an id to the canonical id captured at construction.
func (e *Extractor) resolve(id Id) Id {
	if i := int(id); i < len(e.canon) {
		return e.canon[i]
	}
	return e.g.find(id)
}

func (e *Extractor) nodeCost(n enode) (int, bool) {
	total := 1
	for _, a := range n.args {
		c, ok := e.cost[e.resolve(a)]
		if !ok {
			return 0, false
		}
		total += c
	}
	return total, true
}

// Cost returns the cost of the chosen term for id's class.
func (e *Extractor) Cost(id Id) int {
	id = e.resolve(id)
	c, ok := e.cost[id]
	if !ok {
		panic(fmt.Sprintf("egraph: class %d has no extractable term", id))
	}
	return c
}

// Extract materializes the chosen minimum-cost term for id's class.
// Atoms come back as-is; operator nodes are rebuilt through the
// graph's term constructor. The chosen children always have strictly
// smaller cost, so the recursion terminates even on self-referential
// classes.
func (e *Extractor) Extract(id Id) any {
	id = e.resolve(id)
	n, ok := e.choice[id]
	if !ok {
		panic(fmt.Sprintf("egraph: class %d has no extractable term", id))
	}
	if n.leaf {
		return n.op
	}
	children := make([]any, len(n.args))
	for i, a := range n.args {
		children[i] = e.Extract(a)
	}
	return e.g.ctor(n.op, children)
}

// Extract returns the minimum-cost term represented by id's class.
func (g *EGraph) Extract(id Id) any {
	return g.NewExtractor().Extract(id)
}

// ExtractAll returns the minimum-cost terms for the given classes,
// in input order, sharing a single cost table.
func (g *EGraph) ExtractAll(ids []Id) []any {
	e := g.NewExtractor()
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = e.Extract(id)
	}
	return out
}
