package egraph

// fold runs the analysis for a single node and, if it produces a
// value, records it on the node's class. For an operator node the
// analysis only runs once every child class has a value.
func (g *EGraph) fold(c *eclass, n enode) {
	if g.analysis == nil || c.hasData {
		return
	}
	var v any
	var ok bool
	if n.leaf {
		v, ok = g.analysis(n.op, nil)
	} else {
		args := make([]any, len(n.args))
		for i, a := range n.args {
			child := g.classes[g.find(a)]
			if !child.hasData {
				return
			}
			args[i] = child.data
		}
		v, ok = g.analysis(n.op, args)
	}
	if !ok {
		return
	}
	g.setData(c, v)
}

// setData records the folded value v for class c and injects the
// literal for v into the class, so that adding the literal later
// hash-conses straight into c. If the literal already belongs to
// another class the two classes are unioned, with repair left to the
// next Rebuild.
func (g *EGraph) setData(c *eclass, v any) {
	if c.hasData {
		return
	}
	c.data, c.hasData = v, true
	lit := atomNode(v)
	if other, ok := g.memo.lookup(lit); ok {
		if g.find(other) != g.find(c.id) {
			g.union(other, c.id)
		}
		return
	}
	c.nodes = append(c.nodes, lit)
	g.memo.set(lit, c.id)
	g.inserted++
	if len(c.parents) > 0 {
		// Parents may fold now that this class has a value.
		g.pending = append(g.pending, c.id)
	}
}
