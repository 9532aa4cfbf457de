package egraph

import "maps"

// Subst maps pattern variables to the classes they are bound to.
type Subst map[Var]Id

// match is one occurrence of a pattern: the class it was found in
// and the variable bindings that make it fit.
type match struct {
	root  Id
	subst Subst
}

// matches returns every (class, substitution) pair at which p occurs
// in the graph, interpreted modulo congruence. Classes are scanned
// in ascending id order and nodes in insertion order, so the result
// sequence is stable for a given graph state.
func (g *EGraph) matches(p pat) []match {
	var out []match
	for _, id := range g.classIDs() {
		for _, s := range g.matchClass(p, id, Subst{}) {
			out = append(out, match{root: id, subst: s})
		}
	}
	return out
}

// matchClass returns every extension of s under which p matches the
// class identified by id.
func (g *EGraph) matchClass(p pat, id Id, s Subst) []Subst {
	id = g.find(id)
	switch p.kind {
	case patVar:
		if bound, ok := s[p.v]; ok {
			if g.find(bound) != id {
				return nil
			}
			return []Subst{s}
		}
		s2 := maps.Clone(s)
		s2[p.v] = id
		return []Subst{s2}
	case patAtom:
		for _, n := range g.classes[id].nodes {
			if n.leaf && n.op == p.op {
				return []Subst{s}
			}
		}
		return nil
	default: // patApp
		var out []Subst
		for _, n := range g.classes[id].nodes {
			if n.leaf || n.op != p.op || len(n.args) != len(p.args) {
				continue
			}
			subs := []Subst{s}
			for i, cp := range p.args {
				var next []Subst
				for _, s1 := range subs {
					next = append(next, g.matchClass(cp, n.args[i], s1)...)
				}
				subs = next
				if len(subs) == 0 {
					break
				}
			}
			out = append(out, subs...)
		}
		return out
	}
}
