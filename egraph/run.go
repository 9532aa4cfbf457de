package egraph

import "context"

// DefaultIters is the iteration budget used when Run is given a
// negative one.
const DefaultIters = 7

// Report summarizes a saturation run.
type Report struct {
	// Iterations is the number of iterations that executed.
	Iterations int
	// Saturated reports whether the run stopped because an iteration
	// added no nodes and merged no classes, so further iterations
	// could not change the graph.
	Saturated bool
}

// Run applies rules for up to iters iterations and rebuilds, leaving
// the graph saturated or the budget spent. A negative iters means
// DefaultIters; zero performs no iterations at all.
//
// Each iteration first searches all rules against the graph as it
// stood at the start of the iteration, then applies every collected
// match. Writes are never visible to searches of the same iteration,
// so rule order cannot change the resulting equivalence classes.
func (g *EGraph) Run(rules []Rewrite, iters int) Report {
	return g.RunContext(context.Background(), rules, iters)
}

// RunContext is Run with a host stop signal: cancellation of ctx is
// observed at iteration boundaries only, after the rebuild, so the
// graph is always left consistent.
func (g *EGraph) RunContext(ctx context.Context, rules []Rewrite, iters int) Report {
	if iters < 0 {
		iters = DefaultIters
	}
	for _, r := range rules {
		g.registerPatternArity(r.lhs)
		if r.dyn == nil {
			g.registerPatternArity(r.rhs)
		}
	}

	// A panicking host callback must not propagate past an
	// un-drained worklist.
	defer g.Rebuild()

	var report Report
	for i := 0; i < iters; i++ {
		type job struct {
			rule *Rewrite
			m    match
		}
		var jobs []job
		needExtract := false
		for ri := range rules {
			for _, m := range g.matches(rules[ri].lhs) {
				jobs = append(jobs, job{rule: &rules[ri], m: m})
				if rules[ri].dyn != nil {
					needExtract = true
				}
			}
		}

		// Dynamic right-hand sides see the terms as they stood when
		// the searches ran, via one shared cost table.
		var ext *Extractor
		if needExtract {
			ext = g.NewExtractor()
		}

		before := g.inserted
		merged := false
		for _, j := range jobs {
			rid, ok := g.apply(j.rule, j.m, ext)
			if !ok {
				continue
			}
			if g.union(j.m.root, rid) {
				merged = true
			}
		}
		g.Rebuild()

		report.Iterations = i + 1
		if !merged && g.inserted == before {
			report.Saturated = true
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return report
}

// apply produces the class id of one rule application's right-hand
// side, or false when a dynamic rule declined to fire.
func (g *EGraph) apply(r *Rewrite, m match, ext *Extractor) (Id, bool) {
	if r.dyn != nil {
		binding := make(map[Var]any, len(m.subst))
		for v, id := range m.subst {
			binding[v] = ext.Extract(id)
		}
		t, ok := r.dyn(binding)
		if !ok {
			return 0, false
		}
		return g.Add(t), true
	}
	return g.instantiate(r.rhs, m.subst, r.name), true
}

// instantiate adds the right-hand side pattern under the
// substitution. A variable resolves to the class id it was bound to:
// no fresh class is made for it, so a rewrite that only rearranges
// existing subterms cannot grow the graph unboundedly.
func (g *EGraph) instantiate(p pat, s Subst, rule string) Id {
	switch p.kind {
	case patVar:
		id, ok := s[p.v]
		if !ok {
			panic("egraph: rewrite " + rule + ": variable " + p.v.String() + " is unbound")
		}
		return g.find(id)
	case patAtom:
		return g.addNode(atomNode(p.op))
	default:
		args := make([]Id, len(p.args))
		for i, a := range p.args {
			args[i] = g.instantiate(a, s, rule)
		}
		return g.addNode(enode{op: p.op, args: args})
	}
}
