package egraph

import (
	"fmt"
	"slices"
)

type patKind uint8

const (
	patVar patKind = iota
	patAtom
	patApp
)

// pat is a compiled pattern: a term tree whose leaves may be
// variables.
type pat struct {
	kind patKind
	v    Var  // patVar
	op   any  // patAtom value or patApp head
	args []pat
}

func compilePattern(x any) pat {
	switch t := x.(type) {
	case Var:
		return pat{kind: patVar, v: t}
	case App:
		children := t.Children()
		args := make([]pat, len(children))
		for i, c := range children {
			args[i] = compilePattern(c)
		}
		return pat{kind: patApp, op: t.Head(), args: args}
	default:
		return pat{kind: patAtom, op: x}
	}
}

// patVars appends the distinct variables of p to into, in first
// occurrence order.
func (p pat) patVars(into []Var) []Var {
	switch p.kind {
	case patVar:
		if !slices.Contains(into, p.v) {
			into = append(into, p.v)
		}
	case patApp:
		for _, a := range p.args {
			into = a.patVars(into)
		}
	}
	return into
}

// DynFunc computes a rewrite right-hand side at apply time. The
// binding maps each left-hand-side variable to the minimum-cost term
// of the class it matched. Returning false skips this application.
type DynFunc func(binding map[Var]any) (any, bool)

// Rewrite is a named rewrite rule: a left-hand-side pattern and
// either a right-hand-side pattern or a DynFunc. Names are used only
// for diagnostics.
type Rewrite struct {
	name string
	lhs  pat
	rhs  pat
	dyn  DynFunc
	vars []Var
}

// NewRewrite builds a rewrite rule. lhs is a pattern term: a host
// term that may contain [Var] leaves. rhs is another pattern term,
// or a [DynFunc] (a plain func of the same signature also works). A
// static rhs mentioning a variable that the lhs does not bind panics.
func NewRewrite(lhs, rhs any, name string) Rewrite {
	l := compilePattern(lhs)
	rw := Rewrite{name: name, lhs: l, vars: l.patVars(nil)}
	switch f := rhs.(type) {
	case DynFunc:
		rw.dyn = f
	case func(map[Var]any) (any, bool):
		rw.dyn = f
	default:
		r := compilePattern(rhs)
		for _, v := range r.patVars(nil) {
			if !slices.Contains(rw.vars, v) {
				panic(fmt.Sprintf("egraph: rewrite %q: right-hand side variable %v is not bound by the left-hand side", name, v))
			}
		}
		rw.rhs = r
	}
	return rw
}

// Name returns the rule's diagnostic name.
func (r Rewrite) Name() string {
	return r.name
}

// registerPatternArity pins the arity of every head a pattern uses,
// so that a rule whose arity disagrees with the terms already in the
// graph fails loudly rather than silently never matching.
func (g *EGraph) registerPatternArity(p pat) {
	if p.kind != patApp {
		return
	}
	g.checkArity(p.op, len(p.args))
	for _, a := range p.args {
		g.registerPatternArity(a)
	}
}
