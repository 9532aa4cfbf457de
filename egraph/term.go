// Package egraph implements an e-graph: a congruence-closed
// union-find over hash-consed expression nodes, together with a
// pattern matcher, an equality-saturation rewrite driver and a
// cost-directed extractor.
//
// Host expressions are opaque to the package. A term is any Go
// value: values implementing [App] are operator applications, and
// everything else is an atom, a leaf compared by equality. Atoms and
// operator heads must be comparable and hashable; passing a value
// whose dynamic type is not comparable panics.
//
// An EGraph must not be used concurrently. All operations are
// synchronous and run to completion.
package egraph

import "strings"

// App is implemented by host terms that represent an operator
// application. Any term value that does not implement App is
// treated as an atom.
type App interface {
	// Head returns the operator tag. Tags are compared by equality;
	// the arity of a tag is fixed by its first use.
	Head() any
	// Children returns the ordered child terms.
	Children() []any
}

// Node is a generic operator application. It is the output of the
// default term constructor used by extraction, and a convenient App
// implementation for hosts that don't have their own term types.
type Node struct {
	Op   any
	Args []any
}

// Head implements App.
func (n Node) Head() any { return n.Op }

// Children implements App.
func (n Node) Children() []any { return n.Args }

// Var is a named pattern variable. A Var may appear anywhere a child
// term may appear inside a rewrite pattern; it may not be added to
// an e-graph as a term. Two Vars with the same name are the same
// variable, and a variable occurring twice in one pattern must bind
// the same e-class.
type Var string

// String returns the variable in its conventional ?name rendering.
func (v Var) String() string { return "?" + string(v) }

// Vars returns one Var per whitespace-separated name in s.
func Vars(s string) []Var {
	fields := strings.Fields(s)
	vs := make([]Var, len(fields))
	for i, f := range fields {
		vs[i] = Var(f)
	}
	return vs
}

// TermCtor builds a host term from an operator head and already
// reconstructed child terms. Extraction calls it for every operator
// node it materializes; atoms are always returned as-is.
type TermCtor func(head any, children []any) any

// Analysis folds constants. It is called with a nil args slice for
// an atom, and with the folded values of all children for an
// operator node whose children all have folded values. Returning
// false means the node has no folded value.
type Analysis func(op any, args []any) (any, bool)

func defaultCtor(head any, children []any) any {
	return Node{Op: head, Args: children}
}
