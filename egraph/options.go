package egraph

// Option configures an EGraph at construction time.
type Option func(*EGraph)

// WithAnalysis installs the constant-folding analysis. The analysis
// runs for every inserted node and is consulted again whenever a
// merge or repair gives a node's children new values.
func WithAnalysis(a Analysis) Option {
	return func(g *EGraph) {
		g.analysis = a
	}
}

// WithTermCtor installs the constructor used by extraction to
// rebuild host terms. Without it, operator nodes are rebuilt as
// [Node] values and atoms are returned as-is.
func WithTermCtor(c TermCtor) Option {
	return func(g *EGraph) {
		g.ctor = c
	}
}
