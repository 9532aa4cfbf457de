package egraph

import (
	"bytes"
	"fmt"
)

// MarshalMermaid renders the e-graph as a Mermaid diagram: one
// subgraph per class holding a vertex per member node, and an edge
// from every node to the class of each of its children. The output
// is deterministic: classes ascend by id and members keep insertion
// order. Useful for eyeballing small graphs while debugging rules.
func (g *EGraph) MarshalMermaid() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph TD\n")
	for _, id := range g.classIDs() {
		c := g.classes[id]
		fmt.Fprintf(&buf, "  subgraph c%d\n", id)
		for i, n := range c.nodes {
			fmt.Fprintf(&buf, "    c%dn%d[%s]\n", id, i, nodeLabel(n))
		}
		fmt.Fprintf(&buf, "  end\n")
	}
	for _, id := range g.classIDs() {
		for i, n := range g.classes[id].nodes {
			for _, a := range n.args {
				fmt.Fprintf(&buf, "  c%dn%d-->c%d\n", id, i, g.find(a))
			}
		}
	}
	return buf.Bytes(), nil
}

func nodeLabel(n enode) string {
	if n.leaf {
		return fmt.Sprintf("%v", n.op)
	}
	return fmt.Sprintf("%v/%d", n.op, len(n.args))
}
