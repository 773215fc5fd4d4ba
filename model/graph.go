package model

// Graph is the arena of nodes discovered during a walk, indexed by absolute
// location. Insertion order is the deterministic walk order; identifier
// assignment and dedup tie-breaks depend on it.
type Graph struct {
	// Root is the node the walk started from, the first one added.
	Root *Node
	// Version is the maximum format version declared across all nodes.
	Version string

	nodes []*Node
	index map[string]*Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]*Node)}
}

// Add registers a node under its location. The first node added becomes the
// root. Adding a second node for an already registered location is a no-op;
// callers share the existing node via Lookup.
func (g *Graph) Add(node *Node) {
	key := node.Location.String()
	if _, ok := g.index[key]; ok {
		return
	}
	g.index[key] = node
	g.nodes = append(g.nodes, node)
	if g.Root == nil {
		g.Root = node
	}
}

// Lookup returns the node registered under the given location, or nil.
func (g *Graph) Lookup(location Location) *Node {
	return g.index[location.String()]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// References returns every outgoing reference of every node, in insertion
// order of the owning nodes and declaration order within each node.
func (g *Graph) References() []*Reference {
	var ret []*Reference
	for _, node := range g.nodes {
		ret = append(ret, node.Refs...)
	}
	return ret
}
