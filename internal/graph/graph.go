// Package graph builds and analyzes job dependency graphs for parsed
// pipeline configurations. A graph is constructed fresh per analysis by a
// Builder and then queried read-only through an Analyzer; nothing in this
// package keeps state across requests.
package graph

// Node is one job in the dependency graph.
type Node struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Stage        string `json:"stage"`
	Type         string `json:"type"` // regular, manual, delayed
	AllowFailure bool   `json:"allowFailure"`
}

// Edge is a directed arc: Source must complete (or its artifact must exist)
// before Target starts.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"` // needs, artifact, depends_on
}

// Edge types.
const (
	EdgeNeeds     = "needs"
	EdgeArtifact  = "artifact"
	EdgeDependsOn = "depends_on"
)

// Node types.
const (
	JobRegular = "regular"
	JobManual  = "manual"
	JobDelayed = "delayed"
)

type edgeKey struct {
	source string
	target string
}

// Graph owns the node and edge sets plus the variable/secret metadata
// extracted alongside them. Nodes and edges keep insertion order; inserting
// a duplicate node ID or a duplicate (source,target) pair is a no-op, the
// first insertion wins.
type Graph struct {
	Nodes     []Node
	Edges     []Edge
	Variables map[string]string
	Secrets   []string
	Stages    []string

	nodeIndex map[string]struct{}
	edgeIndex map[edgeKey]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Variables: make(map[string]string),
		nodeIndex: make(map[string]struct{}),
		edgeIndex: make(map[edgeKey]struct{}),
	}
}

// AddNode inserts a node unless one with the same ID already exists.
// It reports whether the node was inserted.
func (g *Graph) AddNode(n Node) bool {
	if _, ok := g.nodeIndex[n.ID]; ok {
		return false
	}
	g.nodeIndex[n.ID] = struct{}{}
	g.Nodes = append(g.Nodes, n)
	return true
}

// AddEdge inserts an edge unless one with the same (source, target) pair
// already exists, regardless of type. It reports whether the edge was
// inserted. Edges may reference IDs with no corresponding node; the
// analyzer tolerates dangling endpoints.
func (g *Graph) AddEdge(e Edge) bool {
	key := edgeKey{source: e.Source, target: e.Target}
	if _, ok := g.edgeIndex[key]; ok {
		return false
	}
	g.edgeIndex[key] = struct{}{}
	g.Edges = append(g.Edges, e)
	return true
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// Snapshot is the wire form of a graph. Slices are never nil so the JSON
// encoding always carries arrays, matching the external contract.
type Snapshot struct {
	Nodes     []Node            `json:"nodes"`
	Edges     []Edge            `json:"edges"`
	Variables map[string]string `json:"variables"`
	Secrets   []string          `json:"secrets"`
	Stages    []string          `json:"stages"`
}

// Snapshot returns a serializable copy of the graph.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Nodes:     append([]Node{}, g.Nodes...),
		Edges:     append([]Edge{}, g.Edges...),
		Variables: make(map[string]string, len(g.Variables)),
		Secrets:   append([]string{}, g.Secrets...),
		Stages:    append([]string{}, g.Stages...),
	}
	for k, v := range g.Variables {
		s.Variables[k] = v
	}
	return s
}
