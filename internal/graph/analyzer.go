package graph

// Analyzer answers dependency questions about a built graph. The graph is
// treated as read-only; every traversal carries an explicit termination
// guard so cyclic or malformed input can never recurse unboundedly.
type Analyzer struct {
	g *Graph
}

// NewAnalyzer returns an analyzer over g.
func NewAnalyzer(g *Graph) *Analyzer {
	return &Analyzer{g: g}
}

// Dependencies are the direct and transitive predecessors of one job.
type Dependencies struct {
	Direct     []string `json:"direct"`
	Transitive []string `json:"transitive"`
}

// JobDependencies returns the jobs that must complete before the named job.
// Direct lists edge sources targeting the job in edge-insertion order.
// Transitive is the depth-first closure in visit order, each job at most
// once, excluding the job itself.
func (a *Analyzer) JobDependencies(job string) Dependencies {
	deps := Dependencies{Direct: []string{}, Transitive: []string{}}

	for _, e := range a.g.Edges {
		if e.Target == job {
			deps.Direct = append(deps.Direct, e.Source)
		}
	}

	visited := map[string]struct{}{job: {}}
	var collect func(id string)
	collect = func(id string) {
		for _, e := range a.g.Edges {
			if e.Target != id {
				continue
			}
			if _, ok := visited[e.Source]; ok {
				continue
			}
			visited[e.Source] = struct{}{}
			deps.Transitive = append(deps.Transitive, e.Source)
			collect(e.Source)
		}
	}
	collect(job)

	return deps
}

// DetectCycles finds circular dependencies via depth-first search with a
// recursion stack. Each back edge produces one reported cycle: the current
// path from the first occurrence of the back edge's target, closed by
// repeating that target. Overlapping cycles may be reported more than once.
func (a *Analyzer) DetectCycles() [][]string {
	cycles := [][]string{}
	visited := make(map[string]struct{})
	onStack := make(map[string]struct{})
	var path []string

	var visit func(id string)
	visit = func(id string) {
		visited[id] = struct{}{}
		onStack[id] = struct{}{}
		path = append(path, id)

		for _, e := range a.g.Edges {
			if e.Source != id {
				continue
			}
			if _, seen := visited[e.Target]; !seen {
				visit(e.Target)
			} else if _, open := onStack[e.Target]; open {
				start := 0
				for i, p := range path {
					if p == e.Target {
						start = i
						break
					}
				}
				cycle := append([]string{}, path[start:]...)
				cycle = append(cycle, e.Target)
				cycles = append(cycles, cycle)
			}
		}

		path = path[:len(path)-1]
		delete(onStack, id)
	}

	for _, n := range a.g.Nodes {
		if _, seen := visited[n.ID]; !seen {
			visit(n.ID)
		}
	}

	return cycles
}

// CriticalPath returns the longest dependency chain by node count. The
// search starts from every node that never appears as an edge target and
// follows outgoing edges depth-first; the first longest path found wins.
// An empty slice is returned when no such starting node exists (for
// example, when every node sits on a cycle).
//
// Cycles terminate the search, not the process: a node already on the
// current path ends that path, and path length is capped at the number of
// distinct vertices. Neither guard changes the result on acyclic input.
func (a *Analyzer) CriticalPath() []string {
	if len(a.g.Nodes) == 0 {
		return []string{}
	}

	targets := make(map[string]struct{})
	vertices := make(map[string]struct{}, len(a.g.Nodes))
	for _, n := range a.g.Nodes {
		vertices[n.ID] = struct{}{}
	}
	for _, e := range a.g.Edges {
		targets[e.Target] = struct{}{}
		vertices[e.Source] = struct{}{}
		vertices[e.Target] = struct{}{}
	}

	var roots []string
	for _, n := range a.g.Nodes {
		if _, ok := targets[n.ID]; !ok {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) == 0 {
		return []string{}
	}

	limit := len(vertices)
	longest := []string{}
	onPath := make(map[string]struct{})

	var walk func(id string, path []string)
	walk = func(id string, path []string) {
		if _, open := onPath[id]; open || len(path) >= limit {
			if len(path) > len(longest) {
				longest = append([]string{}, path...)
			}
			return
		}
		onPath[id] = struct{}{}
		path = append(path, id)

		extended := false
		for _, e := range a.g.Edges {
			if e.Source != id {
				continue
			}
			extended = true
			walk(e.Target, path)
		}
		if !extended && len(path) > len(longest) {
			longest = append([]string{}, path...)
		}

		delete(onPath, id)
	}

	for _, root := range roots {
		walk(root, nil)
	}

	return longest
}

// Metrics summarizes a graph.
type Metrics struct {
	TotalNodes         int     `json:"total_nodes"`
	TotalEdges         int     `json:"total_edges"`
	TotalStages        int     `json:"total_stages"`
	TotalVariables     int     `json:"total_variables"`
	TotalSecrets       int     `json:"total_secrets"`
	Cycles             int     `json:"cycles"`
	CriticalPathLength int     `json:"critical_path_length"`
	AvgJobDependencies float64 `json:"avg_job_dependencies"`
}

// Metrics computes summary metrics over the graph. The average direct
// dependency count is zero for an empty graph.
func (a *Analyzer) Metrics() Metrics {
	m := Metrics{
		TotalNodes:         len(a.g.Nodes),
		TotalEdges:         len(a.g.Edges),
		TotalStages:        len(a.g.Stages),
		TotalVariables:     len(a.g.Variables),
		TotalSecrets:       len(a.g.Secrets),
		Cycles:             len(a.DetectCycles()),
		CriticalPathLength: len(a.CriticalPath()),
	}
	if len(a.g.Nodes) > 0 {
		total := 0
		for _, n := range a.g.Nodes {
			total += len(a.JobDependencies(n.ID).Direct)
		}
		m.AvgJobDependencies = float64(total) / float64(len(a.g.Nodes))
	}
	return m
}
