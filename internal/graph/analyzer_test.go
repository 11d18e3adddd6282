package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func chainGraph(edges ...Edge) *Graph {
	g := New()
	seen := map[string]struct{}{}
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		g.AddNode(Node{ID: id, Label: id, Type: JobRegular})
	}
	for _, e := range edges {
		add(e.Source)
		add(e.Target)
	}
	for _, e := range edges {
		g.AddEdge(e)
	}
	return g
}

func TestJobDependenciesDirectAndTransitive(t *testing.T) {
	g := chainGraph(
		Edge{Source: "a", Target: "b", Type: EdgeNeeds},
		Edge{Source: "b", Target: "c", Type: EdgeNeeds},
		Edge{Source: "x", Target: "c", Type: EdgeArtifact},
	)
	deps := NewAnalyzer(g).JobDependencies("c")

	require.Equal(t, []string{"b", "x"}, deps.Direct)
	require.Equal(t, []string{"b", "a", "x"}, deps.Transitive)
}

func TestJobDependenciesUnknownJob(t *testing.T) {
	g := chainGraph(Edge{Source: "a", Target: "b", Type: EdgeNeeds})
	deps := NewAnalyzer(g).JobDependencies("zzz")

	require.Empty(t, deps.Direct)
	require.Empty(t, deps.Transitive)
	require.NotNil(t, deps.Direct)
	require.NotNil(t, deps.Transitive)
}

func TestJobDependenciesCycleExcludesSelf(t *testing.T) {
	g := chainGraph(
		Edge{Source: "a", Target: "b", Type: EdgeNeeds},
		Edge{Source: "b", Target: "a", Type: EdgeNeeds},
	)
	deps := NewAnalyzer(g).JobDependencies("a")

	require.Equal(t, []string{"b"}, deps.Direct)
	require.Equal(t, []string{"b"}, deps.Transitive)
}

func TestDetectCyclesAcyclic(t *testing.T) {
	g := chainGraph(
		Edge{Source: "a", Target: "b", Type: EdgeNeeds},
		Edge{Source: "b", Target: "c", Type: EdgeNeeds},
	)
	cycles := NewAnalyzer(g).DetectCycles()
	require.Empty(t, cycles)
	require.NotNil(t, cycles)
}

func TestDetectCyclesTriangle(t *testing.T) {
	g := chainGraph(
		Edge{Source: "a", Target: "b", Type: EdgeNeeds},
		Edge{Source: "b", Target: "c", Type: EdgeNeeds},
		Edge{Source: "c", Target: "a", Type: EdgeNeeds},
	)
	cycles := NewAnalyzer(g).DetectCycles()

	require.Len(t, cycles, 1)
	require.Equal(t, []string{"a", "b", "c", "a"}, cycles[0])
}

func TestDetectCyclesSelfLoop(t *testing.T) {
	g := chainGraph(Edge{Source: "a", Target: "a", Type: EdgeNeeds})
	cycles := NewAnalyzer(g).DetectCycles()

	require.Len(t, cycles, 1)
	require.Equal(t, []string{"a", "a"}, cycles[0])
}

func TestCriticalPathLinearChain(t *testing.T) {
	g := chainGraph(
		Edge{Source: "build", Target: "test", Type: EdgeNeeds},
		Edge{Source: "test", Target: "deploy", Type: EdgeNeeds},
	)
	require.Equal(t, []string{"build", "test", "deploy"}, NewAnalyzer(g).CriticalPath())
}

func TestCriticalPathRootSelection(t *testing.T) {
	// Roots are nodes that never appear as an edge target; the longest
	// chain from any of them wins, not the shortest terminal suffix.
	g := chainGraph(
		Edge{Source: "build", Target: "test", Type: EdgeNeeds},
		Edge{Source: "test", Target: "deploy", Type: EdgeNeeds},
		Edge{Source: "lint", Target: "deploy", Type: EdgeNeeds},
	)
	require.Equal(t, []string{"build", "test", "deploy"}, NewAnalyzer(g).CriticalPath())
}

func TestCriticalPathFirstLongestWins(t *testing.T) {
	g := chainGraph(
		Edge{Source: "a", Target: "b", Type: EdgeNeeds},
		Edge{Source: "a", Target: "c", Type: EdgeNeeds},
	)
	require.Equal(t, []string{"a", "b"}, NewAnalyzer(g).CriticalPath())
}

func TestCriticalPathEmptyGraph(t *testing.T) {
	path := NewAnalyzer(New()).CriticalPath()
	require.Empty(t, path)
	require.NotNil(t, path)
}

func TestCriticalPathIsolatedNode(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "only", Label: "only", Type: JobRegular})
	require.Equal(t, []string{"only"}, NewAnalyzer(g).CriticalPath())
}

func TestCriticalPathAllNodesOnCycle(t *testing.T) {
	g := chainGraph(
		Edge{Source: "a", Target: "b", Type: EdgeNeeds},
		Edge{Source: "b", Target: "a", Type: EdgeNeeds},
	)
	path := NewAnalyzer(g).CriticalPath()
	require.Empty(t, path)
	require.NotNil(t, path)
}

func TestCriticalPathCyclicTerminates(t *testing.T) {
	// A root feeding into a cycle must terminate and report the chain up
	// to the point the cycle would repeat.
	g := chainGraph(
		Edge{Source: "start", Target: "a", Type: EdgeNeeds},
		Edge{Source: "a", Target: "b", Type: EdgeNeeds},
		Edge{Source: "b", Target: "a", Type: EdgeNeeds},
	)
	require.Equal(t, []string{"start", "a", "b"}, NewAnalyzer(g).CriticalPath())
}

func TestCriticalPathDanglingEndpoints(t *testing.T) {
	// Edges may reference jobs that were never declared; the walk still
	// follows them.
	g := New()
	g.AddNode(Node{ID: "a", Label: "a", Type: JobRegular})
	g.AddEdge(Edge{Source: "a", Target: "ghost", Type: EdgeNeeds})
	g.AddEdge(Edge{Source: "ghost", Target: "ghost2", Type: EdgeNeeds})

	require.Equal(t, []string{"a", "ghost", "ghost2"}, NewAnalyzer(g).CriticalPath())
}

func TestMetricsEmptyGraph(t *testing.T) {
	m := NewAnalyzer(New()).Metrics()
	require.Equal(t, Metrics{}, m)
}

func TestMetricsSummarize(t *testing.T) {
	g := chainGraph(
		Edge{Source: "build", Target: "test", Type: EdgeNeeds},
		Edge{Source: "test", Target: "deploy", Type: EdgeNeeds},
	)
	g.Stages = []string{"build", "test", "deploy"}
	g.Variables["ENV"] = "prod"
	g.Secrets = []string{"TOKEN"}

	m := NewAnalyzer(g).Metrics()
	require.Equal(t, 3, m.TotalNodes)
	require.Equal(t, 2, m.TotalEdges)
	require.Equal(t, 3, m.TotalStages)
	require.Equal(t, 1, m.TotalVariables)
	require.Equal(t, 1, m.TotalSecrets)
	require.Equal(t, 0, m.Cycles)
	require.Equal(t, 3, m.CriticalPathLength)
	require.InDelta(t, 2.0/3.0, m.AvgJobDependencies, 1e-9)
}
