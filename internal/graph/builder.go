package graph

import (
	"github.com/psarz/g2g-converter/internal/model"
)

// Builder populates a Graph from a pipeline configuration. It carries no
// state between calls: Build is a pure function of the config, and calling
// it twice on the same config produces two identical, independent graphs.
type Builder struct {
	cfg *model.PipelineConfig
}

// NewBuilder returns a builder for the given configuration.
func NewBuilder(cfg *model.PipelineConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build constructs a fresh graph: one node per job in declaration order,
// then dependency edges, then variable/secret metadata.
func (b *Builder) Build() *Graph {
	g := New()
	g.Stages = append(g.Stages, b.cfg.Stages...)

	b.addNodes(g)
	b.addEdges(g)
	b.extractVariablesAndSecrets(g)

	return g
}

func (b *Builder) addNodes(g *Graph) {
	for _, job := range b.cfg.Jobs {
		g.AddNode(Node{
			ID:           job.Name,
			Label:        job.Name,
			Stage:        job.Stage,
			Type:         jobType(job),
			AllowFailure: job.AllowFailure,
		})
	}
}

func (b *Builder) addEdges(g *Graph) {
	for _, job := range b.cfg.Jobs {
		for _, need := range job.Needs {
			g.AddEdge(Edge{Source: need, Target: job.Name, Type: EdgeNeeds})
		}
		for _, dep := range job.Dependencies {
			g.AddEdge(Edge{Source: dep, Target: job.Name, Type: EdgeArtifact})
		}

		// Jobs with no explicit dependencies run after the previous stage.
		if len(job.Needs) == 0 && len(job.Dependencies) == 0 {
			idx := stageIndex(b.cfg.Stages, job.Stage)
			if idx > 0 {
				prev := b.cfg.Stages[idx-1]
				for _, prevJob := range b.cfg.JobsByStage(prev) {
					g.AddEdge(Edge{Source: prevJob.Name, Target: job.Name, Type: EdgeDependsOn})
				}
			}
		}
	}
}

func (b *Builder) extractVariablesAndSecrets(g *Graph) {
	for _, v := range b.cfg.Variables {
		g.Variables[v.Name] = v.Value
	}
	// Job-level variables never shadow globals.
	for _, job := range b.cfg.Jobs {
		for name, value := range job.Variables {
			if _, ok := g.Variables[name]; !ok {
				g.Variables[name] = value
			}
		}
	}
	for _, s := range b.cfg.Secrets {
		g.Secrets = append(g.Secrets, s.Name)
	}
}

func jobType(job model.Job) string {
	switch job.When {
	case "manual":
		return JobManual
	case "delayed":
		return JobDelayed
	default:
		return JobRegular
	}
}

// stageIndex returns the position of stage in stages, or -1 when the stage
// is not declared. An unknown stage means no implicit predecessor.
func stageIndex(stages []string, stage string) int {
	for i, s := range stages {
		if s == stage {
			return i
		}
	}
	return -1
}
