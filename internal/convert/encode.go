package convert

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/psarz/g2g-converter/internal/model"
)

// Serialization views. Field order here fixes the key order of the
// generated workflow file.

type stepView struct {
	Name            string            `yaml:"name,omitempty"`
	Uses            string            `yaml:"uses,omitempty"`
	With            map[string]any    `yaml:"with,omitempty"`
	Run             string            `yaml:"run,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
	If              string            `yaml:"if,omitempty"`
	ContinueOnError bool              `yaml:"continue-on-error,omitempty"`
}

type jobView struct {
	Name           string            `yaml:"name"`
	RunsOn         string            `yaml:"runs-on"`
	Needs          []string          `yaml:"needs,omitempty"`
	Env            map[string]string `yaml:"env,omitempty"`
	TimeoutMinutes int               `yaml:"timeout-minutes,omitempty"`
	If             string            `yaml:"if,omitempty"`
	Container      map[string]any    `yaml:"container,omitempty"`
	Steps          []stepView        `yaml:"steps"`
}

type workflowView struct {
	Name string            `yaml:"name"`
	On   map[string]any    `yaml:"on"`
	Env  map[string]string `yaml:"env,omitempty"`
	Jobs orderedJobs       `yaml:"jobs"`
}

// orderedJobs marshals as a mapping that preserves job declaration order,
// which map types would not.
type orderedJobs []model.WorkflowJob

func (jobs orderedJobs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, job := range jobs {
		var key yaml.Node
		key.SetString(job.ID)

		var value yaml.Node
		if err := value.Encode(viewOfJob(job)); err != nil {
			return nil, fmt.Errorf("encode job %s: %w", job.ID, err)
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

func viewOfJob(job model.WorkflowJob) jobView {
	v := jobView{
		Name:           job.Name,
		RunsOn:         job.RunsOn,
		Needs:          job.Needs,
		Env:            job.Env,
		TimeoutMinutes: job.TimeoutMinutes,
		If:             job.If,
		Container:      job.Container,
	}
	for _, s := range job.Steps {
		v.Steps = append(v.Steps, stepView{
			Name:            s.Name,
			Uses:            s.Uses,
			With:            s.With,
			Run:             s.Run,
			Env:             s.Env,
			If:              s.If,
			ContinueOnError: s.ContinueOnError,
		})
	}
	return v
}

// EncodeYAML renders a workflow as GitHub Actions YAML.
func EncodeYAML(wf *model.Workflow) ([]byte, error) {
	if wf == nil {
		return nil, fmt.Errorf("workflow is nil")
	}
	view := workflowView{
		Name: wf.Name,
		On:   wf.On,
		Env:  wf.Env,
		Jobs: orderedJobs(wf.Jobs),
	}
	out, err := yaml.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	return out, nil
}
