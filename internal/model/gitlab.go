package model

// Variable is a CI/CD variable declared at the top level of a pipeline.
type Variable struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Protected bool   `json:"protected"`
	Masked    bool   `json:"masked"`
	Expand    bool   `json:"expand"`
}

// Secret is a sensitive variable surfaced separately from plain variables.
type Secret struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // env, file, docker
	Description string `json:"description"`
}

// Job is a single GitLab CI job.
type Job struct {
	Name         string            `json:"name"`
	Stage        string            `json:"stage"`
	Image        string            `json:"image,omitempty"`
	Script       []string          `json:"script,omitempty"`
	BeforeScript []string          `json:"before_script,omitempty"`
	AfterScript  []string          `json:"after_script,omitempty"`
	Dependencies []string          `json:"dependencies"`
	Needs        []string          `json:"needs"`
	Variables    map[string]string `json:"variables,omitempty"`
	Artifacts    map[string]any    `json:"artifacts,omitempty"`
	Cache        map[string]any    `json:"cache,omitempty"`
	Retry        map[string]any    `json:"retry,omitempty"`
	Timeout      string            `json:"timeout,omitempty"`
	Only         map[string]any    `json:"only,omitempty"`
	Except       map[string]any    `json:"except,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	AllowFailure bool              `json:"allow_failure"`
	When         string            `json:"when"`
	Environment  string            `json:"environment,omitempty"`
	Rules        []map[string]any  `json:"rules,omitempty"`
}

// PipelineConfig is a parsed GitLab CI pipeline definition. Stage order in
// Stages is the execution order; Jobs keep the order they were declared in.
type PipelineConfig struct {
	Stages       []string       `json:"stages"`
	Variables    []Variable     `json:"variables"`
	Secrets      []Secret       `json:"secrets"`
	Jobs         []Job          `json:"jobs"`
	Image        string         `json:"image,omitempty"`
	BeforeScript []string       `json:"before_script,omitempty"`
	AfterScript  []string       `json:"after_script,omitempty"`
	Cache        map[string]any `json:"cache,omitempty"`
	Retry        map[string]any `json:"retry,omitempty"`
	Timeout      string         `json:"timeout,omitempty"`
	Workflow     map[string]any `json:"workflow,omitempty"`
	Include      []string       `json:"include,omitempty"`
}

// JobByName returns the job with the given name, or nil.
func (c *PipelineConfig) JobByName(name string) *Job {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i]
		}
	}
	return nil
}

// JobsByStage returns all jobs assigned to the given stage, in declaration order.
func (c *PipelineConfig) JobsByStage(stage string) []Job {
	var out []Job
	for _, j := range c.Jobs {
		if j.Stage == stage {
			out = append(out, j)
		}
	}
	return out
}
