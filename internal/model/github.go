package model

// Step is a single GitHub Actions step.
type Step struct {
	Name            string
	Uses            string
	Run             string
	Env             map[string]string
	With            map[string]any
	If              string
	ContinueOnError bool
}

// WorkflowJob is a GitHub Actions job. ID is the sanitized key the job is
// published under in the workflow's jobs mapping.
type WorkflowJob struct {
	ID             string
	Name           string
	RunsOn         string
	Steps          []Step
	Needs          []string
	Env            map[string]string
	Container      map[string]any
	TimeoutMinutes int
	If             string
}

// Workflow is a complete GitHub Actions workflow. Jobs keep insertion order
// so the generated YAML lists them the way the source pipeline declared them.
type Workflow struct {
	Name string
	On   map[string]any
	Env  map[string]string
	Jobs []WorkflowJob
}

// AddJob appends a job, replacing any earlier job with the same ID.
func (w *Workflow) AddJob(job WorkflowJob) {
	for i := range w.Jobs {
		if w.Jobs[i].ID == job.ID {
			w.Jobs[i] = job
			return
		}
	}
	w.Jobs = append(w.Jobs, job)
}
