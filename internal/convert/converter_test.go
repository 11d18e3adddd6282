package convert

import (
	"reflect"
	"strings"
	"testing"

	"github.com/psarz/g2g-converter/internal/model"
)

func TestConvertWorkflowDefaults(t *testing.T) {
	wf := Convert(&model.PipelineConfig{})
	if wf.Name != "CI/CD Pipeline" {
		t.Fatalf("name = %q", wf.Name)
	}
	if _, ok := wf.On["push"]; !ok {
		t.Fatalf("default push trigger missing: %v", wf.On)
	}
	if _, ok := wf.On["pull_request"]; !ok {
		t.Fatalf("default pull_request trigger missing: %v", wf.On)
	}
}

func TestConvertWorkflowRules(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Workflow: map[string]any{
			"name": "release",
			"rules": []any{
				map[string]any{"if": `$CI_PIPELINE_SOURCE == "schedule"`},
			},
		},
	})
	if wf.Name != "release" {
		t.Fatalf("name = %q", wf.Name)
	}
	if _, ok := wf.On["schedule"]; !ok {
		t.Fatalf("schedule trigger missing: %v", wf.On)
	}
	if _, ok := wf.On["push"]; ok {
		t.Fatalf("unmatched trigger present: %v", wf.On)
	}
}

func TestConvertGlobalVariablesSkipSecrets(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Variables: []model.Variable{
			{Name: "ENV", Value: "prod"},
			{Name: "TOKEN", Value: "abc", Masked: true},
			{Name: "KEY", Value: "xyz", Protected: true},
		},
	})
	if !reflect.DeepEqual(wf.Env, map[string]string{"ENV": "prod"}) {
		t.Fatalf("env = %v", wf.Env)
	}
}

func TestConvertJobNeedsFallBackToDependencies(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Jobs: []model.Job{
			{Name: "deploy job", Stage: "deploy", Dependencies: []string{"build job"}},
		},
	})
	job := wf.Jobs[0]
	if job.ID != "deploy_job" {
		t.Fatalf("job id = %q", job.ID)
	}
	if !reflect.DeepEqual(job.Needs, []string{"build_job"}) {
		t.Fatalf("needs = %v", job.Needs)
	}
}

func TestConvertManualJobSkipped(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Jobs: []model.Job{{Name: "release", Stage: "deploy", When: "manual"}},
	})
	if wf.Jobs[0].If != "false" {
		t.Fatalf("manual job condition = %q", wf.Jobs[0].If)
	}
}

func TestConvertRuleCondition(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Jobs: []model.Job{{
			Name:  "deploy",
			Rules: []map[string]any{{"if": `$CI_COMMIT_BRANCH == "main"`}},
		}},
	})
	want := `github.ref_name == "'main'"`
	if wf.Jobs[0].If != want {
		t.Fatalf("condition = %q, want %q", wf.Jobs[0].If, want)
	}
}

func TestConvertOnlyExceptBranches(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Jobs: []model.Job{
			{Name: "a", Only: map[string]any{"branches": []any{"main", "develop"}}},
			{Name: "b", Except: map[string]any{"branches": []any{"main"}}},
		},
	})
	if wf.Jobs[0].If != "github.ref_name == 'main' || github.ref_name == 'develop'" {
		t.Fatalf("only condition = %q", wf.Jobs[0].If)
	}
	if wf.Jobs[1].If != "!(github.ref_name == 'main')" {
		t.Fatalf("except condition = %q", wf.Jobs[1].If)
	}
}

func TestConvertStepsOrder(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Jobs: []model.Job{{
			Name:         "build",
			Image:        "python:3.9",
			BeforeScript: []string{"pip install -r requirements.txt"},
			Script:       []string{"pytest", "coverage report"},
			AfterScript:  []string{"cleanup"},
			AllowFailure: true,
			Artifacts:    map[string]any{"paths": []any{"dist/"}, "expire_in": "7 days"},
		}},
	})
	steps := wf.Jobs[0].Steps
	if len(steps) != 6 {
		t.Fatalf("expected 6 steps, got %d: %+v", len(steps), steps)
	}
	if steps[0].Uses != "actions/checkout@v4" {
		t.Fatalf("first step = %+v", steps[0])
	}
	if steps[1].Uses != "actions/setup-python@v4" {
		t.Fatalf("setup step = %+v", steps[1])
	}
	if got := steps[1].With["python-version"]; got != "3.9" {
		t.Fatalf("python version = %v", got)
	}
	if steps[2].Run != "pip install -r requirements.txt" {
		t.Fatalf("before step = %+v", steps[2])
	}
	if steps[3].Run != "pytest\ncoverage report" || !steps[3].ContinueOnError {
		t.Fatalf("script step = %+v", steps[3])
	}
	if !steps[4].ContinueOnError {
		t.Fatalf("after_script must not fail the job: %+v", steps[4])
	}
	if steps[5].Uses != "actions/upload-artifact@v3" {
		t.Fatalf("artifact step = %+v", steps[5])
	}
	if steps[5].With["retention-days"] != "7 days" {
		t.Fatalf("retention = %v", steps[5].With["retention-days"])
	}
}

func TestSetupStepsVersionExtraction(t *testing.T) {
	steps := setupSteps("node:18.17.1-alpine")
	if len(steps) != 1 || steps[0].Uses != "actions/setup-node@v4" {
		t.Fatalf("steps = %+v", steps)
	}
	if steps[0].With["node-version"] != "18.17.1" {
		t.Fatalf("node version = %v", steps[0].With["node-version"])
	}
	if setupSteps("alpine:latest") != nil {
		t.Fatalf("unexpected setup step for plain image")
	}
}

func TestDetermineRunner(t *testing.T) {
	cases := []struct {
		job  model.Job
		want string
	}{
		{model.Job{Tags: []string{"WINDOWS"}}, "windows-latest"},
		{model.Job{Tags: []string{"custom"}, Image: "docker:dind"}, "ubuntu-latest"},
		{model.Job{Image: "macos-runner"}, "macos-latest"},
		{model.Job{}, "ubuntu-latest"},
	}
	for _, c := range cases {
		if got := determineRunner(c.job); got != c.want {
			t.Fatalf("determineRunner(%+v) = %q, want %q", c.job, got, c.want)
		}
	}
}

func TestParseTimeout(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1h", 60},
		{"2H", 120},
		{"30m", 30},
		{"3600s", 60},
		{"45", 45},
		{"", 360},
		{"soon", 360},
	}
	for _, c := range cases {
		if got := parseTimeout(c.in); got != c.want {
			t.Fatalf("parseTimeout(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSanitizeJobID(t *testing.T) {
	if got := sanitizeJobID("deploy to prod!"); got != "deploy_to_prod_" {
		t.Fatalf("sanitized = %q", got)
	}
	long := strings.Repeat("a", 300)
	if got := sanitizeJobID(long); len(got) != 250 {
		t.Fatalf("long id length = %d", len(got))
	}
}

func TestEncodeYAMLPreservesJobOrder(t *testing.T) {
	wf := Convert(&model.PipelineConfig{
		Stages: []string{"build", "test"},
		Jobs: []model.Job{
			{Name: "zeta", Stage: "build", Script: []string{"echo z"}},
			{Name: "alpha", Stage: "test", Script: []string{"echo a"}, Needs: []string{"zeta"}},
		},
	})
	out, err := EncodeYAML(wf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "name: CI/CD Pipeline") {
		t.Fatalf("missing workflow name:\n%s", s)
	}
	zeta := strings.Index(s, "zeta:")
	alpha := strings.Index(s, "alpha:")
	if zeta < 0 || alpha < 0 || zeta > alpha {
		t.Fatalf("job order lost (zeta=%d alpha=%d):\n%s", zeta, alpha, s)
	}
	if !strings.Contains(s, "runs-on: ubuntu-latest") {
		t.Fatalf("missing runs-on:\n%s", s)
	}
	if !strings.Contains(s, "- zeta") {
		t.Fatalf("missing needs entry:\n%s", s)
	}
}

func TestEncodeYAMLNilWorkflow(t *testing.T) {
	if _, err := EncodeYAML(nil); err == nil {
		t.Fatalf("expected error for nil workflow")
	}
}
