// Package convert maps a parsed GitLab CI pipeline onto an equivalent
// GitHub Actions workflow.
package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/psarz/g2g-converter/internal/model"
)

const defaultTimeoutMinutes = 360

// runnerMapping maps GitLab runner tags and image hints to GitHub runners.
var runnerMapping = []struct {
	key    string
	runner string
}{
	{"linux", "ubuntu-latest"},
	{"linux-docker", "ubuntu-latest"},
	{"windows", "windows-latest"},
	{"macos", "macos-latest"},
	{"docker", "ubuntu-latest"},
}

// setupMapping maps image hints to actions/setup-* steps with default versions.
var setupMapping = []struct {
	lang     string
	action   string
	versions map[string]string
}{
	{"python", "setup-python", map[string]string{"python-version": "3.11"}},
	{"node", "setup-node", map[string]string{"node-version": "18"}},
	{"ruby", "setup-ruby", map[string]string{"ruby-version": "3.2"}},
	{"go", "setup-go", map[string]string{"go-version": "1.21"}},
	{"java", "setup-java", map[string]string{"java-version": "17"}},
}

var (
	versionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)
	invalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

const maxJobIDLength = 250

// Convert builds a GitHub Actions workflow from a pipeline configuration.
// It is a pure function: no state is carried between calls.
func Convert(cfg *model.PipelineConfig) *model.Workflow {
	wf := &model.Workflow{
		Name: workflowName(cfg),
		On:   convertTriggers(cfg),
		Env:  convertGlobalVariables(cfg),
	}
	for _, job := range cfg.Jobs {
		wf.AddJob(convertJob(job))
	}
	return wf
}

func workflowName(cfg *model.PipelineConfig) string {
	if name, ok := cfg.Workflow["name"].(string); ok && name != "" {
		return name
	}
	return "CI/CD Pipeline"
}

func convertTriggers(cfg *model.PipelineConfig) map[string]any {
	rules, _ := cfg.Workflow["rules"].([]any)
	if len(rules) == 0 {
		return map[string]any{
			"push":         map[string]any{"branches": []string{"main", "develop", "**"}},
			"pull_request": map[string]any{"branches": []string{"main", "develop"}},
		}
	}

	triggers := map[string]any{}
	for _, r := range rules {
		rule, ok := r.(map[string]any)
		if !ok {
			continue
		}
		switch rule["if"] {
		case `$CI_PIPELINE_SOURCE == "push"`:
			triggers["push"] = map[string]any{"branches": []string{"main", "**"}}
		case `$CI_PIPELINE_SOURCE == "pull_request"`:
			triggers["pull_request"] = map[string]any{"branches": []string{"main"}}
		case `$CI_PIPELINE_SOURCE == "schedule"`:
			triggers["schedule"] = []any{map[string]any{"cron": "0 0 * * *"}}
		}
	}
	if len(triggers) == 0 {
		return map[string]any{
			"push":         map[string]any{"branches": []string{"main"}},
			"pull_request": map[string]any{},
		}
	}
	return triggers
}

// convertGlobalVariables exposes unmasked, unprotected variables as workflow
// env; the rest belong in repository secrets, not in the generated file.
func convertGlobalVariables(cfg *model.PipelineConfig) map[string]string {
	env := map[string]string{}
	for _, v := range cfg.Variables {
		if !v.Masked && !v.Protected {
			env[v.Name] = v.Value
		}
	}
	return env
}

func convertJob(job model.Job) model.WorkflowJob {
	needs := job.Needs
	if len(needs) == 0 {
		needs = job.Dependencies
	}

	gh := model.WorkflowJob{
		ID:     sanitizeJobID(job.Name),
		Name:   job.Name,
		RunsOn: determineRunner(job),
		Needs:  sanitizeNeeds(needs),
		Env:    job.Variables,
		If:     convertJobCondition(job),
		Steps:  convertSteps(job),
	}
	if job.Timeout != "" {
		gh.TimeoutMinutes = parseTimeout(job.Timeout)
	}
	if job.Image != "" {
		gh.Container = map[string]any{
			"image":   job.Image,
			"options": "--cpus 1 --memory 2gb",
		}
	}
	return gh
}

func determineRunner(job model.Job) string {
	for _, tag := range job.Tags {
		for _, m := range runnerMapping {
			if strings.ToLower(tag) == m.key {
				return m.runner
			}
		}
	}
	if job.Image != "" {
		image := strings.ToLower(job.Image)
		for _, m := range runnerMapping {
			if strings.Contains(image, m.key) {
				return m.runner
			}
		}
	}
	return "ubuntu-latest"
}

func convertSteps(job model.Job) []model.Step {
	steps := []model.Step{{
		Name: "Checkout repository",
		Uses: "actions/checkout@v4",
	}}

	steps = append(steps, setupSteps(job.Image)...)

	if len(job.BeforeScript) > 0 {
		steps = append(steps, model.Step{
			Name: "Run before_script",
			Run:  strings.Join(job.BeforeScript, "\n"),
		})
	}
	if len(job.Script) > 0 {
		steps = append(steps, model.Step{
			Name:            fmt.Sprintf("Run %s", job.Name),
			Run:             strings.Join(job.Script, "\n"),
			ContinueOnError: job.AllowFailure,
		})
	}
	if len(job.AfterScript) > 0 {
		steps = append(steps, model.Step{
			Name:            "Run after_script",
			Run:             strings.Join(job.AfterScript, "\n"),
			ContinueOnError: true,
		})
	}

	if paths := artifactPaths(job.Artifacts); len(paths) > 0 {
		retention := "30"
		if expire, ok := job.Artifacts["expire_in"]; ok {
			retention = fmt.Sprintf("%v", expire)
		}
		steps = append(steps, model.Step{
			Name: "Upload artifacts",
			Uses: "actions/upload-artifact@v3",
			With: map[string]any{
				"name":           fmt.Sprintf("%s-artifacts", job.Name),
				"path":           strings.Join(paths, "\n"),
				"retention-days": retention,
			},
		})
	}

	return steps
}

func artifactPaths(artifacts map[string]any) []string {
	raw, ok := artifacts["paths"].([]any)
	if !ok {
		return nil
	}
	var paths []string
	for _, p := range raw {
		if s, ok := p.(string); ok {
			paths = append(paths, s)
		}
	}
	return paths
}

func setupSteps(image string) []model.Step {
	if image == "" {
		return nil
	}
	lower := strings.ToLower(image)
	for _, m := range setupMapping {
		if !strings.Contains(lower, m.lang) {
			continue
		}
		with := make(map[string]any, len(m.versions))
		for key, def := range m.versions {
			with[key] = def
			if matches := versionPattern.FindAllString(image, -1); len(matches) > 0 {
				with[key] = matches[len(matches)-1]
			}
		}
		return []model.Step{{
			Name: fmt.Sprintf("Setup %s", strings.ToUpper(m.lang[:1])+m.lang[1:]),
			Uses: fmt.Sprintf("actions/%s@v4", m.action),
			With: with,
		}}
	}
	return nil
}

// gitlabConditionReplacements is applied in order when translating rule
// expressions; GitLab predefined variables map onto the github context.
var gitlabConditionReplacements = []struct {
	from string
	to   string
}{
	{"$CI_COMMIT_BRANCH", "github.ref_name"},
	{"$CI_COMMIT_REF_NAME", "github.ref_name"},
	{"$CI_PIPELINE_SOURCE", "github.event_name"},
	{"$CI_MERGE_REQUEST_IID", "github.event.number"},
	{"merge_request", "pull_request"},
	{"main", "'main'"},
	{"master", "'master'"},
}

func convertJobCondition(job model.Job) string {
	for _, rule := range job.Rules {
		if cond, ok := rule["if"].(string); ok && cond != "" {
			return convertCondition(cond)
		}
	}
	if len(job.Only) > 0 {
		return convertOnlyExcept(job.Only, true)
	}
	if len(job.Except) > 0 {
		return convertOnlyExcept(job.Except, false)
	}
	if job.When == "manual" {
		// Manual gates have no direct equivalent; keep the job defined but
		// skipped until the workflow is dispatched explicitly.
		return "false"
	}
	return ""
}

func convertCondition(cond string) string {
	out := cond
	for _, r := range gitlabConditionReplacements {
		out = strings.ReplaceAll(out, r.from, r.to)
	}
	return out
}

func convertOnlyExcept(config map[string]any, include bool) string {
	raw, ok := config["branches"].([]any)
	if !ok || len(raw) == 0 {
		return ""
	}
	var parts []string
	for _, b := range raw {
		parts = append(parts, fmt.Sprintf("github.ref_name == '%v'", b))
	}
	cond := strings.Join(parts, " || ")
	if !include {
		return fmt.Sprintf("!(%s)", cond)
	}
	return cond
}

// parseTimeout converts GitLab timeout strings ("1h", "30m", "3600s", or a
// bare minute count) into minutes, falling back to the GitHub default.
func parseTimeout(timeout string) int {
	t := strings.ToLower(strings.TrimSpace(timeout))
	if t == "" {
		return defaultTimeoutMinutes
	}
	parse := func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	}
	switch {
	case strings.HasSuffix(t, "h"):
		if n, ok := parse(strings.TrimSuffix(t, "h")); ok {
			return n * 60
		}
	case strings.HasSuffix(t, "m"):
		if n, ok := parse(strings.TrimSuffix(t, "m")); ok {
			return n
		}
	case strings.HasSuffix(t, "s"):
		if n, ok := parse(strings.TrimSuffix(t, "s")); ok {
			return n / 60
		}
	default:
		if n, ok := parse(t); ok {
			return n
		}
	}
	return defaultTimeoutMinutes
}

func sanitizeJobID(name string) string {
	id := invalidIDChars.ReplaceAllString(name, "_")
	if len(id) > maxJobIDLength {
		id = id[:maxJobIDLength]
	}
	return id
}

func sanitizeNeeds(needs []string) []string {
	if len(needs) == 0 {
		return nil
	}
	out := make([]string, 0, len(needs))
	for _, n := range needs {
		out = append(out, sanitizeJobID(n))
	}
	return out
}
