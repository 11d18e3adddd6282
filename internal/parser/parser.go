// Package parser turns GitLab CI YAML into a model.PipelineConfig. Parsing
// walks the YAML document tree so jobs, variables, and secrets keep the
// order they were declared in; map iteration never decides output order.
package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psarz/g2g-converter/internal/model"
)

// Top-level keys that configure the pipeline rather than define a job.
var reservedKeys = map[string]struct{}{
	"stages":        {},
	"variables":     {},
	"before_script": {},
	"after_script":  {},
	"cache":         {},
	"retry":         {},
	"timeout":       {},
	"image":         {},
	"default":       {},
	"include":       {},
	"workflow":      {},
}

// Parse decodes GitLab CI YAML content into a pipeline configuration.
// An empty document yields an empty config; syntactically invalid YAML or
// a non-mapping document is an error. Keys starting with "." are template
// definitions and are skipped.
func Parse(content []byte) (*model.PipelineConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML format: %w", err)
	}

	cfg := &model.PipelineConfig{}
	if len(doc.Content) == 0 {
		return cfg, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return cfg, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid YAML format: pipeline definition must be a mapping")
	}

	raw := make(map[string]*yaml.Node, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		raw[root.Content[i].Value] = root.Content[i+1]
	}

	cfg.Stages = decodeStringList(raw["stages"])
	parseVariables(raw["variables"], cfg)
	parseDefault(raw, cfg)
	parseJobs(root, cfg)
	parseIncludes(raw["include"], cfg)
	cfg.Workflow = decodeMap(raw["workflow"])

	return cfg, nil
}

// parseVariables reads global variables in declaration order and derives
// secrets from entries flagged masked or protected.
func parseVariables(node *yaml.Node, cfg *model.PipelineConfig) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		if value.Kind == yaml.MappingNode {
			attrs := decodeMap(value)
			v := model.Variable{
				Name:      name,
				Value:     stringify(attrs["value"]),
				Protected: boolOf(attrs["protected"]),
				Masked:    boolOf(attrs["masked"]),
				Expand:    true,
			}
			if expand, ok := attrs["expand"]; ok {
				v.Expand = boolOf(expand)
			}
			cfg.Variables = append(cfg.Variables, v)

			if v.Masked || v.Protected {
				desc := "Protected variable"
				if v.Masked {
					desc = "Masked variable"
				}
				cfg.Secrets = append(cfg.Secrets, model.Secret{
					Name:        name,
					Type:        "env",
					Description: desc,
				})
			}
			continue
		}

		var scalar any
		_ = value.Decode(&scalar)
		cfg.Variables = append(cfg.Variables, model.Variable{
			Name:   name,
			Value:  stringify(scalar),
			Expand: true,
		})
	}
}

func parseDefault(raw map[string]*yaml.Node, cfg *model.PipelineConfig) {
	def := decodeMap(raw["default"])
	cfg.BeforeScript = normalizeList(def["before_script"])
	cfg.AfterScript = normalizeList(def["after_script"])
	cfg.Cache = mapOf(def["cache"])
	cfg.Retry = mapOf(def["retry"])
	cfg.Timeout = stringOf(def["timeout"])

	cfg.Image = stringOf(def["image"])
	if cfg.Image == "" {
		var topImage any
		if n, ok := raw["image"]; ok {
			_ = n.Decode(&topImage)
		}
		cfg.Image = stringOf(topImage)
	}
}

func parseJobs(root *yaml.Node, cfg *model.PipelineConfig) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		value := root.Content[i+1]

		if _, reserved := reservedKeys[name]; reserved || strings.HasPrefix(name, ".") {
			continue
		}
		if value.Kind != yaml.MappingNode {
			continue
		}
		cfg.Jobs = append(cfg.Jobs, parseJob(name, decodeMap(value)))
	}
}

func parseJob(name string, raw map[string]any) model.Job {
	job := model.Job{
		Name:         name,
		Stage:        "test",
		Image:        stringOf(raw["image"]),
		Script:       normalizeList(raw["script"]),
		BeforeScript: normalizeList(raw["before_script"]),
		AfterScript:  normalizeList(raw["after_script"]),
		Dependencies: normalizeList(raw["dependencies"]),
		Needs:        parseNeeds(raw["needs"]),
		Variables:    stringMapOf(raw["variables"]),
		Artifacts:    mapOf(raw["artifacts"]),
		Cache:        mapOf(raw["cache"]),
		Retry:        mapOf(raw["retry"]),
		Timeout:      stringOf(raw["timeout"]),
		Only:         mapOf(raw["only"]),
		Except:       mapOf(raw["except"]),
		Tags:         normalizeList(raw["tags"]),
		AllowFailure: boolOf(raw["allow_failure"]),
		When:         "on_success",
		Environment:  stringOf(raw["environment"]),
		Rules:        rulesOf(raw["rules"]),
	}
	if s := stringOf(raw["stage"]); s != "" {
		job.Stage = s
	}
	if w := stringOf(raw["when"]); w != "" {
		job.When = w
	}
	return job
}

// parseNeeds accepts the two GitLab forms: a list of job names, or a list
// of mappings like {job: build, artifacts: true}.
func parseNeeds(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case map[string]any:
			if job, ok := t["job"].(string); ok {
				out = append(out, job)
			}
		}
	}
	return out
}

func parseIncludes(node *yaml.Node, cfg *model.PipelineConfig) {
	if node == nil {
		return
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return
	}
	switch t := v.(type) {
	case string:
		cfg.Include = append(cfg.Include, t)
	case []any:
		for _, item := range t {
			switch inc := item.(type) {
			case string:
				cfg.Include = append(cfg.Include, inc)
			case map[string]any:
				cfg.Include = append(cfg.Include, stringOf(inc["local"]))
			}
		}
	}
}

// JobReferences maps each job to the union of its needs and dependencies,
// deduplicated, preserving first-mention order.
func JobReferences(cfg *model.PipelineConfig) map[string][]string {
	refs := make(map[string][]string, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		seen := make(map[string]struct{})
		deps := []string{}
		for _, name := range append(append([]string{}, job.Dependencies...), job.Needs...) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			deps = append(deps, name)
		}
		refs[job.Name] = deps
	}
	return refs
}

// VariableInfo describes one variable with its scope for the analyze payload.
type VariableInfo struct {
	Value     string `json:"value"`
	Protected bool   `json:"protected"`
	Masked    bool   `json:"masked"`
	Scope     string `json:"scope"` // global or job
}

// ExtractVariables flattens global and job-level variables. Globals win on
// name collisions.
func ExtractVariables(cfg *model.PipelineConfig) map[string]VariableInfo {
	all := make(map[string]VariableInfo)
	for _, v := range cfg.Variables {
		all[v.Name] = VariableInfo{Value: v.Value, Protected: v.Protected, Masked: v.Masked, Scope: "global"}
	}
	for _, job := range cfg.Jobs {
		for name, value := range job.Variables {
			if _, ok := all[name]; !ok {
				all[name] = VariableInfo{Value: value, Scope: "job"}
			}
		}
	}
	return all
}
