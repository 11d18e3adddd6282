package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/psarz/g2g-converter/internal/convert"
	"github.com/psarz/g2g-converter/internal/history"
	"github.com/psarz/g2g-converter/internal/model"
)

type convertRequest struct {
	YAMLContent string `json:"yaml_content"`
}

// jobSummary is the per-job echo of the parsed pipeline in the convert
// response; field names are part of the response contract.
type jobSummary struct {
	Name         string   `json:"name"`
	Stage        string   `json:"stage"`
	Image        string   `json:"image"`
	AllowFailure bool     `json:"allow_failure"`
	When         string   `json:"when"`
	Dependencies []string `json:"dependencies"`
	Needs        []string `json:"needs"`
}

type configSummary struct {
	Stages    []string         `json:"stages"`
	Jobs      []jobSummary     `json:"jobs"`
	Variables []model.Variable `json:"variables"`
	Secrets   []model.Secret   `json:"secrets"`
}

// Convert handles POST /api/convert: GitLab CI YAML in, GitHub Actions
// workflow YAML plus a summary of the parsed pipeline out.
func (a *API) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req convertRequest
	if err := decodeBody(w, r, a.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.YAMLContent == "" {
		writeError(w, http.StatusBadRequest, "Missing yaml_content")
		return
	}

	cfg, err := a.parsePipeline([]byte(req.YAMLContent))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workflow := convert.Convert(cfg)
	workflowYAML, err := convert.EncodeYAML(workflow)
	if err != nil {
		log.Printf("Conversion error: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Conversion failed: %v", err))
		return
	}

	a.recordHistory(r, "convert", "inline", cfg)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"github_workflow": string(workflowYAML),
		"gitlab_config":   summarizeConfig(cfg),
	})
}

func summarizeConfig(cfg *model.PipelineConfig) configSummary {
	summary := configSummary{
		Stages:    coalesce(cfg.Stages),
		Jobs:      []jobSummary{},
		Variables: cfg.Variables,
		Secrets:   cfg.Secrets,
	}
	if summary.Variables == nil {
		summary.Variables = []model.Variable{}
	}
	if summary.Secrets == nil {
		summary.Secrets = []model.Secret{}
	}
	for _, job := range cfg.Jobs {
		summary.Jobs = append(summary.Jobs, jobSummary{
			Name:         job.Name,
			Stage:        job.Stage,
			Image:        job.Image,
			AllowFailure: job.AllowFailure,
			When:         job.When,
			Dependencies: coalesce(job.Dependencies),
			Needs:        coalesce(job.Needs),
		})
	}
	return summary
}

func (a *API) recordHistory(r *http.Request, kind, source string, cfg *model.PipelineConfig) {
	rec := history.Record{
		ID:       fmt.Sprintf("%s-%d", kind, time.Now().UnixNano()),
		Source:   source,
		Kind:     kind,
		Stages:   cfg.Stages,
		JobCount: len(cfg.Jobs),
	}
	if err := a.history.Append(r.Context(), rec); err != nil {
		log.Printf("Warning: failed to record history entry: %v", err)
	}
}

func coalesce(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
