package handler

import (
	"fmt"
	"net/http"

	"github.com/psarz/g2g-converter/internal/graph"
	"github.com/psarz/g2g-converter/internal/model"
	"github.com/psarz/g2g-converter/internal/parser"
)

type analyzeRequest struct {
	YAMLContent string `json:"yaml_content"`
}

// Analyze handles POST /api/analyze: parses the pipeline, builds a fresh
// dependency graph, and returns the graph with its derived analyses.
func (a *API) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req analyzeRequest
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
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Analysis error: %v", err))
		return
	}

	g := graph.NewBuilder(cfg).Build()
	analyzer := graph.NewAnalyzer(g)

	secrets := cfg.Secrets
	if secrets == nil {
		secrets = []model.Secret{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"graph":          g.Snapshot(),
		"metrics":        analyzer.Metrics(),
		"cycles":         analyzer.DetectCycles(),
		"critical_path":  analyzer.CriticalPath(),
		"job_references": parser.JobReferences(cfg),
		"variables":      parser.ExtractVariables(cfg),
		"secrets":        secrets,
	})
}
