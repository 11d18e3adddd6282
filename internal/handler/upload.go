package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/psarz/g2g-converter/internal/convert"
	"github.com/psarz/g2g-converter/internal/graph"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Upload handles POST /api/upload: a multipart .yml/.yaml file is parsed,
// analyzed, and converted in one round trip. When an artifact store is
// configured, the upload and the generated workflow are persisted.
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBody)
	if err := r.ParseMultipartForm(a.maxBody); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".yml" && ext != ".yaml" {
		writeError(w, http.StatusBadRequest, "Only .yml and .yaml files allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	cfg, err := a.parsePipeline(content)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	workflow := convert.Convert(cfg)
	workflowYAML, err := convert.EncodeYAML(workflow)
	if err != nil {
		log.Printf("Upload error: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	g := graph.NewBuilder(cfg).Build()
	analyzer := graph.NewAnalyzer(g)

	a.storeArtifacts(r, filename, content, workflowYAML)
	a.recordHistory(r, "upload", filename, cfg)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": filename,
		"gitlab_config": map[string]any{
			"stages":          coalesce(cfg.Stages),
			"jobs_count":      len(cfg.Jobs),
			"variables_count": len(cfg.Variables),
			"secrets_count":   len(cfg.Secrets),
		},
		"graph":           g.Snapshot(),
		"github_workflow": string(workflowYAML),
		"metrics":         analyzer.Metrics(),
	})
}

// storeArtifacts persists the upload pair; failures are logged, not fatal.
func (a *API) storeArtifacts(r *http.Request, filename string, source, workflow []byte) {
	if a.artifacts == nil {
		return
	}
	id := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filename)
	if err := a.artifacts.Put(r.Context(), "uploads", id, source); err != nil {
		log.Printf("Warning: failed to store uploaded pipeline: %v", err)
	}
	if err := a.artifacts.Put(r.Context(), "workflows", id, workflow); err != nil {
		log.Printf("Warning: failed to store generated workflow: %v", err)
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}
