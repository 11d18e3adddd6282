package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/psarz/g2g-converter/internal/artifact"
)

// artifactPrefixes are the object prefixes the upload handler writes under.
var artifactPrefixes = map[string]struct{}{
	"uploads":   {},
	"workflows": {},
}

// Artifacts handles GET /api/artifacts: without a name parameter it lists
// the object names stored under a prefix, with one it returns the stored
// YAML itself. The endpoint 404s when no artifact store is configured.
func (a *API) Artifacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if a.artifacts == nil {
		writeError(w, http.StatusNotFound, "Artifact store not configured")
		return
	}

	prefix := strings.TrimSpace(r.URL.Query().Get("prefix"))
	if prefix == "" {
		prefix = "uploads"
	}
	if _, ok := artifactPrefixes[prefix]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown artifact prefix")
		return
	}

	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		content, err := a.artifacts.Get(r.Context(), prefix, name)
		if err != nil {
			if errors.Is(err, artifact.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Artifact not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to load artifact")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
		return
	}

	names, err := a.artifacts.List(r.Context(), prefix)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list artifacts")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"prefix":    prefix,
		"artifacts": names,
	})
}
