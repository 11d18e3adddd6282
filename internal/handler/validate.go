package handler

import (
	"net/http"
	"strconv"

	"gopkg.in/yaml.v3"
)

type validateRequest struct {
	YAMLContent string `json:"yaml_content"`
}

// Validate handles POST /api/validate: a YAML syntax check only. Syntax
// errors are reported in the response body, not as an HTTP error.
func (a *API) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req validateRequest
	if err := decodeBody(w, r, a.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.YAMLContent == "" {
		writeError(w, http.StatusBadRequest, "Missing yaml_content")
		return
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(req.YAMLContent), &parsed); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"valid":   false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"valid":   true,
		"message": "YAML is valid",
	})
}

// History handles GET /api/history: the most recent conversion records.
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := a.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"records": records,
	})
}
