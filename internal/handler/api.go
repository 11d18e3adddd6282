// Package handler implements the JSON REST endpoints of the converter
// service: health, convert, analyze, upload, validate, and history.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/psarz/g2g-converter/internal/cache"
	"github.com/psarz/g2g-converter/internal/history"
	"github.com/psarz/g2g-converter/internal/model"
	"github.com/psarz/g2g-converter/internal/parser"
)

// ArtifactStore persists uploaded pipelines and generated workflows and
// serves them back. artifact.S3Store is the production implementation; a
// nil store disables the artifact surface entirely.
type ArtifactStore interface {
	Put(ctx context.Context, prefix, name string, content []byte) error
	Get(ctx context.Context, prefix, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// API holds the handler dependencies. Graph builders and analyzers are
// constructed per request; only the parse cache, history store, and
// artifact store are shared, and each is internally synchronized.
type API struct {
	version   string
	maxBody   int64
	cache     *cache.ParseCache
	history   *history.Store
	artifacts ArtifactStore
}

func New(version string, maxBody int64, pc *cache.ParseCache, hs *history.Store, as ArtifactStore) *API {
	return &API{
		version:   version,
		maxBody:   maxBody,
		cache:     pc,
		history:   hs,
		artifacts: as,
	}
}

// parsePipeline parses YAML content, consulting the parse cache first.
func (a *API) parsePipeline(content []byte) (*model.PipelineConfig, error) {
	key := cache.Key(content)
	if cfg, ok := a.cache.Get(key); ok {
		return cfg, nil
	}
	cfg, err := parser.Parse(content)
	if err != nil {
		return nil, err
	}
	a.cache.Add(key, cfg)
	return cfg, nil
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": a.version,
	})
}

func (a *API) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Endpoint not found")
}

func decodeBody(w http.ResponseWriter, r *http.Request, maxBody int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
