package server

import (
	"net/http"

	"github.com/psarz/g2g-converter/internal/handler"
	"github.com/psarz/g2g-converter/internal/middleware"
)

func NewMux(api *handler.API) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", api.Health)
	mux.HandleFunc("/api/convert", api.Convert)
	mux.HandleFunc("/api/analyze", api.Analyze)
	mux.HandleFunc("/api/upload", api.Upload)
	mux.HandleFunc("/api/validate", api.Validate)
	mux.HandleFunc("/api/history", api.History)
	mux.HandleFunc("/api/artifacts", api.Artifacts)
	mux.HandleFunc("/", api.NotFound)

	return middleware.CORS(mux)
}
