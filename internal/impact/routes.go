package impact

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the impact analysis API route.
func RegisterRoutes(r chi.Router, analyzer *Analyzer) {
	r.Get("/api/impact/{project}/{service}/{domain}", func(w http.ResponseWriter, r *http.Request) {
		report, err := analyzer.Analyze(r.Context(),
			chi.URLParam(r, "project"), chi.URLParam(r, "service"), chi.URLParam(r, "domain"))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	})
}
