package search

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ttutta/dcma/internal/catalog"
	"github.com/ttutta/dcma/internal/embeddings"
)

// RegisterRoutes mounts the semantic search API route.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/search", handleSearch(svc))
}

type searchRequest struct {
	Query               string  `json:"query"`
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

func handleSearch(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := svc.Search(r.Context(), req.Query, req.TopK, req.SimilarityThreshold)
		if err != nil {
			switch {
			case catalog.IsValidation(err):
				writeError(w, http.StatusBadRequest, err.Error())
			case embeddings.IsProviderError(err):
				writeError(w, http.StatusBadGateway, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
