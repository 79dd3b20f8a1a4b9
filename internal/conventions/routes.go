package conventions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ttutta/dcma/internal/catalog"
)

// RegisterRoutes mounts the convention catalog API routes.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/conventions", func(r chi.Router) {
		r.Post("/", handleCreate(svc))
		r.Get("/records/{identifier}", handleGetByIdentifier(svc))
		r.Get("/{project}", handleList(svc))
		r.Get("/{project}/{category}/{title}", handleGet(svc))
		r.Get("/{project}/{category}/{title}/versions", handleListVersions(svc))
		r.Delete("/{project}/{category}/{title}", handleDelete(svc))
	})
}

type createRequest struct {
	Project          string `json:"project"`
	Category         string `json:"category"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	ExampleCorrect   string `json:"example_correct"`
	ExampleIncorrect string `json:"example_incorrect"`
}

func handleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := svc.CreateOrUpdate(r.Context(), req.Project, req.Category, req.Title, Convention{
			Content:          req.Content,
			ExampleCorrect:   req.ExampleCorrect,
			ExampleIncorrect: req.ExampleIncorrect,
		})
		if err != nil {
			if catalog.IsValidation(err) {
				writeError(w, http.StatusBadRequest, err.Error())
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, View(rec))
	}
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.ListByCategory(r.Context(),
			chi.URLParam(r, "project"), r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, Views(recs))
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := 0
		if v := r.URL.Query().Get("version"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				writeError(w, http.StatusBadRequest, "version must be a positive integer")
				return
			}
			version = parsed
		}

		rec, err := svc.GetByIdentity(r.Context(),
			chi.URLParam(r, "project"), chi.URLParam(r, "category"), chi.URLParam(r, "title"), version)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "project convention not found")
			return
		}
		writeJSON(w, http.StatusOK, View(rec))
	}
}

// handleGetByIdentifier resolves a single version row by its surrogate
// id, soft-deleted or not.
func handleGetByIdentifier(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByIdentifier(r.Context(), chi.URLParam(r, "identifier"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "project convention not found")
			return
		}
		writeJSON(w, http.StatusOK, View(rec))
	}
}

func handleListVersions(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.ListVersions(r.Context(),
			chi.URLParam(r, "project"), chi.URLParam(r, "category"), chi.URLParam(r, "title"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, Views(recs))
	}
}

func handleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.SoftDelete(r.Context(),
			chi.URLParam(r, "project"), chi.URLParam(r, "category"), chi.URLParam(r, "title"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
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
