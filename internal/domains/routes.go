package domains

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ttutta/dcma/internal/catalog"
)

// RegisterRoutes mounts the domain catalog API routes.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/domains", func(r chi.Router) {
		r.Post("/", handleCreate(svc))
		r.Get("/projects", handleListProjects(svc))
		r.Get("/records/{identifier}", handleGetByIdentifier(svc))
		r.Get("/{project}", handleListLatest(svc))
		r.Get("/{project}/{service}/{domain}", handleGet(svc))
		r.Get("/{project}/{service}/{domain}/versions", handleListVersions(svc))
		r.Delete("/{project}/{service}/{domain}", handleDelete(svc))
	})
}

type createRequest struct {
	Project      string       `json:"project"`
	Service      string       `json:"service"`
	Domain       string       `json:"domain"`
	Summary      string       `json:"summary"`
	Properties   []Property   `json:"properties"`
	Policies     []Policy     `json:"policies"`
	Dependencies []Dependency `json:"dependencies"`
}

func handleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := svc.CreateOrUpdate(r.Context(), req.Project, req.Service, req.Domain, Document{
			Summary:      req.Summary,
			Properties:   req.Properties,
			Policies:     req.Policies,
			Dependencies: req.Dependencies,
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
			chi.URLParam(r, "project"), chi.URLParam(r, "service"), chi.URLParam(r, "domain"), version)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "domain document not found")
			return
		}
		writeJSON(w, http.StatusOK, View(rec))
	}
}

// handleGetByIdentifier resolves a single version row by its surrogate
// id, soft-deleted or not, so stored history stays inspectable.
func handleGetByIdentifier(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByIdentifier(r.Context(), chi.URLParam(r, "identifier"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "domain document not found")
			return
		}
		writeJSON(w, http.StatusOK, View(rec))
	}
}

func handleListVersions(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.ListVersions(r.Context(),
			chi.URLParam(r, "project"), chi.URLParam(r, "service"), chi.URLParam(r, "domain"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, Views(recs))
	}
}

func handleListLatest(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.ListLatestForProject(r.Context(), chi.URLParam(r, "project"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, Views(recs))
	}
}

func handleListProjects(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := svc.ListProjects(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if projects == nil {
			projects = []string{}
		}
		writeJSON(w, http.StatusOK, projects)
	}
}

func handleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.SoftDelete(r.Context(),
			chi.URLParam(r, "project"), chi.URLParam(r, "service"), chi.URLParam(r, "domain"))
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
