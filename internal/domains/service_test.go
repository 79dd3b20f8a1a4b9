package domains

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ttutta/dcma/internal/catalog"
	"github.com/ttutta/dcma/internal/db"
)

func setupService(t *testing.T, onSave SaveHook, onDelete DeleteHook) *Service {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewService(NewStore(database), onSave, onDelete)
}

func TestCreateOrUpdateVersioning(t *testing.T) {
	svc := setupService(t, nil, nil)
	ctx := context.Background()

	v1, err := svc.CreateOrUpdate(ctx, "P", "S", "User", Document{
		Summary: "User account",
		Properties: []Property{
			{Name: "id", Type: "UUID", Description: "primary key", IsRequired: true, IsImmutable: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate v1: %v", err)
	}
	if v1.Version != 1 {
		t.Errorf("expected version 1, got %d", v1.Version)
	}

	v2, err := svc.CreateOrUpdate(ctx, "P", "S", "User", Document{
		Summary: "User account",
		Properties: []Property{
			{Name: "id", Type: "UUID", Description: "primary key", IsRequired: true, IsImmutable: true},
			{Name: "nickname", Type: "String", Description: "display name"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate v2: %v", err)
	}
	if v2.Version != 2 {
		t.Errorf("expected version 2, got %d", v2.Version)
	}

	latest, err := svc.GetByIdentity(ctx, "P", "S", "User", 0)
	if err != nil {
		t.Fatalf("GetByIdentity: %v", err)
	}
	if latest.Version != 2 || len(latest.Payload.Properties) != 2 {
		t.Errorf("expected latest v2 with 2 properties, got v%d with %d", latest.Version, len(latest.Payload.Properties))
	}

	versions, err := svc.ListVersions(ctx, "P", "S", "User")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 || versions[0].Version != 1 || len(versions[0].Payload.Properties) != 1 {
		t.Errorf("expected v1 still retrievable with 1 property, got %+v", versions)
	}
}

func TestValidation(t *testing.T) {
	svc := setupService(t, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		project string
		domain  string
		doc     Document
	}{
		{"empty project", "", "User", Document{}},
		{"empty domain", "P", "", Document{}},
		{"duplicate property", "P", "User", Document{
			Properties: []Property{
				{Name: "id", Type: "UUID"},
				{Name: "id", Type: "String"},
			},
		}},
		{"property without type", "P", "User", Document{
			Properties: []Property{{Name: "id"}},
		}},
		{"unknown policy category", "P", "User", Document{
			Policies: []Policy{{Category: "MOOD", Content: "be nice"}},
		}},
		{"empty policy content", "P", "User", Document{
			Policies: []Policy{{Category: "PERMISSION"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrUpdate(ctx, tc.project, "S", tc.domain, tc.doc)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !catalog.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	// Nothing was persisted.
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("expected no projects after failed saves, got %v", projects)
	}
}

func TestSaveHookReceivesRecord(t *testing.T) {
	var hooked []*catalog.Record[Document]
	svc := setupService(t, func(ctx context.Context, rec *catalog.Record[Document]) {
		hooked = append(hooked, rec)
	}, nil)

	rec, err := svc.CreateOrUpdate(context.Background(), "P", "S", "User", Document{Summary: "s"})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if len(hooked) != 1 || hooked[0].Identifier != rec.Identifier {
		t.Errorf("expected save hook to receive the new record, got %+v", hooked)
	}
}

func TestSoftDeleteInvokesDeleteHook(t *testing.T) {
	var deleted []string
	svc := setupService(t, nil, func(ctx context.Context, ids []string) {
		deleted = append(deleted, ids...)
	})
	ctx := context.Background()

	svc.CreateOrUpdate(ctx, "P", "S", "User", Document{Summary: "v1"})
	svc.CreateOrUpdate(ctx, "P", "S", "User", Document{Summary: "v2"})

	count, err := svc.SoftDelete(ctx, "P", "S", "User")
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows deleted, got %d", count)
	}
	if len(deleted) != 2 {
		t.Errorf("expected delete hook to receive 2 identifiers, got %v", deleted)
	}

	// Idempotent, and the hook does not fire again.
	deleted = nil
	count, err = svc.SoftDelete(ctx, "P", "S", "User")
	if err != nil {
		t.Fatalf("second SoftDelete: %v", err)
	}
	if count != 0 || deleted != nil {
		t.Errorf("expected no-op on repeat delete, got count=%d hook=%v", count, deleted)
	}
}

func setupRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc := setupService(t, nil, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, svc)
	return r, svc
}

func TestRoutesCreateAndGet(t *testing.T) {
	r, _ := setupRouter(t)

	body := `{"project":"P","service":"S","domain":"User","summary":"User account",
		"properties":[{"name":"id","type":"UUID","description":"pk","is_required":true,"is_immutable":true}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/domains", strings.NewReader(body))
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Code != http.StatusCreated {
		t.Fatalf("POST: expected 201, got %d: %s", rw.Code, rw.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/domains/P/S/User", nil)
	rw = httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("GET: expected 200, got %d", rw.Code)
	}
	var view DocumentView
	if err := json.NewDecoder(rw.Body).Decode(&view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.Domain != "User" || view.Version != 1 || len(view.Properties) != 1 {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestRoutesGetByIdentifier(t *testing.T) {
	r, svc := setupRouter(t)
	ctx := context.Background()

	rec, err := svc.CreateOrUpdate(ctx, "P", "S", "User", Document{Summary: "User account"})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/domains/records/"+rec.Identifier, nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("GET by identifier: expected 200, got %d", rw.Code)
	}
	var view DocumentView
	if err := json.NewDecoder(rw.Body).Decode(&view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.Identifier != rec.Identifier || view.Domain != "User" {
		t.Errorf("unexpected view: %+v", view)
	}

	// Soft-deleted rows stay resolvable by identifier.
	if _, err := svc.SoftDelete(ctx, "P", "S", "User"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	rw = httptest.NewRecorder()
	r.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/domains/records/"+rec.Identifier, nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("GET deleted row: expected 200, got %d", rw.Code)
	}
	view = DocumentView{}
	if err := json.NewDecoder(rw.Body).Decode(&view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.DeletedAt == nil {
		t.Error("expected deleted_at on soft-deleted row")
	}

	rw = httptest.NewRecorder()
	r.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/domains/records/no-such-id", nil))
	if rw.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown identifier, got %d", rw.Code)
	}
}

func TestRoutesValidationAndNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/domains",
		strings.NewReader(`{"project":"","service":"S","domain":"User"}`))
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for validation error, got %d", rw.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/domains/P/S/Missing", nil)
	rw = httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	if rw.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing document, got %d", rw.Code)
	}
}
