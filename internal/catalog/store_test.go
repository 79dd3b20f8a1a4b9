package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ttutta/dcma/internal/db"
)

type testPayload struct {
	Summary string `json:"summary"`
	Tags    []string `json:"tags,omitempty"`
}

func setupStore(t *testing.T) *Store[testPayload] {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore[testPayload](database, "domain_documents", "project", "service", "domain")
}

func TestSaveAssignsIncreasingVersions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key{"P", "S", "User"}

	for want := 1; want <= 3; want++ {
		rec, err := store.Save(ctx, key, testPayload{Summary: "v"})
		if err != nil {
			t.Fatalf("Save #%d: %v", want, err)
		}
		if rec.Version != want {
			t.Errorf("expected version %d, got %d", want, rec.Version)
		}
		if rec.Identifier == "" {
			t.Error("expected non-empty identifier")
		}
	}
}

func TestSaveConcurrent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key{"P", "S", "Order"}

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Save(ctx, key, testPayload{Summary: "concurrent"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Save: %v", err)
	}

	versions, err := store.AllVersions(ctx, key)
	if err != nil {
		t.Fatalf("AllVersions: %v", err)
	}
	if len(versions) != n {
		t.Fatalf("expected %d versions, got %d", n, len(versions))
	}
	seen := map[int]bool{}
	for _, rec := range versions {
		if seen[rec.Version] {
			t.Errorf("duplicate version %d", rec.Version)
		}
		seen[rec.Version] = true
	}
	for v := 1; v <= n; v++ {
		if !seen[v] {
			t.Errorf("missing version %d", v)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unique violation", errors.New("constraint failed: UNIQUE constraint failed: domain_documents.project, domain_documents.service, domain_documents.domain, domain_documents.version (2067)"), true},
		{"busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"busy snapshot", errors.New("database is locked (517) (SQLITE_BUSY_SNAPSHOT)"), true},
		{"table locked", errors.New("database table is locked (6) (SQLITE_LOCKED)"), true},
		{"unrelated", errors.New("no such table: domain_documents"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestFindLatest(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key{"P", "S", "User"}

	if rec, err := store.FindLatest(ctx, key); err != nil || rec != nil {
		t.Fatalf("expected (nil, nil) for unknown key, got (%v, %v)", rec, err)
	}

	store.Save(ctx, key, testPayload{Summary: "first"})
	store.Save(ctx, key, testPayload{Summary: "second"})

	rec, err := store.FindLatest(ctx, key)
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if rec.Version != 2 || rec.Payload.Summary != "second" {
		t.Errorf("expected version 2 / 'second', got %d / %q", rec.Version, rec.Payload.Summary)
	}
}

func TestSoftDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key{"P", "S", "User"}

	store.Save(ctx, key, testPayload{Summary: "v1"})
	store.Save(ctx, key, testPayload{Summary: "v2"})

	count, err := store.SoftDelete(ctx, key)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows deleted, got %d", count)
	}

	// Idempotent: second delete affects nothing.
	count, err = store.SoftDelete(ctx, key)
	if err != nil {
		t.Fatalf("second SoftDelete: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows on repeat delete, got %d", count)
	}

	// Latest is gone, but history remains inspectable.
	if rec, err := store.FindLatest(ctx, key); err != nil || rec != nil {
		t.Errorf("expected no latest after delete, got (%v, %v)", rec, err)
	}
	versions, err := store.AllVersions(ctx, key)
	if err != nil {
		t.Fatalf("AllVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 historical rows, got %d", len(versions))
	}
	for _, rec := range versions {
		if !rec.Deleted() {
			t.Errorf("version %d: expected deleted_at to be set", rec.Version)
		}
	}
}

func TestSaveAfterSoftDeleteContinuesNumbering(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key{"P", "S", "User"}

	store.Save(ctx, key, testPayload{Summary: "v1"})
	store.Save(ctx, key, testPayload{Summary: "v2"})
	store.SoftDelete(ctx, key)

	rec, err := store.Save(ctx, key, testPayload{Summary: "reborn"})
	if err != nil {
		t.Fatalf("Save after delete: %v", err)
	}
	if rec.Version != 3 {
		t.Errorf("expected version 3 after delete, got %d", rec.Version)
	}

	latest, err := store.FindLatest(ctx, key)
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if latest == nil || latest.Version != 3 {
		t.Errorf("expected the new version to be the live latest, got %+v", latest)
	}
}

func TestFindByIdentifierIncludesDeleted(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key{"P", "S", "User"}

	rec, _ := store.Save(ctx, key, testPayload{Summary: "v1"})
	store.SoftDelete(ctx, key)

	got, err := store.FindByIdentifier(ctx, rec.Identifier)
	if err != nil {
		t.Fatalf("FindByIdentifier: %v", err)
	}
	if got == nil {
		t.Fatal("expected deleted row to remain retrievable by identifier")
	}
	if !got.Deleted() {
		t.Error("expected deleted_at to be set")
	}

	if missing, err := store.FindByIdentifier(ctx, "no-such-id"); err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for unknown identifier, got (%v, %v)", missing, err)
	}
}

func TestLatestForProject(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.Save(ctx, Key{"P", "S", "User"}, testPayload{Summary: "user v1"})
	store.Save(ctx, Key{"P", "S", "User"}, testPayload{Summary: "user v2"})
	store.Save(ctx, Key{"P", "S", "Order"}, testPayload{Summary: "order v1"})
	store.Save(ctx, Key{"P", "Billing", "Invoice"}, testPayload{Summary: "invoice v1"})
	store.Save(ctx, Key{"Other", "S", "User"}, testPayload{Summary: "other project"})
	store.SoftDelete(ctx, Key{"P", "Billing", "Invoice"})

	recs, err := store.LatestForProject(ctx, "P")
	if err != nil {
		t.Fatalf("LatestForProject: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 latest records, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Key[2] == "User" && rec.Version != 2 {
			t.Errorf("User: expected latest version 2, got %d", rec.Version)
		}
	}
}

func TestProjects(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.Save(ctx, Key{"Beta", "S", "A"}, testPayload{})
	store.Save(ctx, Key{"Alpha", "S", "B"}, testPayload{})
	store.Save(ctx, Key{"Gone", "S", "C"}, testPayload{})
	store.SoftDelete(ctx, Key{"Gone", "S", "C"})

	projects, err := store.Projects(ctx)
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(projects) != 2 || projects[0] != "Alpha" || projects[1] != "Beta" {
		t.Errorf("expected [Alpha Beta], got %v", projects)
	}
}

func TestUpdateEmbedding(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key{"P", "S", "User"}

	rec, _ := store.Save(ctx, key, testPayload{Summary: "v1"})

	vec := []float32{0.1, 0.2, 0.3}
	if err := store.UpdateEmbedding(ctx, rec.Identifier, vec); err != nil {
		t.Fatalf("UpdateEmbedding: %v", err)
	}

	got, err := store.FindByIdentifier(ctx, rec.Identifier)
	if err != nil {
		t.Fatalf("FindByIdentifier: %v", err)
	}
	if len(got.Embedding) != 3 || got.Embedding[1] != 0.2 {
		t.Errorf("expected stored embedding %v, got %v", vec, got.Embedding)
	}
	// Embedding updates never create a new version.
	if got.Version != 1 {
		t.Errorf("expected version to stay 1, got %d", got.Version)
	}

	err = store.UpdateEmbedding(ctx, "no-such-id", vec)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown identifier, got %v", err)
	}
}

func TestMissingAndWithEmbeddings(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	a, _ := store.Save(ctx, Key{"P", "S", "A"}, testPayload{})
	store.Save(ctx, Key{"P", "S", "B"}, testPayload{})
	store.UpdateEmbedding(ctx, a.Identifier, []float32{1, 0})

	missing, err := store.MissingEmbeddings(ctx)
	if err != nil {
		t.Fatalf("MissingEmbeddings: %v", err)
	}
	if len(missing) != 1 || missing[0].Key[2] != "B" {
		t.Errorf("expected only B to lack an embedding, got %d rows", len(missing))
	}

	embedded, err := store.WithEmbeddings(ctx)
	if err != nil {
		t.Fatalf("WithEmbeddings: %v", err)
	}
	if len(embedded) != 1 || embedded[0].Identifier != a.Identifier {
		t.Errorf("expected only A to carry an embedding, got %d rows", len(embedded))
	}
}
