// Package conventions manages the project convention catalog. It shares
// the versioned persistence lifecycle with the domain catalog through
// the generic catalog store and supplies its own validation and logical
// key shape (project, category, title).
package conventions

import (
	"context"
	"fmt"
	"strings"

	"github.com/ttutta/dcma/internal/catalog"
	"github.com/ttutta/dcma/internal/db"
)

// SaveHook is invoked after a successful save; see domains.SaveHook.
type SaveHook func(ctx context.Context, rec *catalog.Record[Convention])

// DeleteHook is invoked after a soft delete with the stamped row ids.
type DeleteHook func(ctx context.Context, identifiers []string)

// Service enforces convention-specific invariants on top of the
// versioned entity store.
type Service struct {
	store    *catalog.Store[Convention]
	onSave   SaveHook
	onDelete DeleteHook
}

// NewStore creates the catalog store backing the convention catalog.
func NewStore(database *db.DB) *catalog.Store[Convention] {
	return catalog.NewStore[Convention](database, "project_conventions", "project", "category", "title")
}

// NewService wires the service. Hooks may be nil.
func NewService(store *catalog.Store[Convention], onSave SaveHook, onDelete DeleteHook) *Service {
	return &Service{store: store, onSave: onSave, onDelete: onDelete}
}

// CreateOrUpdate validates the submission and appends a new version of
// the convention.
func (s *Service) CreateOrUpdate(ctx context.Context, project, category, title string, conv Convention) (*catalog.Record[Convention], error) {
	if err := validate(project, category, title, conv); err != nil {
		return nil, err
	}

	rec, err := s.store.Save(ctx, catalog.Key{project, category, title}, conv)
	if err != nil {
		return nil, fmt.Errorf("saving project convention: %w", err)
	}

	if s.onSave != nil {
		s.onSave(ctx, rec)
	}
	return rec, nil
}

// GetByIdentity returns one version of a convention; version <= 0 means
// latest. Absent conventions yield (nil, nil).
func (s *Service) GetByIdentity(ctx context.Context, project, category, title string, version int) (*catalog.Record[Convention], error) {
	key := catalog.Key{project, category, title}
	if version <= 0 {
		return s.store.FindLatest(ctx, key)
	}
	return s.store.FindVersion(ctx, key, version)
}

// GetByIdentifier returns the row with the given surrogate id, deleted
// or not.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*catalog.Record[Convention], error) {
	return s.store.FindByIdentifier(ctx, identifier)
}

// ListByCategory returns the latest live version of each convention
// under the project, optionally narrowed to one category. Only the
// latest version per logical key is returned.
func (s *Service) ListByCategory(ctx context.Context, project, category string) ([]*catalog.Record[Convention], error) {
	recs, err := s.store.LatestForProject(ctx, project)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return recs, nil
	}
	filtered := recs[:0]
	for _, rec := range recs {
		if rec.Key[1] == category {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// ListProjects returns the distinct project names with live conventions.
func (s *Service) ListProjects(ctx context.Context) ([]string, error) {
	return s.store.Projects(ctx)
}

// ListVersions returns every stored version of a convention, ascending.
func (s *Service) ListVersions(ctx context.Context, project, category, title string) ([]*catalog.Record[Convention], error) {
	return s.store.AllVersions(ctx, catalog.Key{project, category, title})
}

// SoftDelete removes a convention (all versions) from the live catalog.
func (s *Service) SoftDelete(ctx context.Context, project, category, title string) (int64, error) {
	key := catalog.Key{project, category, title}

	versions, err := s.store.AllVersions(ctx, key)
	if err != nil {
		return 0, err
	}

	count, err := s.store.SoftDelete(ctx, key)
	if err != nil {
		return 0, err
	}

	if count > 0 && s.onDelete != nil {
		ids := make([]string, 0, len(versions))
		for _, rec := range versions {
			if !rec.Deleted() {
				ids = append(ids, rec.Identifier)
			}
		}
		s.onDelete(ctx, ids)
	}
	return count, nil
}

func validate(project, category, title string, conv Convention) error {
	if strings.TrimSpace(project) == "" {
		return catalog.Invalid("project", "must not be empty")
	}
	if strings.TrimSpace(title) == "" {
		return catalog.Invalid("title", "must not be empty")
	}
	if !Categories[category] {
		return catalog.Invalid("category", fmt.Sprintf("unknown category %q", category))
	}
	if strings.TrimSpace(conv.Content) == "" {
		return catalog.Invalid("content", "must not be empty")
	}
	return nil
}
