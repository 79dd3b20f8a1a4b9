// Package domains manages the domain document catalog: validation of
// submitted documents, the versioned persistence lifecycle, and the
// post-save embedding hook.
package domains

import (
	"context"
	"fmt"
	"strings"

	"github.com/ttutta/dcma/internal/catalog"
	"github.com/ttutta/dcma/internal/db"
)

// SaveHook is invoked after a successful save. Implementations own their
// failure domain: a hook must never make the save itself fail.
type SaveHook func(ctx context.Context, rec *catalog.Record[Document])

// DeleteHook is invoked after a soft delete with the identifiers of the
// rows that were stamped.
type DeleteHook func(ctx context.Context, identifiers []string)

// Service enforces domain-specific invariants on top of the versioned
// entity store.
type Service struct {
	store    *catalog.Store[Document]
	onSave   SaveHook
	onDelete DeleteHook
}

// NewStore creates the catalog store backing the domain catalog.
func NewStore(database *db.DB) *catalog.Store[Document] {
	return catalog.NewStore[Document](database, "domain_documents", "project", "service", "domain")
}

// NewService wires the service. Hooks may be nil.
func NewService(store *catalog.Store[Document], onSave SaveHook, onDelete DeleteHook) *Service {
	return &Service{store: store, onSave: onSave, onDelete: onDelete}
}

// CreateOrUpdate validates the submission and appends a new version of
// the document. Embedding generation runs through the save hook after
// the row is committed; a hook failure leaves the saved document intact.
func (s *Service) CreateOrUpdate(ctx context.Context, project, service, domain string, doc Document) (*catalog.Record[Document], error) {
	if err := validate(project, service, domain, doc); err != nil {
		return nil, err
	}

	rec, err := s.store.Save(ctx, catalog.Key{project, service, domain}, doc)
	if err != nil {
		return nil, fmt.Errorf("saving domain document: %w", err)
	}

	if s.onSave != nil {
		s.onSave(ctx, rec)
	}
	return rec, nil
}

// GetByIdentity returns one version of a document; version <= 0 means
// latest. Absent documents yield (nil, nil).
func (s *Service) GetByIdentity(ctx context.Context, project, service, domain string, version int) (*catalog.Record[Document], error) {
	key := catalog.Key{project, service, domain}
	if version <= 0 {
		return s.store.FindLatest(ctx, key)
	}
	return s.store.FindVersion(ctx, key, version)
}

// GetByIdentifier returns the row with the given surrogate id, deleted
// or not.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*catalog.Record[Document], error) {
	return s.store.FindByIdentifier(ctx, identifier)
}

// ListProjects returns the distinct project names with live documents.
func (s *Service) ListProjects(ctx context.Context) ([]string, error) {
	return s.store.Projects(ctx)
}

// ListVersions returns every stored version of a document, ascending.
func (s *Service) ListVersions(ctx context.Context, project, service, domain string) ([]*catalog.Record[Document], error) {
	return s.store.AllVersions(ctx, catalog.Key{project, service, domain})
}

// ListLatestForProject returns the latest live version of every domain
// document under the project.
func (s *Service) ListLatestForProject(ctx context.Context, project string) ([]*catalog.Record[Document], error) {
	return s.store.LatestForProject(ctx, project)
}

// SoftDelete removes a document (all versions) from the live catalog and
// returns the number of rows stamped.
func (s *Service) SoftDelete(ctx context.Context, project, service, domain string) (int64, error) {
	key := catalog.Key{project, service, domain}

	// Collect identifiers first so the delete hook can evict them from
	// the search index.
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

func validate(project, service, domain string, doc Document) error {
	if strings.TrimSpace(project) == "" {
		return catalog.Invalid("project", "must not be empty")
	}
	if strings.TrimSpace(service) == "" {
		return catalog.Invalid("service", "must not be empty")
	}
	if strings.TrimSpace(domain) == "" {
		return catalog.Invalid("domain", "must not be empty")
	}

	seen := make(map[string]bool, len(doc.Properties))
	for _, p := range doc.Properties {
		if strings.TrimSpace(p.Name) == "" {
			return catalog.Invalid("properties", "property name must not be empty")
		}
		if strings.TrimSpace(p.Type) == "" {
			return catalog.Invalid("properties", fmt.Sprintf("property %q has no type", p.Name))
		}
		if seen[p.Name] {
			return catalog.Invalid("properties", fmt.Sprintf("duplicate property name %q", p.Name))
		}
		seen[p.Name] = true
	}

	for _, pol := range doc.Policies {
		if !PolicyCategories[pol.Category] {
			return catalog.Invalid("policies", fmt.Sprintf("unknown policy category %q", pol.Category))
		}
		if strings.TrimSpace(pol.Content) == "" {
			return catalog.Invalid("policies", "policy content must not be empty")
		}
	}

	for _, dep := range doc.Dependencies {
		if strings.TrimSpace(dep.TargetDomain) == "" {
			return catalog.Invalid("dependencies", "target_domain must not be empty")
		}
	}
	return nil
}
