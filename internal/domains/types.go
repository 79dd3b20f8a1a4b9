package domains

import (
	"time"

	"github.com/ttutta/dcma/internal/catalog"
)

// Property is a single named attribute of a domain, e.g. "email".
type Property struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	IsRequired  bool   `json:"is_required"`
	IsImmutable bool   `json:"is_immutable"`
}

// Policy is a rule attached to a domain, e.g. a permission constraint.
type Policy struct {
	Category string `json:"category"`
	Subject  string `json:"subject,omitempty"`
	Content  string `json:"content"`
}

// Dependency is a declared reference from this domain to another domain
// in the same project. Edges are declared by the caller, not derived
// from property types.
type Dependency struct {
	TargetDomain      string `json:"target_domain"`
	RelationType      string `json:"relation_type"`
	Description       string `json:"description"`
	ImpactDescription string `json:"impact_description,omitempty"`
}

// Document is the versioned payload of a domain document. The logical
// key (project, service, domain) and version live on the catalog record.
type Document struct {
	Summary      string       `json:"summary"`
	Properties   []Property   `json:"properties"`
	Policies     []Policy     `json:"policies"`
	Dependencies []Dependency `json:"dependencies"`
}

// PolicyCategories is the recognized set of policy categories. It is
// data, not a closed type: deployments may extend it without a schema
// change.
var PolicyCategories = map[string]bool{
	"PERMISSION":    true,
	"VALIDATION":    true,
	"BUSINESS_RULE": true,
	"LIFECYCLE":     true,
}

// DocumentView is the JSON-serializable snapshot of one stored version,
// returned by the API and agent tools and embedded in search results.
type DocumentView struct {
	Identifier   string       `json:"identifier"`
	Project      string       `json:"project"`
	Service      string       `json:"service"`
	Domain       string       `json:"domain"`
	Summary      string       `json:"summary"`
	Version      int          `json:"version"`
	Properties   []Property   `json:"properties"`
	Policies     []Policy     `json:"policies"`
	Dependencies []Dependency `json:"dependencies"`
	HasEmbedding bool         `json:"has_embedding"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
}

// View converts a stored record into its snapshot form. Nil slices are
// normalized to empty ones so JSON consumers always see arrays.
func View(rec *catalog.Record[Document]) DocumentView {
	v := DocumentView{
		Identifier:   rec.Identifier,
		Project:      rec.Key[0],
		Service:      rec.Key[1],
		Domain:       rec.Key[2],
		Summary:      rec.Payload.Summary,
		Version:      rec.Version,
		Properties:   rec.Payload.Properties,
		Policies:     rec.Payload.Policies,
		Dependencies: rec.Payload.Dependencies,
		HasEmbedding: len(rec.Embedding) > 0,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		DeletedAt:    rec.DeletedAt,
	}
	if v.Properties == nil {
		v.Properties = []Property{}
	}
	if v.Policies == nil {
		v.Policies = []Policy{}
	}
	if v.Dependencies == nil {
		v.Dependencies = []Dependency{}
	}
	return v
}

// Views maps View over a slice of records.
func Views(recs []*catalog.Record[Document]) []DocumentView {
	views := make([]DocumentView, len(recs))
	for i, rec := range recs {
		views[i] = View(rec)
	}
	return views
}
