package conventions

import (
	"time"

	"github.com/ttutta/dcma/internal/catalog"
)

// Convention is the versioned payload of a project convention. The
// logical key (project, category, title) and version live on the
// catalog record.
type Convention struct {
	Content          string `json:"content"`
	ExampleCorrect   string `json:"example_correct,omitempty"`
	ExampleIncorrect string `json:"example_incorrect,omitempty"`
}

// Categories is the recognized set of convention categories. It is an
// open, string-validated set: new categories are added here (or by the
// embedding application) without any schema migration.
var Categories = map[string]bool{
	"NAMING":         true,
	"ARCHITECTURE":   true,
	"TESTING":        true,
	"DOCUMENTATION":  true,
	"ERROR_HANDLING": true,
	"PERMISSION":     true,
	"VALIDATION":     true,
	"BUSINESS_RULE":  true,
}

// ConventionView is the JSON-serializable snapshot of one stored
// version.
type ConventionView struct {
	Identifier       string     `json:"identifier"`
	Project          string     `json:"project"`
	Category         string     `json:"category"`
	Title            string     `json:"title"`
	Version          int        `json:"version"`
	Content          string     `json:"content"`
	ExampleCorrect   string     `json:"example_correct,omitempty"`
	ExampleIncorrect string     `json:"example_incorrect,omitempty"`
	HasEmbedding     bool       `json:"has_embedding"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// View converts a stored record into its snapshot form.
func View(rec *catalog.Record[Convention]) ConventionView {
	return ConventionView{
		Identifier:       rec.Identifier,
		Project:          rec.Key[0],
		Category:         rec.Key[1],
		Title:            rec.Key[2],
		Version:          rec.Version,
		Content:          rec.Payload.Content,
		ExampleCorrect:   rec.Payload.ExampleCorrect,
		ExampleIncorrect: rec.Payload.ExampleIncorrect,
		HasEmbedding:     len(rec.Embedding) > 0,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
		DeletedAt:        rec.DeletedAt,
	}
}

// Views maps View over a slice of records.
func Views(recs []*catalog.Record[Convention]) []ConventionView {
	views := make([]ConventionView, len(recs))
	for i, rec := range recs {
		views[i] = View(rec)
	}
	return views
}
