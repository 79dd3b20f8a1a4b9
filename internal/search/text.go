// Package search turns catalog records into embedding vectors and
// serves merged nearest-neighbor queries over both catalogs. SQLite
// holds the durable embedding column; an in-memory chromem index is
// rebuilt from it at startup and kept in sync by the save and delete
// hooks.
package search

import (
	"fmt"
	"strings"

	"github.com/ttutta/dcma/internal/conventions"
	"github.com/ttutta/dcma/internal/domains"
)

// DocumentText serializes a domain document into the text that gets
// embedded. The serialization is deterministic: the same document
// always produces the same text, so re-saving unchanged content yields
// the same vector.
func DocumentText(project, service, domain string, doc domains.Document) string {
	parts := []string{
		"domain: " + domain,
		"project: " + project,
		"service: " + service,
	}

	if doc.Summary != "" {
		parts = append(parts, "summary: "+doc.Summary)
	}

	if len(doc.Properties) > 0 {
		props := make([]string, len(doc.Properties))
		for i, p := range doc.Properties {
			props[i] = fmt.Sprintf("%s(%s): %s", p.Name, p.Type, p.Description)
		}
		parts = append(parts, "properties: "+strings.Join(props, ", "))
	}

	if len(doc.Policies) > 0 {
		pols := make([]string, len(doc.Policies))
		for i, p := range doc.Policies {
			pols[i] = p.Category + " - " + p.Content
		}
		parts = append(parts, "policies: "+strings.Join(pols, ", "))
	}

	return strings.Join(parts, " | ")
}

// ConventionText serializes a project convention into its embedding
// text.
func ConventionText(project, category, title string, conv conventions.Convention) string {
	parts := []string{
		"convention: " + title,
		"category: " + category,
		"project: " + project,
		"content: " + conv.Content,
	}

	if conv.ExampleCorrect != "" {
		parts = append(parts, "correct example: "+conv.ExampleCorrect)
	}
	if conv.ExampleIncorrect != "" {
		parts = append(parts, "incorrect example: "+conv.ExampleIncorrect)
	}

	return strings.Join(parts, " | ")
}
