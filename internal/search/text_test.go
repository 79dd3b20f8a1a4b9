package search

import (
	"testing"

	"github.com/ttutta/dcma/internal/conventions"
	"github.com/ttutta/dcma/internal/domains"
)

func TestDocumentText(t *testing.T) {
	doc := domains.Document{
		Summary: "Registered account holder",
		Properties: []domains.Property{
			{Name: "id", Type: "uuid", Description: "primary key"},
			{Name: "email", Type: "string", Description: "login address"},
		},
		Policies: []domains.Policy{
			{Category: "VALIDATION", Content: "email must be unique"},
		},
	}

	got := DocumentText("shop", "accounts", "User", doc)
	want := "domain: User | project: shop | service: accounts | " +
		"summary: Registered account holder | " +
		"properties: id(uuid): primary key, email(string): login address | " +
		"policies: VALIDATION - email must be unique"
	if got != want {
		t.Errorf("DocumentText:\n got %q\nwant %q", got, want)
	}
}

func TestDocumentTextOmitsEmptySections(t *testing.T) {
	got := DocumentText("shop", "accounts", "User", domains.Document{})
	want := "domain: User | project: shop | service: accounts"
	if got != want {
		t.Errorf("DocumentText = %q, want %q", got, want)
	}
}

func TestConventionText(t *testing.T) {
	conv := conventions.Convention{
		Content:          "Use snake_case for database columns",
		ExampleCorrect:   "created_at",
		ExampleIncorrect: "createdAt",
	}

	got := ConventionText("shop", "NAMING", "column-names", conv)
	want := "convention: column-names | category: NAMING | project: shop | " +
		"content: Use snake_case for database columns | " +
		"correct example: created_at | incorrect example: createdAt"
	if got != want {
		t.Errorf("ConventionText:\n got %q\nwant %q", got, want)
	}
}
