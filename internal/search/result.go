package search

// Document types reported in search matches.
const (
	TypeDomainDocument    = "DOMAIN_DOCUMENT"
	TypeProjectConvention = "PROJECT_CONVENTION"
)

// Match is one search hit. Content carries the full snapshot of the
// matched entity (a domains.DocumentView or conventions.ConventionView).
type Match struct {
	DocumentType string  `json:"document_type"`
	DocumentID   string  `json:"document_id"`
	Similarity   float32 `json:"similarity"`
	Content      any     `json:"content"`
}

// Result is the response of a semantic search. It is ephemeral and
// never persisted.
type Result struct {
	Query      string  `json:"query"`
	Matches    []Match `json:"matches"`
	TotalCount int     `json:"total_count"`
}
