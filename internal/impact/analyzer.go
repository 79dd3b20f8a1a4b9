// Package impact answers "which domains reference domain D". The
// relation is a flat attribute on each document (declared dependencies),
// so analysis is a single linear scan over the latest live documents of
// a project — no graph traversal and no cycle handling.
package impact

import (
	"context"
	"fmt"
	"strings"

	"github.com/ttutta/dcma/internal/domains"
)

// Reference is one domain document that declares a dependency on the
// analysis target.
type Reference struct {
	Project      string `json:"project"`
	Service      string `json:"service"`
	Domain       string `json:"domain"`
	RelationType string `json:"relation_type,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Report is the result of an impact analysis.
type Report struct {
	Project    string      `json:"project"`
	Service    string      `json:"service"`
	Domain     string      `json:"domain"`
	References []Reference `json:"references"`
	Summary    string      `json:"summary"`
}

// Analyzer finds direct referrers of a domain.
type Analyzer struct {
	domains *domains.Service
}

// NewAnalyzer creates an analyzer over the domain catalog.
func NewAnalyzer(svc *domains.Service) *Analyzer {
	return &Analyzer{domains: svc}
}

// Analyze scans the latest non-deleted documents of the project and
// collects every document whose declared dependencies name the target
// domain. An empty reference list is a valid result, not an error.
func (a *Analyzer) Analyze(ctx context.Context, project, service, domain string) (*Report, error) {
	docs, err := a.domains.ListLatestForProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("listing domains for %s: %w", project, err)
	}

	report := &Report{
		Project:    project,
		Service:    service,
		Domain:     domain,
		References: []Reference{},
	}

	for _, rec := range docs {
		// A document does not reference itself.
		if rec.Key[1] == service && rec.Key[2] == domain {
			continue
		}
		for _, dep := range rec.Payload.Dependencies {
			if dep.TargetDomain != domain {
				continue
			}
			report.References = append(report.References, Reference{
				Project:      rec.Key[0],
				Service:      rec.Key[1],
				Domain:       rec.Key[2],
				RelationType: dep.RelationType,
				Description:  dep.Description,
			})
			break
		}
	}

	report.Summary = summarize(domain, report.References)
	return report, nil
}

func summarize(domain string, refs []Reference) string {
	if len(refs) == 0 {
		return fmt.Sprintf("No other domains reference the '%s' domain.", domain)
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Domain
	}
	return fmt.Sprintf("The '%s' domain is referenced by %d domain(s): %s.",
		domain, len(refs), strings.Join(names, ", "))
}
