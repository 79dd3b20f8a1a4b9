package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ttutta/dcma/internal/catalog"
	"github.com/ttutta/dcma/internal/conventions"
	"github.com/ttutta/dcma/internal/domains"
)

func (s *Server) handleReadDomainSpec(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	service, err := request.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: service"), nil
	}
	domain, err := request.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: domain"), nil
	}
	version := request.GetInt("version", 0)

	rec, err := s.domains.GetByIdentity(ctx, project, service, domain, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading domain document: %v", err)), nil
	}
	if rec == nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No domain document found for '%s' in %s/%s.", domain, project, service)), nil
	}

	return jsonResult(domains.View(rec))
}

func (s *Server) handleReadProjectConventions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	category := request.GetString("category", "")

	recs, err := s.conventions.ListByCategory(ctx, project, category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing conventions: %v", err)), nil
	}
	if len(recs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No conventions found for project '%s'.", project)), nil
	}

	return jsonResult(conventions.Views(recs))
}

func (s *Server) handleAnalyzeImpact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	service, err := request.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: service"), nil
	}
	domain, err := request.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: domain"), nil
	}

	report, err := s.impact.Analyze(ctx, project, service, domain)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analyzing impact: %v", err)), nil
	}

	return jsonResult(report)
}

func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	topK := request.GetInt("top_k", 0)
	threshold := request.GetFloat("similarity_threshold", 0)

	res, err := s.search.Search(ctx, query, topK, threshold)
	if err != nil {
		if catalog.IsValidation(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(res)
}

func (s *Server) handleCreateDomainDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	service, err := request.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: service"), nil
	}
	domain, err := request.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: domain"), nil
	}

	doc := domains.Document{Summary: request.GetString("summary", "")}

	args := request.GetArguments()
	if err := decodeInto(args["properties"], &doc.Properties); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid properties: %v", err)), nil
	}
	if err := decodeInto(args["policies"], &doc.Policies); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid policies: %v", err)), nil
	}
	if err := decodeInto(args["dependencies"], &doc.Dependencies); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid dependencies: %v", err)), nil
	}

	rec, err := s.domains.CreateOrUpdate(ctx, project, service, domain, doc)
	if err != nil {
		if catalog.IsValidation(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("saving domain document: %v", err)), nil
	}

	return jsonResult(domains.View(rec))
}

func (s *Server) handleCreateProjectConvention(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	category, err := request.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: category"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	rec, err := s.conventions.CreateOrUpdate(ctx, project, category, title, conventions.Convention{
		Content:          content,
		ExampleCorrect:   request.GetString("example_correct", ""),
		ExampleIncorrect: request.GetString("example_incorrect", ""),
	})
	if err != nil {
		if catalog.IsValidation(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("saving convention: %v", err)), nil
	}

	return jsonResult(conventions.View(rec))
}

func (s *Server) handleDeleteDomainDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	service, err := request.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: service"), nil
	}
	domain, err := request.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: domain"), nil
	}

	count, err := s.domains.SoftDelete(ctx, project, service, domain)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deleting domain document: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"%d records soft-deleted for domain document '%s'.", count, domain)), nil
}

func (s *Server) handleDeleteProjectConvention(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	category, err := request.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: category"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}

	count, err := s.conventions.SoftDelete(ctx, project, category, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deleting convention: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"%d records soft-deleted for project convention '%s'.", count, title)), nil
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docProjects, err := s.domains.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects: %v", err)), nil
	}
	convProjects, err := s.conventions.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects: %v", err)), nil
	}

	seen := make(map[string]bool)
	projects := []string{}
	for _, p := range append(docProjects, convProjects...) {
		if !seen[p] {
			seen[p] = true
			projects = append(projects, p)
		}
	}
	sort.Strings(projects)

	return jsonResult(projects)
}

// decodeInto converts a decoded-JSON argument value into a typed
// destination via a marshal round trip. A nil value leaves dst alone.
func decodeInto(raw any, dst any) error {
	if raw == nil {
		return nil
	}
	body, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
