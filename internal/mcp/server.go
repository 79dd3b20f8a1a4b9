// Package mcp exposes the catalogs, impact analysis and semantic search
// as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ttutta/dcma/internal/conventions"
	"github.com/ttutta/dcma/internal/domains"
	"github.com/ttutta/dcma/internal/impact"
	"github.com/ttutta/dcma/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server exposing the catalog tools to an agent.
type Server struct {
	domains     *domains.Service
	conventions *conventions.Service
	impact      *impact.Analyzer
	search      *search.Service
	mcp         *server.MCPServer
}

// NewServer creates the MCP server with the given services.
func NewServer(domainSvc *domains.Service, convSvc *conventions.Service, analyzer *impact.Analyzer, searchSvc *search.Service) *Server {
	s := &Server{
		domains:     domainSvc,
		conventions: convSvc,
		impact:      analyzer,
		search:      searchSvc,
	}

	s.mcp = server.NewMCPServer(
		"dcma",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(readDomainSpecTool, s.handleReadDomainSpec)
	s.mcp.AddTool(readProjectConventionsTool, s.handleReadProjectConventions)
	s.mcp.AddTool(analyzeImpactTool, s.handleAnalyzeImpact)
	s.mcp.AddTool(semanticSearchTool, s.handleSemanticSearch)
	s.mcp.AddTool(createDomainDocumentTool, s.handleCreateDomainDocument)
	s.mcp.AddTool(createProjectConventionTool, s.handleCreateProjectConvention)
	s.mcp.AddTool(deleteDomainDocumentTool, s.handleDeleteDomainDocument)
	s.mcp.AddTool(deleteProjectConventionTool, s.handleDeleteProjectConvention)
	s.mcp.AddTool(listProjectsTool, s.handleListProjects)
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
