package mcp

import "github.com/mark3labs/mcp-go/mcp"

var readDomainSpecTool = mcp.NewTool("read_domain_spec",
	mcp.WithDescription("Read a domain document: its summary, properties, policies and declared dependencies. Omit version to get the latest."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project the domain belongs to"),
	),
	mcp.WithString("service",
		mcp.Required(),
		mcp.Description("Service that owns the domain"),
	),
	mcp.WithString("domain",
		mcp.Required(),
		mcp.Description("Domain name, e.g. 'User'"),
	),
	mcp.WithNumber("version",
		mcp.Description("Specific version to read (default: latest)"),
	),
)

var readProjectConventionsTool = mcp.NewTool("read_project_conventions",
	mcp.WithDescription("List the latest version of each project convention, optionally narrowed to one category."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project to list conventions for"),
	),
	mcp.WithString("category",
		mcp.Description("Optional category filter, e.g. NAMING or TESTING"),
	),
)

var analyzeImpactTool = mcp.NewTool("analyze_impact",
	mcp.WithDescription("Find every domain in the project that declares a dependency on the given domain, with a human-readable summary."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project the domain belongs to"),
	),
	mcp.WithString("service",
		mcp.Required(),
		mcp.Description("Service that owns the domain"),
	),
	mcp.WithString("domain",
		mcp.Required(),
		mcp.Description("Domain to analyze"),
	),
)

var semanticSearchTool = mcp.NewTool("semantic_search",
	mcp.WithDescription("Search domain documents and project conventions semantically. Returns matches from both catalogs ordered by similarity."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("top_k",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
	mcp.WithNumber("similarity_threshold",
		mcp.Description("Minimum similarity, exclusive (default 0.3)"),
	),
)

var createDomainDocumentTool = mcp.NewTool("create_or_update_domain_document",
	mcp.WithDescription("Create a domain document or append a new version of an existing one. Versions are never overwritten."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project the domain belongs to"),
	),
	mcp.WithString("service",
		mcp.Required(),
		mcp.Description("Service that owns the domain"),
	),
	mcp.WithString("domain",
		mcp.Required(),
		mcp.Description("Domain name, e.g. 'User'"),
	),
	mcp.WithString("summary",
		mcp.Description("Short description of the domain"),
	),
	mcp.WithArray("properties",
		mcp.Description("Domain properties: objects with name, type, description, is_required, is_immutable"),
		mcp.Items(map[string]any{"type": "object"}),
	),
	mcp.WithArray("policies",
		mcp.Description("Domain policies: objects with category, subject, content"),
		mcp.Items(map[string]any{"type": "object"}),
	),
	mcp.WithArray("dependencies",
		mcp.Description("Declared references to other domains: objects with target_domain, relation_type, description, impact_description"),
		mcp.Items(map[string]any{"type": "object"}),
	),
)

var createProjectConventionTool = mcp.NewTool("create_or_update_project_convention",
	mcp.WithDescription("Create a project convention or append a new version of an existing one."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project the convention belongs to"),
	),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Convention category, e.g. NAMING or ARCHITECTURE"),
	),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Convention title"),
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("The convention text"),
	),
	mcp.WithString("example_correct",
		mcp.Description("Example that follows the convention"),
	),
	mcp.WithString("example_incorrect",
		mcp.Description("Example that violates the convention"),
	),
)

var deleteDomainDocumentTool = mcp.NewTool("soft_delete_domain_document",
	mcp.WithDescription("Soft-delete all versions of a domain document. History is retained; the document disappears from reads and search."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project the domain belongs to"),
	),
	mcp.WithString("service",
		mcp.Required(),
		mcp.Description("Service that owns the domain"),
	),
	mcp.WithString("domain",
		mcp.Required(),
		mcp.Description("Domain to delete"),
	),
)

var deleteProjectConventionTool = mcp.NewTool("soft_delete_project_convention",
	mcp.WithDescription("Soft-delete all versions of a project convention."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project the convention belongs to"),
	),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Convention category"),
	),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Convention to delete"),
	),
)

var listProjectsTool = mcp.NewTool("list_projects",
	mcp.WithDescription("List every project that has at least one live domain document or project convention."),
)
