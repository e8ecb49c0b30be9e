// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes statute and case-law tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/kanoon"
	"github.com/nyayassist/nyayassist/internal/law"
)

// Server wraps the MCP server with NyayAssist tools.
type Server struct {
	mcp    *server.MCPServer
	engine *law.Engine
	kanoon *kanoon.Client
	db     *db.DB
}

// New creates a new MCP server with all NyayAssist tools registered.
// kanoonClient may be nil; search_cases then reports an error to the
// caller. database may be nil; case searches are then not logged.
func New(engine *law.Engine, kanoonClient *kanoon.Client, database *db.DB) *Server {
	s := &Server{engine: engine, kanoon: kanoonClient, db: database}

	s.mcp = server.NewMCPServer(
		"NyayAssist",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("detect_citations",
		mcp.WithDescription("Detect IPC/CrPC/IEA statute citations in free text and map each "+
			"to its successor provision in the new codes (BNS/BNSS/BEA)."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to scan for statute citations")),
	), s.detectCitations)

	s.mcp.AddTool(mcp.NewTool("compare_section",
		mcp.WithDescription("Map one old-code section to its successor provision. "+
			"Read the law codes guide first via the get_law_codes_guide tool or the "+
			"nyayassist://law-codes resource."),
		mcp.WithString("law_type", mcp.Required(), mcp.Description("Old legal code: IPC, CRPC, or IEA")),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section id, e.g. 302 or 304A")),
	), s.compareSection)

	s.mcp.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("List every mapped section of one legal code, sorted by section number."),
		mcp.WithString("law_type", mcp.Required(), mcp.Description("Old legal code: IPC, CRPC, or IEA")),
	), s.listSections)

	s.mcp.AddTool(mcp.NewTool("search_cases",
		mcp.WithDescription("Search Indian case law for a free-text query. Returns up to 5 "+
			"cases with cleaned snippets and links."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCases)

	s.mcp.AddTool(mcp.NewTool("get_law_codes_guide",
		mcp.WithDescription("Returns the legal code guide: supported code families and how "+
			"to phrase tool arguments."),
	), s.getLawCodesGuide)

	// Resource: law codes guide.
	s.mcp.AddResource(
		mcp.NewResource("nyayassist://law-codes", "Legal Code Guide",
			mcp.WithResourceDescription("Supported legal code families and argument conventions."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLawCodesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) detectCitations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs := law.Detect(text)
	if len(refs) == 0 {
		return mcp.NewToolResultText("no statute citations found"), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"citations":   refs,
		"comparisons": s.engine.ResolveMany(refs),
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) compareSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lawType, err := req.RequireString("law_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, missing := s.engine.ResolveBulk([]law.SectionRequest{{Family: lawType, Section: section}})
	if len(found) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("%s section %s: %s", lawType, section, missing[0].Reason)), nil
	}
	out, _ := json.MarshalIndent(found[0], "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lawType, err := req.RequireString("law_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sections, ok := s.engine.Sections(lawType)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported law type: %s", lawType)), nil
	}
	out, _ := json.MarshalIndent(sections, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchCases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.kanoon == nil {
		return mcp.NewToolResultError("case law search is not configured"), nil
	}

	start := time.Now()
	res, err := s.kanoon.Search(ctx, query, 0)
	s.logSearch(query, res, err, time.Since(start))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"cases":       res.Cases,
		"total_found": res.TotalFound,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) logSearch(query string, res *kanoon.SearchResult, err error, took time.Duration) {
	if s.db == nil {
		return
	}
	entry := db.KanoonQueryEntry{
		Query:      query,
		DurationMS: took.Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	} else {
		entry.TotalFound = res.TotalFound
		entry.Returned = len(res.Cases)
		for _, c := range res.Cases {
			entry.Cases = append(entry.Cases, db.KanoonCaseEntry{
				DocID:    c.DocID,
				Title:    c.Title,
				Snippet:  c.Snippet,
				CaseLink: c.CaseLink,
			})
		}
	}
	_, _ = s.db.LogKanoonQuery(entry)
}

func (s *Server) getLawCodesGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LawCodesGuide), nil
}

func (s *Server) readLawCodesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "nyayassist://law-codes",
			MIMEType: "text/markdown",
			Text:     LawCodesGuide,
		},
	}, nil
}
