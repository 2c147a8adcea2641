package ingest

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers ingestion tools on an MCP server, mirroring the
// HTTP surface: list, get, submit-url. Uploads stay HTTP-only (MCP tool
// calls are a poor fit for 50 MB payloads).
func (s *Service) RegisterMCP(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "kurate_list_documents",
		Description: "List a user's documents with their table of contents and status.",
	}, s.mcpList)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "kurate_get_document",
		Description: "Fetch one document, including parsed sections when ready.",
	}, s.mcpGet)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "kurate_submit_url",
		Description: "Submit a web page URL for ingestion. Returns a document id to poll.",
	}, s.mcpSubmitURL)
}

type mcpListInput struct {
	Owner string `json:"owner" jsonschema:"owner whose documents to list"`
}

type mcpListOutput struct {
	Documents []*Document `json:"documents"`
	Count     int         `json:"count"`
}

func (s *Service) mcpList(ctx context.Context, _ *mcp.CallToolRequest, in mcpListInput) (*mcp.CallToolResult, mcpListOutput, error) {
	docs, err := s.List(ctx, in.Owner)
	if err != nil {
		return nil, mcpListOutput{}, err
	}
	return nil, mcpListOutput{Documents: docs, Count: len(docs)}, nil
}

type mcpGetInput struct {
	Owner      string `json:"owner" jsonschema:"owner of the document"`
	DocumentID string `json:"document_id" jsonschema:"document identifier returned at submission"`
}

type mcpGetOutput struct {
	Document *Document `json:"document"`
}

func (s *Service) mcpGet(ctx context.Context, _ *mcp.CallToolRequest, in mcpGetInput) (*mcp.CallToolResult, mcpGetOutput, error) {
	doc, err := s.Get(ctx, in.Owner, in.DocumentID)
	if err != nil {
		return nil, mcpGetOutput{}, err
	}
	return nil, mcpGetOutput{Document: doc}, nil
}

type mcpSubmitURLInput struct {
	Owner string `json:"owner" jsonschema:"owner to attribute the document to"`
	URL   string `json:"url" jsonschema:"absolute http(s) URL of the page to ingest"`
}

type mcpSubmitURLOutput struct {
	Receipt *Receipt `json:"receipt"`
}

func (s *Service) mcpSubmitURL(ctx context.Context, _ *mcp.CallToolRequest, in mcpSubmitURLInput) (*mcp.CallToolResult, mcpSubmitURLOutput, error) {
	receipt, err := s.SubmitURL(ctx, in.Owner, in.URL)
	if err != nil {
		return nil, mcpSubmitURLOutput{}, err
	}
	return nil, mcpSubmitURLOutput{Receipt: receipt}, nil
}
