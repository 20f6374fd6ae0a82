package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"docxbench/engine/internal/engine"
	"docxbench/engine/internal/errinfo"
	"docxbench/engine/internal/logging"
)

const serverName = "docxbench"

const instructions = `Tools for reading and editing Word (.docx) documents as flat text.

Read a document with read_docx before editing it. Every block of the body is an entry:
a paragraph, an image ([Image]) or a whole table ([Table] followed by one row per line,
cells separated by " | ", "<br>" inside a cell for a line break). Entries are numbered
by "--- Paragraph N ---" markers; use N as paragraph_index for edit_docx_paragraph and
edit_docx_insert. Indices change after inserts, so read again before further edits.`

type Handler func(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo)

type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

func New(eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	hooks := &server.Hooks{}
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Error("mcp.error", "id", id, "method", method, "error", err)
	})
	srv := server.NewMCPServer(
		serverName,
		engine.EngineVersion,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithHooks(hooks),
	)
	srv.AddTools(Tools(eng, logger)...)
	return &Server{mcp: srv, logger: logger}
}

// Tools binds each tool definition to its engine handler.
func Tools(eng *engine.Engine, logger *slog.Logger) []server.ServerTool {
	return []server.ServerTool{
		{Tool: readTool(), Handler: wrap(engine.ToolRead, eng.DocxRead, logger)},
		{Tool: writeTool(), Handler: wrap(engine.ToolWrite, eng.DocxWrite, logger)},
		{Tool: editParagraphTool(engine.ToolEditParagraph), Handler: wrap(engine.ToolEditParagraph, eng.DocxEditParagraph, logger)},
		{Tool: insertTool(), Handler: wrap(engine.ToolInsert, eng.DocxInsert, logger)},
		{Tool: editParagraphTool(engine.ToolEdit), Handler: wrap(engine.ToolEdit, eng.DocxEditParagraph, logger)},
	}
}

func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve answers MCP requests on in/out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("mcp.serve", "server", serverName, "version", engine.EngineVersion)
	return stdio.Listen(ctx, in, out)
}

func wrap(name string, handler Handler, logger *slog.Logger) server.ToolHandlerFunc {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}
		logger.Debug("mcp.tool_call", "tool", name, "arguments", logging.SummarizeJSON(params))
		result, errInfo := handler(ctx, params)
		if errInfo != nil {
			logger.Warn("mcp.tool_error", "tool", name, "error_code", errInfo.ErrorCode, "detail", errInfo.Detail)
			return mcp.NewToolResultError(errInfo.Error()), nil
		}
		if text, ok := result.(engine.ToolResult); ok {
			return mcp.NewToolResultText(text.ToolText()), nil
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
