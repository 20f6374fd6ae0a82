package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxbench/engine/internal/engine"
	"docxbench/engine/internal/settings"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	config, err := settings.NewStore(filepath.Join(t.TempDir(), "settings.json")).Load()
	require.NoError(t, err)
	eng, err := engine.New(engine.WithSettings(config))
	require.NoError(t, err)
	return eng
}

func toolsByName(t *testing.T) map[string]server.ServerTool {
	t.Helper()
	out := map[string]server.ServerTool{}
	for _, tool := range Tools(newTestEngine(t), nil) {
		out[tool.Tool.Name] = tool
	}
	return out
}

func call(t *testing.T, tool server.ServerTool, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: tool.Tool.Name, Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestToolsList(t *testing.T) {
	srv := New(newTestEngine(t), nil)
	resp := srv.MCP().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var payload struct {
		Result struct {
			Tools []struct {
				Name        string         `json:"name"`
				InputSchema map[string]any `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	var names []string
	for _, tool := range payload.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"edit_docx", "edit_docx_insert", "edit_docx_paragraph", "read_docx", "write_docx"}, names)
}

func TestWriteReadEditFlow(t *testing.T) {
	tools := toolsByName(t)
	path := filepath.Join(t.TempDir(), "flow.docx")

	result := call(t, tools[engine.ToolWrite], map[string]any{
		"path":    path,
		"content": "Hello World\n\n[Table]\nA1 | B1\nA2 | B2\n\nGoodbye World",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "Document created successfully", resultText(t, result))

	result = call(t, tools[engine.ToolRead], map[string]any{"path": path})
	assert.False(t, result.IsError)
	assert.Equal(t, "--- Paragraph 0 ---\nHello World\n\n--- Paragraph 1 ---\n[Table]\nA1 | B1\nA2 | B2\n\n--- Paragraph 2 ---\nGoodbye World", resultText(t, result))

	result = call(t, tools[engine.ToolEditParagraph], map[string]any{
		"path": path,
		"edits": []any{
			map[string]any{"paragraph_index": float64(0), "search": "Hello", "replace": "Hi"},
		},
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "Document edited successfully\nDiff:\n-Hello World\n+Hi World", resultText(t, result))

	result = call(t, tools[engine.ToolInsert], map[string]any{
		"path":    path,
		"inserts": []any{map[string]any{"text": "Appendix"}},
	})
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "+Appendix")

	result = call(t, tools[engine.ToolEdit], map[string]any{
		"path":  path,
		"edits": []any{map[string]any{"paragraph_index": 3, "search": "Appendix", "replace": "Annex"}},
	})
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "+Annex")
}

func TestToolErrors(t *testing.T) {
	tools := toolsByName(t)
	path := filepath.Join(t.TempDir(), "errors.docx")
	call(t, tools[engine.ToolWrite], map[string]any{"path": path, "content": "Hello World"})

	result := call(t, tools[engine.ToolEditParagraph], map[string]any{
		"path":  path,
		"edits": []any{map[string]any{"paragraph_index": 0, "search": "Nonexistent", "replace": "X"}},
	})
	assert.True(t, result.IsError)
	assert.Equal(t, "Search text not found: Nonexistent", resultText(t, result))

	result = call(t, tools[engine.ToolRead], map[string]any{"path": "relative.docx"})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Not an absolute path")

	result = call(t, tools[engine.ToolRead], nil)
	assert.True(t, result.IsError)
	assert.Equal(t, "path is required", resultText(t, result))
}
