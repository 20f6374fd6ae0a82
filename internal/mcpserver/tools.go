package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	"docxbench/engine/internal/engine"
)

const (
	descPathRead  = "Absolute path to target file"
	descPathWrite = "Absolute path to target file. It should be under your current working directory."
	descPathEdit  = "Absolute path to file to edit. It should be under your current working directory."
)

func readTool() mcp.Tool {
	return mcp.NewTool(
		engine.ToolRead,
		mcp.WithDescription("Read complete contents of a docx file including tables and images. "+
			"Use this tool when you want to read a file ending with '.docx'. "+
			"Paragraphs are separated with two line breaks. "+
			"Images are converted into the placeholder [Image]. "+
			"'--- Paragraph [number] ---' marks the start of each paragraph."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description(descPathRead),
		),
	)
}

func writeTool() mcp.Tool {
	return mcp.NewTool(
		engine.ToolWrite,
		mcp.WithDescription("Create a new docx file with given content. "+
			"An existing file at the path is overwritten, so editing an existing docx file with this tool is not recommended."),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description(descPathWrite),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Content to write to the file. Two line breaks in content represent a new paragraph. "+
				"A table starts with [Table] on its own line, one row per line, cells separated with ' | '. "+
				"Escape line breaks when you input multiple lines."),
		),
	)
}

func editParagraphTool(name string) mcp.Tool {
	return mcp.NewTool(
		name,
		mcp.WithDescription("Make text replacements in specified paragraphs of a docx file. "+
			"Accepts a list of edits with paragraph index and search/replace pairs. "+
			"Each edit operates on a single paragraph and preserves the formatting of the first run. "+
			"If any search text is missing the file is left unchanged. "+
			"Returns a git-style diff showing the changes made."),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description(descPathEdit),
		),
		mcp.WithArray("edits",
			mcp.Required(),
			mcp.Description("Sequence of edits to apply to specific paragraphs."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paragraph_index": map[string]any{
						"type":        "integer",
						"description": "0-based index of the paragraph to edit. A whole table counts as one paragraph.",
					},
					"search": map[string]any{
						"type": "string",
						"description": "Text to find within the specified paragraph. " +
							"The search is performed only within the target paragraph. " +
							"Escape line breaks when you input multiple lines.",
					},
					"replace": map[string]any{
						"type": "string",
						"description": "Text to replace the search string with. " +
							"The formatting of the first run in the paragraph is applied to the entire replacement text. " +
							"Empty string represents deletion. " +
							"Escape line breaks when you input multiple lines.",
					},
				},
				"required": []string{"paragraph_index", "search", "replace"},
			}),
		),
	)
}

func insertTool() mcp.Tool {
	return mcp.NewTool(
		engine.ToolInsert,
		mcp.WithDescription("Insert new paragraphs into a docx file. "+
			"Accepts a list of inserts with text and optional paragraph index. "+
			"Each insert creates a new paragraph, or a table when the text starts with [Table], at the specified position. "+
			"If paragraph_index is not specified, the paragraph is added at the end. "+
			"When multiple inserts target the same paragraph_index, they are inserted in order. "+
			"Returns a git-style diff showing the changes made."),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description(descPathEdit),
		),
		mcp.WithArray("inserts",
			mcp.Required(),
			mcp.Description("Sequence of paragraphs to insert."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "Text to insert as a new paragraph.",
					},
					"paragraph_index": map[string]any{
						"type":        "integer",
						"description": "0-based index of the paragraph before which to insert. If not specified, insert at the end.",
					},
				},
				"required": []string{"text"},
			}),
		),
	)
}
