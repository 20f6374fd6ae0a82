package doctext

import (
	"strings"

	"github.com/beevik/etree"

	"docxbench/engine/internal/docx"
)

const (
	TableMarker      = "[Table]"
	ImageMarker      = "[Image]"
	ImagePlaceholder = "[Image placeholder]"
	CellSeparator    = " | "
	LineBreakMarker  = "<br>"
	EntrySeparator   = "\n\n"

	// EmptyRowMarker stands in for a row that would otherwise render as a
	// blank line, which only happens in a one-column table.
	EmptyRowMarker = "<empty>"
)

// EncodeTable renders one line per row with cells joined by CellSeparator.
// A cell's paragraphs, and any line breaks inside them, join with LineBreakMarker.
func EncodeTable(t docx.Table, mode Mode) string {
	rows := t.Rows()
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := row.Cells()
		texts := make([]string, 0, len(cells))
		for _, cell := range cells {
			texts = append(texts, cellText(cell, mode))
		}
		line := strings.Join(texts, CellSeparator)
		if line == "" {
			line = EmptyRowMarker
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// TableBlock is the EncodeTable output behind the TableMarker line.
func TableBlock(t docx.Table, mode Mode) string {
	return TableMarker + "\n" + EncodeTable(t, mode)
}

func cellText(cell docx.Cell, mode Mode) string {
	paragraphs := cell.Paragraphs()
	parts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		parts = append(parts, ParagraphText(p, mode))
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	return strings.ReplaceAll(text, "\n", LineBreakMarker)
}

// StripTableMarker returns the rows of a [Table] section: the marker and the
// line break ending its line are removed, along with trailing line breaks.
func StripTableMarker(section string) string {
	body := strings.TrimPrefix(section, TableMarker)
	if rest, ok := strings.CutPrefix(body, "\r\n"); ok {
		body = rest
	} else {
		body = strings.TrimPrefix(body, "\n")
	}
	return strings.TrimRight(body, "\r\n")
}

// DecodeTable builds a detached table from rows of CellSeparator-joined
// cells. The first row fixes the column count; shorter rows are padded with
// empty cells and longer rows are rejected. Every line is a row, blank lines
// and EmptyRowMarker lines included. template, when set, becomes the run
// properties of every cell run; tblPr, when set, is copied onto the table.
func DecodeTable(block string, template, tblPr *etree.Element) (docx.Table, error) {
	if strings.TrimSpace(block) == "" {
		return docx.Table{}, malformedTable("table has no rows")
	}
	lines := strings.Split(block, "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == EmptyRowMarker {
			line = ""
		}
		rows = append(rows, strings.Split(line, CellSeparator))
	}
	cols := len(rows[0])
	for i, cells := range rows {
		if len(cells) > cols {
			return docx.Table{}, malformedTable("row %d has %d cells, expected %d", i, len(cells), cols)
		}
	}
	table := docx.NewTable(len(rows), cols, tblPr)
	for i, row := range table.Rows() {
		cells := row.Cells()
		for j, text := range rows[i] {
			cells[j].SetParagraphs(splitCell(text), template)
		}
	}
	return table, nil
}

func splitCell(text string) []string {
	parts := strings.Split(strings.TrimSpace(text), LineBreakMarker)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
