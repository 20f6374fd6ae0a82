package doctext

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"docxbench/engine/internal/diff"
	"docxbench/engine/internal/docx"
)

type ParagraphEdit struct {
	ParagraphIndex int    `json:"paragraph_index"`
	Search         string `json:"search"`
	Replace        string `json:"replace"`
}

// Result carries the flat text before and after a mutation and the
// added/removed lines between them.
type Result struct {
	Before    string
	After     string
	Diff      string
	Truncated bool
}

// Edit replaces the first occurrence of each edit's search text inside the
// block at its paragraph_index. Indices resolve against the document as it
// was opened; edits apply in order and later edits see earlier ones.
//
// Index errors fail before any change. Unmatched searches are collected and
// reported together, and the file is left untouched when any edit misses.
func Edit(path string, edits []ParagraphEdit, opts Options) (Result, error) {
	doc, err := open(path)
	if err != nil {
		return Result{}, err
	}
	if len(edits) == 0 {
		text := Serialize(doc, Options{Mode: opts.Mode})
		return Result{Before: text, After: text}, nil
	}
	before := Serialize(doc, Options{Mode: opts.Mode})
	blocks := Walk(doc.Body())
	for _, edit := range edits {
		if edit.ParagraphIndex < 0 || edit.ParagraphIndex >= len(blocks) {
			return Result{}, &IndexError{Index: edit.ParagraphIndex, Count: len(blocks)}
		}
	}

	var missing []string
	for _, edit := range edits {
		block := &blocks[edit.ParagraphIndex]
		var found bool
		if block.Kind == KindTable {
			found, err = editTable(block, edit)
		} else {
			found = editParagraph(block, edit)
		}
		if err != nil {
			return Result{}, fmt.Errorf("paragraph %d: %w", edit.ParagraphIndex, err)
		}
		if !found {
			missing = append(missing, edit.Search)
		}
	}
	if len(missing) > 0 {
		return Result{}, &SearchNotFoundError{Searches: missing}
	}
	if err := doc.Save(path); err != nil {
		return Result{}, err
	}
	return compare(path, before, opts)
}

// editParagraph rewrites the paragraph as one run carrying the paragraph
// properties and the first run's formatting. Image paragraphs read as
// ImageMarker and their runs are never searched.
func editParagraph(block *Block, edit ParagraphEdit) bool {
	if block.Class == ClassImage {
		return false
	}
	p := block.Paragraph()
	text := ParagraphText(p, ModePlain)
	if !strings.Contains(text, edit.Search) {
		return false
	}
	updated := strings.Replace(text, edit.Search, edit.Replace, 1)
	if updated == text {
		return true
	}
	var rPr *etree.Element
	if run, ok := p.FirstRun(); ok {
		rPr = run.Properties()
	}
	replacement := docx.NewParagraph(updated, p.Properties(), rPr)
	docx.Replace(block.El, replacement)
	block.El = replacement
	block.Class = classify(docx.ParagraphOf(replacement))
	return true
}

// editTable edits the encoded table text and rebuilds the table from it,
// stamping the top-left cell's run formatting on every cell.
func editTable(block *Block, edit ParagraphEdit) (bool, error) {
	table := block.Table()
	text := EncodeTable(table, ModePlain)
	if !strings.Contains(text, edit.Search) {
		return false, nil
	}
	updated := strings.Replace(text, edit.Search, edit.Replace, 1)
	if updated == text {
		return true, nil
	}
	rebuilt, err := DecodeTable(updated, topLeftFormatting(table), table.Properties())
	if err != nil {
		return true, err
	}
	docx.Replace(block.El, rebuilt.Element())
	block.El = rebuilt.Element()
	return true, nil
}

func topLeftFormatting(table docx.Table) *etree.Element {
	cell, ok := table.Cell(0, 0)
	if !ok {
		return nil
	}
	for _, p := range cell.Paragraphs() {
		if run, ok := p.FirstRun(); ok {
			return run.Properties()
		}
	}
	return nil
}

// compare re-reads the saved file and diffs it against before.
func compare(path, before string, opts Options) (Result, error) {
	after, err := Read(path, Options{Mode: opts.Mode})
	if err != nil {
		return Result{}, err
	}
	changes, truncated := diff.ChangedLines(before, after, opts.MaxDiffLines)
	return Result{Before: before, After: after, Diff: changes, Truncated: truncated}, nil
}
