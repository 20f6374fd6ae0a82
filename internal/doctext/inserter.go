package doctext

import (
	"github.com/beevik/etree"

	"docxbench/engine/internal/docx"
)

// Insertion adds one section before the block at ParagraphIndex, or at the
// end of the body when ParagraphIndex is nil or equals the block count.
type Insertion struct {
	Text           string `json:"text"`
	ParagraphIndex *int   `json:"paragraph_index,omitempty"`
}

// Insert places new paragraphs (or tables, for [Table] sections) into an
// existing document. Indices resolve against the document as opened, so
// inserts sharing an index land in request order.
func Insert(path string, inserts []Insertion, opts Options) (Result, error) {
	doc, err := open(path)
	if err != nil {
		return Result{}, err
	}
	before := Serialize(doc, Options{Mode: opts.Mode})
	if len(inserts) == 0 {
		return Result{Before: before, After: before}, nil
	}
	blocks := Walk(doc.Body())
	for _, ins := range inserts {
		if ins.ParagraphIndex == nil {
			continue
		}
		if index := *ins.ParagraphIndex; index < 0 || index > len(blocks) {
			return Result{}, &IndexError{Index: index, Count: len(blocks)}
		}
	}

	elements := make([]*etree.Element, 0, len(inserts))
	for _, ins := range inserts {
		el, err := buildSection(ins.Text)
		if err != nil {
			return Result{}, err
		}
		elements = append(elements, el)
	}
	body := doc.Body()
	for i, ins := range inserts {
		if ins.ParagraphIndex == nil || *ins.ParagraphIndex == len(blocks) {
			docx.AppendBlock(body, elements[i])
			continue
		}
		docx.InsertBefore(blocks[*ins.ParagraphIndex].El, elements[i])
	}
	if err := doc.Save(path); err != nil {
		return Result{}, err
	}
	return compare(path, before, opts)
}
