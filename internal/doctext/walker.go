package doctext

import (
	"github.com/beevik/etree"

	"docxbench/engine/internal/docx"
)

type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindTable
)

func (k BlockKind) String() string {
	if k == KindTable {
		return "table"
	}
	return "paragraph"
}

type ParagraphClass int

const (
	ClassText ParagraphClass = iota
	ClassImage
	ClassEmpty
)

// Block is one addressable entry of the body. Index is its position among
// blocks, which is the paragraph_index callers use; a table occupies one index.
type Block struct {
	Index int
	Kind  BlockKind
	Class ParagraphClass
	El    *etree.Element
}

func (b Block) Paragraph() docx.Paragraph {
	return docx.ParagraphOf(b.El)
}

func (b Block) Table() docx.Table {
	return docx.TableOf(b.El)
}

// Walk classifies the body's children in storage order. Elements other than
// paragraphs and tables (section properties, bookmarks, content controls)
// are skipped and take no index.
func Walk(body *etree.Element) []Block {
	var blocks []Block
	for _, el := range body.ChildElements() {
		switch {
		case docx.IsW(el, "p"):
			blocks = append(blocks, Block{
				Index: len(blocks),
				Kind:  KindParagraph,
				Class: classify(docx.ParagraphOf(el)),
				El:    el,
			})
		case docx.IsW(el, "tbl"):
			blocks = append(blocks, Block{Index: len(blocks), Kind: KindTable, El: el})
		}
	}
	return blocks
}

func classify(p docx.Paragraph) ParagraphClass {
	if p.HasGraphic() {
		return ClassImage
	}
	if ParagraphText(p, ModePlain) == "" {
		return ClassEmpty
	}
	return ClassText
}
