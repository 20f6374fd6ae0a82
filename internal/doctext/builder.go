package doctext

import (
	"strings"

	"github.com/beevik/etree"

	"docxbench/engine/internal/docx"
)

// Write builds a new document from flat text and saves it to path,
// overwriting any existing file. The existing file, if any, is never read.
func Write(path, text string) error {
	if err := validateTarget(path); err != nil {
		return err
	}
	doc, err := Build(text)
	if err != nil {
		return err
	}
	return doc.Save(path)
}

// Build assembles a fresh document, one block per EntrySeparator-delimited section.
func Build(text string) (*docx.Document, error) {
	doc := docx.New()
	body := doc.Body()
	for _, section := range SplitSections(text) {
		el, err := buildSection(section)
		if err != nil {
			return nil, err
		}
		docx.AppendBlock(body, el)
	}
	return doc, nil
}

func SplitSections(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, EntrySeparator)
}

// buildSection turns one section into a detached block element. Image
// markers become a placeholder paragraph; image content is never synthesized.
func buildSection(section string) (*etree.Element, error) {
	switch {
	case strings.HasPrefix(section, TableMarker):
		table, err := DecodeTable(StripTableMarker(section), nil, nil)
		if err != nil {
			return nil, err
		}
		return table.Element(), nil
	case strings.HasPrefix(section, ImageMarker):
		return docx.NewParagraph(ImagePlaceholder, nil, nil), nil
	default:
		return docx.NewParagraph(section, nil, nil), nil
	}
}
