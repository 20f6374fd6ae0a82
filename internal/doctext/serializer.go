package doctext

import (
	"errors"
	"fmt"
	"strings"

	"docxbench/engine/internal/docx"
)

type Options struct {
	Mode Mode
	// Indexed prefixes every entry with a "--- Paragraph N ---" marker line.
	Indexed bool
	// MaxDiffLines bounds the diff computed by Edit and Insert.
	MaxDiffLines int
}

func IndexMarker(index int) string {
	return fmt.Sprintf("--- Paragraph %d ---", index)
}

// Read validates path and returns the document's flat text.
func Read(path string, opts Options) (string, error) {
	doc, err := open(path)
	if err != nil {
		return "", err
	}
	return Serialize(doc, opts), nil
}

func Serialize(doc *docx.Document, opts Options) string {
	blocks := Walk(doc.Body())
	entries := make([]string, 0, len(blocks))
	for _, block := range blocks {
		entry := Entry(block, opts.Mode)
		if opts.Indexed {
			entry = IndexMarker(block.Index) + "\n" + entry
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, EntrySeparator)
}

// Entry renders a single block the way Serialize does.
func Entry(block Block, mode Mode) string {
	if block.Kind == KindTable {
		return TableBlock(block.Table(), mode)
	}
	if block.Class == ClassImage {
		return ImageMarker
	}
	return ParagraphText(block.Paragraph(), mode)
}

func open(path string) (*docx.Document, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	doc, err := docx.Open(path)
	if err != nil {
		if errors.Is(err, docx.ErrNotPackage) {
			return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return doc, nil
}
