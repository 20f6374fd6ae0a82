package doctext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"docxbench/engine/internal/docx"
)

type fixture struct {
	doc *docx.Document
}

func newFixture() *fixture {
	return &fixture{doc: docx.New()}
}

func (f *fixture) add(el *etree.Element) *fixture {
	docx.AppendBlock(f.doc.Body(), el)
	return f
}

func (f *fixture) text(text string) *fixture {
	return f.add(docx.NewParagraph(text, nil, nil))
}

func (f *fixture) runs(runs ...*etree.Element) *fixture {
	p := etree.NewElement("w:p")
	for _, r := range runs {
		p.AddChild(r)
	}
	return f.add(p)
}

func (f *fixture) image() *fixture {
	p := etree.NewElement("w:p")
	p.CreateElement("w:r").CreateElement("w:drawing")
	return f.add(p)
}

func (f *fixture) table(rows ...[]string) *fixture {
	table := docx.NewTable(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		for j, text := range row {
			cell, _ := table.Cell(i, j)
			cell.SetParagraphs([]string{text}, nil)
		}
	}
	return f.add(table.Element())
}

func (f *fixture) save(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.doc.Save(path))
	return path
}

// run builds a w:r whose w:rPr holds one empty toggle element per prop ("b", "i", ...).
func run(text string, props ...string) *etree.Element {
	var rPr *etree.Element
	if len(props) > 0 {
		rPr = etree.NewElement("w:rPr")
		for _, prop := range props {
			rPr.CreateElement("w:" + prop)
		}
	}
	return docx.NewRun(text, rPr)
}

func inserted(runs ...*etree.Element) *etree.Element {
	ins := etree.NewElement("w:ins")
	ins.CreateAttr("w:id", "1")
	ins.CreateAttr("w:author", "reviewer")
	for _, r := range runs {
		ins.AddChild(r)
	}
	return ins
}

func deleted(text string) *etree.Element {
	del := etree.NewElement("w:del")
	del.CreateAttr("w:id", "2")
	del.CreateAttr("w:author", "reviewer")
	del.CreateElement("w:r").CreateElement("w:delText").SetText(text)
	return del
}

// sample mirrors the document most tests start from:
// paragraph, 2x2 table, paragraph.
func sample(t *testing.T) string {
	t.Helper()
	return newFixture().
		text("Hello World").
		table([]string{"A1", "B1"}, []string{"A2", "B2"}).
		text("Goodbye World").
		save(t, "sample.docx")
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
