package doctext

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxbench/engine/internal/docx"
)

func TestEditParagraph(t *testing.T) {
	path := sample(t)
	result, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "Hello", Replace: "Hi"}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "-Hello World\n+Hi World", result.Diff)
	assert.Contains(t, result.Before, "Hello World")
	assert.Contains(t, result.After, "Hi World")
	assert.Contains(t, result.After, "Goodbye World")
}

func TestEditInheritsFirstRunFormatting(t *testing.T) {
	path := newFixture().
		runs(run("Hello ", "b"), run("brave ", "i"), run("World", "u")).
		save(t, "formatting.docx")

	_, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "brave ", Replace: "new "}}, Options{})
	require.NoError(t, err)

	doc, err := docx.Open(path)
	require.NoError(t, err)
	blocks := Walk(doc.Body())
	require.Len(t, blocks, 1)
	runs := blocks[0].Paragraph().Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Hello new World", runs[0].Text())
	props := runs[0].Properties()
	require.NotNil(t, props)
	assert.NotNil(t, props.SelectElement("w:b"))
	assert.Nil(t, props.SelectElement("w:i"))
}

func TestEditKeepsParagraphProperties(t *testing.T) {
	f := newFixture().text("Heading text")
	p := f.doc.Body().ChildElements()[0]
	pPr := etree.NewElement("w:pPr")
	pPr.CreateElement("w:pStyle").CreateAttr("w:val", "Heading1")
	p.InsertChildAt(0, pPr)
	path := f.save(t, "styled.docx")

	_, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "text", Replace: "title"}}, Options{})
	require.NoError(t, err)

	doc, err := docx.Open(path)
	require.NoError(t, err)
	edited := Walk(doc.Body())[0].Paragraph()
	require.NotNil(t, edited.Properties())
	style := edited.Properties().SelectElement("w:pStyle")
	require.NotNil(t, style)
	assert.Equal(t, "Heading1", style.SelectAttrValue("w:val", ""))
}

func TestEditAcceptsTrackedChanges(t *testing.T) {
	path := newFixture().
		runs(run("Hello "), inserted(run("big ")), deleted("old "), run("World")).
		save(t, "tracked.docx")

	result, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "big", Replace: "wide"}}, Options{Mode: ModeAnnotated})
	require.NoError(t, err)
	assert.Equal(t, "-Hello [insert: big ][delete: old ]World\n+Hello wide World", result.Diff)
}

func TestEditAggregatesMissingSearches(t *testing.T) {
	path := newFixture().text("Hello World").save(t, "single.docx")
	original := readFile(t, path)

	_, err := Edit(path, []ParagraphEdit{
		{ParagraphIndex: 0, Search: "Hello", Replace: "Hi"},
		{ParagraphIndex: 0, Search: "Nonexistent", Replace: "X"},
		{ParagraphIndex: 0, Search: "Missing", Replace: "Y"},
	}, Options{})
	require.ErrorIs(t, err, ErrSearchNotFound)
	assert.Contains(t, err.Error(), "Nonexistent")
	var notFound *SearchNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"Nonexistent", "Missing"}, notFound.Searches)
	assert.Equal(t, original, readFile(t, path))
}

func TestEditTableReconstruction(t *testing.T) {
	path := newFixture().
		text("zero").
		text("one").
		text("two").
		text("three").
		table([]string{"Table", "Content"}, []string{"More", "Text"}).
		save(t, "table.docx")

	result, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 4, Search: "Table | Content", Replace: "Modified | Cell"}}, Options{})
	require.NoError(t, err)
	assert.Contains(t, result.Diff, "-Table | Content")
	assert.Contains(t, result.Diff, "+Modified | Cell")
	assert.NotContains(t, result.Diff, "More | Text")

	doc, err := docx.Open(path)
	require.NoError(t, err)
	blocks := Walk(doc.Body())
	require.Len(t, blocks, 5)
	table := blocks[4].Table()
	rows := table.Rows()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row.Cells(), 2)
	}
	assert.Equal(t, "Modified | Cell\nMore | Text", EncodeTable(table, ModePlain))
}

func TestEditOneColumnTableKeepsEmptyRows(t *testing.T) {
	path := newFixture().table([]string{""}, []string{"B"}, []string{"C"}).save(t, "one-column.docx")
	content, err := Read(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "[Table]\n<empty>\nB\nC", content)

	result, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "B", Replace: "X"}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "-B\n+X", result.Diff)

	doc, err := docx.Open(path)
	require.NoError(t, err)
	assert.Len(t, Walk(doc.Body())[0].Table().Rows(), 3)
	assert.Equal(t, "[Table]\n<empty>\nX\nC", result.After)
}

func TestEditTableAddsColumn(t *testing.T) {
	path := newFixture().table([]string{"a", "b"}, []string{"c", "d"}).save(t, "grow.docx")
	_, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "a | b", Replace: "a | b | e"}}, Options{})
	require.NoError(t, err)

	content, err := Read(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "[Table]\na | b | e\nc | d | ", content)
}

func TestEditTableRejectsLongerRow(t *testing.T) {
	path := newFixture().table([]string{"a", "b"}, []string{"c", "d"}).save(t, "jagged.docx")
	original := readFile(t, path)
	_, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "c | d", Replace: "c | d | e"}}, Options{})
	require.ErrorIs(t, err, ErrMalformedTable)
	assert.Equal(t, original, readFile(t, path))
}

func TestEditTableUsesTopLeftFormatting(t *testing.T) {
	f := newFixture().table([]string{"a", "b"})
	table := docx.TableOf(f.doc.Body().ChildElements()[0])
	cell, _ := table.Cell(0, 0)
	bold := run("x", "b").SelectElement("w:rPr")
	cell.SetParagraphs([]string{"a"}, bold)
	path := f.save(t, "bold-table.docx")

	_, err := Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "b", Replace: "z"}}, Options{})
	require.NoError(t, err)

	doc, err := docx.Open(path)
	require.NoError(t, err)
	rebuilt := Walk(doc.Body())[0].Table()
	edited, ok := rebuilt.Cell(0, 1)
	require.True(t, ok)
	first, ok := edited.Paragraphs()[0].FirstRun()
	require.True(t, ok)
	require.NotNil(t, first.Properties())
	assert.NotNil(t, first.Properties().SelectElement("w:b"))
}

func TestEditSkipsImageRunText(t *testing.T) {
	drawing := etree.NewElement("w:r")
	drawing.CreateElement("w:drawing")
	path := newFixture().runs(drawing, run("Figure 1")).save(t, "figure.docx")
	original := readFile(t, path)

	content, err := Read(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "[Image]", content)

	_, err = Edit(path, []ParagraphEdit{{ParagraphIndex: 0, Search: "Figure 1", Replace: "Figure 2"}}, Options{})
	require.ErrorIs(t, err, ErrSearchNotFound)
	assert.Equal(t, original, readFile(t, path))

	doc, err := docx.Open(path)
	require.NoError(t, err)
	assert.True(t, Walk(doc.Body())[0].Paragraph().HasGraphic())
}

func TestEditOutOfRange(t *testing.T) {
	path := sample(t)
	original := readFile(t, path)
	_, err := Edit(path, []ParagraphEdit{
		{ParagraphIndex: 0, Search: "Hello", Replace: "Hi"},
		{ParagraphIndex: 999, Search: "x", Replace: "y"},
	}, Options{})
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Contains(t, err.Error(), "999")
	assert.Equal(t, original, readFile(t, path))

	_, err = Edit(path, []ParagraphEdit{{ParagraphIndex: -1, Search: "x", Replace: "y"}}, Options{})
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestEditNoOpLeavesDocumentUnchanged(t *testing.T) {
	path := newFixture().
		runs(run("Hello ", "b"), run("World", "i")).
		image().
		table([]string{"a", "b"}).
		save(t, "noop.docx")
	before, err := Read(path, Options{})
	require.NoError(t, err)

	result, err := Edit(path, []ParagraphEdit{
		{ParagraphIndex: 0, Search: "World", Replace: "World"},
		{ParagraphIndex: 2, Search: "a", Replace: "a"},
	}, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Diff)

	after, err := Read(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEditSequentialEditsSeeEarlierEdits(t *testing.T) {
	path := sample(t)
	result, err := Edit(path, []ParagraphEdit{
		{ParagraphIndex: 0, Search: "Hello", Replace: "Hi"},
		{ParagraphIndex: 0, Search: "Hi World", Replace: "Hi Everyone"},
		{ParagraphIndex: 2, Search: "World", Replace: "Moon"},
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Hi Everyone\n\n[Table]\nA1 | B1\nA2 | B2\n\nGoodbye Moon", result.After)
}

func TestIndexStabilityAcrossReadAndEdit(t *testing.T) {
	path := newFixture().
		text("p0").
		table([]string{"t1", "x"}).
		text("p2").
		table([]string{"t3", "y"}).
		image().
		text("p5").
		save(t, "interleaved.docx")

	content, err := Read(path, Options{Indexed: true})
	require.NoError(t, err)
	entries := strings.Split(content, "\n\n")
	require.Len(t, entries, 6)

	doc, err := docx.Open(path)
	require.NoError(t, err)
	blocks := Walk(doc.Body())
	require.Len(t, blocks, len(entries))
	for i, block := range blocks {
		assert.Equal(t, IndexMarker(i)+"\n"+Entry(block, ModePlain), entries[i])
	}

	result, err := Edit(path, []ParagraphEdit{
		{ParagraphIndex: 3, Search: "t3", Replace: "T3"},
		{ParagraphIndex: 5, Search: "p5", Replace: "P5"},
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "-t3 | y\n+T3 | y\n-p5\n+P5", result.Diff)
}

func TestEditRequiresDocx(t *testing.T) {
	_, err := Edit(filepath.Join(t.TempDir(), "missing.docx"), []ParagraphEdit{{Search: "a"}}, Options{})
	assert.ErrorIs(t, err, ErrFileNotFound)
	_, err = Edit("relative.docx", nil, Options{})
	assert.ErrorIs(t, err, ErrInvalidPath)
}
