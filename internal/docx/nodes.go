package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const tableWidth = 9360

// IsW reports whether el is the WordprocessingML element with the given local name.
func IsW(el *etree.Element, tag string) bool {
	if el == nil || el.Tag != tag {
		return false
	}
	return el.Space == "w" || el.NamespaceURI() == NamespaceW
}

func findW(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if IsW(child, tag) {
			return child
		}
	}
	return nil
}

func childrenW(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if IsW(child, tag) {
			out = append(out, child)
		}
	}
	return out
}

type Paragraph struct {
	el *etree.Element
}

func ParagraphOf(el *etree.Element) Paragraph {
	return Paragraph{el: el}
}

func (p Paragraph) Element() *etree.Element {
	return p.el
}

func (p Paragraph) Properties() *etree.Element {
	return findW(p.el, "pPr")
}

// HasGraphic reports whether the paragraph embeds a DrawingML or VML graphic.
func (p Paragraph) HasGraphic() bool {
	return hasDescendantW(p.el, "drawing") || hasDescendantW(p.el, "pict")
}

// Runs lists every run in document order, including runs nested in
// revision, hyperlink and field wrappers.
func (p Paragraph) Runs() []Run {
	var runs []Run
	collectRuns(p.el, &runs)
	return runs
}

// FirstRun returns the first run in document order.
func (p Paragraph) FirstRun() (Run, bool) {
	runs := p.Runs()
	if len(runs) == 0 {
		return Run{}, false
	}
	return runs[0], true
}

func collectRuns(el *etree.Element, runs *[]Run) {
	for _, child := range el.ChildElements() {
		switch {
		case IsW(child, "r"):
			*runs = append(*runs, Run{el: child})
		case IsW(child, "pPr"), IsW(child, "rPr"):
		default:
			collectRuns(child, runs)
		}
	}
}

func hasDescendantW(el *etree.Element, tag string) bool {
	for _, child := range el.ChildElements() {
		if IsW(child, tag) || hasDescendantW(child, tag) {
			return true
		}
	}
	return false
}

type Run struct {
	el *etree.Element
}

func RunOf(el *etree.Element) Run {
	return Run{el: el}
}

func (r Run) Element() *etree.Element {
	return r.el
}

func (r Run) Properties() *etree.Element {
	if r.el == nil {
		return nil
	}
	return findW(r.el, "rPr")
}

// Text returns the run's visible characters. Deleted text (w:delText) is
// included; callers decide whether a deletion counts.
func (r Run) Text() string {
	if r.el == nil {
		return ""
	}
	var b strings.Builder
	for _, child := range r.el.ChildElements() {
		switch {
		case IsW(child, "t"), IsW(child, "delText"):
			b.WriteString(child.Text())
		case IsW(child, "tab"):
			b.WriteByte('\t')
		case IsW(child, "br"), IsW(child, "cr"):
			b.WriteByte('\n')
		case IsW(child, "noBreakHyphen"):
			b.WriteByte('-')
		}
	}
	return b.String()
}

type Table struct {
	el *etree.Element
}

func TableOf(el *etree.Element) Table {
	return Table{el: el}
}

func (t Table) Element() *etree.Element {
	return t.el
}

func (t Table) Properties() *etree.Element {
	return findW(t.el, "tblPr")
}

func (t Table) Rows() []Row {
	var rows []Row
	for _, el := range childrenW(t.el, "tr") {
		rows = append(rows, Row{el: el})
	}
	return rows
}

// Cell returns the cell at (row, col) or false when the grid is smaller.
func (t Table) Cell(row, col int) (Cell, bool) {
	rows := t.Rows()
	if row < 0 || row >= len(rows) {
		return Cell{}, false
	}
	cells := rows[row].Cells()
	if col < 0 || col >= len(cells) {
		return Cell{}, false
	}
	return cells[col], true
}

type Row struct {
	el *etree.Element
}

func (r Row) Cells() []Cell {
	var cells []Cell
	for _, el := range childrenW(r.el, "tc") {
		cells = append(cells, Cell{el: el})
	}
	return cells
}

type Cell struct {
	el *etree.Element
}

func (c Cell) Paragraphs() []Paragraph {
	var paragraphs []Paragraph
	for _, el := range childrenW(c.el, "p") {
		paragraphs = append(paragraphs, Paragraph{el: el})
	}
	return paragraphs
}

// SetParagraphs replaces the cell content with one paragraph per entry.
// A cell always keeps at least one paragraph.
func (c Cell) SetParagraphs(texts []string, rPr *etree.Element) {
	for _, p := range childrenW(c.el, "p") {
		c.el.RemoveChild(p)
	}
	if len(texts) == 0 {
		texts = []string{""}
	}
	for _, text := range texts {
		c.el.AddChild(NewParagraph(text, nil, rPr))
	}
}

// NewParagraph builds a detached w:p holding text as a single run. pPr and
// rPr are copied when non-nil.
func NewParagraph(text string, pPr, rPr *etree.Element) *etree.Element {
	p := etree.NewElement("w:p")
	if pPr != nil {
		p.AddChild(pPr.Copy())
	}
	if text != "" || rPr != nil {
		p.AddChild(NewRun(text, rPr))
	}
	return p
}

// NewRun builds a detached w:r. Newlines become w:br and tabs become w:tab.
func NewRun(text string, rPr *etree.Element) *etree.Element {
	r := etree.NewElement("w:r")
	if rPr != nil {
		r.AddChild(rPr.Copy())
	}
	var segment strings.Builder
	flush := func() {
		if segment.Len() == 0 {
			return
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(segment.String())
		segment.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\n':
			flush()
			r.CreateElement("w:br")
		case '\t':
			flush()
			r.CreateElement("w:tab")
		case '\r':
		default:
			segment.WriteRune(ch)
		}
	}
	flush()
	return r
}

// NewTable builds a detached rows x cols table with empty cells. tblPr is
// copied when non-nil, otherwise a grid style is applied.
func NewTable(rows, cols int, tblPr *etree.Element) Table {
	tbl := etree.NewElement("w:tbl")
	if tblPr != nil {
		tbl.AddChild(tblPr.Copy())
	} else {
		props := tbl.CreateElement("w:tblPr")
		props.CreateElement("w:tblStyle").CreateAttr("w:val", "TableGrid")
		width := props.CreateElement("w:tblW")
		width.CreateAttr("w:w", "0")
		width.CreateAttr("w:type", "auto")
		props.CreateElement("w:tblLook").CreateAttr("w:val", "04A0")
	}
	colWidth := "0"
	if cols > 0 {
		colWidth = strconv.Itoa(tableWidth / cols)
	}
	grid := tbl.CreateElement("w:tblGrid")
	for i := 0; i < cols; i++ {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", colWidth)
	}
	for i := 0; i < rows; i++ {
		tr := tbl.CreateElement("w:tr")
		for j := 0; j < cols; j++ {
			tc := tr.CreateElement("w:tc")
			width := tc.CreateElement("w:tcPr").CreateElement("w:tcW")
			width.CreateAttr("w:w", colWidth)
			width.CreateAttr("w:type", "dxa")
			tc.CreateElement("w:p")
		}
	}
	return Table{el: tbl}
}

// Replace swaps old for replacement at the same position in old's parent.
func Replace(old, replacement *etree.Element) bool {
	parent := old.Parent()
	if parent == nil {
		return false
	}
	index := old.Index()
	parent.RemoveChildAt(index)
	parent.InsertChildAt(index, replacement)
	return true
}

// InsertBefore places el immediately before anchor in anchor's parent.
func InsertBefore(anchor, el *etree.Element) bool {
	parent := anchor.Parent()
	if parent == nil {
		return false
	}
	parent.InsertChildAt(anchor.Index(), el)
	return true
}

// AppendBlock adds el as the last block of body, keeping a trailing
// w:sectPr in final position.
func AppendBlock(body, el *etree.Element) {
	children := body.ChildElements()
	if n := len(children); n > 0 && IsW(children[n-1], "sectPr") {
		body.InsertChildAt(children[n-1].Index(), el)
		return
	}
	body.AddChild(el)
}
