package doctext

import (
	"strings"

	"github.com/beevik/etree"

	"docxbench/engine/internal/docx"
)

// Mode selects how tracked changes render.
type Mode int

const (
	// ModePlain accepts insertions and drops deletions.
	ModePlain Mode = iota
	// ModeAnnotated brackets both as [insert: …] and [delete: …].
	ModeAnnotated
)

type SegmentKind int

const (
	SegmentPlain SegmentKind = iota
	SegmentInserted
	SegmentDeleted
)

// Segment is one run-level child of a paragraph, tagged by revision state.
type Segment struct {
	Kind SegmentKind
	Run  docx.Run
}

// Segments flattens a paragraph's children into document order. Runs under
// w:ins and w:del take that tag; runs under any other wrapper (hyperlinks,
// smart tags, simple fields) are plain. Nested revisions take the outermost tag.
func Segments(p docx.Paragraph) []Segment {
	var out []Segment
	collectSegments(p.Element(), SegmentPlain, &out)
	return out
}

func collectSegments(el *etree.Element, kind SegmentKind, out *[]Segment) {
	for _, child := range el.ChildElements() {
		switch {
		case docx.IsW(child, "r"):
			*out = append(*out, Segment{Kind: kind, Run: docx.RunOf(child)})
		case docx.IsW(child, "pPr"):
		case docx.IsW(child, "ins"), docx.IsW(child, "moveTo"):
			collectSegments(child, tagged(kind, SegmentInserted), out)
		case docx.IsW(child, "del"), docx.IsW(child, "moveFrom"):
			collectSegments(child, tagged(kind, SegmentDeleted), out)
		default:
			collectSegments(child, kind, out)
		}
	}
}

func tagged(outer, inner SegmentKind) SegmentKind {
	if outer != SegmentPlain {
		return outer
	}
	return inner
}

// Resolve folds segments into effective text. Adjacent segments of the same
// revision kind share one annotation bracket.
func Resolve(segments []Segment, mode Mode) string {
	var b strings.Builder
	var pending strings.Builder
	pendingKind := SegmentPlain
	flush := func() {
		if pending.Len() == 0 {
			return
		}
		switch pendingKind {
		case SegmentInserted:
			b.WriteString("[insert: ")
		case SegmentDeleted:
			b.WriteString("[delete: ")
		}
		b.WriteString(pending.String())
		b.WriteString("]")
		pending.Reset()
	}
	for _, seg := range segments {
		text := seg.Run.Text()
		if mode == ModePlain || seg.Kind == SegmentPlain {
			flush()
			if seg.Kind != SegmentDeleted {
				b.WriteString(text)
			}
			continue
		}
		if seg.Kind != pendingKind {
			flush()
			pendingKind = seg.Kind
		}
		pending.WriteString(text)
	}
	flush()
	return b.String()
}

// ParagraphText is the effective text of a paragraph under mode.
func ParagraphText(p docx.Paragraph, mode Mode) string {
	return Resolve(Segments(p), mode)
}
