package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

type Hunk struct {
	Lines []Line `json:"lines"`
}

const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

func TextDiff(before, after string) []Hunk {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(terminate(before), terminate(after))
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine := 1
	newLine := 1
	for _, diff := range diffs {
		chunkLines := strings.Split(diff.Text, "\n")
		if len(chunkLines) > 0 && chunkLines[len(chunkLines)-1] == "" {
			chunkLines = chunkLines[:len(chunkLines)-1]
		}
		for _, line := range chunkLines {
			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: line, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: line, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: line, NewLine: newLine})
				newLine++
			}
		}
	}
	return []Hunk{{Lines: lines}}
}

const MaxDiffLines = 5000

func TextDiffWithLimit(before, after string, maxLines int) ([]Hunk, bool) {
	if maxLines <= 0 {
		maxLines = MaxDiffLines
	}
	if lineCount(before)+lineCount(after) > maxLines {
		return nil, true
	}
	return TextDiff(before, after), false
}

// ChangedLines renders only added and removed lines, prefixed "+" and "-",
// one per line. The bool reports that the inputs exceeded maxLines and no
// diff was computed.
func ChangedLines(before, after string, maxLines int) (string, bool) {
	hunks, truncated := TextDiffWithLimit(before, after, maxLines)
	if truncated {
		return "", true
	}
	var out []string
	for _, hunk := range hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineRemoved:
				out = append(out, "-"+line.Text)
			case LineAdded:
				out = append(out, "+"+line.Text)
			}
		}
	}
	return strings.Join(out, "\n"), false
}

// terminate makes the final line newline-terminated so appending after it
// is not reported as a change to it.
func terminate(value string) string {
	if value == "" || strings.HasSuffix(value, "\n") {
		return value
	}
	return value + "\n"
}

func lineCount(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, "\n") + 1
}
