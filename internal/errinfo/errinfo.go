package errinfo

import (
	"errors"
	"fmt"
	"strings"

	"docxbench/engine/internal/doctext"
)

// ErrorInfo is the structured error payload returned by every tool.
type ErrorInfo struct {
	ErrorCode string   `json:"error_code"`
	Phase     string   `json:"phase,omitempty"`
	Retryable bool     `json:"retryable"`
	Actions   []string `json:"actions,omitempty"`
	Path      string   `json:"path,omitempty"`
	Index     *int     `json:"paragraph_index,omitempty"`
	Searches  []string `json:"searches,omitempty"`
	Detail    string   `json:"detail,omitempty"`
}

func (e *ErrorInfo) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.ErrorCode
}

const (
	CodeInvalidPath        = "INVALID_PATH"
	CodeFileNotFound       = "FILE_NOT_FOUND"
	CodeNotADocxFile       = "NOT_A_DOCX_FILE"
	CodeIndexOutOfRange    = "INDEX_OUT_OF_RANGE"
	CodeSearchTextNotFound = "SEARCH_TEXT_NOT_FOUND"
	CodeMalformedTable     = "MALFORMED_TABLE_BLOCK"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeFileReadFailed     = "FILE_READ_FAILED"
	CodeFileWriteFailed    = "FILE_WRITE_FAILED"
)

const (
	ActionReread       = "reread_document"
	ActionFixArguments = "fix_arguments"
	ActionRetry        = "retry"
	ActionCheckPath    = "check_path"
)

const (
	PhaseRead   = "read"
	PhaseWrite  = "write"
	PhaseEdit   = "edit"
	PhaseInsert = "insert"
)

func ValidationFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeValidationFailed,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionFixArguments},
		Detail:    detail,
	}
}

func InvalidPath(phase, path string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeInvalidPath,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionCheckPath},
		Path:      path,
		Detail:    "Not an absolute path: " + path,
	}
}

func FileNotFound(phase, path string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileNotFound,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionCheckPath},
		Path:      path,
		Detail:    "File not found: " + path,
	}
}

func NotADocxFile(phase, path string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeNotADocxFile,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionCheckPath},
		Path:      path,
		Detail:    "Not a docx file: " + path,
	}
}

func IndexOutOfRange(phase, path string, index, count int) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeIndexOutOfRange,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionReread},
		Path:      path,
		Index:     &index,
		Detail:    indexDetail(index, count),
	}
}

func SearchTextNotFound(phase, path string, searches []string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeSearchTextNotFound,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionReread},
		Path:      path,
		Searches:  searches,
		Detail:    "Search text not found: " + strings.Join(searches, ", "),
	}
}

func MalformedTable(phase, path, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeMalformedTable,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionFixArguments},
		Path:      path,
		Detail:    "Malformed table block: " + detail,
	}
}

func FileReadFailed(phase, path, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileReadFailed,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Path:      path,
		Detail:    detail,
	}
}

func FileWriteFailed(phase, path, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileWriteFailed,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Path:      path,
		Detail:    detail,
	}
}

// FromError classifies a document error for the given phase. Unknown errors
// become read or write failures depending on the phase.
func FromError(phase, path string, err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var indexErr *doctext.IndexError
	var searchErr *doctext.SearchNotFoundError
	switch {
	case errors.Is(err, doctext.ErrInvalidPath):
		return InvalidPath(phase, path)
	case errors.Is(err, doctext.ErrFileNotFound):
		return FileNotFound(phase, path)
	case errors.Is(err, doctext.ErrNotDocx):
		return NotADocxFile(phase, path)
	case errors.As(err, &indexErr):
		return IndexOutOfRange(phase, path, indexErr.Index, indexErr.Count)
	case errors.As(err, &searchErr):
		return SearchTextNotFound(phase, path, searchErr.Searches)
	case errors.Is(err, doctext.ErrMalformedTable):
		detail := err.Error()
		marker := doctext.ErrMalformedTable.Error() + ": "
		if i := strings.Index(detail, marker); i >= 0 {
			detail = detail[i+len(marker):]
		}
		return MalformedTable(phase, path, detail)
	case phase == PhaseRead:
		return FileReadFailed(phase, path, err.Error())
	default:
		return FileWriteFailed(phase, path, err.Error())
	}
}

func indexDetail(index, count int) string {
	return fmt.Sprintf("Paragraph index %d out of range (document has %d paragraphs)", index, count)
}
