package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"docxbench/engine/internal/appdirs"
	"docxbench/engine/internal/doctext"
	"docxbench/engine/internal/errinfo"
	"docxbench/engine/internal/logging"
	"docxbench/engine/internal/settings"
)

const (
	EngineVersion = "0.1.0"
	APIVersion    = "1"
)

const (
	ToolRead          = "read_docx"
	ToolWrite         = "write_docx"
	ToolEditParagraph = "edit_docx_paragraph"
	ToolInsert        = "edit_docx_insert"
	// ToolEdit is an alias of ToolEditParagraph.
	ToolEdit = "edit_docx"
)

const (
	msgCreated = "Document created successfully"
	msgEdited  = "Document edited successfully"

	msgDiffOmitted = "(diff omitted: document exceeds max_diff_lines)"
)

// ToolResult is implemented by every successful handler result.
type ToolResult interface {
	ToolText() string
}

type ReadResult struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (r ReadResult) ToolText() string { return r.Content }

type WriteResult struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (r WriteResult) ToolText() string { return r.Message }

type EditResult struct {
	Path      string `json:"path"`
	Message   string `json:"message"`
	Diff      string `json:"diff"`
	Truncated bool   `json:"truncated,omitempty"`
}

func (r EditResult) ToolText() string {
	return r.Message + "\nDiff:\n" + r.Diff
}

// Engine runs document tools one at a time against files on disk.
type Engine struct {
	config *settings.Settings
	logger *slog.Logger
	mu     sync.Mutex
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSettings skips loading settings.json from the data dir.
func WithSettings(config *settings.Settings) Option {
	return func(e *Engine) {
		if config != nil {
			e.config = config
		}
	}
}

func New(opts ...Option) (*Engine, error) {
	engine := &Engine{logger: logging.Nop()}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.config == nil {
		dataDir, err := appdirs.DataDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, err
		}
		config, err := settings.NewStore(appdirs.SettingsPath(dataDir)).Load()
		if err != nil {
			engine.logger.Error("engine.settings_load_failed", "error", err.Error())
			return nil, err
		}
		settings.ApplyEnv(config)
		engine.config = config
	}
	engine.logger.Info("engine.init",
		"version", EngineVersion,
		"annotate_revisions", engine.config.AnnotateRevisions,
		"indexed_read", engine.config.Indexed(),
		"transport", engine.config.Transport,
	)
	return engine, nil
}

func (e *Engine) Settings() settings.Settings {
	return *e.config
}

func (e *Engine) options(indexed bool) doctext.Options {
	mode := doctext.ModePlain
	if e.config.AnnotateRevisions {
		mode = doctext.ModeAnnotated
	}
	return doctext.Options{Mode: mode, Indexed: indexed, MaxDiffLines: e.config.MaxDiffLines}
}

func (e *Engine) EngineGetInfo(ctx context.Context, _ json.RawMessage) (any, *errinfo.ErrorInfo) {
	return map[string]any{
		"engine_version":     EngineVersion,
		"api_version":        APIVersion,
		"tools":              []string{ToolRead, ToolWrite, ToolEditParagraph, ToolInsert},
		"annotate_revisions": e.config.AnnotateRevisions,
		"indexed_read":       e.config.Indexed(),
	}, nil
}

func (e *Engine) DocxRead(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req struct {
		Path string `json:"path"`
	}
	if errInfo := decode(errinfo.PhaseRead, params, &req); errInfo != nil {
		return nil, errInfo
	}
	if errInfo := requirePath(errinfo.PhaseRead, req.Path); errInfo != nil {
		return nil, errInfo
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	content, err := doctext.Read(req.Path, e.options(e.config.Indexed()))
	if err != nil {
		return nil, e.fail(errinfo.PhaseRead, req.Path, err)
	}
	e.logger.Info("docx.read", "path", req.Path, "bytes", len(content))
	return ReadResult{Path: req.Path, Content: content}, nil
}

func (e *Engine) DocxWrite(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if errInfo := decode(errinfo.PhaseWrite, params, &req); errInfo != nil {
		return nil, errInfo
	}
	if errInfo := requirePath(errinfo.PhaseWrite, req.Path); errInfo != nil {
		return nil, errInfo
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := doctext.Write(req.Path, req.Content); err != nil {
		return nil, e.fail(errinfo.PhaseWrite, req.Path, err)
	}
	e.logger.Info("docx.write", "path", req.Path, "sections", len(doctext.SplitSections(req.Content)))
	return WriteResult{Path: req.Path, Message: msgCreated}, nil
}

func (e *Engine) DocxEditParagraph(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req struct {
		Path  string                  `json:"path"`
		Edits []doctext.ParagraphEdit `json:"edits"`
	}
	if errInfo := decode(errinfo.PhaseEdit, params, &req); errInfo != nil {
		return nil, errInfo
	}
	if errInfo := requirePath(errinfo.PhaseEdit, req.Path); errInfo != nil {
		return nil, errInfo
	}
	if len(req.Edits) == 0 {
		return nil, errinfo.ValidationFailed(errinfo.PhaseEdit, "edits must not be empty")
	}
	for i, edit := range req.Edits {
		if edit.Search == "" {
			return nil, errinfo.ValidationFailed(errinfo.PhaseEdit, fmt.Sprintf("edit %d: search must not be empty", i))
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	result, err := doctext.Edit(req.Path, req.Edits, e.options(false))
	if err != nil {
		return nil, e.fail(errinfo.PhaseEdit, req.Path, err)
	}
	e.logger.Info("engine.edit_applied", "path", req.Path, "edits", len(req.Edits), "truncated", result.Truncated)
	return editResult(req.Path, result), nil
}

func (e *Engine) DocxInsert(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req struct {
		Path    string              `json:"path"`
		Inserts []doctext.Insertion `json:"inserts"`
	}
	if errInfo := decode(errinfo.PhaseInsert, params, &req); errInfo != nil {
		return nil, errInfo
	}
	if errInfo := requirePath(errinfo.PhaseInsert, req.Path); errInfo != nil {
		return nil, errInfo
	}
	if len(req.Inserts) == 0 {
		return nil, errinfo.ValidationFailed(errinfo.PhaseInsert, "inserts must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	result, err := doctext.Insert(req.Path, req.Inserts, e.options(false))
	if err != nil {
		return nil, e.fail(errinfo.PhaseInsert, req.Path, err)
	}
	e.logger.Info("engine.insert_applied", "path", req.Path, "inserts", len(req.Inserts), "truncated", result.Truncated)
	return editResult(req.Path, result), nil
}

func (e *Engine) fail(phase, path string, err error) *errinfo.ErrorInfo {
	info := errinfo.FromError(phase, path, err)
	e.logger.Warn("engine.tool_failed", "phase", phase, "path", path, "error_code", info.ErrorCode, "error", err.Error())
	return info
}

func editResult(path string, result doctext.Result) EditResult {
	changes := result.Diff
	if result.Truncated {
		changes = msgDiffOmitted
	}
	return EditResult{Path: path, Message: msgEdited, Diff: changes, Truncated: result.Truncated}
}

func decode(phase string, params json.RawMessage, out any) *errinfo.ErrorInfo {
	if len(params) == 0 {
		return errinfo.ValidationFailed(phase, "missing params")
	}
	if err := json.Unmarshal(params, out); err != nil {
		return errinfo.ValidationFailed(phase, "invalid params: "+err.Error())
	}
	return nil
}

func requirePath(phase, path string) *errinfo.ErrorInfo {
	if strings.TrimSpace(path) == "" {
		return errinfo.ValidationFailed(phase, "path is required")
	}
	return nil
}
