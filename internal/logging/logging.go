package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const LogFileName = "docxbench.log"

type FileLogger struct {
	Logger  *slog.Logger
	Close   func() error
	Path    string
	Enabled bool
}

func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func disabled() FileLogger {
	return FileLogger{Logger: Nop(), Close: func() error { return nil }}
}

// NewFileLogger opens logDir/docxbench.log for JSON debug logging. Stdout is
// reserved for the transport, so a disabled logger discards everything.
func NewFileLogger(logDir string, debug bool) (FileLogger, error) {
	if !debug {
		return disabled(), nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return disabled(), err
	}
	path := filepath.Join(logDir, LogFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return disabled(), err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	return FileLogger{
		Logger:  slog.New(handler),
		Close:   file.Close,
		Path:    path,
		Enabled: true,
	}, nil
}
