package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"docxbench/engine/internal/envutil"
)

const schemaVersion = 1

const (
	TransportMCP     = "mcp"
	TransportJSONRPC = "jsonrpc"

	defaultMaxDiffLines = 5000

	envAnnotateRevisions = "DOCXBENCH_ANNOTATE_REVISIONS"
	envTransport         = "DOCXBENCH_TRANSPORT"
	envMaxDiffLines      = "DOCXBENCH_MAX_DIFF_LINES"
)

type Settings struct {
	SchemaVersion     int    `json:"schema_version"`
	AnnotateRevisions bool   `json:"annotate_revisions"`
	IndexedRead       *bool  `json:"indexed_read,omitempty"`
	MaxDiffLines      int    `json:"max_diff_lines"`
	Transport         string `json:"transport"`
}

// Indexed reports whether read_docx prefixes entries with paragraph markers.
func (s *Settings) Indexed() bool {
	return s.IndexedRead == nil || *s.IndexedRead
}

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, err
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	backfillSettings(&settings)
	return &settings, nil
}

func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	backfillSettings(settings)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Update(fn func(*Settings)) (*Settings, error) {
	settings, err := s.Load()
	if err != nil {
		return nil, err
	}
	fn(settings)
	return settings, s.Save(settings)
}

// ApplyEnv overlays environment overrides onto loaded settings.
func ApplyEnv(settings *Settings) {
	if _, ok := os.LookupEnv(envAnnotateRevisions); ok {
		settings.AnnotateRevisions = envutil.Bool(envAnnotateRevisions)
	}
	if value := strings.TrimSpace(os.Getenv(envTransport)); value != "" {
		settings.Transport = normalizeTransport(value)
	}
	if limit := envutil.Int(envMaxDiffLines, 0); limit > 0 {
		settings.MaxDiffLines = limit
	}
}

func defaultSettings() *Settings {
	settings := &Settings{}
	backfillSettings(settings)
	return settings
}

func backfillSettings(settings *Settings) {
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = schemaVersion
	}
	if settings.MaxDiffLines <= 0 {
		settings.MaxDiffLines = defaultMaxDiffLines
	}
	settings.Transport = normalizeTransport(settings.Transport)
}

func normalizeTransport(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case TransportJSONRPC, "json-rpc", "rpc":
		return TransportJSONRPC
	default:
		return TransportMCP
	}
}
