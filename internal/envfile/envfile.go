package envfile

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"docxbench/engine/internal/appdirs"
)

// KeyPrefix limits which keys a .env file may set.
const KeyPrefix = "DOCXBENCH_"

const fileName = ".env"

type Result struct {
	Path string
	// Applied lists keys set from the file, Shadowed keys the environment already had.
	Applied  []string
	Shadowed []string
	Err      error
}

func (r Result) Loaded() bool {
	return r.Path != "" && r.Err == nil
}

// Load applies the first .env found at DOCXBENCH_ENV_PATH, in the working
// directory or one of its parents, or in the data dir.
func Load() Result {
	if override := strings.TrimSpace(os.Getenv("DOCXBENCH_ENV_PATH")); override != "" {
		return LoadPath(override)
	}
	if cwd, err := os.Getwd(); err == nil {
		if path := findUpwards(cwd, fileName); path != "" {
			return LoadPath(path)
		}
	}
	dataDir, err := appdirs.DataDir()
	if err != nil {
		return Result{}
	}
	path := filepath.Join(dataDir, fileName)
	if _, err := os.Stat(path); err != nil {
		return Result{}
	}
	return LoadPath(path)
}

func LoadPath(path string) Result {
	res := Result{Path: path}
	file, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok || !strings.HasPrefix(key, KeyPrefix) {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			res.Shadowed = append(res.Shadowed, key)
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			res.Err = err
			return res
		}
		res.Applied = append(res.Applied, key)
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

func parseLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	key, raw, ok := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, parseValue(strings.TrimSpace(raw)), true
}

// parseValue unquotes quoted values ("..." honours Go escapes, '...' is
// literal) and drops a trailing " #" comment from unquoted ones.
func parseValue(raw string) string {
	if len(raw) >= 2 {
		switch {
		case raw[0] == '"' && raw[len(raw)-1] == '"':
			if unquoted, err := strconv.Unquote(raw); err == nil {
				return unquoted
			}
			return raw[1 : len(raw)-1]
		case raw[0] == '\'' && raw[len(raw)-1] == '\'':
			return raw[1 : len(raw)-1]
		}
	}
	if idx := strings.Index(raw, " #"); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	return raw
}

func findUpwards(start, filename string) string {
	dir := start
	for {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
