package doctext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const docxExtension = ".docx"

// ValidatePath checks the shared read/edit precondition, in order: an
// absolute path, an existing regular file, the .docx extension.
func ValidatePath(path string) error {
	if err := validateAbsolute(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return validateExtension(path)
}

// validateTarget is the write precondition; the file need not exist yet.
func validateTarget(path string) error {
	if err := validateAbsolute(path); err != nil {
		return err
	}
	return validateExtension(path)
}

func validateAbsolute(path string) error {
	if strings.TrimSpace(path) == "" || !filepath.IsAbs(path) {
		return fmt.Errorf("%w: not an absolute path: %s", ErrInvalidPath, path)
	}
	return nil
}

func validateExtension(path string) error {
	if !strings.EqualFold(filepath.Ext(path), docxExtension) {
		return fmt.Errorf("%w: %s", ErrNotDocx, path)
	}
	return nil
}
