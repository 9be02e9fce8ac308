package index

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempFilePrefix is the prefix used for temporary atomic write files.
const tempFilePrefix = ".pn-tmp-"

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over filename, so readers never see a half-written index.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up if we fail before rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", filename, err)
	}
	return nil
}
