package stamp

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileStore keeps each stamp in its own plain-text file under Dir. The
// file holds a single decimal epoch integer.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// Compile-time interface checks.
var (
	_ Store  = (*FileStore)(nil)
	_ Lister = (*FileStore)(nil)
)

// NewFileStore creates the stamp directory if needed and returns a store
// over it.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stamp: create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory holding the stamp files.
func (f *FileStore) Dir() string { return f.dir }

// Read returns the stored epoch for key, or 0 if the file is absent,
// unreadable, or does not contain a decimal integer.
func (f *FileStore) Read(key string) int64 {
	raw, err := os.ReadFile(filepath.Join(f.dir, key))
	if err != nil {
		return 0
	}
	epoch, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0
	}
	return epoch
}

// Write records epoch for key. Failures are logged and swallowed so a
// stamp write can never mask the task's own success.
func (f *FileStore) Write(key string, epoch int64) {
	path := filepath.Join(f.dir, key)
	data := []byte(strconv.FormatInt(epoch, 10) + "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.logger.Warn("stamp: write failed", "path", path, "error", err)
	}
}

// List enumerates the stamp files in the directory.
func (f *FileStore) List() ([]Entry, error) {
	dirents, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("stamp: read directory %s: %w", f.dir, err)
	}

	var entries []Entry
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, keyPrefix) || !strings.HasSuffix(name, keySuffix) {
			continue
		}
		entries = append(entries, Entry{Key: name, Epoch: f.Read(name)})
	}
	return entries, nil
}

// Delete removes the stamp file for key. Missing files are not an error.
func (f *FileStore) Delete(key string) error {
	if err := os.Remove(filepath.Join(f.dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("stamp: delete %s: %w", key, err)
	}
	return nil
}
