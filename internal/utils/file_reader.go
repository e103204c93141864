package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

type fileContent struct {
	data []byte
	sum  Stamp
}

// FileReader reads source files once and serves them from memory until
// their size or modification time changes.
type FileReader struct {
	files *Cache[string, fileContent]
}

func NewFileReader() *FileReader {
	return &FileReader{files: NewCache[string, fileContent]()}
}

// Load returns the contents of filePath and their fingerprint.
func (fr *FileReader) Load(filePath string) ([]byte, Stamp, error) {
	cleanPath := filepath.Clean(filePath)
	stat, err := StatStamp(cleanPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read file %s: %w", filepath.Base(cleanPath), err)
	}
	if cached, ok := fr.files.Lookup(cleanPath, stat); ok {
		return cached.data, cached.sum, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read file %s: %w", filepath.Base(cleanPath), err)
	}
	// The stamp predates the read; a write in between leaves a stale entry.
	fc := fileContent{data: content, sum: ContentStamp(content)}
	fr.files.Store(cleanPath, fc, stat)
	return fc.data, fc.sum, nil
}

func (fr *FileReader) ReadFile(filePath string) ([]byte, error) {
	content, _, err := fr.Load(filePath)
	return content, err
}

// Fingerprint hashes the current contents of filePath.
func (fr *FileReader) Fingerprint(filePath string) (Stamp, error) {
	_, sum, err := fr.Load(filePath)
	return sum, err
}

// Invalidate drops a file from the cache.
func (fr *FileReader) Invalidate(filePath string) {
	fr.files.Delete(filepath.Clean(filePath))
}

func (fr *FileReader) CachedFiles() int {
	return fr.files.Stats().Entries
}
