package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/foodguard/backend/internal/domain"
	"github.com/google/uuid"
)

// DefaultAllowedExtensions lists the image extensions accepted for scanning
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg"}

// TempStore writes uploads to uniquely named files under one directory
type TempStore struct {
	dir     string
	allowed map[string]bool
}

// NewTempStore creates the directory if needed. An empty dir means the OS temp directory.
func NewTempStore(dir string, allowedExtensions []string) (*TempStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	if len(allowedExtensions) == 0 {
		allowedExtensions = DefaultAllowedExtensions
	}

	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = true
	}
	return &TempStore{dir: dir, allowed: allowed}, nil
}

// Dir returns the directory uploads are written to
func (s *TempStore) Dir() string {
	return s.dir
}

// Extension returns the lower-cased extension of filename if it is allowed.
// Otherwise it returns domain.ErrUnsupportedFile.
func (s *TempStore) Extension(filename string) (string, error) {
	base := filepath.Base(filename)
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return "", domain.ErrUnsupportedFile
	}
	ext := strings.ToLower(base[idx+1:])
	if !s.allowed[ext] {
		return "", domain.ErrUnsupportedFile
	}
	return ext, nil
}

// TempFile is an upload held on disk until Release is called
type TempFile struct {
	path string
}

// Write stores data under a fresh, collision-free name. The caller must Release the file.
// The client's filename only contributes its extension.
func (s *TempStore) Write(filename string, data []byte) (*TempFile, error) {
	ext, err := s.Extension(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(s.dir, fmt.Sprintf("scan-%s-*.%s", uuid.NewString(), ext))
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmp := &TempFile{path: f.Name()}

	if _, err := f.Write(data); err != nil {
		f.Close()
		tmp.Release()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		tmp.Release()
		return nil, fmt.Errorf("closing temp file: %w", err)
	}
	return tmp, nil
}

// Path returns the file's location
func (f *TempFile) Path() string {
	return f.path
}

// Read returns the stored bytes
func (f *TempFile) Read() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Release deletes the file. Releasing twice is a no-op.
func (f *TempFile) Release() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
