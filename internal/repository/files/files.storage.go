// FilePath: internal/repository/files/files.storage.go
package files

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultPermissions = 0755
	filePermissions    = 0644
	documentExtension  = ".json"
	tempFilePattern    = ".tmp-*"
)

// FileConfig holds configuration for the file storage
type FileConfig struct {
	BasePath string
}

// FileStore keeps one JSON document per record kind below BasePath
type FileStore struct {
	config FileConfig
}

// NewFileStore creates the base directory and returns the store
func NewFileStore(config FileConfig) (*FileStore, error) {
	if config.BasePath == "" {
		return nil, errors.NewValidationError("file store base path is required", nil)
	}
	if err := createDirectoryIfNotExists(config.BasePath); err != nil {
		return nil, err
	}
	nuts.L.Infof("[FileStore] Using data directory %s", config.BasePath)
	return &FileStore{config: config}, nil
}

// Load reads the document for kind. A missing or blank file reads as nil.
func (s *FileStore) Load(ctx context.Context, kind repository.Kind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.pathFor(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("failed to read "+string(kind), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

// Save replaces the document for kind. The write goes to a temp file in the same
// directory which is then renamed over the target, so readers never see a torn file.
func (s *FileStore) Save(ctx context.Context, kind repository.Kind, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pretty := indent(doc)

	tmp, err := os.CreateTemp(s.config.BasePath, string(kind)+tempFilePattern)
	if err != nil {
		return errors.NewDatabaseError("failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(pretty); err != nil {
		tmp.Close()
		return errors.NewDatabaseError("failed to write "+string(kind), err)
	}
	if err := tmp.Chmod(filePermissions); err != nil {
		tmp.Close()
		return errors.NewDatabaseError("failed to set permissions on "+string(kind), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewDatabaseError("failed to flush "+string(kind), err)
	}
	if err := os.Rename(tmpName, s.pathFor(kind)); err != nil {
		return errors.NewDatabaseError("failed to replace "+string(kind), err)
	}
	return nil
}

// Ping verifies the base directory is still reachable
func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.config.BasePath)
	if err != nil {
		return errors.NewUnavailableError("file store unavailable", err)
	}
	if !info.IsDir() {
		return errors.NewUnavailableError("file store base path is not a directory", nil)
	}
	return nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) pathFor(kind repository.Kind) string {
	return filepath.Join(s.config.BasePath, string(kind)+documentExtension)
}

// indent pretty-prints valid JSON so the files stay hand-editable
func indent(doc []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return doc
	}
	return buf.Bytes()
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewInternalError("failed to create directory", err)
		}
	}
	return nil
}
