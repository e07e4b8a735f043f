package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive implements Archive on the local filesystem. Uploads live
// under basePath; metadata sits next to them in a .meta directory.
type LocalArchive struct {
	basePath string
}

func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(filepath.Join(basePath, ".meta"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

func (a *LocalArchive) Save(_ context.Context, name, kind, contentType string, r io.Reader) (*FileInfo, error) {
	id := uuid.New()
	storedName := fmt.Sprintf("%s_%s", id.String()[:8], sanitizeFilename(name))
	path := filepath.Join(a.basePath, storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write archive file: %w", err)
	}

	info := &FileInfo{
		ID:          id,
		Name:        name,
		Kind:        kind,
		Size:        size,
		ContentType: contentType,
		Path:        storedName,
		CreatedAt:   time.Now(),
	}
	if err := a.saveMetadata(info); err != nil {
		os.Remove(path)
		return nil, err
	}
	return info, nil
}

func (a *LocalArchive) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := a.getInfo(id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(a.basePath, info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	return f, info, nil
}

func (a *LocalArchive) List(_ context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(a.basePath, ".meta"))
	if err != nil {
		if os.IsNotExist(err) {
			return []*FileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list archive metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		info, err := a.getInfo(id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}
	return files, nil
}

func (a *LocalArchive) Remove(_ context.Context, id uuid.UUID) error {
	info, err := a.getInfo(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(a.basePath, info.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete archive file: %w", err)
	}
	os.Remove(a.metaPath(id))
	return nil
}

func (a *LocalArchive) getInfo(id uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(a.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("upload not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read archive metadata: %w", err)
	}
	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse archive metadata: %w", err)
	}
	return &info, nil
}

func (a *LocalArchive) saveMetadata(info *FileInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive metadata: %w", err)
	}
	if err := os.WriteFile(a.metaPath(info.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive metadata: %w", err)
	}
	return nil
}

func (a *LocalArchive) metaPath(id uuid.UUID) string {
	return filepath.Join(a.basePath, ".meta", id.String()+".json")
}

// sanitizeFilename strips path separators and shell-hostile characters.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
