package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
)

// FSSink writes each export as a JSON file in a directory.
type FSSink struct {
	dir string
}

var _ task.Archiver = (*FSSink)(nil)

// NewFSSink creates dir if needed.
func NewFSSink(dir string) (*FSSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve export directory: %w", err)
	}
	return &FSSink{dir: abs}, nil
}

// Archive writes e and returns the file path.
func (s *FSSink) Archive(ctx context.Context, e *domain.TaskExport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := objectName()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(NewDocument(e), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
