package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/domain"
)

// GCSPrefix is the object prefix exports are written under.
const GCSPrefix = "exports"

// GCSConfig configures the GCS sink.
type GCSConfig struct {
	Bucket string
	// Endpoint targets an emulator instead of Google Cloud; it disables authentication.
	Endpoint string
}

// GCSSink writes each export as a JSON object in a bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
}

var _ task.Archiver = (*GCSSink)(nil)

// NewGCSSink creates a client for cfg. Without an Endpoint the client
// authenticates with application default credentials.
func NewGCSSink(ctx context.Context, cfg GCSConfig) (*GCSSink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSSink{client: client, bucket: cfg.Bucket}, nil
}

// Archive uploads e and returns its gs:// URL.
func (s *GCSSink) Archive(ctx context.Context, e *domain.TaskExport) (string, error) {
	name, err := objectName()
	if err != nil {
		return "", err
	}
	name = path.Join(GCSPrefix, name)

	data, err := json.Marshal(NewDocument(e))
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}

	// DoesNotExist keeps a retried upload from overwriting another export.
	w := s.client.Bucket(s.bucket).Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

// Close releases the GCS client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
