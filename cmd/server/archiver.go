package main

import (
	"context"
	"io"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/config"
	"github.com/rezkam/taskboard/internal/infrastructure/export"
)

// archiveSink is an export archiver that holds resources.
type archiveSink interface {
	task.Archiver
	io.Closer
}

// fsArchiver adapts FSSink, which holds nothing, to archiveSink.
type fsArchiver struct {
	*export.FSSink
}

func (fsArchiver) Close() error { return nil }

// newArchiver returns the configured export sink, or nil when archiving is off.
func newArchiver(ctx context.Context, cfg config.ExportConfig) (archiveSink, error) {
	switch cfg.Sink {
	case config.ExportSinkFS:
		sink, err := export.NewFSSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fsArchiver{sink}, nil
	case config.ExportSinkGCS:
		sink, err := export.NewGCSSink(ctx, export.GCSConfig{Bucket: cfg.Bucket, Endpoint: cfg.Endpoint})
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, nil
	}
}
