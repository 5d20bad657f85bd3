package main

import (
	"io"
	"log/slog"
)

// newCleanup constructs the shutdown hook: close the export archiver, then
// the shared store. Either may be nil.
func newCleanup(archiver io.Closer, store io.Closer) func() {
	return func() {
		if archiver != nil {
			if err := archiver.Close(); err != nil {
				slog.Error("failed to close export archiver", slog.String("error", err.Error()))
			}
		}

		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", slog.String("error", err.Error()))
			}
		}
	}
}
