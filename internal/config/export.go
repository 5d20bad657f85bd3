package config

import "fmt"

// Export sinks.
const (
	ExportSinkNone = "none"
	ExportSinkFS   = "fs"
	ExportSinkGCS  = "gcs"
)

// ExportConfig controls where task exports are archived.
type ExportConfig struct {
	Sink   string `env:"TASKBOARD_EXPORT_SINK" default:"none"`
	Dir    string `env:"TASKBOARD_EXPORT_DIR" default:"./exports"`
	Bucket string `env:"TASKBOARD_EXPORT_GCS_BUCKET"`
	// Endpoint overrides the GCS API endpoint, e.g. a local emulator.
	Endpoint string `env:"TASKBOARD_EXPORT_GCS_ENDPOINT"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	switch c.Sink {
	case ExportSinkNone:
	case ExportSinkFS:
		if c.Dir == "" {
			return fmt.Errorf("TASKBOARD_EXPORT_DIR is required when TASKBOARD_EXPORT_SINK is 'fs'")
		}
	case ExportSinkGCS:
		if c.Bucket == "" {
			return fmt.Errorf("TASKBOARD_EXPORT_GCS_BUCKET is required when TASKBOARD_EXPORT_SINK is 'gcs'")
		}
	default:
		return fmt.Errorf("unknown TASKBOARD_EXPORT_SINK: %s", c.Sink)
	}
	return nil
}
