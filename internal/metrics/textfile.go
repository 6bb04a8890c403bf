package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes the registry in the node_exporter textfile format.
// The parent directory is created if needed.
func WriteTextfile(path string, reg *prom.Registry) error {
	if reg == nil {
		return fmt.Errorf("metrics textfile %s: nil registry", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics textfile: %w", err)
	}
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("metrics textfile %s: %w", path, err)
	}
	return nil
}
