// Package codec exports graph snapshots in interchange formats.
package codec

import (
	"fmt"
	"io"

	"netatlas/internal/domain"
)

// Exporter writes a graph snapshot to an output stream.
type Exporter interface {
	Export(graph *domain.Graph, w io.Writer) error
	Format() string
}

// ForFormat returns the exporter for a format identifier.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "json", "":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
