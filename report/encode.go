package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

// Encode writes snap to w as a JSON, YAML or TOML document.
func Encode(w io.Writer, snap operation.Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode report as yaml: %w", err)
		}

		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("failed to encode report as toml: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q cannot be encoded", ErrUnsupportedFormat, string(f))
	}
}

// Decode reads a snapshot previously written by Encode.
func Decode(r io.Reader, f Format) (operation.Snapshot, error) {
	var snap operation.Snapshot

	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&snap)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&snap)
	case FormatTOML:
		err = toml.NewDecoder(r).Decode(&snap)
	default:
		return snap, fmt.Errorf("%w: %q cannot be decoded", ErrUnsupportedFormat, string(f))
	}
	if err != nil {
		return snap, fmt.Errorf("failed to decode %s report: %w", f, err)
	}

	return snap, nil
}
