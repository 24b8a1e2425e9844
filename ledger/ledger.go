// Package ledger reads and writes transaction ledger files.
//
// A ledger file lists the resources an operation created and updated, in the order the operation
// touched them, so that a later process can compensate for the operation. Files are YAML or TOML:
//
//	operation: op_2bW1...
//	label: Import
//	created:
//	  - id: doc-1
//	    label: Doc One
//	updated:
//	  - id: doc-7
//	properties:
//	  source: batch-12
//	  retries: 3
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/suzuki-shunsuke/go-convmap/convmap"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

// Format is the encoding of a ledger file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var ErrUnsupportedFormat = errors.New("unsupported ledger format")

// File is the on-disk shape of a ledger.
type File struct {
	Operation  string            `yaml:"operation,omitempty" toml:"operation,omitempty"`
	Label      string            `yaml:"label,omitempty" toml:"label,omitempty"`
	Created    []operation.Asset `yaml:"created,omitempty" toml:"created,omitempty"`
	Updated    []operation.Asset `yaml:"updated,omitempty" toml:"updated,omitempty"`
	Properties map[string]any    `yaml:"properties,omitempty" toml:"properties,omitempty"`
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads the ledger file at path.
func Load(path string) (File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return File{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	return Decode(f, format)
}

// Decode reads a ledger in the given format.
func Decode(r io.Reader, format Format) (File, error) {
	var file File
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("decode yaml ledger: %w", err)
		}
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&file); err != nil {
			return File{}, fmt.Errorf("decode toml ledger: %w", err)
		}
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := file.Validate(); err != nil {
		return File{}, err
	}

	return file, nil
}

// Encode writes the ledger in the given format.
func Encode(w io.Writer, file File, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return fmt.Errorf("encode yaml ledger: %w", err)
		}

		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(file); err != nil {
			return fmt.Errorf("encode toml ledger: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Save writes the ledger to path, choosing the format from the extension.
func Save(path string, file File) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, file, format); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// Validate checks that every entry names a resource.
func (f File) Validate() error {
	var errs []error
	for i, a := range f.Created {
		if strings.TrimSpace(a.ID) == "" {
			errs = append(errs, fmt.Errorf("created[%d]: id is required", i))
		}
	}
	for i, a := range f.Updated {
		if strings.TrimSpace(a.ID) == "" {
			errs = append(errs, fmt.Errorf("updated[%d]: id is required", i))
		}
	}

	return errors.Join(errs...)
}

// Apply starts a new transaction on result and records the ledger's entries and properties in it.
// Non-scalar property values are stored as JSON.
func (f File) Apply(result *operation.Result) (*operation.Transaction, error) {
	props := make(map[string]string, len(f.Properties))
	for name, value := range f.Properties {
		s, err := propertyString(value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		props[name] = s
	}

	result.StartTransaction()
	for _, a := range f.Created {
		result.AddCreatedAsset(a.ID, a.Label)
	}
	for _, a := range f.Updated {
		result.AddUpdatedAsset(a.ID, a.Label)
	}

	tx, err := result.CurrentTransaction()
	if err != nil {
		return nil, err
	}
	for name, value := range props {
		tx.SetProperty(name, value)
	}

	return tx, nil
}

// FromTransaction builds a ledger from the entries of tx that have not been rolled back.
func FromTransaction(opID, label string, tx *operation.Transaction) File {
	file := File{
		Operation: opID,
		Label:     label,
		Created:   remaining(tx.Created(), tx.RolledBackCreated()),
		Updated:   remaining(tx.Updated(), tx.RolledBackUpdated()),
	}
	if props := tx.Properties(); len(props) > 0 {
		file.Properties = make(map[string]any, len(props))
		for k, v := range props {
			file.Properties[k] = v
		}
	}

	return file
}

func remaining(all, done []operation.Asset) []operation.Asset {
	skip := make(map[string]struct{}, len(done))
	for _, a := range done {
		skip[a.ID] = struct{}{}
	}

	var out []operation.Asset
	for _, a := range all {
		if _, ok := skip[a.ID]; !ok {
			out = append(out, a)
		}
	}

	return out
}

func propertyString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}

	// Nested yaml maps may decode as map[any]any, which encoding/json refuses.
	safe, err := convmap.Convert(value, nil)
	if err != nil {
		return "", fmt.Errorf("convert value: %w", err)
	}
	raw, err := json.Marshal(safe)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}

	return string(raw), nil
}
