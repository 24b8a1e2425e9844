// Package report renders operation snapshots for people and machines, and archives finished
// snapshots so they can be served later.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

// Format is an output format of Render.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatHTML, FormatText, FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat resolves a format name, ignoring case. "txt" and "yml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html", "htm":
		return FormatHTML, nil
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	default:
		return "text/plain; charset=utf-8"
	}
}

const (
	// DefaultOverviewLayout formats the start and end of the operation.
	DefaultOverviewLayout = "2006-01-02 15:04:05-0700"
	// DefaultDetailsLayout formats message timestamps.
	DefaultDetailsLayout = "15:04:05"
)

// Options controls the human readable renderers.
type Options struct {
	OverviewLayout string
	DetailsLayout  string
	// Location converts timestamps before formatting. Timestamps are left as recorded when nil.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.OverviewLayout == "" {
		o.OverviewLayout = DefaultOverviewLayout
	}
	if o.DetailsLayout == "" {
		o.DetailsLayout = DefaultDetailsLayout
	}

	return o
}

func (o Options) overview(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Unknown"
	}

	return o.in(*t).Format(o.OverviewLayout)
}

func (o Options) details(t time.Time) string {
	return o.in(t).Format(o.DetailsLayout)
}

func (o Options) in(t time.Time) time.Time {
	if o.Location == nil {
		return t
	}

	return t.In(o.Location)
}

// Render writes snap to w in format f.
func Render(w io.Writer, snap operation.Snapshot, f Format, opts Options) error {
	switch f {
	case FormatHTML:
		return HTML(w, snap, opts)
	case FormatText:
		return Text(w, snap, opts)
	case FormatJSON, FormatYAML, FormatTOML:
		return Encode(w, snap, f)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

// durationSeconds converts the quiet millisecond duration of a snapshot to whole seconds, keeping -1
// for an unknown duration.
func durationSeconds(snap operation.Snapshot) int64 {
	if snap.DurationMillis < 0 {
		return -1
	}

	return snap.DurationMillis / 1000
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
