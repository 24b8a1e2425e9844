package operation

import (
	"fmt"
	"io"
	"time"
)

// FilePayload is a downloadable file produced by an operation.
type FilePayload struct {
	Content           []byte
	ContentType       string
	SuggestedFileName string
}

// ReadFilePayload reads r fully into a FilePayload.
func ReadFilePayload(r io.Reader, contentType, suggestedFileName string) (FilePayload, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return FilePayload{}, fmt.Errorf("failed to read file payload %s: %w", suggestedFileName, err)
	}

	return FilePayload{Content: content, ContentType: contentType, SuggestedFileName: suggestedFileName}, nil
}

// ArchivePayload is an archive file written by an operation, along with the names of its entries.
type ArchivePayload struct {
	Path     string
	Manifest []string
}

// ContainerPayload references the container an operation produced or worked on.
type ContainerPayload struct {
	ID    string
	Label string
}

// JobSummary describes an asynchronous job scheduled by an operation. The operation does not wait
// for it.
type JobSummary struct {
	ID          string    `json:"id" yaml:"id" toml:"id"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt" yaml:"scheduledAt" toml:"scheduledAt"`
}

// IsZero reports whether j carries no information.
func (j JobSummary) IsZero() bool {
	return j.ID == "" && j.Name == "" && j.ScheduledAt.IsZero()
}
