package operation

import (
	"strings"

	"github.com/segmentio/ksuid"
)

const idPrefix = "op_"

// NewID returns a new, time ordered operation id such as "op_2K4k...".
func NewID() string {
	return idPrefix + ksuid.New().String()
}

// IsGeneratedID reports whether id has the shape produced by NewID.
func IsGeneratedID(id string) bool {
	raw, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return false
	}
	_, err := ksuid.Parse(raw)

	return err == nil
}
