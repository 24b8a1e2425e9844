package operation

import (
	"strings"

	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
)

// OperationLogger writes operation messages to a logger, prefixing each line with the operation id
// so log output can be correlated with a result. A nil logger discards everything.
type OperationLogger struct {
	lggr logger.Logger
	opID string
}

// NewOperationLogger returns an OperationLogger writing to lggr for operation opID.
func NewOperationLogger(lggr logger.Logger, opID string) *OperationLogger {
	return &OperationLogger{lggr: lggr, opID: opID}
}

func (l *OperationLogger) Logger() logger.Logger        { return l.lggr }
func (l *OperationLogger) SetLogger(lggr logger.Logger) { l.lggr = lggr }
func (l *OperationLogger) OpID() string                 { return l.opID }
func (l *OperationLogger) SetOpID(opID string)          { l.opID = opID }

func (l *OperationLogger) Debug(msg string, cause error) {
	if l.lggr == nil {
		return
	}
	l.lggr.Debugw(l.line(msg), causeFields(cause)...)
}

func (l *OperationLogger) Info(msg string, cause error) {
	if l.lggr == nil {
		return
	}
	l.lggr.Infow(l.line(msg), causeFields(cause)...)
}

func (l *OperationLogger) Warn(msg string, cause error) {
	if l.lggr == nil {
		return
	}
	l.lggr.Warnw(l.line(msg), causeFields(cause)...)
}

func (l *OperationLogger) Error(msg string, cause error) {
	if l.lggr == nil {
		return
	}
	l.lggr.Errorw(l.line(msg), causeFields(cause)...)
}

func (l *OperationLogger) line(msg string) string {
	if strings.TrimSpace(l.opID) == "" {
		return msg
	}

	return "[" + l.opID + "] - " + msg
}

func causeFields(cause error) []any {
	if cause == nil {
		return nil
	}

	return []any{"error", cause}
}
