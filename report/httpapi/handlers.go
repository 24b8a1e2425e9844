// Package httpapi serves archived operation reports over HTTP.
package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
	"github.com/smartcontractkit/content-operations-framework/report"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RecordSummary is the list view of an archived record.
type RecordSummary struct {
	ID          string    `json:"id"`
	OperationID string    `json:"operationId"`
	Label       string    `json:"label"`
	Summary     string    `json:"summary"`
	Timestamp   time.Time `json:"timestamp"`
}

// Handlers serves records from a report.Reporter.
type Handlers struct {
	reporter report.Reporter
	opts     report.Options
	lggr     logger.Logger
}

// NewHandlers creates handlers rendering human readable reports with opts.
func NewHandlers(reporter report.Reporter, opts report.Options, lggr logger.Logger) *Handlers {
	return &Handlers{reporter: reporter, opts: opts, lggr: lggr}
}

// RegisterRoutes mounts the report routes on rg.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/health", h.HandleHealth)
	rg.GET("/reports", h.HandleList)
	rg.GET("/reports/:id", h.HandleGet)
	rg.GET("/reports/:id/tree", h.HandleTree)
}

// NewRouter returns an engine serving the report routes under /v1. When metrics is not nil it is
// served at /metrics.
func NewRouter(h *Handlers, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router.Group("/v1"), h)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	return router
}

func (h *Handlers) HandleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// HandleList returns a summary of every archived record.
func (h *Handlers) HandleList(c *gin.Context) {
	records, err := h.reporter.GetRecords()
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}

	out := make([]RecordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, RecordSummary{
			ID:          r.ID,
			OperationID: r.Snapshot.OperationID,
			Label:       r.Snapshot.DefaultLabel,
			Summary:     r.Snapshot.Summary,
			Timestamp:   r.Timestamp,
		})
	}
	c.JSON(http.StatusOK, out)
}

// HandleGet renders one record. The format query parameter selects the representation and defaults
// to html.
func (h *Handlers) HandleGet(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", string(report.FormatHTML)))
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_format", err)
		return
	}

	record, err := h.reporter.GetRecord(c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	var buf bytes.Buffer
	if err = report.Render(&buf, record.Snapshot, format, h.opts); err != nil {
		h.respondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// HandleTree returns a record together with the records of its sub-operations.
func (h *Handlers) HandleTree(c *gin.Context) {
	records, err := h.reporter.GetRecordTree(c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handlers) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, report.ErrReportNotFound) {
		h.respondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	h.respondError(c, http.StatusInternalServerError, "lookup_failed", err)
}

func (h *Handlers) respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError && h.lggr != nil {
		h.lggr.Errorw("Report request failed", "path", c.FullPath(), "code", code, "error", err)
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}
