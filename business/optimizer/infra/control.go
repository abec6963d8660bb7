package infra

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

// Controller is the part of the radar the control API drives.
type Controller interface {
	Snapshot() []app.Snapshot
	Restart(key string) (*app.Handle, error)
	Cancel(key string) error
	Surface(key string) (*app.Surface, error)
}

// Mux is where the control API mounts its routes. *health.Server and
// *http.ServeMux both satisfy it.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// ControlAPI serves the surface snapshot and manual scan controls.
type ControlAPI struct {
	radar Controller
	feed  http.Handler
	log   logger.LoggerInterface
}

// NewControlAPI creates the API. feed may be nil to disable GET /feed.
func NewControlAPI(radar Controller, feed http.Handler, log logger.LoggerInterface) *ControlAPI {
	return &ControlAPI{radar: radar, feed: feed, log: log}
}

// Register mounts the routes on mux. Every route but the feed is traced.
func (c *ControlAPI) Register(mux Mux) {
	routes := map[string]http.HandlerFunc{
		"GET /surfaces":               c.handleList,
		"GET /surfaces/{key}":         c.handleGet,
		"POST /surfaces/{key}/scan":   c.handleScan,
		"POST /surfaces/{key}/cancel": c.handleCancel,
	}
	for pattern, h := range routes {
		mux.Handle(pattern, otelhttp.NewHandler(h, pattern))
	}
	if c.feed != nil {
		mux.Handle("GET /feed", c.feed)
	}
}

func (c *ControlAPI) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"surfaces": c.radar.Snapshot()})
}

func (c *ControlAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := c.radar.Surface(r.PathValue("key"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (c *ControlAPI) handleScan(w http.ResponseWriter, r *http.Request) {
	h, err := c.radar.Restart(r.PathValue("key"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"session": h.ID()})
}

func (c *ControlAPI) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := c.radar.Cancel(r.PathValue("key")); err != nil {
		c.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ControlAPI) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Wrap(err, apperror.CodeInternalError, "control api")
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		appErr.WithTraceID(sc.TraceID().String())
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		c.log.Error(r.Context(), "control request failed", "path", r.URL.Path, "error", appErr.ToLog())
	}
	writeJSON(w, appErr.StatusCode, appErr.ToResponse())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
