package infra

import (
	"context"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	"github.com/fd1az/optimal-input-radar/internal/logger"
	"github.com/fd1az/optimal-input-radar/internal/wsconn"
)

// FeedReporter broadcasts every event as JSON to the WebSocket feed.
type FeedReporter struct {
	hub *wsconn.Hub
	log logger.LoggerInterface
}

var _ app.Reporter = (*FeedReporter)(nil)

// NewFeedReporter creates a FeedReporter on hub.
func NewFeedReporter(hub *wsconn.Hub, log logger.LoggerInterface) *FeedReporter {
	return &FeedReporter{hub: hub, log: log}
}

// Report broadcasts ev.
func (r *FeedReporter) Report(ev app.Event) {
	if r.hub.Clients() == 0 {
		return
	}
	if err := r.hub.BroadcastJSON(ev); err != nil {
		r.log.Debug(context.Background(), "feed broadcast failed", "surface", ev.Surface, "error", err)
	}
}
