package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

// Radar runs the configured surfaces, each with its own scheduler.
type Radar struct {
	logger   logger.LoggerInterface
	order    []string
	surfaces map[string]*Surface

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRadar creates a radar over surfaces. Keys must be unique.
func NewRadar(log logger.LoggerInterface, surfaces ...*Surface) (*Radar, error) {
	r := &Radar{logger: log, surfaces: make(map[string]*Surface, len(surfaces))}
	for _, s := range surfaces {
		key := s.Key()
		if _, dup := r.surfaces[key]; dup {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext(fmt.Sprintf("duplicate surface %q", key)))
		}
		r.surfaces[key] = s
		r.order = append(r.order, key)
	}
	return r, nil
}

// Start launches every surface's scheduler. It returns immediately.
func (r *Radar) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	for _, key := range r.order {
		s := r.surfaces[key]
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := s.Run(ctx); err != nil {
				r.logger.Error(ctx, "surface scheduler stopped", "surface", key, "error", err)
			}
		}()
	}
	r.logger.Info(ctx, "radar started", "surfaces", len(r.order))
}

// Stop cancels every scheduler and live session and waits for them.
func (r *Radar) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Surfaces returns the surfaces in configuration order.
func (r *Radar) Surfaces() []*Surface {
	out := make([]*Surface, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.surfaces[key])
	}
	return out
}

// Surface returns the surface with key.
func (r *Radar) Surface(key string) (*Surface, error) {
	s, ok := r.surfaces[key]
	if !ok {
		return nil, apperror.New(apperror.CodeSurfaceNotFound,
			apperror.WithContext(key),
			apperror.WithStatusCode(http.StatusNotFound))
	}
	return s, nil
}

// Restart triggers a cancel-then-restart scan of one surface.
func (r *Radar) Restart(key string) (*Handle, error) {
	s, err := r.Surface(key)
	if err != nil {
		return nil, err
	}
	return s.Restart()
}

// Cancel stops the live session of one surface.
func (r *Radar) Cancel(key string) error {
	s, err := r.Surface(key)
	if err != nil {
		return err
	}
	s.Cancel()
	return nil
}

// Snapshot returns every surface's snapshot in configuration order.
func (r *Radar) Snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(r.order))
	for _, s := range r.Surfaces() {
		out = append(out, s.Snapshot())
	}
	return out
}

// Check is a health check: no surface may be stuck scanning past limit.
func (r *Radar) Check(limit time.Duration) (bool, string) {
	for _, s := range r.Surfaces() {
		if ok, msg := s.Check(limit); !ok {
			return false, s.Key() + ": " + msg
		}
	}
	return true, ""
}
