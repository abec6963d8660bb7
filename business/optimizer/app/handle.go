package app

import (
	"context"
	"sync"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
)

// Handle is one scan session. It can be cancelled and waited on; Result is
// non-nil only when the session completed and published.
type Handle struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	progress int
	points   []domain.EvaluationPoint
	result   *domain.ScanResult
	err      error
}

func newHandle(id string, cancel context.CancelFunc) *Handle {
	return &Handle{id: id, cancel: cancel, done: make(chan struct{})}
}

// ID returns the session id.
func (h *Handle) ID() string {
	return h.id
}

// Cancel stops the session. It never publishes afterwards.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the session goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the session ends and returns its terminal error.
func (h *Handle) Wait() error {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Result returns the published result, or nil.
func (h *Handle) Result() *domain.ScanResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.result == nil {
		return nil
	}
	r := *h.result
	return &r
}

// Progress returns the last reported progress in percent.
func (h *Handle) Progress() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

// Points returns a copy of the coarse samples so far.
func (h *Handle) Points() []domain.EvaluationPoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.EvaluationPoint(nil), h.points...)
}

func (h *Handle) setProgress(p int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p <= h.progress {
		return false
	}
	h.progress = p
	return true
}

func (h *Handle) addPoint(pt domain.EvaluationPoint) {
	h.mu.Lock()
	h.points = append(h.points, pt)
	h.mu.Unlock()
}

func (h *Handle) finish(res *domain.ScanResult, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.result = res
	h.err = err
	if res != nil {
		h.progress = 100
	}
}
