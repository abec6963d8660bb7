package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

// DefaultRescanInterval is the periodic rescan cadence.
const DefaultRescanInterval = 90 * time.Second

// State is a surface's display state.
type State string

const (
	StateIdle        State = "idle"
	StateScanning    State = "scanning"
	StateDone        State = "done"
	StateCancelled   State = "cancelled"
	StateRateLimited State = "rate_limited"
	StateFailed      State = "failed"
)

// SurfaceOptions configures a surface.
type SurfaceOptions struct {
	Oracle      QuoteOracle
	SettleDelay time.Duration
	Reporter    Reporter
	Logger      logger.LoggerInterface
	// Metrics may be nil.
	Metrics *Metrics
}

// Surface owns the scans of one plan: at most one live session, the
// published result, and the rescan scheduler.
type Surface struct {
	opts SurfaceOptions

	// startMu serializes Start so cancel-wait-create is atomic. stopped is
	// guarded by it and set once the scheduler has exited.
	startMu sync.Mutex
	stopped bool

	mu        sync.Mutex
	plan      domain.Plan
	active    *Handle
	startedAt time.Time
	scanning  bool
	state     State
	progress  int
	points    []domain.EvaluationPoint
	result    *domain.ScanResult
	lastErr   error
	nextScan  time.Time

	triggered chan struct{}
}

// NewSurface creates a surface for plan. The plan is not validated until a
// scan is requested.
func NewSurface(plan domain.Plan, opts SurfaceOptions) *Surface {
	if plan.RescanInterval <= 0 {
		plan.RescanInterval = DefaultRescanInterval
	}
	if opts.Reporter == nil {
		opts.Reporter = Reporters(nil)
	}
	return &Surface{
		opts:      opts,
		plan:      plan,
		state:     StateIdle,
		triggered: make(chan struct{}, 1),
	}
}

// Key returns the surface key.
func (s *Surface) Key() string {
	return s.Plan().Key
}

// Plan returns a copy of the current plan.
func (s *Surface) Plan() domain.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Start cancels and waits for the live session, resets the published state
// to scanning and runs a new session over rng with fn. onProgress may be nil.
func (s *Surface) Start(rng domain.ScanRange, fn ProfitFunc, onProgress ProgressFunc) *Handle {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	return s.startLocked(rng, fn, onProgress)
}

func (s *Surface) startLocked(rng domain.ScanRange, fn ProfitFunc, onProgress ProgressFunc) *Handle {
	s.mu.Lock()
	prev := s.active
	s.mu.Unlock()
	if prev != nil {
		prev.Cancel()
		<-prev.Done()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := newHandle(uuid.NewString(), cancel)

	s.mu.Lock()
	s.active = h
	s.startedAt = time.Now()
	s.scanning = true
	s.state = StateScanning
	s.progress = 0
	s.points = nil
	s.lastErr = nil
	params := s.plan.Params
	key := s.plan.Key
	s.mu.Unlock()

	s.opts.Reporter.Report(Event{Type: EventScanStarted, Surface: key, Session: h.id, At: time.Now()})

	go s.run(ctx, h, params, rng, fn, onProgress)
	return h
}

// Scan validates the plan, builds its profit function and starts a session.
// Configuration errors block the scan and are returned without a session,
// as does a surface whose scheduler has stopped.
func (s *Surface) Scan() (*Handle, error) {
	plan := s.Plan()
	if err := plan.Validate(); err != nil {
		s.fail(plan.Key, err)
		return nil, err
	}
	if s.opts.Oracle == nil {
		err := apperror.New(apperror.CodeConfigurationError, apperror.WithContext("no quote oracle"))
		s.fail(plan.Key, err)
		return nil, err
	}
	rng := plan.ScanRange()
	if err := rng.Validate(); err != nil {
		s.fail(plan.Key, err)
		return nil, err
	}

	fn := NewRoundTrip(s.opts.Oracle, plan.RoundTrip(), s.opts.SettleDelay)

	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.stopped {
		return nil, apperror.New(apperror.CodeSurfaceStopped, apperror.WithContext(plan.Key))
	}
	return s.startLocked(rng, fn, nil), nil
}

func (s *Surface) fail(key string, err error) {
	s.mu.Lock()
	s.state = StateFailed
	s.lastErr = err
	s.mu.Unlock()

	if s.opts.Logger != nil {
		s.opts.Logger.Warn(context.Background(), "scan blocked", "surface", key, "error", err)
	}
	s.opts.Reporter.Report(Event{Type: EventFailed, Surface: key, Error: err.Error(), At: time.Now()})
}

// run executes one session. Publication requires the session to still be
// the active one and not cancelled.
func (s *Surface) run(ctx context.Context, h *Handle, params domain.SearchParams, rng domain.ScanRange, fn ProfitFunc, onProgress ProgressFunc) {
	defer close(h.done)

	key := s.Key()
	ctx, span := s.opts.Metrics.startSpan(ctx, key, rng)
	defer span.End()

	start := time.Now()
	scanner := NewScanner(params)
	scanner.OnPoint = func(pt domain.EvaluationPoint) {
		h.addPoint(pt)
		if s.isActive(h) {
			s.mu.Lock()
			s.points = append(s.points, pt)
			s.mu.Unlock()
		}
		p := pt
		s.opts.Reporter.Report(Event{Type: EventEvaluation, Surface: key, Session: h.id, Point: &p, At: time.Now()})
	}

	outcome, err := scanner.Run(ctx, rng, fn, func(p int) {
		if !h.setProgress(p) || ctx.Err() != nil {
			return
		}
		if s.isActive(h) {
			s.mu.Lock()
			s.progress = p
			s.mu.Unlock()
		}
		if onProgress != nil {
			onProgress(p)
		}
		s.opts.Reporter.Report(Event{Type: EventProgress, Surface: key, Session: h.id, Progress: p, At: time.Now()})
	})

	ev := Event{Surface: key, Session: h.id, At: time.Now()}
	outcomeLabel := "completed"

	s.mu.Lock()
	active := s.active == h
	cancelled := ctx.Err() != nil || errors.Is(err, context.Canceled)
	switch {
	case cancelled:
		outcomeLabel = "cancelled"
		h.finish(nil, context.Canceled)
		ev.Type = EventCancelled
		if active {
			s.state = StateCancelled
		}
	case !active:
		// superseded without being cancelled; never publish
		outcomeLabel = "superseded"
		h.finish(nil, context.Canceled)
		ev.Type = EventCancelled
	case err == nil:
		res := outcome.Result
		s.result = &res
		s.progress = 100
		s.state = StateDone
		h.finish(&res, nil)
		ev.Type = EventResult
		ev.Result = &res
		ev.Progress = 100
	case apperror.IsRateLimited(err):
		outcomeLabel = "rate_limited"
		s.state = StateRateLimited
		s.lastErr = err
		h.finish(nil, err)
		ev.Type = EventRateLimited
		ev.Error = err.Error()
	default:
		outcomeLabel = "failed"
		s.state = StateFailed
		s.lastErr = err
		h.finish(nil, err)
		ev.Type = EventFailed
		ev.Error = err.Error()
	}
	if active {
		s.scanning = false
	}
	s.mu.Unlock()

	switch outcomeLabel {
	case "completed":
		if onProgress != nil {
			onProgress(100)
		}
		span.SetAttributes(
			attribute.Float64("best_input", outcome.Result.BestInput),
			attribute.Bool("profitable", outcome.Result.Profitable),
		)
		span.AddEvent("published")
		if s.opts.Logger != nil {
			s.opts.Logger.Info(ctx, "scan completed",
				"surface", key,
				"best_input", outcome.Result.BestInput,
				"best_profit", outcome.Result.BestProfit,
				"profitable", outcome.Result.Profitable,
				"evaluations", outcome.Result.Evaluations)
		}
	case "failed":
		span.NoticeError(err)
		if s.opts.Logger != nil {
			s.opts.Logger.Error(context.Background(), "scan failed", "surface", key, "error", err)
		}
	case "rate_limited":
		span.NoticeError(err)
		if s.opts.Logger != nil {
			s.opts.Logger.Warn(context.Background(), "scan rate limited", "surface", key)
		}
	}

	s.opts.Metrics.recordScan(context.Background(), key, outcomeLabel, time.Since(start), len(outcome.Points))
	s.opts.Reporter.Report(ev)
}

func (s *Surface) isActive(h *Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active == h
}

// Cancel stops the live session, if any. The previous result stays.
func (s *Surface) Cancel() {
	s.mu.Lock()
	h := s.active
	s.mu.Unlock()
	if h != nil {
		h.Cancel()
		<-h.Done()
	}
}

// Active returns the live or most recent session, or nil.
func (s *Surface) Active() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Result returns the published result, or nil.
func (s *Surface) Result() *domain.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Scanning reports whether a session is live.
func (s *Surface) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// Restart cancels the live session and scans again. With a scheduler
// running the periodic timer is reset too.
func (s *Surface) Restart() (*Handle, error) {
	h, err := s.Scan()
	select {
	case s.triggered <- struct{}{}:
	default:
	}
	return h, err
}

// Reconfigure applies change to the plan and restarts. A change that leaves
// the plan invalid is rolled back and returned.
func (s *Surface) Reconfigure(change func(*domain.Plan)) (*Handle, error) {
	s.mu.Lock()
	next := s.plan
	change(&next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.plan = next
	s.mu.Unlock()

	return s.Restart()
}

// SetDirection switches the venue order and rescans.
func (s *Surface) SetDirection(d domain.Direction) (*Handle, error) {
	return s.Reconfigure(func(p *domain.Plan) { p.Direction = d })
}

// SetBase switches the input token and rescans.
func (s *Surface) SetBase(b domain.Base) (*Handle, error) {
	return s.Reconfigure(func(p *domain.Plan) { p.Base = b })
}

// SetRange sets explicit bounds and rescans.
func (s *Surface) SetRange(min, max float64) (*Handle, error) {
	rng, err := domain.NewScanRange(min, max)
	if err != nil {
		return nil, err
	}
	return s.Reconfigure(func(p *domain.Plan) { p.Range = &rng })
}

// Run is the scheduler: an initial scan, then one every RescanInterval.
// Restart resets the timer. Run returns when ctx is done, after cancelling
// the live session; later scans are refused until Run is called again.
func (s *Surface) Run(ctx context.Context) error {
	s.setStopped(false)
	defer func() {
		s.setStopped(true)
		s.Cancel()
	}()

	interval := s.Plan().RescanInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	reset := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(interval)
		s.mu.Lock()
		s.nextScan = time.Now().Add(interval)
		s.mu.Unlock()
	}

	s.Scan()
	reset()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.triggered:
			reset()
		case <-timer.C:
			s.Scan()
			reset()
		}
	}
}

func (s *Surface) setStopped(v bool) {
	s.startMu.Lock()
	s.stopped = v
	s.startMu.Unlock()
}

// Check reports an unhealthy surface when a session has run longer than
// limit.
func (s *Surface) Check(limit time.Duration) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanning && time.Since(s.startedAt) > limit {
		return false, "scan running for " + time.Since(s.startedAt).Round(time.Second).String()
	}
	return true, ""
}

// Snapshot is a point-in-time view of a surface for displays and the
// control API.
type Snapshot struct {
	Key          string                   `json:"key"`
	Name         string                   `json:"name"`
	Chain        string                   `json:"chain"`
	Pair         string                   `json:"pair"`
	Base         string                   `json:"base"`
	Counter      string                   `json:"counter"`
	First        string                   `json:"first_venue"`
	Second       string                   `json:"second_venue"`
	Direction    domain.Direction         `json:"direction"`
	Mode         domain.Mode              `json:"mode"`
	Range        domain.ScanRange         `json:"range"`
	State        State                    `json:"state"`
	Scanning     bool                     `json:"scanning"`
	Progress     int                      `json:"progress"`
	Session      string                   `json:"session,omitempty"`
	Result       *domain.ScanResult       `json:"result,omitempty"`
	Points       []domain.EvaluationPoint `json:"points,omitempty"`
	LastError    string                   `json:"last_error,omitempty"`
	NextScan     time.Time                `json:"next_scan,omitempty"`
	RescanPeriod time.Duration            `json:"rescan_period"`
}

// Snapshot returns the current view of the surface.
func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Key:          s.plan.Key,
		Name:         s.plan.Name,
		Chain:        s.plan.Chain,
		Direction:    s.plan.Direction,
		Mode:         s.plan.Mode,
		State:        s.state,
		Scanning:     s.scanning,
		Progress:     s.progress,
		Points:       append([]domain.EvaluationPoint(nil), s.points...),
		NextScan:     s.nextScan,
		RescanPeriod: s.plan.RescanInterval,
	}
	if s.plan.Token0 != nil && s.plan.Token1 != nil {
		rt := s.plan.RoundTrip()
		snap.Pair = s.plan.Token0.Symbol() + "/" + s.plan.Token1.Symbol()
		snap.Base = rt.BaseToken().Symbol()
		snap.Counter = rt.CounterToken().Symbol()
		snap.First = rt.Out.Venue.String()
		snap.Second = rt.Back.Venue.String()
		snap.Range = s.plan.ScanRange()
	}
	if s.active != nil {
		snap.Session = s.active.id
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}
