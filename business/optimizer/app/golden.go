package app

import (
	"context"
	"math"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
)

// phi is the golden ratio.
var phi = (1 + math.Sqrt(5)) / 2

// Candidate is a refined input and its profit.
type Candidate struct {
	Input  float64
	Profit float64
}

// Refiner maximizes a profit function with golden-section search and, when
// enabled, boundary expansion.
type Refiner struct {
	params     domain.SearchParams
	fn         ProfitFunc
	onProgress ProgressFunc

	evaluations int
	budget      int
}

// NewRefiner creates a refiner. onProgress may be nil; it receives 50-99.
func NewRefiner(params domain.SearchParams, fn ProfitFunc, onProgress ProgressFunc) *Refiner {
	return &Refiner{params: params, fn: fn, onProgress: onProgress}
}

// Evaluations returns how many times the profit function was called.
func (r *Refiner) Evaluations() int {
	return r.evaluations
}

// Maximize searches [a, b].
func (r *Refiner) Maximize(ctx context.Context, a, b float64) (Candidate, error) {
	r.budget = r.estimateBudget(b - a)
	return r.search(ctx, a, b, 0)
}

func (r *Refiner) search(ctx context.Context, a, b float64, depth int) (Candidate, error) {
	c := b - (b-a)/phi
	d := a + (b-a)/phi

	fc, err := r.eval(ctx, c)
	if err != nil {
		return Candidate{}, err
	}
	fd, err := r.eval(ctx, d)
	if err != nil {
		return Candidate{}, err
	}

	for i := 0; math.Abs(b-a) >= r.params.Tolerance && i < r.params.IterationCap; i++ {
		// ties move right
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - (b-a)/phi
			if fc, err = r.eval(ctx, c); err != nil {
				return Candidate{}, err
			}
		} else {
			a, c, fc = c, d, fd
			d = a + (b-a)/phi
			if fd, err = r.eval(ctx, d); err != nil {
				return Candidate{}, err
			}
		}
	}

	mid := (a + b) / 2
	fm, err := r.eval(ctx, mid)
	if err != nil {
		return Candidate{}, err
	}
	best := Candidate{Input: mid, Profit: fm}

	if !r.params.ExpandBoundary || depth >= r.params.MaxExpansionDepth {
		return best, nil
	}
	return r.expand(ctx, a, b, best, depth)
}

// expand probes one bracket width past each side of [a, b] and restarts
// the search there when a probe beats best materially.
func (r *Refiner) expand(ctx context.Context, a, b float64, best Candidate, depth int) (Candidate, error) {
	margin := b - a
	threshold := r.params.MaterialMargin(best.Profit)

	right := b + margin
	fr, err := r.eval(ctx, right)
	if err != nil {
		return Candidate{}, err
	}
	if fr > best.Profit+threshold {
		return r.descend(ctx, b, right, best, depth)
	}

	left := math.Max(a-margin, r.params.LowerClamp)
	if left >= a {
		return best, nil
	}
	fl, err := r.eval(ctx, left)
	if err != nil {
		return Candidate{}, err
	}
	if fl > best.Profit+threshold {
		return r.descend(ctx, left, a, best, depth)
	}

	return best, nil
}

func (r *Refiner) descend(ctx context.Context, a, b float64, best Candidate, depth int) (Candidate, error) {
	next, err := r.search(ctx, a, b, depth+1)
	if err != nil {
		return Candidate{}, err
	}
	if next.Profit > best.Profit {
		return next, nil
	}
	return best, nil
}

func (r *Refiner) eval(ctx context.Context, x float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	y, err := r.fn(ctx, x)
	if err != nil {
		return 0, err
	}
	r.evaluations++
	r.report()
	return y, nil
}

func (r *Refiner) report() {
	if r.onProgress == nil {
		return
	}
	pct := 50 + r.evaluations*49/max(r.budget, 1)
	r.onProgress(min(pct, 99))
}

// estimateBudget guesses the evaluation count of one search level times the
// number of levels expansion may add.
func (r *Refiner) estimateBudget(width float64) int {
	iters := r.params.IterationCap
	if width > 0 && r.params.Tolerance > 0 {
		need := int(math.Ceil(math.Log(width/r.params.Tolerance) / math.Log(phi)))
		iters = min(iters, max(need, 0))
	}
	perLevel := iters + 3 // two interior points and the midpoint
	if !r.params.ExpandBoundary {
		return perLevel
	}
	return (perLevel + 2) * (r.params.MaxExpansionDepth + 1)
}
