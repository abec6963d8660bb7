// Package ui provides the Bubble Tea dashboard for the radar.
package ui

import (
	"math"
	"time"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	"github.com/fd1az/optimal-input-radar/pkg/ui/components"
)

// Radar is what the dashboard reads and controls.
type Radar interface {
	Snapshot() []app.Snapshot
	Restart(key string) (*app.Handle, error)
	Cancel(key string) error
	Surface(key string) (*app.Surface, error)
}

// surfaceRow converts a snapshot into a display row.
func surfaceRow(s app.Snapshot, selected bool, now time.Time) components.SurfaceRow {
	row := components.SurfaceRow{
		Key:      s.Key,
		Name:     s.Name,
		Chain:    s.Chain,
		Route:    s.Base + "→" + s.Counter + " via " + s.First + " → " + s.Second,
		Mode:     string(s.Mode),
		Range:    s.Range.String(),
		State:    string(s.State),
		Scanning: s.Scanning,
		Progress: s.Progress,
		Base:     s.Base,
		Selected: selected,
	}
	if s.Result != nil {
		row.HasResult = true
		row.BestInput = s.Result.BestInput
		row.BestProfit = s.Result.BestProfit
		row.Profitable = s.Result.Profitable
		row.Evals = s.Result.Evaluations
	}
	if !s.NextScan.IsZero() {
		row.NextScan = max(s.NextScan.Sub(now), 0)
	}
	return row
}

// curvePoints converts the coarse samples and the best result into plot
// points.
func curvePoints(s app.Snapshot) ([]components.CurvePoint, *components.CurvePoint) {
	pts := make([]components.CurvePoint, 0, len(s.Points))
	for _, p := range s.Points {
		pts = append(pts, components.CurvePoint{X: p.Input, Y: p.Profit})
	}
	if s.Result == nil || math.IsInf(s.Result.BestProfit, 0) {
		return pts, nil
	}
	return pts, &components.CurvePoint{X: s.Result.BestInput, Y: s.Result.BestProfit}
}
