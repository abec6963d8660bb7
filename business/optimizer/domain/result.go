package domain

import (
	"encoding/json"
	"math"
	"time"
)

// EvaluationPoint is one coarse sample. Profit may be -Inf.
type EvaluationPoint struct {
	Input  float64
	Profit float64
}

// MarshalJSON encodes -Inf profit as null.
func (p EvaluationPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Input  float64  `json:"input"`
		Profit *float64 `json:"profit"`
	}{Input: p.Input, Profit: finite(p.Profit)})
}

// ScanResult is the published outcome of a completed scan.
type ScanResult struct {
	BestInput   float64
	BestProfit  float64
	Profitable  bool
	Evaluations int
	CompletedAt time.Time
}

// MarshalJSON encodes -Inf profit as null.
func (r ScanResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		BestInput   float64   `json:"best_input"`
		BestProfit  *float64  `json:"best_profit"`
		Profitable  bool      `json:"profitable"`
		Evaluations int       `json:"evaluations"`
		CompletedAt time.Time `json:"completed_at"`
	}{
		BestInput:   r.BestInput,
		BestProfit:  finite(r.BestProfit),
		Profitable:  r.Profitable,
		Evaluations: r.Evaluations,
		CompletedAt: r.CompletedAt,
	})
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
