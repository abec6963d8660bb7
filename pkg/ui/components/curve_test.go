package components

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestRenderCurve_Empty(t *testing.T) {
	if got := RenderCurve(nil, nil, 20, 5); !strings.Contains(got, "no samples") {
		t.Errorf("got %q", got)
	}
}

func TestRenderCurve_MarksPoints(t *testing.T) {
	pts := []CurvePoint{{X: 0, Y: 1}, {X: 5, Y: 3}, {X: 10, Y: math.Inf(-1)}}
	got := RenderCurve(pts, &CurvePoint{X: 5, Y: 3}, 20, 5)

	if !strings.Contains(got, "◆") {
		t.Error("best point not highlighted")
	}
	if !strings.Contains(got, "×") {
		t.Error("unquotable point not drawn")
	}
	if !strings.Contains(got, "•") {
		t.Error("sample not drawn")
	}
	// 5 rows, the axis and the x labels
	if lines := strings.Count(got, "\n"); lines != 6 {
		t.Errorf("lines = %d, want 6", lines)
	}
}

func TestStatusComponent_Prune(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewStatusComponent()
	s.Update(Notice{Surface: "a", Text: "rate limited", Shown: now, TTL: 10 * time.Second})
	s.Update(Notice{Surface: "a", Text: "rate limited again", Shown: now.Add(5 * time.Second), TTL: 10 * time.Second})
	s.Update(Notice{Surface: "b", Text: "sticky", Shown: now})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	s.Prune(now.Add(12 * time.Second))
	if s.Len() != 2 {
		t.Fatalf("len = %d after 12s, want 2", s.Len())
	}

	s.Prune(now.Add(16 * time.Second))
	if s.Len() != 1 {
		t.Fatalf("len = %d after 16s, want 1", s.Len())
	}

	s.Dismiss()
	if s.Len() != 0 {
		t.Fatal("dismiss kept notices")
	}
}
