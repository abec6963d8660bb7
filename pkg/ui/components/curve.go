package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CurvePoint is one sample of the profit curve.
type CurvePoint struct {
	X float64
	Y float64
}

// RenderCurve draws the samples as a dot plot of width x height cells.
// Points with a non-finite Y are drawn on the bottom row as "×". best, when
// set, is highlighted.
func RenderCurve(points []CurvePoint, best *CurvePoint, width, height int) string {
	if len(points) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render("  no samples yet")
	}
	width = max(width, 10)
	height = max(height, 3)

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	all := points
	if best != nil {
		all = append(append([]CurvePoint(nil), points...), *best)
	}
	for _, p := range all {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		if !math.IsInf(p.Y, 0) && !math.IsNaN(p.Y) {
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int {
		if maxX == minX {
			return width / 2
		}
		return int(math.Round((x - minX) / (maxX - minX) * float64(width-1)))
	}
	row := func(y float64) int {
		if math.IsInf(y, 0) || math.IsNaN(y) {
			return height - 1
		}
		if maxY == minY {
			return height / 2
		}
		return int(math.Round((maxY - y) / (maxY - minY) * float64(height-1)))
	}

	for _, p := range points {
		mark := '•'
		if math.IsInf(p.Y, 0) || math.IsNaN(p.Y) {
			mark = '×'
		}
		grid[row(p.Y)][col(p.X)] = mark
	}

	bestRow, bestCol := -1, -1
	if best != nil {
		bestRow, bestCol = row(best.Y), col(best.X)
		grid[bestRow][bestCol] = '◆'
	}

	dot := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	hi := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	axis := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	for r, line := range grid {
		label := "          "
		switch {
		case r == 0 && !math.IsInf(maxY, 0):
			label = fmt.Sprintf("%10.4g", maxY)
		case r == height-1 && !math.IsInf(minY, 0):
			label = fmt.Sprintf("%10.4g", minY)
		}
		sb.WriteString(axis.Render(label + " │"))
		for c, ch := range line {
			switch {
			case r == bestRow && c == bestCol:
				sb.WriteString(hi.Render(string(ch)))
			case ch == ' ':
				sb.WriteRune(ch)
			default:
				sb.WriteString(dot.Render(string(ch)))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(axis.Render("           └" + strings.Repeat("─", width)))
	sb.WriteString("\n")
	left := fmt.Sprintf("%.4g", minX)
	right := fmt.Sprintf("%.4g", maxX)
	gap := max(width-len(left)-len(right), 1)
	sb.WriteString(axis.Render("            " + left + strings.Repeat(" ", gap) + right))
	return sb.String()
}
