// Package chart provides sparkline rendering for sensor histories with
// color-coded warn/alert thresholds, minute tick marks, timeline labels,
// and threshold scale bars.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexb2611/enviroplus/internal/history"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// ValueColor returns the color for a value given its warn/alert thresholds.
func ValueColor(v, warn, alert float64, hasWarn, hasAlert bool) lipgloss.Color {
	switch {
	case hasAlert && v >= alert:
		return lipgloss.Color("196") // red
	case hasWarn && v >= warn:
		return lipgloss.Color("208") // orange
	case hasWarn && v >= warn*0.85:
		return lipgloss.Color("220") // yellow
	default:
		return lipgloss.Color("78") // soft green
	}
}

// RenderSparkline renders a sparkline chart with color-coded blocks from
// bare values (no timestamp ticks).
func RenderSparkline(values []float64, width int, rangeMin, rangeMax float64, warn, alert float64, hasWarn, hasAlert bool) string {
	if width <= 0 {
		return ""
	}
	pts := make([]history.Point, len(values))
	for i, v := range values {
		pts[i] = history.Point{Value: v}
	}
	return RenderSparklinePoints(pts, width, rangeMin, rangeMax, warn, alert, hasWarn, hasAlert)
}

// RenderSparklinePoints renders a sparkline with minute tick marks on the
// timeline. A subtle pipe is drawn at each minute boundary.
func RenderSparklinePoints(points []history.Point, width int, rangeMin, rangeMax float64, warn, alert float64, hasWarn, hasAlert bool) string {
	if width <= 0 {
		return ""
	}

	if len(points) == 0 {
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	for i, p := range points {
		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		isMinuteTick := false
		if !p.Time.IsZero() {
			if p.Time.Second() == 0 {
				isMinuteTick = true
			} else if i > 0 && !points[i-1].Time.IsZero() {
				if p.Time.Minute() != points[i-1].Time.Minute() {
					isMinuteTick = true
				}
			}
		}

		if isMinuteTick {
			sb.WriteString(tickStyle.Render("│"))
		} else {
			ch := string(sparkBlocks[idx])
			color := ValueColor(p.Value, warn, alert, hasWarn, hasAlert)
			style := lipgloss.NewStyle().Foreground(color)
			if hasAlert && p.Value >= alert {
				style = style.Bold(true)
			}
			sb.WriteString(style.Render(ch))
		}
	}

	return sb.String()
}

// RenderTimeline renders the time labels under the sparkline, showing
// HH:MM at each minute tick position.
func RenderTimeline(points []history.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	type tick struct {
		pos   int
		label string
	}
	var ticks []tick

	for i, p := range points {
		if p.Time.IsZero() {
			continue
		}
		isMinuteTick := false
		if p.Time.Second() == 0 {
			isMinuteTick = true
		} else if i > 0 && !points[i-1].Time.IsZero() {
			if p.Time.Minute() != points[i-1].Time.Minute() {
				isMinuteTick = true
			}
		}
		if isMinuteTick {
			pos := padLen + i
			label := p.Time.Format("15:04")
			ticks = append(ticks, tick{pos: pos, label: label})
		}
	}

	lastEnd := -1
	for _, t := range ticks {
		start := t.pos - 2
		if start < 0 {
			start = 0
		}
		end := start + len(t.label)
		if end > width {
			continue
		}
		if start <= lastEnd+1 {
			continue
		}
		for j, ch := range t.label {
			line[start+j] = ch
		}
		lastEnd = end
	}

	result := string(line)
	return tickStyle.Render(result)
}

// RenderThresholdScale renders a scale bar showing current position vs thresholds.
func RenderThresholdScale(current, rangeMin, rangeMax, warn, alert float64, hasWarn, hasAlert bool, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '·'
	}

	if hasWarn && warn > rangeMin {
		pos := int(float64(width-1) * (warn - rangeMin) / span)
		if pos >= 0 && pos < width {
			bar[pos] = '▪'
		}
	}
	if hasAlert && alert > rangeMin {
		pos := int(float64(width-1) * (alert - rangeMin) / span)
		if pos >= 0 && pos < width {
			bar[pos] = '▪'
		}
	}

	curPos := int(float64(width-1) * (current - rangeMin) / span)
	if curPos < 0 {
		curPos = 0
	}
	if curPos >= width {
		curPos = width - 1
	}

	var sb strings.Builder
	for i, ch := range bar {
		if i == curPos {
			color := ValueColor(current, warn, alert, hasWarn, hasAlert)
			style := lipgloss.NewStyle().Foreground(color).Bold(true)
			sb.WriteString(style.Render("◆"))
		} else if ch == '▪' {
			warnPos := -1
			alertPos := -1
			if hasWarn && warn > rangeMin {
				warnPos = int(float64(width-1) * (warn - rangeMin) / span)
			}
			if hasAlert && alert > rangeMin {
				alertPos = int(float64(width-1) * (alert - rangeMin) / span)
			}
			if i == alertPos {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("▪"))
			} else if i == warnPos {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("▪"))
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("▪"))
			}
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Render(string(ch)))
		}
	}

	return sb.String()
}

// RenderValue renders a measurement with its unit and color coding.
func RenderValue(v float64, unit string, warn, alert float64, hasWarn, hasAlert bool) string {
	s := fmt.Sprintf("%7.1f%s", v, unit)
	color := ValueColor(v, warn, alert, hasWarn, hasAlert)
	style := lipgloss.NewStyle().Foreground(color)
	if hasAlert && v >= alert {
		style = style.Bold(true)
	}
	return style.Render(s)
}
