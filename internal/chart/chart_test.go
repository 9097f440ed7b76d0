package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/alexb2611/enviroplus/internal/history"
)

func TestSparkline(t *testing.T) {
	values := []float64{980, 990, 1000, 1010, 1020, 1030, 1040}
	result := RenderSparkline(values, 20, 970, 1050, 0, 0, false, false)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	t.Logf("Sparkline: %s", result)
}

func TestSparklineMinuteTicks(t *testing.T) {
	base := time.Date(2026, 8, 12, 14, 0, 50, 0, time.Local)
	var pts []history.Point
	for i := 0; i < 20; i++ {
		pts = append(pts, history.Point{
			Value: float64(40 + i%5),
			Time:  base.Add(time.Duration(i) * time.Second),
		})
	}

	result := RenderSparklinePoints(pts, 20, 30, 55, 80, 100, true, true)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	if !strings.Contains(result, "│") {
		t.Error("expected minute tick mark in sparkline")
	}
	t.Logf("Sparkline with ticks: %s", result)
}

func TestThresholdScale(t *testing.T) {
	out := RenderThresholdScale(35, 0, 40, 28, 35, true, true, 30)
	if !strings.Contains(out, "◆") {
		t.Error("expected current-value marker")
	}
	if !strings.Contains(out, "▪") {
		t.Error("expected threshold marks")
	}

	// Out-of-range values clamp to the bar ends.
	low := RenderThresholdScale(-5, 0, 40, 28, 35, true, true, 30)
	if !strings.Contains(low, "◆") {
		t.Error("below-range value should still be marked")
	}
}

func TestValueColorThresholds(t *testing.T) {
	if got := ValueColor(50, 30, 40, true, true); got != "196" {
		t.Errorf("above alert: got %v, want red", got)
	}
	if got := ValueColor(35, 30, 40, true, true); got != "208" {
		t.Errorf("above warn: got %v, want orange", got)
	}
	if got := ValueColor(10, 30, 40, true, true); got != "78" {
		t.Errorf("nominal: got %v, want green", got)
	}
	if got := ValueColor(500, 0, 0, false, false); got != "78" {
		t.Errorf("no thresholds: got %v, want green", got)
	}
}
