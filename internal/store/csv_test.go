package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cs, err := NewCSV(dir)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	defer cs.Close()

	ts := time.Date(2026, 8, 12, 14, 30, 0, 0, time.UTC)
	r1 := sensor.Reading{
		Timestamp:   ts,
		Temperature: sensor.Float(21.53),
		Pressure:    sensor.Float(1012.25),
		Humidity:    sensor.Float(44.5),
		Light:       sensor.Float(230),
		Oxidised:    sensor.Float(21.1),
		Reduced:     sensor.Float(251.4),
		NH3:         sensor.Float(169.9),
		CPUTemp:     sensor.Float(49.8),
	}
	r2 := sensor.Reading{
		Timestamp: ts.Add(time.Minute),
		CPUTemp:   sensor.Float(50.1),
		Errors: sensor.ErrorList{
			{Sensor: sensor.NameBME280, Reason: "remote I/O error"},
			{Sensor: sensor.NameLTR559, Reason: "read timeout"},
			{Sensor: sensor.NameGas, Reason: "read timeout"},
		},
	}

	ctx := context.Background()
	if err := cs.Write(ctx, r1); err != nil {
		t.Fatalf("Write r1: %v", err)
	}
	if err := cs.Write(ctx, r2); err != nil {
		t.Fatalf("Write r2: %v", err)
	}
	cs.Close()

	loaded, err := LoadFile(filepath.Join(dir, "enviro_data_2026-08-12.csv"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(loaded))
	}

	if loaded[0].Temperature == nil || *loaded[0].Temperature != 21.53 {
		t.Errorf("first temperature: got %v", loaded[0].Temperature)
	}
	if loaded[0].Pressure == nil || *loaded[0].Pressure != 1012.25 {
		t.Errorf("first pressure: got %v", loaded[0].Pressure)
	}
	if len(loaded[0].Errors) != 0 {
		t.Errorf("first errors: got %v", loaded[0].Errors)
	}

	// The degraded reading keeps its blanks and its error set.
	if loaded[1].Temperature != nil || loaded[1].Light != nil {
		t.Errorf("failed sensor columns should load as nil: %+v", loaded[1])
	}
	if len(loaded[1].Errors) != 3 {
		t.Fatalf("second errors: got %v, want 3 entries", loaded[1].Errors)
	}
	if loaded[1].Errors[0].Sensor != sensor.NameBME280 {
		t.Errorf("second errors[0]: got %+v", loaded[1].Errors[0])
	}
}

func TestCSVHeaderOncePerFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ts := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)

	// Two store lifetimes appending to the same day's file.
	cs, err := NewCSV(dir)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	if err := cs.Write(ctx, sensor.Reading{Timestamp: ts, Temperature: sensor.Float(20)}); err != nil {
		t.Fatal(err)
	}
	cs.Close()

	cs2, err := NewCSV(dir)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	if err := cs2.Write(ctx, sensor.Reading{Timestamp: ts.Add(time.Minute), Temperature: sensor.Float(21)}); err != nil {
		t.Fatal(err)
	}
	cs2.Close()

	path := filepath.Join(dir, "enviro_data_2026-08-12.csv")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got := strings.Count(string(raw), "timestamp,"); got != 1 {
		t.Errorf("header lines: got %d, want 1\n%s", got, raw)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("readings across reopens: got %d, want 2", len(loaded))
	}
}

func TestCSVDailyRotation(t *testing.T) {
	dir := t.TempDir()

	cs, err := NewCSV(dir)
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	defer cs.Close()

	ctx := context.Background()
	day1 := time.Date(2026, 8, 12, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 13, 0, 1, 0, 0, time.UTC)

	if err := cs.Write(ctx, sensor.Reading{Timestamp: day1, Temperature: sensor.Float(20)}); err != nil {
		t.Fatal(err)
	}
	if err := cs.Write(ctx, sensor.Reading{Timestamp: day2, Temperature: sensor.Float(21)}); err != nil {
		t.Fatal(err)
	}
	cs.Close()

	days, err := ListDays(dir)
	if err != nil {
		t.Fatalf("ListDays: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 daily files, got %v", days)
	}
	if days[0] != "2026-08-13" || days[1] != "2026-08-12" {
		t.Errorf("days should be newest first: %v", days)
	}
}
