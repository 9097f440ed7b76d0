package hat

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestThermalZoneTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(path, []byte("48562\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := thermalZoneTemp(path)
	if err != nil {
		t.Fatalf("thermalZoneTemp: %v", err)
	}
	if got != 48.562 {
		t.Errorf("got %v, want 48.562 (millidegrees / 1000)", got)
	}
}

func TestThermalZoneTempGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(path, []byte("not-a-number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := thermalZoneTemp(path); err == nil {
		t.Error("garbage content should be an error, not a silent zero")
	}
}

func TestGasResistance(t *testing.T) {
	// Half rail across a 56k divider means the element matches the load.
	if got := gasResistance(1.65); got != 56000 {
		t.Errorf("mid-rail: got %v, want 56000", got)
	}

	if got := gasResistance(0); got != 0 {
		t.Errorf("zero volts: got %v, want 0", got)
	}
	if got := gasResistance(3.3); got != 0 {
		t.Errorf("rail-pinned: got %v, want 0 (no division blow-up)", got)
	}
	if got := gasResistance(-0.1); got != 0 {
		t.Errorf("negative: got %v, want 0", got)
	}
}

func TestAlsLux(t *testing.T) {
	if got := alsLux(0, 0); got != 0 {
		t.Errorf("dark: got %v, want 0", got)
	}

	// CH0-dominant reading lands in the first ratio band:
	// (1000*17743 + 100*11059) / 10000 / (4 * 0.5)
	want := (1000*17743.0 + 100*11059.0) / 10000 / 2
	if got := alsLux(1000, 100); math.Abs(got-want) > 1e-9 {
		t.Errorf("band 0: got %v, want %v", got, want)
	}

	// IR-dominant readings (ratio >= 85) are meaningless and clamp to 0.
	if got := alsLux(10, 1000); got != 0 {
		t.Errorf("ir-dominant: got %v, want 0", got)
	}
}
