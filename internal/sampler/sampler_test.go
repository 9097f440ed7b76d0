package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

type stubEnv struct {
	env sensor.Environment
	err error
}

func (s stubEnv) Environment() (sensor.Environment, error) { return s.env, s.err }

type stubLight struct {
	light sensor.Light
	err   error
}

func (s stubLight) Light() (sensor.Light, error) { return s.light, s.err }

type stubGas struct {
	gas sensor.Gas
	err error
}

func (s stubGas) Gas() (sensor.Gas, error) { return s.gas, s.err }

type stubCPU struct {
	temp float64
	err  error
}

func (s stubCPU) CPUTemperature() (float64, error) { return s.temp, s.err }

func healthyProbes() Probes {
	return Probes{
		Environment: stubEnv{env: sensor.Environment{Temperature: 28.0, Pressure: 1012.3, Humidity: 44.5}},
		Light:       stubLight{light: sensor.Light{Lux: 230.0, Proximity: 2}},
		Gas:         stubGas{gas: sensor.Gas{Oxidising: 21000, Reducing: 251000, NH3: 169000}},
		CPU:         stubCPU{temp: 50.0},
	}
}

func newSampler(t *testing.T, probes Probes) *Sampler {
	t.Helper()
	comp, err := sensor.NewCompensator(1.4, 5)
	if err != nil {
		t.Fatalf("NewCompensator: %v", err)
	}
	return New(probes, comp, nil)
}

func TestSampleAllSensorsHealthy(t *testing.T) {
	s := newSampler(t, healthyProbes())
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	r := s.Sample(now)

	if len(r.Errors) != 0 {
		t.Fatalf("errors: got %v, want none", r.Errors)
	}
	if r.Timestamp != now {
		t.Errorf("timestamp: got %v, want %v", r.Timestamp, now)
	}

	// One CPU sample of 50.0 in the window: 28 - (50-28)/1.4
	wantTemp := 28.0 - (50.0-28.0)/1.4
	if r.Temperature == nil || *r.Temperature != wantTemp {
		t.Errorf("temperature: got %v, want %v", r.Temperature, wantTemp)
	}
	if r.Pressure == nil || *r.Pressure != 1012.3 {
		t.Errorf("pressure: got %v", r.Pressure)
	}
	if r.Humidity == nil || *r.Humidity != 44.5 {
		t.Errorf("humidity: got %v", r.Humidity)
	}
	if r.Light == nil || *r.Light != 230.0 {
		t.Errorf("light: got %v, want lux (proximity clear)", r.Light)
	}
	if r.CPUTemp == nil || *r.CPUTemp != 50.0 {
		t.Errorf("cpu_temp: got %v", r.CPUTemp)
	}

	// Gas resistances converted from Ω to kΩ.
	if r.Oxidised == nil || *r.Oxidised != 21.0 {
		t.Errorf("oxidised: got %v, want 21", r.Oxidised)
	}
	if r.Reduced == nil || *r.Reduced != 251.0 {
		t.Errorf("reduced: got %v, want 251", r.Reduced)
	}
	if r.NH3 == nil || *r.NH3 != 169.0 {
		t.Errorf("nh3: got %v, want 169", r.NH3)
	}
}

func TestSampleGasFailureIsIsolated(t *testing.T) {
	probes := healthyProbes()
	probes.Gas = stubGas{err: errors.New("remote I/O error")}
	s := newSampler(t, probes)

	r := s.Sample(time.Now())

	if r.Oxidised != nil || r.Reduced != nil || r.NH3 != nil {
		t.Error("gas fields should be nil after gas failure")
	}
	if len(r.Errors) != 1 {
		t.Fatalf("errors: got %v, want exactly one", r.Errors)
	}
	if r.Errors[0].Sensor != sensor.NameGas {
		t.Errorf("error sensor: got %q, want %q", r.Errors[0].Sensor, sensor.NameGas)
	}
	if r.Errors[0].Reason != "remote I/O error" {
		t.Errorf("error reason: got %q", r.Errors[0].Reason)
	}

	// Everything else populated normally.
	if r.Temperature == nil || r.Pressure == nil || r.Humidity == nil ||
		r.Light == nil || r.Proximity == nil || r.CPUTemp == nil {
		t.Errorf("non-gas fields should be populated: %+v", r)
	}
}

func TestSampleAllSensorsFailing(t *testing.T) {
	probes := Probes{
		Environment: stubEnv{err: errors.New("bus locked")},
		Light:       stubLight{err: errors.New("bus locked")},
		Gas:         stubGas{err: errors.New("bus locked")},
		CPU:         stubCPU{err: errors.New("thermal zone missing")},
	}
	s := newSampler(t, probes)

	r := s.Sample(time.Now())

	if r.Temperature != nil || r.Pressure != nil || r.Humidity != nil ||
		r.Light != nil || r.Proximity != nil || r.Oxidised != nil ||
		r.Reduced != nil || r.NH3 != nil || r.CPUTemp != nil {
		t.Errorf("all measurement fields should be nil: %+v", r)
	}
	if len(r.Errors) != sensor.Capabilities {
		t.Errorf("errors: got %d entries, want %d", len(r.Errors), sensor.Capabilities)
	}
	if r.Timestamp.IsZero() {
		t.Error("a fully failed cycle still produces a timestamped Reading")
	}
}

func TestSampleCPUFailureSkipsCompensation(t *testing.T) {
	probes := healthyProbes()
	probes.CPU = stubCPU{err: errors.New("read /sys/class/thermal: permission denied")}
	s := newSampler(t, probes)

	r := s.Sample(time.Now())

	// Raw BME280 temperature passes through untouched.
	if r.Temperature == nil || *r.Temperature != 28.0 {
		t.Errorf("temperature: got %v, want raw 28.0", r.Temperature)
	}
	if r.CPUTemp != nil {
		t.Errorf("cpu_temp should be nil, got %v", r.CPUTemp)
	}
	if !r.Failed(sensor.NameCPUTemp) {
		t.Errorf("error set should name %s: %v", sensor.NameCPUTemp, r.Errors)
	}
}

func TestSampleBlockedLightSensor(t *testing.T) {
	probes := healthyProbes()
	probes.Light = stubLight{light: sensor.Light{Lux: 800, Proximity: 1600}}
	s := newSampler(t, probes)

	r := s.Sample(time.Now())

	if r.Light == nil || *r.Light != 1 {
		t.Errorf("light: got %v, want 1 (sensor blocked)", r.Light)
	}
	if r.Proximity == nil || *r.Proximity != 1600 {
		t.Errorf("proximity: got %v, want 1600", r.Proximity)
	}
}

func TestSampleSmoothsCPUAcrossTicks(t *testing.T) {
	probes := healthyProbes()
	s := newSampler(t, probes)

	// Warm the window: 50, 50, then a spike to 62 should be diluted.
	s.Sample(time.Now())
	s.Sample(time.Now())
	probes.CPU = stubCPU{temp: 62.0}
	s.probes = probes

	r := s.Sample(time.Now())

	mean := (50.0 + 50.0 + 62.0) / 3
	want := 28.0 - (mean-28.0)/1.4
	if r.Temperature == nil || *r.Temperature != want {
		t.Errorf("temperature: got %v, want %v (smoothed over window)", r.Temperature, want)
	}
}

func TestErrorListSerialization(t *testing.T) {
	l := sensor.ErrorList{
		{Sensor: sensor.NameBME280, Reason: "remote I/O error"},
		{Sensor: sensor.NameGas, Reason: "read timeout"},
	}

	if got := l.Join(); got != "BME280: remote I/O error; MICS6814: read timeout" {
		t.Errorf("Join: got %q", got)
	}

	parsed := sensor.ParseErrorList(l.JSON())
	if len(parsed) != 2 || parsed[0] != l[0] || parsed[1] != l[1] {
		t.Errorf("round trip: got %v, want %v", parsed, l)
	}

	if got := sensor.ErrorList(nil).JSON(); got != "[]" {
		t.Errorf("nil list JSON: got %q, want []", got)
	}
}
