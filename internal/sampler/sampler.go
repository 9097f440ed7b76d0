// Package sampler assembles one Reading per tick from the individual
// sensor probes. Probes are queried sequentially (they share one
// low-speed I²C bus) and a failing probe degrades to an entry in the
// Reading's error set; the cycle itself never fails.
package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

// Proximity counts below this mean nothing is covering the sensor and the
// lux value is trustworthy. Above it the light reading is reported as 1.
const proximityClear = 10

// Probes bundles one probe per capability. Any field may be nil, which
// records the capability as unavailable each cycle.
type Probes struct {
	Environment sensor.EnvironmentProbe
	Light       sensor.LightProbe
	Gas         sensor.GasProbe
	CPU         sensor.CPUProbe
}

// Sink consumes completed Readings. A Reading with missing fields and a
// non-empty error set is still valid and must be accepted.
type Sink interface {
	Write(ctx context.Context, r sensor.Reading) error
}

// Sampler queries each probe once per tick, applies CPU-heat temperature
// compensation, and packages the result. It owns the compensator's rolling
// window; nothing else touches it.
type Sampler struct {
	probes Probes
	comp   *sensor.Compensator
	log    *slog.Logger
}

func New(probes Probes, comp *sensor.Compensator, log *slog.Logger) *Sampler {
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{probes: probes, comp: comp, log: log}
}

// Sample performs one sampling cycle. It never returns an error: every
// failure path is downgraded to an entry in the Reading's error set.
func (s *Sampler) Sample(now time.Time) sensor.Reading {
	r := sensor.Reading{Timestamp: now.UTC()}

	cpuOK := false
	if s.probes.CPU != nil {
		if cpu, err := s.probes.CPU.CPUTemperature(); err != nil {
			s.fail(&r, sensor.NameCPUTemp, err)
		} else {
			r.CPUTemp = sensor.Float(cpu)
			s.comp.Observe(cpu)
			cpuOK = true
		}
	} else {
		s.note(&r, sensor.NameCPUTemp, "no probe configured")
	}

	if s.probes.Environment != nil {
		if env, err := s.probes.Environment.Environment(); err != nil {
			s.fail(&r, sensor.NameBME280, err)
		} else {
			temp := env.Temperature
			if cpuOK {
				temp = s.comp.Compensate(temp)
			}
			r.Temperature = sensor.Float(temp)
			r.Pressure = sensor.Float(env.Pressure)
			r.Humidity = sensor.Float(env.Humidity)
		}
	} else {
		s.note(&r, sensor.NameBME280, "no probe configured")
	}

	if s.probes.Light != nil {
		if lt, err := s.probes.Light.Light(); err != nil {
			s.fail(&r, sensor.NameLTR559, err)
		} else {
			r.Proximity = sensor.Float(lt.Proximity)
			if lt.Proximity < proximityClear {
				r.Light = sensor.Float(lt.Lux)
			} else {
				r.Light = sensor.Float(1) // sensor blocked
			}
		}
	} else {
		s.note(&r, sensor.NameLTR559, "no probe configured")
	}

	if s.probes.Gas != nil {
		if g, err := s.probes.Gas.Gas(); err != nil {
			s.fail(&r, sensor.NameGas, err)
		} else {
			r.Oxidised = sensor.Float(g.Oxidising / 1000)
			r.Reduced = sensor.Float(g.Reducing / 1000)
			r.NH3 = sensor.Float(g.NH3 / 1000)
		}
	} else {
		s.note(&r, sensor.NameGas, "no probe configured")
	}

	return r
}

func (s *Sampler) fail(r *sensor.Reading, name string, err error) {
	s.log.Warn("sensor unavailable", "sensor", name, "reason", err.Error())
	r.Errors = append(r.Errors, sensor.Error{Sensor: name, Reason: err.Error()})
}

func (s *Sampler) note(r *sensor.Reading, name, reason string) {
	r.Errors = append(r.Errors, sensor.Error{Sensor: name, Reason: reason})
}
