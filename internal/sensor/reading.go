// Package sensor defines the reading model and probe contracts for the
// Enviro+ HAT capabilities: a BME280 environment sensor, an LTR-559
// light/proximity sensor, a MICS6814 gas sensor, and the Pi's own CPU
// thermal zone used for heat compensation.
package sensor

import (
	"encoding/json"
	"strings"
	"time"
)

// Sensor names as they appear in a Reading's error set.
const (
	NameBME280  = "BME280"
	NameLTR559  = "LTR559"
	NameGas     = "MICS6814"
	NameCPUTemp = "CPU"
)

// Capabilities is the number of independently queried sensor capabilities.
const Capabilities = 4

// Error records one failed sensor query within a sampling cycle. It is
// carried as data inside the Reading rather than propagated as a Go error:
// a failed sensor never aborts the cycle.
type Error struct {
	Sensor string `json:"sensor"`
	Reason string `json:"reason"`
}

func (e Error) Error() string {
	return e.Sensor + ": " + e.Reason
}

// ErrorList is the set of sensor failures recorded during one cycle.
type ErrorList []Error

// Join renders the list for a single spreadsheet cell, e.g.
// "BME280: remote I/O error; MICS6814: read timeout".
func (l ErrorList) Join() string {
	if len(l) == 0 {
		return ""
	}
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// JSON renders the list as a JSON array for the database column. An empty
// list serializes to "[]" so the column is never NULL.
func (l ErrorList) JSON() string {
	if l == nil {
		l = ErrorList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ParseErrorList decodes a JSON array previously produced by JSON.
func ParseErrorList(s string) ErrorList {
	if s == "" {
		return nil
	}
	var l ErrorList
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return nil
	}
	return l
}

// Reading is one immutable snapshot of all sensor values for a single
// sampling tick. Fields for sensors that failed this cycle are nil and the
// sensor is named in Errors. A Reading with every field nil and a full
// error set is still a well-formed Reading.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature"` // °C, CPU-heat compensated
	Pressure    *float64  `json:"pressure"`    // hPa
	Humidity    *float64  `json:"humidity"`    // %RH
	Light       *float64  `json:"light"`       // lux (1 when sensor blocked)
	Proximity   *float64  `json:"proximity"`   // raw counts
	Oxidised    *float64  `json:"oxidised"`    // kΩ
	Reduced     *float64  `json:"reduced"`     // kΩ
	NH3         *float64  `json:"nh3"`         // kΩ
	CPUTemp     *float64  `json:"cpu_temp"`    // °C, uncompensated
	Errors      ErrorList `json:"errors"`
}

// Failed reports whether the named sensor appears in the error set.
func (r Reading) Failed(sensor string) bool {
	for _, e := range r.Errors {
		if e.Sensor == sensor {
			return true
		}
	}
	return false
}

// Float returns a pointer to v, for building Readings.
func Float(v float64) *float64 { return &v }

// Environment is one successful BME280 query.
type Environment struct {
	Temperature float64 // °C, raw (uncompensated)
	Pressure    float64 // hPa
	Humidity    float64 // %RH
}

// Light is one successful LTR-559 query.
type Light struct {
	Lux       float64
	Proximity float64 // raw counts, higher = closer
}

// Gas is one successful MICS6814 query. Resistances are in ohms; the
// assembler converts to kΩ for the Reading.
type Gas struct {
	Oxidising float64
	Reducing  float64
	NH3       float64
}

// EnvironmentProbe queries the BME280.
type EnvironmentProbe interface {
	Environment() (Environment, error)
}

// LightProbe queries the LTR-559.
type LightProbe interface {
	Light() (Light, error)
}

// GasProbe queries the MICS6814.
type GasProbe interface {
	Gas() (Gas, error)
}

// CPUProbe reads the CPU temperature in °C.
type CPUProbe interface {
	CPUTemperature() (float64, error)
}
