// Package hat talks to the Enviro+ board: the BME280 environment sensor,
// the LTR-559 light/proximity sensor and the MICS6814 gas sensor behind
// its ADS1015 ADC, all on one I²C bus, plus the Pi's own CPU thermal
// zone. Each device satisfies the matching probe interface in the sensor
// package.
package hat

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// HAT owns the I²C bus and the per-device handles. Opening the HAT does
// not guarantee each sensor works: a device that fails to respond later
// surfaces as a per-cycle sensor error, not as an open failure.
type HAT struct {
	bus i2c.BusCloser

	BME280 *BME280
	LTR559 *LTR559
	Gas    *MICS6814
}

// Open initialises the host drivers and claims the bus. An empty busName
// picks the first bus periph finds ("1" on a Pi).
func Open(busName string) (*HAT, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	h := &HAT{bus: bus}

	h.BME280, err = newBME280(bus)
	if err != nil {
		// The BME280 handshake happens at construction; without it the
		// board is almost certainly not attached.
		bus.Close()
		return nil, fmt.Errorf("bme280: %w", err)
	}

	h.LTR559, err = newLTR559(bus)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ltr559: %w", err)
	}

	h.Gas = newMICS6814(bus)

	return h, nil
}

// Close releases the bus.
func (h *HAT) Close() error {
	return h.bus.Close()
}
