package sensor

import "fmt"

// DefaultFactor is the compensation factor calibrated against a DHT11
// reference sensor on a Pi Zero 2W. Earlier deployments on other boards
// used 2.25; the factor is a tunable, not a constant.
const DefaultFactor = 1.4

// DefaultWindow is the number of CPU temperature samples smoothed before
// the correction is applied.
const DefaultWindow = 5

// Compensator removes CPU self-heating bias from raw ambient temperature
// readings. It keeps a bounded rolling window of CPU temperature samples
// and subtracts a fraction of the gap between the smoothed CPU temperature
// and the raw ambient reading:
//
//	compensated = raw - (meanCPU - raw) / factor
//
// A smaller factor subtracts more aggressively. The window is the only
// state; given the same window and inputs the result is identical.
type Compensator struct {
	factor  float64
	samples []float64
	max     int
}

// NewCompensator returns a Compensator with the given factor and window
// capacity. The factor is a divisor and must be positive; window must be
// at least 1.
func NewCompensator(factor float64, window int) (*Compensator, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("compensation factor must be > 0, got %g", factor)
	}
	if window < 1 {
		return nil, fmt.Errorf("compensation window must be >= 1, got %d", window)
	}
	return &Compensator{
		factor:  factor,
		samples: make([]float64, 0, window),
		max:     window,
	}, nil
}

// Observe pushes a CPU temperature sample into the rolling window,
// evicting the oldest once the capacity is exceeded.
func (c *Compensator) Observe(cpuTemp float64) {
	if len(c.samples) >= c.max {
		copy(c.samples, c.samples[1:])
		c.samples[len(c.samples)-1] = cpuTemp
	} else {
		c.samples = append(c.samples, cpuTemp)
	}
}

// Mean returns the average of the window, and false if no sample has been
// observed yet. Before the window fills the mean covers whatever is
// present.
func (c *Compensator) Mean() (float64, bool) {
	if len(c.samples) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range c.samples {
		sum += v
	}
	return sum / float64(len(c.samples)), true
}

// Compensate applies the correction to a raw ambient temperature. With an
// empty window (CPU temperature never read) the raw value passes through
// unchanged.
func (c *Compensator) Compensate(raw float64) float64 {
	mean, ok := c.Mean()
	if !ok {
		return raw
	}
	return raw - (mean-raw)/c.factor
}

// Len returns the number of samples currently in the window.
func (c *Compensator) Len() int { return len(c.samples) }

// Factor returns the configured compensation factor.
func (c *Compensator) Factor() float64 { return c.factor }
