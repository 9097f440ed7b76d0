package sensor

import (
	"math/rand"
	"sync"
)

// Simulated generates plausible random-walk sensor values for development
// on machines without the HAT attached. It implements all four probe
// interfaces.
type Simulated struct {
	mu       sync.Mutex
	rng      *rand.Rand
	temp     float64
	pressure float64
	humidity float64
	lux      float64
	cpu      float64
}

// NewSimulated seeds a simulated probe set. A fixed seed gives a
// repeatable walk, which the tests rely on.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{
		rng:      rand.New(rand.NewSource(seed)),
		temp:     21.0,
		pressure: 1013.0,
		humidity: 45.0,
		lux:      120.0,
		cpu:      48.0,
	}
}

func (s *Simulated) walk(v *float64, step, min, max float64) float64 {
	*v += (s.rng.Float64() - 0.5) * step
	if *v < min {
		*v = min
	}
	if *v > max {
		*v = max
	}
	return *v
}

func (s *Simulated) Environment() (Environment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Environment{
		// Raw BME280 temperature runs hot from CPU heat soak; the
		// compensator is expected to pull it back down.
		Temperature: s.walk(&s.temp, 0.4, 15, 40) + 8,
		Pressure:    s.walk(&s.pressure, 0.6, 980, 1040),
		Humidity:    s.walk(&s.humidity, 1.0, 20, 80),
	}, nil
}

func (s *Simulated) Light() (Light, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Light{
		Lux:       s.walk(&s.lux, 20, 0, 2000),
		Proximity: 0,
	}, nil
}

func (s *Simulated) Gas() (Gas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Gas{
		Oxidising: 18000 + s.rng.Float64()*4000,
		Reducing:  240000 + s.rng.Float64()*30000,
		NH3:       160000 + s.rng.Float64()*20000,
	}, nil
}

func (s *Simulated) CPUTemperature() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walk(&s.cpu, 0.8, 40, 70), nil
}
