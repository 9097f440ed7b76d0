package hat

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

// LTR-559 register map (the subset this logger needs).
const (
	ltr559Addr = 0x23

	regAlsContr    = 0x80
	regPsContr     = 0x81
	regPsLED       = 0x82
	regPsNPulses   = 0x83
	regAlsMeasRate = 0x85
	regPartID      = 0x86
	regAlsData     = 0x88 // CH1 low, CH1 high, CH0 low, CH0 high
	regPsData      = 0x8d // 11-bit, low then high

	ltr559PartID = 0x92 // part 0x09, revision 0x2

	alsGain = 4 // ×4, matches ALS_CONTR gain bits below
	alsInt  = 50.0 / 100.0
)

// LTR559 is a minimal driver for the board's light/proximity sensor.
type LTR559 struct {
	dev i2c.Dev
}

func newLTR559(bus i2c.Bus) (*LTR559, error) {
	d := i2c.Dev{Bus: bus, Addr: ltr559Addr}

	var id [1]byte
	if err := d.Tx([]byte{regPartID}, id[:]); err != nil {
		return nil, err
	}
	if id[0] != ltr559PartID {
		return nil, fmt.Errorf("unexpected part id %#02x, want %#02x", id[0], ltr559PartID)
	}

	// ALS active, gain ×4; 50ms integration / 50ms rate; PS active with
	// 50mA LED at 1kHz, 1 pulse. Mirrors the vendor bring-up sequence.
	init := [][2]byte{
		{regAlsContr, 0x09},
		{regAlsMeasRate, 0x00},
		{regPsContr, 0x03},
		{regPsLED, 0x7f},
		{regPsNPulses, 0x01},
	}
	for _, w := range init {
		if err := d.Tx(w[:], nil); err != nil {
			return nil, err
		}
	}

	return &LTR559{dev: d}, nil
}

// Light reads the ALS channels and the proximity counter in one cycle.
func (l *LTR559) Light() (sensor.Light, error) {
	var als [4]byte
	if err := l.dev.Tx([]byte{regAlsData}, als[:]); err != nil {
		return sensor.Light{}, err
	}
	ch1 := uint16(als[0]) | uint16(als[1])<<8
	ch0 := uint16(als[2]) | uint16(als[3])<<8

	var ps [2]byte
	if err := l.dev.Tx([]byte{regPsData}, ps[:]); err != nil {
		return sensor.Light{}, err
	}
	prox := (uint16(ps[0]) | uint16(ps[1])<<8) & 0x07ff

	return sensor.Light{
		Lux:       alsLux(ch0, ch1),
		Proximity: float64(prox),
	}, nil
}

// Channel coefficients from the LTR-559 appendix, scaled ×10000, indexed
// by the CH1/(CH0+CH1) ratio band.
var (
	luxCh0Coeff = [4]float64{17743, 42785, 5926, 0}
	luxCh1Coeff = [4]float64{-11059, 19548, -1185, 0}
)

// alsLux converts the two ALS channel counts to lux for the configured
// gain and integration time.
func alsLux(ch0, ch1 uint16) float64 {
	c0, c1 := float64(ch0), float64(ch1)
	if c0+c1 == 0 {
		return 0
	}

	ratio := c1 * 100 / (c0 + c1)
	var idx int
	switch {
	case ratio < 45:
		idx = 0
	case ratio < 64:
		idx = 1
	case ratio < 85:
		idx = 2
	default:
		idx = 3
	}

	lux := (c0*luxCh0Coeff[idx] - c1*luxCh1Coeff[idx]) / 10000
	if lux < 0 {
		return 0
	}
	return lux / (alsGain * alsInt)
}
