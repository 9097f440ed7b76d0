package hat

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

// The MICS6814 has no digital interface of its own; its three resistive
// elements sit behind an ADS1015 ADC with 56kΩ pull-downs on the Enviro+.
const (
	ads1015Addr = 0x49

	regConversion = 0x00
	regConfig     = 0x01

	// Config word pieces: single-shot start, FSR ±6.144V, 1600 samples/s,
	// comparator disabled. The MUX bits select the channel.
	cfgBase    = 0x8003 // OS=1 | MODE=single | COMP_QUE=disabled
	cfgFSR     = 0x0000 // PGA ±6.144V
	cfgRate    = 0x0080 // 1600 SPS
	cfgMuxAIN0 = 0x4000
	cfgMuxAIN1 = 0x5000
	cfgMuxAIN2 = 0x6000

	adcLSB = 0.003 // volts per count at ±6.144V, 12-bit

	supplyVolts  = 3.3
	loadResistor = 56000 // Ω

	conversionWait = 2 * time.Millisecond
)

// MICS6814 reads the three gas channels through the ADC. Resistances are
// returned in ohms.
type MICS6814 struct {
	dev i2c.Dev
}

func newMICS6814(bus i2c.Bus) *MICS6814 {
	return &MICS6814{dev: i2c.Dev{Bus: bus, Addr: ads1015Addr}}
}

// Gas samples all three channels sequentially.
func (m *MICS6814) Gas() (sensor.Gas, error) {
	ox, err := m.channelVolts(cfgMuxAIN0)
	if err != nil {
		return sensor.Gas{}, fmt.Errorf("oxidising channel: %w", err)
	}
	red, err := m.channelVolts(cfgMuxAIN1)
	if err != nil {
		return sensor.Gas{}, fmt.Errorf("reducing channel: %w", err)
	}
	nh3, err := m.channelVolts(cfgMuxAIN2)
	if err != nil {
		return sensor.Gas{}, fmt.Errorf("nh3 channel: %w", err)
	}

	return sensor.Gas{
		Oxidising: gasResistance(ox),
		Reducing:  gasResistance(red),
		NH3:       gasResistance(nh3),
	}, nil
}

// channelVolts triggers a single-shot conversion on one MUX setting and
// reads it back.
func (m *MICS6814) channelVolts(mux uint16) (float64, error) {
	cfg := uint16(cfgBase | cfgFSR | cfgRate | mux)
	if err := m.dev.Tx([]byte{regConfig, byte(cfg >> 8), byte(cfg)}, nil); err != nil {
		return 0, err
	}

	// 1600 SPS finishes well inside 2ms.
	time.Sleep(conversionWait)

	var buf [2]byte
	if err := m.dev.Tx([]byte{regConversion}, buf[:]); err != nil {
		return 0, err
	}
	raw := int16(uint16(buf[0])<<8|uint16(buf[1])) >> 4
	return float64(raw) * adcLSB, nil
}

// gasResistance converts the divider voltage to the element's resistance
// against the 56kΩ load. A rail-pinned voltage reports 0 rather than a
// division blow-up.
func gasResistance(v float64) float64 {
	if v <= 0 || v >= supplyVolts {
		return 0
	}
	return v * loadResistor / (supplyVolts - v)
}
