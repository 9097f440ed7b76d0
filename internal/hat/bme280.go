package hat

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

const bme280Addr = 0x76

// BME280 wraps the periph bmxx80 driver and converts its fixed-point
// physic units into the float values the rest of the logger uses.
type BME280 struct {
	dev *bmxx80.Dev
}

func newBME280(bus i2c.Bus) (*BME280, error) {
	dev, err := bmxx80.NewI2C(bus, bme280Addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, err
	}
	return &BME280{dev: dev}, nil
}

// Environment performs one measurement. The temperature is raw: CPU-heat
// compensation happens downstream in the sampler.
func (b *BME280) Environment() (sensor.Environment, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return sensor.Environment{}, err
	}
	return sensor.Environment{
		Temperature: e.Temperature.Celsius(),
		Pressure:    float64(e.Pressure) / float64(physic.Pascal) / 100, // hPa
		Humidity:    float64(e.Humidity) / float64(physic.PercentRH),
	}, nil
}
