package monitor

import "github.com/alexb2611/enviroplus/internal/sensor"

// displayMode describes one screen of the rotating display: which
// measurement it shows, its unit, the sparkline range and the warn/alert
// thresholds used for coloring.
type displayMode struct {
	key      string // history store key
	label    string
	unit     string
	rangeMin float64
	rangeMax float64
	warn     float64
	alert    float64
	hasWarn  bool
	hasAlert bool
	value    func(sensor.Reading) *float64
}

// The seven screens, cycled by keypress or by waving a hand over the
// proximity sensor, matching the original LCD rotation.
var modes = []displayMode{
	{
		key: "temperature", label: "Temperature", unit: "°C",
		rangeMin: 0, rangeMax: 40, warn: 28, alert: 35, hasWarn: true, hasAlert: true,
		value: func(r sensor.Reading) *float64 { return r.Temperature },
	},
	{
		key: "pressure", label: "Pressure", unit: "hPa",
		rangeMin: 960, rangeMax: 1050,
		value: func(r sensor.Reading) *float64 { return r.Pressure },
	},
	{
		key: "humidity", label: "Humidity", unit: "%",
		rangeMin: 0, rangeMax: 100, warn: 70, alert: 90, hasWarn: true, hasAlert: true,
		value: func(r sensor.Reading) *float64 { return r.Humidity },
	},
	{
		key: "light", label: "Light", unit: "lux",
		rangeMin: 0, rangeMax: 1200,
		value: func(r sensor.Reading) *float64 { return r.Light },
	},
	{
		key: "oxidised", label: "Oxidised", unit: "kΩ",
		rangeMin: 0, rangeMax: 100,
		value: func(r sensor.Reading) *float64 { return r.Oxidised },
	},
	{
		key: "reduced", label: "Reduced", unit: "kΩ",
		rangeMin: 0, rangeMax: 600,
		value: func(r sensor.Reading) *float64 { return r.Reduced },
	},
	{
		key: "nh3", label: "NH3", unit: "kΩ",
		rangeMin: 0, rangeMax: 600,
		value: func(r sensor.Reading) *float64 { return r.NH3 },
	},
}
