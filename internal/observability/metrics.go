// Package observability exposes the logger's Prometheus metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

// Metrics holds the instrument set for one logger process.
type Metrics struct {
	samplesTotal      prometheus.Counter
	sensorErrorsTotal *prometheus.CounterVec
	temperature       prometheus.Gauge
	humidity          prometheus.Gauge
	pressure          prometheus.Gauge
	light             prometheus.Gauge
	cpuTemp           prometheus.Gauge
	registry          *prometheus.Registry
}

// NewMetrics registers the instrument set on its own registry so tests can
// create as many as they like.
func NewMetrics() *Metrics {
	m := &Metrics{
		samplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enviro_samples_total",
			Help: "Total count of sampling cycles completed.",
		}),
		sensorErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enviro_sensor_errors_total",
			Help: "Total count of failed sensor queries by sensor.",
		}, []string{"sensor"}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enviro_temperature_celsius",
			Help: "Last compensated ambient temperature.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enviro_humidity_percent",
			Help: "Last relative humidity.",
		}),
		pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enviro_pressure_hpa",
			Help: "Last barometric pressure.",
		}),
		light: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enviro_light_lux",
			Help: "Last light level (1 when the sensor is covered).",
		}),
		cpuTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enviro_cpu_temperature_celsius",
			Help: "Last raw CPU temperature used for compensation.",
		}),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.samplesTotal,
		m.sensorErrorsTotal,
		m.temperature,
		m.humidity,
		m.pressure,
		m.light,
		m.cpuTemp,
	)

	return m
}

// ObserveReading updates the instruments from one completed cycle.
func (m *Metrics) ObserveReading(r sensor.Reading) {
	m.samplesTotal.Inc()
	for _, e := range r.Errors {
		m.sensorErrorsTotal.WithLabelValues(e.Sensor).Inc()
	}
	if r.Temperature != nil {
		m.temperature.Set(*r.Temperature)
	}
	if r.Humidity != nil {
		m.humidity.Set(*r.Humidity)
	}
	if r.Pressure != nil {
		m.pressure.Set(*r.Pressure)
	}
	if r.Light != nil {
		m.light.Set(*r.Light)
	}
	if r.CPUTemp != nil {
		m.cpuTemp.Set(*r.CPUTemp)
	}
}

// Handler returns the /metrics HTTP handler for this instrument set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
