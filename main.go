// enviroplus is a home environmental data logger for a Raspberry Pi with
// a Pimoroni Enviro+ HAT. It samples the sensors once per interval,
// applies CPU-heat temperature compensation, and persists each reading to
// SQLite, daily CSV files and (optionally) an MQTT topic.
//
// Usage:
//
//	enviroplus            headless logger daemon
//	enviroplus monitor    logger with the live terminal display
//	enviroplus api        HTTP API over the readings database
//	enviroplus version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexb2611/enviroplus/internal/api"
	"github.com/alexb2611/enviroplus/internal/config"
	"github.com/alexb2611/enviroplus/internal/hat"
	"github.com/alexb2611/enviroplus/internal/logging"
	"github.com/alexb2611/enviroplus/internal/monitor"
	"github.com/alexb2611/enviroplus/internal/mqtt"
	"github.com/alexb2611/enviroplus/internal/observability"
	"github.com/alexb2611/enviroplus/internal/sampler"
	"github.com/alexb2611/enviroplus/internal/sensor"
	"github.com/alexb2611/enviroplus/internal/store"
)

const version = "2.1.0"

func main() {
	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if cmd == "version" {
		fmt.Println("enviroplus", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	lg, logFile := logging.Init(cfg.LogDir)
	if logFile != nil {
		defer logFile.Close()
	}

	switch cmd {
	case "run":
		err = runLogger(cfg, lg)
	case "monitor":
		err = runMonitor(cfg, lg)
	case "api":
		err = runAPI(cfg, lg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want run, monitor, api or version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		lg.Error("fatal", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// buildProbes opens the HAT, or the simulator when configured, and
// returns the probe set plus a close func.
func buildProbes(cfg config.Config, lg *slog.Logger) (sampler.Probes, func(), error) {
	if cfg.Simulate {
		lg.Info("using simulated probes")
		sim := sensor.NewSimulated(time.Now().UnixNano())
		return sampler.Probes{
			Environment: sim,
			Light:       sim,
			Gas:         sim,
			CPU:         sim,
		}, func() {}, nil
	}

	h, err := hat.Open(cfg.I2CBus)
	if err != nil {
		return sampler.Probes{}, nil, err
	}
	return sampler.Probes{
		Environment: h.BME280,
		Light:       h.LTR559,
		Gas:         h.Gas,
		CPU:         hat.CPU{},
	}, func() { h.Close() }, nil
}

// openSinks opens the database, the CSV store and, when a broker is
// configured, the MQTT feed.
func openSinks(cfg config.Config, lg *slog.Logger) ([]sampler.Sink, func(), error) {
	db, err := store.OpenDB(filepath.Join(cfg.DataDir, "enviro_data.db"))
	if err != nil {
		return nil, nil, err
	}
	csv, err := store.NewCSV(cfg.DataDir)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	sinks := []sampler.Sink{db, csv}
	closers := []func(){func() { csv.Close() }, func() { db.Close() }}

	if cfg.MQTTBroker != "" {
		pub, err := mqtt.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, lg)
		if err != nil {
			// The feed is best-effort; a dead broker must not stop logging.
			lg.Error("mqtt disabled", "broker", cfg.MQTTBroker, "error", err)
		} else {
			lg.Info("mqtt feed enabled", "broker", cfg.MQTTBroker, "topic", cfg.MQTTTopic)
			sinks = append(sinks, pub)
			closers = append(closers, pub.Close)
		}
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func newSampler(cfg config.Config, probes sampler.Probes, lg *slog.Logger) (*sampler.Sampler, error) {
	comp, err := sensor.NewCompensator(cfg.CompFactor, cfg.CompWindow)
	if err != nil {
		return nil, err
	}
	return sampler.New(probes, comp, lg), nil
}

// runLogger is the headless daemon: one reading per interval into the
// sinks until interrupted. An in-flight cycle finishes before exit.
func runLogger(cfg config.Config, lg *slog.Logger) error {
	probes, closeProbes, err := buildProbes(cfg, lg)
	if err != nil {
		return err
	}
	defer closeProbes()

	sinks, closeSinks, err := openSinks(cfg, lg)
	if err != nil {
		return err
	}
	defer closeSinks()

	smp, err := newSampler(cfg, probes, lg)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	if cfg.MetricsBind != "" {
		go serveMetrics(cfg.MetricsBind, metrics, lg)
	}

	lg.Info("logger starting",
		"interval", cfg.LogInterval,
		"factor", cfg.CompFactor,
		"window", cfg.CompWindow,
		"data_dir", cfg.DataDir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.LogInterval)
	defer ticker.Stop()

	cycle := func(now time.Time) {
		r := smp.Sample(now)
		metrics.ObserveReading(r)
		if len(r.Errors) > 0 {
			lg.Warn("degraded reading", "errors", r.Errors.Join())
		}
		for _, sink := range sinks {
			if err := sink.Write(context.Background(), r); err != nil {
				lg.Error("sink write failed", "error", err)
			}
		}
	}

	cycle(time.Now())
	for {
		select {
		case now := <-ticker.C:
			cycle(now)
		case sig := <-sigs:
			lg.Info("shutting down", "signal", sig.String())
			return nil
		}
	}
}

func serveMetrics(bind string, m *observability.Metrics, lg *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	lg.Info("metrics endpoint", "bind", bind)
	if err := http.ListenAndServe(bind, mux); err != nil {
		lg.Error("metrics endpoint failed", "error", err)
	}
}

// runMonitor runs the live TUI; persistence still happens at the logging
// interval while the screen refreshes faster.
func runMonitor(cfg config.Config, lg *slog.Logger) error {
	probes, closeProbes, err := buildProbes(cfg, lg)
	if err != nil {
		return err
	}
	defer closeProbes()

	sinks, closeSinks, err := openSinks(cfg, lg)
	if err != nil {
		return err
	}
	defer closeSinks()

	smp, err := newSampler(cfg, probes, lg)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	if cfg.MetricsBind != "" {
		go serveMetrics(cfg.MetricsBind, metrics, lg)
	}

	m := monitor.New(monitor.Options{
		Sampler:        smp,
		Sinks:          sinks,
		Observe:        metrics.ObserveReading,
		Refresh:        cfg.DisplayRefresh,
		LogInterval:    cfg.LogInterval,
		ProximityWake:  cfg.ProximityWake,
		WakeDebounce:   cfg.WakeDebounce,
		DisplayTimeout: cfg.DisplayTimeout,
		DataDir:        cfg.DataDir,
	})

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// runAPI serves the dashboard endpoints over the readings database.
func runAPI(cfg config.Config, lg *slog.Logger) error {
	db, err := store.OpenDB(filepath.Join(cfg.DataDir, "enviro_data.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := observability.NewMetrics()
	srv := api.New(cfg.HTTPBind, db, metrics.Handler(), lg)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case sig := <-sigs:
		lg.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}
}
