// Package api serves the stored readings over HTTP for the dashboard:
// latest value, recent history, daily aggregates, gas detail, compensation
// detail, plus health and Prometheus metrics endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexb2611/enviroplus/internal/store"
)

// A reading older than this means the logger is not keeping up (or not
// running) and the system reports itself offline.
const staleAfter = 5 * time.Minute

// Source is the query surface the server needs; *store.DB satisfies it.
type Source interface {
	Latest(ctx context.Context) (*store.Row, error)
	Recent(ctx context.Context, hours int) ([]store.Row, error)
	DailyStats(ctx context.Context, days int) ([]store.DayStats, error)
	GasRecent(ctx context.Context, hours int) ([]store.Row, error)
	CompensationRecent(ctx context.Context, hours int) ([]store.CompensationPoint, error)
	Count(ctx context.Context) (int64, error)
}

// Server hosts the REST API over a reading source.
type Server struct {
	src     Source
	log     *slog.Logger
	http    *http.Server
	started time.Time
}

// New builds the server. The metrics handler is optional; when non-nil it
// is mounted at /metrics.
func New(bind string, src Source, metrics http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{src: src, log: log, started: time.Now()}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.getHealth)
	r.GET("/api/latest", s.getLatest)
	r.GET("/api/recent", s.getRecent)
	r.GET("/api/stats", s.getStats)
	r.GET("/api/status", s.getStatus)
	r.GET("/api/enviro/gas", s.getGas)
	r.GET("/api/enviro/temperature-compensation", s.getCompensation)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	s.http = &http.Server{Addr: bind, Handler: r}
	return s
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.log.Info("api server starting", "bind", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("api server stopping")
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

func fail(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"status": "error", "message": err.Error()})
}

func hoursParam(c *gin.Context, def, max int) int {
	h, err := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(def)))
	if err != nil || h < 1 {
		return def
	}
	if h > max {
		return max
	}
	return h
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"service": "enviroplus-api",
	})
}

func (s *Server) getLatest(c *gin.Context) {
	row, err := s.src.Latest(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "no readings yet"})
		return
	}
	ok(c, row)
}

func (s *Server) getRecent(c *gin.Context) {
	hours := hoursParam(c, 24, 24*31)
	rows, err := s.src.Recent(c.Request.Context(), hours)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"hours":  hours,
		"count":  len(rows),
		"data":   rows,
	})
}

func (s *Server) getStats(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}
	stats, err := s.src.DailyStats(c.Request.Context(), days)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"days":   days,
		"data":   stats,
	})
}

func (s *Server) getStatus(c *gin.Context) {
	ctx := c.Request.Context()
	row, err := s.src.Latest(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	total, err := s.src.Count(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	system := "offline"
	var lastTS *time.Time
	var age *float64
	if row != nil {
		system = "online"
		secs := time.Since(row.Timestamp).Seconds()
		if secs > staleAfter.Seconds() {
			system = "stale"
		}
		lastTS = &row.Timestamp
		age = &secs
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"system":           system,
			"last_reading":     lastTS,
			"age_seconds":      age,
			"total_readings":   total,
			"stale_after_secs": staleAfter.Seconds(),
		},
	})
}

func (s *Server) getGas(c *gin.Context) {
	hours := hoursParam(c, 24, 24*31)
	rows, err := s.src.GasRecent(c.Request.Context(), hours)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	type gasPoint struct {
		Timestamp time.Time `json:"timestamp"`
		Oxidised  *float64  `json:"oxidised"`
		Reduced   *float64  `json:"reduced"`
		NH3       *float64  `json:"nh3"`
	}
	out := make([]gasPoint, len(rows))
	for i, r := range rows {
		out[i] = gasPoint{Timestamp: r.Timestamp, Oxidised: r.Oxidised, Reduced: r.Reduced, NH3: r.NH3}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"hours":  hours,
		"count":  len(out),
		"data":   out,
	})
}

func (s *Server) getCompensation(c *gin.Context) {
	hours := hoursParam(c, 24, 24*31)
	pts, err := s.src.CompensationRecent(c.Request.Context(), hours)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"hours":  hours,
		"count":  len(pts),
		"data":   pts,
	})
}
