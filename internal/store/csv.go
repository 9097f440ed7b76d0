// Package store provides the persistence sinks for assembled readings: a
// SQLite database and Excel-compatible daily CSV files with date-based
// rotation, plus the query operations backing the HTTP API.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

const (
	csvPrefix  = "enviro_data_"
	timeLayout = time.RFC3339
	fileLayout = "2006-01-02"
)

var csvHeader = []string{
	"timestamp", "temperature", "pressure", "humidity", "light",
	"oxidised", "reduced", "nh3", "cpu_temp", "errors",
}

// CSVStore appends readings to daily CSV files named
// enviro_data_YYYY-MM-DD.csv in the data directory. The header is written
// when a file is created; rotation happens on the first write of a new day.
type CSVStore struct {
	dir     string
	current *os.File
	writer  *csv.Writer
	curDate string
}

// NewCSV creates a CSV store, creating the data directory if needed.
func NewCSV(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data dir: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

// Write appends one reading to the day's CSV file.
func (s *CSVStore) Write(_ context.Context, r sensor.Reading) error {
	dateStr := r.Timestamp.Format(fileLayout)

	if s.curDate != dateStr || s.current == nil {
		s.Close()
		path := filepath.Join(s.dir, csvPrefix+dateStr+".csv")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		s.current = f
		s.writer = csv.NewWriter(f)
		s.curDate = dateStr

		info, err := f.Stat()
		if err != nil {
			f.Close()
			s.current = nil
			return err
		}
		if info.Size() == 0 {
			s.writer.Write(csvHeader)
		}
	}

	s.writer.Write([]string{
		r.Timestamp.Format(timeLayout),
		cell(r.Temperature),
		cell(r.Pressure),
		cell(r.Humidity),
		cell(r.Light),
		cell(r.Oxidised),
		cell(r.Reduced),
		cell(r.NH3),
		cell(r.CPUTemp),
		r.Errors.Join(),
	})
	s.writer.Flush()
	return s.writer.Error()
}

// cell formats an optional measurement; a failed sensor leaves the column blank.
func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// Close flushes and closes the current file.
func (s *CSVStore) Close() {
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}
}

// ListDays returns available log dates in a data directory (newest first).
func ListDays(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var days []string
	for i := len(entries) - 1; i >= 0; i-- {
		name := entries[i].Name()
		if strings.HasPrefix(name, csvPrefix) && strings.HasSuffix(name, ".csv") {
			days = append(days, strings.TrimSuffix(strings.TrimPrefix(name, csvPrefix), ".csv"))
		}
	}
	return days, nil
}

// LoadFile reads all readings back from a daily CSV file.
func LoadFile(path string) ([]sensor.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var readings []sensor.Reading
	for i, row := range records {
		if i == 0 && len(row) > 0 && row[0] == "timestamp" {
			continue
		}
		if len(row) < len(csvHeader) {
			continue
		}

		ts, err := time.Parse(timeLayout, row[0])
		if err != nil {
			continue
		}

		r := sensor.Reading{
			Timestamp:   ts,
			Temperature: parseCell(row[1]),
			Pressure:    parseCell(row[2]),
			Humidity:    parseCell(row[3]),
			Light:       parseCell(row[4]),
			Oxidised:    parseCell(row[5]),
			Reduced:     parseCell(row[6]),
			NH3:         parseCell(row[7]),
			CPUTemp:     parseCell(row[8]),
		}
		for _, part := range strings.Split(row[9], "; ") {
			name, reason, ok := strings.Cut(part, ": ")
			if !ok {
				continue
			}
			r.Errors = append(r.Errors, sensor.Error{Sensor: name, Reason: reason})
		}
		readings = append(readings, r)
	}

	return readings, nil
}

func parseCell(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
