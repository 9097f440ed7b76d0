package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

// Row is one persisted reading. Measurement columns are nullable: a failed
// sensor stores NULL and is named in the errors column (a JSON list).
type Row struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	Temperature *float64  `json:"temperature"`
	Pressure    *float64  `json:"pressure"`
	Humidity    *float64  `json:"humidity"`
	Light       *float64  `json:"light"`
	Oxidised    *float64  `json:"oxidised"`
	Reduced     *float64  `json:"reduced"`
	NH3         *float64  `gorm:"column:nh3" json:"nh3"`
	CPUTemp     *float64  `gorm:"column:cpu_temp" json:"cpu_temp"`
	Errors      string    `json:"errors"`
}

// TableName keeps the table compatible with the original logger database.
func (Row) TableName() string { return "sensor_readings" }

// DayStats is one day's aggregate for the stats endpoint.
type DayStats struct {
	Date        string   `json:"date"`
	Samples     int      `json:"samples"`
	TempMin     *float64 `json:"temp_min"`
	TempMax     *float64 `json:"temp_max"`
	TempAvg     *float64 `json:"temp_avg"`
	HumidityAvg *float64 `json:"humidity_avg"`
	PressureAvg *float64 `json:"pressure_avg"`
}

// CompensationPoint pairs CPU and compensated ambient temperature for one
// sample, for eyeballing how hard the correction is working.
type CompensationPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	CPUTemp     *float64  `gorm:"column:cpu_temp" json:"cpu_temp"`
	Temperature *float64  `json:"temperature"`
}

// DB is the SQLite sink and the query surface for the API.
type DB struct {
	orm *gorm.DB
}

// OpenDB opens (creating if needed) the readings database and migrates the
// schema.
func OpenDB(path string) (*DB, error) {
	orm, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := orm.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("migrate sensor_readings: %w", err)
	}
	return &DB{orm: orm}, nil
}

// Write inserts one reading.
func (d *DB) Write(ctx context.Context, r sensor.Reading) error {
	row := Row{
		Timestamp:   r.Timestamp,
		Temperature: r.Temperature,
		Pressure:    r.Pressure,
		Humidity:    r.Humidity,
		Light:       r.Light,
		Oxidised:    r.Oxidised,
		Reduced:     r.Reduced,
		NH3:         r.NH3,
		CPUTemp:     r.CPUTemp,
		Errors:      r.Errors.JSON(),
	}
	return d.orm.WithContext(ctx).Create(&row).Error
}

// Latest returns the most recent reading, or nil if the table is empty.
func (d *DB) Latest(ctx context.Context) (*Row, error) {
	var row Row
	err := d.orm.WithContext(ctx).Order("timestamp DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Recent returns readings from the last N hours, oldest first.
func (d *DB) Recent(ctx context.Context, hours int) ([]Row, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var rows []Row
	err := d.orm.WithContext(ctx).
		Where("timestamp >= ?", since).
		Order("timestamp ASC").
		Find(&rows).Error
	return rows, err
}

// DailyStats aggregates min/max/avg per calendar day over the last N days.
func (d *DB) DailyStats(ctx context.Context, days int) ([]DayStats, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	var stats []DayStats
	err := d.orm.WithContext(ctx).Raw(`
		SELECT DATE(timestamp) AS date,
		       COUNT(*) AS samples,
		       MIN(temperature) AS temp_min,
		       MAX(temperature) AS temp_max,
		       AVG(temperature) AS temp_avg,
		       AVG(humidity) AS humidity_avg,
		       AVG(pressure) AS pressure_avg
		FROM sensor_readings
		WHERE timestamp >= ?
		GROUP BY DATE(timestamp)
		ORDER BY date DESC`, since).Scan(&stats).Error
	return stats, err
}

// GasRecent returns the gas resistance columns from the last N hours.
func (d *DB) GasRecent(ctx context.Context, hours int) ([]Row, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var rows []Row
	err := d.orm.WithContext(ctx).
		Select("timestamp", "oxidised", "reduced", "nh3").
		Where("timestamp >= ?", since).
		Order("timestamp ASC").
		Find(&rows).Error
	return rows, err
}

// CompensationRecent returns (cpu_temp, temperature) pairs from the last N
// hours for the temperature-compensation endpoint.
func (d *DB) CompensationRecent(ctx context.Context, hours int) ([]CompensationPoint, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var pts []CompensationPoint
	err := d.orm.WithContext(ctx).
		Model(&Row{}).
		Select("timestamp", "cpu_temp", "temperature").
		Where("timestamp >= ?", since).
		Order("timestamp ASC").
		Scan(&pts).Error
	return pts, err
}

// Count returns the total number of stored readings.
func (d *DB) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.orm.WithContext(ctx).Model(&Row{}).Count(&n).Error
	return n, err
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.orm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
