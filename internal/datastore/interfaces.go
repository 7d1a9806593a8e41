// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/leafsense/leafsense-go/internal/conf"
)

// ErrImageNotFound is returned when a prediction arrives for a filename with
// no image row. Such predictions are dropped silently by the daemon.
var ErrImageNotFound = errors.New("no image row for filename")

// ErrPredictionNotFound is returned when a recommendation arrives for a
// filename with no prediction row.
var ErrPredictionNotFound = errors.New("no prediction row for filename")

// Interface abstracts the underlying database implementation and defines the
// operations the persistence daemon and analytics readers need.
type Interface interface {
	Open() error
	Close() error

	SaveSensorReading(reading *SensorReading) error
	SaveLog(entry *Log) error
	SaveAlert(alert *Alert) error
	SavePlantImage(image *PlantImage) error
	SavePredictionForImage(filename string, prediction *MLPrediction) error
	SaveRecommendationForImage(filename string, recommendation *MLRecommendation) error

	GetLatestSensorReading() (*SensorReading, error)
	GetUnreadAlerts() ([]Alert, error)
	GetDailySensorSummary(days int) ([]DailySensorSummary, error)
	GetLastPredictions(limit int) ([]MLPrediction, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a datastore instance based on the enabled output backend.
// SQLite wins if both are enabled.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// SaveSensorReading appends one sensor sample.
func (ds *DataStore) SaveSensorReading(reading *SensorReading) error {
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}
	if err := ds.DB.Create(reading).Error; err != nil {
		return fmt.Errorf("saving sensor reading: %w", err)
	}
	return nil
}

// SaveLog appends one log entry.
func (ds *DataStore) SaveLog(entry *Log) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := ds.DB.Create(entry).Error; err != nil {
		return fmt.Errorf("saving log entry: %w", err)
	}
	return nil
}

// SaveAlert appends one alert with is_read=false unless already set.
func (ds *DataStore) SaveAlert(alert *Alert) error {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	if err := ds.DB.Create(alert).Error; err != nil {
		return fmt.Errorf("saving alert: %w", err)
	}
	return nil
}

// SavePlantImage appends one image row.
func (ds *DataStore) SavePlantImage(image *PlantImage) error {
	if image.Timestamp.IsZero() {
		image.Timestamp = time.Now()
	}
	if err := ds.DB.Create(image).Error; err != nil {
		return fmt.Errorf("saving plant image: %w", err)
	}
	return nil
}

// SavePredictionForImage stores a prediction joined to the most recent image
// row with the given filename. Returns ErrImageNotFound when no such row
// exists; the caller decides whether that is fatal.
func (ds *DataStore) SavePredictionForImage(filename string, prediction *MLPrediction) error {
	var image PlantImage
	err := ds.DB.Where("filename = ?", filename).Order("id DESC").First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("prediction for %q: %w", filename, ErrImageNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up image %q: %w", filename, err)
	}

	prediction.ImageID = image.ID
	if prediction.Timestamp.IsZero() {
		prediction.Timestamp = time.Now()
	}
	if err := ds.DB.Create(prediction).Error; err != nil {
		return fmt.Errorf("saving prediction: %w", err)
	}
	return nil
}

// SaveRecommendationForImage stores a recommendation joined to the most
// recent prediction for the given image filename.
func (ds *DataStore) SaveRecommendationForImage(filename string, recommendation *MLRecommendation) error {
	var prediction MLPrediction
	err := ds.DB.
		Joins("JOIN plant_images ON plant_images.id = ml_predictions.image_id").
		Where("plant_images.filename = ?", filename).
		Order("ml_predictions.id DESC").
		First(&prediction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("recommendation for %q: %w", filename, ErrPredictionNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up prediction for %q: %w", filename, err)
	}

	recommendation.PredictionID = prediction.ID
	if recommendation.Timestamp.IsZero() {
		recommendation.Timestamp = time.Now()
	}
	if err := ds.DB.Create(recommendation).Error; err != nil {
		return fmt.Errorf("saving recommendation: %w", err)
	}
	return nil
}

// GetLatestSensorReading returns the most recent sensor sample.
func (ds *DataStore) GetLatestSensorReading() (*SensorReading, error) {
	var reading SensorReading
	if err := ds.DB.Order("id DESC").First(&reading).Error; err != nil {
		return nil, fmt.Errorf("getting latest sensor reading: %w", err)
	}
	return &reading, nil
}

// GetUnreadAlerts returns all alerts not yet acknowledged by the dashboard,
// newest first.
func (ds *DataStore) GetUnreadAlerts() ([]Alert, error) {
	var alerts []Alert
	if err := ds.DB.Where("is_read = ?", false).Order("timestamp DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("getting unread alerts: %w", err)
	}
	return alerts, nil
}

// GetDailySensorSummary returns per-day averages for the last N days.
func (ds *DataStore) GetDailySensorSummary(days int) ([]DailySensorSummary, error) {
	var summary []DailySensorSummary
	err := ds.DB.Raw(
		"SELECT day, avg_temp, avg_ph, avg_ec FROM vw_daily_sensor_summary ORDER BY day DESC LIMIT ?",
		days,
	).Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("getting daily sensor summary: %w", err)
	}
	return summary, nil
}

// GetLastPredictions returns the most recent predictions, newest first.
func (ds *DataStore) GetLastPredictions(limit int) ([]MLPrediction, error) {
	var predictions []MLPrediction
	if err := ds.DB.Order("id DESC").Limit(limit).Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("getting last predictions: %w", err)
	}
	return predictions, nil
}
