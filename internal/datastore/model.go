// model.go this code defines the data model for the application
package datastore

import "time"

// SensorReading is a single environmental sample from the sensor-read task.
// Append-only; the analytics layer expects full history.
type SensorReading struct {
	ID          uint      `gorm:"primaryKey"`
	Temperature float64   `gorm:"column:temperature"`
	PH          float64   `gorm:"column:ph"`
	EC          float64   `gorm:"column:ec"`
	Timestamp   time.Time `gorm:"index:idx_sensor_readings_timestamp"`
}

func (SensorReading) TableName() string { return "sensor_readings" }

// Log is one entry in the maintenance/analysis log stream.
type Log struct {
	ID        uint      `gorm:"primaryKey"`
	LogType   string    `gorm:"column:log_type;index:idx_logs_type"`
	Message   string    `gorm:"column:message"`
	Details   string    `gorm:"column:details"`
	Timestamp time.Time `gorm:"index:idx_logs_timestamp"`
}

func (Log) TableName() string { return "logs" }

// Alert is a user-facing alert. IsRead is flipped by the external dashboard.
type Alert struct {
	ID        uint      `gorm:"primaryKey"`
	Type      string    `gorm:"column:type;index:idx_alerts_type"`
	Message   string    `gorm:"column:message"`
	Details   string    `gorm:"column:details"`
	IsRead    bool      `gorm:"column:is_read;index:idx_alerts_is_read"`
	Timestamp time.Time `gorm:"index:idx_alerts_timestamp"`
}

func (Alert) TableName() string { return "alerts" }

// PlantImage records a captured gallery image. The row does not own the file
// on disk; the gallery browser reads files directly.
type PlantImage struct {
	ID        uint      `gorm:"primaryKey"`
	Filename  string    `gorm:"column:filename;index:idx_plant_images_filename"`
	Filepath  string    `gorm:"column:filepath"`
	Timestamp time.Time `gorm:"index:idx_plant_images_timestamp"`

	Predictions []MLPrediction `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
}

func (PlantImage) TableName() string { return "plant_images" }

// MLPrediction is a classifier result tied to exactly one plant image.
type MLPrediction struct {
	ID              uint      `gorm:"primaryKey"`
	ImageID         uint      `gorm:"column:image_id;index;not null"`
	PredictionLabel string    `gorm:"column:prediction_label"`
	Confidence      float64   `gorm:"column:confidence"`
	Timestamp       time.Time `gorm:"index:idx_ml_predictions_timestamp"`

	Recommendations []MLRecommendation `gorm:"foreignKey:PredictionID;constraint:OnDelete:CASCADE"`
}

func (MLPrediction) TableName() string { return "ml_predictions" }

// MLRecommendation is a synthesized care recommendation tied to exactly one
// prediction.
type MLRecommendation struct {
	ID                 uint      `gorm:"primaryKey"`
	PredictionID       uint      `gorm:"column:prediction_id;index;not null"`
	RecommendationType string    `gorm:"column:recommendation_type"`
	RecommendationText string    `gorm:"column:recommendation_text"`
	Confidence         float64   `gorm:"column:confidence"`
	UserAcknowledged   bool      `gorm:"column:user_acknowledged"`
	Timestamp          time.Time `gorm:"index:idx_ml_recommendations_timestamp"`
}

func (MLRecommendation) TableName() string { return "ml_recommendations" }

// DailySensorSummary is one row of the vw_daily_sensor_summary view.
type DailySensorSummary struct {
	Day     string  `gorm:"column:day"`
	AvgTemp float64 `gorm:"column:avg_temp"`
	AvgPH   float64 `gorm:"column:avg_ph"`
	AvgEC   float64 `gorm:"column:avg_ec"`
}
