package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged at warn level.
const DefaultSlowQueryThreshold = 1 * time.Second

// createGormLogger configures the GORM logger used by both backends.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// performAutoMigration migrates all model tables and creates the dashboard
// views. Called by both backends after the connection is established.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&SensorReading{},
		&Log{},
		&Alert{},
		&PlantImage{},
		&MLPrediction{},
		&MLRecommendation{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if err := createViews(db); err != nil {
		return fmt.Errorf("failed to create views on %s database: %w", dbType, err)
	}

	if debug {
		fmt.Printf("%s database connection initialized: %s\n", dbType, connectionInfo)
	}
	return nil
}

// createViews creates the read-only views the external dashboard observes.
// CREATE OR REPLACE is not portable to SQLite, so views are dropped first.
func createViews(db *gorm.DB) error {
	views := []struct {
		name string
		stmt string
	}{
		{
			name: "vw_latest_sensor_reading",
			stmt: `CREATE VIEW vw_latest_sensor_reading AS
				SELECT temperature, ph, ec, timestamp
				FROM sensor_readings
				ORDER BY id DESC LIMIT 1`,
		},
		{
			name: "vw_unread_alerts",
			stmt: `CREATE VIEW vw_unread_alerts AS
				SELECT id, type, message, details, timestamp
				FROM alerts
				WHERE is_read = 0
				ORDER BY timestamp DESC`,
		},
		{
			name: "vw_daily_sensor_summary",
			stmt: `CREATE VIEW vw_daily_sensor_summary AS
				SELECT DATE(timestamp) AS day,
					AVG(temperature) AS avg_temp,
					AVG(ph) AS avg_ph,
					AVG(ec) AS avg_ec
				FROM sensor_readings
				GROUP BY DATE(timestamp)`,
		},
	}

	for _, view := range views {
		if err := db.Exec("DROP VIEW IF EXISTS " + view.name).Error; err != nil {
			return fmt.Errorf("dropping view %s: %w", view.name, err)
		}
		if err := db.Exec(view.stmt).Error; err != nil {
			return fmt.Errorf("creating view %s: %w", view.name, err)
		}
	}
	return nil
}
