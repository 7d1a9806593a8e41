// config.go: settings struct and loading for LeafSense-Go. Defines the
// Settings hierarchy, binds it to viper and reads the optional YAML config.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// MainSettings contains application-wide settings.
type MainSettings struct {
	Name string // instance name, shown in the realtime startup banner
	Log  struct {
		Enabled bool   // file logging switch; no component reads it, logs go to stdout/stderr only
		Path    string // path to log file; no component reads it
	}
}

// ControlSettings contains the control-loop timing and policy settings.
type ControlSettings struct {
	TickPeriod    int  // heartbeat interval in seconds
	SensorPeriod  int  // ticks between sensor reads
	CameraPeriod  int  // ticks between camera captures
	HeaterAutoOff bool // true to include the heater in the dispatcher's per-tick auto-off pass
}

// LeafNetSettings contains the plant classifier settings.
type LeafNetSettings struct {
	ModelPath        string  // directory containing the model file
	ModelName        string  // model file name
	ImageSize        int     // square input side in pixels
	EntropyThreshold float64 // upper entropy bound for a valid plant
	MinConfidence    float64 // lower confidence bound for a valid plant
	MinGreenRatio    float64 // lower green-pixel ratio bound for a valid plant
}

// CameraSettings contains image capture settings.
type CameraSettings struct {
	Device      int    // V4L2 device index
	GalleryDir  string // directory for captured JPEGs
	JPEGQuality int    // JPEG encode quality
	Enhance     bool   // true to white-balance and sharpen captures
}

// HardwareSettings contains sensor and actuator bus settings.
type HardwareSettings struct {
	Mock         bool   // true to force mock sensors and actuators
	HeaterPin    string // GPIO line for the water heater relay
	PhUpPin      string // GPIO line for the pH up dosing pump
	PhDownPin    string // GPIO line for the pH down dosing pump
	NutrientPin  string // GPIO line for the nutrient dosing pump
	AlertLedPin  string // GPIO line for the alert LED
	ADCAddress   uint16 // I2C address of the ADS1115 ADC
	OneWireDir   string // sysfs directory of the DS18B20 1-Wire device
}

// MQTTSettings contains settings for MQTT publishing.
type MQTTSettings struct {
	Enabled  bool   // true to publish sensor samples and predictions
	Broker   string // MQTT broker URL
	Topic    string // base topic
	Username string
	Password string
	Retain   bool // true to retain messages at the broker
}

// TelemetrySettings contains settings for the Prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to expose metrics
	Listen  string // listen address and port
}

// NotificationSettings contains settings for alert push notifications.
type NotificationSettings struct {
	Enabled bool     // true to push critical alerts
	URLs    []string // shoutrrr service URLs
}

// RealtimeSettings contains settings for realtime mode integrations.
type RealtimeSettings struct {
	MQTT         MQTTSettings
	Telemetry    TelemetrySettings
	Notification NotificationSettings
}

// SQLiteSettings contains SQLite output settings.
type SQLiteSettings struct {
	Enabled bool
	Path    string
}

// MySQLSettings contains MySQL output settings.
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// OutputSettings contains the persistence backend selection.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// Settings is the root of the LeafSense-Go configuration.
type Settings struct {
	Debug bool

	Main     MainSettings
	Control  ControlSettings
	LeafNet  LeafNetSettings
	Camera   CameraSettings
	Hardware HardwareSettings
	Realtime RealtimeSettings
	Output   OutputSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration from disk (if present), applies defaults and
// returns the populated Settings. Each successful Load replaces the
// package-wide instance returned by Setting().
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	setDefaultConfig()

	if err := readConfigFile(); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settings, nil
}

// readConfigFile locates and reads the YAML config file. A missing file is
// not an error; defaults apply.
func readConfigFile() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		log.Println("Config file not found, using defaults")
	}
	return nil
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("error loading settings: %v", err)
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the list of directories searched for the
// config file, in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	configPaths := []string{}

	if xdgDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		configPaths = append(configPaths, filepath.Join(xdgDir, "leafsense"))
	}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPaths = append(configPaths, filepath.Join(homeDir, ".config", "leafsense"))
	}
	configPaths = append(configPaths, "/etc/leafsense", ".")

	return configPaths, nil
}

// SaveSettings writes the given settings to the given path as YAML, creating
// parent directories as needed.
func SaveSettings(settings *Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", path, err)
	}
	return nil
}
