// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "LeafSense-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "leafsense.log")

	viper.SetDefault("control.tickperiod", 5)
	viper.SetDefault("control.sensorperiod", 10)
	viper.SetDefault("control.cameraperiod", 900)
	viper.SetDefault("control.heaterautooff", false)

	viper.SetDefault("leafnet.modelpath", "/opt/leafsense/model")
	viper.SetDefault("leafnet.modelname", "leafsense_mobilenetv3.tflite")
	viper.SetDefault("leafnet.imagesize", 224)
	viper.SetDefault("leafnet.entropythreshold", 1.8)
	viper.SetDefault("leafnet.minconfidence", 0.30)
	viper.SetDefault("leafnet.mingreenratio", 0.10)

	viper.SetDefault("camera.device", 0)
	viper.SetDefault("camera.gallerydir", "/opt/leafsense/gallery")
	viper.SetDefault("camera.jpegquality", 85)
	viper.SetDefault("camera.enhance", true)

	viper.SetDefault("hardware.mock", false)
	viper.SetDefault("hardware.heaterpin", "GPIO26")
	viper.SetDefault("hardware.phuppin", "GPIO6")
	viper.SetDefault("hardware.phdownpin", "GPIO13")
	viper.SetDefault("hardware.nutrientpin", "GPIO5")
	viper.SetDefault("hardware.alertledpin", "GPIO21")
	viper.SetDefault("hardware.adcaddress", 0x48)
	viper.SetDefault("hardware.onewiredir", "/sys/bus/w1/devices")

	viper.SetDefault("realtime.mqtt.enabled", false)
	viper.SetDefault("realtime.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("realtime.mqtt.topic", "leafsense")
	viper.SetDefault("realtime.mqtt.username", "leafsense")
	viper.SetDefault("realtime.mqtt.password", "secret")
	viper.SetDefault("realtime.mqtt.retain", false)

	viper.SetDefault("realtime.telemetry.enabled", false)
	viper.SetDefault("realtime.telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("realtime.notification.enabled", false)
	viper.SetDefault("realtime.notification.urls", []string{})

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "/opt/leafsense/leafsense.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "leafsense")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "leafsense")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
