// Package realtime implements the realtime control subcommand.
package realtime

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leafsense/leafsense-go/internal/analysis"
	"github.com/leafsense/leafsense-go/internal/conf"
)

// Command creates the realtime control command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Run the hydroponic control engine",
		Long:  "Start the control orchestrator: sensor polling, hysteretic actuation, periodic plant image classification and persistence.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.RealtimeAnalysis(settings)
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().IntVar(&settings.Control.TickPeriod, "tick", viper.GetInt("control.tickperiod"), "Heartbeat interval in seconds")
	cmd.Flags().IntVar(&settings.Control.SensorPeriod, "sensorperiod", viper.GetInt("control.sensorperiod"), "Ticks between sensor reads")
	cmd.Flags().IntVar(&settings.Control.CameraPeriod, "cameraperiod", viper.GetInt("control.cameraperiod"), "Ticks between camera captures")
	cmd.Flags().StringVar(&settings.Camera.GalleryDir, "gallery", viper.GetString("camera.gallerydir"), "Directory for captured JPEGs")
	cmd.Flags().StringVar(&settings.Output.SQLite.Path, "dbpath", viper.GetString("output.sqlite.path"), "SQLite database path")
	cmd.Flags().BoolVar(&settings.Hardware.Mock, "mock", viper.GetBool("hardware.mock"), "Force mock sensors and actuators")
	cmd.Flags().BoolVar(&settings.Realtime.Telemetry.Enabled, "telemetry", viper.GetBool("realtime.telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Realtime.Telemetry.Listen, "listen", viper.GetString("realtime.telemetry.listen"), "Listen address of the telemetry endpoint")

	_ = viper.BindPFlags(cmd.Flags())
}
