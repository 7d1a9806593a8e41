// Package cmd assembles the leafsense command tree.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leafsense/leafsense-go/cmd/file"
	"github.com/leafsense/leafsense-go/cmd/realtime"
	"github.com/leafsense/leafsense-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leafsense",
		Short: "LeafSense-Go hydroponic control engine",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		realtime.Command(settings),
		file.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.LeafNet.ModelPath, "modelpath", viper.GetString("leafnet.modelpath"), "Directory containing the classifier model")
	rootCmd.PersistentFlags().StringVar(&settings.LeafNet.ModelName, "modelname", viper.GetString("leafnet.modelname"), "Classifier model file name")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}
