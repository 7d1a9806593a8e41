// Package file implements one-shot image classification.
package file

import (
	"github.com/spf13/cobra"

	"github.com/leafsense/leafsense-go/internal/analysis"
	"github.com/leafsense/leafsense-go/internal/conf"
)

// Command creates the single-image analysis command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "file [image.jpg]",
		Short: "Classify a single plant image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.FileAnalysis(settings, args[0])
		},
	}
}
