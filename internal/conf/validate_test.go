package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Control.TickPeriod = 5
	s.Control.SensorPeriod = 10
	s.Control.CameraPeriod = 900
	s.LeafNet.ImageSize = 224
	s.LeafNet.EntropyThreshold = 1.8
	s.LeafNet.MinConfidence = 0.30
	s.LeafNet.MinGreenRatio = 0.10
	s.Camera.JPEGQuality = 85
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "leafsense.db"
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero tick period", func(s *Settings) { s.Control.TickPeriod = 0 }},
		{"negative sensor period", func(s *Settings) { s.Control.SensorPeriod = -1 }},
		{"zero camera period", func(s *Settings) { s.Control.CameraPeriod = 0 }},
		{"zero image size", func(s *Settings) { s.LeafNet.ImageSize = 0 }},
		{"confidence above one", func(s *Settings) { s.LeafNet.MinConfidence = 1.5 }},
		{"negative green ratio", func(s *Settings) { s.LeafNet.MinGreenRatio = -0.1 }},
		{"negative entropy threshold", func(s *Settings) { s.LeafNet.EntropyThreshold = -1 }},
		{"jpeg quality out of range", func(s *Settings) { s.Camera.JPEGQuality = 0 }},
		{"no database enabled", func(s *Settings) { s.Output.SQLite.Enabled = false }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tc.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}
