package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoundTrip verifies parse(serialize(m)) == m for every tag.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	messages := []Message{
		SensorMessage{Temperature: 21.5, PH: 6.02, EC: 712.25},
		SensorMessage{Temperature: -1.25, PH: 0, EC: 0.001},
		LogMessage{Category: LogMaintenance, Title: "pH Up On", Detail: "pH below ideal range"},
		LogMessage{Category: LogMLAnalysis, Title: "Healthy", Detail: "Confidence: 93.1%"},
		AlertMessage{Kind: AlertCritical, Message: "Disease detected with 82% confidence"},
		AlertMessage{Kind: AlertWarning, Message: "EC drifting", Detail: "below minimum for 2 cycles"},
		ImageMessage{Filename: "plant_20250110_153000.jpg", Path: "/opt/leafsense/gallery/plant_20250110_153000.jpg"},
		PredictionMessage{Filename: "plant_20250110_153000.jpg", Label: "Disease", Confidence: 0.82},
		RecommendationMessage{Filename: "plant_20250110_153000.jpg", Kind: "Disease", Text: "Disease detected. IMMEDIATE ACTIONS: isolate.", Confidence: 0.82},
	}

	for _, msg := range messages {
		raw := msg.Serialize()
		parsed, err := Parse(raw)
		require.NoError(t, err, "parsing %q", raw)
		assert.Equal(t, msg, parsed, "round trip of %q", raw)
	}
}

func TestParseSensor(t *testing.T) {
	t.Parallel()

	msg, err := Parse("SENSOR|21|5.0|700")
	require.NoError(t, err)
	sensor, ok := msg.(SensorMessage)
	require.True(t, ok)
	assert.InDelta(t, 21.0, sensor.Temperature, 1e-9)
	assert.InDelta(t, 5.0, sensor.PH, 1e-9)
	assert.InDelta(t, 700.0, sensor.EC, 1e-9)
}

func TestParseAlertOptionalDetail(t *testing.T) {
	t.Parallel()

	msg, err := Parse("ALERT|Critical|Disease detected with 82% confidence")
	require.NoError(t, err)
	alert := msg.(AlertMessage)
	assert.Equal(t, AlertCritical, alert.Kind)
	assert.Empty(t, alert.Detail)

	msg, err = Parse("ALERT|Info|note|extra detail")
	require.NoError(t, err)
	assert.Equal(t, "extra detail", msg.(AlertMessage).Detail)
}

// TestParseMalformed verifies the daemon-facing contract: bad input yields
// *ParseError, never a panic or a partial message.
func TestParseMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"unknown tag", "BOGUS|1|2"},
		{"sensor too few fields", "SENSOR|21|5.0"},
		{"sensor too many fields", "SENSOR|21|5.0|700|9"},
		{"sensor non-numeric", "SENSOR|warm|5.0|700"},
		{"log bad category", "LOG|Gossip|title|detail"},
		{"log too few fields", "LOG|Maintenance|title"},
		{"alert bad kind", "ALERT|Mild|msg"},
		{"img missing path", "IMG|file.jpg|"},
		{"pred bad confidence", "PRED|file.jpg|Disease|high"},
		{"rec too few fields", "REC|file.jpg|Disease|text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tc.raw)
			require.Error(t, err)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

// TestSerializeFloatsExact ensures float formatting survives a round trip
// bit for bit.
func TestSerializeFloatsExact(t *testing.T) {
	t.Parallel()

	original := SensorMessage{Temperature: 23.900000000000002, PH: 6.4499999999999993, EC: 839.99}
	parsed, err := Parse(original.Serialize())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}
