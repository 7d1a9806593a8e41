package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leafsense/leafsense-go/internal/conditions"
	"github.com/leafsense/leafsense-go/internal/leafnet"
)

func defaultRanges() conditions.Snapshot {
	return conditions.New().Snapshot()
}

func result(classID int, confidence float64) leafnet.Result {
	name := leafnet.UnknownClassName
	if classID >= 0 && classID < leafnet.NumClasses {
		name = leafnet.ClassNames[classID]
	}
	return leafnet.Result{ClassID: classID, ClassName: name, Confidence: confidence}
}

func TestHealthy(t *testing.T) {
	t.Parallel()

	rec := Synthesize(result(leafnet.ClassHealthy, 0.93),
		Sample{Temperature: 21, PH: 6.0, EC: 700}, defaultRanges())

	assert.Equal(t, KindHealthy, rec.Kind)
	assert.Contains(t, rec.Text, "healthy")
	assert.Contains(t, rec.Text, "21.0")
	assert.Contains(t, rec.Text, "6.0")
	assert.Contains(t, rec.Text, "700")
	assert.InDelta(t, 0.93, rec.Confidence, 1e-9)
}

func TestDiseaseChecklist(t *testing.T) {
	t.Parallel()

	rec := Synthesize(result(leafnet.ClassDisease, 0.82),
		Sample{Temperature: 22.5, PH: 6.1, EC: 700}, defaultRanges())

	assert.Equal(t, KindDisease, rec.Kind)
	assert.True(t, strings.HasPrefix(rec.Text, "Disease detected. IMMEDIATE ACTIONS:"), "text: %s", rec.Text)
	for _, step := range []string{"1.", "2.", "3.", "4.", "5."} {
		assert.Contains(t, rec.Text, step)
	}
	assert.Contains(t, rec.Text, "22.5")
	assert.Contains(t, rec.Text, "6.1")
}

func TestPestChecklist(t *testing.T) {
	t.Parallel()

	rec := Synthesize(result(leafnet.ClassPest, 0.75),
		Sample{Temperature: 21, PH: 6.0, EC: 700}, defaultRanges())

	assert.Equal(t, KindPest, rec.Kind)
	assert.True(t, strings.HasPrefix(rec.Text, "Pest damage detected. IMMEDIATE ACTIONS:"))
	for _, step := range []string{"1.", "2.", "3.", "4.", "5."} {
		assert.Contains(t, rec.Text, step)
	}
}

// Deficiency tiers by EC deficit below the ideal minimum (560 by default).
func TestDeficiencyCritical(t *testing.T) {
	t.Parallel()

	// deficit = 560 - 200 = 360 > 300
	rec := Synthesize(result(leafnet.ClassDeficiency, 0.8),
		Sample{Temperature: 21, PH: 6.0, EC: 200}, defaultRanges())

	assert.Equal(t, KindDeficiency, rec.Kind)
	assert.True(t, strings.HasPrefix(rec.Text, "CRITICAL:"))
	assert.Contains(t, rec.Text, "2-3 doses")
	assert.Contains(t, rec.Text, "360")
}

func TestDeficiencyModerate(t *testing.T) {
	t.Parallel()

	// deficit = 560 - 360 = 200, in (150, 300]
	rec := Synthesize(result(leafnet.ClassDeficiency, 0.8),
		Sample{Temperature: 21, PH: 6.0, EC: 360}, defaultRanges())

	assert.Contains(t, rec.Text, "Moderate")
	assert.Contains(t, rec.Text, "1-2 doses")
}

func TestDeficiencyMild(t *testing.T) {
	t.Parallel()

	// deficit = 560 - 500 = 60 <= 150
	rec := Synthesize(result(leafnet.ClassDeficiency, 0.8),
		Sample{Temperature: 21, PH: 6.0, EC: 500}, defaultRanges())

	assert.Contains(t, rec.Text, "Mild")
	assert.Contains(t, rec.Text, "light nutrient supplement")
}

func TestDeficiencyAboveMax(t *testing.T) {
	t.Parallel()

	rec := Synthesize(result(leafnet.ClassDeficiency, 0.8),
		Sample{Temperature: 21, PH: 6.0, EC: 900}, defaultRanges())

	assert.Contains(t, rec.Text, "despite adequate EC")
	assert.Contains(t, rec.Text, "Fe/Ca/Mg")
}

func TestDeficiencyPHLockout(t *testing.T) {
	t.Parallel()

	// EC in range, pH out of range.
	rec := Synthesize(result(leafnet.ClassDeficiency, 0.8),
		Sample{Temperature: 21, PH: 7.2, EC: 700}, defaultRanges())

	assert.Contains(t, rec.Text, "lockout")
	assert.Contains(t, rec.Text, "7.2")
}

func TestDeficiencySensorsNormal(t *testing.T) {
	t.Parallel()

	rec := Synthesize(result(leafnet.ClassDeficiency, 0.8),
		Sample{Temperature: 21, PH: 6.0, EC: 700}, defaultRanges())

	assert.Contains(t, rec.Text, "sensor readings are normal")
	assert.Contains(t, rec.Text, "24 hours")
}

func TestUnknownClass(t *testing.T) {
	t.Parallel()

	rec := Synthesize(result(leafnet.ClassUnknown, 0.2),
		Sample{Temperature: 21, PH: 6.0, EC: 700}, defaultRanges())

	assert.Equal(t, KindUnknown, rec.Kind)
	assert.NotEmpty(t, rec.Text)
}

// TestPurity: identical inputs must yield identical outputs.
func TestPurity(t *testing.T) {
	t.Parallel()

	sample := Sample{Temperature: 21, PH: 6.0, EC: 400}
	ranges := defaultRanges()
	r := result(leafnet.ClassDeficiency, 0.8)

	first := Synthesize(r, sample, ranges)
	second := Synthesize(r, sample, ranges)
	assert.Equal(t, first, second)
}
