// Package recommend turns a classifier result and the latest sensor
// snapshot into a human-readable care recommendation. Pure: no I/O, no
// clock, no randomness.
package recommend

import (
	"fmt"

	"github.com/leafsense/leafsense-go/internal/conditions"
	"github.com/leafsense/leafsense-go/internal/leafnet"
)

// Kind classifies a recommendation.
type Kind string

const (
	KindHealthy    Kind = "Healthy"
	KindDeficiency Kind = "Deficiency"
	KindDisease    Kind = "Disease"
	KindPest       Kind = "Pest"
	KindUnknown    Kind = "Unknown"
)

// Sample is the sensor snapshot a recommendation is conditioned on.
type Sample struct {
	Temperature float64
	PH          float64
	EC          float64
}

// Recommendation is the synthesizer output.
type Recommendation struct {
	Kind       Kind
	Text       string
	Confidence float64
}

// EC deficit tiers in µS/cm below the ideal minimum.
const (
	criticalDeficit = 300.0
	moderateDeficit = 150.0
)

// Synthesize dispatches on the predicted class. The caller is expected to
// skip synthesis for out-of-distribution results; an unknown class id still
// returns a usable KindUnknown recommendation.
func Synthesize(result leafnet.Result, sample Sample, ranges conditions.Snapshot) Recommendation {
	rec := Recommendation{Confidence: result.Confidence}

	switch result.ClassID {
	case leafnet.ClassDeficiency:
		rec.Kind = KindDeficiency
		rec.Text = deficiencyText(sample, ranges)
	case leafnet.ClassDisease:
		rec.Kind = KindDisease
		rec.Text = fmt.Sprintf(
			"Disease detected. IMMEDIATE ACTIONS: "+
				"1. Isolate affected plants from the reservoir. "+
				"2. Remove visibly infected leaves with sterilized shears. "+
				"3. Improve air circulation around the canopy. "+
				"4. Reduce humidity and avoid wetting foliage. "+
				"5. Apply an organic fungicide suitable for edible crops. "+
				"Current Temp: %.1f C, pH: %.1f.",
			sample.Temperature, sample.PH)
	case leafnet.ClassHealthy:
		rec.Kind = KindHealthy
		rec.Text = fmt.Sprintf(
			"Plant is healthy. Conditions nominal: Temp %.1f C, pH %.1f, EC %.0f uS/cm. Keep the current schedule.",
			sample.Temperature, sample.PH, sample.EC)
	case leafnet.ClassPest:
		rec.Kind = KindPest
		rec.Text = "Pest damage detected. IMMEDIATE ACTIONS: " +
			"1. Inspect undersides of leaves for insects and eggs. " +
			"2. Remove heavily damaged leaves. " +
			"3. Introduce yellow sticky traps near the canopy. " +
			"4. Apply insecticidal soap or neem oil in the evening. " +
			"5. Re-inspect in 48 hours and repeat treatment if needed."
	default:
		rec.Kind = KindUnknown
		rec.Text = "Unable to classify the plant image. Verify camera positioning and lighting."
	}
	return rec
}

// deficiencyText grades the nutrient deficiency against the EC and pH
// ranges. Visual deficiency with normal sensors gets a monitoring
// recommendation rather than a dose.
func deficiencyText(sample Sample, ranges conditions.Snapshot) string {
	switch {
	case sample.EC < ranges.EC.Min:
		deficit := ranges.EC.Min - sample.EC
		switch {
		case deficit > criticalDeficit:
			return fmt.Sprintf(
				"CRITICAL: Severe nutrient deficiency. EC is %.0f uS/cm below the ideal minimum. Add 2-3 doses of nutrient solution and re-test within the hour.",
				deficit)
		case deficit > moderateDeficit:
			return fmt.Sprintf(
				"Moderate nutrient deficiency. EC is %.0f uS/cm below the ideal minimum. Add 1-2 doses of nutrient solution.",
				deficit)
		default:
			return "Mild nutrient deficiency. Add a light nutrient supplement at the next cycle."
		}
	case sample.EC > ranges.EC.Max:
		return "Possible specific nutrient deficiency despite adequate EC. Check Fe/Ca/Mg availability; consider a foliar spray."
	case !ranges.PH.Contains(sample.PH):
		return fmt.Sprintf(
			"Nutrient lockout suspected due to pH imbalance. pH %.1f is outside [%.1f, %.1f]; correct pH before adding nutrients.",
			sample.PH, ranges.PH.Min, ranges.PH.Max)
	default:
		return "Visual deficiency detected but sensor readings are normal. Monitor for 24 hours, then flush and remix the solution if symptoms persist."
	}
}
