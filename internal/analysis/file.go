package analysis

import (
	"fmt"

	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/leafnet"
)

// FileAnalysis classifies a single image and prints the detailed result.
func FileAnalysis(settings *conf.Settings, imagePath string) error {
	classifier := leafnet.New(settings)
	defer classifier.Close()

	if classifier.Degraded() {
		fmt.Println("Warning: model not loaded, classifier running in degraded mode")
	}

	result, err := classifier.AnalyzeDetailed(imagePath)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", imagePath, err)
	}

	fmt.Printf("Image:       %s\n", imagePath)
	fmt.Printf("Class:       %s (id %d)\n", result.ClassName, result.ClassID)
	fmt.Printf("Confidence:  %.1f%%\n", result.Confidence*100)
	fmt.Printf("Entropy:     %.3f bits\n", result.Entropy)
	fmt.Printf("Green ratio: %.3f\n", result.GreenRatio)
	fmt.Printf("Valid plant: %v\n", result.ValidPlant)
	for i, p := range result.Probs {
		fmt.Printf("  %-12s %.4f\n", leafnet.ClassNames[i], p)
	}
	return nil
}
