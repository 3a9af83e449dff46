package matching

// Quality labels derived from confidence.
const (
	QualityExcellent  = "excellent"
	QualityVeryGood   = "very good"
	QualityGood       = "good"
	QualityAcceptable = "acceptable"
	QualityPoor       = "poor"
)

// Intermediate label thresholds between acceptable and excellent.
const (
	veryGoodThreshold = 0.8
	goodThreshold     = 0.7
)

// QualityLabel maps a confidence value to its discrete label. Out-of-range
// inputs are clamped to [0, 1] first; confidence from the scorer is already
// clamped, but the classifier stays robust on its own.
func QualityLabel(confidence float64, w Weights) string {
	w = w.withDefaults()

	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	switch {
	case confidence >= w.HighConfidence:
		return QualityExcellent
	case confidence >= veryGoodThreshold:
		return QualityVeryGood
	case confidence >= goodThreshold:
		return QualityGood
	case confidence >= w.MinConfidence:
		return QualityAcceptable
	default:
		return QualityPoor
	}
}
