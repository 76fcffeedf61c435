package risk

import "ai-risk-registry/internal/models"

const (
	MinWeight = 1
	MaxWeight = 5

	parameterCount = 5

	// MinScore and MaxScore bound the weighted parameter sum.
	MinScore = MinWeight * parameterCount
	MaxScore = MaxWeight * parameterCount
)

// Weight converts an ordinal label to its weight. Unknown labels are an error,
// there is no fallback value.
func Weight(field string, level models.ParameterLevel) (int, error) {
	switch level {
	case models.LevelVeryLow:
		return 1, nil
	case models.LevelLow:
		return 2, nil
	case models.LevelMedium:
		return 3, nil
	case models.LevelHigh:
		return 4, nil
	case models.LevelVeryHigh:
		return 5, nil
	}
	return 0, &InvalidParameterError{Field: field, Value: string(level)}
}
