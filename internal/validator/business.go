package validator

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/scoring-service/internal/errors"
	"github.com/SAP-F-2025/scoring-service/internal/models"
)

// AreaScoped is implemented by requests that carry area segments.
type AreaScoped interface {
	ScoringAreas() []models.AreaSegment
}

// PointsScoped is implemented by requests that may override points per correct answer.
type PointsScoped interface {
	ScoringPoints() *float64
}

// BusinessValidator checks rules that struct tags cannot express.
type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

func (v *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errs ValidationErrors
	if scoped, ok := s.(AreaScoped); ok {
		errs = append(errs, v.ValidateAreas(scoped.ScoringAreas())...)
	}
	if scoped, ok := s.(PointsScoped); ok {
		if err := v.ValidatePointsPerCorrect(scoped.ScoringPoints()); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

// ValidateAreas checks that every segment is a well formed 1-indexed range.
// Segments may overlap or run past the answer key; scoring tolerates both.
func (v *BusinessValidator) ValidateAreas(areas []models.AreaSegment) ValidationErrors {
	var errs ValidationErrors
	for i, area := range areas {
		if area.Start < 1 || area.End < area.Start {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("areas[%d]", i),
				fmt.Sprintf("invalid range %d-%d for area %q", area.Start, area.End, area.Area),
				"area_range",
				area,
			))
		}
	}
	return errs
}

func (v *BusinessValidator) ValidatePointsPerCorrect(points *float64) *ValidationError {
	if points == nil {
		return nil
	}
	if *points < 0 {
		return apperrors.NewValidationErrorWithRule("points_per_correct", "must not be negative", "points_per_correct", *points)
	}
	return nil
}
