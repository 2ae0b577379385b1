package validator

import (
	"testing"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoreInput struct {
	Preset string               `json:"preset" validate:"area_preset"`
	Areas  []models.AreaSegment `json:"areas" validate:"dive"`
	Points *float64             `json:"points_per_correct"`
	Status models.SessionStatus `json:"status" validate:"omitempty,session_status"`
}

func (s scoreInput) ScoringAreas() []models.AreaSegment { return s.Areas }
func (s scoreInput) ScoringPoints() *float64            { return s.Points }

func TestValidator_AcceptsValidInput(t *testing.T) {
	points := 0.5
	v := New("enem")

	err := v.Validate(scoreInput{
		Preset: "ENEM",
		Areas:  []models.AreaSegment{{Area: "LC", Start: 1, End: 45}},
		Points: &points,
		Status: models.SessionCompleted,
	})

	assert.NoError(t, err)
}

func TestValidator_StructTags(t *testing.T) {
	v := New("enem")

	err := v.Validate(scoreInput{
		Preset: "fuvest",
		Areas:  []models.AreaSegment{{Area: "", Start: 2, End: 1}},
		Status: "archived",
	})

	require.Error(t, err)
	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)

	rules := map[string]string{}
	for _, e := range verrs {
		rules[e.Field] = e.Rule
	}
	assert.Equal(t, "area_preset", rules["preset"])
	assert.Equal(t, "required", rules["areas[0].area"])
	assert.Equal(t, "gtefield", rules["areas[0].end"])
	assert.Equal(t, "session_status", rules["status"])
}

func TestBusinessValidator(t *testing.T) {
	bv := NewBusinessValidator()

	errs := bv.ValidateAreas([]models.AreaSegment{
		{Area: "ok", Start: 1, End: 10},
		{Area: "zero", Start: 0, End: 10},
		{Area: "inverted", Start: 5, End: 4},
		{Area: "past key", Start: 170, End: 400},
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "areas[1]", errs[0].Field)
	assert.Equal(t, "areas[2]", errs[1].Field)
	assert.Equal(t, "area_range", errs[0].Rule)

	negative := -1.0
	assert.NotNil(t, bv.ValidatePointsPerCorrect(&negative))
	zero := 0.0
	assert.Nil(t, bv.ValidatePointsPerCorrect(&zero))
	assert.Nil(t, bv.ValidatePointsPerCorrect(nil))
}
