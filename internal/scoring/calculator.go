// Package scoring computes Classical Test Theory scores on a 0.0-10.0 scale.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

// DefaultPointsPerCorrect yields 10.0 for 45 correct answers in one area.
const DefaultPointsPerCorrect = 0.222

// MaxScore is the top of the score scale.
const MaxScore = 10.0

var ErrInvalidInput = errors.New("invalid input")

// Mode is the scoring strategy picked from the shape of the request.
type Mode int

const (
	// ModeWholeKey scores every question against the full key as one proportion.
	ModeWholeKey Mode = iota
	// ModeArea scores each area independently and averages the area scores.
	ModeArea
)

func (m Mode) String() string {
	switch m {
	case ModeArea:
		return string(models.ScoringModeArea)
	default:
		return string(models.ScoringModeWholeKey)
	}
}

// SelectMode returns ModeArea when any area segment is given.
func SelectMode(areas []models.AreaSegment) Mode {
	if len(areas) > 0 {
		return ModeArea
	}
	return ModeWholeKey
}

type Option func(*Calculator)

func WithPointsPerCorrect(points float64) Option {
	return func(c *Calculator) {
		c.pointsPerCorrect = points
	}
}

// Calculator holds no state besides its configuration and is safe for
// concurrent use.
type Calculator struct {
	pointsPerCorrect float64
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{pointsPerCorrect: DefaultPointsPerCorrect}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) PointsPerCorrect() float64 {
	return c.pointsPerCorrect
}

// ComputeScores is a shorthand for NewCalculator(WithPointsPerCorrect(p)).ComputeScores.
func ComputeScores(students []models.StudentAnswerSheet, answerKey []string, areas []models.AreaSegment, pointsPerCorrect float64) ([]models.ScoreResult, error) {
	return NewCalculator(WithPointsPerCorrect(pointsPerCorrect)).ComputeScores(students, answerKey, areas)
}

// ComputeScores returns one result per student, in input order. Neither
// students nor answerKey are modified.
func (c *Calculator) ComputeScores(students []models.StudentAnswerSheet, answerKey []string, areas []models.AreaSegment) ([]models.ScoreResult, error) {
	if len(students) == 0 {
		return nil, fmt.Errorf("%w: student list is empty", ErrInvalidInput)
	}
	if len(answerKey) == 0 {
		return nil, fmt.Errorf("%w: answer key is empty", ErrInvalidInput)
	}

	mode := SelectMode(areas)
	results := make([]models.ScoreResult, len(students))
	for i := range students {
		switch mode {
		case ModeArea:
			results[i] = c.scoreByArea(&students[i], answerKey, areas)
		default:
			results[i] = scoreWholeKey(&students[i], answerKey)
		}
	}
	return results, nil
}

func (c *Calculator) scoreByArea(student *models.StudentAnswerSheet, answerKey []string, areas []models.AreaSegment) models.ScoreResult {
	areaScores := make(map[string]float64, len(areas))
	var sum float64
	for _, area := range areas {
		score := float64(CountCorrectInRange(student.Answers, answerKey, area.Start, area.End)) * c.pointsPerCorrect
		areaScores[area.Area] = RoundOneDecimal(score)
		sum += score
	}

	var average float64
	if len(areas) > 0 {
		// the mean is taken over unrounded area scores
		average = sum / float64(len(areas))
	}

	return models.ScoreResult{
		StudentID:    student.StudentID,
		AreaScores:   areaScores,
		AverageScore: RoundOneDecimal(average),
	}
}

func scoreWholeKey(student *models.StudentAnswerSheet, answerKey []string) models.ScoreResult {
	correct := CountCorrect(student.Answers, answerKey)
	score := float64(correct) / float64(len(answerKey)) * MaxScore

	return models.ScoreResult{
		StudentID:    student.StudentID,
		AreaScores:   map[string]float64{},
		AverageScore: RoundOneDecimal(score),
	}
}

// IsCorrect reports whether a response earns credit. Both sides must be
// present; letters are compared upper-cased and nothing is trimmed.
func IsCorrect(studentAnswer, keyAnswer string) bool {
	if studentAnswer == "" || keyAnswer == "" {
		return false
	}
	return strings.ToUpper(studentAnswer) == strings.ToUpper(keyAnswer)
}

// CountCorrect counts credited answers across every answer position.
// Positions past the end of the key never count.
func CountCorrect(answers, answerKey []string) int {
	correct := 0
	for i, answer := range answers {
		if i < len(answerKey) && IsCorrect(answer, answerKey[i]) {
			correct++
		}
	}
	return correct
}

// CountAnswered counts non-empty answers to questions that exist in the
// key. Whitespace is an answer, like any other non-empty string.
func CountAnswered(answers []string, keyLen int) int {
	n := 0
	for i, a := range answers {
		if i < keyLen && a != "" {
			n++
		}
	}
	return n
}

// CountCorrectInRange counts credited answers for questions start..end
// (1-indexed, inclusive). Questions outside either slice count as wrong.
// A start below 1 is treated as 1; negative starts are never offsets from
// the end of the key.
func CountCorrectInRange(answers, answerKey []string, start, end int) int {
	lo := start - 1
	if lo < 0 {
		lo = 0
	}
	hi := min(end, len(answers), len(answerKey))

	correct := 0
	for i := lo; i < hi; i++ {
		if IsCorrect(answers[i], answerKey[i]) {
			correct++
		}
	}
	return correct
}
