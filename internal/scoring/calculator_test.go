package scoring

import (
	"strconv"
	"sync"
	"testing"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheet(id string, answers ...string) models.StudentAnswerSheet {
	return models.StudentAnswerSheet{StudentID: id, PageNumber: 1, Answers: answers}
}

func repeat(letter string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = letter
	}
	return out
}

func TestComputeScores_WholeKey(t *testing.T) {
	key := []string{"A", "B", "C", "D"}

	results, err := NewCalculator().ComputeScores(
		[]models.StudentAnswerSheet{sheet("s1", "A", "B", "X", "D")},
		key, nil,
	)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].StudentID)
	assert.Equal(t, 7.5, results[0].AverageScore)
	assert.NotNil(t, results[0].AreaScores)
	assert.Empty(t, results[0].AreaScores)
}

func TestComputeScores_Area(t *testing.T) {
	key := []string{"A", "B", "C", "D", "E", "F"}
	areas := []models.AreaSegment{
		{Area: "X", Start: 1, End: 3},
		{Area: "Y", Start: 4, End: 6},
	}

	results, err := ComputeScores(
		[]models.StudentAnswerSheet{sheet("s1", "A", "B", "Z", "D", "F", "F")},
		key, areas, 2.0,
	)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, map[string]float64{"X": 4.0, "Y": 4.0}, results[0].AreaScores)
	assert.Equal(t, 4.0, results[0].AverageScore)
}

func TestComputeScores_DefaultPointsWholeKey(t *testing.T) {
	key := repeat("C", 45)

	results, err := NewCalculator().ComputeScores(
		[]models.StudentAnswerSheet{sheet("s1", repeat("c", 45)...)},
		key, nil,
	)

	require.NoError(t, err)
	assert.Equal(t, 10.0, results[0].AverageScore)
}

func TestComputeScores_DefaultPointsArea(t *testing.T) {
	key := repeat("B", 90)
	areas := []models.AreaSegment{
		{Area: "LC", Start: 1, End: 45},
		{Area: "CH", Start: 46, End: 90},
	}
	answers := repeat("B", 90)
	for i := 45; i < 90; i += 2 {
		answers[i] = "A"
	}

	results, err := NewCalculator().ComputeScores(
		[]models.StudentAnswerSheet{sheet("s1", answers...)},
		key, areas,
	)

	require.NoError(t, err)
	// 45 * 0.222 = 9.99, 22 * 0.222 = 4.884
	assert.Equal(t, 10.0, results[0].AreaScores["LC"])
	assert.Equal(t, 4.9, results[0].AreaScores["CH"])
	assert.Equal(t, 7.4, results[0].AverageScore)
}

func TestComputeScores_AverageUsesUnroundedAreaScores(t *testing.T) {
	areas := []models.AreaSegment{
		{Area: "P", Start: 1, End: 1},
		{Area: "Q", Start: 2, End: 2},
	}

	results, err := ComputeScores(
		[]models.StudentAnswerSheet{sheet("s1", "A", "B")},
		[]string{"A", "A"}, areas, 0.34,
	)

	require.NoError(t, err)
	assert.Equal(t, 0.3, results[0].AreaScores["P"])
	assert.Equal(t, 0.0, results[0].AreaScores["Q"])
	// mean of raw scores is 0.17; averaging the rounded 0.3 and 0.0 would give 0.1
	assert.Equal(t, 0.2, results[0].AverageScore)
}

func TestComputeScores_RejectsEmptyInput(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.ComputeScores(nil, []string{"A"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = calc.ComputeScores([]models.StudentAnswerSheet{}, []string{"A"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = calc.ComputeScores([]models.StudentAnswerSheet{sheet("s1", "A")}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = calc.ComputeScores([]models.StudentAnswerSheet{sheet("s1", "A")}, []string{}, []models.AreaSegment{{Area: "X", Start: 1, End: 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		key      string
		expected bool
	}{
		{name: "exact match", answer: "A", key: "A", expected: true},
		{name: "lower case answer", answer: "a", key: "A", expected: true},
		{name: "lower case key", answer: "B", key: "b", expected: true},
		{name: "mismatch", answer: "A", key: "B", expected: false},
		{name: "trailing whitespace", answer: "a ", key: "A", expected: false},
		{name: "empty answer", answer: "", key: "A", expected: false},
		{name: "empty key", answer: "A", key: "", expected: false},
		{name: "both empty", answer: "", key: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCorrect(tt.answer, tt.key))
		})
	}
}

func TestComputeScores_LenientShapes(t *testing.T) {
	key := []string{"A", "B", "C", "D"}

	t.Run("short answer sheet", func(t *testing.T) {
		results, err := ComputeScores([]models.StudentAnswerSheet{sheet("s1", "A", "B")}, key, nil, DefaultPointsPerCorrect)
		require.NoError(t, err)
		assert.Equal(t, 5.0, results[0].AverageScore)
	})

	t.Run("answers beyond key are ignored", func(t *testing.T) {
		results, err := ComputeScores([]models.StudentAnswerSheet{sheet("s1", "A", "B", "C", "D", "E", "F")}, key, nil, DefaultPointsPerCorrect)
		require.NoError(t, err)
		assert.Equal(t, 10.0, results[0].AverageScore)
	})

	t.Run("absent answers score nothing", func(t *testing.T) {
		results, err := ComputeScores([]models.StudentAnswerSheet{sheet("s1", "", "b", "", "")}, key, nil, DefaultPointsPerCorrect)
		require.NoError(t, err)
		assert.Equal(t, 2.5, results[0].AverageScore)
	})

	t.Run("segment past end of key truncates", func(t *testing.T) {
		results, err := ComputeScores(
			[]models.StudentAnswerSheet{sheet("s1", "A", "B", "C", "D", "E")},
			key, []models.AreaSegment{{Area: "X", Start: 3, End: 10}}, 1.0,
		)
		require.NoError(t, err)
		assert.Equal(t, 2.0, results[0].AreaScores["X"])
		assert.Equal(t, 2.0, results[0].AverageScore)
	})

	t.Run("segment entirely out of range", func(t *testing.T) {
		results, err := ComputeScores(
			[]models.StudentAnswerSheet{sheet("s1", "A", "B", "C", "D")},
			key, []models.AreaSegment{{Area: "X", Start: 20, End: 30}}, 1.0,
		)
		require.NoError(t, err)
		assert.Equal(t, 0.0, results[0].AreaScores["X"])
	})

	t.Run("duplicate area names keep the last score", func(t *testing.T) {
		results, err := ComputeScores(
			[]models.StudentAnswerSheet{sheet("s1", "A", "B", "X", "X")},
			key, []models.AreaSegment{
				{Area: "X", Start: 1, End: 2},
				{Area: "X", Start: 3, End: 4},
			}, 1.0,
		)
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"X": 0.0}, results[0].AreaScores)
		assert.Equal(t, 1.0, results[0].AverageScore)
	})
}

func TestComputeScores_PreservesOrderAndInputs(t *testing.T) {
	key := []string{"A", "B"}
	students := []models.StudentAnswerSheet{
		sheet("zeta", "a", "b"),
		sheet("alpha", "A", ""),
		sheet("mu", "", ""),
	}

	results, err := NewCalculator().ComputeScores(students, key, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "zeta", results[0].StudentID)
	assert.Equal(t, "alpha", results[1].StudentID)
	assert.Equal(t, "mu", results[2].StudentID)
	assert.Equal(t, []float64{10.0, 5.0, 0.0}, []float64{results[0].AverageScore, results[1].AverageScore, results[2].AverageScore})
	assert.Equal(t, []string{"a", "b"}, students[0].Answers)
	assert.Equal(t, []string{"A", "B"}, key)
}

func TestComputeScores_Idempotent(t *testing.T) {
	key := repeat("D", 180)
	areas := []models.AreaSegment{
		{Area: "LC", Start: 1, End: 45},
		{Area: "CH", Start: 46, End: 90},
		{Area: "CN", Start: 91, End: 135},
		{Area: "MT", Start: 136, End: 180},
	}
	students := make([]models.StudentAnswerSheet, 20)
	for i := range students {
		answers := repeat("D", 180)
		for j := 0; j < i*7 && j < 180; j++ {
			answers[j] = "E"
		}
		students[i] = sheet("s"+strconv.Itoa(i), answers...)
	}

	calc := NewCalculator()
	first, err := calc.ComputeScores(students, key, areas)
	require.NoError(t, err)
	second, err := calc.ComputeScores(students, key, areas)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeScores_RangeInvariant(t *testing.T) {
	key := repeat("A", 45)
	areas := []models.AreaSegment{{Area: "ALL", Start: 1, End: 45}}

	for correct := 0; correct <= 45; correct++ {
		answers := repeat("B", 45)
		for i := 0; i < correct; i++ {
			answers[i] = "A"
		}
		students := []models.StudentAnswerSheet{sheet("s", answers...)}

		byArea, err := NewCalculator().ComputeScores(students, key, areas)
		require.NoError(t, err)
		whole, err := NewCalculator().ComputeScores(students, key, nil)
		require.NoError(t, err)

		for _, score := range []float64{byArea[0].AreaScores["ALL"], byArea[0].AverageScore, whole[0].AverageScore} {
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, MaxScore)
		}
	}
}

func TestComputeScores_Concurrent(t *testing.T) {
	key := []string{"A", "B", "C", "D"}
	students := []models.StudentAnswerSheet{sheet("s1", "A", "B", "X", "D")}
	calc := NewCalculator()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := calc.ComputeScores(students, key, nil)
			assert.NoError(t, err)
			assert.Equal(t, 7.5, results[0].AverageScore)
		}()
	}
	wg.Wait()
}

func TestSelectMode(t *testing.T) {
	assert.Equal(t, ModeWholeKey, SelectMode(nil))
	assert.Equal(t, ModeWholeKey, SelectMode([]models.AreaSegment{}))
	assert.Equal(t, ModeArea, SelectMode([]models.AreaSegment{{Area: "X", Start: 1, End: 1}}))
	assert.Equal(t, "area", ModeArea.String())
	assert.Equal(t, "whole_key", ModeWholeKey.String())
}

func TestCountCorrectInRange(t *testing.T) {
	answers := []string{"A", "B", "C"}
	key := []string{"A", "B", "C", "D"}

	assert.Equal(t, 3, CountCorrectInRange(answers, key, 1, 4))
	assert.Equal(t, 2, CountCorrectInRange(answers, key, 2, 3))
	assert.Equal(t, 0, CountCorrectInRange(answers, key, 3, 2))
	assert.Equal(t, 1, CountCorrectInRange(answers, key, 0, 1))
}

func TestCountCorrectInRange_NegativeStartIsNotAnOffset(t *testing.T) {
	answers := []string{"A", "B", "X", "D"}
	key := []string{"A", "B", "C", "D"}

	// Questions 1..2, not the last two questions of the key.
	assert.Equal(t, 2, CountCorrectInRange(answers, key, -1, 2))
	assert.Equal(t, CountCorrectInRange(answers, key, 1, 4), CountCorrectInRange(answers, key, -5, 4))
}

func TestCountAnswered(t *testing.T) {
	assert.Equal(t, 3, CountAnswered([]string{"A", "", " ", "b", "E"}, 4))
	assert.Equal(t, 0, CountAnswered(nil, 4))
	assert.Equal(t, 1, CountAnswered([]string{"A", "B"}, 1))
}
