package scoring

import (
	"testing"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionStats(t *testing.T) {
	key := []string{"A", "B", "C"}
	students := []models.StudentAnswerSheet{
		sheet("s1", "A", "B", "C"),
		sheet("s2", "a", "C", ""),
		sheet("s3", "B"),
	}

	stats, err := QuestionStats(students, key, 1, 0)

	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, models.QuestionStat{QuestionNumber: 1, CorrectCount: 2, WrongCount: 1, Attempts: 3, CorrectPercentage: 66.7}, stats[0])
	assert.Equal(t, models.QuestionStat{QuestionNumber: 2, CorrectCount: 1, WrongCount: 1, Attempts: 2, CorrectPercentage: 50}, stats[1])
	assert.Equal(t, models.QuestionStat{QuestionNumber: 3, CorrectCount: 1, WrongCount: 0, Attempts: 1, CorrectPercentage: 100}, stats[2])
}

func TestQuestionStats_Range(t *testing.T) {
	key := []string{"A", "B", "C", "D"}
	students := []models.StudentAnswerSheet{sheet("s1", "A", "B", "C", "D")}

	stats, err := QuestionStats(students, key, 3, 10)

	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 3, stats[0].QuestionNumber)
	assert.Equal(t, 4, stats[1].QuestionNumber)

	stats, err = QuestionStats(students, key, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestQuestionStats_NoAttempts(t *testing.T) {
	stats, err := QuestionStats([]models.StudentAnswerSheet{sheet("s1")}, []string{"A"}, 1, 1)

	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 0, stats[0].Attempts)
	assert.Equal(t, 0.0, stats[0].CorrectPercentage)
}

func TestQuestionStats_RejectsEmptyInput(t *testing.T) {
	_, err := QuestionStats(nil, []string{"A"}, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = QuestionStats([]models.StudentAnswerSheet{sheet("s1", "A")}, nil, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildExamStatistics(t *testing.T) {
	key := []string{"A", "B", "C", "D"}
	students := []models.StudentAnswerSheet{
		{StudentID: "s1", Class: "3A", Answers: []string{"A", "B", "C", "D"}},
		{StudentID: "s2", Class: "3A", Answers: []string{"A", "B", "X", "X"}},
		{StudentID: "s3", Class: "3B", Answers: []string{"A", "X", "X", "X"}},
		{StudentID: "s4", Answers: []string{"", "", "", ""}},
	}
	results, err := NewCalculator().ComputeScores(students, key, nil)
	require.NoError(t, err)

	stats, err := BuildExamStatistics(students, key, results, DefaultPassingScore)

	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, 4.4, stats.AverageScore) // (10 + 5 + 2.5 + 0) / 4 = 4.375
	assert.Equal(t, 10.0, stats.HighestScore)
	assert.Equal(t, 0.0, stats.LowestScore)
	assert.Equal(t, 25.0, stats.PassingRate)
	assert.Len(t, stats.QuestionStats, 4)

	require.Len(t, stats.ClassStats, 3)
	assert.Equal(t, models.ClassStat{Class: "3A", TotalStudents: 2, AverageScore: 7.5, PassingRate: 50, TotalCorrect: 6, TotalWrong: 2}, stats.ClassStats[0])
	assert.Equal(t, "3B", stats.ClassStats[1].Class)
	assert.Equal(t, NoClassLabel, stats.ClassStats[2].Class)
	assert.Equal(t, 0, stats.ClassStats[2].TotalWrong)
}

func TestBuildExamStatistics_MismatchedResults(t *testing.T) {
	_, err := BuildExamStatistics([]models.StudentAnswerSheet{sheet("s1", "A")}, []string{"A"}, nil, DefaultPassingScore)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildExamStatistics_WhitespaceIsAnAttempt(t *testing.T) {
	key := []string{"A", "B"}
	students := []models.StudentAnswerSheet{
		{StudentID: "s1", Class: "3A", Answers: []string{"A", " ", "C"}},
	}
	results, err := NewCalculator().ComputeScores(students, key, nil)
	require.NoError(t, err)

	stats, err := BuildExamStatistics(students, key, results, DefaultPassingScore)
	require.NoError(t, err)

	// Question 2 sees one wrong attempt; the class totals agree and ignore
	// the answer past the key.
	assert.Equal(t, 1, stats.QuestionStats[1].Attempts)
	assert.Equal(t, 1, stats.QuestionStats[1].WrongCount)
	require.Len(t, stats.ClassStats, 1)
	assert.Equal(t, 1, stats.ClassStats[0].TotalCorrect)
	assert.Equal(t, 1, stats.ClassStats[0].TotalWrong)
}
