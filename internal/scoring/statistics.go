package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

// DefaultPassingScore is the minimum average score counted as passing.
const DefaultPassingScore = 6.0

// NoClassLabel groups students whose class is blank.
const NoClassLabel = "Sem Turma"

// QuestionStats reports per-question attempt and hit counts for questions
// start..end (1-indexed, inclusive). end <= 0 selects the last question of
// the key; ranges past the key are clamped. Only non-empty answers count as
// attempts.
func QuestionStats(students []models.StudentAnswerSheet, answerKey []string, start, end int) ([]models.QuestionStat, error) {
	if len(students) == 0 {
		return nil, fmt.Errorf("%w: student list is empty", ErrInvalidInput)
	}
	if len(answerKey) == 0 {
		return nil, fmt.Errorf("%w: answer key is empty", ErrInvalidInput)
	}
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(answerKey) {
		end = len(answerKey)
	}

	stats := make([]models.QuestionStat, 0, max(end-start+1, 0))
	for q := start - 1; q < end; q++ {
		stat := models.QuestionStat{QuestionNumber: q + 1}
		for i := range students {
			answers := students[i].Answers
			if q >= len(answers) || answers[q] == "" {
				continue
			}
			stat.Attempts++
			if IsCorrect(answers[q], answerKey[q]) {
				stat.CorrectCount++
			} else {
				stat.WrongCount++
			}
		}
		if stat.Attempts > 0 {
			stat.CorrectPercentage = roundHalfUp(float64(stat.CorrectCount) / float64(stat.Attempts) * 100)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// BuildExamStatistics summarises a scored batch. results must be the output
// of ComputeScores for the same students, in the same order.
func BuildExamStatistics(students []models.StudentAnswerSheet, answerKey []string, results []models.ScoreResult, passingScore float64) (*models.ExamStatistics, error) {
	if len(results) != len(students) {
		return nil, fmt.Errorf("%w: %d results for %d students", ErrInvalidInput, len(results), len(students))
	}

	questionStats, err := QuestionStats(students, answerKey, 1, 0)
	if err != nil {
		return nil, err
	}

	stats := &models.ExamStatistics{
		TotalStudents: len(results),
		PassingScore:  passingScore,
		QuestionStats: questionStats,
		HighestScore:  results[0].AverageScore,
		LowestScore:   results[0].AverageScore,
	}

	var sum float64
	passing := 0
	for _, r := range results {
		sum += r.AverageScore
		stats.HighestScore = max(stats.HighestScore, r.AverageScore)
		stats.LowestScore = min(stats.LowestScore, r.AverageScore)
		if r.AverageScore >= passingScore {
			passing++
		}
	}
	stats.AverageScore = roundHalfUp(sum / float64(len(results)))
	stats.PassingRate = roundHalfUp(float64(passing) / float64(len(results)) * 100)
	stats.ClassStats = classStats(students, answerKey, results, passingScore)

	return stats, nil
}

type classAccumulator struct {
	students int
	sum      float64
	passing  int
	correct  int
	wrong    int
}

func classStats(students []models.StudentAnswerSheet, answerKey []string, results []models.ScoreResult, passingScore float64) []models.ClassStat {
	byClass := make(map[string]*classAccumulator)
	for i := range students {
		class := strings.TrimSpace(students[i].Class)
		if class == "" {
			class = NoClassLabel
		}
		acc, ok := byClass[class]
		if !ok {
			acc = &classAccumulator{}
			byClass[class] = acc
		}

		correct := CountCorrect(students[i].Answers, answerKey)
		answered := CountAnswered(students[i].Answers, len(answerKey))

		acc.students++
		acc.sum += results[i].AverageScore
		acc.correct += correct
		acc.wrong += max(answered-correct, 0)
		if results[i].AverageScore >= passingScore {
			acc.passing++
		}
	}

	out := make([]models.ClassStat, 0, len(byClass))
	for class, acc := range byClass {
		out = append(out, models.ClassStat{
			Class:         class,
			TotalStudents: acc.students,
			AverageScore:  roundHalfUp(acc.sum / float64(acc.students)),
			PassingRate:   roundHalfUp(float64(acc.passing) / float64(acc.students) * 100),
			TotalCorrect:  acc.correct,
			TotalWrong:    acc.wrong,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageScore != out[j].AverageScore {
			return out[i].AverageScore > out[j].AverageScore
		}
		return out[i].Class < out[j].Class
	})
	return out
}
