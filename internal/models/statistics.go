package models

type QuestionStat struct {
	QuestionNumber    int     `json:"question_number"`
	CorrectCount      int     `json:"correct_count"`
	WrongCount        int     `json:"wrong_count"`
	Attempts          int     `json:"attempts"`
	CorrectPercentage float64 `json:"correct_percentage"`
	Content           string  `json:"content,omitempty"`
}

type ClassStat struct {
	Class         string  `json:"class"`
	TotalStudents int     `json:"total_students"`
	AverageScore  float64 `json:"average_score"`
	PassingRate   float64 `json:"passing_rate"`
	TotalCorrect  int     `json:"total_correct"`
	TotalWrong    int     `json:"total_wrong"`
}

// ExamStatistics summarises one scored batch. Scores use the 0.0-10.0 scale.
type ExamStatistics struct {
	TotalStudents int            `json:"total_students"`
	AverageScore  float64        `json:"average_score"`
	HighestScore  float64        `json:"highest_score"`
	LowestScore   float64        `json:"lowest_score"`
	PassingScore  float64        `json:"passing_score"`
	PassingRate   float64        `json:"passing_rate"`
	QuestionStats []QuestionStat `json:"question_stats"`
	ClassStats    []ClassStat    `json:"class_stats,omitempty"`
}
