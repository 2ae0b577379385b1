package models

// StudentAnswerSheet is one student's extracted answers. Answers[i] is the
// response to question i+1; an empty string is an absent answer.
type StudentAnswerSheet struct {
	StudentID     string   `json:"student_id" validate:"required"`
	StudentNumber string   `json:"student_number,omitempty"`
	StudentName   string   `json:"student_name,omitempty"`
	Class         string   `json:"class,omitempty"`
	PageNumber    int      `json:"page_number" validate:"min=0"`
	Confidence    *float64 `json:"confidence,omitempty" validate:"omitempty,min=0,max=100"`
	Answers       []string `json:"answers"`
}

// AnswerKey is the official answer sequence, index 0 being question 1.
type AnswerKey []string

// QuestionContent labels a question with the subject content it covers.
type QuestionContent struct {
	QuestionNumber int    `json:"question_number" validate:"min=1"`
	Answer         string `json:"answer"`
	Content        string `json:"content"`
}
