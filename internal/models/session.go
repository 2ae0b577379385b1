package models

import "time"

type SessionStatus string

const (
	SessionUploading  SessionStatus = "uploading"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionError      SessionStatus = "error"
)

type PageStatus string

const (
	PagePending    PageStatus = "pending"
	PageProcessing PageStatus = "processing"
	PageCompleted  PageStatus = "completed"
	PageError      PageStatus = "error"
)

type ProcessedPage struct {
	PageNumber int                  `json:"page_number" validate:"min=0"`
	ImageURL   string               `json:"image_url,omitempty"`
	Status     PageStatus           `json:"status" validate:"omitempty,page_status"`
	Error      string               `json:"error,omitempty"`
	Students   []StudentAnswerSheet `json:"students" validate:"dive"`
}

// ProcessingSession tracks one uploaded document while its pages are
// extracted into answer sheets.
type ProcessingSession struct {
	ID             string          `json:"id"`
	FileName       string          `json:"file_name"`
	TotalPages     int             `json:"total_pages"`
	ProcessedPages int             `json:"processed_pages"`
	Status         SessionStatus   `json:"status"`
	Pages          []ProcessedPage `json:"pages"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SessionUpdate holds the fields to merge into a session; nil fields are
// left untouched.
type SessionUpdate struct {
	FileName       *string          `json:"file_name" validate:"omitempty,min=1,max=255"`
	TotalPages     *int             `json:"total_pages" validate:"omitempty,min=0"`
	ProcessedPages *int             `json:"processed_pages" validate:"omitempty,min=0"`
	Status         *SessionStatus   `json:"status" validate:"omitempty,session_status"`
	Pages          *[]ProcessedPage `json:"pages" validate:"omitempty,dive"`
}

// Apply merges u into s.
func (u SessionUpdate) Apply(s *ProcessingSession) {
	if u.FileName != nil {
		s.FileName = *u.FileName
	}
	if u.TotalPages != nil {
		s.TotalPages = *u.TotalPages
	}
	if u.ProcessedPages != nil {
		s.ProcessedPages = *u.ProcessedPages
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.Pages != nil {
		s.Pages = *u.Pages
	}
}

// AddStudent appends student to the page with the same page number,
// creating a completed page when none exists.
func (s *ProcessingSession) AddStudent(student StudentAnswerSheet) {
	for i := range s.Pages {
		if s.Pages[i].PageNumber == student.PageNumber {
			s.Pages[i].Students = append(s.Pages[i].Students, student)
			return
		}
	}
	s.Pages = append(s.Pages, ProcessedPage{
		PageNumber: student.PageNumber,
		Status:     PageCompleted,
		Students:   []StudentAnswerSheet{student},
	})
}

// Students flattens the students of every page in page order.
func (s *ProcessingSession) Students() []StudentAnswerSheet {
	var out []StudentAnswerSheet
	for _, page := range s.Pages {
		out = append(out, page.Students...)
	}
	return out
}

// Clone returns a deep copy so stored sessions are never aliased by callers.
func (s *ProcessingSession) Clone() *ProcessingSession {
	c := *s
	c.Pages = make([]ProcessedPage, len(s.Pages))
	for i, page := range s.Pages {
		page.Students = append([]StudentAnswerSheet(nil), page.Students...)
		c.Pages[i] = page
	}
	return &c
}
