package models

import (
	"encoding/json"
	"time"
)

// QuizStatus tracks authoring lifecycle. Students only ever see PUBLISHED.
type QuizStatus string

// Quiz statuses.
const (
	QuizStatusDraft     QuizStatus = "DRAFT"
	QuizStatusPublished QuizStatus = "PUBLISHED"
)

// QuestionType selects the answer evaluation strategy.
type QuestionType string

// Supported question types.
const (
	QuestionTypeMCQ       QuestionType = "MCQ"
	QuestionTypeTrueFalse QuestionType = "TRUE_FALSE"
	QuestionTypeNumeric   QuestionType = "NUMERIC"
)

// Quiz is a graded assessment attached to a course.
type Quiz struct {
	ID               string     `db:"id" json:"id"`
	CourseID         string     `db:"course_id" json:"course_id"`
	Title            string     `db:"title" json:"title"`
	Status           QuizStatus `db:"status" json:"status"`
	TimeLimitSeconds *int       `db:"time_limit_seconds" json:"time_limit_seconds,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Question holds the authoritative answer key as an opaque JSON payload;
// the grading engine decodes it per type. Immutable once the quiz is published.
type Question struct {
	ID           string          `db:"id" json:"id"`
	QuizID       string          `db:"quiz_id" json:"quiz_id"`
	Type         QuestionType    `db:"type" json:"type"`
	PromptText   string          `db:"prompt_text" json:"prompt_text"`
	LatexEnabled bool            `db:"latex_enabled" json:"latex_enabled"`
	AnswerKey    json.RawMessage `db:"answer_key" json:"-"`
	Points       float64         `db:"points" json:"points"`
	Position     int             `db:"position" json:"position"`
}

// MCQAnswerKey is the decoded answer key for multiple-choice questions.
// CorrectIndex defaults to -1, which no response can satisfy.
type MCQAnswerKey struct {
	CorrectIndex *int `json:"correctIndex"`
}

// TrueFalseAnswerKey is the decoded answer key for boolean questions.
type TrueFalseAnswerKey struct {
	Value bool `json:"value"`
}

// NumericAnswerKey is the decoded answer key for numeric questions.
// Tolerance defaults to 0.01 when absent.
type NumericAnswerKey struct {
	Value     float64  `json:"value"`
	Tolerance *float64 `json:"tolerance"`
}

// QuestionView strips the answer key for student delivery.
type QuestionView struct {
	ID           string       `json:"id"`
	Type         QuestionType `json:"type"`
	PromptText   string       `json:"prompt_text"`
	LatexEnabled bool         `json:"latex_enabled"`
	Points       float64      `json:"points"`
	Position     int          `json:"position"`
}

// QuizDetail is the student-facing quiz with its ordered questions.
type QuizDetail struct {
	ID               string         `json:"id"`
	CourseID         string         `json:"course_id"`
	Title            string         `json:"title"`
	TimeLimitSeconds *int           `json:"time_limit_seconds,omitempty"`
	Questions        []QuestionView `json:"questions"`
}

// QuizSummary identifies a published quiz in course listings.
type QuizSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SubmittedAnswer is one (question, response) pair in a submission.
type SubmittedAnswer struct {
	QuestionID string `json:"question_id" validate:"required"`
	Response   string `json:"response"`
}
