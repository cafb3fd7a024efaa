package models

import "time"

// QuizAttempt is the single permitted submission per (quiz, student).
// Created exactly once and never mutated.
type QuizAttempt struct {
	ID               string    `db:"id" json:"id"`
	QuizID           string    `db:"quiz_id" json:"quiz_id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	SubmittedAt      time.Time `db:"submitted_at" json:"submitted_at"`
	Score            float64   `db:"score" json:"score"`
	MaxScore         float64   `db:"max_score" json:"max_score"`
	GradingLatencyMs int       `db:"grading_latency_ms" json:"grading_latency_ms"`
}

// Answer records the graded outcome for one question of an attempt.
type Answer struct {
	ID            string  `db:"id" json:"id"`
	AttemptID     string  `db:"attempt_id" json:"attempt_id"`
	QuestionID    string  `db:"question_id" json:"question_id"`
	ResponseValue string  `db:"response_value" json:"response_value"`
	IsCorrect     bool    `db:"is_correct" json:"is_correct"`
	AwardedPoints float64 `db:"awarded_points" json:"awarded_points"`
}

// GradeRecord enriches an attempt with quiz context for grade listings.
type GradeRecord struct {
	QuizID           string    `db:"quiz_id" json:"quiz_id"`
	QuizTitle        string    `db:"quiz_title" json:"quiz_title"`
	Score            float64   `db:"score" json:"score"`
	MaxScore         float64   `db:"max_score" json:"max_score"`
	SubmittedAt      time.Time `db:"submitted_at" json:"submitted_at"`
	GradingLatencyMs int       `db:"grading_latency_ms" json:"grading_latency_ms"`
}

// AttemptExportRow is one line of the admin attempts export.
type AttemptExportRow struct {
	AttemptID   string    `db:"attempt_id"`
	StudentID   string    `db:"student_id"`
	Score       float64   `db:"score"`
	MaxScore    float64   `db:"max_score"`
	SubmittedAt time.Time `db:"submitted_at"`
}
