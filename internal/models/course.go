package models

import "time"

// Course groups chapters of lessons behind an enrollment boundary.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Chapter orders lessons within a course.
type Chapter struct {
	ID       string `db:"id" json:"id"`
	CourseID string `db:"course_id" json:"course_id"`
	Title    string `db:"title" json:"title"`
	Position int    `db:"position" json:"position"`
}

// Lesson is the playable unit. VideoAssetID is nil for text-only lessons.
type Lesson struct {
	ID           string  `db:"id" json:"id"`
	ChapterID    *string `db:"chapter_id" json:"chapter_id,omitempty"`
	Title        string  `db:"title" json:"title"`
	Position     int     `db:"position" json:"position"`
	VideoAssetID *string `db:"video_asset_id" json:"video_asset_id,omitempty"`
}

// CourseDetail is the student-facing course tree.
type CourseDetail struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Chapters    []ChapterDetail `json:"chapters"`
}

// ChapterDetail carries a chapter and its ordered lessons.
type ChapterDetail struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Position int             `json:"position"`
	Lessons  []LessonSummary `json:"lessons"`
}

// LessonSummary hides asset internals from students.
type LessonSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	HasVideo bool   `json:"has_video"`
}
