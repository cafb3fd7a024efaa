package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/securemath/securemath-api/internal/models"
)

// LessonRepository provides read access to lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindByID returns a lesson by its ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, chapter_id, title, position, video_asset_id FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByChapter returns a chapter's lessons in position order.
func (r *LessonRepository) ListByChapter(ctx context.Context, chapterID string) ([]models.Lesson, error) {
	const query = `SELECT id, chapter_id, title, position, video_asset_id FROM lessons WHERE chapter_id = $1 ORDER BY position ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, chapterID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}
