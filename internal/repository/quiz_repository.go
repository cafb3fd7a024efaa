package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/securemath/securemath-api/internal/models"
)

// QuizRepository provides read access to quizzes and their questions.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository constructs the repository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// FindByID returns a quiz by its ID.
func (r *QuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	const query = `SELECT id, course_id, title, status, time_limit_seconds, created_at, updated_at FROM quizzes WHERE id = $1`
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, query, id); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ListPublishedByCourse returns the published quizzes for a course.
func (r *QuizRepository) ListPublishedByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	const query = `SELECT id, course_id, title, status, time_limit_seconds, created_at, updated_at
        FROM quizzes WHERE course_id = $1 AND status = $2 ORDER BY created_at ASC`
	var quizzes []models.Quiz
	if err := r.db.SelectContext(ctx, &quizzes, query, courseID, models.QuizStatusPublished); err != nil {
		return nil, fmt.Errorf("list published quizzes: %w", err)
	}
	return quizzes, nil
}

// ListQuestions returns a quiz's questions in position order, answer keys included.
func (r *QuizRepository) ListQuestions(ctx context.Context, quizID string) ([]models.Question, error) {
	const query = `SELECT id, quiz_id, type, prompt_text, latex_enabled, answer_key, points, position
        FROM questions WHERE quiz_id = $1 ORDER BY position ASC`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query, quizID); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}
