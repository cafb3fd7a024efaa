package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// AttemptRepository handles persistence of quiz attempts and graded answers.
type AttemptRepository struct {
	db *sqlx.DB
}

// NewAttemptRepository constructs the repository.
func NewAttemptRepository(db *sqlx.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// ExistsByQuizAndStudent checks whether the student already submitted the quiz.
func (r *AttemptRepository) ExistsByQuizAndStudent(ctx context.Context, quizID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM quiz_attempts WHERE quiz_id = $1 AND student_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, quizID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check quiz attempt: %w", err)
	}
	return true, nil
}

// CreateWithAnswers inserts the attempt and its graded answers in one
// transaction. The unique index on (quiz_id, student_id) closes the
// check-then-insert race: the loser of a concurrent submission gets
// DuplicateSubmission instead of a second attempt row.
func (r *AttemptRepository) CreateWithAnswers(ctx context.Context, attempt *models.QuizAttempt, answers []models.Answer) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.SubmittedAt.IsZero() {
		attempt.SubmittedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attempt insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertAttempt = `INSERT INTO quiz_attempts (id, quiz_id, student_id, submitted_at, score, max_score, grading_latency_ms)
        VALUES (:id, :quiz_id, :student_id, :submitted_at, :score, :max_score, :grading_latency_ms)`
	if _, err := tx.NamedExecContext(ctx, insertAttempt, attempt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.ErrDuplicateSubmission
		}
		return fmt.Errorf("create quiz attempt: %w", err)
	}

	const insertAnswer = `INSERT INTO answers (id, attempt_id, question_id, response_value, is_correct, awarded_points)
        VALUES (:id, :attempt_id, :question_id, :response_value, :is_correct, :awarded_points)`
	for i := range answers {
		if answers[i].ID == "" {
			answers[i].ID = uuid.NewString()
		}
		answers[i].AttemptID = attempt.ID
		if _, err := tx.NamedExecContext(ctx, insertAnswer, answers[i]); err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt insert: %w", err)
	}
	return nil
}

// ListGradesByStudent returns the student's attempts with quiz context, newest first.
func (r *AttemptRepository) ListGradesByStudent(ctx context.Context, studentID string) ([]models.GradeRecord, error) {
	const query = `SELECT a.quiz_id, q.title AS quiz_title, a.score, a.max_score, a.submitted_at, a.grading_latency_ms
        FROM quiz_attempts a
        JOIN quizzes q ON q.id = a.quiz_id
        WHERE a.student_id = $1
        ORDER BY a.submitted_at DESC`
	var grades []models.GradeRecord
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListExportRowsByQuiz returns all attempts for one quiz, for the admin export.
func (r *AttemptRepository) ListExportRowsByQuiz(ctx context.Context, quizID string) ([]models.AttemptExportRow, error) {
	const query = `SELECT id AS attempt_id, student_id, score, max_score, submitted_at
        FROM quiz_attempts WHERE quiz_id = $1 ORDER BY submitted_at ASC`
	var rows []models.AttemptExportRow
	if err := r.db.SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("list attempt export rows: %w", err)
	}
	return rows, nil
}
