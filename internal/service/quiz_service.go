package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

type quizReader interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	ListPublishedByCourse(ctx context.Context, courseID string) ([]models.Quiz, error)
	ListQuestions(ctx context.Context, quizID string) ([]models.Question, error)
}

type attemptRepository interface {
	ExistsByQuizAndStudent(ctx context.Context, quizID, studentID string) (bool, error)
	CreateWithAnswers(ctx context.Context, attempt *models.QuizAttempt, answers []models.Answer) error
	ListGradesByStudent(ctx context.Context, studentID string) ([]models.GradeRecord, error)
}

// SubmitQuizRequest describes a quiz submission payload.
type SubmitQuizRequest struct {
	Answers []models.SubmittedAnswer `json:"answers" validate:"required,dive"`
}

// SubmissionResult is returned to the student after grading.
type SubmissionResult struct {
	AttemptID        string  `json:"attempt_id"`
	Score            float64 `json:"score"`
	MaxScore         float64 `json:"max_score"`
	GradingLatencyMs int     `json:"grading_latency_ms"`
}

// QuizService exposes quizzes to students and owns the exactly-once
// submission path.
type QuizService struct {
	quizzes     quizReader
	attempts    attemptRepository
	enrollments enrollmentChecker
	grading     *GradingService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewQuizService constructs QuizService.
func NewQuizService(quizzes quizReader, attempts attemptRepository, enrollments enrollmentChecker, grading *GradingService, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{quizzes: quizzes, attempts: attempts, enrollments: enrollments, grading: grading, validator: validate, logger: logger}
}

// GetForStudent returns a published quiz with answer keys stripped. An
// unpublished quiz is reported as absent, never as forbidden.
func (s *QuizService) GetForStudent(ctx context.Context, quizID, studentID string) (*models.QuizDetail, error) {
	quiz, err := s.loadPublished(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, studentID, quiz.CourseID); err != nil {
		return nil, err
	}

	questions, err := s.quizzes.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load questions")
	}

	views := make([]models.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, models.QuestionView{
			ID:           q.ID,
			Type:         q.Type,
			PromptText:   q.PromptText,
			LatexEnabled: q.LatexEnabled,
			Points:       q.Points,
			Position:     q.Position,
		})
	}

	return &models.QuizDetail{
		ID:               quiz.ID,
		CourseID:         quiz.CourseID,
		Title:            quiz.Title,
		TimeLimitSeconds: quiz.TimeLimitSeconds,
		Questions:        views,
	}, nil
}

// ListForCourse returns the published quizzes of a course the student holds.
func (s *QuizService) ListForCourse(ctx context.Context, courseID, studentID string) ([]models.QuizSummary, error) {
	if err := s.requireEnrollment(ctx, studentID, courseID); err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.ListPublishedByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list quizzes")
	}
	summaries := make([]models.QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, models.QuizSummary{ID: quiz.ID, Title: quiz.Title})
	}
	return summaries, nil
}

// Submit grades the submission and persists the single permitted attempt.
func (s *QuizService) Submit(ctx context.Context, quizID, studentID string, req SubmitQuizRequest) (*SubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	quiz, err := s.loadPublished(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, studentID, quiz.CourseID); err != nil {
		return nil, err
	}

	exists, err := s.attempts.ExistsByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attempt")
	}
	if exists {
		return nil, appErrors.ErrDuplicateSubmission
	}

	result, err := s.grading.GradeSubmission(ctx, quizID, req.Answers)
	if err != nil {
		return nil, err
	}

	attempt := &models.QuizAttempt{
		QuizID:           quizID,
		StudentID:        studentID,
		Score:            result.Score,
		MaxScore:         result.MaxScore,
		GradingLatencyMs: result.GradingLatencyMs,
	}
	answers := make([]models.Answer, 0, len(result.Answers))
	for _, ga := range result.Answers {
		answers = append(answers, models.Answer{
			QuestionID:    ga.QuestionID,
			ResponseValue: ga.ResponseValue,
			IsCorrect:     ga.IsCorrect,
			AwardedPoints: ga.AwardedPoints,
		})
	}

	if err := s.attempts.CreateWithAnswers(ctx, attempt, answers); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrDuplicateSubmission.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist attempt")
	}

	s.logger.Info("quiz submitted",
		zap.String("quiz_id", quizID),
		zap.String("student_id", studentID),
		zap.Float64("score", result.Score),
		zap.Int("grading_latency_ms", result.GradingLatencyMs))

	return &SubmissionResult{
		AttemptID:        attempt.ID,
		Score:            result.Score,
		MaxScore:         result.MaxScore,
		GradingLatencyMs: result.GradingLatencyMs,
	}, nil
}

// GradesForStudent lists the student's graded attempts, newest first.
func (s *QuizService) GradesForStudent(ctx context.Context, studentID string) ([]models.GradeRecord, error) {
	grades, err := s.attempts.ListGradesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

func (s *QuizService) loadPublished(ctx context.Context, quizID string) (*models.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	if quiz.Status != models.QuizStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
	}
	return quiz, nil
}

func (s *QuizService) requireEnrollment(ctx context.Context, studentID, courseID string) error {
	enrolled, err := s.enrollments.ExistsActive(ctx, studentID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return appErrors.ErrEnrollmentRequired
	}
	return nil
}
