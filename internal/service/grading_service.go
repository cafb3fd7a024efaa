package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

type questionLoader interface {
	ListQuestions(ctx context.Context, quizID string) ([]models.Question, error)
}

// GradedAnswer is the per-question outcome of one grading pass.
type GradedAnswer struct {
	QuestionID    string  `json:"question_id"`
	ResponseValue string  `json:"response_value"`
	IsCorrect     bool    `json:"is_correct"`
	AwardedPoints float64 `json:"awarded_points"`
}

// GradingResult aggregates a graded submission.
type GradingResult struct {
	Score            float64        `json:"score"`
	MaxScore         float64        `json:"max_score"`
	GradingLatencyMs int            `json:"grading_latency_ms"`
	Answers          []GradedAnswer `json:"answers"`
}

// GradingService deterministically scores submissions against question answer
// keys. It only reads questions and times itself; persistence belongs to the
// quiz service.
type GradingService struct {
	questions questionLoader
	cache     *CacheService
	metrics   *MetricsService
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewGradingService constructs GradingService.
func NewGradingService(questions questionLoader, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *GradingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{questions: questions, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

func questionCacheKey(quizID string) string {
	return "quiz:questions:" + quizID
}

// GradeSubmission loads the quiz's questions and scores the submitted answers.
// Answers referencing unknown question ids are skipped; a malformed answer key
// marks that single answer incorrect and grading continues.
func (s *GradingService) GradeSubmission(ctx context.Context, quizID string, answers []models.SubmittedAnswer) (*GradingResult, error) {
	start := time.Now()

	questions, err := s.loadQuestions(ctx, quizID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load questions")
	}

	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := &GradingResult{Answers: make([]GradedAnswer, 0, len(answers))}
	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			continue
		}

		result.MaxScore += question.Points
		correct := s.evaluate(question, answer.Response)
		awarded := 0.0
		if correct {
			awarded = question.Points
		}
		result.Score += awarded

		result.Answers = append(result.Answers, GradedAnswer{
			QuestionID:    question.ID,
			ResponseValue: answer.Response,
			IsCorrect:     correct,
			AwardedPoints: awarded,
		})
	}

	elapsed := time.Since(start)
	result.GradingLatencyMs = int(elapsed.Milliseconds())
	s.metrics.ObserveGradingLatency(elapsed)

	return result, nil
}

func (s *GradingService) loadQuestions(ctx context.Context, quizID string) ([]models.Question, error) {
	key := questionCacheKey(quizID)
	var cached []models.Question
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	questions, err := s.questions.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, questions, s.cacheTTL)
	return questions, nil
}

// evaluate dispatches on question type. Any failure while decoding the answer
// key or the response grades that answer incorrect; it never aborts the rest
// of the submission.
func (s *GradingService) evaluate(question models.Question, response string) bool {
	var correct bool
	var err error

	switch question.Type {
	case models.QuestionTypeMCQ:
		correct, err = evaluateMCQ(question.AnswerKey, response)
	case models.QuestionTypeTrueFalse:
		correct, err = evaluateTrueFalse(question.AnswerKey, response)
	case models.QuestionTypeNumeric:
		correct, err = evaluateNumeric(question.AnswerKey, response)
	default:
		s.logger.Error("unknown question type",
			zap.String("question_id", question.ID),
			zap.String("type", string(question.Type)))
		return false
	}

	if err != nil {
		s.logger.Error("failed to evaluate answer",
			zap.String("question_id", question.ID),
			zap.Error(err))
		return false
	}
	return correct
}

func evaluateMCQ(answerKey json.RawMessage, response string) (bool, error) {
	var key models.MCQAnswerKey
	if err := json.Unmarshal(answerKey, &key); err != nil {
		return false, err
	}
	correctIndex := -1
	if key.CorrectIndex != nil {
		correctIndex = *key.CorrectIndex
	}
	selected, err := strconv.Atoi(strings.TrimSpace(response))
	if err != nil {
		return false, nil
	}
	return selected == correctIndex, nil
}

func evaluateTrueFalse(answerKey json.RawMessage, response string) (bool, error) {
	var key models.TrueFalseAnswerKey
	if err := json.Unmarshal(answerKey, &key); err != nil {
		return false, err
	}
	// Lenient parse: anything other than "true" (case-insensitive) is false.
	given := strings.EqualFold(strings.TrimSpace(response), "true")
	return given == key.Value, nil
}

func evaluateNumeric(answerKey json.RawMessage, response string) (bool, error) {
	var key models.NumericAnswerKey
	if err := json.Unmarshal(answerKey, &key); err != nil {
		return false, err
	}
	tolerance := 0.01
	if key.Tolerance != nil {
		tolerance = *key.Tolerance
	}
	actual, err := strconv.ParseFloat(strings.TrimSpace(response), 64)
	if err != nil {
		return false, nil
	}
	diff := actual - key.Value
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance, nil
}
