package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mock_interview_backend/internal/interview"
	"mock_interview_backend/internal/model"
	"mock_interview_backend/pkg/monitoring"
	"mock_interview_backend/pkg/tracing"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnswerStore 持久化评分结果
type AnswerStore interface {
	Upsert(ctx context.Context, a *model.UserAnswer) (bool, error)
}

// GradingService 实现 interview.Grader：请求模型评分、解析结果、按题目覆盖写入
type GradingService struct {
	ai      ChatCompleter
	answers AnswerStore
	log     *zap.Logger
	now     func() time.Time
}

func NewGradingService(ai ChatCompleter, answers AnswerStore, log *zap.Logger) *GradingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GradingService{ai: ai, answers: answers, log: log, now: time.Now}
}

type Evaluation struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// ParseEvaluation 容忍代码块包裹和前后说明文字。评分可以是数字或 "8"、"8/10" 这类字符串，
// 小数四舍五入，最终必须落在 1..10。
func ParseEvaluation(raw string) (Evaluation, error) {
	cleaned := interview.CleanJSON(raw)
	var payload struct {
		Rating   json.RawMessage `json:"rating"`
		Score    json.RawMessage `json:"score"`
		Feedback string          `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Evaluation{}, fmt.Errorf("%w: %v", interview.ErrGradingParse, err)
	}
	rawRating := payload.Rating
	if len(rawRating) == 0 || string(rawRating) == "null" {
		rawRating = payload.Score
	}
	rating, err := parseRating(rawRating)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Rating: rating, Feedback: strings.TrimSpace(payload.Feedback)}, nil
}

func parseRating(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: missing rating", interview.ErrGradingParse)
	}

	var value float64
	var num float64
	var str string
	switch {
	case json.Unmarshal(raw, &num) == nil:
		value = num
	case json.Unmarshal(raw, &str) == nil:
		s := strings.TrimSpace(str)
		if i := strings.IndexAny(s, "/ "); i > 0 {
			s = s[:i]
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: rating %q is not a number", interview.ErrGradingParse, str)
		}
		value = f
	default:
		return 0, fmt.Errorf("%w: rating has unexpected type", interview.ErrGradingParse)
	}

	// 先校验区间再取整，0.6 或 10.4 这类越界分数直接拒绝
	if math.IsNaN(value) || value < 1 || value > 10 {
		return 0, fmt.Errorf("%w: rating %v out of range", interview.ErrGradingParse, value)
	}
	return int(math.Round(value)), nil
}

// Grade 永不 panic，也不返回 error：所有失败都体现在 Outcome 中
func (s *GradingService) Grade(ctx context.Context, req interview.GradeRequest) (out interview.Outcome) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "interview.grade",
		attribute.String("interview.mock_id", req.SessionID),
		attribute.Int("interview.question_index", req.Index),
	)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("grading panicked", zap.Any("panic", r), zap.String("mockId", req.SessionID))
			out = interview.Outcome{Err: fmt.Errorf("%w: internal error", interview.ErrEvaluator)}
		}
		monitoring.GradingDuration.Observe(time.Since(start).Seconds())
		monitoring.GradingTotal.WithLabelValues(gradingResult(out)).Inc()
		tracing.EndSpan(span, out.Err)
	}()

	log := s.log.With(zap.String("mockId", req.SessionID), zap.Int("index", req.Index))

	raw, err := s.ai.Chat(ctx, []AIChatMessage{
		{Role: openai.ChatMessageRoleSystem, Content: evaluationSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: evaluationPrompt(req.Question, req.ReferenceAnswer, req.Answer)},
	})
	if err != nil {
		if !errors.Is(err, interview.ErrEvaluator) {
			err = fmt.Errorf("%w: %v", interview.ErrEvaluator, err)
		}
		log.Warn("evaluator request failed", zap.Error(err))
		return interview.Outcome{Err: err}
	}

	eval, err := ParseEvaluation(raw)
	if err != nil {
		log.Warn("evaluator response could not be parsed", zap.Error(err), zap.Int("length", len(raw)))
		return interview.Outcome{Err: err}
	}

	rating := eval.Rating
	record := &model.UserAnswer{
		MockIDRef:  req.SessionID,
		Question:   req.Question,
		CorrectAns: req.ReferenceAnswer,
		UserAns:    req.Answer,
		Feedback:   eval.Feedback,
		Rating:     &rating,
		UserEmail:  req.UserID,
		AnsweredAt: s.now(),
	}
	updated, err := s.answers.Upsert(ctx, record)
	if err != nil {
		log.Error("failed to save answer", zap.Error(err))
		return interview.Outcome{Err: fmt.Errorf("%w: %v", interview.ErrPersistence, err)}
	}

	log.Info("answer graded", zap.Int("rating", rating), zap.Bool("updated", updated))
	return interview.Outcome{OK: true, Rating: rating, Feedback: eval.Feedback, Updated: updated}
}

func gradingResult(out interview.Outcome) string {
	switch {
	case out.OK:
		return "ok"
	case errors.Is(out.Err, interview.ErrGradingParse):
		return "parse_error"
	case errors.Is(out.Err, interview.ErrPersistence):
		return "persistence_error"
	default:
		return "evaluator_error"
	}
}
