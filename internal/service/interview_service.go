package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mock_interview_backend/internal/interview"
	"mock_interview_backend/internal/model"
	"mock_interview_backend/internal/repository"
	"mock_interview_backend/internal/util"
	"mock_interview_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type CreateInterviewRequest struct {
	JobPosition   string `json:"jobPosition" binding:"required,max=255"`
	JobDesc       string `json:"jobDesc" binding:"required,max=4000"`
	JobExperience string `json:"jobExperience" binding:"required,max=50"`
}

// InterviewSummary 列表项，附带当前用户的答题数与平均分
type InterviewSummary struct {
	MockID        string         `json:"mockId"`
	JobPosition   string         `json:"jobPosition"`
	JobExperience string         `json:"jobExperience"`
	CreatedAt     time.Time      `json:"createdAt"`
	AnswerCount   int64          `json:"answerCount"`
	AverageRating *float64       `json:"averageRating"`
	Band          interview.Band `json:"band,omitempty"`
}

// InterviewDetail 面试详情，不含参考答案
type InterviewDetail struct {
	MockID        string    `json:"mockId"`
	JobPosition   string    `json:"jobPosition"`
	JobDesc       string    `json:"jobDesc"`
	JobExperience string    `json:"jobExperience"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	Questions     []string  `json:"questions"`
}

type DashboardStats struct {
	InterviewCount int64                     `json:"interviewCount"`
	AnsweredCount  int                       `json:"answeredCount"`
	Summary        interview.FeedbackSummary `json:"summary"`
	Bands          map[interview.Band]int    `json:"bands"`
	Recent         []InterviewSummary        `json:"recent"`
}

type ExportResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type InterviewService struct {
	interviews    *repository.InterviewRepository
	answers       *repository.AnswerRepository
	loader        *interview.Loader
	ai            ChatCompleter
	storage       *StorageService
	questionCount int
	log           *zap.Logger
}

func NewInterviewService(
	interviews *repository.InterviewRepository,
	answers *repository.AnswerRepository,
	loader *interview.Loader,
	ai ChatCompleter,
	storage *StorageService,
	questionCount int,
	log *zap.Logger,
) *InterviewService {
	if log == nil {
		log = zap.NewNop()
	}
	if questionCount <= 0 {
		questionCount = 5
	}
	return &InterviewService{
		interviews:    interviews,
		answers:       answers,
		loader:        loader,
		ai:            ai,
		storage:       storage,
		questionCount: questionCount,
		log:           log,
	}
}

// Create 调用模型出题并保存，题目解析失败时不落库
func (s *InterviewService) Create(ctx context.Context, owner string, req CreateInterviewRequest) (*model.MockInterview, error) {
	position := strings.TrimSpace(req.JobPosition)
	desc := strings.TrimSpace(req.JobDesc)
	exp := strings.TrimSpace(req.JobExperience)
	if position == "" || desc == "" || exp == "" {
		return nil, fmt.Errorf("%w: job position, description and experience are required", util.ErrInvalidInput)
	}

	raw, questions, err := generateQuestions(ctx, s.ai, position, desc, exp, s.questionCount)
	if err != nil {
		s.log.Warn("question generation failed", zap.String("owner", owner), zap.Error(err))
		return nil, err
	}

	m := &model.MockInterview{
		MockID:        model.GenerateUUID(),
		JSONMockResp:  raw,
		JobPosition:   position,
		JobDesc:       desc,
		JobExperience: exp,
		CreatedBy:     owner,
	}
	if err := s.interviews.Create(ctx, m); err != nil {
		return nil, err
	}
	monitoring.InterviewsCreated.Inc()
	s.log.Info("interview created",
		zap.String("mockId", m.MockID), zap.String("owner", owner), zap.Int("questions", len(questions)))
	return m, nil
}

func (s *InterviewService) List(ctx context.Context, owner string) ([]InterviewSummary, error) {
	list, err := s.interviews.ListByCreator(ctx, owner)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.MockID)
	}
	stats, err := s.answers.StatsBySessions(ctx, owner, ids)
	if err != nil {
		return nil, err
	}

	out := make([]InterviewSummary, 0, len(list))
	for _, m := range list {
		item := InterviewSummary{
			MockID:        m.MockID,
			JobPosition:   m.JobPosition,
			JobExperience: m.JobExperience,
			CreatedAt:     m.CreatedAt,
		}
		if st, ok := stats[m.MockID]; ok {
			item.AnswerCount = st.Answers
			if st.AvgRating != nil {
				avg := interview.RoundRating(*st.AvgRating)
				item.AverageRating = &avg
				item.Band = interview.RatingBand(avg)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *InterviewService) Get(ctx context.Context, mockID string) (*InterviewDetail, error) {
	session, err := s.loader.Load(ctx, mockID)
	if err != nil {
		return nil, err
	}
	detail := &InterviewDetail{
		MockID:        session.ID,
		JobPosition:   session.Role,
		JobDesc:       session.Description,
		JobExperience: session.Experience,
		CreatedBy:     session.CreatedBy,
		CreatedAt:     session.CreatedAt,
	}
	for _, q := range session.Questions() {
		detail.Questions = append(detail.Questions, q.Question)
	}
	return detail, nil
}

// Feedback 返回当前用户在该面试中的全部答题及汇总
func (s *InterviewService) Feedback(ctx context.Context, mockID, user string) (*interview.FeedbackReport, error) {
	if _, err := s.interviews.FindByMockID(ctx, mockID); err != nil {
		return nil, err
	}
	rows, err := s.answers.ListBySession(ctx, mockID, user)
	if err != nil {
		return nil, err
	}
	records := make([]interview.AnswerRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToRecord())
	}
	report := interview.BuildReport(mockID, records)
	return &report, nil
}

func (s *InterviewService) Dashboard(ctx context.Context, user string) (*DashboardStats, error) {
	count, err := s.interviews.CountByCreator(ctx, user)
	if err != nil {
		return nil, err
	}
	rows, err := s.answers.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	records := make([]interview.AnswerRecord, 0, len(rows))
	bands := map[interview.Band]int{
		interview.BandStrong: 0,
		interview.BandGood:   0,
		interview.BandFair:   0,
		interview.BandWeak:   0,
	}
	for i := range rows {
		rec := rows[i].ToRecord()
		records = append(records, rec)
		if rec.Rating != nil {
			bands[interview.RatingBand(float64(*rec.Rating))]++
		}
	}

	recent, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &DashboardStats{
		InterviewCount: count,
		AnsweredCount:  len(rows),
		Summary:        interview.Summarize(records),
		Bands:          bands,
		Recent:         recent,
	}, nil
}

// ExportFeedback 将反馈报告以 JSON 上传到存储，返回访问地址
func (s *InterviewService) ExportFeedback(ctx context.Context, mockID, user string) (*ExportResult, error) {
	report, err := s.Feedback(ctx, mockID, user)
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}

	sum := sha1.Sum([]byte(user))
	filename := fmt.Sprintf("feedback/%s/%s-%s.json", mockID, hex.EncodeToString(sum[:6]), time.Now().Format("20060102150405"))
	url, err := s.storage.Upload(ctx, filename, bytes.NewReader(payload), int64(len(payload)), util.MimeJSON)
	if err != nil {
		s.log.Error("feedback export failed", zap.String("mockId", mockID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrStorage, err)
	}
	return &ExportResult{Filename: filename, URL: url}, nil
}
