package repository

import (
	"context"
	"errors"
	"fmt"

	"mock_interview_backend/internal/interview"
	"mock_interview_backend/internal/model"

	"gorm.io/gorm"
)

type InterviewRepository struct {
	DB *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{DB: db}
}

func (r *InterviewRepository) Create(ctx context.Context, m *model.MockInterview) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *InterviewRepository) FindByMockID(ctx context.Context, mockID string) (*model.MockInterview, error) {
	var m model.MockInterview
	err := r.DB.WithContext(ctx).Where("mock_id = ?", mockID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", interview.ErrNotFound, mockID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadSession 实现 interview.SessionSource
func (r *InterviewRepository) LoadSession(ctx context.Context, id string) (*interview.StoredSession, error) {
	m, err := r.FindByMockID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.ToStored(), nil
}

func (r *InterviewRepository) ListByCreator(ctx context.Context, email string) ([]model.MockInterview, error) {
	var list []model.MockInterview
	err := r.DB.WithContext(ctx).
		Where("created_by = ?", email).
		Order("created_at desc, id desc").
		Find(&list).Error
	return list, err
}

func (r *InterviewRepository) CountByCreator(ctx context.Context, email string) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&model.MockInterview{}).Where("created_by = ?", email).Count(&total).Error
	return total, err
}
