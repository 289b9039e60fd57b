package repository

import (
	"context"
	"errors"
	"time"

	"mock_interview_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// AnswerStat 单场面试的答题统计
type AnswerStat struct {
	MockIDRef string   `gorm:"column:mock_id_ref"`
	Answers   int64    `gorm:"column:answers"`
	AvgRating *float64 `gorm:"column:avg_rating"`
}

// Upsert 按 (mock_id_ref, question, user_email) 覆盖或插入答题记录。
// updated 为 true 表示覆盖了已有记录。
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.UserAnswer) (updated bool, err error) {
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now()
	}
	key := model.QuestionKey(a.Question)

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.UserAnswer
		findErr := tx.Where("mock_id_ref = ? AND question_key = ? AND user_email = ?", a.MockIDRef, key, a.UserEmail).
			First(&existing).Error
		switch {
		case findErr == nil:
			updated = true
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			return tx.Model(&existing).Updates(map[string]interface{}{
				"user_ans":    a.UserAns,
				"correct_ans": a.CorrectAns,
				"rating":      a.Rating,
				"feedback":    a.Feedback,
				"answered_at": a.AnsweredAt,
			}).Error
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			return tx.Create(a).Error
		default:
			return findErr
		}
	})
	return updated, err
}

// ListBySession 按插入顺序返回某用户在一场面试中的答题记录
func (r *AnswerRepository) ListBySession(ctx context.Context, mockID, email string) ([]model.UserAnswer, error) {
	var list []model.UserAnswer
	err := r.DB.WithContext(ctx).
		Where("mock_id_ref = ? AND user_email = ?", mockID, email).
		Order("id asc").
		Find(&list).Error
	return list, err
}

func (r *AnswerRepository) ListByUser(ctx context.Context, email string) ([]model.UserAnswer, error) {
	var list []model.UserAnswer
	err := r.DB.WithContext(ctx).Where("user_email = ?", email).Order("id asc").Find(&list).Error
	return list, err
}

func (r *AnswerRepository) StatsBySessions(ctx context.Context, email string, mockIDs []string) (map[string]AnswerStat, error) {
	out := make(map[string]AnswerStat, len(mockIDs))
	if len(mockIDs) == 0 {
		return out, nil
	}
	var rows []AnswerStat
	err := r.DB.WithContext(ctx).Model(&model.UserAnswer{}).
		Select("mock_id_ref, COUNT(*) AS answers, AVG(rating) AS avg_rating").
		Where("user_email = ? AND mock_id_ref IN ?", email, mockIDs).
		Group("mock_id_ref").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MockIDRef] = row
	}
	return out, nil
}
