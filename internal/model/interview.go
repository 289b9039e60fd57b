package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"mock_interview_backend/internal/interview"

	"gorm.io/gorm"
)

// swagger:model MockInterview
type MockInterview struct {
	BaseModel
	MockID        string `gorm:"column:mock_id;uniqueIndex;size:36;not null" json:"mockId"`
	JSONMockResp  string `gorm:"column:json_mock_resp;type:text;not null" json:"-"`
	JobPosition   string `gorm:"size:255;not null" json:"jobPosition"`
	JobDesc       string `gorm:"type:text;not null" json:"jobDesc"`
	JobExperience string `gorm:"size:50;not null" json:"jobExperience"`
	CreatedBy     string `gorm:"size:191;index;not null" json:"createdBy"`
}

func (MockInterview) TableName() string {
	return "mock_interviews"
}

func (m *MockInterview) BeforeCreate(tx *gorm.DB) (err error) {
	if m.MockID == "" {
		m.MockID = GenerateUUID()
	}
	return
}

func (m *MockInterview) ToStored() *interview.StoredSession {
	return &interview.StoredSession{
		ID:            m.MockID,
		Role:          m.JobPosition,
		Description:   m.JobDesc,
		Experience:    m.JobExperience,
		QuestionsJSON: m.JSONMockResp,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// UserAnswer is one graded answer. (mock_id_ref, question_key, user_email) is
// unique; question_key is a digest of the question so the index stays within
// key length limits whatever the question length.
//
// swagger:model UserAnswer
type UserAnswer struct {
	BaseModel
	MockIDRef   string    `gorm:"column:mock_id_ref;size:36;not null;uniqueIndex:idx_user_answer_turn,priority:1" json:"mockIdRef"`
	QuestionKey string    `gorm:"size:64;not null;uniqueIndex:idx_user_answer_turn,priority:2" json:"-"`
	UserEmail   string    `gorm:"size:191;not null;uniqueIndex:idx_user_answer_turn,priority:3;index" json:"userEmail"`
	Question    string    `gorm:"type:text;not null" json:"question"`
	CorrectAns  string    `gorm:"type:text" json:"correctAns"`
	UserAns     string    `gorm:"type:text" json:"userAns"`
	Feedback    string    `gorm:"type:text" json:"feedback"`
	Rating      *int      `json:"rating"`
	AnsweredAt  time.Time `json:"answeredAt"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}

func (a *UserAnswer) BeforeSave(tx *gorm.DB) (err error) {
	a.QuestionKey = QuestionKey(a.Question)
	return
}

// QuestionKey normalizes whitespace before hashing so regenerated text with
// different spacing still maps to the same row.
func QuestionKey(question string) string {
	sum := sha256.Sum256([]byte(strings.Join(strings.Fields(question), " ")))
	return hex.EncodeToString(sum[:])
}

func (a *UserAnswer) ToRecord() interview.AnswerRecord {
	return interview.AnswerRecord{
		ID:              a.ID,
		SessionID:       a.MockIDRef,
		Question:        a.Question,
		ReferenceAnswer: a.CorrectAns,
		UserAnswer:      a.UserAns,
		Rating:          a.Rating,
		Feedback:        a.Feedback,
		UserID:          a.UserEmail,
		CreatedAt:       a.AnsweredAt,
	}
}

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{
		&MockInterview{},
		&UserAnswer{},
	}
}
