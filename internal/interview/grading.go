package interview

import "context"

// GradeRequest 提交给评分适配器的定稿答案
type GradeRequest struct {
	SessionID       string
	UserID          string
	Index           int
	Question        string
	ReferenceAnswer string
	Answer          string
}

// Outcome 评分结果，失败以值的形式返回，不会 panic
type Outcome struct {
	OK       bool   `json:"ok"`
	Rating   int    `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`
	Updated  bool   `json:"updated,omitempty"`
	Err      error  `json:"-"`
}

// Grader 评估答案并保存记录
type Grader interface {
	Grade(ctx context.Context, req GradeRequest) Outcome
}

type GraderFunc func(ctx context.Context, req GradeRequest) Outcome

func (f GraderFunc) Grade(ctx context.Context, req GradeRequest) Outcome {
	return f(ctx, req)
}
