package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SessionSource 读取已保存的面试，找不到时返回包装了 ErrNotFound 的错误
type SessionSource interface {
	LoadSession(ctx context.Context, id string) (*StoredSession, error)
}

type Loader struct {
	source SessionSource
	log    *zap.Logger
}

func NewLoader(source SessionSource, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{source: source, log: log}
}

// Load 读取一场面试并解析题目列表
func (l *Loader) Load(ctx context.Context, id string) (*InterviewSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	stored, err := l.source.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	questions, err := ParseQuestions(stored.QuestionsJSON)
	if err != nil {
		l.log.Warn("interview has unparsable questions", zap.String("mockId", id), zap.Error(err))
		return nil, fmt.Errorf("interview %s: %w", id, err)
	}

	return NewInterviewSession(*stored, questions), nil
}
