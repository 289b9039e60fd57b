package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"mock_interview_backend/internal/interview"
	"mock_interview_backend/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

// fakeAI replays canned replies in order; the last reply repeats.
type fakeAI struct {
	mu      sync.Mutex
	replies []string
	err     error
	panics  bool
	calls   [][]AIChatMessage
}

func (f *fakeAI) Chat(ctx context.Context, messages []AIChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.panics {
		panic("evaluator exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no reply configured")
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingStore struct{}

func (failingStore) Upsert(ctx context.Context, a *model.UserAnswer) (bool, error) {
	return false, errors.New("database is locked")
}

type staticSource map[string]*interview.StoredSession

func (s staticSource) LoadSession(ctx context.Context, id string) (*interview.StoredSession, error) {
	if stored, ok := s[id]; ok {
		copied := *stored
		return &copied, nil
	}
	return nil, fmt.Errorf("%w: %s", interview.ErrNotFound, id)
}

const threeQuestionsJSON = `[
  {"question": "What is a goroutine?", "answer": "A lightweight thread managed by the Go runtime."},
  {"question": "Explain channels.", "answer": "Typed conduits for communication between goroutines."},
  {"question": "What does defer do?", "answer": "Schedules a call to run when the function returns."}
]`

func intPtr(v int) *int { return &v }
