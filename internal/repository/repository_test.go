package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mock_interview_backend/internal/interview"
	"mock_interview_backend/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func intPtr(v int) *int { return &v }

func TestInterviewRepositoryLoadSession(t *testing.T) {
	repo := NewInterviewRepository(setupDB(t))
	ctx := context.Background()

	m := &model.MockInterview{
		JSONMockResp:  `[{"question":"Q1","answer":"A1"}]`,
		JobPosition:   "Backend Engineer",
		JobDesc:       "Go, MySQL",
		JobExperience: "3",
		CreatedBy:     "a@example.com",
	}
	require.NoError(t, repo.Create(ctx, m))
	require.NotEmpty(t, m.MockID)

	stored, err := repo.LoadSession(ctx, m.MockID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", stored.Role)
	assert.Equal(t, m.JSONMockResp, stored.QuestionsJSON)

	_, err = repo.LoadSession(ctx, "missing")
	assert.ErrorIs(t, err, interview.ErrNotFound)

	loaded, err := interview.NewLoader(repo, nil).Load(ctx, m.MockID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.QuestionCount())
}

func TestInterviewRepositoryListByCreator(t *testing.T) {
	repo := NewInterviewRepository(setupDB(t))
	ctx := context.Background()

	for i, owner := range []string{"a@example.com", "b@example.com", "a@example.com"} {
		require.NoError(t, repo.Create(ctx, &model.MockInterview{
			JSONMockResp: "[]", JobPosition: fmt.Sprintf("role %d", i), JobDesc: "d", JobExperience: "1", CreatedBy: owner,
		}))
	}

	list, err := repo.ListByCreator(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "role 2", list[0].JobPosition)

	n, err := repo.CountByCreator(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAnswerRepositoryUpsertOverwrites(t *testing.T) {
	repo := NewAnswerRepository(setupDB(t))
	ctx := context.Background()

	first := &model.UserAnswer{
		MockIDRef: "m1", Question: "What is a goroutine?", UserEmail: "a@example.com",
		UserAns: "a thread", Rating: intPtr(4), Feedback: "thin",
	}
	updated, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.False(t, updated)

	second := &model.UserAnswer{
		MockIDRef: "m1", Question: "What is a goroutine?", UserEmail: "a@example.com",
		UserAns: "a lightweight thread run by the Go scheduler", Rating: intPtr(8), Feedback: "better",
		AnsweredAt: time.Now().Add(time.Minute),
	}
	updated, err = repo.Upsert(ctx, second)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, first.ID, second.ID)

	list, err := repo.ListBySession(ctx, "m1", "a@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 8, *list[0].Rating)
	assert.Equal(t, "better", list[0].Feedback)
	assert.Equal(t, "a lightweight thread run by the Go scheduler", list[0].UserAns)

	// Another user or question gets its own row.
	_, err = repo.Upsert(ctx, &model.UserAnswer{MockIDRef: "m1", Question: "What is a goroutine?", UserEmail: "b@example.com", Rating: intPtr(6)})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, &model.UserAnswer{MockIDRef: "m1", Question: "Explain channels.", UserEmail: "a@example.com", Rating: intPtr(9)})
	require.NoError(t, err)

	list, err = repo.ListBySession(ctx, "m1", "a@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "What is a goroutine?", list[0].Question)
}

func TestAnswerRepositoryStats(t *testing.T) {
	repo := NewAnswerRepository(setupDB(t))
	ctx := context.Background()

	for _, a := range []model.UserAnswer{
		{MockIDRef: "m1", Question: "q1", UserEmail: "a@example.com", Rating: intPtr(9)},
		{MockIDRef: "m1", Question: "q2", UserEmail: "a@example.com", Rating: intPtr(5)},
		{MockIDRef: "m2", Question: "q1", UserEmail: "a@example.com", Rating: intPtr(3)},
		{MockIDRef: "m1", Question: "q1", UserEmail: "b@example.com", Rating: intPtr(1)},
	} {
		a := a
		_, err := repo.Upsert(ctx, &a)
		require.NoError(t, err)
	}

	stats, err := repo.StatsBySessions(ctx, "a@example.com", []string{"m1", "m2", "m3"})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(2), stats["m1"].Answers)
	require.NotNil(t, stats["m1"].AvgRating)
	assert.InDelta(t, 7.0, *stats["m1"].AvgRating, 0.001)
	assert.Equal(t, int64(1), stats["m2"].Answers)

	empty, err := repo.StatsBySessions(ctx, "a@example.com", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type countingSource struct {
	calls int
	inner interview.SessionSource
}

func (s *countingSource) LoadSession(ctx context.Context, id string) (*interview.StoredSession, error) {
	s.calls++
	return s.inner.LoadSession(ctx, id)
}

func TestCachedSessionSource(t *testing.T) {
	repo := NewInterviewRepository(setupDB(t))
	ctx := context.Background()
	m := &model.MockInterview{JSONMockResp: `[{"question":"Q1","answer":"A1"}]`, JobPosition: "SRE", JobDesc: "d", JobExperience: "2", CreatedBy: "a@example.com"}
	require.NoError(t, repo.Create(ctx, m))

	counting := &countingSource{inner: repo}
	cached := NewCachedSessionSource(counting, NewLocalSessionCache(time.Minute), nil)

	for i := 0; i < 3; i++ {
		s, err := cached.LoadSession(ctx, m.MockID)
		require.NoError(t, err)
		assert.Equal(t, "SRE", s.Role)
	}
	assert.Equal(t, 1, counting.calls)

	_, err := cached.LoadSession(ctx, "missing")
	assert.ErrorIs(t, err, interview.ErrNotFound)
}

func TestLocalSessionCacheReturnsCopies(t *testing.T) {
	c := NewLocalSessionCache(time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "m1", &interview.StoredSession{ID: "m1", Role: "SRE"}))

	got, ok, err := c.Get(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)
	got.Role = "changed"

	again, _, _ := c.Get(ctx, "m1")
	assert.Equal(t, "SRE", again.Role)

	require.NoError(t, c.Delete(ctx, "m1"))
	_, ok, _ = c.Get(ctx, "m1")
	assert.False(t, ok)
}
