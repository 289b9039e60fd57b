package interview

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]StoredSession

func (m mapSource) LoadSession(_ context.Context, id string) (*StoredSession, error) {
	s, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &s, nil
}

func TestParseQuestions(t *testing.T) {
	cases := map[string]string{
		"bare":    `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`,
		"fenced":  "```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"},{\"question\":\"Q2\",\"answer\":\"A2\"}]\n```",
		"wrapped": `{"questions":[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]}`,
		"prose":   "Here you go:\n[{\"question\":\" Q1 \",\"answer\":\"A1\"},{\"question\":\"Q2\",\"answer\":\"A2\"}]\nGood luck!",
		"aliases": `[{"Question":"Q1","Answer":"A1"},{"Question":"Q2","Answer":"A2"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			qs, err := ParseQuestions(raw)
			require.NoError(t, err)
			assert.Equal(t, []QAPair{{"Q1", "A1"}, {"Q2", "A2"}}, qs)
		})
	}
}

func TestParseQuestionsMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json", "[]", `{"questions":[]}`, `[{"question":"  "}]`, `{"a":1}`} {
		_, err := ParseQuestions(raw)
		assert.ErrorIs(t, err, ErrMalformedData, "input %q", raw)
	}
}

func TestLoaderLoad(t *testing.T) {
	src := mapSource{
		"m1":  {ID: "m1", Role: "SRE", QuestionsJSON: `[{"question":"Q1","answer":"A1"}]`},
		"bad": {ID: "bad", QuestionsJSON: "oops"},
	}
	loader := NewLoader(src, nil)
	ctx := context.Background()

	s, err := loader.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "SRE", s.Role)
	assert.Equal(t, 1, s.QuestionCount())

	again, err := loader.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, s.Questions(), again.Questions())

	_, err = loader.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = loader.Load(ctx, "  ")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = loader.Load(ctx, "bad")
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestInterviewSessionIsImmutable(t *testing.T) {
	s := threeQuestionSession()
	qs := s.Questions()
	qs[0].Question = "changed"

	q, err := s.Question(0)
	require.NoError(t, err)
	assert.Equal(t, "What is a goroutine?", q.Question)

	_, err = s.Question(3)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"rating":8}`, CleanJSON("```json\n{\"rating\":8}\n```"))
	assert.Equal(t, `{"rating":8}`, CleanJSON(`Sure! {"rating":8} Hope this helps.`))
	assert.Equal(t, "plain", CleanJSON("plain"))
}
