package interview

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QAPair 生成的题目及参考答案
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// StoredSession SessionSource 返回的原始记录，题目列表尚未解析
type StoredSession struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Description   string    `json:"description"`
	Experience    string    `json:"experience"`
	QuestionsJSON string    `json:"questionsJson"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// InterviewSession 已加载的面试，加载后不再修改
type InterviewSession struct {
	ID          string
	Role        string
	Description string
	Experience  string
	CreatedBy   string
	CreatedAt   time.Time
	questions   []QAPair
}

func NewInterviewSession(stored StoredSession, questions []QAPair) *InterviewSession {
	qs := make([]QAPair, len(questions))
	copy(qs, questions)
	return &InterviewSession{
		ID:          stored.ID,
		Role:        stored.Role,
		Description: stored.Description,
		Experience:  stored.Experience,
		CreatedBy:   stored.CreatedBy,
		CreatedAt:   stored.CreatedAt,
		questions:   qs,
	}
}

// Questions 返回题目列表的副本
func (s *InterviewSession) Questions() []QAPair {
	qs := make([]QAPair, len(s.questions))
	copy(qs, s.questions)
	return qs
}

func (s *InterviewSession) QuestionCount() int {
	return len(s.questions)
}

func (s *InterviewSession) Question(index int) (QAPair, error) {
	if index < 0 || index >= len(s.questions) {
		return QAPair{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return s.questions[index], nil
}

// CleanJSON 去掉 markdown 代码块标记以及 JSON 前后的多余文字
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closing := byte('}')
	if s[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(s, closing)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// ParseQuestions 解析生成的题目列表，支持裸数组或以任意键包裹数组的对象，可带代码块标记
func ParseQuestions(raw string) ([]QAPair, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty question list", ErrMalformedData)
	}

	var pairs []QAPair
	if err := json.Unmarshal([]byte(cleaned), &pairs); err != nil {
		var wrapper map[string]json.RawMessage
		if werr := json.Unmarshal([]byte(cleaned), &wrapper); werr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		found := false
		for _, v := range wrapper {
			if json.Unmarshal(v, &pairs) == nil && len(pairs) > 0 {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no question array found", ErrMalformedData)
		}
	}

	out := make([]QAPair, 0, len(pairs))
	for _, p := range pairs {
		q := strings.TrimSpace(p.Question)
		if q == "" {
			continue
		}
		out = append(out, QAPair{Question: q, Answer: strings.TrimSpace(p.Answer)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrMalformedData)
	}
	return out, nil
}
