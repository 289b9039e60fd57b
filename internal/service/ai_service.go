package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mock_interview_backend/internal/config"
	"mock_interview_backend/internal/interview"

	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter 抽象一次非流式对话补全，评分与出题都依赖它
type ChatCompleter interface {
	Chat(ctx context.Context, messages []AIChatMessage) (string, error)
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIService 调用兼容 OpenAI 协议的模型服务
type AIService struct {
	config config.AIConfig
	client *openai.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &AIService{config: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

// Chat 返回第一条候选回复。传输错误与空回复都包装为 interview.ErrEvaluator。
func (s *AIService) Chat(ctx context.Context, messages []AIChatMessage) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: AI API error (status %d): %s", interview.ErrEvaluator, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %v", interview.ErrEvaluator, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", interview.ErrEvaluator)
	}
	return resp.Choices[0].Message.Content, nil
}

const questionSystemPrompt = "You are an experienced technical interviewer. Reply with JSON only."

// questionPrompt 要求模型按岗位信息生成 count 道题目及参考答案
func questionPrompt(position, description, experience string, count int) string {
	return fmt.Sprintf("Job position: %s\nJob description: %s\nYears of experience: %s\n\n"+
		"Based on this information, write %d interview questions with their answers. "+
		"Return a JSON array where each item has a \"question\" field and an \"answer\" field.",
		position, description, experience, count)
}

const evaluationSystemPrompt = "You grade interview answers. Reply with JSON only."

func evaluationPrompt(question, reference, answer string) string {
	return fmt.Sprintf("Question: %s\nReference answer: %s\nUser answer: %s\n\n"+
		"Rate the user answer to this interview question from 1 to 10 and give feedback on "+
		"areas of improvement in 3 to 5 lines. Return JSON with a \"rating\" field and a \"feedback\" field.",
		question, reference, answer)
}

// GenerateQuestions 生成题目并校验能被解析，返回原始 JSON 以便落库
func (s *AIService) GenerateQuestions(ctx context.Context, position, description, experience string, count int) (string, []interview.QAPair, error) {
	return generateQuestions(ctx, s, position, description, experience, count)
}

func generateQuestions(ctx context.Context, ai ChatCompleter, position, description, experience string, count int) (string, []interview.QAPair, error) {
	raw, err := ai.Chat(ctx, []AIChatMessage{
		{Role: openai.ChatMessageRoleSystem, Content: questionSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: questionPrompt(position, description, experience, count)},
	})
	if err != nil {
		return "", nil, err
	}
	questions, err := interview.ParseQuestions(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: generated questions: %v", interview.ErrGradingParse, err)
	}
	return interview.CleanJSON(raw), questions, nil
}
