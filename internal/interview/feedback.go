package interview

import (
	"math"
	"time"
)

// StrongThreshold 计为强项的最低评分
const StrongThreshold = 7

// AnswerRecord 一条已保存的答题记录，尚无评分时 Rating 为 nil
type AnswerRecord struct {
	ID              uint      `json:"id"`
	SessionID       string    `json:"mockIdRef"`
	Question        string    `json:"question"`
	ReferenceAnswer string    `json:"correctAns"`
	UserAnswer      string    `json:"userAns"`
	Rating          *int      `json:"rating"`
	Feedback        string    `json:"feedback"`
	UserID          string    `json:"userEmail"`
	CreatedAt       time.Time `json:"createdAt"`
}

type FeedbackSummary struct {
	OverallRating float64 `json:"overallRating"`
	StrongCount   int     `json:"strongCount"`
	WeakCount     int     `json:"weakCount"`
	Total         int     `json:"total"`
	Graded        int     `json:"graded"`
}

// Summarize 计算总评分与强弱项数量，没有记录时返回零值
func Summarize(records []AnswerRecord) FeedbackSummary {
	s := FeedbackSummary{Total: len(records)}
	sum := 0
	for _, r := range records {
		if r.Rating == nil {
			continue
		}
		s.Graded++
		sum += *r.Rating
		if *r.Rating >= StrongThreshold {
			s.StrongCount++
		} else {
			s.WeakCount++
		}
	}
	if s.Graded > 0 {
		s.OverallRating = RoundRating(float64(sum) / float64(s.Graded))
	}
	return s
}

// RoundRating 保留一位小数
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

type Band string

const (
	BandStrong Band = "strong"
	BandGood   Band = "good"
	BandFair   Band = "fair"
	BandWeak   Band = "weak"
)

// RatingBand 评分对应的展示分段
func RatingBand(rating float64) Band {
	switch {
	case rating >= 8:
		return BandStrong
	case rating >= 6:
		return BandGood
	case rating >= 4:
		return BandFair
	default:
		return BandWeak
	}
}

type FeedbackItem struct {
	AnswerRecord
	Band Band `json:"band,omitempty"`
}

type FeedbackReport struct {
	SessionID string          `json:"mockId"`
	Summary   FeedbackSummary `json:"summary"`
	Band      Band            `json:"band,omitempty"`
	Items     []FeedbackItem  `json:"items"`
}

// BuildReport 按传入顺序（即插入顺序）保留记录
func BuildReport(sessionID string, records []AnswerRecord) FeedbackReport {
	report := FeedbackReport{
		SessionID: sessionID,
		Summary:   Summarize(records),
		Items:     make([]FeedbackItem, 0, len(records)),
	}
	if report.Summary.Graded > 0 {
		report.Band = RatingBand(report.Summary.OverallRating)
	}
	for _, r := range records {
		item := FeedbackItem{AnswerRecord: r}
		if r.Rating != nil {
			item.Band = RatingBand(float64(*r.Rating))
		}
		report.Items = append(report.Items, item)
	}
	return report
}
