package interview

import "strings"

// TranscriptSource 定稿答案的来源
type TranscriptSource int

const (
	// SourceNone 所有来源均为空
	SourceNone TranscriptSource = iota
	// SourceBuffer 录制过程中累积的文本
	SourceBuffer
	// SourceRebuilt 定稿时由原始识别结果重建
	SourceRebuilt
	// SourcePreview 本轮最后展示给用户的预览
	SourcePreview
)

func (s TranscriptSource) String() string {
	switch s {
	case SourceBuffer:
		return "buffer"
	case SourceRebuilt:
		return "rebuilt"
	case SourcePreview:
		return "preview"
	default:
		return "none"
	}
}

// TranscriptPolicy 定稿时依次尝试的来源
type TranscriptPolicy []TranscriptSource

// DefaultTranscriptPolicy 以累积文本为准，其余仅作兜底
var DefaultTranscriptPolicy = TranscriptPolicy{SourceBuffer, SourceRebuilt, SourcePreview}

type transcriptCandidates struct {
	buffer  string
	rebuilt string
	preview string
}

func (c transcriptCandidates) get(src TranscriptSource) string {
	switch src {
	case SourceBuffer:
		return c.buffer
	case SourceRebuilt:
		return c.rebuilt
	case SourcePreview:
		return c.preview
	}
	return ""
}

// Select 按策略顺序返回第一个非空候选
func (p TranscriptPolicy) Select(c transcriptCandidates) (string, TranscriptSource) {
	for _, src := range p {
		if text := strings.TrimSpace(c.get(src)); text != "" {
			return text, src
		}
	}
	return "", SourceNone
}

func joinFragments(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
