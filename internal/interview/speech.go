package interview

// Fragment 一次识别结果，中间结果会被后续结果覆盖，直到出现最终结果
type Fragment struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Recognizer 单个采集会话的语音识别引擎
type Recognizer interface {
	Supported() bool
	Start() error
	Stop() error
}

// Speaker 朗读题目，Speak 不等待播放结束
type Speaker interface {
	Speak(text string) error
	Cancel()
}

// CaptureSession 一个 Controller 独占的语音输入与输出
type CaptureSession struct {
	Recognizer Recognizer
	Speaker    Speaker
}

type nopSpeaker struct{}

func (nopSpeaker) Speak(string) error { return nil }
func (nopSpeaker) Cancel()            {}
