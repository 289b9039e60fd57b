package service

import (
	"sync"

	"mock_interview_backend/internal/interview"
)

// 服务端 -> 客户端消息类型
const (
	EventRecognitionStart = "recognition.start"
	EventRecognitionStop  = "recognition.stop"
	EventSpeak            = "tts.speak"
	EventSpeakCancel      = "tts.cancel"
	EventTurn             = "turn"
	EventGraded           = "graded"
	EventState            = "state"
	EventError            = "error"
	EventClosed           = "closed"
)

type LiveEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// RemoteCapture drives the browser's speech engine over the attached socket.
// Events are dropped while no socket is attached, so REST-only runs behave
// as if recognition were always running on the client.
type RemoteCapture struct {
	mu        sync.Mutex
	supported bool
	sink      func(LiveEvent)
	token     uint64
}

var (
	_ interview.Recognizer = (*RemoteCapture)(nil)
	_ interview.Speaker    = (*RemoteCapture)(nil)
)

func NewRemoteCapture(supported bool) *RemoteCapture {
	return &RemoteCapture{supported: supported}
}

func (r *RemoteCapture) SetSupported(ok bool) {
	r.mu.Lock()
	r.supported = ok
	r.mu.Unlock()
}

// Attach routes events to sink until the returned detach is called. A later
// Attach replaces the earlier sink, and the stale detach becomes a no-op.
func (r *RemoteCapture) Attach(sink func(LiveEvent)) (detach func()) {
	r.mu.Lock()
	r.token++
	token := r.token
	r.sink = sink
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		if r.token == token {
			r.sink = nil
		}
		r.mu.Unlock()
	}
}

func (r *RemoteCapture) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sink != nil
}

// Publish must not block: it is called from pipeline and controller hooks.
func (r *RemoteCapture) Publish(ev LiveEvent) {
	r.mu.Lock()
	sink := r.sink
	r.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

func (r *RemoteCapture) Supported() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.supported
}

func (r *RemoteCapture) Start() error {
	r.Publish(LiveEvent{Type: EventRecognitionStart})
	return nil
}

func (r *RemoteCapture) Stop() error {
	r.Publish(LiveEvent{Type: EventRecognitionStop})
	return nil
}

func (r *RemoteCapture) Speak(text string) error {
	r.Publish(LiveEvent{Type: EventSpeak, Data: map[string]string{"text": text}})
	return nil
}

func (r *RemoteCapture) Cancel() {
	r.Publish(LiveEvent{Type: EventSpeakCancel})
}
