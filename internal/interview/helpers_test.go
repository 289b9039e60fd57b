package interview

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type fakeRecognizer struct {
	mu          sync.Mutex
	unsupported bool
	startErr    error
	starts      int
	stops       int
}

func (r *fakeRecognizer) Supported() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.unsupported
}

func (r *fakeRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	r.starts++
	return nil
}

func (r *fakeRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	return nil
}

func (r *fakeRecognizer) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.stops
}

type fakeSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (s *fakeSpeaker) Speak(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	return nil
}

func (s *fakeSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

func (s *fakeSpeaker) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// fakeGrader records every request. When gate is set, Grade blocks until a
// value is sent on it.
type fakeGrader struct {
	mu       sync.Mutex
	requests []GradeRequest
	outcomes []Outcome
	entered  chan struct{}
	gate     chan struct{}
}

func newFakeGrader(outcomes ...Outcome) *fakeGrader {
	return &fakeGrader{outcomes: outcomes, entered: make(chan struct{}, 16)}
}

func (g *fakeGrader) Grade(ctx context.Context, req GradeRequest) Outcome {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	var out Outcome
	if len(g.outcomes) > 0 {
		out = g.outcomes[0]
		if len(g.outcomes) > 1 {
			g.outcomes = g.outcomes[1:]
		}
	} else {
		out = Outcome{OK: true, Rating: 8, Feedback: "good"}
	}
	gate := g.gate
	g.mu.Unlock()

	g.entered <- struct{}{}
	if gate != nil {
		<-gate
	}
	return out
}

func (g *fakeGrader) calls() []GradeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]GradeRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

type advancer interface {
	Advance(d time.Duration)
}

type fakeClock interface {
	clockwork.Clock
	advancer
}

// tick advances the fake clock one second at a time so the monitor observes
// every poll.
func tick(clock advancer, d time.Duration) {
	for ; d > 0; d -= time.Second {
		clock.Advance(time.Second)
		time.Sleep(2 * time.Millisecond)
	}
}

func testCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SilenceTimeout:   10 * time.Second,
		PollInterval:     time.Second,
		GraceDelay:       0,
		AutoAdvanceDelay: 0,
		MinAnswerLength:  10,
	}
}

func threeQuestionSession() *InterviewSession {
	return NewInterviewSession(StoredSession{ID: "mock-1", Role: "Backend Engineer"}, []QAPair{
		{Question: "What is a goroutine?", Answer: "A lightweight thread managed by the Go runtime."},
		{Question: "Explain channels.", Answer: "Typed conduits for communication between goroutines."},
		{Question: "What does defer do?", Answer: "Schedules a call to run when the function returns."},
	})
}
