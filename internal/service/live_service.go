package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mock_interview_backend/internal/interview"
	"mock_interview_backend/internal/util"
	"mock_interview_backend/pkg/monitoring"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 客户端 -> 服务端指令
const (
	CmdHello    = "hello"
	CmdState    = "state"
	CmdFragment = "fragment"
	CmdStart    = "start"
	CmdStop     = "stop"
	CmdRetry    = "retry"
	CmdNext     = "next"
	CmdPrevious = "previous"
	CmdJump     = "jump"
	CmdSkip     = "skip"
	CmdSpeak    = "speak"
)

type CommandArgs struct {
	Text            string `json:"text,omitempty"`
	Final           bool   `json:"final,omitempty"`
	Index           *int   `json:"index,omitempty"`
	SpeechSupported *bool  `json:"speechSupported,omitempty"`
}

// LiveCommand is one client instruction, shared by the REST and socket transports.
type LiveCommand struct {
	Type string
	Args CommandArgs
}

// FinalizeView is the client-facing form of a finished turn.
type FinalizeView struct {
	Kind     interview.ResultKind `json:"kind"`
	Index    int                  `json:"index"`
	Auto     bool                 `json:"auto"`
	Answer   string               `json:"answer,omitempty"`
	Rating   int                  `json:"rating,omitempty"`
	Feedback string               `json:"feedback,omitempty"`
	Updated  bool                 `json:"updated,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func NewFinalizeView(res interview.FinalizeResult) FinalizeView {
	v := FinalizeView{
		Kind:     res.Kind,
		Index:    res.Index,
		Auto:     res.Auto,
		Answer:   res.Answer,
		Rating:   res.Outcome.Rating,
		Feedback: res.Outcome.Feedback,
		Updated:  res.Outcome.Updated,
	}
	if res.Outcome.Err != nil {
		v.Error = res.Outcome.Err.Error()
	}
	return v
}

type runKey struct {
	user   string
	mockID string
}

// LiveRun is one user's open pass through one interview.
type LiveRun struct {
	key     runKey
	ctrl    *interview.Controller
	capture *RemoteCapture
	clock   clockwork.Clock
	done    chan struct{}

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

func (r *LiveRun) MockID() string { return r.key.mockID }

func (r *LiveRun) Controller() *interview.Controller { return r.ctrl }

func (r *LiveRun) Capture() *RemoteCapture { return r.capture }

// Done is closed once the run has been closed.
func (r *LiveRun) Done() <-chan struct{} { return r.done }

func (r *LiveRun) touch() {
	r.mu.Lock()
	r.lastSeen = r.clock.Now()
	r.mu.Unlock()
}

func (r *LiveRun) idleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSeen
}

func (r *LiveRun) close() bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.closed = true
	r.mu.Unlock()

	r.ctrl.Close()
	r.capture.Publish(LiveEvent{Type: EventClosed})
	close(r.done)
	return true
}

// Handle applies cmd. Stop and retry return a FinalizeView once grading has
// finished, together with the error for too-short or failed answers; every
// other command returns the resulting LiveState.
func (r *LiveRun) Handle(ctx context.Context, cmd LiveCommand) (interface{}, error) {
	r.touch()
	c := r.ctrl

	var err error
	switch cmd.Type {
	case CmdHello:
		if cmd.Args.SpeechSupported != nil {
			r.capture.SetSupported(*cmd.Args.SpeechSupported)
		}
	case CmdState, "":
	case CmdFragment:
		err = c.Feed(interview.Fragment{Text: cmd.Args.Text, Final: cmd.Args.Final})
	case CmdStart:
		err = c.Start()
	case CmdStop, CmdRetry:
		var res interview.FinalizeResult
		if cmd.Type == CmdStop {
			res, err = c.Stop(ctx)
		} else {
			res, err = c.Retry(ctx)
		}
		if res.Kind == interview.ResultNone {
			return nil, err
		}
		return NewFinalizeView(res), err
	case CmdNext:
		err = c.Next()
	case CmdPrevious:
		err = c.Previous()
	case CmdJump:
		if cmd.Args.Index == nil {
			return nil, fmt.Errorf("%w: jump requires an index", util.ErrInvalidInput)
		}
		err = c.JumpTo(*cmd.Args.Index)
	case CmdSkip:
		err = c.Skip()
	case CmdSpeak:
		err = c.SpeakQuestion()
	default:
		return nil, fmt.Errorf("%w: unknown command %q", util.ErrInvalidInput, cmd.Type)
	}
	if err != nil {
		return nil, err
	}
	return c.State(), nil
}

type LiveServiceOption func(*LiveService)

func WithLiveClock(clock clockwork.Clock) LiveServiceOption {
	return func(s *LiveService) { s.clock = clock }
}

// LiveService keeps one controller per (user, interview) pair.
type LiveService struct {
	loader  *interview.Loader
	grader  interview.Grader
	clock   clockwork.Clock
	idleTTL time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	capture interview.CaptureConfig
	runs    map[runKey]*LiveRun
	cron    *cron.Cron
}

func NewLiveService(loader *interview.Loader, grader interview.Grader, capture interview.CaptureConfig, idleTTL time.Duration, log *zap.Logger, opts ...LiveServiceOption) *LiveService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &LiveService{
		loader:  loader,
		grader:  grader,
		clock:   clockwork.NewRealClock(),
		idleTTL: idleTTL,
		log:     log,
		capture: capture,
		runs:    make(map[runKey]*LiveRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func keyFor(user, mockID string) runKey {
	return runKey{user: strings.ToLower(strings.TrimSpace(user)), mockID: strings.TrimSpace(mockID)}
}

// Open returns the caller's run for mockID, starting one if none is open.
func (s *LiveService) Open(ctx context.Context, user, mockID string, speechSupported bool) (*LiveRun, bool, error) {
	key := keyFor(user, mockID)
	if run, err := s.Get(user, mockID); err == nil {
		run.touch()
		return run, false, nil
	}

	session, err := s.loader.Load(ctx, key.mockID)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	capCfg := s.capture
	s.mu.Unlock()

	capture := NewRemoteCapture(speechSupported)
	run := &LiveRun{
		key:     key,
		capture: capture,
		clock:   s.clock,
		done:    make(chan struct{}),
	}
	log := s.log.With(zap.String("mockId", key.mockID), zap.String("user", key.user))
	ctrl, err := interview.NewController(session, key.user,
		interview.CaptureSession{Recognizer: capture, Speaker: capture},
		s.grader, capCfg,
		interview.WithClock(s.clock),
		interview.WithLogger(log),
		interview.WithObserver(func(snap interview.TurnSnapshot) {
			capture.Publish(LiveEvent{Type: EventTurn, Data: snap})
		}),
		interview.WithFinalizeObserver(func(res interview.FinalizeResult) {
			trigger := "manual"
			if res.Auto {
				trigger = "auto"
			}
			monitoring.FinalizeTotal.WithLabelValues(res.Kind.String(), trigger).Inc()
			if res.Kind != interview.ResultNone {
				capture.Publish(LiveEvent{Type: EventGraded, Data: NewFinalizeView(res)})
			}
		}),
	)
	if err != nil {
		return nil, false, err
	}
	run.ctrl = ctrl
	run.touch()

	s.mu.Lock()
	if existing, ok := s.runs[key]; ok {
		// 并发打开时保留先注册的那一个
		s.mu.Unlock()
		ctrl.Close()
		existing.touch()
		return existing, false, nil
	}
	s.runs[key] = run
	s.mu.Unlock()

	monitoring.LiveRuns.Inc()
	log.Info("live interview opened", zap.Int("questions", session.QuestionCount()))
	return run, true, nil
}

func (s *LiveService) Get(user, mockID string) (*LiveRun, error) {
	key := keyFor(user, mockID)
	s.mu.Lock()
	run, ok := s.runs[key]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no open run for interview %s", interview.ErrNotFound, key.mockID)
	}
	return run, nil
}

func (s *LiveService) CloseRun(user, mockID string) error {
	key := keyFor(user, mockID)
	s.mu.Lock()
	run, ok := s.runs[key]
	delete(s.runs, key)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no open run for interview %s", interview.ErrNotFound, key.mockID)
	}
	s.closeRun(run, "closed by client")
	return nil
}

func (s *LiveService) closeRun(run *LiveRun, reason string) {
	if run.close() {
		monitoring.LiveRuns.Dec()
		s.log.Info("live interview closed",
			zap.String("mockId", run.key.mockID),
			zap.String("user", run.key.user),
			zap.String("reason", reason))
	}
}

// UpdateCaptureConfig applies to runs opened afterwards.
func (s *LiveService) UpdateCaptureConfig(cfg interview.CaptureConfig) {
	s.mu.Lock()
	s.capture = cfg
	s.mu.Unlock()
	s.log.Info("capture settings updated",
		zap.Duration("silenceTimeout", cfg.SilenceTimeout),
		zap.Int("minAnswerLength", cfg.MinAnswerLength))
}

func (s *LiveService) CaptureConfig() interview.CaptureConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture
}

// Sweep closes runs without a connected socket that have been idle longer
// than the configured TTL. It returns the number of runs closed.
func (s *LiveService) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.idleTTL)

	var expired []*LiveRun
	s.mu.Lock()
	for key, run := range s.runs {
		if run.capture.Attached() || run.idleSince().After(cutoff) {
			continue
		}
		expired = append(expired, run)
		delete(s.runs, key)
	}
	s.mu.Unlock()

	for _, run := range expired {
		s.closeRun(run, "idle")
	}
	return len(expired)
}

// StartSweeper schedules Sweep on a cron expression such as "@every 1m".
func (s *LiveService) StartSweeper(schedule string) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		if n := s.Sweep(); n > 0 {
			s.log.Info("idle live interviews swept", zap.Int("count", n))
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	return nil
}

func (s *LiveService) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Close stops the sweeper and closes every open run.
func (s *LiveService) Close() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	runs := make([]*LiveRun, 0, len(s.runs))
	for key, run := range s.runs {
		runs = append(runs, run)
		delete(s.runs, key)
	}
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, run := range runs {
		s.closeRun(run, "shutdown")
	}
}
