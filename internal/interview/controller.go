package interview

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Controller 一个用户对一场面试的作答过程，持有导航器、采集管道以及注入的语音设备
type Controller struct {
	mu      sync.Mutex
	session *InterviewSession
	userID  string
	nav     *Navigator
	pipe    *Pipeline
	speaker Speaker
	grader  Grader
	log     *zap.Logger
	closed  bool
}

type controllerOptions struct {
	clock      clockwork.Clock
	log        *zap.Logger
	onChange   func(TurnSnapshot)
	onFinalize func(FinalizeResult)
}

type ControllerOption func(*controllerOptions)

func WithClock(clock clockwork.Clock) ControllerOption {
	return func(o *controllerOptions) { o.clock = clock }
}

func WithLogger(log *zap.Logger) ControllerOption {
	return func(o *controllerOptions) { o.log = log }
}

// WithObserver 回合状态每次变化时回调
func WithObserver(fn func(TurnSnapshot)) ControllerOption {
	return func(o *controllerOptions) { o.onChange = fn }
}

// WithFinalizeObserver 每次定稿结束时回调，包括静默丢弃和过期结果
func WithFinalizeObserver(fn func(FinalizeResult)) ControllerOption {
	return func(o *controllerOptions) { o.onFinalize = fn }
}

func NewController(session *InterviewSession, userID string, capture CaptureSession, grader Grader, cfg CaptureConfig, opts ...ControllerOption) (*Controller, error) {
	if session == nil {
		return nil, ErrNotFound
	}
	nav, err := NewNavigator(session.QuestionCount())
	if err != nil {
		return nil, err
	}

	o := controllerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	log := o.log.With(zap.String("mockId", session.ID), zap.String("user", userID))

	speaker := capture.Speaker
	if speaker == nil {
		speaker = nopSpeaker{}
	}

	c := &Controller{
		session: session,
		userID:  userID,
		nav:     nav,
		speaker: speaker,
		grader:  grader,
		log:     log,
	}
	c.pipe = NewPipeline(cfg, capture.Recognizer, PipelineHooks{
		Submit:      c.submit,
		AutoAdvance: c.autoAdvance,
		OnChange:    o.onChange,
		OnFinalize:  o.onFinalize,
	}, o.clock, log)

	nav.OnTransition(func(from, to int) {
		c.speaker.Cancel()
		c.pipe.Reset(to)
		c.log.Debug("question changed", zap.Int("from", from), zap.Int("to", to))
	})
	return c, nil
}

func (c *Controller) Session() *InterviewSession { return c.session }

func (c *Controller) UserID() string { return c.userID }

// Current 返回当前下标及题目
func (c *Controller) Current() (int, QAPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.nav.Active()
	q, _ := c.session.Question(i)
	return i, q
}

func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav.Progress()
}

func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.nav.Next()
}

// Previous 回到上一题，第一题时不做任何事
func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.nav.Previous()
	return nil
}

func (c *Controller) JumpTo(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.nav.JumpTo(index)
}

// Skip 放弃当前回合不评分，直接进入下一题
func (c *Controller) Skip() error {
	return c.Next()
}

func (c *Controller) Start() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.speaker.Cancel()
	return c.pipe.Start()
}

func (c *Controller) Feed(f Fragment) error {
	return c.pipe.Feed(f)
}

func (c *Controller) Stop(ctx context.Context) (FinalizeResult, error) {
	if err := c.checkOpen(); err != nil {
		return FinalizeResult{}, err
	}
	return c.pipe.Stop(ctx)
}

func (c *Controller) Retry(ctx context.Context) (FinalizeResult, error) {
	if err := c.checkOpen(); err != nil {
		return FinalizeResult{}, err
	}
	return c.pipe.Retry(ctx)
}

// SpeakQuestion 朗读当前题目
func (c *Controller) SpeakQuestion() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	q, err := c.session.Question(c.nav.Active())
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.speaker.Speak(q.Question)
}

// LiveState 客户端渲染面试页面所需的状态，不含参考答案
type LiveState struct {
	SessionID string       `json:"mockId"`
	Role      string       `json:"role"`
	Progress  Progress     `json:"progress"`
	Question  string       `json:"question"`
	Turn      TurnSnapshot `json:"turn"`
	Closed    bool         `json:"closed"`
}

func (c *Controller) State() LiveState {
	c.mu.Lock()
	active := c.nav.Active()
	progress := c.nav.Progress()
	closed := c.closed
	c.mu.Unlock()

	q, _ := c.session.Question(active)
	return LiveState{
		SessionID: c.session.ID,
		Role:      c.session.Role,
		Progress:  progress,
		Question:  q.Question,
		Turn:      c.pipe.Snapshot(),
		Closed:    closed,
	}
}

// Close 停止录制与朗读，之后到达的结果会被丢弃
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.speaker.Cancel()
	c.pipe.Close()
	c.log.Debug("interview run closed")
}

func (c *Controller) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Controller) submit(ctx context.Context, index int, answer string) Outcome {
	q, err := c.session.Question(index)
	if err != nil {
		return Outcome{Err: err}
	}
	if c.grader == nil {
		return Outcome{Err: fmt.Errorf("%w: no grader configured", ErrEvaluator)}
	}
	return c.grader.Grade(ctx, GradeRequest{
		SessionID:       c.session.ID,
		UserID:          c.userID,
		Index:           index,
		Question:        q.Question,
		ReferenceAnswer: q.Answer,
		Answer:          answer,
	})
}

func (c *Controller) autoAdvance(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.nav.Active() != index || c.nav.IsLast() {
		return
	}
	if err := c.nav.Next(); err != nil {
		c.log.Debug("auto advance skipped", zap.Error(err))
	}
}
