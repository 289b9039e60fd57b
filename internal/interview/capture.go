package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type TurnState int

const (
	StateIdle TurnState = iota
	StateRecording
	StateFinalizing
	StateFinalized
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("TurnState(%d)", int(s))
	}
}

func (s TurnState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CaptureConfig 作答采集的时间策略
type CaptureConfig struct {
	SilenceTimeout   time.Duration
	PollInterval     time.Duration
	GraceDelay       time.Duration // 为 0 时不等待尾部识别结果
	AutoAdvanceDelay time.Duration
	MinAnswerLength  int
	Policy           TranscriptPolicy
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SilenceTimeout:   10 * time.Second,
		PollInterval:     time.Second,
		GraceDelay:       time.Second,
		AutoAdvanceDelay: 500 * time.Millisecond,
		MinAnswerLength:  10,
		Policy:           DefaultTranscriptPolicy,
	}
}

func (c CaptureConfig) withDefaults() CaptureConfig {
	d := DefaultCaptureConfig()
	if c.SilenceTimeout <= 0 {
		c.SilenceTimeout = d.SilenceTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.GraceDelay < 0 {
		c.GraceDelay = 0
	}
	if c.AutoAdvanceDelay < 0 {
		c.AutoAdvanceDelay = 0
	}
	if c.MinAnswerLength <= 0 {
		c.MinAnswerLength = d.MinAnswerLength
	}
	if len(c.Policy) == 0 {
		c.Policy = d.Policy
	}
	return c
}

type ResultKind int

const (
	ResultNone ResultKind = iota
	// ResultGraded 已评分并落库
	ResultGraded
	// ResultTooShort 手动停止但答案过短
	ResultTooShort
	// ResultDiscarded 静音超时且答案过短，静默丢弃不报错
	ResultDiscarded
	// ResultFailed 评分或保存失败，答案保持定稿可重试
	ResultFailed
	// ResultStale 结果返回前该回合已被放弃
	ResultStale
)

func (k ResultKind) String() string {
	switch k {
	case ResultGraded:
		return "graded"
	case ResultTooShort:
		return "too_short"
	case ResultDiscarded:
		return "discarded"
	case ResultFailed:
		return "failed"
	case ResultStale:
		return "stale"
	default:
		return "none"
	}
}

func (k ResultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FinalizeResult 一次定稿尝试的结果
type FinalizeResult struct {
	Kind    ResultKind       `json:"kind"`
	Index   int              `json:"index"`
	Auto    bool             `json:"auto"`
	Answer  string           `json:"answer,omitempty"`
	Source  TranscriptSource `json:"-"`
	Outcome Outcome          `json:"outcome"`
}

// TurnSnapshot 当前回合的只读快照
type TurnSnapshot struct {
	Index        int        `json:"index"`
	State        TurnState  `json:"state"`
	Preview      string     `json:"preview"`
	CapturedText string     `json:"capturedText"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
	Finalized    bool       `json:"finalized"`
	Graded       bool       `json:"graded"`
	Answer       string     `json:"answer,omitempty"`
	Rating       int        `json:"rating,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// PipelineHooks 管道与调用方之间的回调，均在释放管道锁之后执行
type PipelineHooks struct {
	Submit      func(ctx context.Context, index int, answer string) Outcome
	AutoAdvance func(index int)
	OnChange    func(TurnSnapshot)
	OnFinalize  func(FinalizeResult)
}

// Pipeline 把识别片段流整理成每题一个定稿答案。
// 每个回合有一个代号，每次重置都会递增，旧回合发起的操作不会影响新回合。
type Pipeline struct {
	mu    sync.Mutex
	cfg   CaptureConfig
	clock clockwork.Clock
	rec   Recognizer
	hooks PipelineHooks
	log   *zap.Logger

	gen          uint64
	index        int
	state        TurnState
	results      []string
	interim      string
	buffer       string
	lastActivity time.Time
	answer       string
	answerSource TranscriptSource
	finalized    bool
	graded       bool
	outcome      Outcome
	busy         bool
	lastErr      error
	previews     map[int]string
	stopMonitor  context.CancelFunc
	closed       bool
}

func NewPipeline(cfg CaptureConfig, rec Recognizer, hooks PipelineHooks, clock clockwork.Clock, log *zap.Logger) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:      cfg.withDefaults(),
		clock:    clock,
		rec:      rec,
		hooks:    hooks,
		log:      log,
		gen:      1,
		previews: make(map[int]string),
	}
}

// Reset 放弃当前回合并为 index 开始新的空闲回合。
// 识别和静音监控会被取消；已发出的评分请求继续执行，但结果会被丢弃。
func (p *Pipeline) Reset(index int) {
	p.mu.Lock()
	p.cancelMonitorLocked()
	if p.state == StateRecording {
		p.stopRecognizerLocked()
	}
	p.gen++
	p.index = index
	p.state = StateIdle
	p.clearCaptureLocked()
	p.clearAnswerLocked()
	p.busy = false
	p.previews[index] = ""
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.emit(snap)
}

// Start 开始录制当前题目的答案
func (p *Pipeline) Start() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.rec == nil || !p.rec.Supported() {
		p.mu.Unlock()
		return ErrUnsupportedEnvironment
	}
	if p.state == StateRecording || p.state == StateFinalizing {
		p.mu.Unlock()
		return ErrCaptureActive
	}

	p.clearCaptureLocked()
	p.clearAnswerLocked()
	// 新一轮作答只能用本轮识别到的文本兜底
	p.previews[p.index] = ""
	if err := p.rec.Start(); err != nil {
		p.state = StateIdle
		p.lastErr = err
		snap := p.snapshotLocked()
		p.mu.Unlock()
		p.emit(snap)
		return fmt.Errorf("start recognition: %w", err)
	}
	p.state = StateRecording
	p.lastActivity = p.clock.Now()

	// ticker 在加锁时创建，Start 返回后立即推进的时钟也能触发
	ctx, cancel := context.WithCancel(context.Background())
	p.stopMonitor = cancel
	go p.monitor(ctx, p.gen, p.clock.NewTicker(p.cfg.PollInterval))

	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.emit(snap)
	return nil
}

// Feed 记录一个识别片段，录制中以及停止后的宽限期内均可接收
func (p *Pipeline) Feed(f Fragment) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.state != StateRecording && !(p.state == StateFinalizing && !p.finalized) {
		p.mu.Unlock()
		return ErrNotRecording
	}

	text := strings.TrimSpace(f.Text)
	if f.Final {
		if text != "" {
			p.results = append(p.results, text)
		}
		p.interim = ""
	} else {
		p.interim = text
	}

	if current := p.rebuildLocked(); current != "" {
		p.lastActivity = p.clock.Now()
		p.buffer = current
		p.previews[p.index] = current
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.emit(snap)
	return nil
}

// Stop 手动定稿，会阻塞到宽限期和评分调用结束
func (p *Pipeline) Stop(ctx context.Context) (FinalizeResult, error) {
	return p.finalize(ctx, false, 0)
}

// Retry 重新提交评分失败的定稿答案
func (p *Pipeline) Retry(ctx context.Context) (FinalizeResult, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return FinalizeResult{}, ErrClosed
	}
	if p.busy {
		p.mu.Unlock()
		return FinalizeResult{}, ErrBusy
	}
	if p.state != StateFinalized || p.graded || p.answer == "" {
		p.mu.Unlock()
		return FinalizeResult{}, ErrNotGradable
	}
	p.busy = true
	p.state = StateFinalizing
	p.lastErr = nil
	gen := p.gen
	res := FinalizeResult{Index: p.index, Answer: p.answer, Source: p.answerSource}
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.emit(snap)

	return p.submit(ctx, res, gen)
}

// Close 关闭管道，之后到达的结果静默丢弃
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.cancelMonitorLocked()
	if p.state == StateRecording {
		p.stopRecognizerLocked()
	}
	p.gen++
	p.state = StateIdle
	p.busy = false
}

func (p *Pipeline) Snapshot() TurnSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pipeline) State() TurnState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) monitor(ctx context.Context, gen uint64, ticker clockwork.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if !p.silenceExpired(gen) {
				continue
			}
			p.log.Debug("silence timeout reached, finalizing answer", zap.Uint64("turn", gen))
			// 手动停止可能已占用 busy 标记，此时什么都不做
			_, _ = p.finalize(context.Background(), true, gen)
			return
		}
	}
}

func (p *Pipeline) silenceExpired(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.state != StateRecording || p.busy || p.lastActivity.IsZero() {
		return false
	}
	return p.clock.Now().Sub(p.lastActivity) >= p.cfg.SilenceTimeout
}

// finalize 执行 Recording -> Finalizing -> Finalized 转换。
// want 为调用方期望的回合代号，0 表示当前回合
func (p *Pipeline) finalize(ctx context.Context, auto bool, want uint64) (FinalizeResult, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return FinalizeResult{}, ErrClosed
	}
	if want != 0 && want != p.gen {
		p.mu.Unlock()
		return FinalizeResult{Kind: ResultStale, Auto: auto}, nil
	}
	if p.busy {
		p.mu.Unlock()
		return FinalizeResult{}, ErrBusy
	}
	if p.state != StateRecording {
		p.mu.Unlock()
		return FinalizeResult{}, ErrNotRecording
	}
	p.busy = true
	p.state = StateFinalizing
	gen := p.gen
	res := FinalizeResult{Index: p.index, Auto: auto}
	p.cancelMonitorLocked()
	p.stopRecognizerLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.emit(snap)

	if err := p.wait(ctx, p.cfg.GraceDelay); err != nil {
		p.mu.Lock()
		if gen == p.gen && !p.closed {
			p.state = StateIdle
			p.busy = false
		}
		snap = p.snapshotLocked()
		p.mu.Unlock()
		p.emit(snap)
		return res, err
	}

	p.mu.Lock()
	if gen != p.gen || p.closed {
		p.mu.Unlock()
		res.Kind = ResultStale
		p.notifyFinalize(res)
		return res, nil
	}
	res.Answer, res.Source = p.cfg.Policy.Select(p.candidatesLocked())
	if utf8.RuneCountInString(res.Answer) < p.cfg.MinAnswerLength {
		p.state = StateIdle
		p.busy = false
		var err error
		if auto {
			res.Kind = ResultDiscarded
		} else {
			res.Kind = ResultTooShort
			p.lastErr = ErrAnswerTooShort
			err = ErrAnswerTooShort
		}
		snap = p.snapshotLocked()
		p.mu.Unlock()
		p.log.Debug("answer below minimum length",
			zap.Int("index", res.Index), zap.Bool("auto", auto), zap.Int("length", len(res.Answer)))
		p.emit(snap)
		p.notifyFinalize(res)
		return res, err
	}
	p.answer = res.Answer
	p.answerSource = res.Source
	p.finalized = true
	snap = p.snapshotLocked()
	p.mu.Unlock()
	p.emit(snap)

	return p.submit(ctx, res, gen)
}

func (p *Pipeline) submit(ctx context.Context, res FinalizeResult, gen uint64) (FinalizeResult, error) {
	var out Outcome
	if p.hooks.Submit == nil {
		out = Outcome{Err: fmt.Errorf("%w: no grader configured", ErrEvaluator)}
	} else {
		out = p.hooks.Submit(ctx, res.Index, res.Answer)
	}
	res.Outcome = out

	p.mu.Lock()
	if gen != p.gen || p.closed {
		p.mu.Unlock()
		p.log.Info("dropping grading result for abandoned turn",
			zap.Int("index", res.Index), zap.Bool("ok", out.OK))
		res.Kind = ResultStale
		p.notifyFinalize(res)
		return res, nil
	}

	p.busy = false
	p.state = StateFinalized
	p.outcome = out
	if !out.OK {
		err := out.Err
		if err == nil {
			err = ErrEvaluator
		}
		p.lastErr = err
		res.Kind = ResultFailed
		snap := p.snapshotLocked()
		p.mu.Unlock()
		p.emit(snap)
		p.notifyFinalize(res)
		return res, err
	}

	p.graded = true
	p.lastErr = nil
	p.previews[res.Index] = res.Answer
	p.clearCaptureLocked()
	res.Kind = ResultGraded
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.emit(snap)
	p.notifyFinalize(res)

	if res.Auto {
		p.scheduleAdvance(gen, res.Index)
	}
	return res, nil
}

func (p *Pipeline) scheduleAdvance(gen uint64, index int) {
	if p.hooks.AutoAdvance == nil {
		return
	}
	advance := func() {
		p.mu.Lock()
		current := gen == p.gen && !p.closed
		p.mu.Unlock()
		if current {
			p.hooks.AutoAdvance(index)
		}
	}
	if p.cfg.AutoAdvanceDelay <= 0 {
		advance()
		return
	}
	ch := p.clock.After(p.cfg.AutoAdvanceDelay)
	go func() {
		<-ch
		advance()
	}()
}

func (p *Pipeline) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-p.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) rebuildLocked() string {
	parts := make([]string, 0, len(p.results)+1)
	parts = append(parts, p.results...)
	parts = append(parts, p.interim)
	return joinFragments(parts...)
}

func (p *Pipeline) candidatesLocked() transcriptCandidates {
	return transcriptCandidates{
		buffer:  p.buffer,
		rebuilt: p.rebuildLocked(),
		preview: p.previews[p.index],
	}
}

func (p *Pipeline) clearCaptureLocked() {
	p.results = nil
	p.interim = ""
	p.buffer = ""
	p.lastActivity = time.Time{}
}

func (p *Pipeline) clearAnswerLocked() {
	p.answer = ""
	p.answerSource = SourceNone
	p.finalized = false
	p.graded = false
	p.outcome = Outcome{}
	p.lastErr = nil
}

func (p *Pipeline) cancelMonitorLocked() {
	if p.stopMonitor != nil {
		p.stopMonitor()
		p.stopMonitor = nil
	}
}

func (p *Pipeline) stopRecognizerLocked() {
	if p.rec == nil {
		return
	}
	if err := p.rec.Stop(); err != nil {
		p.log.Warn("failed to stop speech recognition", zap.Error(err))
	}
}

func (p *Pipeline) snapshotLocked() TurnSnapshot {
	s := TurnSnapshot{
		Index:        p.index,
		State:        p.state,
		CapturedText: p.buffer,
		Finalized:    p.finalized,
		Graded:       p.graded,
		Answer:       p.answer,
	}
	if !p.lastActivity.IsZero() {
		t := p.lastActivity
		s.LastActivity = &t
	}
	s.Preview = p.previews[p.index]
	if s.Preview == "" {
		s.Preview = p.buffer
	}
	if s.Preview == "" {
		s.Preview = p.interim
	}
	if p.outcome.OK {
		s.Rating = p.outcome.Rating
		s.Feedback = p.outcome.Feedback
	}
	if p.lastErr != nil {
		s.Error = p.lastErr.Error()
	}
	return s
}

func (p *Pipeline) emit(s TurnSnapshot) {
	if p.hooks.OnChange != nil {
		p.hooks.OnChange(s)
	}
}

func (p *Pipeline) notifyFinalize(res FinalizeResult) {
	if p.hooks.OnFinalize != nil {
		p.hooks.OnFinalize(res)
	}
}
