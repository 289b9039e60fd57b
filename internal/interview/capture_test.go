package interview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineHarness struct {
	pipe     *Pipeline
	rec      *fakeRecognizer
	grader   *fakeGrader
	results  chan FinalizeResult
	advanced chan int
}

func newHarness(t *testing.T, clock clockwork.Clock, cfg CaptureConfig, grader *fakeGrader) *pipelineHarness {
	t.Helper()
	h := &pipelineHarness{
		rec:      &fakeRecognizer{},
		grader:   grader,
		results:  make(chan FinalizeResult, 16),
		advanced: make(chan int, 16),
	}
	h.pipe = NewPipeline(cfg, h.rec, PipelineHooks{
		Submit: func(ctx context.Context, index int, answer string) Outcome {
			return grader.Grade(ctx, GradeRequest{Index: index, Answer: answer})
		},
		AutoAdvance: func(index int) { h.advanced <- index },
		OnFinalize:  func(res FinalizeResult) { h.results <- res },
	}, clock, nil)
	h.pipe.Reset(0)
	t.Cleanup(h.pipe.Close)
	return h
}

func (h *pipelineHarness) waitResult(t *testing.T) FinalizeResult {
	t.Helper()
	select {
	case res := <-h.results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for finalize result")
		return FinalizeResult{}
	}
}

func (h *pipelineHarness) assertNoResult(t *testing.T) {
	t.Helper()
	select {
	case res := <-h.results:
		t.Fatalf("unexpected finalize result %v", res.Kind)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestPipelineStartRequiresSpeechSupport(t *testing.T) {
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), newFakeGrader())
	h.rec.unsupported = true

	err := h.pipe.Start()
	assert.ErrorIs(t, err, ErrUnsupportedEnvironment)
	assert.Equal(t, StateIdle, h.pipe.State())
}

func TestPipelineStartWhileRecording(t *testing.T) {
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), newFakeGrader())

	require.NoError(t, h.pipe.Start())
	assert.ErrorIs(t, h.pipe.Start(), ErrCaptureActive)
	starts, _ := h.rec.counts()
	assert.Equal(t, 1, starts)
}

func TestPipelineFeedRequiresRecording(t *testing.T) {
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), newFakeGrader())
	assert.ErrorIs(t, h.pipe.Feed(Fragment{Text: "hello", Final: true}), ErrNotRecording)
}

func TestPipelineAccumulatesFragments(t *testing.T) {
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), newFakeGrader())
	require.NoError(t, h.pipe.Start())

	require.NoError(t, h.pipe.Feed(Fragment{Text: " goroutines are "}))
	assert.Equal(t, "goroutines are", h.pipe.Snapshot().CapturedText)

	require.NoError(t, h.pipe.Feed(Fragment{Text: "goroutines are cheap", Final: true}))
	require.NoError(t, h.pipe.Feed(Fragment{Text: "threads"}))
	snap := h.pipe.Snapshot()
	assert.Equal(t, "goroutines are cheap threads", snap.CapturedText)
	assert.Equal(t, "goroutines are cheap threads", snap.Preview)

	// Clearing the interim slot falls back to the final results.
	require.NoError(t, h.pipe.Feed(Fragment{Text: ""}))
	assert.Equal(t, "goroutines are cheap", h.pipe.Snapshot().CapturedText)
}

func TestPipelineManualStopTooShort(t *testing.T) {
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), newFakeGrader())
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "abc", Final: true}))

	res, err := h.pipe.Stop(context.Background())
	assert.ErrorIs(t, err, ErrAnswerTooShort)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, ResultTooShort, res.Kind)
	assert.Equal(t, StateIdle, h.pipe.State())
	assert.Empty(t, h.grader.calls())
	assert.Equal(t, ErrAnswerTooShort.Error(), h.pipe.Snapshot().Error)

	// The turn can be recorded again.
	assert.NoError(t, h.pipe.Start())
}

func TestPipelineManualStopGrades(t *testing.T) {
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), newFakeGrader(Outcome{OK: true, Rating: 9, Feedback: "clear"}))
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "A goroutine is a lightweight thread", Final: true}))
	require.NoError(t, h.pipe.Feed(Fragment{Text: "managed by the runtime", Final: true}))

	res, err := h.pipe.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultGraded, res.Kind)
	assert.Equal(t, SourceBuffer, res.Source)
	assert.Equal(t, "A goroutine is a lightweight thread managed by the runtime", res.Answer)
	assert.False(t, res.Auto)

	calls := h.grader.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 0, calls[0].Index)
	assert.Equal(t, res.Answer, calls[0].Answer)

	snap := h.pipe.Snapshot()
	assert.Equal(t, StateFinalized, snap.State)
	assert.True(t, snap.Graded)
	assert.Equal(t, 9, snap.Rating)
	assert.Empty(t, snap.CapturedText)
	assert.Equal(t, res.Answer, snap.Preview)

	_, stops := h.rec.counts()
	assert.Equal(t, 1, stops)

	// Manual stops never auto-advance.
	select {
	case <-h.advanced:
		t.Fatal("manual stop advanced the question")
	default:
	}
}

func TestPipelineSilenceWithoutSpeech(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := newHarness(t, clock, testCaptureConfig(), newFakeGrader())
	require.NoError(t, h.pipe.Start())

	tick(clock, 9*time.Second)
	h.assertNoResult(t)
	assert.Equal(t, StateRecording, h.pipe.State())

	tick(clock, time.Second)
	res := h.waitResult(t)
	assert.Equal(t, ResultDiscarded, res.Kind)
	assert.True(t, res.Auto)
	assert.Equal(t, StateIdle, h.pipe.State())
	assert.Empty(t, h.pipe.Snapshot().Error)
	assert.Empty(t, h.grader.calls())
	assert.Empty(t, h.advanced)
}

func TestPipelineRecordAgainIgnoresEarlierAnswer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := newHarness(t, clock, testCaptureConfig(), newFakeGrader())
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "goroutines are lightweight threads", Final: true}))
	res, err := h.pipe.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, ResultGraded, res.Kind)
	h.waitResult(t)

	// 重新录制但不说话，旧答案不能再被选中
	require.NoError(t, h.pipe.Start())
	assert.Empty(t, h.pipe.Snapshot().Preview)

	tick(clock, 11*time.Second)
	res = h.waitResult(t)
	assert.Equal(t, ResultDiscarded, res.Kind)
	assert.Empty(t, res.Answer)
	assert.Len(t, h.grader.calls(), 1)
	assert.Empty(t, h.advanced)
	assert.Equal(t, StateIdle, h.pipe.State())
}

func TestPipelineRecordAgainManualStopTooShort(t *testing.T) {
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), newFakeGrader(Outcome{Err: ErrEvaluator}))
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "channels connect goroutines", Final: true}))
	res, err := h.pipe.Stop(context.Background())
	assert.ErrorIs(t, err, ErrEvaluator)
	require.Equal(t, ResultFailed, res.Kind)
	h.waitResult(t)

	require.NoError(t, h.pipe.Start())
	res, err = h.pipe.Stop(context.Background())
	assert.ErrorIs(t, err, ErrAnswerTooShort)
	assert.Equal(t, ResultTooShort, res.Kind)
	assert.Len(t, h.grader.calls(), 1)
}

func TestPipelineSilenceGradesAndAdvances(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := newHarness(t, clock, testCaptureConfig(), newFakeGrader())
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "Channels pass values between goroutines", Final: true}))

	tick(clock, 10*time.Second)
	res := h.waitResult(t)
	assert.Equal(t, ResultGraded, res.Kind)
	assert.True(t, res.Auto)

	select {
	case index := <-h.advanced:
		assert.Equal(t, 0, index)
	case <-time.After(2 * time.Second):
		t.Fatal("expected auto advance")
	}
}

func TestPipelineAutoAdvanceWaitsForDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := testCaptureConfig()
	cfg.AutoAdvanceDelay = 500 * time.Millisecond
	h := newHarness(t, clock, cfg, newFakeGrader())
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "Channels pass values between goroutines", Final: true}))

	tick(clock, 10*time.Second)
	require.Equal(t, ResultGraded, h.waitResult(t).Kind)
	assert.Empty(t, h.advanced)

	require.Eventually(t, func() bool {
		clock.Advance(100 * time.Millisecond)
		return len(h.advanced) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPipelineSpeechRefreshesSilenceTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := newHarness(t, clock, testCaptureConfig(), newFakeGrader())
	require.NoError(t, h.pipe.Start())

	tick(clock, 6*time.Second)
	require.NoError(t, h.pipe.Feed(Fragment{Text: "The defer statement schedules a call", Final: true}))
	tick(clock, 6*time.Second)
	h.assertNoResult(t)

	tick(clock, 4*time.Second)
	res := h.waitResult(t)
	assert.Equal(t, ResultGraded, res.Kind)
}

func TestPipelineManualStopBeatsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	grader := newFakeGrader()
	grader.gate = make(chan struct{})
	h := newHarness(t, clock, testCaptureConfig(), grader)
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "Interfaces are satisfied implicitly", Final: true}))

	done := make(chan error, 1)
	go func() {
		_, err := h.pipe.Stop(context.Background())
		done <- err
	}()
	<-grader.entered

	// A second finalize while grading is in flight is rejected and the
	// silence timer can no longer fire.
	_, err := h.pipe.Stop(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	tick(clock, 15*time.Second)

	close(grader.gate)
	require.NoError(t, <-done)
	assert.Len(t, grader.calls(), 1)
	assert.Equal(t, ResultGraded, h.waitResult(t).Kind)
	h.assertNoResult(t)
}

func TestPipelineGraceDelayKeepsTrailingFragment(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := testCaptureConfig()
	cfg.GraceDelay = time.Second
	h := newHarness(t, clock, cfg, newFakeGrader())
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "Slices share", Final: true}))

	type stopped struct {
		res FinalizeResult
		err error
	}
	done := make(chan stopped, 1)
	go func() {
		res, err := h.pipe.Stop(context.Background())
		done <- stopped{res, err}
	}()

	require.Eventually(t, func() bool {
		return h.pipe.State() == StateFinalizing
	}, time.Second, time.Millisecond)
	require.NoError(t, h.pipe.Feed(Fragment{Text: "their backing array", Final: true}))

	var out stopped
	require.Eventually(t, func() bool {
		select {
		case out = <-done:
			return true
		default:
			clock.Advance(100 * time.Millisecond)
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, out.err)
	assert.Equal(t, "Slices share their backing array", out.res.Answer)
}

func TestPipelineFailedGradingCanBeRetried(t *testing.T) {
	parseErr := errors.New("bad json")
	grader := newFakeGrader(
		Outcome{Err: errors.Join(ErrGradingParse, parseErr)},
		Outcome{OK: true, Rating: 6, Feedback: "ok"},
	)
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), grader)

	_, err := h.pipe.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNotGradable)

	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "Maps are not safe for concurrent writes", Final: true}))

	res, err := h.pipe.Stop(context.Background())
	assert.ErrorIs(t, err, ErrGradingParse)
	assert.Equal(t, ResultFailed, res.Kind)
	snap := h.pipe.Snapshot()
	assert.Equal(t, StateFinalized, snap.State)
	assert.True(t, snap.Finalized)
	assert.False(t, snap.Graded)
	assert.NotEmpty(t, snap.Error)

	res, err = h.pipe.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultGraded, res.Kind)
	assert.Equal(t, "Maps are not safe for concurrent writes", res.Answer)
	assert.True(t, h.pipe.Snapshot().Graded)
	assert.Len(t, grader.calls(), 2)

	_, err = h.pipe.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNotGradable)
}

func TestPipelineResetDropsLateResult(t *testing.T) {
	grader := newFakeGrader(Outcome{OK: true, Rating: 3, Feedback: "thin"})
	grader.gate = make(chan struct{})
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), grader)
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "An answer for the first question", Final: true}))

	done := make(chan FinalizeResult, 1)
	go func() {
		res, _ := h.pipe.Stop(context.Background())
		done <- res
	}()
	<-grader.entered

	h.pipe.Reset(1)
	close(grader.gate)

	res := <-done
	assert.Equal(t, ResultStale, res.Kind)
	assert.Equal(t, 0, res.Index)

	snap := h.pipe.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.Graded)
	assert.Zero(t, snap.Rating)
	assert.NoError(t, h.pipe.Start())
}

func TestPipelineCloseDropsLateResult(t *testing.T) {
	grader := newFakeGrader()
	grader.gate = make(chan struct{})
	h := newHarness(t, clockwork.NewFakeClock(), testCaptureConfig(), grader)
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "Context carries deadlines", Final: true}))

	done := make(chan FinalizeResult, 1)
	go func() {
		res, _ := h.pipe.Stop(context.Background())
		done <- res
	}()
	<-grader.entered

	h.pipe.Close()
	close(grader.gate)
	assert.Equal(t, ResultStale, (<-done).Kind)
	assert.ErrorIs(t, h.pipe.Start(), ErrClosed)
}

func TestPipelineResetStopsRecording(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := newHarness(t, clock, testCaptureConfig(), newFakeGrader())
	require.NoError(t, h.pipe.Start())
	require.NoError(t, h.pipe.Feed(Fragment{Text: "half an answer", Final: true}))

	h.pipe.Reset(2)
	_, stops := h.rec.counts()
	assert.Equal(t, 1, stops)
	snap := h.pipe.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.CapturedText)
	assert.Empty(t, snap.Preview)

	// The old turn's monitor is gone.
	tick(clock, 12*time.Second)
	h.assertNoResult(t)
}

func TestTranscriptPolicyOrder(t *testing.T) {
	c := transcriptCandidates{buffer: "  ", rebuilt: "rebuilt text", preview: "preview text"}

	text, src := DefaultTranscriptPolicy.Select(c)
	assert.Equal(t, "rebuilt text", text)
	assert.Equal(t, SourceRebuilt, src)

	text, src = TranscriptPolicy{SourcePreview, SourceBuffer}.Select(c)
	assert.Equal(t, "preview text", text)
	assert.Equal(t, SourcePreview, src)

	text, src = DefaultTranscriptPolicy.Select(transcriptCandidates{})
	assert.Empty(t, text)
	assert.Equal(t, SourceNone, src)
}

func TestCaptureConfigDefaults(t *testing.T) {
	cfg := CaptureConfig{GraceDelay: -time.Second}.withDefaults()
	assert.Equal(t, 10*time.Second, cfg.SilenceTimeout)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Zero(t, cfg.GraceDelay)
	assert.Equal(t, 10, cfg.MinAnswerLength)
	assert.Equal(t, DefaultTranscriptPolicy, cfg.Policy)
}
