package interview

import "errors"

var (
	ErrNotFound               = errors.New("interview not found")
	ErrMalformedData          = errors.New("stored question list is malformed")
	ErrInvalidIndex           = errors.New("question index out of range")
	ErrAtEnd                  = errors.New("already at the last question")
	ErrUnsupportedEnvironment = errors.New("speech recognition is not available")
	ErrAnswerTooShort         = errors.New("answer too short")
	ErrGradingParse           = errors.New("evaluator response could not be parsed")
	ErrEvaluator              = errors.New("evaluator request failed")
	ErrPersistence            = errors.New("failed to save answer")
	ErrBusy                   = errors.New("answer is already being submitted")
	ErrCaptureActive          = errors.New("an answer is already being recorded")
	ErrNotRecording           = errors.New("not recording")
	ErrNotGradable            = errors.New("no finalized answer waiting for grading")
	ErrClosed                 = errors.New("interview session closed")
)

// IsRetryable 用户能否通过重新录制或重新提交解决该错误
func IsRetryable(err error) bool {
	return errors.Is(err, ErrAnswerTooShort) ||
		errors.Is(err, ErrGradingParse) ||
		errors.Is(err, ErrEvaluator) ||
		errors.Is(err, ErrPersistence)
}
