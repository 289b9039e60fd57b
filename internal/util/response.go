package util

import (
	"errors"
	"net/http"

	"mock_interview_backend/internal/interview"
	"mock_interview_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData 失败但仍需返回当前状态（例如评分失败后的回合快照）
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// StatusFor 将领域错误映射为 HTTP 状态码
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, interview.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, interview.ErrInvalidIndex),
		errors.Is(err, interview.ErrAtEnd):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrBusy),
		errors.Is(err, interview.ErrCaptureActive),
		errors.Is(err, interview.ErrNotRecording),
		errors.Is(err, interview.ErrNotGradable),
		errors.Is(err, interview.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, interview.ErrAnswerTooShort),
		errors.Is(err, interview.ErrMalformedData),
		errors.Is(err, interview.ErrUnsupportedEnvironment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interview.ErrGradingParse),
		errors.Is(err, interview.ErrEvaluator),
		errors.Is(err, ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 根据错误类型返回统一响应，未知错误记录日志并隐藏细节
func HandleError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Error(c, code, err.Error())
}
