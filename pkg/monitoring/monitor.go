package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// GradingTotal 评分调用结果: ok / parse_error / evaluator_error / persistence_error
	GradingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_grading_total",
			Help: "Grading attempts by result",
		},
		[]string{"result"},
	)

	GradingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_grading_duration_seconds",
			Help:    "Duration of evaluator calls including persistence",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
	)

	FinalizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_finalize_total",
			Help: "Finished answer turns by outcome and trigger",
		},
		[]string{"kind", "trigger"},
	)

	InterviewsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sessions_created_total",
			Help: "Generated interview sessions",
		},
	)

	LiveRuns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_live_runs",
			Help: "Interview runs currently open",
		},
	)

	LiveMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_live_messages_total",
			Help: "Messages received on live interview sockets",
		},
		[]string{"type"},
	)

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			GradingTotal,
			GradingDuration,
			FinalizeTotal,
			InterviewsCreated,
			LiveRuns,
			LiveMessages,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
