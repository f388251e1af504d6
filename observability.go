package main

import (
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"novamcp/nova"
)

// initLogger writes to stderr: stdout carries JSON dumps and the MCP stdio
// channel.
func initLogger(app, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	nova.SetLogger(logger)
	return logger
}

const defaultNamespace = "novamcp"

type metricSet struct {
	framesParsed   *prometheus.CounterVec
	framesInvalid  *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	deviceRequests *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

var (
	registerOnce sync.Once
	metrics      metricSet
)

func newMetricSet(namespace string) metricSet {
	return metricSet{
		framesParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "parsed_total",
				Help:      "Frames parsed, by kind.",
			},
			[]string{"kind"},
		),
		framesInvalid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "invalid_total",
				Help:      "Frames that failed validation, by kind and failed check.",
			},
			[]string{"kind", "reason"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "slot",
				Name:      "decode_fallbacks_total",
				Help:      "Stored values shown as the type default because they had no entry.",
			},
			[]string{"type"},
		),
		deviceRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "device",
				Name:      "requests_total",
				Help:      "Dump requests and transmissions to the unit.",
			},
			[]string{"kind", "result"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// registerMetrics registers the collectors once. The namespace of the first
// call wins.
func registerMetrics(namespace string) {
	registerOnce.Do(func() {
		if namespace == "" {
			namespace = defaultNamespace
		}
		metrics = newMetricSet(namespace)
		prometheus.MustRegister(
			metrics.framesParsed,
			metrics.framesInvalid,
			metrics.fallbacks,
			metrics.deviceRequests,
			metrics.httpDuration,
		)
		nova.SetDecodeFallbackHook(recordFallback)
	})
}

func recordFrame(kind nova.Kind, validateErr error) {
	registerMetrics(defaultNamespace)
	metrics.framesParsed.WithLabelValues(kind.String()).Inc()
	if validateErr != nil {
		metrics.framesInvalid.WithLabelValues(kind.String(), invalidReason(validateErr)).Inc()
	}
}

func invalidReason(err error) string {
	var ve *nova.ValidationError
	if errors.As(err, &ve) {
		return ve.Check.String()
	}
	return "other"
}

func recordFallback(id nova.TypeID) {
	registerMetrics(defaultNamespace)
	metrics.fallbacks.WithLabelValues(id.String()).Inc()
}

func recordDeviceRequest(kind string, err error) {
	registerMetrics(defaultNamespace)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.deviceRequests.WithLabelValues(kind, result).Inc()
}

func recordHTTPRequest(method, path string, status int, duration time.Duration) {
	registerMetrics(defaultNamespace)
	metrics.httpDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size()).
			Msg("http_request")
	}
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		recordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
