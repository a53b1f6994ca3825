// Package monitor is a read-only HTTP observer over a caniot.Device: the
// concrete analogue of the "controller-side logic" collaborator the core
// spec leaves out of scope, restricted to observing traffic rather than
// scheduling queries.
package monitor

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/caniot-project/caniot"
)

// Metrics are the Prometheus counters exported at /metrics, updated from
// the same System counters the core already maintains on dev.
type Metrics struct {
	FramesReceived  prometheus.Counter
	FramesSent      prometheus.Counter
	TelemetrySent   prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec // labels: code
}

// NewMetrics builds and registers the monitor's counters against reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caniot_frames_received_total",
			Help: "Total frames received by the monitored device.",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caniot_frames_sent_total",
			Help: "Total frames sent by the monitored device.",
		}),
		TelemetrySent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caniot_telemetry_sent_total",
			Help: "Total telemetry frames sent by the monitored device.",
		}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caniot_errors_total",
			Help: "Total error frames observed, by error code.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.FramesReceived, m.FramesSent, m.TelemetrySent, m.ErrorsTotal)
	reg.MustRegister(collectors.NewGoCollector())
	return m
}

// Sample updates the counters from dev's current System snapshot. Since
// System counters only ever increase, each call re-derives a delta against
// the last-observed total rather than re-exporting the raw counter, so a
// Prometheus scrape sees monotonically increasing series even across
// dev.Init() resets.
type Sample struct {
	lastReceived    uint32
	lastSent        uint32
	lastTelemetry   uint32
	lastCommandErr  int16
	lastTelemetryErr int16
}

func (s *Sample) Update(m *Metrics, sys *caniot.System) {
	if d := delta(sys.Received.Total, &s.lastReceived); d > 0 {
		m.FramesReceived.Add(float64(d))
	}
	if d := delta(sys.Sent.Total, &s.lastSent); d > 0 {
		m.FramesSent.Add(float64(d))
	}
	if d := delta(sys.Sent.Telemetry, &s.lastTelemetry); d > 0 {
		m.TelemetrySent.Add(float64(d))
	}
	if sys.LastCommandError != 0 && sys.LastCommandError != s.lastCommandErr {
		m.ErrorsTotal.WithLabelValues(caniot.ErrorCode(sys.LastCommandError).Error()).Inc()
	}
	s.lastCommandErr = sys.LastCommandError
	if sys.LastTelemetryError != 0 && sys.LastTelemetryError != s.lastTelemetryErr {
		m.ErrorsTotal.WithLabelValues(caniot.ErrorCode(sys.LastTelemetryError).Error()).Inc()
	}
	s.lastTelemetryErr = sys.LastTelemetryError
}

func delta(current uint32, last *uint32) uint32 {
	d := current - *last
	if current < *last {
		// The counter restarted from zero (dev.Init()).
		d = current
	}
	*last = current
	return d
}

// Server is the monitor's gin-based HTTP surface: /healthz, /status and
// /metrics, with a trace id header on every response.
type Server struct {
	dev     *caniot.Device
	metrics *Metrics
	sample  *Sample
	logger  *zap.Logger
	engine  *gin.Engine
	srv     *http.Server
}

// New builds a monitor Server bound to addr, observing dev and exposing
// metrics registered against reg.
func New(addr string, dev *caniot.Device, reg *prometheus.Registry, logger *zap.Logger) *Server {
	m := NewMetrics(reg)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{dev: dev, metrics: m, sample: &Sample{}, logger: logger, engine: r}

	r.Use(s.traceMiddleware)
	r.GET("/healthz", s.handleHealthz)
	r.GET("/status", s.handleStatus)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

// traceMiddleware tags every response with a fresh trace id so multiple
// concurrent monitor sessions watching the same bus can be distinguished in
// aggregated logs.
func (s *Server) traceMiddleware(c *gin.Context) {
	traceID := uuid.New().String()
	c.Header("X-Trace-Id", traceID)
	c.Set("trace_id", traceID)
	c.Next()
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// statusView is the JSON shape returned by /status.
type statusView struct {
	Did         string `json:"did"`
	Version     uint16 `json:"version"`
	Uptime      uint32 `json:"uptime_seconds"`
	Time        uint32 `json:"time"`
	Received    uint32 `json:"received_total"`
	Sent        uint32 `json:"sent_total"`
	LastCmdErr  int16  `json:"last_command_error"`
	LastTlmErr  int16  `json:"last_telemetry_error"`
	ObservedAt  string `json:"observed_at"`
}

func (s *Server) handleStatus(c *gin.Context) {
	did := s.dev.Did()
	sys := s.dev.System
	s.sample.Update(s.metrics, &sys)

	view := statusView{
		Did:        did.String(),
		Version:    s.dev.Identification.Version,
		Uptime:     sys.Uptime,
		Time:       sys.Time,
		Received:   sys.Received.Total,
		Sent:       sys.Sent.Total,
		LastCmdErr: sys.LastCommandError,
		LastTlmErr: sys.LastTelemetryError,
		ObservedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if s.logger != nil {
		s.logger.Debug("status observed", zap.String("trace_id", c.GetString("trace_id")), zap.String("did", view.Did))
	}
	c.JSON(http.StatusOK, view)
}

// ListenAndServe runs the monitor's HTTP server, blocking until it exits.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.srv.Close()
}
