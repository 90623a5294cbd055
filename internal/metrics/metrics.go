package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// HTTP metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techie_http_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "techie_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Ledger metrics
	CheckInsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "techie_check_ins_total",
			Help: "Total successful check-ins",
		},
	)

	CheckOutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "techie_check_outs_total",
			Help: "Total successful check-outs",
		},
	)

	CheckInConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "techie_check_in_conflicts_total",
			Help: "Check-ins rejected because an active session already existed",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "techie_active_sessions",
			Help: "Sessions opened minus sessions closed since process start",
		},
	)

	SessionMinutes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "techie_session_minutes",
			Help:    "Length of completed sessions in minutes",
			Buckets: []float64{15, 30, 60, 120, 240, 480, 720},
		},
	)

	// Billing metrics
	PlanChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techie_plan_changes_total",
			Help: "Plan changes by target plan",
		},
		[]string{"plan"},
	)

	// QR metrics
	QRScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techie_qr_scans_total",
			Help: "QR scans by outcome",
		},
		[]string{"outcome"},
	)

	QRCodesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "techie_qr_codes_issued_total",
			Help: "QR codes generated",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		CheckInsTotal,
		CheckOutsTotal,
		CheckInConflicts,
		ActiveSessions,
		SessionMinutes,
		PlanChangesTotal,
		QRScansTotal,
		QRCodesIssued,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start serves metrics in the background.
func (s *Server) Start() {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
