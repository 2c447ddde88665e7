package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	prometheusotel "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"searchkit/internal/config"
	"searchkit/internal/logging"
	"searchkit/internal/skill"
)

const (
	skillRoute      = "/api/topwords"
	maxRequestBytes = 16 << 20
	invalidBodyText = "Invalid body"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file")
	listen := flag.String("listen", "", "Override the listen address (e.g. :7071)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg = cfg.ApplyEnv()
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	logger := logging.New(os.Stdout, cfg.Logging.Level)
	ctx := context.Background()

	telemetry := newTelemetry(ctx, logger, cfg.MetricsEnabled())
	server := newSkillServer(skill.DefaultProcessor(), telemetry, logger)
	handler := newHandler(server, telemetry, cfg.RequestLogsEnabled())

	logger.Info("top-words skill listening", "listen", cfg.Server.Listen, "route", skillRoute)
	if err := http.ListenAndServe(cfg.Server.Listen, handler); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

func newHandler(server *skillServer, telemetry *telemetry, logRequests bool) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(skillRoute, server.handleTopWords)
	mux.HandleFunc("/v1/health", server.handleHealth)
	if telemetry.enabled {
		mux.HandleFunc("/v1/metrics", telemetry.handleMetrics)
	}

	handler := withRequestID(mux)
	return withTelemetry(handler, telemetry, logRequests)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type telemetry struct {
	enabled bool
	logger  *slog.Logger

	registry       *prometheus.Registry
	metricsHandler http.Handler
	meter          metric.Meter

	reqCount   atomic.Int64
	errCount   atomic.Int64
	lastStatus atomic.Int64

	httpRequests metric.Int64Counter
	httpErrors   metric.Int64Counter
	httpLatency  metric.Float64Histogram
	batchLatency metric.Float64Histogram

	recordOutcomes *prometheus.CounterVec
	batchSize      prometheus.Histogram
}

func newTelemetry(ctx context.Context, logger *slog.Logger, enabled bool) *telemetry {
	telemetry := &telemetry{enabled: enabled, logger: logger}
	if !enabled {
		return telemetry
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	exporter, err := prometheusotel.New(prometheusotel.WithRegisterer(registry))
	if err != nil {
		logger.Error("failed to initialize prometheus exporter", "error", err)
		telemetry.enabled = false
		return telemetry
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter("searchkit")

	httpReq, _ := meter.Int64Counter("http_requests_total", metric.WithDescription("Total HTTP requests"))
	httpErr, _ := meter.Int64Counter("http_errors_total", metric.WithDescription("HTTP requests that returned an error status"))
	httpLatency, _ := meter.Float64Histogram("http_request_duration_ms", metric.WithDescription("Latency of HTTP requests in milliseconds"), metric.WithUnit("ms"))
	batchLatency, _ := meter.Float64Histogram("skill_batch_duration_ms", metric.WithDescription("Time spent transforming a batch of records"), metric.WithUnit("ms"))

	recordOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "searchkit", Name: "skill_records_total", Help: "Records handled by the top-words skill by outcome"}, []string{"outcome"})
	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "searchkit", Name: "skill_batch_records", Help: "Records received per batch", Buckets: prometheus.ExponentialBuckets(1, 2, 10)})
	registry.MustRegister(recordOutcomes, batchSize)

	telemetry.registry = registry
	telemetry.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	telemetry.meter = meter
	telemetry.httpRequests = httpReq
	telemetry.httpErrors = httpErr
	telemetry.httpLatency = httpLatency
	telemetry.batchLatency = batchLatency
	telemetry.recordOutcomes = recordOutcomes
	telemetry.batchSize = batchSize

	telemetry.logger.Info("telemetry initialized", "prometheus", true)
	telemetry.httpRequests.Add(ctx, 0) // ensure metric is created eagerly
	return telemetry
}

func (t *telemetry) recordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	t.reqCount.Add(1)
	t.lastStatus.Store(int64(status))
	if status >= http.StatusBadRequest {
		t.errCount.Add(1)
	}
	if !t.enabled {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	t.httpRequests.Add(ctx, 1, attrs)
	t.httpLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if status >= http.StatusBadRequest {
		t.httpErrors.Add(ctx, 1, attrs)
	}
}

func (t *telemetry) recordBatch(ctx context.Context, summary skill.Summary, duration time.Duration) {
	if !t.enabled {
		return
	}

	t.batchLatency.Record(ctx, float64(duration.Milliseconds()))
	t.batchSize.Observe(float64(summary.Received))
	t.recordOutcomes.WithLabelValues(skill.OutcomeOK.String()).Add(float64(summary.OK))
	t.recordOutcomes.WithLabelValues(skill.OutcomeInvalid.String()).Add(float64(summary.Invalid))
	t.recordOutcomes.WithLabelValues(skill.OutcomeFailed.String()).Add(float64(summary.Failed))
	t.recordOutcomes.WithLabelValues(skill.OutcomeDropped.String()).Add(float64(summary.Dropped))
}

func (t *telemetry) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !t.enabled || t.registry == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"enabled":false}`)
		return
	}

	t.metricsHandler.ServeHTTP(w, r)
}

func withTelemetry(next http.Handler, telemetry *telemetry, logRequests bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(start)

		if telemetry != nil {
			telemetry.recordRequest(r.Context(), r.Method, r.URL.Path, recorder.status, duration)
		}
		if logRequests && telemetry != nil && telemetry.logger != nil {
			telemetry.logger.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", recorder.status, "duration_ms", duration.Milliseconds(), "request_id", r.Header.Get("X-Request-ID"))
		}
	})
}

type skillServer struct {
	processor *skill.Processor
	telemetry *telemetry
	logger    *slog.Logger
}

func newSkillServer(processor *skill.Processor, telemetry *telemetry, logger *slog.Logger) *skillServer {
	return &skillServer{processor: processor, telemetry: telemetry, logger: logger}
}

func (s *skillServer) handleTopWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}

	batch, summary, err := s.processor.Compose(body)
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}

	payload, err := batch.Encode()
	if err != nil {
		s.logger.Error("encode batch", "error", err, "request_id", r.Header.Get("X-Request-ID"))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	duration := time.Since(start)
	if s.telemetry != nil {
		s.telemetry.recordBatch(r.Context(), summary, duration)
	}
	s.logger.Info("skill batch processed",
		"records", summary.Received,
		"ok", summary.OK,
		"invalid", summary.Invalid,
		"failed", summary.Failed,
		"dropped", summary.Dropped,
		"duration_ms", duration.Milliseconds(),
		"request_id", r.Header.Get("X-Request-ID"))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *skillServer) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	level := slog.LevelWarn
	if !errors.Is(err, skill.ErrInvalidBody) {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "rejected skill request", "error", err, "request_id", r.Header.Get("X-Request-ID"))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = io.WriteString(w, invalidBodyText)
}

func (s *skillServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}
