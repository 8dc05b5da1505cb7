// Package metrics registra las métricas Prometheus del cliente del API
// (llamadas salientes) y del dashboard (requests entrantes).
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// API remoto (cliente)
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// Dashboard (servidor)
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	loaderDegradedTotal *prometheus.CounterVec
	rateLimitedTotal    *prometheus.CounterVec
)

// Register inicializa las métricas en el registry indicado (DefaultRegisterer si es nil)
// y devuelve el handler para /metrics.
func Register(registry prometheus.Registerer) (http.Handler, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emailez_api_requests_total",
			Help: "Llamadas al API de Email EZ por método, ruta y status",
		}, []string{"method", "path", "status"})

		apiRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emailez_api_request_duration_seconds",
			Help:    "Latencia de las llamadas al API de Email EZ",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas por el dashboard",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP del dashboard",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		loaderDegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_loader_degraded_total",
			Help: "Ramas de loaders que fallaron y degradaron a datos vacíos",
		}, []string{"loader", "branch"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_rate_limited_total",
			Help: "Acciones rechazadas por rate limit",
		}, []string{"action"})

		for _, c := range []prometheus.Collector{
			apiRequestsTotal, apiRequestDuration,
			httpRequestsTotal, httpRequestDuration, httpInflight,
			loaderDegradedTotal, rateLimitedTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}
	return promhttp.Handler(), nil
}

// ObserveAPICall registra una llamada saliente. status 0 = error de transporte.
func ObserveAPICall(method, path string, status int, d time.Duration) {
	if apiRequestsTotal == nil || apiRequestDuration == nil {
		return
	}
	method = strings.ToUpper(method)
	p := NormalizePath(path)
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	apiRequestsTotal.WithLabelValues(method, p, label).Inc()
	apiRequestDuration.WithLabelValues(method, p).Observe(d.Seconds())
}

// RecordLoaderDegraded cuenta una rama de loader que cayó a su fallback.
func RecordLoaderDegraded(loader, branch string) {
	if loaderDegradedTotal != nil {
		loaderDegradedTotal.WithLabelValues(loader, branch).Inc()
	}
}

// RecordRateLimited cuenta una acción rechazada por rate limit.
func RecordRateLimited(action string) {
	if rateLimitedTotal != nil {
		rateLimitedTotal.WithLabelValues(action).Inc()
	}
}

// WithMetrics instrumenta requests HTTP (contadores, latencia, inflight).
func WithMetrics(next http.Handler) http.Handler {
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := NormalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath reemplaza segmentos dinámicos (uuid, ids numéricos, tokens) por
// ":param" para mantener acotada la cardinalidad de labels.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}

	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
