// Package metrics registra los collectors Prometheus del servicio.
// Los Record* son no-op hasta que se llama Register.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge

	// Auth
	loginsTotal          *prometheus.CounterVec
	tokenRejectionsTotal *prometheus.CounterVec
	refreshesTotal       *prometheus.CounterVec
	rateLimitedTotal     *prometheus.CounterVec

	// Audio
	uploadsTotal *prometheus.CounterVec
	uploadBytes  prometheus.Counter
)

// Config dependencias de Register.
type Config struct {
	// Registry donde registrar; default prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
	// Pool opcional para exponer stats del pgxpool.
	Pool func() *pgxpool.Pool
}

// Register crea los collectors (una sola vez por proceso) y los registra en
// cfg.Registry. Llamarlo con otro registry expone los mismos collectors ahí.
func Register(cfg Config) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "route", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

		httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Logins por resultado",
		}, []string{"result"}) // created|existing|provider_error|missing_token|missing_subject|error

		tokenRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Tokens de sesión rechazados por motivo",
		}, []string{"reason"}) // expired|malformed|wrong_kind|missing

		refreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refreshes_total",
			Help: "Intercambios de refresh token por resultado",
		}, []string{"result"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"route"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audio_uploads_total",
			Help: "Uploads de audio por resultado",
		}, []string{"result"})

		uploadBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audio_upload_bytes_total",
			Help: "Bytes de audio almacenados",
		})

	})

	for _, c := range []prometheus.Collector{
		httpRequestsTotal, httpRequestDuration, httpInflight,
		loginsTotal, tokenRejectionsTotal, refreshesTotal, rateLimitedTotal,
		uploadsTotal, uploadBytes,
	} {
		if err := registerCollector(registry, c); err != nil {
			return nil, err
		}
	}

	if cfg.Pool != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.Pool)); err != nil {
			return nil, err
		}
	}

	if g, ok := registry.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
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

// ObserveHTTP registra una request terminada.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	method = strings.ToUpper(method)
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// InflightAdd suma delta a las requests en vuelo.
func InflightAdd(delta float64) {
	if httpInflight != nil {
		httpInflight.Add(delta)
	}
}

func RecordLogin(result string) {
	if loginsTotal != nil {
		loginsTotal.WithLabelValues(result).Inc()
	}
}

func RecordTokenRejection(reason string) {
	if tokenRejectionsTotal != nil {
		tokenRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

func RecordRefresh(result string) {
	if refreshesTotal != nil {
		refreshesTotal.WithLabelValues(result).Inc()
	}
}

func RecordRateLimited(route string) {
	if rateLimitedTotal != nil {
		rateLimitedTotal.WithLabelValues(route).Inc()
	}
}

// RecordUpload resultado de un upload; bytes sólo cuenta si result == "stored".
func RecordUpload(result string, bytes int64) {
	if uploadsTotal == nil {
		return
	}
	uploadsTotal.WithLabelValues(result).Inc()
	if result == "stored" && bytes > 0 {
		uploadBytes.Add(float64(bytes))
	}
}

// dbPoolCollector expone gauges del pool global.
type dbPoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(pool func() *pgxpool.Pool) *dbPoolCollector {
	return &dbPoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	p := c.pool()
	if p == nil {
		return
	}
	stat := p.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}

var (
	uuidSegmentRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
)

// NormalizePath reemplaza segmentos dinámicos (uuid, hex, numéricos) por
// ":param". Se usa cuando el router no resolvió un patrón de ruta.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
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
	if len(seg) > 48 || uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}
