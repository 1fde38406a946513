package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Decode stages.
const (
	StageRender  = "render"
	StageUpload  = "upload"
	StageArchive = "archive"
)

const (
	outcomeOK     = "ok"
	outcomeFailed = "error"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "g2dtex",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "g2dtex",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "g2dtex",
			Subsystem: "decode",
			Name:      "total",
			Help:      "Command list decodes by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "g2dtex",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Decode duration in seconds by stage.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"stage"},
	)
	texturesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "g2dtex",
			Subsystem: "renderer",
			Name:      "textures_created_total",
			Help:      "Textures created on the renderer backend.",
		},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "g2dtex",
			Subsystem: "material_cache",
			Name:      "lookups_total",
			Help:      "Material cache lookups by result.",
		},
		[]string{"result"},
	)
	archivesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "g2dtex",
			Subsystem: "library",
			Name:      "archives_loaded",
			Help:      "G2D archives currently published in the library.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, decodeTotal, decodeDuration,
			texturesCreated, cacheLookups, archivesLoaded)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordDecode(stage string, duration time.Duration, err error) {
	RegisterMetrics()
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFailed
	}
	decodeTotal.WithLabelValues(stage, outcome).Inc()
	decodeDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func RecordTextureCreated() {
	RegisterMetrics()
	texturesCreated.Inc()
}

func RecordCacheLookup(hit bool) {
	RegisterMetrics()
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

func SetArchivesLoaded(n int) {
	RegisterMetrics()
	archivesLoaded.Set(float64(n))
}
