package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorador_http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "explorador_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Gemini identification metrics
var (
	GeminiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorador_gemini_requests_total",
		Help: "Gemini generateContent attempts by model and outcome",
	}, []string{"model", "outcome"})

	GeminiAPILatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "explorador_gemini_latency_seconds",
		Help:    "Latency of successful Gemini calls",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
	})

	IdentifyResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorador_identify_results_total",
		Help: "Identification results by category and result (ok, api_error, model_error)",
	}, []string{"category", "result"})
)

// Enrichment resolver metrics
var (
	ImageLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorador_image_lookups_total",
		Help: "Illustration lookups by resolved source (wikipedia_en, wikipedia_es, placeholder)",
	}, []string{"source"})

	SoundLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorador_sound_lookups_total",
		Help: "Sound lookups by resolved source (xeno_canto, wikimedia, local, none)",
	}, []string{"source"})
)

// Ledger gauges, refreshed from the database by the metrics worker.
var (
	ExplorersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "explorador_explorers_total",
		Help: "Registered explorers",
	})

	DiscoveriesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "explorador_discoveries_total",
		Help: "Saved discoveries",
	})

	DiscoveriesByCategory = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "explorador_discoveries_by_category",
		Help: "Saved discoveries by category",
	}, []string{"category"})

	PointsAwardedTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "explorador_points_awarded_total",
		Help: "Sum of points across saved discoveries",
	})
)
