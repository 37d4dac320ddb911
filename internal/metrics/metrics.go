package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_started_total",
			Help: "Games whose first cell was opened",
		},
		[]string{"difficulty"},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_finished_total",
			Help: "Games that ended in a win or a loss",
		},
		[]string{"difficulty", "result"},
	)
	WinSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minesweeper_win_seconds",
			Help:    "Timer value of won games",
			Buckets: []float64{5, 10, 20, 40, 60, 120, 240, 480, 999},
		},
		[]string{"difficulty"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "minesweeper_active_sessions",
			Help: "Sessions currently held by the server",
		},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		},
		[]string{"pattern", "code"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minesweeper_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pattern"},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(WinSeconds)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}
