package search

import "github.com/prometheus/client_golang/prometheus"

var (
	triesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_search_tries_total",
			Help: "Date advance cycles performed",
		},
	)

	successesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_search_successes_total",
			Help: "Date advance cycles that changed the raid seeds",
		},
	)

	resetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_search_resets_total",
			Help: "Game restarts performed by the search loop",
		},
	)

	matchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_search_matches_total",
			Help: "Filter matches found by the search loop",
		},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidcrawler_search_runs_total",
			Help: "Search runs by outcome",
		},
		[]string{"outcome"},
	)

	iterationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "raidcrawler_search_iteration_duration_seconds",
			Help:    "Duration of one advance and read cycle",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(triesTotal)
	prometheus.MustRegister(successesTotal)
	prometheus.MustRegister(resetsTotal)
	prometheus.MustRegister(matchesTotal)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(iterationDuration)
}
