package filter

import "github.com/prometheus/client_golang/prometheus"

var (
	loadedFilters = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "raidcrawler_filters_loaded",
			Help: "Number of filters in the current rules file",
		},
	)

	reloadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_filter_reload_failures_total",
			Help: "Rules file reloads rejected because the file was invalid",
		},
	)
)

func init() {
	prometheus.MustRegister(loadedFilters)
	prometheus.MustRegister(reloadFailures)
}
