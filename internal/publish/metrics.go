package publish

import "github.com/prometheus/client_golang/prometheus"

var (
	writesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_publish_writes_total",
			Help: "State writes published to Redis",
		},
	)

	writeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_publish_write_errors_total",
			Help: "State writes that Redis rejected",
		},
	)

	droppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_publish_dropped_total",
			Help: "State writes dropped because the queue was full",
		},
	)
)

func init() {
	prometheus.MustRegister(writesTotal)
	prometheus.MustRegister(writeErrorsTotal)
	prometheus.MustRegister(droppedTotal)
}
