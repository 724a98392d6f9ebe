package delivery

import "github.com/prometheus/client_golang/prometheus"

var (
	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidcrawler_delivery_refresh_total",
			Help: "Delivery refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	artifactFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidcrawler_delivery_artifact_fetch_total",
			Help: "Delivery artifacts fetched from the console rather than the local cache",
		},
		[]string{"artifact"},
	)

	activeVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "raidcrawler_delivery_version",
			Help: "Version of the delivery priority table currently loaded",
		},
	)
)

func init() {
	prometheus.MustRegister(refreshTotal)
	prometheus.MustRegister(artifactFetchTotal)
	prometheus.MustRegister(activeVersion)
}
