package scan

import "github.com/prometheus/client_golang/prometheus"

var (
	raidsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "raidcrawler_scan_raids",
			Help: "Raids in the current snapshot by region",
		},
		[]string{"region"},
	)

	decodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidcrawler_scan_decode_failures_total",
			Help: "Records the decoder could not resolve, by region and kind",
		},
		[]string{"region", "kind"},
	)

	readsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raidcrawler_scan_reads_total",
			Help: "Full scans by result",
		},
		[]string{"result"},
	)

	matchGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "raidcrawler_scan_filter_matches",
			Help: "Raids of the current snapshot matching an enabled filter",
		},
	)
)

func init() {
	prometheus.MustRegister(raidsGauge)
	prometheus.MustRegister(decodeFailures)
	prometheus.MustRegister(readsTotal)
	prometheus.MustRegister(matchGauge)
}
