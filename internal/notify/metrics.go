package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	webhookSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_webhook_sent_total",
			Help: "Webhook notifications delivered",
		},
	)

	webhookFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "raidcrawler_webhook_failures_total",
			Help: "Webhook notifications that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(webhookSent)
	prometheus.MustRegister(webhookFailures)
}
