package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PaymentConfirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_confirmations_total",
			Help: "Payment confirmations processed, by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Gateway webhook deliveries, by event type and outcome",
		},
		[]string{"event_type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(PaymentConfirmations)
	prometheus.MustRegister(WebhookEvents)
}
