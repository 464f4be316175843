package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_marketplace", Name: "requests_created_total",
		Help: "Transport requests published"})
	OffersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_marketplace", Name: "offers_submitted_total",
		Help: "Driver offers submitted"})
	OffersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_marketplace", Name: "offers_accepted_total",
		Help: "Offers accepted by passengers"})
	PaymentsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_marketplace", Name: "payments_confirmed_total",
		Help: "Requests marked paid"})

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ride_marketplace", Name: "side_effect_failures_total",
			Help: "Non-fatal notification/realtime/email failures"},
		[]string{"kind"},
	)
)
