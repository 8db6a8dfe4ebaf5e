package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec
	ballotsCastTotal  *prometheus.CounterVec
	otpIssuedTotal    *prometheus.CounterVec
	otpVerifiedTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voteguard_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voteguard_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voteguard_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		ballotsCastTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voteguard_ballots_cast_total",
			Help: "Total number of ballots accepted, labelled by election.",
		}, []string{"election"})

		otpIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voteguard_otp_issued_total",
			Help: "Total number of one-time codes issued, labelled by channel.",
		}, []string{"channel"})

		otpVerifiedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voteguard_otp_verified_total",
			Help: "Total number of one-time codes verified, labelled by channel and outcome.",
		}, []string{"channel", "outcome"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			ballotsCastTotal,
			otpIssuedTotal,
			otpVerifiedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// BallotsCast exposes the counter for accepted ballots.
func BallotsCast() *prometheus.CounterVec {
	RegisterMetrics()
	return ballotsCastTotal
}

// OTPIssued exposes the counter for issued one-time codes.
func OTPIssued() *prometheus.CounterVec {
	RegisterMetrics()
	return otpIssuedTotal
}

// OTPVerified exposes the counter for verification attempts.
func OTPVerified() *prometheus.CounterVec {
	RegisterMetrics()
	return otpVerifiedTotal
}
