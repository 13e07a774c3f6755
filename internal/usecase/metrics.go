package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeParticipated    = "participated"
	outcomeNotParticipated = "not_participated"
	outcomeRejected        = "rejected"
)

var (
	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "participation_verifications_total",
		Help: "Verification pipeline runs by outcome.",
	}, []string{"outcome"})

	verificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "participation_verification_duration_seconds",
		Help:    "End-to-end verification pipeline latency.",
		Buckets: prometheus.DefBuckets,
	})
)

func observeVerification(outcome string, elapsed time.Duration) {
	verificationsTotal.WithLabelValues(outcome).Inc()
	verificationDuration.Observe(elapsed.Seconds())
}
