package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auction"

var (
	// bidsAdmitted counts bids appended to a ledger.
	bidsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bids",
		Name:      "admitted_total",
		Help:      "Total bids admitted to an auction ledger",
	})

	// bidsRejected counts expected rejections.
	// Labels: reason (InvalidAmount, AuctionNotFound, AuctionNotActive, BidTooLow)
	bidsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bids",
		Name:      "rejected_total",
		Help:      "Total bids rejected by admission rules",
	}, []string{"reason"})

	// bidsThrottled counts submissions refused by the per-bidder throttle.
	bidsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bids",
		Name:      "throttled_total",
		Help:      "Total bid submissions refused by the rate limiter",
	})

	// admissionDuration measures the full submit path including the ledger critical section.
	// Labels: outcome (admitted, rejected, error)
	admissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "bids",
		Name:      "admission_duration_seconds",
		Help:      "Bid admission latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"outcome"})

	auctionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auctions",
		Name:      "created_total",
		Help:      "Total auctions created",
	})

	// moderationDeletes counts admin deletions.
	// Labels: target (bid, auction)
	moderationDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "moderation",
		Name:      "deletes_total",
		Help:      "Total records deleted by moderators",
	}, []string{"target"})
)

// Admission outcomes
const (
	OutcomeAdmitted = "admitted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Moderation targets
const (
	TargetBid     = "bid"
	TargetAuction = "auction"
)

// RecordAdmission records one finished submission.
//
// Inputs:
//
//	outcome - OutcomeAdmitted, OutcomeRejected or OutcomeError.
//	reason - Rejection reason, ignored unless outcome is OutcomeRejected.
//	durationSec - Time spent in the engine in seconds.
func RecordAdmission(outcome, reason string, durationSec float64) {
	admissionDuration.WithLabelValues(outcome).Observe(durationSec)
	switch outcome {
	case OutcomeAdmitted:
		bidsAdmitted.Inc()
	case OutcomeRejected:
		bidsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordThrottled records a throttled submission
func RecordThrottled() {
	bidsThrottled.Inc()
}

// RecordAuctionCreated records a new auction
func RecordAuctionCreated() {
	auctionsCreated.Inc()
}

// RecordModerationDelete records an admin deletion of target
func RecordModerationDelete(target string) {
	moderationDeletes.WithLabelValues(target).Inc()
}
