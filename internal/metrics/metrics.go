package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesTotal        *prometheus.CounterVec
	voteRejections    *prometheus.CounterVec
	revenueTotal      *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voting",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the voting API.",
		}, []string{"method", "path", "status"})

		votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voting",
			Name:      "votes_total",
			Help:      "Votes recorded, by competition and whether they were paid.",
		}, []string{"competition_id", "paid"})

		voteRejections = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voting",
			Name:      "vote_rejections_total",
			Help:      "Vote submissions refused, by reason.",
		}, []string{"reason"})

		revenueTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voting",
			Name:      "revenue_total",
			Help:      "Settled vote payments, by payment method.",
		}, []string{"method"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncVote(competitionID string, paid bool) {
	if votesTotal == nil {
		return
	}
	votesTotal.WithLabelValues(competitionID, strconv.FormatBool(paid)).Inc()
}

func IncVoteRejection(reason string) {
	if voteRejections == nil {
		return
	}
	voteRejections.WithLabelValues(reason).Inc()
}

func AddRevenue(method string, amount float64) {
	if revenueTotal == nil || amount <= 0 {
		return
	}
	revenueTotal.WithLabelValues(method).Add(amount)
}
