package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RetrievalIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_iterations_total",
			Help: "Total number of retrieval loop iterations executed",
		},
		[]string{"converged"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_search_requests_total",
			Help: "Total number of search provider calls",
		},
		[]string{"status"},
	)

	FetchJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_fetch_jobs_total",
			Help: "Total number of fetch jobs dispatched",
		},
		[]string{"mode", "status"},
	)

	CreditsCharged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_credits_charged_total",
			Help: "Total credits charged across requests",
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "retrieval_request_duration_seconds",
			Help: "Duration of full orchestration requests in seconds",
		},
		[]string{"status"},
	)
)
