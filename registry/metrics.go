package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scratchcard_tree_poll_attempts_total",
		Help: "Tree config probes by outcome",
	}, []string{"outcome"})

	indexRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scratchcard_asset_index_requests_total",
		Help: "Asset index JSON-RPC calls by method and status",
	}, []string{"method", "status"})
)
