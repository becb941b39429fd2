package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	NodeMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "nodedoc", Name: "node_mutations_total", Help: "Number of node mutations applied to documents, by operation."},
		[]string{"op"},
	)
	DocumentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "nodedoc", Name: "document_ops_total", Help: "Number of document records loaded, saved or deleted, by backend."},
		[]string{"backend", "op"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "nodedoc", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "nodedoc", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(NodeMutations)
	reg.MustRegister(DocumentOps)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
