package tboxhttp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tbox_queries_total",
		Help: "Number of queries served, by kind.",
	}, []string{"kind"})

	mMaterializeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "tbox_materialize_seconds",
		Help: "Time spent in a materialization call.",
	})
	mMaterializeCycles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tbox_materialize_cycles",
		Help: "Cost counter delta of the most recent materialization.",
	})
	mDerivedFacts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tbox_derived_facts",
		Help: "Derived facts recorded by the most recent materialization.",
	})
)
