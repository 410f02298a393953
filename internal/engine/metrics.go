package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yieldrouter",
		Name:      "cycles_total",
		Help:      "Engine cycles run, by outcome.",
	}, []string{"outcome"})

	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yieldrouter",
		Name:      "decisions_total",
		Help:      "Gate decisions, by verdict.",
	}, []string{"verdict"})

	expectedImprovementGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "yieldrouter",
		Name:      "expected_improvement_apy",
		Help:      "Expected APY improvement of the latest proposed plan, as a fraction.",
	})

	opportunitiesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "yieldrouter",
		Name:      "opportunities_ranked",
		Help:      "Opportunities that survived filtering in the latest cycle.",
	})

	transfersExecutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yieldrouter",
		Name:      "transfers_executed_total",
		Help:      "Transfer instructions handed to the executor.",
	})
)
