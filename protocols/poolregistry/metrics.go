package poolregistry

import (
	"time"

	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opCreate          = "create"
	opSwap            = "swap"
	opAddLiquidity    = "add_liquidity"
	opRemoveLiquidity = "remove_liquidity"

	resultOK    = "ok"
	resultError = "error"
)

// Metrics holds the collectors recorded by PoolSystem.
type Metrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	feesAccrued *prometheus.CounterVec
	pools       *prometheus.GaugeVec
}

// NewMetrics creates the pool system collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "defistate",
				Subsystem: "pools",
				Name:      "operations_total",
				Help:      "Pool operations by variant, operation and result.",
			},
			[]string{"variant", "operation", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "defistate",
				Subsystem: "pools",
				Name:      "operation_duration_seconds",
				Help:      "Time spent inside a pool operation.",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
			},
			[]string{"variant", "operation"},
		),
		feesAccrued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "defistate",
				Subsystem: "pools",
				Name:      "fees_accrued_total",
				Help:      "Fee units accrued by swaps, by variant and token side.",
			},
			[]string{"variant", "token"},
		),
		pools: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "defistate",
				Subsystem: "pools",
				Name:      "registered",
				Help:      "Number of registered pools by variant.",
			},
			[]string{"variant"},
		),
	}

	for _, c := range []prometheus.Collector{m.operations, m.duration, m.feesAccrued, m.pools} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(variant Variant, operation string, elapsed time.Duration, err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.operations.WithLabelValues(variant.String(), operation, result).Inc()
	m.duration.WithLabelValues(variant.String(), operation).Observe(elapsed.Seconds())
}

func (m *Metrics) addFees(variant Variant, before, after pool.State) {
	if d := after.FeeOneAccrued - before.FeeOneAccrued; d > 0 {
		m.feesAccrued.WithLabelValues(variant.String(), "one").Add(float64(d))
	}
	if d := after.FeeTwoAccrued - before.FeeTwoAccrued; d > 0 {
		m.feesAccrued.WithLabelValues(variant.String(), "two").Add(float64(d))
	}
}
