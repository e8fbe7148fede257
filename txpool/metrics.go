// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// These are package-level, lazily registered go-ethereum/metrics
// collectors rather than a bespoke metrics abstraction. Callers that
// want these exported to Prometheus register metrics.DefaultRegistry
// with a prometheus.Registerer.
var (
	pendingGauge = metrics.NewRegisteredGauge("txpool/pending", nil)
	basefeeGauge = metrics.NewRegisteredGauge("txpool/basefee", nil)
	queuedGauge  = metrics.NewRegisteredGauge("txpool/queued", nil)

	pendingBytesGauge = metrics.NewRegisteredGauge("txpool/pending/bytes", nil)
	basefeeBytesGauge = metrics.NewRegisteredGauge("txpool/basefee/bytes", nil)
	queuedBytesGauge  = metrics.NewRegisteredGauge("txpool/queued/bytes", nil)

	replacementMeter = metrics.NewRegisteredMeter("txpool/replace", nil)
	evictionMeter    = metrics.NewRegisteredMeter("txpool/evict", nil)
	invalidMeter     = metrics.NewRegisteredMeter("txpool/invalid", nil)

	cascadeTimer = metrics.NewRegisteredTimer("txpool/cascade", nil)

	listenerDroppedMeter = metrics.NewRegisteredMeter("txpool/listener/dropped", nil)
)

func (p *Pool) updateSizeGauges() {
	pendingGauge.Update(int64(p.pending.Len()))
	basefeeGauge.Update(int64(p.basefee.Len()))
	queuedGauge.Update(int64(p.queued.Len()))

	pendingBytesGauge.Update(p.pending.Bytes())
	basefeeBytesGauge.Update(p.basefee.Bytes())
	queuedBytesGauge.Update(p.queued.Bytes())
}

var subPoolSizeDesc = prometheus.NewDesc(
	"txpool_subpool_size",
	"Number of transactions held in a sub-pool.",
	[]string{"subpool"}, nil,
)

// poolCollector is a pull-based prometheus.Collector reading live off the
// pool on every scrape, rather than pushing through go-ethereum/metrics'
// own registry. NewGossipEthTxPool takes a prometheus.Registerer for the
// same reason: a gossip/mempool component's size is cheap to read on
// demand and belongs in the caller's own Prometheus namespace, not
// multiplexed through a second metrics system.
type poolCollector struct {
	pool *Pool
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- subPoolSizeDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	status := c.pool.Status()
	ch <- prometheus.MustNewConstMetric(subPoolSizeDesc, prometheus.GaugeValue, float64(status.Pending), "pending")
	ch <- prometheus.MustNewConstMetric(subPoolSizeDesc, prometheus.GaugeValue, float64(status.BaseFee), "basefee")
	ch <- prometheus.MustNewConstMetric(subPoolSizeDesc, prometheus.GaugeValue, float64(status.Queued), "queued")
}

// RegisterPrometheus exports the pool's sub-pool sizes to reg, alongside
// whatever go-ethereum/metrics already tracks internally.
func (p *Pool) RegisterPrometheus(reg prometheus.Registerer) error {
	return reg.Register(&poolCollector{pool: p})
}
