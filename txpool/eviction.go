// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

// evictionOrder is the worst-first sweep order: Queued is drained before
// BaseFee, which is drained before Pending, since a queued transaction
// that can't yet run is the cheapest thing to lose.
func (p *Pool) evictionOrder() [3]*subList {
	return [3]*subList{p.queued, p.basefee, p.pending}
}

func (p *Pool) subPoolCap(tag SubPoolTag) int {
	switch tag {
	case Pending:
		return p.cfg.PendingMaxCount
	case BaseFeePool:
		return p.cfg.BaseFeeMaxCount
	case Queued:
		return p.cfg.QueuedMaxCount
	default:
		return p.cfg.MaxCount
	}
}

func (p *Pool) totalCount() int {
	return p.pending.Len() + p.basefee.Len() + p.queued.Len()
}

func (p *Pool) totalBytes() int64 {
	return p.pending.Bytes() + p.basefee.Bytes() + p.queued.Bytes()
}

func (p *Pool) overLimit() bool {
	if p.totalCount() > p.cfg.MaxCount || p.totalBytes() > p.cfg.MaxBytes {
		return true
	}
	return p.pending.Len() > p.cfg.PendingMaxCount ||
		p.basefee.Len() > p.cfg.BaseFeeMaxCount ||
		p.queued.Len() > p.cfg.QueuedMaxCount
}

// enforceSizeLimits evicts worst-first, Queued then BaseFee then Pending,
// until every count and byte limit is satisfied or nothing is left to
// evict. It returns every record it discarded, so callers in the same
// admission call can tell whether the transaction they just inserted was
// immediately thrown back out (ErrDiscardedOnInsert).
func (p *Pool) enforceSizeLimits() []*Record {
	var evicted []*Record
	order := p.evictionOrder()

	for p.overLimit() {
		progressed := false
		for _, sl := range order {
			if sl.Len() == 0 {
				continue
			}
			globallyOver := p.totalCount() > p.cfg.MaxCount || p.totalBytes() > p.cfg.MaxBytes
			if sl.Len() <= p.subPoolCap(sl.Tag()) && !globallyOver {
				continue
			}
			r := sl.popWorst()
			if r == nil {
				continue
			}
			delete(p.byHash, r.Hash())
			p.listeners.emitHash(r.Hash(), EventDiscarded)
			evictionMeter.Mark(1)
			evicted = append(evicted, r)
			progressed = true
			if !p.overLimit() {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return evicted
}
