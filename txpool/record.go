// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"github.com/holiman/uint256"
)

// Record is the validated, shared unit circulated through the sub-pools.
// Everything but subPool and heapIndex is frozen once constructed; the
// only thing that ever changes post-insertion is sub-pool membership.
//
// Records have no back-pointer to the pool or to their sub-pool, so there
// are no reference cycles: they're released by the garbage collector once
// the last holder (the owning sub-pool's indices, an outstanding iterator
// snapshot, or a listener message) drops its pointer.
type Record struct {
	Tx Transaction

	id TxID

	cost     *uint256.Int // gas_limit*fee_cap + value, the max balance this tx can consume
	priority int64         // totally ordered score from the injected PriorityFunc
	seq      uint64        // monotonic insertion sequence, used as the priority tie-break

	origin    Origin
	propagate bool

	subPool SubPoolTag

	// heapIndex is maintained by whichever scoreHeap currently holds this
	// record, so removal is O(log n) instead of O(n).
	heapIndex int
}

func newRecord(v ValidationResult, origin Origin, propagate bool, sender SenderID, seq uint64, priority int64) *Record {
	cost := new(uint256.Int).Mul(uint256.NewInt(v.Tx.GasLimit()), v.Tx.FeeCap())
	cost.Add(cost, v.Tx.Value())

	return &Record{
		Tx:        v.Tx,
		id:        TxID{Sender: sender, Nonce: v.Tx.Nonce()},
		cost:      cost,
		priority:  priority,
		seq:       seq,
		origin:    origin,
		propagate: propagate,
		subPool:   NoPool,
		heapIndex: -1,
	}
}

// ID returns the record's (sender_id, nonce) primary key.
func (r *Record) ID() TxID { return r.id }

// Hash returns the underlying transaction's hash.
func (r *Record) Hash() Hash { return r.Tx.Hash() }

// Cost returns gas_limit*fee_cap + value, the upper bound on balance this
// transaction can consume.
func (r *Record) Cost() *uint256.Int { return r.cost }

// Priority returns the record's totally ordered ranking score.
func (r *Record) Priority() int64 { return r.priority }

// Origin returns where this transaction came from.
func (r *Record) Origin() Origin { return r.origin }

// Propagate reports whether this transaction should be gossiped to peers.
func (r *Record) Propagate() bool { return r.propagate }

// SubPool reports which of {Pending, BaseFeePool, Queued} currently holds
// this record, or NoPool if it isn't held.
func (r *Record) SubPool() SubPoolTag { return r.subPool }

// betterThan implements the priority-then-insertion-order total order used
// for replacement decisions and for tie-breaking within a sub-pool's score
// index: higher priority wins; on a tie, the earlier insertion wins.
func (r *Record) betterThan(o *Record) bool {
	if r.priority != o.priority {
		return r.priority > o.priority
	}
	return r.seq < o.seq
}

// clearsReplacementBump reports whether incoming's priority exceeds old's
// by at least the configured fraction.
func clearsReplacementBump(incoming, old *Record, bump float64) bool {
	if incoming.priority <= old.priority {
		return false
	}
	if old.priority <= 0 {
		// A non-positive incumbent priority can't meaningfully express a
		// percentage bump; any strictly higher priority clears it.
		return true
	}
	threshold := float64(old.priority) * (1 + bump)
	return float64(incoming.priority) >= threshold
}
