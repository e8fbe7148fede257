// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import "github.com/holiman/uint256"

// classify decides which sub-pool a not-yet-inserted candidate belongs in.
// It never mutates the pool; callers insert the record into whichever
// sub-pool it returns.
func (p *Pool) classify(sender SenderID, stateNonce uint64, balance *uint256.Int, candidate *Record) (SubPoolTag, error) {
	n := candidate.id.Nonce

	if n < stateNonce {
		return NoPool, ErrNonceTooLow
	}
	if n-stateNonce > p.cfg.GapLimit {
		return NoPool, ErrNonceGapTooLarge
	}
	if p.cfg.MinimumPriorityFee > 0 && candidate.Tx.PriorityFeeCap().Cmp(uint256.NewInt(p.cfg.MinimumPriorityFee)) < 0 {
		return NoPool, ErrFeeCapBelowMinimum
	}
	if candidate.cost.Cmp(balance) > 0 {
		// This transaction alone already exceeds the sender's balance: no
		// nonce-contiguous prefix that includes it can ever be affordable.
		return NoPool, ErrInsufficientFunds
	}

	for m := stateNonce; m < n; m++ {
		if !p.heldRunnable(sender, m) {
			return Queued, nil
		}
	}

	cost, complete := p.prefixCost(sender, stateNonce, n, candidate)
	if !complete || cost.Cmp(balance) > 0 {
		return Queued, nil
	}
	if !p.feasibleAtBaseFee(candidate.Tx) {
		return BaseFeePool, nil
	}
	return Pending, nil
}

// heldRunnable reports whether sender already holds a Pending or BaseFee
// record at nonce m: the two sub-pools that together form the
// nonce-contiguous, affordable prefix starting at state_nonce.
func (p *Pool) heldRunnable(sender SenderID, m uint64) bool {
	id := TxID{Sender: sender, Nonce: m}
	if p.pending.Has(id) {
		return true
	}
	return p.basefee.Has(id)
}

// prefixCost sums the cost of sender's contiguous Pending+BaseFee run from
// fromNonce to upToNonce inclusive, substituting candidate for the slot at
// upToNonce since it hasn't been inserted yet.
func (p *Pool) prefixCost(sender SenderID, fromNonce, upToNonce uint64, candidate *Record) (*uint256.Int, bool) {
	sum := new(uint256.Int)
	for m := fromNonce; m <= upToNonce; m++ {
		var r *Record
		if m == upToNonce {
			r = candidate
		} else if rp, ok := p.pending.Get(TxID{sender, m}); ok {
			r = rp
		} else if rb, ok := p.basefee.Get(TxID{sender, m}); ok {
			r = rb
		}
		if r == nil {
			return sum, false
		}
		sum.Add(sum, r.cost)
	}
	return sum, true
}

// feasibleAtBaseFee reports whether tx belongs in Pending rather than
// BaseFee at the pool's current base fee: its fee cap must cover the base
// fee, and its priority fee cap must not exceed its own fee cap (a
// dynamic-fee transaction can never tip more than it's willing to pay in
// total).
func (p *Pool) feasibleAtBaseFee(tx Transaction) bool {
	if tx.FeeCap().Cmp(p.baseFee) < 0 {
		return false
	}
	return tx.PriorityFeeCap().Cmp(tx.FeeCap()) <= 0
}

// rebalanceSender recomputes the correct sub-pool for every record sender
// currently holds, starting from state_nonce. It walks the sender's held
// nonces in order, extends the "contiguous and affordable" run for as long
// as it holds (promoting into BaseFee or Pending depending on fee-cap
// feasibility), and classifies everything after the first break (a gap or
// an unaffordable prefix) as Queued.
func (p *Pool) rebalanceSender(sender SenderID) {
	st, ok := p.senderState[sender]
	if !ok {
		return
	}

	nonces := p.allSenderNonces(sender)
	if len(nonces) == 0 {
		return
	}

	expected := st.stateNonce
	cum := new(uint256.Int)
	broken := false

	for _, n := range nonces {
		r := p.senderRecordAt(sender, n)
		if r == nil {
			continue
		}

		var target SubPoolTag
		switch {
		case broken || n != expected:
			broken = true
			target = Queued
		default:
			next := new(uint256.Int).Add(cum, r.cost)
			if next.Cmp(st.balance) > 0 {
				broken = true
				target = Queued
			} else {
				cum = next
				expected = n + 1
				if p.feasibleAtBaseFee(r.Tx) {
					target = Pending
				} else {
					target = BaseFeePool
				}
			}
		}

		if r.subPool != target {
			p.moveRecord(r, target)
		}
	}
}

// allSenderNonces returns the sorted union of nonces sender holds across
// all three sub-pools. The sub-pools are disjoint, so no nonce appears
// twice.
func (p *Pool) allSenderNonces(sender SenderID) []uint64 {
	merged := append(p.pending.senderNonces(sender), p.basefee.senderNonces(sender)...)
	merged = append(merged, p.queued.senderNonces(sender)...)
	if len(merged) <= 1 {
		return merged
	}
	// Each source slice is already sorted and they don't overlap; a single
	// insertion sort pass over the small concatenated result is simpler
	// than a three-way merge and the sizes here are tiny.
	for i := 1; i < len(merged); i++ {
		for j := i; j > 0 && merged[j-1] > merged[j]; j-- {
			merged[j-1], merged[j] = merged[j], merged[j-1]
		}
	}
	return merged
}

func (p *Pool) senderRecordAt(sender SenderID, nonce uint64) *Record {
	id := TxID{Sender: sender, Nonce: nonce}
	if r, ok := p.pending.Get(id); ok {
		return r
	}
	if r, ok := p.basefee.Get(id); ok {
		return r
	}
	if r, ok := p.queued.Get(id); ok {
		return r
	}
	return nil
}

// moveRecord relocates r to target, firing the per-hash event for target
// and, when r newly enters Pending, the pending-stream event. No
// new-transaction event fires, since r is not newly admitted.
func (p *Pool) moveRecord(r *Record, target SubPoolTag) {
	wasPending := r.subPool == Pending
	p.removeFromSubPool(r)
	p.insertInto(target, r)
	if target == Pending && !wasPending {
		p.listeners.emitPending(r.Hash())
	}
	p.listeners.emitHash(r.Hash(), tagToEvent(target))
}

// dropBelowNonce removes every record held for sender with nonce strictly
// below newStateNonce.
func (p *Pool) dropBelowNonce(sender SenderID, newStateNonce uint64) {
	for _, sl := range [...]*subList{p.pending, p.basefee, p.queued} {
		for _, n := range sl.senderNonces(sender) {
			if n >= newStateNonce {
				continue
			}
			if r, ok := sl.remove(TxID{sender, n}); ok {
				delete(p.byHash, r.Hash())
			}
		}
	}
}
