// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import "sort"

// senderIndex is the per-sender ordered-by-nonce index kept inside every
// sub-pool so the contiguous-prefix test and cascading promotions are
// O(k) in the affected prefix length k, not O(n) in the whole sub-pool.
//
// nonces is kept sorted; per-sender transaction counts are small (bounded
// in practice by gap_limit for Queued and by the account slot limits for
// Pending/BaseFee), so an insertion-sorted slice beats the constant
// overhead of a balanced tree for this size range.
type senderIndex struct {
	nonces  []uint64
	byNonce map[uint64]*Record
}

func newSenderIndex() *senderIndex {
	return &senderIndex{byNonce: make(map[uint64]*Record)}
}

func (idx *senderIndex) insert(r *Record) {
	n := r.id.Nonce
	if _, exists := idx.byNonce[n]; !exists {
		i := sort.Search(len(idx.nonces), func(i int) bool { return idx.nonces[i] >= n })
		idx.nonces = append(idx.nonces, 0)
		copy(idx.nonces[i+1:], idx.nonces[i:])
		idx.nonces[i] = n
	}
	idx.byNonce[n] = r
}

func (idx *senderIndex) remove(n uint64) {
	if _, exists := idx.byNonce[n]; !exists {
		return
	}
	delete(idx.byNonce, n)
	i := sort.Search(len(idx.nonces), func(i int) bool { return idx.nonces[i] >= n })
	if i < len(idx.nonces) && idx.nonces[i] == n {
		idx.nonces = append(idx.nonces[:i], idx.nonces[i+1:]...)
	}
}

func (idx *senderIndex) empty() bool { return len(idx.nonces) == 0 }

func (idx *senderIndex) get(n uint64) (*Record, bool) {
	r, ok := idx.byNonce[n]
	return r, ok
}

// orderedNonces returns a defensive copy of the sender's held nonces,
// ascending.
func (idx *senderIndex) orderedNonces() []uint64 {
	out := make([]uint64, len(idx.nonces))
	copy(out, idx.nonces)
	return out
}

// subList is one of the three disjoint partitions (Pending, BaseFee,
// Queued). It maintains two indices over the same set of record pointers:
// a score-ordered scoreHeap for worst-first eviction, and a per-sender
// senderIndex keyed by nonce. Both are updated together; callers must
// never bypass this type's methods.
type subList struct {
	tag      SubPoolTag
	heap     *scoreHeap
	byID     map[TxID]*Record
	bySender map[SenderID]*senderIndex
	bytes    int64
}

func newSubList(tag SubPoolTag, descending bool) *subList {
	return &subList{
		tag:      tag,
		heap:     newScoreHeap(descending),
		byID:     make(map[TxID]*Record),
		bySender: make(map[SenderID]*senderIndex),
	}
}

func (s *subList) Len() int        { return len(s.byID) }
func (s *subList) Bytes() int64    { return s.bytes }
func (s *subList) Tag() SubPoolTag { return s.tag }

func (s *subList) Get(id TxID) (*Record, bool) {
	r, ok := s.byID[id]
	return r, ok
}

func (s *subList) Has(id TxID) bool {
	_, ok := s.byID[id]
	return ok
}

// insert adds r to this sub-pool. r must not already belong to a sub-pool;
// the caller (Pool) is responsible for resolving duplicates/replacements
// before calling insert, so finding one here is a programming error, not a
// user-triggerable condition.
func (s *subList) insert(r *Record) {
	if _, exists := s.byID[r.id]; exists {
		panic(ErrAlreadyReserved)
	}
	s.byID[r.id] = r
	r.subPool = s.tag
	s.heap.insert(r)
	s.bytes += int64(r.Tx.Size())

	idx := s.bySender[r.id.Sender]
	if idx == nil {
		idx = newSenderIndex()
		s.bySender[r.id.Sender] = idx
	}
	idx.insert(r)
}

// remove drops id from this sub-pool, returning the removed record.
func (s *subList) remove(id TxID) (*Record, bool) {
	r, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	delete(s.byID, id)
	s.heap.remove(r)
	s.bytes -= int64(r.Tx.Size())

	if idx := s.bySender[id.Sender]; idx != nil {
		idx.remove(id.Nonce)
		if idx.empty() {
			delete(s.bySender, id.Sender)
		}
	}
	r.subPool = NoPool
	return r, true
}

// peekWorst returns the head of the score heap without removing it: the
// next record popWorst would evict.
func (s *subList) peekWorst() *Record {
	return s.heap.peek()
}

// popWorst removes and returns the head of the score heap (the lowest
// priority for an ascending sub-pool, the highest for a descending one).
func (s *subList) popWorst() *Record {
	r := s.heap.pop()
	if r == nil {
		return nil
	}
	delete(s.byID, r.id)
	s.bytes -= int64(r.Tx.Size())
	if idx := s.bySender[r.id.Sender]; idx != nil {
		idx.remove(r.id.Nonce)
		if idx.empty() {
			delete(s.bySender, r.id.Sender)
		}
	}
	r.subPool = NoPool
	return r
}

// senderNonces returns the ascending nonces held for sender in this
// sub-pool.
func (s *subList) senderNonces(sender SenderID) []uint64 {
	idx := s.bySender[sender]
	if idx == nil {
		return nil
	}
	return idx.orderedNonces()
}
