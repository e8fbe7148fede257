// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"sort"

	"github.com/ethereum/go-ethereum/common/prque"
)

// BestIterator is a consumer view over the Pending sub-pool: a snapshot
// taken under the reader lock that yields records in descending priority,
// subject to the constraint that a sender's records come out in nonce
// order.
//
// The snapshot holds its own references to every record it was built from,
// so later pool mutations can't disturb an iteration already in progress;
// the view may go stale relative to the live pool, but it is always
// internally consistent.
type BestIterator struct {
	heap       *prque.Prque[int64, *Record]
	cursor     map[SenderID]uint64
	buffer     map[SenderID][]*Record // nonce-ascending, not yet eligible
	suppressed map[SenderID]bool      // set by MarkInvalid for this iteration
	allByHash  map[Hash]*Record
}

func newBestIterator(records []*Record) *BestIterator {
	it := &BestIterator{
		heap:       prque.New[int64, *Record](nil),
		cursor:     make(map[SenderID]uint64),
		buffer:     make(map[SenderID][]*Record),
		suppressed: make(map[SenderID]bool),
		allByHash:  make(map[Hash]*Record, len(records)),
	}

	// The per-sender cursor starts at the lowest nonce that sender holds
	// in Pending. Pending membership is always contiguous from
	// state_nonce, so the lowest nonce present is exactly the first one
	// this iteration should be willing to yield.
	for _, r := range records {
		it.allByHash[r.Hash()] = r
		if cur, ok := it.cursor[r.id.Sender]; !ok || r.id.Nonce < cur {
			it.cursor[r.id.Sender] = r.id.Nonce
		}
	}
	for _, r := range records {
		it.heap.Push(r, r.priority)
	}
	return it
}

// Next returns the next record in priority order that respects nonce
// ordering, or (nil, false) once the snapshot is exhausted.
func (it *BestIterator) Next() (*Record, bool) {
	for !it.heap.Empty() {
		r, _ := it.heap.Pop()
		sender := r.id.Sender

		if it.suppressed[sender] {
			continue
		}
		if r.id.Nonce != it.cursor[sender] {
			// Not this sender's turn yet: buffer it until its
			// predecessor has been yielded.
			it.bufferRecord(r)
			continue
		}

		it.cursor[sender] = r.id.Nonce + 1
		it.promoteBuffered(sender)
		return r, true
	}
	return nil, false
}

// MarkInvalid tells the iterator that hash turned out to be unusable (e.g.
// execution failed). Every higher-nonce record for the same sender is
// suppressed for the remainder of this iteration; the suppression does not
// outlive the iterator.
func (it *BestIterator) MarkInvalid(hash Hash) {
	r, ok := it.allByHash[hash]
	if !ok {
		return
	}
	it.suppressed[r.id.Sender] = true
	delete(it.buffer, r.id.Sender)
}

func (it *BestIterator) bufferRecord(r *Record) {
	list := it.buffer[r.id.Sender]
	i := sort.Search(len(list), func(i int) bool { return list[i].id.Nonce >= r.id.Nonce })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = r
	it.buffer[r.id.Sender] = list
}

func (it *BestIterator) promoteBuffered(sender SenderID) {
	if it.suppressed[sender] {
		return
	}
	list := it.buffer[sender]
	if len(list) == 0 {
		return
	}
	if list[0].id.Nonce == it.cursor[sender] {
		r := list[0]
		it.buffer[sender] = list[1:]
		it.heap.Push(r, r.priority)
	}
}
