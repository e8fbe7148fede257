// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import "container/heap"

// scoreHeap is a binary heap of *Record ordered by priority, keeping each
// record's position so it can be removed in O(log n) without a linear
// scan. A heap gives the same asymptotics as a balanced tree keyed by
// (priority, transaction id) for the only two operations a sub-pool needs
// from its score index: peek/pop the worst, and remove an arbitrary
// record when it changes sub-pool.
//
// descending selects the ordering: true puts the highest-priority record
// at the head, false the lowest. The pool builds all three sub-pools
// ascending (lowest-priority-first) so worst-first eviction is an
// O(log n) pop.
type scoreHeap struct {
	records    []*Record
	descending bool
}

func newScoreHeap(descending bool) *scoreHeap {
	h := &scoreHeap{descending: descending}
	heap.Init(h)
	return h
}

func (h *scoreHeap) Len() int { return len(h.records) }

func (h *scoreHeap) Less(i, j int) bool {
	if h.descending {
		return h.records[i].betterThan(h.records[j])
	}
	return h.records[j].betterThan(h.records[i])
}

func (h *scoreHeap) Swap(i, j int) {
	h.records[i], h.records[j] = h.records[j], h.records[i]
	h.records[i].heapIndex = i
	h.records[j].heapIndex = j
}

func (h *scoreHeap) Push(x any) {
	r := x.(*Record)
	r.heapIndex = len(h.records)
	h.records = append(h.records, r)
}

func (h *scoreHeap) Pop() any {
	old := h.records
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.heapIndex = -1
	h.records = old[:n-1]
	return r
}

// insert adds r to the heap.
func (h *scoreHeap) insert(r *Record) {
	heap.Push(h, r)
}

// remove drops r from the heap. r must currently be a member.
func (h *scoreHeap) remove(r *Record) {
	if r.heapIndex < 0 || r.heapIndex >= len(h.records) || h.records[r.heapIndex] != r {
		return
	}
	heap.Remove(h, r.heapIndex)
}

// peek returns the head of the heap (the next one popped), or nil if
// empty. For an ascending heap this is the lowest-priority record (the
// eviction candidate); for a descending heap it's the highest-priority
// record.
func (h *scoreHeap) peek() *Record {
	if len(h.records) == 0 {
		return nil
	}
	return h.records[0]
}

// pop removes and returns the heap's head.
func (h *scoreHeap) pop() *Record {
	if len(h.records) == 0 {
		return nil
	}
	return heap.Pop(h).(*Record)
}
