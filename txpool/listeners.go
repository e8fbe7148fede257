// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
)

const (
	// pendingChanSize is the bounded capacity of the pending-notify channel.
	pendingChanSize = 2048

	// newTxChanSize is the bounded capacity of the new-transaction channel.
	newTxChanSize = 1024

	// hashEventChanSize bounds the per-hash event multiplexer's channels.
	hashEventChanSize = 16
)

// EventKind is a per-hash lifecycle event emitted on the per-hash event
// stream.
type EventKind uint8

const (
	EventQueued EventKind = iota
	EventPending
	EventMined
	EventReplaced
	EventDiscarded
	EventInvalid
)

func (k EventKind) String() string {
	switch k {
	case EventQueued:
		return "Queued"
	case EventPending:
		return "Pending"
	case EventMined:
		return "Mined"
	case EventReplaced:
		return "Replaced"
	case EventDiscarded:
		return "Discarded"
	case EventInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// HashEvent is delivered to subscribers of one specific transaction hash.
type HashEvent struct {
	Hash Hash
	Kind EventKind
}

// NewTxEvent is delivered on the new-transaction stream for every newly
// admitted transaction.
type NewTxEvent struct {
	Record  *Record
	SubPool SubPoolTag
}

// funcSubscription is a minimal event.Subscription implementation: calling
// Unsubscribe invokes unsub exactly once. This reuses go-ethereum's
// Subscription contract (Err/Unsubscribe) at the package boundary without
// pulling in its Feed-based async fan-out machinery; listeners here are
// served by plain bounded channels instead.
type funcSubscription struct {
	unsub func()
	once  sync.Once
	errc  chan error
}

func newFuncSubscription(unsub func()) *funcSubscription {
	return &funcSubscription{unsub: unsub, errc: make(chan error)}
}

func (s *funcSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.unsub()
		close(s.errc)
	})
}

func (s *funcSubscription) Err() <-chan error { return s.errc }

var _ event.Subscription = (*funcSubscription)(nil)

// listenerHub owns the pool's three event channel families: pending
// promotions, newly admitted transactions, and per-hash lifecycle events.
// It sits behind its own short-held mutex, independent of the pool's main
// writer lock, so publishing never blocks (or is blocked by) a concurrent
// reader.
type listenerHub struct {
	mu         sync.Mutex
	nextID     int
	pendingSub map[int]chan Hash
	newTxSub   map[int]chan NewTxEvent
	hashSub    map[Hash]map[int]chan HashEvent
}

func newListenerHub() *listenerHub {
	return &listenerHub{
		pendingSub: make(map[int]chan Hash),
		newTxSub:   make(map[int]chan NewTxEvent),
		hashSub:    make(map[Hash]map[int]chan HashEvent),
	}
}

// AddPendingListener registers a listener for the pending stream: one hash
// per newly-ready (moved to Pending) transaction.
func (h *listenerHub) AddPendingListener() (<-chan Hash, event.Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Hash, pendingChanSize)
	h.pendingSub[id] = ch

	sub := newFuncSubscription(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.pendingSub, id)
	})
	return ch, sub
}

// AddTransactionListener registers a listener for the new-transaction
// stream: record + sub-pool tag for every newly admitted transaction.
func (h *listenerHub) AddTransactionListener() (<-chan NewTxEvent, event.Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan NewTxEvent, newTxChanSize)
	h.newTxSub[id] = ch

	sub := newFuncSubscription(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.newTxSub, id)
	})
	return ch, sub
}

// AddEventListener registers interest in one specific transaction hash's
// lifecycle events.
func (h *listenerHub) AddEventListener(hash Hash) (<-chan HashEvent, event.Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan HashEvent, hashEventChanSize)
	subs, ok := h.hashSub[hash]
	if !ok {
		subs = make(map[int]chan HashEvent)
		h.hashSub[hash] = subs
	}
	subs[id] = ch

	sub := newFuncSubscription(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.hashSub[hash]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.hashSub, hash)
			}
		}
	})
	return ch, sub
}

// emitPending publishes hash on the pending stream. A full listener
// buffer drops that one event rather than blocking the pool.
func (h *listenerHub) emitPending(hash Hash) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.pendingSub {
		select {
		case ch <- hash:
		default:
			log.Warn("Dropping pending-stream event, listener buffer full", "id", id, "hash", hash)
			listenerDroppedMeter.Mark(1)
		}
	}
}

// emitNewTx publishes evt on the new-transaction stream.
func (h *listenerHub) emitNewTx(evt NewTxEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.newTxSub {
		select {
		case ch <- evt:
		default:
			log.Warn("Dropping new-transaction event, listener buffer full", "id", id, "hash", evt.Record.Hash())
			listenerDroppedMeter.Mark(1)
		}
	}
}

// emitHash publishes kind for hash to every subscriber of that specific
// hash.
func (h *listenerHub) emitHash(hash Hash, kind EventKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.hashSub[hash]
	if !ok {
		return
	}
	for id, ch := range subs {
		select {
		case ch <- HashEvent{Hash: hash, Kind: kind}:
		default:
			log.Debug("Dropping per-hash event, listener buffer full", "id", id, "hash", hash, "kind", kind)
			listenerDroppedMeter.Mark(1)
		}
	}
}
