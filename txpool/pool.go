// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
)

// senderState is the per-sender on-chain (state_nonce, balance) cache,
// refreshed whenever a new transaction for that sender is validated or
// the chain tip moves.
type senderState struct {
	stateNonce uint64
	balance    *uint256.Int
}

// Pool is the orchestrator: it owns the three sub-pools, serializes every
// mutation behind a single writer lock, routes inserted/updated records,
// fires promotion/demotion cascades, enforces global size limits, and
// multiplexes listener channels.
//
// One reader-writer lock guards the pool, the sub-pools, and the
// transaction-id membership map as a single unit: cascades touch every
// sub-pool, so finer-grained locking would either deadlock or need a
// global lock ordering no faster than one lock. The sender table and the
// listener hub each carry their own independent locks so hot lookups don't
// contend with a concurrent mutation.
type Pool struct {
	mu sync.RWMutex

	cfg      Config
	priority PriorityFunc
	senders  *SenderTable

	baseFee *uint256.Int

	pending *subList // Pending: nonce-contiguous, affordable, fee_cap >= base_fee
	basefee *subList // BaseFee: nonce-contiguous, affordable, fee_cap < base_fee
	queued  *subList // Queued: nonce gap, or prefix unaffordable

	byHash map[Hash]TxID

	senderState map[SenderID]senderState

	seq uint64 // monotonic insertion sequence, used to break priority ties

	listeners *listenerHub
}

// New constructs an empty pool. cfg is sanitized against DefaultConfig; the
// caller supplies the priority function and the base fee effective at
// construction (chain state is expected to have already been consulted
// once before this call).
func New(cfg Config, priority PriorityFunc, initialBaseFee *uint256.Int) *Pool {
	if initialBaseFee == nil {
		initialBaseFee = new(uint256.Int)
	}
	return &Pool{
		cfg:         cfg.sanitize(),
		priority:    priority,
		senders:     NewSenderTable(),
		baseFee:     new(uint256.Int).Set(initialBaseFee),
		pending:     newSubList(Pending, false),
		basefee:     newSubList(BaseFeePool, false),
		queued:      newSubList(Queued, false),
		byHash:      make(map[Hash]TxID),
		senderState: make(map[SenderID]senderState),
		listeners:   newListenerHub(),
	}
}

// Status is an atomic snapshot of per-sub-pool counts.
type Status struct {
	Pending int
	BaseFee int
	Queued  int
}

// Status returns the current sub-pool sizes.
func (p *Pool) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Status{
		Pending: p.pending.Len(),
		BaseFee: p.basefee.Len(),
		Queued:  p.queued.Len(),
	}
}

// Len returns the total number of transactions held across every sub-pool.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pending.Len() + p.basefee.Len() + p.queued.Len()
}

// IsEmpty reports whether the pool holds no transactions at all.
func (p *Pool) IsEmpty() bool {
	return p.Len() == 0
}

// Has reports whether hash is currently held by the pool.
func (p *Pool) Has(hash Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byHash[hash]
	return ok
}

// Get returns the record held for hash, if any.
func (p *Pool) Get(hash Hash) (*Record, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.byHash[hash]
	if !ok {
		return nil, false
	}
	return p.lookupByID(id)
}

// BaseFee returns the base fee the pool is currently filtering against.
func (p *Pool) BaseFee() *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(uint256.Int).Set(p.baseFee)
}

// AddTransaction is the primary admission entry point.
func (p *Pool) AddTransaction(origin Origin, result ValidationResult) (Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	hash, id, err := p.addOne(origin, result)
	if err != nil {
		return hash, err
	}
	evicted := p.enforceSizeLimits()
	p.updateSizeGauges()
	for _, ev := range evicted {
		if ev.id == id {
			return hash, ErrDiscardedOnInsert
		}
	}
	return hash, nil
}

// AddTransactions is the batched variant: every result is routed first,
// size enforcement runs once at the end, and any result that succeeded
// but was then evicted during that single enforcement pass is rewritten
// to ErrDiscardedOnInsert.
func (p *Pool) AddTransactions(origin Origin, results []ValidationResult) []error {
	p.mu.Lock()
	defer p.mu.Unlock()

	errs := make([]error, len(results))
	ids := make([]TxID, len(results))
	anySucceeded := false

	for i, res := range results {
		_, id, err := p.addOne(origin, res)
		errs[i], ids[i] = err, id
		if err == nil {
			anySucceeded = true
		}
	}
	if anySucceeded {
		evicted := p.enforceSizeLimits()
		p.updateSizeGauges()
		if len(evicted) > 0 {
			evictedSet := make(map[TxID]struct{}, len(evicted))
			for _, ev := range evicted {
				evictedSet[ev.id] = struct{}{}
			}
			for i, err := range errs {
				if err != nil {
					continue
				}
				if _, wasEvicted := evictedSet[ids[i]]; wasEvicted {
					errs[i] = ErrDiscardedOnInsert
				}
			}
		}
	}
	return errs
}

// addOne performs validation-outcome handling, duplicate/replacement
// resolution, routing, and the promotion cascade for a single transaction.
// It does not run size enforcement; callers are responsible for calling
// enforceSizeLimits once they're done batching inserts.
func (p *Pool) addOne(origin Origin, result ValidationResult) (Hash, TxID, error) {
	if result.Err != nil {
		return Hash{}, TxID{}, result.Err
	}
	tx := result.Tx
	hash := tx.Hash()

	sender := p.senders.IDOrCreate(result.Sender)
	id := TxID{Sender: sender, Nonce: tx.Nonce()}

	if existing, ok := p.byHash[hash]; ok && existing == id {
		return hash, id, ErrAlreadyKnown
	}

	p.seq++
	priority := p.priority(tx, p.baseFee)
	candidate := newRecord(result, origin, origin != OriginPrivate, sender, p.seq, priority)

	p.senderState[sender] = senderState{stateNonce: result.StateNonce, balance: result.Balance}

	if old, ok := p.lookupByID(id); ok {
		bump := p.cfg.ReplacementBump
		if origin == OriginLocal {
			bump = p.cfg.PriceBumpLocal
		}
		if !clearsReplacementBump(candidate, old, bump) {
			return Hash{}, id, ErrReplacementUnderpriced
		}
		p.removeRecord(old)
		p.listeners.emitHash(old.Hash(), EventReplaced)
		replacementMeter.Mark(1)
	}

	tag, err := p.classify(sender, result.StateNonce, result.Balance, candidate)
	if err != nil {
		return Hash{}, id, err
	}

	totalCount := p.pending.Len() + p.basefee.Len() + p.queued.Len()
	if totalCount >= p.cfg.MaxCount {
		if worst := p.worstHeld(); worst != nil && candidate.priority <= worst.priority {
			return Hash{}, id, ErrPoolFull
		}
	}

	p.insertInto(tag, candidate)
	p.byHash[hash] = id

	p.listeners.emitNewTx(NewTxEvent{Record: candidate, SubPool: tag})
	if tag == Pending {
		p.listeners.emitPending(hash)
	}
	p.listeners.emitHash(hash, tagToEvent(tag))

	p.rebalanceSender(sender)
	return hash, id, nil
}

// Invalidate removes hash and reports it as permanently invalid: distinct
// from both Discarded (lost to size pressure, might otherwise have run)
// and Replaced (superseded by a better transaction at the same id).
// Typical callers are a block builder or executor that tried to run the
// transaction and found it invalid despite having passed admission.
func (p *Pool) Invalidate(hash Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.removeByHash(hash); ok {
		p.listeners.emitHash(hash, EventInvalid)
		invalidMeter.Mark(1)
	}
	p.updateSizeGauges()
}

// RemoveTransactions removes transactions by hash with no cascade: the
// caller is responsible for semantic correctness, typically because the
// transactions were just sealed into a block by some other path than
// OnCanonicalStateChange.
func (p *Pool) RemoveTransactions(hashes []Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		p.removeByHash(h)
	}
	p.updateSizeGauges()
}

// OnCanonicalStateChange reacts to a chain reorg/head move.
func (p *Pool) OnCanonicalStateChange(minedHashes []Hash, newBaseFee *uint256.Int, updates []SenderUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// 1. Remove every mined record.
	for _, h := range minedHashes {
		if r, ok := p.removeByHash(h); ok {
			p.listeners.emitHash(r.Hash(), EventMined)
		}
	}

	affected := mapset.NewThreadUnsafeSet[SenderID]()

	// 2 & 3. Drop stale nonces, refresh the sender-state cache.
	for _, u := range updates {
		sender := p.senders.IDOrCreate(u.Sender)
		p.dropBelowNonce(sender, u.StateNonce)
		p.senderState[sender] = senderState{stateNonce: u.StateNonce, balance: u.Balance}
		affected.Add(sender)
	}

	// 4. Update the base fee.
	baseFeeChanged := newBaseFee != nil && p.baseFee.Cmp(newBaseFee) != 0
	if newBaseFee != nil {
		p.baseFee = new(uint256.Int).Set(newBaseFee)
	}

	// 5. Cascade every affected sender, plus (on a base fee change) every
	// sender holding BaseFee or Pending transactions, since any of them
	// might now cross the admissibility line in either direction.
	if baseFeeChanged {
		for s := range p.basefee.bySender {
			affected.Add(s)
		}
		for s := range p.pending.bySender {
			affected.Add(s)
		}
	}
	start := time.Now()
	affected.Each(func(s SenderID) bool {
		p.rebalanceSender(s)
		return false
	})
	cascadeTimer.UpdateSince(start)

	// 6. Size enforcement.
	p.enforceSizeLimits()
	p.updateSizeGauges()
}

func (p *Pool) removeByHash(hash Hash) (*Record, bool) {
	id, ok := p.byHash[hash]
	if !ok {
		return nil, false
	}
	r, ok := p.lookupByID(id)
	if !ok {
		delete(p.byHash, hash)
		return nil, false
	}
	p.removeRecord(r)
	return r, true
}

func (p *Pool) removeRecord(r *Record) {
	p.removeFromSubPool(r)
	delete(p.byHash, r.Hash())
}

func (p *Pool) removeFromSubPool(r *Record) {
	switch r.subPool {
	case Pending:
		p.pending.remove(r.id)
	case BaseFeePool:
		p.basefee.remove(r.id)
	case Queued:
		p.queued.remove(r.id)
	}
}

func (p *Pool) insertInto(tag SubPoolTag, r *Record) {
	switch tag {
	case Pending:
		p.pending.insert(r)
	case BaseFeePool:
		p.basefee.insert(r)
	case Queued:
		p.queued.insert(r)
	}
}

func (p *Pool) lookupByID(id TxID) (*Record, bool) {
	if r, ok := p.pending.Get(id); ok {
		return r, true
	}
	if r, ok := p.basefee.Get(id); ok {
		return r, true
	}
	if r, ok := p.queued.Get(id); ok {
		return r, true
	}
	return nil, false
}

// worstHeld returns the current eviction candidate: the worst record in
// Queued, falling back to BaseFee then Pending, matching the eviction
// order enforceSizeLimits uses.
func (p *Pool) worstHeld() *Record {
	if r := p.queued.peekWorst(); r != nil {
		return r
	}
	if r := p.basefee.peekWorst(); r != nil {
		return r
	}
	return p.pending.peekWorst()
}

func tagToEvent(tag SubPoolTag) EventKind {
	if tag == Pending {
		return EventPending
	}
	return EventQueued
}

// BestTransactions returns a snapshot iterator over Pending.
func (p *Pool) BestTransactions() *BestIterator {
	p.mu.RLock()
	defer p.mu.RUnlock()

	records := make([]*Record, 0, p.pending.Len())
	for _, r := range p.pending.byID {
		records = append(records, r)
	}
	return newBestIterator(records)
}

// AddPendingListener subscribes to the pending stream.
func (p *Pool) AddPendingListener() (<-chan Hash, event.Subscription) {
	return p.listeners.AddPendingListener()
}

// AddTransactionListener subscribes to the new-transaction stream.
func (p *Pool) AddTransactionListener() (<-chan NewTxEvent, event.Subscription) {
	return p.listeners.AddTransactionListener()
}

// AddEventListener subscribes to the per-hash lifecycle stream for hash.
func (p *Pool) AddEventListener(hash Hash) (<-chan HashEvent, event.Subscription) {
	return p.listeners.AddEventListener(hash)
}

// Content returns every Pending+BaseFee ("runnable") and Queued
// ("blocked") transaction, grouped by sender and sorted by nonce: the
// conventional read-only counterpart a pool this shape always grows.
func (p *Pool) Content() (runnable, blocked map[Address][]Transaction) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	runnable = make(map[Address][]Transaction)
	blocked = make(map[Address][]Transaction)

	collect := func(sl *subList, dst map[Address][]Transaction) {
		for sender, idx := range sl.bySender {
			addr, ok := p.senders.AddressOf(sender)
			if !ok {
				continue
			}
			for _, n := range idx.orderedNonces() {
				r, _ := idx.get(n)
				dst[addr] = append(dst[addr], r.Tx)
			}
		}
	}
	collect(p.pending, runnable)
	collect(p.basefee, runnable)
	collect(p.queued, blocked)
	return runnable, blocked
}

// ContentFrom is Content scoped to a single sender.
func (p *Pool) ContentFrom(addr Address) (runnable, blocked []Transaction) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sender, ok := p.senders.Lookup(addr)
	if !ok {
		return nil, nil
	}
	for _, sl := range []*subList{p.pending, p.basefee} {
		for _, n := range sl.senderNonces(sender) {
			if r, ok := sl.Get(TxID{sender, n}); ok {
				runnable = append(runnable, r.Tx)
			}
		}
	}
	for _, n := range p.queued.senderNonces(sender) {
		if r, ok := p.queued.Get(TxID{sender, n}); ok {
			blocked = append(blocked, r.Tx)
		}
	}
	return runnable, blocked
}

// Locals returns the distinct addresses with at least one local-origin
// transaction currently held.
func (p *Pool) Locals() []Address {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := mapset.NewThreadUnsafeSet[SenderID]()
	for _, sl := range []*subList{p.pending, p.basefee, p.queued} {
		for sender, idx := range sl.bySender {
			for _, n := range idx.nonces {
				if r, ok := idx.get(n); ok && r.origin == OriginLocal {
					seen.Add(sender)
					break
				}
			}
		}
	}
	out := make([]Address, 0, seen.Cardinality())
	seen.Each(func(s SenderID) bool {
		if addr, ok := p.senders.AddressOf(s); ok {
			out = append(out, addr)
		}
		return false
	})
	return out
}
