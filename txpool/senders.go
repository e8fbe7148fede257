// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import "sync"

// SenderTable interns addresses to dense SenderIDs, used as a compact
// sort-key prefix everywhere a transaction needs to be keyed by sender.
// Assignment is monotonic: IDs are never reused and the table never
// shrinks, bounded only by the number of distinct senders seen since
// process start.
//
// The table has its own lock, independent of the pool's main writer lock,
// so hot read paths (address_of during iteration or logging) don't
// contend with inserts happening concurrently on another pool method.
type SenderTable struct {
	mu      sync.RWMutex
	byAddr  map[Address]SenderID
	byID    []Address
}

// NewSenderTable returns an empty sender table.
func NewSenderTable() *SenderTable {
	return &SenderTable{
		byAddr: make(map[Address]SenderID),
	}
}

// IDOrCreate returns the SenderID for addr, assigning a new one if this is
// the first time addr has been seen.
func (t *SenderTable) IDOrCreate(addr Address) SenderID {
	t.mu.RLock()
	id, ok := t.byAddr[addr]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Re-check under the write lock: another goroutine may have raced us.
	if id, ok := t.byAddr[addr]; ok {
		return id
	}
	id = SenderID(len(t.byID))
	t.byID = append(t.byID, addr)
	t.byAddr[addr] = id
	return id
}

// Lookup returns the SenderID already assigned to addr, if any.
func (t *SenderTable) Lookup(addr Address) (SenderID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byAddr[addr]
	return id, ok
}

// AddressOf returns the address a SenderID was assigned to.
func (t *SenderTable) AddressOf(id SenderID) (Address, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		return Address{}, false
	}
	return t.byID[id], true
}

// Len returns the number of distinct senders interned so far.
func (t *SenderTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
