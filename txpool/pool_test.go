// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, cfg Config, baseFee int64) *Pool {
	t.Helper()
	return New(cfg, effectiveTipPriority, uint256.NewInt(uint64(baseFee)))
}

func TestAddTransactionRoutesToPendingWhenRunnable(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 100, 10)

	hash, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), hash)

	status := p.Status()
	require.Equal(t, 1, status.Pending)
	require.Zero(t, status.BaseFee)
	require.Zero(t, status.Queued)
}

func TestAddTransactionNonceGapRoutesToQueued(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 5, 100, 10) // state_nonce is 0, this is nonce 5: a gap.

	_, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)

	status := p.Status()
	require.Equal(t, 1, status.Queued)
	require.Zero(t, status.Pending)
}

func TestQueuedTransactionPromotesWhenGapCloses(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	addr := fakeAddr(1)

	later := newFakeTx(1, 1, 100, 10)
	_, err := p.AddTransaction(OriginExternal, validResult(later, addr, 0, 100_000_000))
	require.NoError(t, err)
	require.Equal(t, Status{Queued: 1}, p.Status())

	earlier := newFakeTx(1, 0, 100, 10)
	_, err = p.AddTransaction(OriginExternal, validResult(earlier, addr, 0, 100_000_000))
	require.NoError(t, err)

	// Both nonces now form a contiguous, affordable run at a fee above
	// the base fee: both should have promoted into Pending.
	status := p.Status()
	require.Equal(t, 2, status.Pending)
	require.Zero(t, status.Queued)
}

func TestTransactionBelowBaseFeeParksInBaseFeePool(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 100)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 50, 5) // fee_cap 50 < base fee 100.

	_, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)
	require.Equal(t, Status{BaseFee: 1}, p.Status())
}

func TestBaseFeePoolTransactionPromotesWhenBaseFeeDrops(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 100)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 50, 5)

	_, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)
	require.Equal(t, Status{BaseFee: 1}, p.Status())

	p.OnCanonicalStateChange(nil, uint256.NewInt(10), nil)

	require.Equal(t, Status{Pending: 1}, p.Status())
}

func TestReplacementRequiresPriceBump(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReplacementBump = 0.10
	p := newTestPool(t, cfg, 10)
	addr := fakeAddr(1)

	original := newFakeTx(1, 0, 100, 10)
	_, err := p.AddTransaction(OriginExternal, validResult(original, addr, 0, 100_000_000))
	require.NoError(t, err)

	weakReplacement := newFakeTx(2, 0, 101, 10) // barely higher fee_cap, same tip: priority stays 10
	_, err = p.AddTransaction(OriginExternal, validResult(weakReplacement, addr, 0, 100_000_000))
	require.ErrorIs(t, err, ErrReplacementUnderpriced)

	strongReplacement := newFakeTx(3, 0, 200, 50)
	_, err = p.AddTransaction(OriginExternal, validResult(strongReplacement, addr, 0, 100_000_000))
	require.NoError(t, err)

	require.Equal(t, Status{Pending: 1}, p.Status())
	r, ok := p.Get(strongReplacement.Hash())
	require.True(t, ok)
	require.Equal(t, strongReplacement.Hash(), r.Hash())
}

func TestInsufficientBalanceQueuesSuffix(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 1)
	addr := fakeAddr(1)

	// Each transaction costs 21000*100 = 2_100_000; balance only covers one.
	first := newFakeTx(1, 0, 100, 10)
	second := newFakeTx(2, 1, 100, 10)

	_, err := p.AddTransaction(OriginExternal, validResult(first, addr, 0, 2_100_000))
	require.NoError(t, err)
	_, err = p.AddTransaction(OriginExternal, validResult(second, addr, 0, 2_100_000))
	require.NoError(t, err)

	status := p.Status()
	require.Equal(t, 1, status.Pending)
	require.Equal(t, 1, status.Queued)
}

func TestOversizedGapIsRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GapLimit = 4
	p := newTestPool(t, cfg, 1)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 10, 100, 10)

	_, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.ErrorIs(t, err, ErrNonceGapTooLarge)
}

func TestSingleTransactionExceedingBalanceIsRejected(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 1)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 100, 10)

	_, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 1))
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAlreadyKnownIsIdempotent(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 100, 10)

	_, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)

	_, err = p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.ErrorIs(t, err, ErrAlreadyKnown)
	require.Equal(t, Status{Pending: 1}, p.Status())
}

func TestEvictionDrainsQueuedBeforePending(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCount = 2
	cfg.PendingMaxCount = 2
	cfg.BaseFeeMaxCount = 2
	cfg.QueuedMaxCount = 2
	cfg.GapLimit = 10
	p := newTestPool(t, cfg, 1)

	addrA := fakeAddr(1)
	pending := newFakeTx(1, 0, 100, 10)
	_, err := p.AddTransaction(OriginExternal, validResult(pending, addrA, 0, 100_000_000))
	require.NoError(t, err)

	addrB := fakeAddr(2)
	queued := newFakeTx(2, 5, 100, 10) // gap: lands in Queued
	_, err = p.AddTransaction(OriginExternal, validResult(queued, addrB, 0, 100_000_000))
	require.NoError(t, err)
	require.Equal(t, Status{Pending: 1, Queued: 1}, p.Status())

	addrC := fakeAddr(3)
	newcomer := newFakeTx(3, 0, 200, 50) // higher priority than the queued tx it must displace
	hash, err := p.AddTransaction(OriginExternal, validResult(newcomer, addrC, 0, 100_000_000))
	require.NoError(t, err)
	require.NotEqual(t, Hash{}, hash)

	// The queued and the first pending transaction tie at priority 10;
	// Queued is swept first, so the queued one is evicted to make room,
	// leaving both Pending transactions intact.
	status := p.Status()
	require.Equal(t, 0, status.Queued)
	require.Equal(t, 2, status.Pending)
	require.False(t, p.Has(queued.Hash()))
}

func TestOnCanonicalStateChangeRemovesMinedAndDropsStaleNonces(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	addr := fakeAddr(1)

	tx0 := newFakeTx(1, 0, 100, 10)
	tx1 := newFakeTx(2, 1, 100, 10)
	_, err := p.AddTransaction(OriginExternal, validResult(tx0, addr, 0, 100_000_000))
	require.NoError(t, err)
	_, err = p.AddTransaction(OriginExternal, validResult(tx1, addr, 0, 100_000_000))
	require.NoError(t, err)
	require.Equal(t, Status{Pending: 2}, p.Status())

	p.OnCanonicalStateChange(
		[]Hash{tx0.Hash()},
		nil,
		[]SenderUpdate{{Sender: addr, StateNonce: 1, Balance: uint256.NewInt(100_000_000)}},
	)

	require.False(t, p.Has(tx0.Hash()))
	require.True(t, p.Has(tx1.Hash()))
	require.Equal(t, Status{Pending: 1}, p.Status())
}

func TestBestTransactionsSnapshotIsolatedFromLaterMutation(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 100, 10)
	_, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)

	it := p.BestTransactions()

	other := newFakeTx(2, 0, 1000, 100)
	_, err = p.AddTransaction(OriginExternal, validResult(other, fakeAddr(2), 0, 100_000_000))
	require.NoError(t, err)

	r, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, tx.Hash(), r.Hash())

	_, ok = it.Next()
	require.False(t, ok)
}

func TestAddPendingListenerReceivesPromotionHash(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	ch, sub := p.AddPendingListener()
	defer sub.Unsubscribe()

	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 100, 10)
	hash, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)

	select {
	case got := <-ch:
		require.Equal(t, hash, got)
	default:
		t.Fatal("expected a pending notification")
	}
}

func TestInvalidateRemovesAndFiresEvent(t *testing.T) {
	p := newTestPool(t, DefaultConfig(), 10)
	addr := fakeAddr(1)
	tx := newFakeTx(1, 0, 100, 10)
	hash, err := p.AddTransaction(OriginExternal, validResult(tx, addr, 0, 100_000_000))
	require.NoError(t, err)

	evCh, sub := p.AddEventListener(hash)
	defer sub.Unsubscribe()

	p.Invalidate(hash)
	require.False(t, p.Has(hash))

	select {
	case ev := <-evCh:
		require.Equal(t, EventInvalid, ev.Kind)
	default:
		t.Fatal("expected an invalid event")
	}
}
