// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"github.com/holiman/uint256"
)

// fakeTx is a minimal Transaction implementation for exercising the pool
// without pulling in a real transaction/RLP encoding.
type fakeTx struct {
	hash     Hash
	nonce    uint64
	gasLimit uint64
	feeCap   *uint256.Int
	tipCap   *uint256.Int
	value    *uint256.Int
	size     uint64
}

func newFakeTx(seed byte, nonce uint64, feeCap, tipCap int64) *fakeTx {
	var h Hash
	h[0] = seed
	h[31] = byte(nonce)
	return &fakeTx{
		hash:     h,
		nonce:    nonce,
		gasLimit: 21000,
		feeCap:   uint256.NewInt(uint64(feeCap)),
		tipCap:   uint256.NewInt(uint64(tipCap)),
		value:    uint256.NewInt(0),
		size:     128,
	}
}

func (t *fakeTx) Hash() Hash                   { return t.hash }
func (t *fakeTx) Nonce() uint64                { return t.nonce }
func (t *fakeTx) GasLimit() uint64             { return t.gasLimit }
func (t *fakeTx) FeeCap() *uint256.Int         { return t.feeCap }
func (t *fakeTx) PriorityFeeCap() *uint256.Int { return t.tipCap }
func (t *fakeTx) Value() *uint256.Int          { return t.value }
func (t *fakeTx) Size() uint64                 { return t.size }

func fakeAddr(b byte) Address {
	var a Address
	a[19] = b
	return a
}

// effectiveTipPriority is the textbook EIP-1559-style priority function
// used throughout the test suite: the effective tip the sender would pay
// at the given base fee, capped by priority_fee_cap.
func effectiveTipPriority(tx Transaction, baseFee *uint256.Int) int64 {
	if tx.FeeCap().Cmp(baseFee) < 0 {
		return -1
	}
	headroom := new(uint256.Int).Sub(tx.FeeCap(), baseFee)
	tip := tx.PriorityFeeCap()
	if headroom.Cmp(tip) < 0 {
		return int64(headroom.Uint64())
	}
	return int64(tip.Uint64())
}

func validResult(tx Transaction, sender Address, stateNonce uint64, balance int64) ValidationResult {
	return ValidationResult{
		Tx:         tx,
		Sender:     sender,
		StateNonce: stateNonce,
		Balance:    uint256.NewInt(uint64(balance)),
	}
}
