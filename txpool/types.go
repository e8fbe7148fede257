// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Address is a 20-byte account identifier, reused directly from go-ethereum
// rather than hand-rolled.
type Address = common.Address

// Hash identifies a transaction.
type Hash = common.Hash

// SenderID is a process-local dense integer assigned the first time an
// address is seen by a SenderTable. Stable for the lifetime of the pool,
// never reused, never shrinks.
type SenderID uint64

// TxID is the primary key of a transaction record: the pair (sender, nonce).
// Two records sharing a TxID are duplicates.
type TxID struct {
	Sender SenderID
	Nonce  uint64
}

// Origin records where a transaction came from.
type Origin uint8

const (
	OriginExternal Origin = iota
	OriginLocal
	OriginPrivate
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginPrivate:
		return "private"
	default:
		return "external"
	}
}

// Transaction is the capability set the pool needs from a signed transaction
// payload. The payload itself is opaque: the pool never inspects anything
// beyond what this interface exposes. Concrete transaction types (and
// signature recovery) live entirely outside this package.
type Transaction interface {
	Hash() Hash
	Nonce() uint64

	// GasLimit is the maximum gas the transaction may consume.
	GasLimit() uint64

	// FeeCap is the maximum total gas price the sender is willing to pay
	// (go-ethereum calls this GasFeeCap for dynamic-fee transactions, and
	// GasPrice for legacy ones).
	FeeCap() *uint256.Int

	// PriorityFeeCap is the maximum priority fee (tip) the sender is
	// willing to pay on top of the base fee. For legacy, non-dynamic-fee
	// transactions this equals FeeCap.
	PriorityFeeCap() *uint256.Int

	// Value is the amount of native currency transferred.
	Value() *uint256.Int

	// Size is the encoded byte size, used for the pool's max_bytes limit.
	Size() uint64
}

// PriorityFunc computes a totally ordered score for tx given the pool's
// current base fee. Higher scores are preferred. The typical
// implementation is the effective miner tip at the current base fee:
// min(fee_cap - base_fee, priority_fee_cap).
type PriorityFunc func(tx Transaction, baseFee *uint256.Int) int64

// ValidationResult is what the validator port hands back for one
// submitted transaction. Exactly one of Err or the Valid fields applies.
type ValidationResult struct {
	// Tx, Sender, StateNonce and Balance are populated when the
	// transaction is currently valid.
	Tx         Transaction
	Sender     Address
	StateNonce uint64
	Balance    *uint256.Int

	// Err is non-nil when the validator rejected the transaction outright.
	// The pool forwards it verbatim and never stores the transaction.
	Err error
}

// SenderUpdate carries a post-reorg (state_nonce, balance) pair for one
// sender, as delivered by OnCanonicalStateChange.
type SenderUpdate struct {
	Sender     Address
	StateNonce uint64
	Balance    *uint256.Int
}

// SubPoolTag names which of the three disjoint sub-pools a record lives in.
type SubPoolTag uint8

const (
	// NoPool means the transaction is not currently held by the pool.
	NoPool SubPoolTag = iota
	Pending
	BaseFeePool
	Queued
)

func (t SubPoolTag) String() string {
	switch t {
	case Pending:
		return "pending"
	case BaseFeePool:
		return "basefee"
	case Queued:
		return "queued"
	default:
		return "none"
	}
}
