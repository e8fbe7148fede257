// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import "errors"

// Error kinds surfaced to callers of AddTransaction. The pool never
// panics on bad input; every path below leaves the pool's sub-pools and
// indices internally consistent.
var (
	// ErrNonceTooLow is permanent for this pool: tx.nonce < state_nonce.
	ErrNonceTooLow = errors.New("txpool: nonce too low")

	// ErrNonceGapTooLarge is permanent for this pool: tx.nonce - state_nonce
	// exceeds the configured GapLimit.
	ErrNonceGapTooLarge = errors.New("txpool: nonce gap too large")

	// ErrReplacementUnderpriced is permanent: an existing record shares the
	// incoming transaction's (sender, nonce) and the incoming priority does
	// not clear the configured replacement bump.
	ErrReplacementUnderpriced = errors.New("txpool: replacement transaction underpriced")

	// ErrInsufficientFunds means no feasible nonce-contiguous prefix exists
	// for the sender's current balance, even after closing any gap.
	ErrInsufficientFunds = errors.New("txpool: insufficient funds for gas * price + value")

	// ErrFeeCapBelowMinimum means the transaction's priority fee cap is
	// below the configured floor.
	ErrFeeCapBelowMinimum = errors.New("txpool: fee cap below minimum priority fee")

	// ErrAlreadyKnown is returned, as an idempotent success, when an exact
	// byte-identical duplicate is already present.
	ErrAlreadyKnown = errors.New("txpool: already known")

	// ErrDiscardedOnInsert means the transaction was admitted and then
	// evicted within the same call by size enforcement.
	ErrDiscardedOnInsert = errors.New("txpool: discarded immediately by size enforcement")

	// ErrPoolFull means admission was rejected because the incoming
	// priority does not exceed the pool's current worst-held transaction
	// and the pool is already at capacity.
	ErrPoolFull = errors.New("txpool: pool full")

	// ErrAlreadyReserved is a programming-error guard: a sub-pool tried to
	// claim a transaction_id already owned by another record.
	ErrAlreadyReserved = errors.New("txpool: transaction id already reserved")
)
