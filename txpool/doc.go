// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txpool implements the in-memory mempool core for an account-based
// chain: a sender-nonce aware classifier that routes validated transactions
// into Pending, BaseFee-parked, or Queued sub-pools, reacts to chain head
// moves by re-classifying held transactions, and streams the best
// executable prefix to a block builder.
//
// The pool does not validate transactions, recover signatures, execute the
// EVM, or persist anything to disk; those are the caller's job. The pool
// only needs three things from the outside world: a ValidationResult per
// transaction, chain-tip updates delivered through OnCanonicalStateChange,
// and a PriorityFunc to rank transactions against each other.
package txpool
