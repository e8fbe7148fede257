// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import "github.com/ethereum/go-ethereum/log"

// Config holds the tunables recognized by the pool. There is no CLI or
// file format for these: the enclosing node supplies them at
// construction.
type Config struct {
	// MaxCount and MaxBytes bound the whole pool.
	MaxCount int
	MaxBytes int64

	// Per-sub-pool count ceilings. Zero means "use MaxCount".
	PendingMaxCount int
	BaseFeeMaxCount int
	QueuedMaxCount  int

	// ReplacementBump is the fraction (e.g. 0.10 for 10%) a replacement's
	// priority must exceed the incumbent's by.
	ReplacementBump float64

	// PriceBumpLocal overrides ReplacementBump for local-origin
	// transactions; 0 means locally originated replacements bypass the
	// bump entirely.
	PriceBumpLocal float64

	// GapLimit is the furthest a transaction's nonce may sit ahead of the
	// sender's on-chain nonce before NonceGapTooLarge rejects it.
	GapLimit uint64

	// MinimumPriorityFee is the floor for a transaction's priority fee cap;
	// a transaction below it is rejected with ErrFeeCapBelowMinimum
	// regardless of the current base fee. Zero disables the check.
	MinimumPriorityFee uint64
}

// DefaultConfig returns defaults generous enough for a single node while
// still bounding memory: a large global slot count split across the three
// sub-pools, a conservative byte ceiling, and a standard 10% replacement
// bump.
func DefaultConfig() Config {
	return Config{
		MaxCount:           32768,
		MaxBytes:           512 << 20, // 512 MiB
		PendingMaxCount:    8192,
		BaseFeeMaxCount:    8192,
		QueuedMaxCount:     16384,
		ReplacementBump:    0.10,
		PriceBumpLocal:     0,
		GapLimit:           16,
		MinimumPriorityFee: 0,
	}
}

// sanitize fills in zero-valued fields with defaults and clamps obviously
// broken values. Corrections to MaxCount and MaxBytes are logged; the
// other fields are corrected silently.
func (c Config) sanitize() Config {
	conf := c
	if conf.MaxCount <= 0 {
		log.Warn("Sanitizing invalid txpool max count", "provided", conf.MaxCount, "updated", DefaultConfig().MaxCount)
		conf.MaxCount = DefaultConfig().MaxCount
	}
	if conf.MaxBytes <= 0 {
		log.Warn("Sanitizing invalid txpool max bytes", "provided", conf.MaxBytes, "updated", DefaultConfig().MaxBytes)
		conf.MaxBytes = DefaultConfig().MaxBytes
	}
	if conf.PendingMaxCount <= 0 {
		conf.PendingMaxCount = conf.MaxCount
	}
	if conf.BaseFeeMaxCount <= 0 {
		conf.BaseFeeMaxCount = conf.MaxCount
	}
	if conf.QueuedMaxCount <= 0 {
		conf.QueuedMaxCount = conf.MaxCount
	}
	if conf.ReplacementBump < 0 {
		conf.ReplacementBump = 0
	}
	if conf.GapLimit == 0 {
		conf.GapLimit = DefaultConfig().GapLimit
	}
	return conf
}
