// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSenderTableInternsOnce(t *testing.T) {
	table := NewSenderTable()
	a := fakeAddr(1)

	id1 := table.IDOrCreate(a)
	id2 := table.IDOrCreate(a)
	require.Equal(t, id1, id2)
	require.Equal(t, 1, table.Len())

	addr, ok := table.AddressOf(id1)
	require.True(t, ok)
	require.Equal(t, a, addr)
}

func TestSenderTableDistinctAddressesGetDistinctIDs(t *testing.T) {
	table := NewSenderTable()
	id1 := table.IDOrCreate(fakeAddr(1))
	id2 := table.IDOrCreate(fakeAddr(2))
	require.NotEqual(t, id1, id2)
	require.Equal(t, 2, table.Len())
}

func TestSenderTableLookupMissing(t *testing.T) {
	table := NewSenderTable()
	_, ok := table.Lookup(fakeAddr(9))
	require.False(t, ok)
}

func TestSenderTableConcurrentInternIsStable(t *testing.T) {
	table := NewSenderTable()
	addr := fakeAddr(7)

	var wg sync.WaitGroup
	ids := make([]SenderID, 64)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = table.IDOrCreate(addr)
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
	require.Equal(t, 1, table.Len())
}
