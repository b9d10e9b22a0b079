// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVerifyCacheAddContains ensures a script pair is only reported as
// verified under the flags it was added with.
func TestVerifyCacheAddContains(t *testing.T) {
	t.Parallel()

	cache := NewVerifyCache(10)
	sigScript := mustParseShortForm("5")
	pkScript := mustParseShortForm("35 CHECKDIV")

	require.False(t, cache.Contains(StandardVerifyFlags, sigScript, pkScript))
	cache.Add(StandardVerifyFlags, sigScript, pkScript)
	require.True(t, cache.Contains(StandardVerifyFlags, sigScript, pkScript))

	// Different flags, or a different claim, are distinct entries.
	require.False(t, cache.Contains(0, sigScript, pkScript))
	require.False(t, cache.Contains(StandardVerifyFlags,
		mustParseShortForm("7"), pkScript))

	// Adding the same pair again is harmless.
	cache.Add(StandardVerifyFlags, sigScript, pkScript)
	require.True(t, cache.Contains(StandardVerifyFlags, sigScript, pkScript))
}

// TestVerifyCacheKeyBoundary ensures moving bytes across the boundary between
// the unlocking and locking scripts produces a different key.
func TestVerifyCacheKeyBoundary(t *testing.T) {
	t.Parallel()

	a := verifyCacheKey(0, []byte{0x01, 0x02}, []byte{0x03})
	b := verifyCacheKey(0, []byte{0x01}, []byte{0x02, 0x03})
	c := verifyCacheKey(0, nil, []byte{0x01, 0x02, 0x03})
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, b, c)

	require.Equal(t, a, verifyCacheKey(0, []byte{0x01, 0x02}, []byte{0x03}))
	require.NotEqual(t, a, verifyCacheKey(ScriptVerifyMinimalData,
		[]byte{0x01, 0x02}, []byte{0x03}))
}

// TestVerifyCacheEviction ensures the least recently used pair is evicted once
// the cache is full.
func TestVerifyCacheEviction(t *testing.T) {
	t.Parallel()

	pkScript := mustParseShortForm("105 CHECKDIV")
	claims := [][]byte{
		mustParseShortForm("3"),
		mustParseShortForm("5"),
		mustParseShortForm("7"),
	}

	cache := NewVerifyCache(2)
	cache.Add(0, claims[0], pkScript)
	cache.Add(0, claims[1], pkScript)

	// Touch the first claim so the second becomes the least recently used.
	require.True(t, cache.Contains(0, claims[0], pkScript))

	cache.Add(0, claims[2], pkScript)
	require.True(t, cache.Contains(0, claims[0], pkScript))
	require.False(t, cache.Contains(0, claims[1], pkScript))
	require.True(t, cache.Contains(0, claims[2], pkScript))
}

// TestVerifyCacheDefaultSize ensures a zero limit selects the default size
// rather than a cache that can hold nothing.
func TestVerifyCacheDefaultSize(t *testing.T) {
	t.Parallel()

	cache := NewVerifyCache(0)
	sigScript := mustParseShortForm("5")
	pkScript := mustParseShortForm("35 CHECKDIV")
	cache.Add(0, sigScript, pkScript)
	require.True(t, cache.Contains(0, sigScript, pkScript))
}
