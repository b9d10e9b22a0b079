// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/lru"
)

// DefaultVerifyCacheSize is the number of verified script pairs a VerifyCache
// created with a zero limit holds.
const DefaultVerifyCacheSize = 10000

// VerifyCache remembers script pairs which have already been verified under a
// set of flags.  Evaluation depends on nothing but the two scripts and the
// flags, so a pair that verified once verifies again and need not be
// executed.  Only successes are recorded; a failed claim leaves no trace.
//
// The cache is bounded and evicts the least recently used pair when full.  It
// is safe for concurrent access.
type VerifyCache struct {
	cache lru.Cache
}

// NewVerifyCache creates and initializes a new instance of VerifyCache which
// holds at most limit script pairs.
func NewVerifyCache(limit uint) *VerifyCache {
	if limit == 0 {
		limit = DefaultVerifyCacheSize
	}
	return &VerifyCache{
		cache: lru.NewCache(limit),
	}
}

// verifyCacheKey returns the digest identifying a script pair under the passed
// flags.  The unlocking script is length prefixed so the boundary between the
// two scripts is unambiguous.
func verifyCacheKey(flags ScriptFlags, sigScript, pkScript []byte) chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(4 + wire.VarIntSerializeSize(uint64(len(sigScript))) +
		len(sigScript) + len(pkScript))

	var flagBytes [4]byte
	binary.LittleEndian.PutUint32(flagBytes[:], uint32(flags))
	buf.Write(flagBytes[:])

	// Writes to a bytes.Buffer never fail.
	_ = wire.WriteVarBytes(&buf, 0, sigScript)
	buf.Write(pkScript)

	return chainhash.DoubleHashH(buf.Bytes())
}

// Contains returns whether the script pair has already been verified under the
// passed flags.
func (c *VerifyCache) Contains(flags ScriptFlags, sigScript, pkScript []byte) bool {
	return c.cache.Contains(verifyCacheKey(flags, sigScript, pkScript))
}

// Add records that the script pair verified under the passed flags.
func (c *VerifyCache) Add(flags ScriptFlags, sigScript, pkScript []byte) {
	c.cache.Add(verifyCacheKey(flags, sigScript, pkScript))
}
