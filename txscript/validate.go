// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/sync/errgroup"
)

// PrevOutputFetcher is an interface used to supply the previous output a
// transaction input spends.  The set of unspent outputs is kept outside of
// this package.
type PrevOutputFetcher interface {
	// FetchPrevOutput attempts to fetch the previous output referenced by
	// the passed outpoint.  A nil value is returned if no entry for the
	// outpoint is found.
	FetchPrevOutput(wire.OutPoint) *wire.TxOut
}

// MultiPrevOutFetcher is a custom implementation of the PrevOutputFetcher
// backed by a key-value map of prevouts to outputs.  It is safe for
// concurrent reads once populated.
type MultiPrevOutFetcher struct {
	prevOuts map[wire.OutPoint]*wire.TxOut
}

// NewMultiPrevOutFetcher returns an instance of a PrevOutputFetcher that's
// backed by an optional map which is used as an input source. The
// AddPrevOut method can be used to add more elements to the backing map.
func NewMultiPrevOutFetcher(prevOuts map[wire.OutPoint]*wire.TxOut) *MultiPrevOutFetcher {
	if prevOuts == nil {
		prevOuts = make(map[wire.OutPoint]*wire.TxOut)
	}

	return &MultiPrevOutFetcher{
		prevOuts: prevOuts,
	}
}

// FetchPrevOutput attempts to fetch the previous output referenced by the
// passed outpoint.
//
// NOTE: This is part of the PrevOutputFetcher interface.
func (m *MultiPrevOutFetcher) FetchPrevOutput(op wire.OutPoint) *wire.TxOut {
	return m.prevOuts[op]
}

// AddPrevOut adds a new prev out, tx out pair to the backing map.
func (m *MultiPrevOutFetcher) AddPrevOut(op wire.OutPoint, txOut *wire.TxOut) {
	m.prevOuts[op] = txOut
}

// InputError describes the failure of a single transaction input.  Err holds
// the script error, so ClassifyFailure and IsErrorCode work on an InputError
// as they do on the script error itself.
type InputError struct {
	Index   int
	PrevOut wire.OutPoint
	Err     error
}

// Error satisfies the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("input %d spending %v failed (%v): %v", e.Index,
		e.PrevOut, ClassifyFailure(e.Err), e.Err)
}

// Unwrap returns the underlying script error.
func (e *InputError) Unwrap() error {
	return e.Err
}

// Kind returns the failure kind of the input.
func (e *InputError) Kind() FailureKind {
	return ClassifyFailure(e.Err)
}

// VerifyInput executes the unlocking script of the input at txIdx followed by
// the passed locking script and returns nil when the spend is valid.
func VerifyInput(tx *wire.MsgTx, txIdx int, pkScript []byte, flags ScriptFlags) error {
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", txIdx, len(tx.TxIn))
		return scriptError(ErrInvalidIndex, str)
	}

	vm, err := NewEngine(tx.TxIn[txIdx].SignatureScript, pkScript, flags)
	if err != nil {
		return err
	}
	return vm.Execute()
}

// isNullOutPoint determines whether or not a previous outpoint is set, which
// is the case for coinbase inputs.
func isNullOutPoint(op *wire.OutPoint) bool {
	return op.Index == math.MaxUint32 && op.Hash == (chainhash.Hash{})
}

// maxValidators returns the number of inputs validated at the same time.
// Limiting the number of goroutines to a multiple of the processor cores
// keeps the system responsive under heavy load.
func maxValidators() int {
	n := runtime.NumCPU() * 3
	if n <= 0 {
		n = 1
	}
	return n
}

// ValidateTransactionScripts validates the scripts of every input of the
// passed transaction using multiple goroutines.  Inputs with a null previous
// outpoint are skipped.  The first failing input cancels the validation of
// the remaining ones and is returned as an *InputError.
//
// When cache is not nil, script pairs found in it are not executed again and
// every successfully verified pair is added to it.
func ValidateTransactionScripts(ctx context.Context, tx *wire.MsgTx,
	fetcher PrevOutputFetcher, flags ScriptFlags, cache *VerifyCache) error {

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxValidators())

	txHash := tx.TxHash()
	for txIdx, txIn := range tx.TxIn {
		if isNullOutPoint(&txIn.PreviousOutPoint) {
			continue
		}

		txIdx, txIn := txIdx, txIn
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			prevOut := fetcher.FetchPrevOutput(txIn.PreviousOutPoint)
			if prevOut == nil {
				str := fmt.Sprintf("unable to find output %v referenced "+
					"from transaction %v", txIn.PreviousOutPoint, txHash)
				return &InputError{
					Index:   txIdx,
					PrevOut: txIn.PreviousOutPoint,
					Err:     scriptError(ErrMissingPrevOut, str),
				}
			}

			sigScript := txIn.SignatureScript
			pkScript := prevOut.PkScript
			if cache != nil && cache.Contains(flags, sigScript, pkScript) {
				log.Tracef("input %s:%d already verified", txHash, txIdx)
				return nil
			}

			err := VerifyInput(tx, txIdx, pkScript, flags)
			if err != nil {
				log.Debugf("failed to validate input %s:%d which "+
					"references output %v - %v (input script bytes "+
					"%x, prev output script bytes %x)", txHash, txIdx,
					txIn.PreviousOutPoint, err, sigScript, pkScript)
				log.Tracef("%v", newLogClosure(func() string {
					return spew.Sdump(txIn)
				}))
				return &InputError{
					Index:   txIdx,
					PrevOut: txIn.PreviousOutPoint,
					Err:     err,
				}
			}

			if cache != nil {
				cache.Add(flags, sigScript, pkScript)
			}
			return nil
		})
	}

	return g.Wait()
}
