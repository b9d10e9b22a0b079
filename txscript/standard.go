// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math/big"
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockchain.
const (
	NonStandardTy        ScriptClass = iota // None of the recognized forms.
	DivisibilityPuzzleTy                    // <n> OP_CHECKDIV.
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy:        "nonstandard",
	DivisibilityPuzzleTy: "divisibilitypuzzle",
}

// String implements the Stringer interface by returning the name of
// the enum script class. If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// extractPuzzleCommitment returns the committed value of a divisibility
// puzzle locking script, or nil when the script is not of that form.  The
// value must be pushed with the smallest push operator and be a minimally
// encoded number no longer than MaxCheckDivNumLen bytes, so every puzzle
// has exactly one script representation.
func extractPuzzleCommitment(script []byte) *big.Int {
	// A divisibility puzzle is of the form:
	//  <n> OP_CHECKDIV
	tokenizer := MakeScriptTokenizer(0, script)
	if !tokenizer.Next() {
		return nil
	}

	var n *big.Int
	op := tokenizer.op
	switch {
	case isSmallInt(op.value):
		n = big.NewInt(int64(asSmallInt(op.value)))

	case op.value == OP_1NEGATE:
		n = big.NewInt(-1)

	case op.value <= OP_PUSHDATA4:
		data := tokenizer.Data()
		if checkMinimalDataPush(op, data) != nil {
			return nil
		}
		num, err := MakeScriptNum(data, true, MaxCheckDivNumLen)
		if err != nil {
			return nil
		}
		n = num.BigInt()

	default:
		return nil
	}

	if !tokenizer.Next() || tokenizer.Opcode() != OP_CHECKDIV {
		return nil
	}
	if !tokenizer.Done() || tokenizer.Err() != nil {
		return nil
	}
	return n
}

// IsDivisibilityPuzzle returns true if the script is in the standard
// divisibility puzzle form, false otherwise.
func IsDivisibilityPuzzle(script []byte) bool {
	return extractPuzzleCommitment(script) != nil
}

// ExtractPuzzleCommitment returns the value a divisibility puzzle locking
// script commits to.  An error with ErrNotDivisibilityPuzzle is returned when
// the script is not in the standard form.
func ExtractPuzzleCommitment(script []byte) (*big.Int, error) {
	n := extractPuzzleCommitment(script)
	if n == nil {
		str := fmt.Sprintf("script %x is not a divisibility puzzle", script)
		return nil, scriptError(ErrNotDivisibilityPuzzle, str)
	}
	return n, nil
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	if IsDivisibilityPuzzle(script) {
		return DivisibilityPuzzleTy
	}
	return NonStandardTy
}

// DivisibilityPuzzleScript creates a new script which can only be spent by
// supplying a non-trivial factor of n.
//
// Note that a commitment to zero can be spent with any non-trivial claim since
// every such value divides zero.
func DivisibilityPuzzleScript(n *big.Int) ([]byte, error) {
	if n == nil {
		return nil, scriptError(ErrInternal, "nil puzzle commitment")
	}
	return NewScriptBuilder().AddBigInt(n).AddOp(OP_CHECKDIV).Script()
}

// FactorClaimScript creates the unlocking script which claims p is a factor of
// the value committed to by a divisibility puzzle.
func FactorClaimScript(p *big.Int) ([]byte, error) {
	if p == nil {
		return nil, scriptError(ErrInternal, "nil factor claim")
	}
	return NewScriptBuilder().AddBigInt(p).Script()
}
