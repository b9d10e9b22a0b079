// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math/big"
)

// IsNonTrivialFactor reports whether p divides n exactly and p is not one of
// the trivial factors -1, 0 or 1.  The remainder is computed on arbitrary
// precision integers, so no operand size can cause it to wrap.  A factor equal
// to n or -n is non-trivial.  Zero is divisible by every non-trivial p.
//
// Neither argument is modified.
func IsNonTrivialFactor(n, p *big.Int) bool {
	if p == nil || n == nil {
		return false
	}
	if p.Sign() == 0 || p.CmpAbs(big.NewInt(1)) == 0 {
		return false
	}

	var rem big.Int
	return rem.Rem(n, p).Sign() == 0
}

// popCheckDivOperand pops the top item of the data stack and decodes it as a
// divisibility operand.  Operands must be minimally encoded regardless of the
// engine flags and may be up to MaxCheckDivNumLen bytes.
func popCheckDivOperand(vm *Engine, name string) (ScriptNum, error) {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return ScriptNum{}, err
	}

	num, err := MakeScriptNum(so, true, MaxCheckDivNumLen)
	if err != nil {
		serr, ok := err.(Error)
		if !ok {
			return ScriptNum{}, err
		}
		serr.Description = fmt.Sprintf("OP_CHECKDIV operand %s: %s", name,
			serr.Description)
		return ScriptNum{}, serr
	}
	return num, nil
}

// opcodeCheckDiv treats the top two items on the data stack as the committed
// value n and a claimed factor p and replaces them with a boolean which
// indicates whether p is a non-trivial factor of n.
//
// The locking script pushes n immediately before the opcode, so n is the top
// item and the claim supplied by the unlocking script is beneath it.  Both
// operands are validated before anything is computed.  A stack with fewer
// than two items is left untouched.
//
// Stack transformation: [... p n] -> [... bool]
func opcodeCheckDiv(op *opcode, data []byte, vm *Engine) error {
	if vm.dstack.Depth() < 2 {
		str := fmt.Sprintf("%s requires 2 stack items, have %d", op.name,
			vm.dstack.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}

	n, err := popCheckDivOperand(vm, "n")
	if err != nil {
		return err
	}
	p, err := popCheckDivOperand(vm, "p")
	if err != nil {
		return err
	}

	valid := IsNonTrivialFactor(n.int(), p.int())
	log.Tracef("%v", newLogClosure(func() string {
		return fmt.Sprintf("%s n=%v p=%v result=%v", op.name, n, p, valid)
	}))

	return vm.dstack.PushBool(valid)
}
