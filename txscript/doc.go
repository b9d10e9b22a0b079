// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements a transaction script language extended with a
divisibility puzzle opcode.

This package provides data structures and functions to parse and execute
transaction scripts.

# Script Overview

Transaction scripts are written in a stack-base, FORTH-like language.

The script language consists of a number of opcodes which fall into several
categories such pushing and popping data to and from the stack, performing
basic arithmetic, conditional branching and comparing hashes.  Scripts are
processed from left to right and intentionally do not provide loops.

# Divisibility Puzzles

OP_CHECKDIV lets an output be locked to a number n.  The locking script
pushes n and executes the opcode:

	<n> OP_CHECKDIV

A spender supplies an unlocking script which pushes a claimed factor p.  The
opcode replaces both numbers with true when p divides n exactly and p is not
-1, 0 or 1, and with false otherwise.  The operands are decoded with the
canonical script number encoding and may be up to MaxCheckDivNumLen bytes
long, so the remainder is computed on arbitrary precision integers with a
bounded cost.  A malformed operand or a missing one aborts the evaluation
instead of producing false.

DivisibilityPuzzleScript and FactorClaimScript build the two scripts and
ExtractPuzzleCommitment recovers n from a locking script.

# Errors

Errors returned by this package are of type txscript.Error.  This allows the
caller to programmatically determine the specific error by examining the
ErrorCode field of the type asserted txscript.Error while still providing rich
error messages with contextual information.  ClassifyFailure groups the codes
so a caller can tell a malformed script from a wrong factor.  See ErrorCode in
the package documentation for a full list.
*/
package txscript
