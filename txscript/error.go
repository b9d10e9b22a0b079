// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of script error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInternal is returned if internal consistency checks fail.  In
	// practice this error should never be seen as it would mean there is an
	// error in the engine logic.
	ErrInternal ErrorCode = iota

	// ---------------------------------------
	// Failures related to improper API usage.
	// ---------------------------------------

	// ErrInvalidFlags is returned when the passed flags to NewEngine
	// contain an invalid combination.
	ErrInvalidFlags

	// ErrInvalidIndex is returned when an out-of-bounds index is passed to
	// a function.
	ErrInvalidIndex

	// ErrUnsupportedScriptVersion is returned when an unsupported script
	// version is passed to a function which deals with script analysis.
	ErrUnsupportedScriptVersion

	// ErrNotDivisibilityPuzzle is returned from ExtractPuzzleCommitment when
	// the passed script is not a divisibility puzzle locking script.
	ErrNotDivisibilityPuzzle

	// ErrMissingPrevOut is returned when the previous output referenced by
	// a transaction input is not known to the output fetcher.
	ErrMissingPrevOut

	// ------------------------------------------
	// Failures related to final execution state.
	// ------------------------------------------

	// ErrEarlyReturn is returned when OP_RETURN is executed in the script.
	ErrEarlyReturn

	// ErrEmptyStack is returned when the script evaluated without error,
	// but terminated with an empty top stack element.
	ErrEmptyStack

	// ErrEvalFalse is returned when the script evaluated without error but
	// terminated with a false top stack element.
	ErrEvalFalse

	// ErrScriptUnfinished is returned when CheckErrorCondition is called on
	// a script that has not finished executing.
	ErrScriptUnfinished

	// ErrInvalidProgramCounter is returned when an attempt to execute an
	// opcode is made once all of them have already been executed.  This can
	// happen due to things such as a second call to Execute or calling Step
	// after all opcodes have already been executed.
	ErrInvalidProgramCounter

	// -----------------------------------------------------
	// Failures related to exceeding maximum allowed limits.
	// -----------------------------------------------------

	// ErrScriptTooBig is returned if a script is larger than MaxScriptSize.
	ErrScriptTooBig

	// ErrElementTooBig is returned if the size of an element to be pushed
	// to the stack is over MaxScriptElementSize.
	ErrElementTooBig

	// ErrTooManyOperations is returned if a script has more than
	// MaxOpsPerScript opcodes that do not push data.
	ErrTooManyOperations

	// ErrStackOverflow is returned when stack and altstack combined depth
	// is over the limit.
	ErrStackOverflow

	// --------------------------------------------
	// Failures related to numeric operand decoding.
	// --------------------------------------------

	// ErrNumberTooBig is returned when the argument for an opcode that
	// expects numeric input is larger than the expected maximum number of
	// bytes.
	ErrNumberTooBig

	// ErrMinimalData is returned when a numeric operand is not encoded
	// with the minimal number of bytes, or when the ScriptVerifyMinimalData
	// flag is set and a push does not use the smallest push operator.
	ErrMinimalData

	// --------------------------------------------
	// Failures related to verification operations.
	// --------------------------------------------

	// ErrVerify is returned when OP_VERIFY is encountered in a script and
	// the top item on the data stack does not evaluate to true.
	ErrVerify

	// ErrEqualVerify is returned when OP_EQUALVERIFY is encountered in a
	// script and the top item on the data stack does not evaluate to true.
	ErrEqualVerify

	// ErrNumEqualVerify is returned when OP_NUMEQUALVERIFY is encountered
	// in a script and the top item on the data stack does not evaluate to
	// true.
	ErrNumEqualVerify

	// --------------------------------
	// Failures related to bad scripts.
	// --------------------------------

	// ErrDisabledOpcode is returned when a disabled opcode is encountered
	// in a script.
	ErrDisabledOpcode

	// ErrReservedOpcode is returned when an opcode marked as reserved or
	// an undefined opcode is encountered in a script.
	ErrReservedOpcode

	// ErrUnsupportedOpcode is returned when an opcode whose collaborator
	// is not provided by this engine, such as the signature checking
	// opcodes, is executed.
	ErrUnsupportedOpcode

	// ErrMalformedPush is returned when a data push opcode tries to push
	// more bytes than are left in the script.
	ErrMalformedPush

	// ErrInvalidStackOperation is returned when a stack operation is
	// attempted with a number that is invalid for the current stack size.
	ErrInvalidStackOperation

	// ErrUnbalancedConditional is returned when an OP_ELSE or OP_ENDIF is
	// encountered in a script without first having an OP_IF or OP_NOTIF or
	// the end of script is reached without encountering an OP_ENDIF when
	// an OP_IF or OP_NOTIF was previously encountered.
	ErrUnbalancedConditional

	// ---------------------------------
	// Failures related to malleability.
	// ---------------------------------

	// ErrNotPushOnly is returned when a script that is required to only
	// push data to the stack performs other operations.
	ErrNotPushOnly

	// ErrCleanStack is returned when the ScriptVerifyCleanStack flag
	// is set, and after evaluation, the stack does not contain only a
	// single element.
	ErrCleanStack

	// -------------------------------
	// Failures related to soft forks.
	// -------------------------------

	// ErrDiscourageUpgradableNOPs is returned when the
	// ScriptDiscourageUpgradableNops flag is set and a NOP opcode is
	// encountered in a script.
	ErrDiscourageUpgradableNOPs

	// numErrorCodes is the maximum error code number used in tests.  This
	// entry MUST be the last entry in the enum.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInternal:                 "ErrInternal",
	ErrInvalidFlags:             "ErrInvalidFlags",
	ErrInvalidIndex:             "ErrInvalidIndex",
	ErrUnsupportedScriptVersion: "ErrUnsupportedScriptVersion",
	ErrNotDivisibilityPuzzle:    "ErrNotDivisibilityPuzzle",
	ErrMissingPrevOut:           "ErrMissingPrevOut",
	ErrEarlyReturn:              "ErrEarlyReturn",
	ErrEmptyStack:               "ErrEmptyStack",
	ErrEvalFalse:                "ErrEvalFalse",
	ErrScriptUnfinished:         "ErrScriptUnfinished",
	ErrInvalidProgramCounter:    "ErrInvalidProgramCounter",
	ErrScriptTooBig:             "ErrScriptTooBig",
	ErrElementTooBig:            "ErrElementTooBig",
	ErrTooManyOperations:        "ErrTooManyOperations",
	ErrStackOverflow:            "ErrStackOverflow",
	ErrNumberTooBig:             "ErrNumberTooBig",
	ErrMinimalData:              "ErrMinimalData",
	ErrVerify:                   "ErrVerify",
	ErrEqualVerify:              "ErrEqualVerify",
	ErrNumEqualVerify:           "ErrNumEqualVerify",
	ErrDisabledOpcode:           "ErrDisabledOpcode",
	ErrReservedOpcode:           "ErrReservedOpcode",
	ErrUnsupportedOpcode:        "ErrUnsupportedOpcode",
	ErrMalformedPush:            "ErrMalformedPush",
	ErrInvalidStackOperation:    "ErrInvalidStackOperation",
	ErrUnbalancedConditional:    "ErrUnbalancedConditional",
	ErrNotPushOnly:              "ErrNotPushOnly",
	ErrCleanStack:               "ErrCleanStack",
	ErrDiscourageUpgradableNOPs: "ErrDiscourageUpgradableNOPs",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a script-related error.  It is used to indicate three
// classes of errors:
//  1. Script execution failures due to violating one of the many requirements
//     imposed by the script engine or evaluating to false
//  2. Improper API usage by callers
//  3. Internal consistency check failures
//
// The caller can use type assertions on the returned errors to access the
// ErrorCode field to ascertain the specific reason for the error.  As an
// additional convenience, the caller may make use of the IsErrorCode function
// to check for a specific error code.
type Error struct {
	ErrorCode   ErrorCode
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying wrapped error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// scriptError creates an Error given a set of arguments.
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script error
// with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	var serr Error
	return errors.As(err, &serr) && serr.ErrorCode == c
}

// FailureKind groups the error codes that can end an evaluation into the
// categories a caller reports for a rejected spend.
type FailureKind int

const (
	// FailureNone indicates the evaluation succeeded.
	FailureNone FailureKind = iota

	// FailureStackUnderflow indicates an opcode needed more operands than
	// the stack held.
	FailureStackUnderflow

	// FailureInvalidEncoding indicates a numeric operand was not canonical
	// or exceeded its size bound.
	FailureInvalidEncoding

	// FailureResourceLimitExceeded indicates a script, element, stack or
	// operation count limit was breached.
	FailureResourceLimitExceeded

	// FailurePredicateUnsatisfied indicates the scripts were well formed
	// but the final stack value, or a verify opcode, was false.  A wrong
	// factor supplied to a divisibility puzzle ends up here.
	FailurePredicateUnsatisfied

	// FailureMalformedScript covers every other script failure.
	FailureMalformedScript
)

var failureKindStrings = map[FailureKind]string{
	FailureNone:                  "None",
	FailureStackUnderflow:        "StackUnderflow",
	FailureInvalidEncoding:       "InvalidEncoding",
	FailureResourceLimitExceeded: "ResourceLimitExceeded",
	FailurePredicateUnsatisfied:  "PredicateUnsatisfied",
	FailureMalformedScript:       "MalformedScript",
}

// String returns the FailureKind as a human-readable name.
func (k FailureKind) String() string {
	if s := failureKindStrings[k]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown FailureKind (%d)", int(k))
}

// ClassifyFailure maps the error returned from an evaluation to its
// FailureKind.  A nil error is FailureNone and errors that do not carry a
// script error code are FailureMalformedScript.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var serr Error
	if !errors.As(err, &serr) {
		return FailureMalformedScript
	}

	switch serr.ErrorCode {
	case ErrInvalidStackOperation:
		return FailureStackUnderflow

	case ErrNumberTooBig, ErrMinimalData:
		return FailureInvalidEncoding

	case ErrScriptTooBig, ErrElementTooBig, ErrTooManyOperations,
		ErrStackOverflow:

		return FailureResourceLimitExceeded

	case ErrEvalFalse, ErrVerify, ErrEqualVerify, ErrNumEqualVerify:
		return FailurePredicateUnsatisfied
	}

	return FailureMalformedScript
}
