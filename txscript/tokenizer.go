// Copyright (c) 2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
)

// opcodeArrayRef is used to break initialization cycles.
var opcodeArrayRef *[256]opcode

func init() {
	opcodeArrayRef = &opcodeArray
}

// ScriptTokenizer provides a facility for easily and efficiently tokenizing
// scripts without creating allocations.  Each successive opcode is parsed with
// the Next function, which returns false when iteration is complete, either
// due to successfully tokenizing the entire script or encountering a parse
// error.  In the case of failure, the Err function may be used to obtain the
// specific parse error.
//
// Upon successfully parsing an opcode, the opcode and data associated with it
// may be obtained via the Opcode and Data functions, respectively.
type ScriptTokenizer struct {
	script    []byte
	version   uint16
	offset    int32
	opcodeIdx int32
	op        *opcode
	data      []byte
	err       error
}

// Done returns true when either all opcodes have been exhausted or a parse
// failure was encountered and therefore the state has an associated error.
func (t *ScriptTokenizer) Done() bool {
	return t.err != nil || t.offset >= int32(len(t.script))
}

// malformed records a truncated push for the opcode at the current offset.
func (t *ScriptTokenizer) malformed(format string, args ...interface{}) bool {
	t.err = scriptError(ErrMalformedPush, fmt.Sprintf(format, args...))
	return false
}

// Next attempts to parse the next opcode and returns whether or not it was
// successful.  It will not be successful if invoked when already at the end of
// the script, a parse failure is encountered, or an associated error already
// exists due to a previous parse failure.
//
// On a false return the opcode and data are those of the last successful
// parse and the offset points at the failing opcode.  Invoking Next at the
// end of the script is not an error.
func (t *ScriptTokenizer) Next() bool {
	if t.Done() {
		return false
	}

	op := &opcodeArrayRef[t.script[t.offset]]
	remaining := t.script[t.offset:]

	var dataStart, dataLen int
	switch {
	// Opcodes without additional data.  OP_0, OP_1NEGATE and OP_[1-16]
	// represent the data themselves.
	case op.length == 1:
		dataStart, dataLen = 1, 0

	// Data pushes of specific lengths -- OP_DATA_[1-75].
	case op.length > 1:
		if len(remaining) < op.length {
			return t.malformed("opcode %s requires %d bytes, but script "+
				"only has %d remaining", op.name, op.length, len(remaining))
		}
		dataStart, dataLen = 1, op.length-1

	// Data pushes with a little endian length prefix -- OP_PUSHDATA{1,2,4}.
	default:
		prefixLen := -op.length
		if len(remaining)-1 < prefixLen {
			return t.malformed("opcode %s requires %d bytes, but script "+
				"only has %d remaining", op.name, prefixLen,
				len(remaining)-1)
		}

		prefix := remaining[1 : 1+prefixLen]
		var n uint32
		switch prefixLen {
		case 1:
			n = uint32(prefix[0])
		case 2:
			n = uint32(binary.LittleEndian.Uint16(prefix))
		case 4:
			n = binary.LittleEndian.Uint32(prefix)
		default:
			return t.malformed("invalid opcode length %d", op.length)
		}

		dataStart = 1 + prefixLen
		if uint64(n) > uint64(len(remaining)-dataStart) {
			return t.malformed("opcode %s pushes %d bytes, but script "+
				"only has %d remaining", op.name, n,
				len(remaining)-dataStart)
		}
		dataLen = int(n)
	}

	t.op = op
	t.data = nil
	if dataLen > 0 {
		t.data = remaining[dataStart : dataStart+dataLen]
	}
	t.offset += int32(dataStart + dataLen)
	t.opcodeIdx++
	return true
}

// Script returns the full script associated with the tokenizer.
func (t *ScriptTokenizer) Script() []byte {
	return t.script
}

// ByteIndex returns the current offset into the full script that will be parsed
// next and therefore also implies everything before it has already been parsed.
func (t *ScriptTokenizer) ByteIndex() int32 {
	return t.offset
}

// OpcodePosition returns the number of opcodes parsed so far.
func (t *ScriptTokenizer) OpcodePosition() int32 {
	return t.opcodeIdx
}

// Opcode returns the current opcode associated with the tokenizer.
func (t *ScriptTokenizer) Opcode() byte {
	return t.op.value
}

// Data returns the data associated with the most recently successfully parsed
// opcode.
func (t *ScriptTokenizer) Data() []byte {
	return t.data
}

// Err returns any errors currently associated with the tokenizer.  This will
// only be non-nil in the case a parsing error was encountered.
func (t *ScriptTokenizer) Err() error {
	return t.err
}

// MakeScriptTokenizer returns a new instance of a script tokenizer.  Passing
// an unsupported script version will result in the returned tokenizer
// immediately having an err set accordingly.
//
// See the docs for ScriptTokenizer for more details.
func MakeScriptTokenizer(scriptVersion uint16, script []byte) ScriptTokenizer {
	// Only version 0 scripts are currently supported.
	var err error
	if scriptVersion != 0 {
		str := fmt.Sprintf("script version %d is not supported", scriptVersion)
		err = scriptError(ErrUnsupportedScriptVersion, str)
	}
	return ScriptTokenizer{version: scriptVersion, script: script, err: err}
}
