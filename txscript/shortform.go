// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
)

var (
	// shortFormOps holds a map of opcode names to values for use in short
	// form parsing.  It is built once on first use.
	shortFormOps     map[string]byte
	shortFormOpsOnce sync.Once
)

// buildShortFormOps populates shortFormOps from OpcodeByName.  Opcode names
// are accepted with or without the OP_ prefix, except for OP_0 through OP_16
// which would otherwise conflict with plain numbers.
func buildShortFormOps() {
	ops := make(map[string]byte, 2*len(OpcodeByName))
	for opcodeName, opcodeValue := range OpcodeByName {
		if strings.Contains(opcodeName, "OP_UNKNOWN") {
			continue
		}
		ops[opcodeName] = opcodeValue

		// OP_FALSE and OP_TRUE share values with OP_0 and OP_1, so they
		// are detected by name.
		isNumber := opcodeValue == OP_0 ||
			(opcodeValue >= OP_1 && opcodeValue <= OP_16)
		if opcodeName == "OP_FALSE" || opcodeName == "OP_TRUE" || !isNumber {
			ops[strings.TrimPrefix(opcodeName, "OP_")] = opcodeValue
		}
	}
	shortFormOps = ops
}

// ParseShortForm parses a string in the short form used by script test
// vectors into a script.  Tokens are separated by whitespace and are one of:
//
//   - a decimal integer of any size, pushed with its canonical encoding
//   - raw bytes written as 0x followed by hex, copied into the script as is
//   - text enclosed in single quotes, pushed as data
//   - an opcode name with or without the OP_ prefix
//
// Any token may be followed by {n} to repeat it n times, so 0x01{20} is twenty
// raw 0x01 bytes.  Parsing stops with ErrScriptTooBig as soon as the script
// grows past MaxScriptSize.
//
// For example "5 35 CHECKDIV" pushes 5 and 35 then executes OP_CHECKDIV.
// Raw bytes bypass all builder checks so malformed scripts can be expressed.
func ParseShortForm(script string) ([]byte, error) {
	shortFormOpsOnce.Do(buildShortFormOps)

	builder := NewScriptBuilder()
	for _, field := range strings.Fields(script) {
		tok, n, err := splitRepeat(field)
		if err != nil {
			return nil, err
		}

		add, err := shortFormToken(builder, tok)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			add()
			if builder.err != nil {
				return nil, builder.err
			}
			if len(builder.script) > MaxScriptSize {
				str := fmt.Sprintf("short form script exceeds the "+
					"maximum script size of %d", MaxScriptSize)
				return nil, scriptError(ErrScriptTooBig, str)
			}
		}
	}
	return builder.Script()
}

// shortFormToken returns a function appending a single short form token to
// the builder.
func shortFormToken(builder *ScriptBuilder, tok string) (func(), error) {
	if num, ok := new(big.Int).SetString(tok, 10); ok {
		return func() { builder.AddBigInt(num) }, nil
	}

	switch {
	case len(tok) > 2 && strings.HasPrefix(tok, "0x"):
		bts, err := hex.DecodeString(tok[2:])
		if err != nil {
			return nil, fmt.Errorf("bad hex token %q: %w", tok, err)
		}

		// Concatenate the bytes manually since raw bytes are allowed to
		// form scripts the builder would refuse.
		return func() { builder.script = append(builder.script, bts...) }, nil

	case len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'':
		data := []byte(tok[1 : len(tok)-1])
		return func() { builder.AddFullData(data) }, nil
	}

	opcode, ok := shortFormOps[tok]
	if !ok {
		return nil, fmt.Errorf("bad token %q", tok)
	}
	return func() { builder.AddOp(opcode) }, nil
}

// splitRepeat separates a trailing {n} repeat count from a short form token.
// Tokens without one are returned with a count of 1.
func splitRepeat(tok string) (string, int, error) {
	open := strings.LastIndexByte(tok, '{')
	if open <= 0 || !strings.HasSuffix(tok, "}") {
		return tok, 1, nil
	}

	n, err := strconv.Atoi(tok[open+1 : len(tok)-1])
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("bad repeat count in token %q", tok)
	}
	return tok[:open], n, nil
}
