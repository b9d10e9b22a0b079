// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScriptBuilderAddOp tests that pushing opcodes to a script via the
// ScriptBuilder API works as expected.
func TestScriptBuilderAddOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opcodes  []byte
		expected []byte
	}{
		{
			name:     "push OP_0",
			opcodes:  []byte{OP_0},
			expected: []byte{OP_0},
		},
		{
			name:     "push OP_1 OP_2",
			opcodes:  []byte{OP_1, OP_2},
			expected: []byte{OP_1, OP_2},
		},
		{
			name:     "push OP_CHECKDIV OP_VERIFY",
			opcodes:  []byte{OP_CHECKDIV, OP_VERIFY},
			expected: []byte{OP_CHECKDIV, OP_VERIFY},
		},
	}

	// Run tests and individually add each op via AddOp.
	builder := NewScriptBuilder()
	for _, test := range tests {
		builder.Reset()
		for _, opcode := range test.opcodes {
			builder.AddOp(opcode)
		}
		result, err := builder.Script()
		require.NoError(t, err, test.name)
		require.Equal(t, test.expected, result, test.name)
	}

	// Run tests and bulk add ops via AddOps.
	for _, test := range tests {
		result, err := builder.Reset().AddOps(test.opcodes).Script()
		require.NoError(t, err, test.name)
		require.Equal(t, test.expected, result, test.name)
	}
}

// TestScriptBuilderAddInt64 tests that pushing signed integers to a script via
// the ScriptBuilder API works as expected.
func TestScriptBuilderAddInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		val      int64
		expected []byte
	}{
		{name: "push -1", val: -1, expected: []byte{OP_1NEGATE}},
		{name: "push small int 0", val: 0, expected: []byte{OP_0}},
		{name: "push small int 1", val: 1, expected: []byte{OP_1}},
		{name: "push small int 2", val: 2, expected: []byte{OP_2}},
		{name: "push small int 7", val: 7, expected: []byte{OP_7}},
		{name: "push small int 16", val: 16, expected: []byte{OP_16}},
		{name: "push 17", val: 17, expected: []byte{OP_DATA_1, 0x11}},
		{name: "push 35", val: 35, expected: []byte{OP_DATA_1, 0x23}},
		{name: "push 127", val: 127, expected: []byte{OP_DATA_1, 0x7f}},
		{name: "push 128", val: 128, expected: []byte{OP_DATA_1 + 1, 0x80, 0}},
		{name: "push 255", val: 255, expected: []byte{OP_DATA_1 + 1, 0xff, 0}},
		{name: "push 256", val: 256, expected: []byte{OP_DATA_1 + 1, 0, 0x01}},
		{name: "push 32767", val: 32767, expected: []byte{OP_DATA_1 + 1, 0xff, 0x7f}},
		{name: "push 32768", val: 32768, expected: []byte{OP_DATA_1 + 2, 0, 0x80, 0}},
		{name: "push -2", val: -2, expected: []byte{OP_DATA_1, 0x82}},
		{name: "push -17", val: -17, expected: []byte{OP_DATA_1, 0x91}},
		{name: "push -127", val: -127, expected: []byte{OP_DATA_1, 0xff}},
		{name: "push -128", val: -128, expected: []byte{OP_DATA_1 + 1, 0x80, 0x80}},
		{name: "push -256", val: -256, expected: []byte{OP_DATA_1 + 1, 0x00, 0x81}},
		{name: "push -32768", val: -32768, expected: []byte{OP_DATA_1 + 2, 0x00, 0x80, 0x80}},
	}

	builder := NewScriptBuilder()
	for _, test := range tests {
		result, err := builder.Reset().AddInt64(test.val).Script()
		require.NoError(t, err, test.name)
		require.Equal(t, test.expected, result, test.name)
	}
}

// TestScriptBuilderAddBigInt ensures numbers wider than 64 bits are pushed
// with their canonical encoding and that numbers which fit in 64 bits produce
// the same script as AddInt64.
func TestScriptBuilderAddBigInt(t *testing.T) {
	t.Parallel()

	twoTo64 := new(big.Int).Lsh(big.NewInt(1), 64)
	tests := []struct {
		name     string
		val      *big.Int
		expected []byte
	}{
		{
			name:     "small int",
			val:      big.NewInt(16),
			expected: []byte{OP_16},
		},
		{
			name:     "negative one",
			val:      big.NewInt(-1),
			expected: []byte{OP_1NEGATE},
		},
		{
			name:     "one byte",
			val:      big.NewInt(35),
			expected: []byte{OP_DATA_1, 0x23},
		},
		{
			name: "2^64",
			val:  twoTo64,
			expected: []byte{OP_DATA_1 + 8, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x01},
		},
		{
			name: "-2^64",
			val:  new(big.Int).Neg(twoTo64),
			expected: []byte{OP_DATA_1 + 8, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x81},
		},
	}

	builder := NewScriptBuilder()
	for _, test := range tests {
		result, err := builder.Reset().AddBigInt(test.val).Script()
		require.NoError(t, err, test.name)
		require.Equal(t, test.expected, result, test.name)

		if test.val.IsInt64() {
			want, err := NewScriptBuilder().AddInt64(test.val.Int64()).Script()
			require.NoError(t, err, test.name)
			require.Equal(t, want, result, test.name)
		}
	}

	// The largest number a CHECKDIV operand may hold is pushed with
	// OP_PUSHDATA2 and one bit larger is refused.
	largest := mersenne(MaxCheckDivNumLen*8 - 1)
	result, err := builder.Reset().AddBigInt(largest).Script()
	require.NoError(t, err)
	require.Len(t, result, 3+MaxCheckDivNumLen)
	require.Equal(t, []byte{OP_PUSHDATA2, 0x08, 0x02}, result[:3])

	tooBig := new(big.Int).Lsh(big.NewInt(1), MaxCheckDivNumLen*8-1)
	_, err = builder.Reset().AddBigInt(tooBig).Script()
	require.IsType(t, ErrScriptNotCanonical(""), err)
}

// TestScriptBuilderAddData tests that pushing data to a script via the
// ScriptBuilder API works as expected and conforms to BIP0062.
func TestScriptBuilderAddData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		expected []byte
		useFull  bool // use AddFullData instead of AddData.
	}{
		// BIP0062: Pushing an empty byte sequence must use OP_0.
		{name: "push empty byte sequence", data: nil, expected: []byte{OP_0}},
		{name: "push 1 byte 0x00", data: []byte{0x00}, expected: []byte{OP_0}},

		// BIP0062: Pushing a 1-byte sequence of byte 0x01 through 0x10 must
		// use OP_n.
		{name: "push 1 byte 0x01", data: []byte{0x01}, expected: []byte{OP_1}},
		{name: "push 1 byte 0x05", data: []byte{0x05}, expected: []byte{OP_5}},
		{name: "push 1 byte 0x10", data: []byte{0x10}, expected: []byte{OP_16}},

		// BIP0062: Pushing the byte 0x81 must use OP_1NEGATE.
		{name: "push 1 byte 0x81", data: []byte{0x81}, expected: []byte{OP_1NEGATE}},

		// BIP0062: Pushing any other byte sequence up to 75 bytes must
		// use the normal data push (opcode byte n, with n the number of
		// bytes, followed n bytes of data being pushed).
		{name: "push 1 byte 0x11", data: []byte{0x11}, expected: []byte{OP_DATA_1, 0x11}},
		{name: "push 1 byte 0x80", data: []byte{0x80}, expected: []byte{OP_DATA_1, 0x80}},
		{name: "push 1 byte 0x82", data: []byte{0x82}, expected: []byte{OP_DATA_1, 0x82}},
		{name: "push 1 byte 0xff", data: []byte{0xff}, expected: []byte{OP_DATA_1, 0xff}},
		{
			name:     "push data len 17",
			data:     bytes.Repeat([]byte{0x49}, 17),
			expected: append([]byte{OP_DATA_1 + 16}, bytes.Repeat([]byte{0x49}, 17)...),
		},
		{
			name:     "push data len 75",
			data:     bytes.Repeat([]byte{0x49}, 75),
			expected: append([]byte{OP_DATA_75}, bytes.Repeat([]byte{0x49}, 75)...),
		},

		// BIP0062: Pushing 76 to 255 bytes must use OP_PUSHDATA1.
		{
			name:     "push data len 76",
			data:     bytes.Repeat([]byte{0x49}, 76),
			expected: append([]byte{OP_PUSHDATA1, 76}, bytes.Repeat([]byte{0x49}, 76)...),
		},
		{
			name:     "push data len 255",
			data:     bytes.Repeat([]byte{0x49}, 255),
			expected: append([]byte{OP_PUSHDATA1, 255}, bytes.Repeat([]byte{0x49}, 255)...),
		},

		// BIP0062: Pushing 256 to 520 bytes must use OP_PUSHDATA2.
		{
			name:     "push data len 256",
			data:     bytes.Repeat([]byte{0x49}, 256),
			expected: append([]byte{OP_PUSHDATA2, 0, 1}, bytes.Repeat([]byte{0x49}, 256)...),
		},
		{
			name:     "push data len 520",
			data:     bytes.Repeat([]byte{0x49}, 520),
			expected: append([]byte{OP_PUSHDATA2, 0x08, 0x02}, bytes.Repeat([]byte{0x49}, 520)...),
		},

		// Data pushes larger than the max script element size are not
		// allowed through the canonical path.
		{
			name:     "push data len 521",
			data:     bytes.Repeat([]byte{0x49}, 521),
			expected: nil,
		},
		{
			name:     "push data len 32767 (canonical)",
			data:     bytes.Repeat([]byte{0x49}, 32767),
			expected: nil,
		},

		// AddFullData is allowed to push data larger than the max
		// element size so scripts the engine rejects can be built.
		{
			name:     "push data len 521 (non-canonical)",
			data:     bytes.Repeat([]byte{0x49}, 521),
			expected: append([]byte{OP_PUSHDATA2, 0x09, 0x02}, bytes.Repeat([]byte{0x49}, 521)...),
			useFull:  true,
		},
		{
			name:     "push data len 65536 (non-canonical)",
			data:     bytes.Repeat([]byte{0x49}, 65536),
			expected: append([]byte{OP_PUSHDATA4, 0, 0, 1, 0}, bytes.Repeat([]byte{0x49}, 65536)...),
			useFull:  true,
		},
	}

	builder := NewScriptBuilder()
	for _, test := range tests {
		if !test.useFull {
			builder.Reset().AddData(test.data)
		} else {
			builder.Reset().AddFullData(test.data)
		}
		result, _ := builder.Script()
		if !bytes.Equal(result, test.expected) {
			t.Errorf("ScriptBuilder.AddData (%s) wrong result\n"+
				"got: %x\nwant: %x", test.name, result, test.expected)
		}
	}
}

// TestExceedMaxScriptSize ensures that all of the functions that can be used
// to add data to a script don't allow the script to exceed the max allowed
// size.
func TestExceedMaxScriptSize(t *testing.T) {
	t.Parallel()

	// Start off by constructing a max size script.
	builder := NewScriptBuilder()
	builder.Reset().AddFullData(make([]byte, MaxScriptSize-3))
	origScript, err := builder.Script()
	require.NoError(t, err)
	require.Len(t, origScript, MaxScriptSize)

	additions := []struct {
		name string
		add  func(*ScriptBuilder)
	}{
		{"AddData", func(b *ScriptBuilder) { b.AddData([]byte{0x00}) }},
		{"AddOp", func(b *ScriptBuilder) { b.AddOp(OP_CHECKDIV) }},
		{"AddOps", func(b *ScriptBuilder) { b.AddOps([]byte{OP_1, OP_CHECKDIV}) }},
		{"AddInt64", func(b *ScriptBuilder) { b.AddInt64(35) }},
		{"AddBigInt", func(b *ScriptBuilder) { b.AddBigInt(big.NewInt(35)) }},
	}
	for _, addition := range additions {
		builder.Reset().AddFullData(make([]byte, MaxScriptSize-3))
		addition.add(builder)
		script, err := builder.Script()
		require.IsType(t, ErrScriptNotCanonical(""), err, addition.name)
		require.Equal(t, origScript, script, addition.name)
	}
}

// TestErroredScript ensures that all of the functions that can be used to add
// data to a script don't modify the script once an error has happened.
func TestErroredScript(t *testing.T) {
	t.Parallel()

	// Start off by constructing a near max size script that has enough
	// space left to add each data type without an error and force an
	// initial error condition.
	builder := NewScriptBuilder()
	builder.Reset().AddFullData(make([]byte, MaxScriptSize-8))
	origScript, err := builder.Script()
	require.NoError(t, err)

	script, err := builder.AddData([]byte{0x00, 0x00, 0x00, 0x00, 0x00}).Script()
	require.IsType(t, ErrScriptNotCanonical(""), err)
	require.Equal(t, origScript, script)

	// Ensure adding anything, even using the non-canonical path, to a
	// script that has errored doesn't succeed.
	builder.AddFullData([]byte{0x00})
	builder.AddData([]byte{0x00})
	builder.AddOp(OP_0)
	builder.AddOps([]byte{OP_0})
	builder.AddInt64(0)
	builder.AddBigInt(big.NewInt(35))
	script, err = builder.Script()
	require.IsType(t, ErrScriptNotCanonical(""), err)
	require.Equal(t, origScript, script)
	require.NotEmpty(t, err.Error())

	// Reset clears the error.
	script, err = builder.Reset().AddOp(OP_CHECKDIV).Script()
	require.NoError(t, err)
	require.Equal(t, []byte{OP_CHECKDIV}, script)
}
