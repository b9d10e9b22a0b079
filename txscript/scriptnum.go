// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math"
	"math/big"
)

const (
	// defaultScriptNumLen is the default number of bytes data being
	// interpreted as an integer may be for the ordinary arithmetic opcodes.
	defaultScriptNumLen = 4

	// MaxCheckDivNumLen is the maximum number of bytes either operand of
	// OP_CHECKDIV may be encoded with.  It bounds the cost of the remainder
	// computation regardless of the committed value.
	MaxCheckDivNumLen = MaxScriptElementSize
)

// bigZero is the zero value used wherever a ScriptNum carries no integer.  It
// MUST NOT be modified.
var bigZero = new(big.Int)

// ScriptNum represents a numeric value used in the scripting engine with
// special handling to deal with the subtle semantics required by consensus.
//
// All numbers are stored on the data and alternate stacks encoded as little
// endian with a sign bit.  The ordinary numeric opcodes such as OP_ADD and
// OP_SUB only accept 4-byte operands, while OP_CHECKDIV accepts operands up
// to MaxCheckDivNumLen bytes.  The results of numeric operations may exceed
// the 4-byte range and remain valid so long as they are not used as inputs to
// other numeric operations or otherwise interpreted as an integer.
//
// The value is held as an arbitrary-precision integer so no operation can
// silently wrap.  Whenever data is interpreted as an integer, it is converted
// to this type by using MakeScriptNum which will return an error if the
// number is out of range or not minimally encoded depending on parameters.
//
// The zero value is 0 and ready to use.  A ScriptNum is immutable; every
// arithmetic method returns a new value.
type ScriptNum struct {
	v *big.Int
}

// ScriptNumFromInt64 returns the ScriptNum for the passed integer.
func ScriptNumFromInt64(v int64) ScriptNum {
	return ScriptNum{v: big.NewInt(v)}
}

// NewScriptNum returns a ScriptNum holding a copy of the passed integer.  A
// nil integer is treated as zero.
func NewScriptNum(v *big.Int) ScriptNum {
	if v == nil {
		return ScriptNum{}
	}
	return ScriptNum{v: new(big.Int).Set(v)}
}

// int returns the underlying integer, or zero for the zero value.  The result
// MUST NOT be modified.
func (n ScriptNum) int() *big.Int {
	if n.v == nil {
		return bigZero
	}
	return n.v
}

// BigInt returns a copy of the number as a big integer.
func (n ScriptNum) BigInt() *big.Int {
	return new(big.Int).Set(n.int())
}

// Sign returns -1, 0, or +1 depending on the sign of the number.
func (n ScriptNum) Sign() int {
	return n.int().Sign()
}

// Cmp compares n and o and returns -1, 0 or +1.
func (n ScriptNum) Cmp(o ScriptNum) int {
	return n.int().Cmp(o.int())
}

// Add returns n + o.
func (n ScriptNum) Add(o ScriptNum) ScriptNum {
	return ScriptNum{v: new(big.Int).Add(n.int(), o.int())}
}

// Sub returns n - o.
func (n ScriptNum) Sub(o ScriptNum) ScriptNum {
	return ScriptNum{v: new(big.Int).Sub(n.int(), o.int())}
}

// Neg returns -n.
func (n ScriptNum) Neg() ScriptNum {
	return ScriptNum{v: new(big.Int).Neg(n.int())}
}

// Abs returns |n|.
func (n ScriptNum) Abs() ScriptNum {
	return ScriptNum{v: new(big.Int).Abs(n.int())}
}

// String returns the number in base 10.
func (n ScriptNum) String() string {
	return n.int().String()
}

// checkMinimalDataEncoding returns whether or not the passed byte array adheres
// to the minimal encoding requirements.
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// Check that the number is encoded with the minimum possible
	// number of bytes.
	//
	// If the most-significant-byte - excluding the sign bit - is zero
	// then we're not minimal.  Note how this test also rejects the
	// negative-zero encoding, [0x80].
	if v[len(v)-1]&0x7f == 0 {
		// One exception: if there's more than one byte and the most
		// significant bit of the second-most-significant-byte is set
		// it would conflict with the sign bit.  An example of this case
		// is +-255, which encode to 0xff00 and 0xff80 respectively.
		// (big-endian).
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			str := fmt.Sprintf("numeric value encoded as %x is "+
				"not minimally encoded", v)
			return scriptError(ErrMinimalData, str)
		}
	}

	return nil
}

// Bytes returns the number serialized as a little endian with a sign bit.
//
// Example encodings:
//
//	   127 -> [0x7f]
//	  -127 -> [0xff]
//	   128 -> [0x80 0x00]
//	  -128 -> [0x80 0x80]
//	   129 -> [0x81 0x00]
//	  -129 -> [0x81 0x80]
//	   256 -> [0x00 0x01]
//	  -256 -> [0x00 0x81]
//	 32767 -> [0xff 0x7f]
//	-32767 -> [0xff 0xff]
//	 32768 -> [0x00 0x80 0x00]
//	-32768 -> [0x00 0x80 0x80]
func (n ScriptNum) Bytes() []byte {
	v := n.int()

	// Zero encodes as an empty byte slice.
	if v.Sign() == 0 {
		return nil
	}

	// big.Int serializes the magnitude big endian without leading zeros, so
	// reversing it gives the minimal little endian magnitude.
	mag := v.Bytes()
	result := make([]byte, len(mag), len(mag)+1)
	for i, b := range mag {
		result[len(mag)-1-i] = b
	}

	// When the most significant byte already has the high bit set, an
	// additional high byte is required to indicate whether the number is
	// negative or positive.  The additional byte is removed when converting
	// back to an integral and its high bit is used to denote the sign.
	//
	// Otherwise, when the most significant byte does not already have the
	// high bit set, use it to indicate the value is negative, if needed.
	isNegative := v.Sign() < 0
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)

	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 returns the script number clamped to a valid int32.  That is to say
// when the script number is higher than the max allowed int32, the max int32
// value is returned and vice versa for the minimum value.  Note that this
// behavior is different from a simple int32 cast because that truncates
// and the consensus rules dictate numbers which are directly cast to ints
// provide this behavior.
//
// In practice, for most opcodes, the number should never be out of range since
// it will have been created with MakeScriptNum using the defaultScriptLen
// value, which rejects them.  In case something in the future ends up calling
// this function against the result of some arithmetic, which IS allowed to be
// out of range before being reinterpreted as an integer, this will provide the
// correct behavior.
func (n ScriptNum) Int32() int32 {
	v := n.int()
	if !v.IsInt64() {
		if v.Sign() > 0 {
			return math.MaxInt32
		}
		return math.MinInt32
	}

	i := v.Int64()
	if i > math.MaxInt32 {
		return math.MaxInt32
	}
	if i < math.MinInt32 {
		return math.MinInt32
	}
	return int32(i)
}

// MakeScriptNum interprets the passed serialized bytes as an encoded integer
// and returns the result as a script number.
//
// Since the consensus rules dictate that serialized bytes interpreted as ints
// are only allowed to be in a bounded range, an error will be returned when
// the provided bytes would result in a number outside of that range.  The
// bound is expressed as a number of bytes because it is what limits the cost
// of any operation performed on the result.
//
// The requireMinimal flag causes an error to be returned if additional checks
// on the encoding determine it is not represented with the smallest possible
// number of bytes or is the negative 0 encoding, [0x80].  For example, consider
// the number 127.  It could be encoded as [0x7f], [0x7f 0x00],
// [0x7f 0x00 0x00 ...], etc.  All forms except [0x7f] will return an error
// with requireMinimal enabled.  When it is enabled, decoding and re-encoding
// always round trips to the exact input bytes.
//
// The scriptNumLen is the maximum number of bytes the encoded value can be
// before an ErrNumberTooBig is returned.  This effectively limits the range of
// allowed values.
//
// WARNING:  Great care should be taken if passing a value larger than
// MaxCheckDivNumLen as it could lead to addition and remainder operations
// whose cost is no longer bounded by the script limits.
func MakeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (ScriptNum, error) {
	// Interpreting data requires that it is not larger than the passed
	// scriptNumLen value.
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v),
			scriptNumLen)
		return ScriptNum{}, scriptError(ErrNumberTooBig, str)
	}

	// Enforce minimal encoded if requested.
	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return ScriptNum{}, err
		}
	}

	// Zero is encoded as an empty byte slice.
	if len(v) == 0 {
		return ScriptNum{}, nil
	}

	// Reverse into a big endian copy since stack items are immutable and
	// strip the sign bit from the most significant byte.
	be := make([]byte, len(v))
	for i, b := range v {
		be[len(v)-1-i] = b
	}
	isNegative := be[0]&0x80 != 0
	be[0] &= 0x7f

	result := new(big.Int).SetBytes(be)
	if isNegative {
		result.Neg(result)
	}
	return ScriptNum{v: result}, nil
}
