// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStack tests that all of the stack operations work as expected.
func TestStack(t *testing.T) {
	t.Parallel()

	errUnderflow := scriptError(ErrInvalidStackOperation, "")

	tests := []struct {
		name      string
		before    [][]byte
		minimal   bool
		operation func(*stack) error
		err       error
		after     [][]byte
	}{
		{
			"noop",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			false,
			func(s *stack) error {
				return nil
			},
			nil,
			[][]byte{{1}, {2}, {3}, {4}, {5}},
		},
		{
			"peek underflow (byte)",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			false,
			func(s *stack) error {
				_, err := s.PeekByteArray(5)
				return err
			},
			errUnderflow,
			nil,
		},
		{
			"peek underflow (int)",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			false,
			func(s *stack) error {
				_, err := s.PeekInt(5)
				return err
			},
			errUnderflow,
			nil,
		},
		{
			"peek underflow (bool)",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			false,
			func(s *stack) error {
				_, err := s.PeekBool(5)
				return err
			},
			errUnderflow,
			nil,
		},
		{
			"pop",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			false,
			func(s *stack) error {
				val, err := s.PopByteArray()
				if err != nil {
					return err
				}
				if !bytes.Equal(val, []byte{5}) {
					return errors.New("not equal")
				}
				return err
			},
			nil,
			[][]byte{{1}, {2}, {3}, {4}},
		},
		{
			"pop everything",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			false,
			func(s *stack) error {
				for i := 0; i < 5; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				return nil
			},
			nil,
			nil,
		},
		{
			"pop underflow",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			false,
			func(s *stack) error {
				for i := 0; i < 6; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				return nil
			},
			errUnderflow,
			nil,
		},
		{
			"pop bool",
			[][]byte{nil},
			false,
			func(s *stack) error {
				val, err := s.PopBool()
				if err != nil {
					return err
				}
				if val {
					return errors.New("unexpected value")
				}
				return nil
			},
			nil,
			nil,
		},
		{
			"pop bool negative zero",
			[][]byte{{0x00, 0x00, 0x80}},
			false,
			func(s *stack) error {
				val, err := s.PopBool()
				if err != nil {
					return err
				}
				if val {
					return errors.New("unexpected value")
				}
				return nil
			},
			nil,
			nil,
		},
		{
			"pop int",
			[][]byte{{0x23}},
			true,
			func(s *stack) error {
				v, err := s.PopInt()
				if err != nil {
					return err
				}
				if v.Cmp(ScriptNumFromInt64(35)) != 0 {
					return errors.New("invalid result")
				}
				return nil
			},
			nil,
			nil,
		},
		{
			"pop int non-minimal",
			[][]byte{{0x23, 0x00}},
			true,
			func(s *stack) error {
				_, err := s.PopInt()
				return err
			},
			scriptError(ErrMinimalData, ""),
			nil,
		},
		{
			"pop int non-minimal allowed",
			[][]byte{{0x23, 0x00}},
			false,
			func(s *stack) error {
				v, err := s.PopInt()
				if err != nil {
					return err
				}
				if v.Cmp(ScriptNumFromInt64(35)) != 0 {
					return errors.New("invalid result")
				}
				return nil
			},
			nil,
			nil,
		},
		{
			"pop int too big",
			[][]byte{{1, 2, 3, 4, 5}},
			false,
			func(s *stack) error {
				_, err := s.PopInt()
				return err
			},
			scriptError(ErrNumberTooBig, ""),
			nil,
		},
		{
			"push int",
			nil,
			false,
			func(s *stack) error {
				if err := s.PushInt(ScriptNumFromInt64(-128)); err != nil {
					return err
				}
				return s.PushInt(ScriptNum{})
			},
			nil,
			[][]byte{{0x80, 0x80}, nil},
		},
		{
			"push bool",
			nil,
			false,
			func(s *stack) error {
				if err := s.PushBool(true); err != nil {
					return err
				}
				return s.PushBool(false)
			},
			nil,
			[][]byte{{1}, nil},
		},
		{
			"nip middle",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.NipN(1)
			},
			nil,
			[][]byte{{1}, {3}},
		},
		{
			"nip bottom",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.NipN(2)
			},
			nil,
			[][]byte{{2}, {3}},
		},
		{
			"nip too far",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.NipN(3)
			},
			errUnderflow,
			nil,
		},
		{
			"tuck",
			[][]byte{{1}, {2}},
			false,
			func(s *stack) error {
				return s.Tuck()
			},
			nil,
			[][]byte{{2}, {1}, {2}},
		},
		{
			"tuck underflow",
			[][]byte{{1}},
			false,
			func(s *stack) error {
				return s.Tuck()
			},
			errUnderflow,
			nil,
		},
		{
			"drop 2",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.DropN(2)
			},
			nil,
			[][]byte{{1}},
		},
		{
			"drop too many",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.DropN(4)
			},
			errUnderflow,
			nil,
		},
		{
			"drop 0",
			[][]byte{{1}},
			false,
			func(s *stack) error {
				return s.DropN(0)
			},
			errUnderflow,
			nil,
		},
		{
			"dup 2",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.DupN(2)
			},
			nil,
			[][]byte{{1}, {2}, {3}, {2}, {3}},
		},
		{
			"dup underflow",
			[][]byte{{1}},
			false,
			func(s *stack) error {
				return s.DupN(2)
			},
			errUnderflow,
			nil,
		},
		{
			"rot 1",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.RotN(1)
			},
			nil,
			[][]byte{{2}, {3}, {1}},
		},
		{
			"rot 2",
			[][]byte{{1}, {2}, {3}, {4}, {5}, {6}},
			false,
			func(s *stack) error {
				return s.RotN(2)
			},
			nil,
			[][]byte{{3}, {4}, {5}, {6}, {1}, {2}},
		},
		{
			"swap 1",
			[][]byte{{1}, {2}},
			false,
			func(s *stack) error {
				return s.SwapN(1)
			},
			nil,
			[][]byte{{2}, {1}},
		},
		{
			"swap 2",
			[][]byte{{1}, {2}, {3}, {4}},
			false,
			func(s *stack) error {
				return s.SwapN(2)
			},
			nil,
			[][]byte{{3}, {4}, {1}, {2}},
		},
		{
			"over 1",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.OverN(1)
			},
			nil,
			[][]byte{{1}, {2}, {3}, {2}},
		},
		{
			"over 2",
			[][]byte{{1}, {2}, {3}, {4}},
			false,
			func(s *stack) error {
				return s.OverN(2)
			},
			nil,
			[][]byte{{1}, {2}, {3}, {4}, {1}, {2}},
		},
		{
			"pick 2",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.PickN(2)
			},
			nil,
			[][]byte{{1}, {2}, {3}, {1}},
		},
		{
			"roll 2",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.RollN(2)
			},
			nil,
			[][]byte{{2}, {3}, {1}},
		},
		{
			"roll 0",
			[][]byte{{1}, {2}, {3}},
			false,
			func(s *stack) error {
				return s.RollN(0)
			},
			nil,
			[][]byte{{1}, {2}, {3}},
		},
	}

	for _, test := range tests {
		s := stack{verifyMinimalData: test.minimal}
		for i := range test.before {
			require.NoError(t, s.PushByteArray(test.before[i]))
		}

		err := test.operation(&s)
		if e := tstCheckScriptError(err, test.err); e != nil {
			t.Errorf("%s: %v", test.name, e)
			continue
		}
		if err != nil {
			continue
		}

		got := getStack(&s)
		if len(got) != len(test.after) {
			t.Errorf("%s: stack depth doesn't match expected: %d "+
				"vs %d", test.name, len(got), len(test.after))
			continue
		}
		for i := range test.after {
			if !bytes.Equal(got[i], test.after[i]) {
				t.Errorf("%s: %dth stack entry doesn't match "+
					"expected: %x vs %x", test.name, i, got[i],
					test.after[i])
				break
			}
		}
	}
}

// TestAsBool ensures the boolean interpretation of stack items treats every
// form of zero, including negative zero, as false.
func TestAsBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []byte
		want bool
	}{
		{nil, false},
		{[]byte{}, false},
		{[]byte{0x00}, false},
		{[]byte{0x00, 0x00}, false},
		{[]byte{0x80}, false},
		{[]byte{0x00, 0x80}, false},
		{[]byte{0x01}, true},
		{[]byte{0x80, 0x00}, true},
		{[]byte{0x00, 0x81}, true},
		{[]byte{0x81}, true},
	}

	for _, test := range tests {
		require.Equal(t, test.want, asBool(test.in), "%x", test.in)
	}
	require.True(t, asBool(fromBool(true)))
	require.False(t, asBool(fromBool(false)))
}

// TestStackLimits ensures pushes which would breach the element size or the
// combined depth limit fail without modifying either stack.
func TestStackLimits(t *testing.T) {
	t.Parallel()

	var dstack, astack stack
	dstack.maxDepth, dstack.sibling = 4, &astack
	astack.maxDepth, astack.sibling = 4, &dstack

	// An element at the size limit is allowed while one past it is not.
	require.NoError(t, dstack.PushByteArray(make([]byte, MaxScriptElementSize)))
	err := dstack.PushByteArray(make([]byte, MaxScriptElementSize+1))
	require.True(t, IsErrorCode(err, ErrElementTooBig), "got %v", err)
	require.EqualValues(t, 1, dstack.Depth())

	// Fill the combined depth across both stacks.
	require.NoError(t, dstack.PushBool(true))
	require.NoError(t, astack.PushBool(true))
	require.NoError(t, astack.PushBool(false))

	for _, push := range []func() error{
		func() error { return dstack.PushBool(true) },
		func() error { return astack.PushInt(ScriptNumFromInt64(1)) },
		func() error { return dstack.DupN(1) },
		func() error { return dstack.PickN(0) },
		func() error { return dstack.OverN(1) },
		func() error { return dstack.Tuck() },
	} {
		err := push()
		require.True(t, IsErrorCode(err, ErrStackOverflow), "got %v", err)
		require.Equal(t, FailureResourceLimitExceeded, ClassifyFailure(err))
		require.EqualValues(t, 2, dstack.Depth())
		require.EqualValues(t, 2, astack.Depth())
	}

	// Moving an item between the stacks keeps the combined depth.
	item, err := dstack.PopByteArray()
	require.NoError(t, err)
	require.NoError(t, astack.PushByteArray(item))

	// A stack without a limit accepts anything.
	var unbounded stack
	for i := 0; i < MaxStackSize+1; i++ {
		require.NoError(t, unbounded.PushByteArray(nil))
	}
	require.NoError(t, unbounded.PushByteArray(
		make([]byte, MaxScriptElementSize+1)))
}

// TestStackMultiPushLimits ensures operations pushing several items fail
// without adding any of them when the full result would breach the depth
// limit.
func TestStackMultiPushLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   func(s *stack) error
	}{
		{name: "dup two", op: func(s *stack) error { return s.DupN(2) }},
		{name: "dup three", op: func(s *stack) error { return s.DupN(3) }},
		{name: "over two", op: func(s *stack) error { return s.OverN(2) }},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var dstack, astack stack
			dstack.maxDepth, dstack.sibling = 5, &astack
			astack.maxDepth, astack.sibling = 5, &dstack
			for i := int64(1); i <= 4; i++ {
				err := dstack.PushInt(ScriptNumFromInt64(i))
				require.NoError(t, err)
			}
			before := append([][]byte(nil), dstack.stk...)

			err := test.op(&dstack)
			require.True(t, IsErrorCode(err, ErrStackOverflow), "got %v", err)
			require.Equal(t, before, dstack.stk)
		})
	}

	// Room for the whole result lets the operation through.
	var s stack
	s.maxDepth = 6
	require.NoError(t, s.PushBool(true))
	require.NoError(t, s.PushBool(false))
	require.NoError(t, s.DupN(2))
	require.NoError(t, s.OverN(1))
	require.EqualValues(t, 5, s.Depth())
	err := s.DupN(2)
	require.True(t, IsErrorCode(err, ErrStackOverflow), "got %v", err)
	require.EqualValues(t, 5, s.Depth())
}

// TestStackString ensures the stack dump marks empty items.
func TestStackString(t *testing.T) {
	t.Parallel()

	var s stack
	require.NoError(t, s.PushBool(false))
	require.NoError(t, s.PushByteArray([]byte{0xca, 0xfe}))

	want := "00000000  <empty>\n" + hex.Dump([]byte{0xca, 0xfe})
	require.Equal(t, want, s.String())
}
