// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/divlock/divd/txscript"
	"github.com/stretchr/testify/require"
)

// serializedPuzzleTx returns the hex of a transaction with one input per
// claim along with the hex locking scripts of the outputs they spend.
func serializedPuzzleTx(t *testing.T, n int64, claims ...int64) (string, []string) {
	t.Helper()

	pkScript, err := txscript.DivisibilityPuzzleScript(big.NewInt(n))
	require.NoError(t, err)

	tx := wire.NewMsgTx(wire.TxVersion)
	var pkScripts []string
	for i, p := range claims {
		sigScript, err := txscript.FactorClaimScript(big.NewInt(p))
		require.NoError(t, err)
		prevOut := wire.NewOutPoint(&chainhash.Hash{byte(i + 1)}, uint32(i))
		tx.AddTxIn(wire.NewTxIn(prevOut, sigScript, nil))
		pkScripts = append(pkScripts, hex.EncodeToString(pkScript))
	}
	tx.AddTxOut(wire.NewTxOut(1000, nil))

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return hex.EncodeToString(buf.Bytes()), pkScripts
}

// TestCommands ensures each command produces the expected output.
func TestCommands(t *testing.T) {
	t.Parallel()

	rawTx, pkScripts := serializedPuzzleTx(t, 35, 5, 7)
	badTx, badPkScripts := serializedPuzzleTx(t, 35, 5, 3)

	tests := []struct {
		name       string
		cfg        config
		stdin      string
		args       []string
		wantOut    []string
		wantErr    bool
		wantFailed bool // spend reported invalid
	}{
		{
			name:    "lock",
			args:    []string{"lock", "35"},
			wantOut: []string{"hex:   0123bb", "asm:   23 OP_CHECKDIV", "class: divisibilitypuzzle"},
		},
		{
			name:    "lock hex value",
			args:    []string{"lock", "0x23"},
			wantOut: []string{"hex:   0123bb"},
		},
		{
			name:    "lock not a number",
			args:    []string{"lock", "thirty five"},
			wantErr: true,
		},
		{
			name:    "claim",
			args:    []string{"claim", "-7"},
			wantOut: []string{"hex:   0187", "asm:   87"},
		},
		{
			name:    "disasm puzzle",
			args:    []string{"disasm", "0123bb"},
			wantOut: []string{"23 OP_CHECKDIV", "class: divisibilitypuzzle (n = 35)"},
		},
		{
			name:    "disasm short form",
			cfg:     config{ShortForm: true},
			args:    []string{"disasm", "5 NOP"},
			wantOut: []string{"5 OP_NOP", "class: nonstandard"},
		},
		{
			name:    "disasm malformed",
			args:    []string{"disasm", "4c"},
			wantOut: []string{"[error]"},
			wantErr: true,
		},
		{
			name:    "disasm not hex",
			args:    []string{"disasm", "zz"},
			wantErr: true,
		},
		{
			name:    "verify valid",
			args:    []string{"verify", "55", "0123bb"},
			wantOut: []string{"Valid"},
		},
		{
			name:    "verify short form standard",
			cfg:     config{ShortForm: true, Standard: true},
			args:    []string{"verify", "7", "35 CHECKDIV"},
			wantOut: []string{"Valid"},
		},
		{
			name:       "verify wrong claim",
			cfg:        config{ShortForm: true},
			args:       []string{"verify", "3", "35 CHECKDIV"},
			wantOut:    []string{"Invalid (PredicateUnsatisfied)"},
			wantFailed: true,
		},
		{
			name:       "verify underflow",
			cfg:        config{ShortForm: true},
			args:       []string{"verify", "", "CHECKDIV"},
			wantOut:    []string{"Invalid (StackUnderflow)"},
			wantFailed: true,
		},
		{
			name:       "verify non-minimal claim",
			args:       []string{"verify", "020500", "0123bb"},
			wantOut:    []string{"Invalid (InvalidEncoding)"},
			wantFailed: true,
		},
		{
			name:       "verify non-push claim under standard flags",
			cfg:        config{ShortForm: true, Standard: true},
			args:       []string{"verify", "5 NOP", "35 CHECKDIV"},
			wantOut:    []string{"Invalid (MalformedScript)"},
			wantFailed: true,
		},
		{
			name:    "validatetx valid",
			args:    append([]string{"validatetx", rawTx}, pkScripts...),
			wantOut: []string{"Valid: 2 inputs"},
		},
		{
			name:    "validatetx from stdin",
			stdin:   rawTx + "\n",
			args:    append([]string{"validatetx", "-"}, pkScripts...),
			wantOut: []string{"Valid: 2 inputs"},
		},
		{
			name:       "validatetx invalid input",
			args:       append([]string{"validatetx", badTx}, badPkScripts...),
			wantOut:    []string{"Invalid: input 1 (PredicateUnsatisfied)"},
			wantFailed: true,
		},
		{
			name:    "validatetx missing scripts",
			args:    []string{"validatetx", rawTx, pkScripts[0]},
			wantErr: true,
		},
		{
			name:    "validatetx truncated",
			args:    []string{"validatetx", rawTx[:20], pkScripts[0]},
			wantErr: true,
		},
		{
			name:    "stdin exhausted",
			args:    []string{"disasm", "-"},
			wantErr: true,
		},
		{
			name:    "unknown command",
			args:    []string{"factor", "35"},
			wantErr: true,
		},
		{
			name:    "too many arguments",
			args:    []string{"lock", "35", "36"},
			wantErr: true,
		},
	}

	for _, test := range tests {
		var out bytes.Buffer
		cfg := test.cfg
		err := runCommand(context.Background(), &cfg,
			strings.NewReader(test.stdin), &out, test.args[0],
			test.args[1:])
		switch {
		case test.wantFailed:
			require.ErrorIs(t, err, errInvalidSpend, test.name)
		case test.wantErr:
			require.Error(t, err, test.name)
			require.NotErrorIs(t, err, errInvalidSpend, test.name)
		default:
			require.NoError(t, err, test.name)
		}
		for _, want := range test.wantOut {
			require.Contains(t, out.String(), want, test.name)
		}
	}
}

// TestValidateTxDuplicateInputs ensures a transaction spending the same
// outpoint twice is rejected before any input is checked against the wrong
// previous output script.
func TestValidateTxDuplicateInputs(t *testing.T) {
	t.Parallel()

	pkScript35, err := txscript.DivisibilityPuzzleScript(big.NewInt(35))
	require.NoError(t, err)
	pkScript36, err := txscript.DivisibilityPuzzleScript(big.NewInt(36))
	require.NoError(t, err)
	claim5, err := txscript.FactorClaimScript(big.NewInt(5))
	require.NoError(t, err)
	claim2, err := txscript.FactorClaimScript(big.NewInt(2))
	require.NoError(t, err)

	prevOut := wire.NewOutPoint(&chainhash.Hash{0x01}, 0)
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(prevOut, claim5, nil))
	tx.AddTxIn(wire.NewTxIn(prevOut, claim2, nil))
	tx.AddTxOut(wire.NewTxOut(1000, nil))
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))

	var out bytes.Buffer
	err = runCommand(context.Background(), &config{}, strings.NewReader(""),
		&out, "validatetx", []string{hex.EncodeToString(buf.Bytes()),
			hex.EncodeToString(pkScript35), hex.EncodeToString(pkScript36)})
	require.Error(t, err)
	require.NotErrorIs(t, err, errInvalidSpend)
	require.Contains(t, err.Error(), "duplicate input")
	require.Empty(t, out.String())

	// Distinct outpoints with the same scripts validate.
	tx.TxIn[1].PreviousOutPoint.Index = 1
	buf.Reset()
	require.NoError(t, tx.Serialize(&buf))
	err = runCommand(context.Background(), &config{}, strings.NewReader(""),
		&out, "validatetx", []string{hex.EncodeToString(buf.Bytes()),
			hex.EncodeToString(pkScript35), hex.EncodeToString(pkScript36)})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Valid: 2 inputs")
}

// TestParseAndSetDebugLevels ensures debug level strings are validated.
func TestParseAndSetDebugLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"info", true},
		{"trace", true},
		{"DIVS=debug,SCRP=trace", true},
		{"SCRP=warn", true},
		{"verbose", false},
		{"SCRP", false},
		{"SCRP=verbose", false},
		{"PEER=info", false},
		{"DIVS=info,", false},
	}

	for _, test := range tests {
		err := parseAndSetDebugLevels(test.level)
		if test.valid {
			require.NoError(t, err, test.level)
			continue
		}
		require.Error(t, err, test.level)
	}
	require.NoError(t, parseAndSetDebugLevels(defaultDebugLevel))
}

// TestLoadConfig ensures command line options are parsed and the command and
// its arguments are returned.
func TestLoadConfig(t *testing.T) {
	cfg, args, err := loadConfig([]string{"--standard", "--shortform",
		"--logdir=/tmp/divscript", "verify", "5", "35 CHECKDIV"})
	require.NoError(t, err)
	require.True(t, cfg.Standard)
	require.True(t, cfg.ShortForm)
	require.Equal(t, "/tmp/divscript", cfg.LogDir)
	require.Equal(t, txscript.StandardVerifyFlags, cfg.scriptFlags())
	require.Equal(t, []string{"verify", "5", "35 CHECKDIV"}, args)

	cfg, _, err = loadConfig(nil)
	require.NoError(t, err)
	require.Equal(t, txscript.ScriptFlags(0), cfg.scriptFlags())
	require.Equal(t, defaultLogDir, cfg.LogDir)

	_, _, err = loadConfig([]string{"--debuglevel=verbose"})
	require.Error(t, err)

	_, _, err = loadConfig([]string{"--nosuchflag"})
	require.Error(t, err)
}
