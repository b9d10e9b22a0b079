// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
	divlog "github.com/divlock/divd/internal/log"
	"github.com/divlock/divd/txscript"
)

// errInvalidSpend is returned by the commands which verify scripts when the
// spend they were asked about is invalid.  The reason has already been
// written to the output by then.
var errInvalidSpend = errors.New("invalid spend")

// commandHandler executes a command with its already counted arguments and
// writes the result to w.
type commandHandler func(ctx context.Context, cfg *config, w io.Writer,
	args []string) error

// command describes a divscript command.
type command struct {
	usage   string
	minArgs int
	maxArgs int // -1 for no limit
	handler commandHandler
}

var commands = map[string]command{
	"lock": {
		usage:   "lock <n>  -- build the locking script committing to n",
		minArgs: 1, maxArgs: 1,
		handler: handleLock,
	},
	"claim": {
		usage:   "claim <p>  -- build the unlocking script claiming factor p",
		minArgs: 1, maxArgs: 1,
		handler: handleClaim,
	},
	"disasm": {
		usage:   "disasm <script>  -- disassemble a script",
		minArgs: 1, maxArgs: 1,
		handler: handleDisasm,
	},
	"verify": {
		usage:   "verify <sigscript> <pkscript>  -- execute a script pair",
		minArgs: 2, maxArgs: 2,
		handler: handleVerify,
	},
	"validatetx": {
		usage: "validatetx <rawtx> <prevpkscript>...  -- validate every " +
			"input of a serialized transaction",
		minArgs: 2, maxArgs: -1,
		handler: handleValidateTx,
	},
}

// commandsHelp returns the usage of every command, one per line.
func commandsHelp() string {
	names := []string{"lock", "claim", "disasm", "verify", "validatetx"}
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}
	b.WriteString("\nThe special parameter `-` indicates that a parameter " +
		"should be read from the\nnext unread line from standard input.")
	return b.String()
}

// runCommand resolves arguments read from stdin and executes the named
// command.
func runCommand(ctx context.Context, cfg *config, stdin io.Reader,
	w io.Writer, name string, args []string) error {

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unrecognized command %q", name)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return fmt.Errorf("wrong number of arguments -- usage: %s",
			cmd.usage)
	}

	// Large arguments such as raw transactions may be too long for a
	// command line, so '-' reads the argument from a stdin pipe.
	bio := bufio.NewReader(stdin)
	params := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "-" {
			params = append(params, arg)
			continue
		}

		param, err := bio.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read data from stdin: %w", err)
		}
		if err == io.EOF && len(param) == 0 {
			return errors.New("not enough lines provided on stdin")
		}
		params = append(params, strings.TrimRight(param, "\r\n"))
	}

	divlog.DivsLog.Debugf("Executing %s with %d arguments", name,
		len(params))
	return cmd.handler(ctx, cfg, w, params)
}

// parseScript decodes a script argument, which is hex unless short form was
// requested.
func parseScript(cfg *config, arg string) ([]byte, error) {
	if cfg.ShortForm {
		return txscript.ParseShortForm(arg)
	}
	script, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("script %q is not hex: %w", arg, err)
	}
	return script, nil
}

// parseInteger decodes a decimal or 0x prefixed hexadecimal integer.
func parseInteger(arg string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(arg, 0)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", arg)
	}
	return n, nil
}

// writeScript writes the hex encoding and disassembly of a script.
func writeScript(w io.Writer, script []byte) {
	disasm, _ := txscript.DisasmString(script)
	fmt.Fprintf(w, "hex:   %x\n", script)
	fmt.Fprintf(w, "asm:   %s\n", disasm)
}

func handleLock(ctx context.Context, cfg *config, w io.Writer,
	args []string) error {
	n, err := parseInteger(args[0])
	if err != nil {
		return err
	}
	script, err := txscript.DivisibilityPuzzleScript(n)
	if err != nil {
		return err
	}
	writeScript(w, script)
	fmt.Fprintf(w, "class: %s\n", txscript.GetScriptClass(script))
	return nil
}

func handleClaim(ctx context.Context, cfg *config, w io.Writer,
	args []string) error {
	p, err := parseInteger(args[0])
	if err != nil {
		return err
	}
	script, err := txscript.FactorClaimScript(p)
	if err != nil {
		return err
	}
	writeScript(w, script)
	return nil
}

func handleDisasm(ctx context.Context, cfg *config, w io.Writer,
	args []string) error {
	script, err := parseScript(cfg, args[0])
	if err != nil {
		return err
	}
	disasm, err := txscript.DisasmString(script)
	fmt.Fprintln(w, disasm)
	if err != nil {
		return err
	}

	class := txscript.GetScriptClass(script)
	if n, err := txscript.ExtractPuzzleCommitment(script); err == nil {
		fmt.Fprintf(w, "class: %s (n = %s)\n", class, n)
	} else {
		fmt.Fprintf(w, "class: %s\n", class)
	}
	return nil
}

func handleVerify(ctx context.Context, cfg *config, w io.Writer,
	args []string) error {
	sigScript, err := parseScript(cfg, args[0])
	if err != nil {
		return err
	}
	pkScript, err := parseScript(cfg, args[1])
	if err != nil {
		return err
	}

	vm, err := txscript.NewEngine(sigScript, pkScript, cfg.scriptFlags())
	if err == nil {
		err = vm.Execute()
	}
	if err != nil {
		fmt.Fprintf(w, "Invalid (%s): %v\n", txscript.ClassifyFailure(err),
			err)
		return errInvalidSpend
	}

	fmt.Fprintln(w, "Valid")
	return nil
}

func handleValidateTx(ctx context.Context, cfg *config, w io.Writer,
	args []string) error {
	serializedTx, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("transaction is not hex: %w", err)
	}
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(serializedTx)); err != nil {
		return fmt.Errorf("failed to deserialize transaction: %w", err)
	}
	divlog.DivsLog.Tracef("Transaction %v: %v", tx.TxHash(),
		spew.Sdump(&tx))

	// Previous output scripts are given in input order.
	pkScripts := args[1:]
	if len(pkScripts) != len(tx.TxIn) {
		return fmt.Errorf("transaction has %d inputs but %d previous "+
			"output scripts were given", len(tx.TxIn), len(pkScripts))
	}

	// Each previous output is keyed by its outpoint, so a transaction
	// spending the same outpoint twice can't be matched to its scripts.
	existingTxOut := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, txIn := range tx.TxIn {
		if _, exists := existingTxOut[txIn.PreviousOutPoint]; exists {
			return fmt.Errorf("transaction contains duplicate input %v",
				txIn.PreviousOutPoint)
		}
		existingTxOut[txIn.PreviousOutPoint] = struct{}{}
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range tx.TxIn {
		pkScript, err := parseScript(cfg, pkScripts[i])
		if err != nil {
			return err
		}
		fetcher.AddPrevOut(txIn.PreviousOutPoint,
			wire.NewTxOut(0, pkScript))
	}

	err = txscript.ValidateTransactionScripts(ctx, &tx, fetcher,
		cfg.scriptFlags(), nil)
	if err != nil {
		var inputErr *txscript.InputError
		if !errors.As(err, &inputErr) {
			return err
		}
		fmt.Fprintf(w, "Invalid: input %d (%s): %v\n", inputErr.Index,
			inputErr.Kind(), inputErr.Err)
		return errInvalidSpend
	}

	fmt.Fprintf(w, "Valid: %d inputs of %v\n", len(tx.TxIn), tx.TxHash())
	return nil
}
