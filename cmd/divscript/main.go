// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	divlog "github.com/divlock/divd/internal/log"
	"github.com/divlock/divd/internal/version"
)

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Load configuration and parse command line.
	cfg, args, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		fmt.Println(appName, "version", version.String())
		return nil
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables write to the log file as well.
	err = divlog.InitLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer divlog.CloseLogRotator()

	if len(args) < 1 {
		err := errors.New("no command specified")
		fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, commandsHelp())
		return err
	}

	// Validation stops early on an interrupt signal.
	ctx, cancel := interruptListener(context.Background())
	defer cancel()

	err = runCommand(ctx, cfg, os.Stdin, os.Stdout, args[0], args[1:])
	if err != nil && !errors.Is(err, errInvalidSpend) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
	}
	return err
}

func main() {
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
