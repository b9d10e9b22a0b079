// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"

	divlog "github.com/divlock/divd/internal/log"
)

// interruptSignals defines the default signals to catch in order to do a proper
// shutdown.  This may be modified during init depending on the platform.
var interruptSignals = []os.Signal{os.Interrupt}

// interruptListener returns a context derived from parent that is canceled
// when a SIGINT (Ctrl+C) is received.  The returned function releases the
// listener.
func interruptListener(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)
		defer signal.Stop(interruptChannel)

		select {
		case sig := <-interruptChannel:
			divlog.DivsLog.Infof("Received signal (%s).  Shutting down...",
				sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
