// Package sigctx ties a context to the process termination signals.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// NotifyContext returns a copy of parent that is cancelled
// on the first of [Signals].
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
