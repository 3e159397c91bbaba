package sigctx_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/niksmo/online-store/pkg/sigctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyContext(t *testing.T) {
	t.Run("Signal", func(t *testing.T) {
		ctx, stop := sigctx.NotifyContext(context.Background())
		defer stop()

		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context is not cancelled by SIGTERM")
		}
	})

	t.Run("Parent", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := sigctx.NotifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
