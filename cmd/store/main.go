package main

import (
	"context"
	"time"

	"github.com/niksmo/online-store/config"
	"github.com/niksmo/online-store/internal/app"
	"github.com/niksmo/online-store/pkg/sigctx"
)

const closeTimeout = 10 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext(context.Background())
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	store := app.New(sigCtx, cfg)

	store.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	store.Close(ctx)
}
