package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/online-store/config"
	"github.com/niksmo/online-store/internal/adapter/jsonfile"
	"github.com/niksmo/online-store/internal/app"
	"github.com/niksmo/online-store/pkg/sigctx"
	"github.com/spf13/pflag"
)

const (
	fileFlag     = "file"
	closeTimeout = 5 * time.Second
)

func main() {
	sigCtx, cancel := sigctx.NotifyContext(context.Background())
	defer cancel()

	path := getFileFlag()

	records, err := jsonfile.ReadGoods(path)
	if err != nil {
		fallDown(err)
	}

	core := app.NewCore(sigCtx, config.Load())

	n, err := core.Service().LoadGoods(sigCtx, records)

	ctx, cancelClose := context.WithTimeout(context.Background(), closeTimeout)
	defer cancelClose()
	core.Close(ctx)

	if err != nil {
		slog.Error("failed to load goods", "file", path, "err", err)
		os.Exit(2)
	}
	slog.Info("goods loaded", "file", path, "records", n)
}

func getFileFlag() string {
	path := pflag.StringP(fileFlag, "f", "products_data.json", "goods JSON file")
	_ = pflag.String("config", "/config.yaml", "config file")
	pflag.Parse()
	return *path
}

func fallDown(err error) {
	fmt.Printf("failed to read goods: %v\n", err)
	os.Exit(2)
}
