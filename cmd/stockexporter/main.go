package main

import (
	"context"
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

	core := app.NewCore(sigCtx, config.Load())

	err := export(sigCtx, core, path)

	ctx, cancelClose := context.WithTimeout(context.Background(), closeTimeout)
	defer cancelClose()
	core.Close(ctx)

	if err != nil {
		slog.Error("failed to export stock", "file", path, "err", err)
		os.Exit(2)
	}
}

func export(ctx context.Context, core *app.App, path string) error {
	records, err := core.Service().StockReport(ctx)
	if err != nil {
		return err
	}
	if err := jsonfile.WriteStockReport(path, records); err != nil {
		return err
	}
	slog.Info("stock exported", "file", path, "records", len(records))
	return nil
}

func getFileFlag() string {
	path := pflag.StringP(fileFlag, "f", "stock_balances.json", "output JSON file")
	_ = pflag.String("config", "/config.yaml", "config file")
	pflag.Parse()
	return *path
}
