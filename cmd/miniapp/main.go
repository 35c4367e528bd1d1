package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/petalworks/shop-miniapp/internal/analytics"
	"github.com/petalworks/shop-miniapp/internal/app"
	"github.com/petalworks/shop-miniapp/internal/cart"
	"github.com/petalworks/shop-miniapp/internal/catalog"
	"github.com/petalworks/shop-miniapp/internal/checkout"
	"github.com/petalworks/shop-miniapp/internal/gateway"
	"github.com/petalworks/shop-miniapp/internal/hostbridge"
	"github.com/petalworks/shop-miniapp/internal/orders"
	"github.com/petalworks/shop-miniapp/pkg/config"
	"github.com/petalworks/shop-miniapp/pkg/logger"
	"github.com/petalworks/shop-miniapp/pkg/metrics"
)

// The miniapp binary runs the client headless: it wires the full stack
// against a real backend with the no-op host bridge, performs the initial
// load, and prints a catalog summary. Embedding runtimes build the same
// wiring with a live hostbridge.Funcs instead.
func main() {
	logg := logger.New(logger.Options{ServiceName: "miniapp"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "miniapp",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	bridge := hostbridge.New(nil)

	gw, err := gateway.NewClient(cfg.API, logg, metrics.NewGatewayMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		logg.Error(ctx, "failed to build gateway", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(gw)
	if err != nil {
		logg.Error(ctx, "failed to build catalog service", err)
		os.Exit(1)
	}

	cartSync, err := cart.NewSynchronizer(cart.Params{
		Gateway: gw,
		Logger:  logg,
		User:    bridge.UserID,
	})
	if err != nil {
		logg.Error(ctx, "failed to build cart synchronizer", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(gw, bridge.UserID)
	if err != nil {
		logg.Error(ctx, "failed to build orders service", err)
		os.Exit(1)
	}

	orchestrator, err := checkout.NewOrchestrator(checkout.Params{
		Gateway: gw,
		Bridge:  bridge,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build checkout orchestrator", err)
		os.Exit(1)
	}

	recorder, err := analytics.NewRecorder(gw, logg)
	if err != nil {
		logg.Error(ctx, "failed to build analytics recorder", err)
		os.Exit(1)
	}

	client, err := app.New(app.Params{
		Bridge:    bridge,
		Catalog:   catalogSvc,
		Cart:      cartSync,
		Orders:    ordersSvc,
		Checkout:  orchestrator,
		Analytics: recorder,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build app", err)
		os.Exit(1)
	}

	if err := client.Initialize(ctx); err != nil {
		logg.Error(ctx, "initialization failed", err)
		os.Exit(1)
	}

	snap := client.Snapshot()
	fmt.Printf("catalog ready: %d categories, %d products, badge %d\n",
		len(snap.Categories), len(snap.Products), snap.Badge)

	recorder.Flush()
}
