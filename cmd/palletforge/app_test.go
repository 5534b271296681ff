package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/madan-prog/palletforge/config"
	"github.com/madan-prog/palletforge/pricing"
	"github.com/madan-prog/palletforge/rates"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.NATS.StoreDir = t.TempDir()
	return cfg
}

func TestAppStartStop(t *testing.T) {
	app := NewApp(testConfig(t), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("failed to start app: %v", err)
	}

	if app.natsConn == nil {
		t.Error("NATS connection not initialized")
	}
	if app.js == nil {
		t.Error("JetStream not initialized")
	}
	if app.store == nil {
		t.Error("Store not initialized")
	}
	if app.embeddedServer == nil {
		t.Error("Embedded NATS server not started")
	}
	if app.rateCache == nil {
		t.Error("Rate cache not seeded")
	}

	app.Shutdown(5 * time.Second)

	if app.natsConn.IsConnected() {
		t.Error("NATS connection still open after shutdown")
	}
}

func TestAppSeedsRatesFromFile(t *testing.T) {
	seedPath := filepath.Join(t.TempDir(), "rates.yaml")
	seed := `
base_pallet_cost:
  standard: 999
`
	if err := os.WriteFile(seedPath, []byte(seed), 0644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	cfg := testConfig(t)
	cfg.Rates.SeedPath = seedPath

	app := NewApp(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Shutdown(5 * time.Second)

	got := app.rateCache.Current()
	if got.BasePalletCost[pricing.PalletStandard] != 999 {
		t.Errorf("expected seeded base cost 999, got %d", got.BasePalletCost[pricing.PalletStandard])
	}
}

func TestAppStoredSettingsWinOverSeedFile(t *testing.T) {
	cfg := testConfig(t)

	app := NewApp(cfg, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Shutdown(5 * time.Second)

	// Save settings, then rebuild the cache the way a restart would.
	saved := rates.Default()
	saved.BasePalletCost[pricing.PalletStandard] = 1234
	if err := app.store.PutSettings(ctx, saved); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	if err := app.seedRates(ctx); err != nil {
		t.Fatalf("reseed rates: %v", err)
	}
	got := app.rateCache.Current()
	if got.BasePalletCost[pricing.PalletStandard] != 1234 {
		t.Errorf("expected stored base cost 1234, got %d", got.BasePalletCost[pricing.PalletStandard])
	}
}
