package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/catalog"
	"github.com/five82/presser/internal/checkout"
	"github.com/five82/presser/internal/config"
	"github.com/five82/presser/internal/logging"
	"github.com/five82/presser/internal/order"
	"github.com/five82/presser/internal/prefs"
	"github.com/five82/presser/internal/ui"
)

// Options configure the presser application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/presser/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
}

// Run boots the presser TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := api.NewClient(api.ClientOptions{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Logger:  &log,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	orderOpts := cfg.OrderOptions()
	orderOpts.Logger = &log
	orders := order.NewStore(orderOpts)

	directory := &catalog.Store{}
	refresh(ctx, directory, client, log)
	StartPoller(ctx, directory, client, interval, log)

	log.Info().
		Str("api", cfg.APIBaseURL).
		Dur("poll", interval).
		Dur("protection_window", cfg.ProtectionWindow).
		Msg("presser started")

	return ui.Run(ui.Options{
		Context:     ctx,
		Directory:   client,
		Catalog:     directory,
		Orders:      orders,
		Checkout:    checkout.NewFlow(orders, client, &log),
		Config:      &cfg,
		ThemeName:   userPrefs.Theme,
		AddressType: userPrefs.AddressType,
		PrefsPath:   opts.PrefsPath,
		Logger:      log,
	})
}
