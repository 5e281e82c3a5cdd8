package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"photomirror/internal/config"
	"photomirror/internal/eventbus"
	"photomirror/internal/library"
	"photomirror/internal/logging"
	"photomirror/internal/remote"
	"photomirror/internal/resources"
	"photomirror/internal/syncengine"
)

func newSyncCmd(configPath *string) *cobra.Command {
	var shared bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one fetch/diff/write pass against the remote library",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*configPath)
			if err != nil {
				return err
			}
			cfg, err := config.ReadFromFile(path)
			if err != nil {
				return err
			}
			if err := promptMissingCredentials(cfg); err != nil {
				return err
			}

			runID := uuid.New().String()
			slogger, logFile, err := logging.NewFileLogger(cfg.DataDir, runID)
			if err != nil {
				return fmt.Errorf("setting up logging: %w", err)
			}
			defer logFile.Close()
			logger := &logging.SlogAdapter{L: slogger}

			res := resources.New()
			// No concrete transport is wired here: authentication and
			// HTTP transport against the remote service are out of
			// scope (spec §1). A real deployment supplies its own
			// remote.Client in place of UnimplementedClient.
			if err := res.Setup(resources.Options{
				Config: cfg,
				Client: remote.UnimplementedClient{},
				Logger: logger,
			}); err != nil {
				return fmt.Errorf("setting up shared resources: %w", err)
			}

			unsub := eventbus.Subscribe(res.EventBus(), func(ev eventbus.Event) {
				if ev.Err != nil {
					logger.Error(string(ev.Label), "msg", ev.Message, "err", ev.Err)
					return
				}
				logger.Info(string(ev.Label), "msg", ev.Message, "asset", ev.AssetUUID)
			})
			defer unsub()

			store := library.NewStore(cfg.DataDir, library.WithLogger(logger))
			if err := store.EnsureLayout(); err != nil {
				return fmt.Errorf("preparing local library tree: %w", err)
			}

			client, err := res.Client()
			if err != nil {
				return err
			}

			engine := syncengine.New(syncengine.Options{
				Client:          client,
				Store:           store,
				Bus:             res.EventBus(),
				Logger:          logger,
				MaxRetries:      cfg.MaxRetries,
				DownloadThreads: cfg.DownloadThreads,
				MetadataRate:    rateFromConfig(cfg),
				MetadataBurst:   cfg.MetadataRate.Count,
			})

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if err := engine.Run(ctx, remote.ZonePrimary); err != nil {
				return fmt.Errorf("syncing primary zone: %w", err)
			}

			if shared {
				if err := engine.Run(ctx, remote.ZoneShared); err != nil {
					return fmt.Errorf("syncing shared zone: %w", err)
				}
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&shared, "shared", false, "also sync the shared zone")
	return cmd
}

// promptMissingCredentials reads the password from the controlling
// terminal without echo when the config sets neither a password nor a
// trust token (spec §6). It does nothing when stdin is not a terminal.
func promptMissingCredentials(cfg *config.Config) error {
	if cfg.Password != "" || cfg.TrustToken != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	fmt.Fprint(os.Stderr, "password: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	cfg.Password = string(data)
	return nil
}

// rateFromConfig converts the count/interval_ms token-bucket pair into a
// golang.org/x/time/rate.Limit (events per second).
func rateFromConfig(cfg *config.Config) rate.Limit {
	if cfg.MetadataRate.IntervalMS <= 0 {
		return 0
	}
	return rate.Limit(float64(cfg.MetadataRate.Count) / (float64(cfg.MetadataRate.IntervalMS) / 1000.0))
}
