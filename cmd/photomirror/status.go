package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photomirror/internal/config"
	"photomirror/internal/library"
)

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the local library tree without contacting the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*configPath)
			if err != nil {
				return err
			}
			cfg, err := config.ReadFromFile(path)
			if err != nil {
				return err
			}

			store := library.NewStore(cfg.DataDir)
			if err := store.EnsureLayout(); err != nil {
				return fmt.Errorf("preparing local library tree: %w", err)
			}

			assets, err := store.LoadAssets()
			if err != nil {
				return fmt.Errorf("loading assets: %w", err)
			}
			albums, err := store.LoadAlbums()
			if err != nil {
				return fmt.Errorf("loading albums: %w", err)
			}

			fmt.Printf("data_dir: %s\n", cfg.DataDir)
			fmt.Printf("assets:   %d\n", len(assets))
			fmt.Printf("albums:   %d\n", len(albums))
			return nil
		},
	}
}
