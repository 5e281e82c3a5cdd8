// Command photomirror drives the one-way mirror engine from the command
// line. Authentication, MFA, and HTTP transport are out of spec.md's
// scope (spec §1); this binary wires configuration, the local library
// store, and the sync engine together and reports progress on stderr.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photomirror/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "photomirror",
		Short: "One-way mirror of a remote photo library onto local disk",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: XDG config dir)")

	root.AddCommand(newConfigCmd(&configPath))
	root.AddCommand(newSyncCmd(&configPath))
	root.AddCommand(newStatusCmd(&configPath))

	return root
}

// resolveConfigPath returns the explicit --config flag value, or the
// resolved default when the flag is empty.
func resolveConfigPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	d, err := resolveDefaults()
	if err != nil {
		return "", err
	}
	return d.ConfigPath, nil
}

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(configPath))
	cmd.AddCommand(newConfigListCmd(configPath))
	return cmd
}

func newConfigInitCmd(configPath *string) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a fresh config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*configPath)
			if err != nil {
				return err
			}

			dir := dataDir
			if dir == "" {
				d, err := resolveDefaults()
				if err != nil {
					return err
				}
				dir = d.DataDir
			}

			cfg := config.Default(dir)
			if err := config.Init(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote config to %s (data_dir=%s)\n", path, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "local tree root (default: XDG data dir)")
	return cmd
}

func newConfigListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*configPath)
			if err != nil {
				return err
			}
			cfg, err := config.ReadFromFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("data_dir:          %s\n", cfg.DataDir)
			fmt.Printf("username:          %s\n", cfg.Username)
			fmt.Printf("port:              %d\n", cfg.Port)
			fmt.Printf("max_retries:       %d\n", cfg.MaxRetries)
			fmt.Printf("download_threads:  %d\n", cfg.DownloadThreads)
			fmt.Printf("schedule:          %s\n", cfg.Schedule)
			fmt.Printf("log_level:         %s\n", cfg.LogLevel)
			fmt.Printf("remote_delete:     %t\n", cfg.RemoteDelete)
			fmt.Printf("metadata_rate:     %d/%dms\n", cfg.MetadataRate.Count, cfg.MetadataRate.IntervalMS)
			return nil
		},
	}
}
