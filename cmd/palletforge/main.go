// Package main provides the palletforge binary entry point.
// Palletforge is the order management backend for a custom pallet
// manufacturer: quotation pricing, quote and order lifecycles, and an
// event stream that keeps every connected view current.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/madan-prog/palletforge/commands"
	"github.com/madan-prog/palletforge/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "palletforge"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	opts := &commands.Options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Pallet order management backend",
		Long: `Palletforge manages custom pallet quotations and production orders.

It provides:
- Deterministic quotation pricing from an admin-tunable rate table
- Quote and order lifecycles with role-based transitions
- A NATS event stream so every connected view refetches on change

The serve command runs the backend; the remaining verbs talk to it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "http://localhost:8080", "Palletforge server URL")
	cmd.PersistentFlags().StringVar(&opts.NATSURL, "nats-url", "nats://localhost:4222", "NATS server URL")
	cmd.PersistentFlags().StringVar(&opts.UserID, "user", "admin", "Operator ID recorded in audit trails")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the palletforge backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, logLevel)
		},
	})

	cmd.AddCommand(commands.NewQuotesCommand(opts))
	cmd.AddCommand(commands.NewOrdersCommand(opts))
	cmd.AddCommand(commands.NewSettingsCommand(opts))
	cmd.AddCommand(commands.NewWatchCommand(opts))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func loadConfig(configPath, logLevel string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.NewLoader(nil).Load()
		if err != nil {
			return nil, err
		}
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
}
