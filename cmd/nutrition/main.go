package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"NanoVision/server/internal/config"
	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/logging"
	"NanoVision/server/internal/nutrition"
	"NanoVision/server/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand shares. client is built lazily from the
// config unless already set.
type app struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	verbose    bool

	out     io.Writer
	client  *nutrition.Client
	session *nutrition.AuthSession
	closers []func() error
}

func main() {
	a := &app{out: os.Stdout}
	root := newRootCmd(a)
	err := root.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "nutrition",
		Short: "EmoVision nutrition service client",
		Long: `Command line client for the EmoVision nutrition backend.

The access token from "login" is stored in the local settings database and
sent with every later request.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "configs/config.yaml", "Config file")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Backend base URL (default from config)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (default from config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newLogoutCmd(a))
	root.AddCommand(newRegisterCmd(a))
	root.AddCommand(newProfileCmd(a))
	root.AddCommand(newMealCmd(a))
	root.AddCommand(newAdminCmd(a))
	root.AddCommand(newReportCmd(a))
	return root
}

func (a *app) init() error {
	if a.client != nil {
		if a.session == nil {
			a.session = nutrition.NewAuthSession(a.client)
		}
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.Logging.Level = "warn"
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Logging.Format = "console"
	cfg.Logging.Output = "stderr"
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() error { logger.Sync(); return nil })

	tokens, err := a.tokenStore(cfg, logger)
	if err != nil {
		return err
	}

	baseURL := cfg.Nutrition.BaseURL
	if a.baseURL != "" {
		baseURL = a.baseURL
	}
	timeout := cfg.Nutrition.Timeout
	if a.timeout > 0 {
		timeout = a.timeout
	}

	a.client = nutrition.NewClient(baseURL, timeout, nutrition.NewSettingsTokenStore(tokens), logger)
	a.session = nutrition.NewAuthSession(a.client)
	return nil
}

// tokenStore prefers Redis when enabled and reachable, else the SQL settings table
func (a *app) tokenStore(cfg *config.Config, logger *zap.Logger) (interfaces.SettingsStore, error) {
	if cfg.Database.Redis.Enabled {
		rs, err := storage.NewRedisStore(cfg.Database.Redis)
		if err == nil {
			a.closers = append(a.closers, rs.Close)
			return rs, nil
		}
		logger.Warn("redis unavailable, storing token in the database", zap.Error(err))
	}

	sqlStore, err := storage.NewSQLStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sqlStore.Close)
	return sqlStore.Settings(), nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
