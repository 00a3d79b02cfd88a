// Package main provides the palletscan CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/message"

	"palletscan/internal/config"
	"palletscan/internal/journal"
	"palletscan/internal/logging"
	"palletscan/internal/odoo"
	"palletscan/internal/pallet"
)

var (
	// Global flags
	configPath string
	verbose    bool
	serverURL  string
	language   string
	lineFlags  []string

	// Logger for one-shot commands
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "palletscan",
	Short: "Pallet scanning station for the warehouse barcode screen",
	Long: `palletscan attaches scanned pallet barcodes to package destinations
through the ERP's /stock_barcode/update_pallet route.

Run without arguments to open the interactive scanning station.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The station owns the terminal and logs to file only.
		if cmd == cmd.Root() {
			return nil
		}

		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
		logging.CloseAll()
	},
	RunE: runStation,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .palletscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "ERP base URL (overrides server.url)")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "UI language: en, zh (overrides ui.language)")
	rootCmd.PersistentFlags().StringArrayVar(&lineFlags, "line", nil, "Package line as ID or ID=NAME (repeatable)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if language != "" {
		cfg.UI.Language = language
	}
	if len(lineFlags) > 0 {
		cfg.Lines = cfg.Lines[:0]
		for _, raw := range lineFlags {
			line, err := config.ParseLineFlag(raw)
			if err != nil {
				return nil, err
			}
			cfg.Lines = append(cfg.Lines, line)
		}
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// app bundles what every command needs once the config is loaded.
type app struct {
	cfg     *config.Config
	client  *odoo.Client
	journal *journal.Store
}

// openApp loads the config, starts file logging, and opens the RPC client
// and the journal. It does not talk to the server.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(logging.Options{
		Dir:             cfg.Logging.Dir,
		Level:           cfg.Logging.Level,
		DebugMode:       cfg.Logging.DebugMode,
		JSONFormat:      cfg.Logging.JSONFormat,
		CategoryEnabled: cfg.Logging.IsCategoryEnabled,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Boot("config loaded: server=%s lines=%d", cfg.Server.URL, len(cfg.Lines))

	client, err := odoo.NewClient(cfg.Server.URL, cfg.GetServerTimeout())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, client: client}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		a.journal = store
	}
	return a, nil
}

// authenticate opens an ERP session when credentials are configured.
func (a *app) authenticate(ctx context.Context) error {
	if !a.cfg.HasCredentials() {
		logging.Boot("no credentials configured, using anonymous session")
		return nil
	}
	sess, err := a.client.Authenticate(ctx, a.cfg.Server.Database, a.cfg.Server.Login, a.cfg.Server.Password)
	if err != nil {
		return fmt.Errorf("failed to authenticate as %s: %w", a.cfg.Server.Login, err)
	}
	logging.Boot("authenticated as %s (uid %d)", sess.Name, sess.UID)
	logger.Debug("Authenticated", zap.String("login", a.cfg.Server.Login), zap.Int64("uid", sess.UID))
	return nil
}

// workflowOptions derives the workflow options from the config.
func (a *app) workflowOptions(printer *message.Printer) []pallet.Option {
	opts := []pallet.Option{
		pallet.WithRoute(a.cfg.GetRoute()),
		pallet.WithResultTTL(a.cfg.GetResultTTL()),
		pallet.WithPrinter(printer),
	}
	if a.journal != nil {
		opts = append(opts, pallet.WithRecorder(a.journal))
	}
	return opts
}

func (a *app) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			logger.Warn("Failed to close journal", zap.String("path", a.journal.Path()), zap.Error(err))
		}
	}
}
