package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/workday-calendar/internal/calendar"
	"github.com/username/workday-calendar/internal/config"
	"github.com/username/workday-calendar/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", explainError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "workday-calendar",
		Short:         "Working day calendar",
		Long:          "Count working days, project dates and break down fiscal years over a holiday registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				initLogger(zapcore.InfoLevel)
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.GetLevel())
				if err != nil {
					initLogger(cfg.Log.GetLevel()) // Fallback to console
				}
			} else {
				initLogger(cfg.Log.GetLevel())
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: search ., $HOME/.workday-calendar, /etc/workday-calendar)")

	rootCmd.AddCommand(daysCmd())
	rootCmd.AddCommand(weekendCmd())
	rootCmd.AddCommand(deltaCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(fiscalYearCmd())
	rootCmd.AddCommand(holidaysCmd())
	rootCmd.AddCommand(seedCmd())

	return rootCmd
}

// initializeRegistry loads the holiday registry from the configured storage.
// The returned closer releases the database, if one was opened.
func initializeRegistry(ctx context.Context, cfg *config.Config) (*calendar.Registry, func(), error) {
	noop := func() {}

	var source storage.Source
	switch cfg.Storage.GetType() {
	case config.StorageFile:
		logger.Info("Using holiday file", zap.String("file", cfg.Storage.SeedFile))
		source = storage.NewFileSource(cfg.Storage.SeedFile, logger)

	case config.StorageSQLite:
		logger.Info("Using SQLite holiday store", zap.String("dsn", cfg.Storage.DSN))
		db, store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}

		var fallback storage.Source = storage.NewEmbeddedSource(logger)
		if cfg.Storage.SeedFile != "" {
			fallback = storage.NewFileSource(cfg.Storage.SeedFile, logger)
		}
		source = storage.NewCompositeSource(store, fallback, logger)

		registry, err := storage.LoadRegistry(ctx, source)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return registry, func() { db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}

	registry, err := storage.LoadRegistry(ctx, source)
	if err != nil {
		return nil, noop, err
	}
	return registry, noop, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, *storage.SQLiteStore, error) {
	db, err := storage.OpenSQLite(cfg.Storage.DSN)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewSQLiteStore(db, logger)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, store, nil
}

func initializeCalculator(ctx context.Context, cfg *config.Config) (*calendar.Calculator, *calendar.Registry, func(), error) {
	registry, closer, err := initializeRegistry(ctx, cfg)
	if err != nil {
		return nil, nil, closer, err
	}

	logger.Debug("Holiday registry loaded", zap.Int("holidays", registry.Len()))
	return calendar.NewCalculator(registry, cfg.Calendar.GetDateFormat(), logger), registry, closer, nil
}

// newParsingCalculator builds a calculator for commands that never consult holidays
func newParsingCalculator(cfg *config.Config) *calendar.Calculator {
	registry, _ := calendar.NewRegistry(nil)
	return calendar.NewCalculator(registry, cfg.Calendar.GetDateFormat(), logger)
}

// explainError adds a hint to errors the user can fix by loading more holidays
func explainError(err error) error {
	if errors.Is(err, calendar.ErrOutOfBounds) || errors.Is(err, calendar.ErrEmptyRegistry) {
		return fmt.Errorf("%w\nhint: load holidays covering these dates with 'workday-calendar seed --file <path>'", err)
	}
	return err
}

func initLogger(level zapcore.Level) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level zapcore.Level) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,   // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		level,
	)

	return zap.New(core), nil
}
