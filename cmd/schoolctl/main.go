package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	database "schoolhub_backend/internals/databases"
)

var (
	// conf: flag > env SCHOOLCTL_* > default
	conf   = viper.New()
	logger *zap.Logger
	db     *gorm.DB
)

var rootCmd = &cobra.Command{
	Use:   "schoolctl",
	Short: "Operasional SchoolHub: migrasi, seed, job terjadwal, dan rekap nilai",
	Long: `schoolctl memakai konfigurasi database yang sama dengan server (DB_HOST, DB_USER, ...).

Contoh:
  schoolctl migrate
  schoolctl seed --file internals/seeds/data/seed.yaml
  schoolctl overdue
  schoolctl averages --school <uuid> --term <uuid>
  schoolctl export grades --class <uuid> --term <uuid> --out notes.xlsx`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configs.LoadEnv()
		if err := readConfigFile(); err != nil {
			return err
		}
		var err error
		logger, err = newLogger(conf.GetBool("verbose"))
		if err != nil {
			return fmt.Errorf("gagal inisialisasi logger: %w", err)
		}
		if used := conf.ConfigFileUsed(); used != "" {
			logger.Debug("config file dipakai", zap.String("file", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	conf.SetEnvPrefix("SCHOOLCTL")
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()
	conf.SetDefault("timeout", 10*time.Minute)
	conf.SetDefault("workers", 4)

	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "log level debug")
	pf.Duration("timeout", 10*time.Minute, "batas waktu seluruh perintah")
	_ = conf.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = conf.BindPFlag("timeout", pf.Lookup("timeout"))

	rootCmd.AddCommand(migrateCmd, seedCmd, overdueCmd, purgeTokensCmd, averagesCmd, exportCmd)
}

// readConfigFile: schoolctl.yaml opsional (direktori kerja atau $HOME/.schoolctl).
func readConfigFile() error {
	conf.SetConfigName("schoolctl")
	conf.SetConfigType("yaml")
	conf.AddConfigPath(".")
	conf.AddConfigPath("$HOME/.schoolctl")
	if err := conf.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("gagal membaca schoolctl.yaml: %w", err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// openDB: koneksi tanpa statement_timeout, job batch bisa lama.
func openDB() *gorm.DB {
	if db == nil {
		db = configs.InitSeederDB()
	}
	return db
}

// commandContext: dibatalkan oleh SIGINT/SIGTERM atau --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, conf.GetDuration("timeout"))
	return ctx, func() {
		cancel()
		stop()
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "AutoMigrate semua tabel",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		if err := database.AutoMigrate(openDB()); err != nil {
			return err
		}
		logger.Info("migrasi selesai", zap.Int("tables", len(database.Models())), zap.Duration("took", time.Since(start)))
		return nil
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
