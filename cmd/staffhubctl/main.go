// Command staffhubctl - операционные утилиты: миграции, демо-данные, проверка
// состояния и служебные токены.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"staffhub/internal/backend"
	"staffhub/pkg/config"
	applogger "staffhub/pkg/logger"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "staffhubctl",
	Short:         "Операционные утилиты StaffHub",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if err := os.Setenv("STAFFHUB_CONFIG", configPath); err != nil {
				return err
			}
		}
		cfg = config.New()
		logger = applogger.NewLogger(cfg.Log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "путь к YAML-файлу конфигурации")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newVerifyCmd(),
		newBuildInfoCmd(),
		newTokenCmd(),
		newRPCCmd(),
		newImportLegacyCmd(),
	)
}

// connectData открывает соединение с базой для скриптов: нужен только DATABASE_URL.
func connectData(ctx context.Context) (*backend.DataAPI, error) {
	if err := cfg.Validate(config.ContextScript); err != nil {
		return nil, err
	}
	return backend.ConnectData(ctx, cfg.Backend.DatabaseURL, logger.Named("data"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}
