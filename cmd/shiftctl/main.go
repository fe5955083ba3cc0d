package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/db"
	"helping-hands/shiftdesk/internal/logging"
)

// App holds what every subcommand needs.
type App struct {
	cfg *config.Config
	orm *gorm.DB
}

var (
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftctl",
		Short: "shiftdesk operations CLI",
		Long:  `Applies migrations, seeds sample data and mints bearer tokens for the shiftdesk service.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config YAML (defaults to $SHIFTDESK_CONFIG)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initApp() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Env); err != nil {
		return err
	}

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	app = &App{cfg: cfg, orm: orm}
	return nil
}
