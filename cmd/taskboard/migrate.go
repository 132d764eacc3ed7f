package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clintrovert/taskboard/internal/app"
	"github.com/clintrovert/taskboard/internal/config"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the sqlite schema and seed the status and priority catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.Store.Driver != config.DriverSQLite {
				return fmt.Errorf("migrate requires the %s driver, got %q", config.DriverSQLite, cfg.Store.Driver)
			}
			return app.Migrate(cmd.Context(), cfg.Store.DSN, logger)
		},
	}
}
