package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/config"
	"github.com/clintrovert/taskboard/internal/logging"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Team task tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("store-driver", "", "store driver: memory or sqlite")
	root.PersistentFlags().String("store-dsn", "", "sqlite data source name")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("store.driver", root.PersistentFlags().Lookup("store-driver"))
	_ = v.BindPFlag("store.dsn", root.PersistentFlags().Lookup("store-dsn"))

	root.AddCommand(newServeCmd(v), newMigrateCmd(v))
	return root
}

// loadConfig resolves defaults, the optional config file, env and flags
func loadConfig(v *viper.Viper) (*config.Config, *zap.Logger, error) {
	config.SetDefaults(v)
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
