package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"frontierBot/internal/config"
	"frontierBot/internal/logging"
)

var (
	cfgPath  string
	logLevel string

	cfg *config.Config
	log zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "frontier",
		Short: "Monte Carlo efficient frontier sampler",
		Long:  `Samples random long-only portfolios over Yahoo daily prices and reports the maximum Sharpe ratio allocation`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			log = logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
			return nil
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.toml", "TOML config file, skipped when missing")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}
