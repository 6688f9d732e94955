package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "irrigation-node",
	Short: "Irrigation and telemetry node",
	Long: `irrigation-node reads soil moisture, light and climate sensors, streams the
readings to the companion module over a serial link and runs the pump for the
durations the companion module asks for.

Configuration is read from configs/config.yml (or --config), then overridden by
IRRIGATION_* environment variables (IRRIGATION_SERIAL_PORT, ...) and flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default configs/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	_ = viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db"))
}
