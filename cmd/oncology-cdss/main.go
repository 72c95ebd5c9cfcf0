// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the oncology-cdss CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/internal/logging"
	"github.com/pdiddy/oncology-cdss/internal/secrets"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	logger = zap.NewNop()

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets = secrets.Secrets{}

	// configErr is set when a config file exists but cannot be read.
	configErr error
)

// rootCmd is the base command for the oncology-cdss CLI.
var rootCmd = &cobra.Command{
	Use:   "oncology-cdss",
	Short: "Evidence-based oncology treatment recommendations with physician review",
	Long: `oncology-cdss answers a treatment question by searching the literature,
analyzing survival data, scoring a recommendation, routing it through a
physician review gate, and archiving the result.

Credentials are read from the environment, a .env file, the config file,
or .secrets/ in that order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		l, err := logging.New(types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			logger.Info("loaded secrets", zap.Strings("keys", keys))
		}
		if path := viper.ConfigFileUsed(); path != "" {
			logger.Info("using config file", zap.String("path", path))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./oncology-cdss.yaml or ~/.config/oncology-cdss/oncology-cdss.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or console")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("oncology-cdss")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "oncology-cdss"))
		}
	}

	viper.SetEnvPrefix("ONCOLOGY_CDSS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
