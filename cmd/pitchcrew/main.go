// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pitchcrew CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pitchcrew/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets secrets.Keys

// rootCmd is the base command for the pitchcrew CLI.
var rootCmd = &cobra.Command{
	Use:   "pitchcrew",
	Short: "Turn a startup idea into names, research and an investor pitch",
	Long: `pitchcrew runs a startup idea through four generation stages: brand
names, market research, a draft pitch and an editorial polish. Every stage
has a built-in fallback, so a run completes even without an API key.

The selected name and polished pitch can be exported as a PDF or HTML
document. The serve command exposes the same operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		s, err := secrets.Load(viper.GetString("secrets_dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			slog.Debug("loaded secrets", slog.Any("keys", s.Names()))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./pitchcrew.yaml or ~/.config/pitchcrew/config.yaml)")
	flags.String("provider", "", "text-generation provider: groq, openai, deepseek, anthropic, gemini, ollama")
	flags.String("model", "", "model identifier (default depends on provider)")
	flags.String("strategy", "", "orchestration strategy: sequential or crew")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("ai.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("ai.model", flags.Lookup("model"))
	_ = viper.BindPFlag("pipeline.strategy", flags.Lookup("strategy"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pitchcrew")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pitchcrew"))
		}
	}

	viper.SetEnvPrefix("PITCHCREW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
