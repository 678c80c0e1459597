// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/pitchcrew/internal/runstore"
	"github.com/pdiddy/pitchcrew/internal/textgen"
	"github.com/pdiddy/pitchcrew/pkg/types"
)

func setDefaults() {
	viper.SetDefault("ai.provider", string(types.ProviderGroq))
	viper.SetDefault("ai.max_retries", 2)
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("pipeline.strategy", string(types.StrategySequential))
	viper.SetDefault("render.output_dir", ".")
	viper.SetDefault("store.path", runstore.MemoryPath)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("secrets_dir", ".secrets/")
	viper.SetDefault("log_level", "info")
}

// loadConfig assembles the configuration from viper. An API key missing
// from the config is taken from the secrets directory or the provider's
// environment variable.
func loadConfig() types.Config {
	cfg := types.Config{
		AI: types.AIConfig{
			Provider:   textgen.NormalizeProvider(types.Provider(viper.GetString("ai.provider"))),
			Model:      viper.GetString("ai.model"),
			APIKey:     viper.GetString("ai.api_key"),
			BaseURL:    viper.GetString("ai.base_url"),
			MaxRetries: viper.GetInt("ai.max_retries"),
			Timeout:    viper.GetDuration("ai.timeout"),
		},
		Pipeline: types.PipelineConfig{
			Strategy: types.Strategy(viper.GetString("pipeline.strategy")),
		},
		Render: types.RenderConfig{
			Subtitle:  viper.GetString("render.subtitle"),
			OutputDir: viper.GetString("render.output_dir"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = loadedSecrets.APIKey(string(cfg.AI.Provider))
	}
	return cfg
}
