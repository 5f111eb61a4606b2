package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Path to the bestiary YAML file with monster statblocks.
	BestiaryPath string `json:"bestiary_path"`
	// Encounters idle longer than this are ended by the background
	// scanner. Zero disables the scanner.
	StaleAfterSeconds int `json:"stale_after_seconds"`
	// Optional narration prompt template. Use the token {{outcome}}
	// where the structured outcome summary will be substituted. If
	// omitted, a default prompt is used.
	NarrationPrompt string `json:"narration_prompt"`
}

// LoadedConfig contains the server address, scanner tuning and prompt
// templates loaded from battlegrid_config.json.
type LoadedConfig struct {
	ServerAddress string
	BestiaryPath  string
	StaleAfter    time.Duration
	// Optional narration prompt template loaded from config
	NarrationPromptTemplate string
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	addr := ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}

	bestiary := rc.BestiaryPath
	if bestiary == "" {
		bestiary = "./bestiary.yaml"
	}

	staleAfter := 30 * time.Minute
	if rc.StaleAfterSeconds > 0 {
		staleAfter = time.Duration(rc.StaleAfterSeconds) * time.Second
	}

	return &LoadedConfig{
		ServerAddress:           addr,
		BestiaryPath:            bestiary,
		StaleAfter:              staleAfter,
		NarrationPromptTemplate: strings.TrimSpace(rc.NarrationPrompt),
	}, nil
}
