package main

import (
	"github.com/ravoni/battlegrid/internal/config"
	"github.com/ravoni/battlegrid/internal/logging"
	"github.com/ravoni/battlegrid/internal/narration"
	"github.com/ravoni/battlegrid/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid battlegrid configuration", err, logging.Fields{"config_path": path, "hint": "create a battlegrid_config.json with optional keys: server.address, bestiary_path, stale_after_seconds, narration_prompt"})
	}
	return cfg
}

func loadBestiaryOrExit(path string) map[string]config.Statblock {
	bestiary, err := config.LoadBestiary(path)
	if err != nil {
		logging.Fatal("Missing or invalid bestiary", err, logging.Fields{"bestiary_path": path, "hint": "provide a YAML file with a 'monsters' list of statblocks (name,hit_points,armor_class,speed,dex_mod,attack{name,bonus,damage_dice,damage_type})"})
	}
	return bestiary
}

func applyNarrationTemplate(cfg *config.LoadedConfig) {
	if cfg == nil {
		return
	}
	if cfg.NarrationPromptTemplate != "" {
		narration.SetPromptTemplate(cfg.NarrationPromptTemplate)
	}
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": dbPath})
	}
	return storage.NewSQLiteRepository(db)
}
