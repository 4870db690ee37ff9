package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	nkapi "nklab/pkg/nklab"
)

// runFileConfig is the YAML form of a run request. Pointer fields separate
// absent keys from zero values.
type runFileConfig struct {
	N          *int    `yaml:"n"`
	K          *int    `yaml:"k"`
	Wiring     *string `yaml:"wiring"`
	Seed       *int64  `yaml:"seed"`
	WalkLength *int    `yaml:"walk_length"`
	Changes    *int    `yaml:"changes"`
	Samples    *int    `yaml:"samples"`
	Ranker     *string `yaml:"ranker"`
	RankIndex  *int    `yaml:"rank_index"`
	Top        *int    `yaml:"top"`
	Alphabet   []int   `yaml:"alphabet"`
}

func loadRunConfig(path string) (runFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runFileConfig{}, err
	}
	var cfg runFileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return runFileConfig{}, fmt.Errorf("parse run config %s: %w", path, err)
	}
	return cfg, nil
}

// applyRunConfig copies file values into req for every key whose flag was
// not set explicitly.
func applyRunConfig(req *nkapi.RunRequest, cfg runFileConfig, changed func(string) bool) {
	if cfg.N != nil && !changed("n") {
		req.N = *cfg.N
	}
	if cfg.K != nil && !changed("k") {
		req.K = *cfg.K
	}
	if cfg.Wiring != nil && !changed("wiring") {
		req.Wiring = *cfg.Wiring
	}
	if cfg.Seed != nil && !changed("seed") {
		req.Seed = *cfg.Seed
	}
	if cfg.WalkLength != nil && !changed("walk-length") {
		req.WalkLength = *cfg.WalkLength
	}
	if cfg.Changes != nil && !changed("changes") {
		req.Changes = *cfg.Changes
	}
	if cfg.Samples != nil && !changed("samples") {
		req.Samples = *cfg.Samples
	}
	if cfg.Ranker != nil && !changed("ranker") {
		req.Ranker = *cfg.Ranker
	}
	if cfg.RankIndex != nil && !changed("rank-index") {
		req.RankIndex = *cfg.RankIndex
	}
	if cfg.Top != nil && !changed("top") {
		req.Top = *cfg.Top
	}
	if len(cfg.Alphabet) > 0 && !changed("alphabet") {
		req.Alphabet = append([]int(nil), cfg.Alphabet...)
	}
}
