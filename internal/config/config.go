// Package config loads session settings from HCL files.
//
// A config file looks like:
//
//	log_level = "info"
//
//	game {
//	  feature_size   = 3
//	  feature_count  = 4
//	  table_size     = 12
//	  turn_timeout   = "60s"
//	  penalty_freeze = "3s"
//	  hints          = false
//	}
//
//	player "alice" {
//	  human = true
//	}
//
//	player "bot" {}
//
// Every attribute is optional; missing values take the defaults below.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/setgame/internal/game"
)

// Config is the complete file configuration
type Config struct {
	LogLevel string           `hcl:"log_level,optional"`
	Game     *GameSettings    `hcl:"game,block"`
	Players  []PlayerSettings `hcl:"player,block"`
}

// GameSettings holds the rules and timing of a session. Durations are Go
// duration strings such as "1.5s".
type GameSettings struct {
	TableSize          int    `hcl:"table_size,optional"`
	DeckSize           int    `hcl:"deck_size,optional"`
	FeatureSize        int    `hcl:"feature_size,optional"`
	FeatureCount       int    `hcl:"feature_count,optional"`
	TurnTimeout        string `hcl:"turn_timeout,optional"`
	TurnTimeoutWarning string `hcl:"turn_timeout_warning,optional"`
	TableDelay         string `hcl:"table_delay,optional"`
	PointFreeze        string `hcl:"point_freeze,optional"`
	PenaltyFreeze      string `hcl:"penalty_freeze,optional"`
	EndGamePause       string `hcl:"end_game_pause,optional"`
	AIThrottle         string `hcl:"ai_throttle,optional"`
	MaxPendingIntents  int    `hcl:"max_pending_intents,optional"`
	Hints              bool   `hcl:"hints,optional"`
	Seed               int64  `hcl:"seed,optional"`
}

// PlayerSettings declares one seat. Players are automated unless human is set.
type PlayerSettings struct {
	Name  string `hcl:"name,label"`
	Human bool   `hcl:"human,optional"`
}

// Default returns the built-in configuration: the classic 81 card deck and
// two automated players.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Game: &GameSettings{
			TableSize:          12,
			FeatureSize:        3,
			FeatureCount:       4,
			TurnTimeout:        "60s",
			TurnTimeoutWarning: "5s",
			TableDelay:         "100ms",
			PointFreeze:        "1s",
			PenaltyFreeze:      "3s",
			EndGamePause:       "5s",
			AIThrottle:         "2ms",
			MaxPendingIntents:  32,
		},
		Players: []PlayerSettings{
			{Name: "bot1"},
			{Name: "bot2"},
		},
	}
}

// Load reads path, falling back to the defaults when the file does not exist
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source and fills in defaults. filename is only used in
// diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Game == nil {
		c.Game = def.Game
	} else {
		g, d := c.Game, def.Game
		if g.TableSize == 0 {
			g.TableSize = d.TableSize
		}
		if g.FeatureSize == 0 {
			g.FeatureSize = d.FeatureSize
		}
		if g.FeatureCount == 0 {
			g.FeatureCount = d.FeatureCount
		}
		if g.MaxPendingIntents == 0 {
			g.MaxPendingIntents = d.MaxPendingIntents
		}
		for _, field := range []struct {
			value *string
			def   string
		}{
			{&g.TurnTimeout, d.TurnTimeout},
			{&g.TurnTimeoutWarning, d.TurnTimeoutWarning},
			{&g.TableDelay, d.TableDelay},
			{&g.PointFreeze, d.PointFreeze},
			{&g.PenaltyFreeze, d.PenaltyFreeze},
			{&g.EndGamePause, d.EndGamePause},
			{&g.AIThrottle, d.AIThrottle},
		} {
			if *field.value == "" {
				*field.value = field.def
			}
		}
	}
	if len(c.Players) == 0 {
		c.Players = def.Players
	}
}

// FullDeck returns feature_size^feature_count, the number of distinct cards
func (c *Config) FullDeck() int {
	deck := 1
	for range c.Game.FeatureCount {
		deck *= c.Game.FeatureSize
	}
	return deck
}

// Validate checks the configuration, including every duration string
func (c *Config) Validate() error {
	if c.Game == nil {
		return fmt.Errorf("missing game settings")
	}
	g := c.Game
	if g.FeatureSize < 2 {
		return fmt.Errorf("feature_size must be at least 2, got %d", g.FeatureSize)
	}
	if g.FeatureCount < 1 || g.FeatureCount > 8 {
		return fmt.Errorf("feature_count must be between 1 and 8, got %d", g.FeatureCount)
	}
	if g.DeckSize < 0 || g.DeckSize > c.FullDeck() {
		return fmt.Errorf("deck_size must be between 0 and %d, got %d", c.FullDeck(), g.DeckSize)
	}

	seen := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if seen[p.Name] {
			return fmt.Errorf("player %q declared twice", p.Name)
		}
		seen[p.Name] = true
	}

	cfg, err := c.GameConfig()
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// GameConfig converts the file settings into a game.Config. The selection
// size is the feature size.
func (c *Config) GameConfig() (game.Config, error) {
	g := c.Game
	deck := g.DeckSize
	if deck == 0 {
		deck = c.FullDeck()
	}

	cfg := game.Config{
		TableSize:         g.TableSize,
		DeckSize:          deck,
		SelectionSize:     g.FeatureSize,
		MaxPendingIntents: g.MaxPendingIntents,
		Hints:             g.Hints,
	}
	for _, d := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"turn_timeout", g.TurnTimeout, &cfg.TurnTimeout},
		{"turn_timeout_warning", g.TurnTimeoutWarning, &cfg.TurnTimeoutWarning},
		{"table_delay", g.TableDelay, &cfg.TableDelay},
		{"point_freeze", g.PointFreeze, &cfg.PointFreeze},
		{"penalty_freeze", g.PenaltyFreeze, &cfg.PenaltyFreeze},
		{"end_game_pause", g.EndGamePause, &cfg.EndGamePause},
		{"ai_throttle", g.AIThrottle, &cfg.AIThrottle},
	} {
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return game.Config{}, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	for _, p := range c.Players {
		role := game.Automated
		if p.Human {
			role = game.Human
		}
		cfg.Players = append(cfg.Players, game.PlayerSpec{Name: p.Name, Role: role})
	}
	return cfg, nil
}

// Humans returns the number of human players
func (c *Config) Humans() int {
	n := 0
	for _, p := range c.Players {
		if p.Human {
			n++
		}
	}
	return n
}
