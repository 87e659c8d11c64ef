package trellis

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pelletier/go-toml/v2"
)

// RunConfig configures the window created by Run. It can be loaded from a
// TOML file with LoadRunConfig:
//
//	title = "Gallery"
//	width = 800
//	height = 600
//	clearColor = "#202028"
//	scene = "gallery.yaml"
type RunConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// TPS is the Ebitengine tick rate. Zero keeps the default of 60.
	TPS int `toml:"tps"`
	// ClearColor is a color string accepted by ParseColor. Empty keeps the
	// host's clear color.
	ClearColor string `toml:"clearColor"`
	Debug      bool   `toml:"debug"`
	ShowFPS    bool   `toml:"showFPS"`
	// Scene is an optional scene file path for programs that load one.
	Scene string `toml:"scene"`
}

// LoadRunConfig reads a TOML run config from path and fills in defaults.
// Unknown keys are an error.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("load run config: %w", err)
	}
	var cfg RunConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return RunConfig{}, fmt.Errorf("load run config %s: %s", path, strict.String())
		}
		return RunConfig{}, fmt.Errorf("load run config %s: %w", path, err)
	}
	if cfg.ClearColor != "" {
		if _, err := ParseColor(cfg.ClearColor); err != nil {
			return RunConfig{}, fmt.Errorf("load run config %s: clearColor: %w", path, err)
		}
	}
	return cfg.withDefaults(), nil
}

func (cfg RunConfig) withDefaults() RunConfig {
	if cfg.Title == "" {
		cfg.Title = "trellis"
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.TPS <= 0 {
		cfg.TPS = ebiten.DefaultTPS
	}
	return cfg
}

// apply copies the config's host settings onto h.
func (cfg RunConfig) apply(h *Host) {
	if cfg.ClearColor != "" {
		if c, err := ParseColor(cfg.ClearColor); err == nil {
			h.ClearColor = c
		}
	}
	h.showFPS = cfg.ShowFPS
	if cfg.Debug {
		h.SetDebugMode(true)
	}
}

// Run opens a window and runs h as the game until the window is closed or
// the update function returns an error.
func Run(h *Host, cfg RunConfig) error {
	cfg = cfg.withDefaults()
	cfg.apply(h)
	if h.width <= 0 || h.height <= 0 {
		h.width, h.height = cfg.Width, cfg.Height
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetTPS(cfg.TPS)
	defer h.Dispose()
	return ebiten.RunGame(h)
}
