// Package config loads application settings from an optional TOML file with
// environment-variable overrides (SCENELAB_* wins over the file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Width      int    `toml:"width"      env:"SCENELAB_WINDOW_WIDTH"`
	Height     int    `toml:"height"     env:"SCENELAB_WINDOW_HEIGHT"`
	Title      string `toml:"title"      env:"SCENELAB_WINDOW_TITLE"`
	VSync      bool   `toml:"vsync"`
	Fullscreen bool   `toml:"fullscreen"`
}

type RendererConfig struct {
	Shadows      bool `toml:"shadows"`
	ShadowSize   int  `toml:"shadow_size"`
	PostProcess  bool `toml:"post_process"`
	Bloom        bool `toml:"bloom"`
	SSAO         bool `toml:"ssao"`
	FrustumCull  bool `toml:"frustum_cull"`
}

type AssetsConfig struct {
	Root    string `toml:"root" env:"SCENELAB_ASSET_ROOT"`
	Workers int    `toml:"workers"`
}

type ShaderConfig struct {
	// Dir overlays <name>.vert/.frag files over the built-in sources.
	Dir   string `toml:"dir" env:"SCENELAB_SHADER_DIR"`
	Watch bool   `toml:"watch"`
}

type LotteryConfig struct {
	APIBaseURL     string `toml:"api_base_url" env:"SCENELAB_LOTTERY_API_URL"`
	CachePath      string `toml:"cache_path"   env:"SCENELAB_LOTTERY_CACHE"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SceneTuning holds the per-scene gameplay knobs.
type SceneTuning struct {
	Gravity       float32 `toml:"gravity"`        // world gravity magnitude (m/s², applied -Y)
	CycleSetup    float32 `toml:"cycle_setup"`    // collider setup phase seconds
	CyclePhysics  float32 `toml:"cycle_physics"`  // collider physics phase seconds
	CycleCleanup  float32 `toml:"cycle_cleanup"`  // collider cleanup phase seconds
	DebrisCount   int     `toml:"debris_count"`   // debris spheres per collision burst
	WaveSeconds   float32 `toml:"wave_seconds"`   // shooter spawn phase seconds
	WaveSize      int     `toml:"wave_size"`      // enemies per wave
	DrumSpin      float32 `toml:"drum_spin"`      // lottery drum stir impulse strength
	BallCount     int     `toml:"ball_count"`     // lottery balls in the drum
	FlightSpeed   float32 `toml:"flight_speed"`   // base aircraft speed (units/s)
	TurntableRate float32 `toml:"turntable_rate"` // configurator rotation (rad/s)
}

type Config struct {
	LogLevel   string `toml:"log_level"   env:"SCENELAB_LOG_LEVEL"`
	StartScene string `toml:"start_scene" env:"SCENELAB_START_SCENE"`

	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
	Shaders  ShaderConfig   `toml:"shaders"`
	Lottery  LotteryConfig  `toml:"lottery"`
	Tuning   SceneTuning    `toml:"tuning"`
}

// Default returns the settings used when no file and no environment are set.
func Default() Config {
	return Config{
		LogLevel:   "info",
		StartScene: "flight",
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "scenelab",
			VSync:  true,
		},
		Renderer: RendererConfig{
			Shadows:     true,
			ShadowSize:  2048,
			PostProcess: true,
			Bloom:       true,
			SSAO:        false,
			FrustumCull: true,
		},
		Assets: AssetsConfig{
			Root:    "assets",
			Workers: 4,
		},
		Lottery: LotteryConfig{
			APIBaseURL:     "https://www.lottocorner.net/api/v1/results",
			CachePath:      "lottery.db",
			TimeoutSeconds: 5,
		},
		Tuning: SceneTuning{
			Gravity:       9.81,
			CycleSetup:    2.0,
			CyclePhysics:  4.0,
			CycleCleanup:  1.5,
			DebrisCount:   24,
			WaveSeconds:   3.0,
			WaveSize:      6,
			DrumSpin:      14.0,
			BallCount:     30,
			FlightSpeed:   22.0,
			TurntableRate: 0.35,
		},
	}
}

// Load builds a Config: defaults, then the TOML file at path (a missing file
// is fine), then SCENELAB_* environment overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// no file: defaults + env only
		case err != nil:
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %q: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
