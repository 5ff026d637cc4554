// Command scenelab hosts the five demo scenes in one window. Keys 1-5 switch
// scenes, Escape quits. Configuration comes from an optional TOML file with
// SCENELAB_* environment overrides on top.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"scenelab/assets"
	"scenelab/config"
	"scenelab/core"
	"scenelab/logx"
	"scenelab/lottery"
	"scenelab/renderer"
	"scenelab/scenes"
	"scenelab/scenes/collider"
	"scenelab/scenes/configurator"
	"scenelab/scenes/flight"
	"scenelab/scenes/lotto"
	"scenelab/scenes/shooter"
	"scenelab/shader"
)

// maxFrameDt caps the per-frame delta so a stall (window drag, breakpoint)
// does not slam the scenes with one giant step.
const maxFrameDt = float32(0.1)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "scenelab:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "scenelab.toml", "path to the TOML config file")
	startScene := flag.String("scene", "", "scene to start in (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *startScene != "" {
		cfg.StartScene = *startScene
	}

	log := logx.New(cfg.LogLevel, os.Stderr)
	log.Info("starting", "config", *configPath, "scene", cfg.StartScene)

	// Shader registry, with optional disk overrides and hot reload.
	registry := shader.NewRegistry(log)
	defer registry.Close()
	if cfg.Shaders.Dir != "" {
		if err := registry.LoadDir(cfg.Shaders.Dir); err != nil {
			log.Warn("shader override dir unavailable", "dir", cfg.Shaders.Dir, "error", err)
		}
		if cfg.Shaders.Watch {
			if err := registry.Watch(cfg.Shaders.Dir); err != nil {
				log.Warn("shader watch unavailable", "dir", cfg.Shaders.Dir, "error", err)
			}
		}
	}

	window, err := core.NewWindow(core.WindowConfig{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  true,
		VSync:      cfg.Window.VSync,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	defer window.Destroy()

	input := core.NewInput()
	input.Bind(window)

	engine, err := renderer.New(log, registry, window)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	defer engine.Destroy()
	enableFeatures(log, engine, cfg.Renderer)

	loader := assets.NewLoader(log, cfg.Assets.Root, nil)

	// Lottery chain: a dead cache is not fatal, the source just skips it.
	var store *lottery.Store
	if cfg.Lottery.CachePath != "" {
		store, err = lottery.OpenStore(cfg.Lottery.CachePath)
		if err != nil {
			log.Warn("draw cache unavailable", "path", cfg.Lottery.CachePath, "error", err)
		} else {
			defer store.Close()
		}
	}
	source := lottery.NewSource(log, lottery.NewClient(cfg.Lottery.APIBaseURL, nil), store)

	ctx := &scenes.Context{
		Log:      log,
		Config:   cfg,
		Window:   window,
		Input:    input,
		Renderer: engine,
		Assets:   loader,
		Shaders:  registry,
		Lottery:  source,
	}
	mgr := scenes.NewManager(ctx)
	mgr.Register(flight.New())
	mgr.Register(collider.New())
	mgr.Register(configurator.New())
	mgr.Register(lotto.New())
	mgr.Register(shooter.New())
	defer mgr.Destroy()

	// App-level bindings outlive every scene, so they get their own scope.
	names := mgr.Names()
	input.OnKey("app", func(key int, pressed bool) {
		if !pressed {
			return
		}
		if key == core.KeyEscape {
			window.SetShouldClose(true)
			return
		}
		if idx := key - core.Key1; idx >= 0 && idx < len(names) {
			if err := mgr.Switch(names[idx]); err != nil {
				log.Error("scene switch failed", "scene", names[idx], "error", err)
			}
		}
	})

	if err := mgr.Switch(cfg.StartScene); err != nil {
		return fmt.Errorf("start scene: %w", err)
	}

	lastW, lastH := window.Size()
	last := time.Now()
	for !window.ShouldClose() {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now
		if dt > maxFrameDt {
			dt = maxFrameDt
		}

		window.PollEvents()
		input.Update()

		if w, h := window.Size(); w != lastW || h != lastH {
			lastW, lastH = w, h
			engine.Resize(w, h)
		}

		mgr.Update(dt)
		mgr.Render()
		engine.Present()
	}

	log.Info("shutting down")
	return nil
}

// enableFeatures applies the configured renderer toggles. Every enable is
// best-effort: a failure logs and leaves the feature off.
func enableFeatures(log *slog.Logger, e *renderer.Engine, rc config.RendererConfig) {
	e.FrustumCulling = rc.FrustumCull
	if rc.Shadows {
		if err := e.EnableShadows(rc.ShadowSize); err != nil {
			log.Warn("shadows unavailable", "error", err)
		}
	}
	if rc.PostProcess {
		if err := e.EnablePostProcess(); err != nil {
			log.Warn("post-processing unavailable", "error", err)
		}
	}
	if rc.Bloom {
		if err := e.EnableBloom(); err != nil {
			log.Warn("bloom unavailable", "error", err)
		}
	}
	if rc.SSAO {
		if err := e.EnableSSAO(); err != nil {
			log.Warn("ssao unavailable", "error", err)
		}
	}
}
