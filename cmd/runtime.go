package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"focusflow/internal/app"
	"focusflow/internal/audio/asset"
	"focusflow/internal/audio/device"
	"focusflow/internal/audio/engine"
	"focusflow/internal/audio/graph"
	"focusflow/internal/config"
	"focusflow/internal/core/loop"
	"focusflow/internal/storage"
)

const (
	soundLoopLength  = 30 * time.Second
	deviceBufferSize = 100 * time.Millisecond
)

// runtime is everything a front end needs: the loop, the store and the
// controller built on top of them.
type runtime struct {
	loop       *loop.Loop
	store      storage.Store
	watcher    *storage.Watcher
	controller *app.Controller
	cancel     context.CancelFunc
}

func startRuntime(cfg config.Config) (*runtime, error) {
	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	ensureSounds(cfg)

	rt := &runtime{loop: loop.New(), store: store}
	ctx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	go rt.loop.Run(ctx)

	graphCtx := graph.NewContext(cfg.SampleRate, device.NewOto(deviceBufferSize))
	library := asset.NewLibrary(os.DirFS(cfg.SoundsDir), cfg.SampleRate)
	options := engine.DefaultOptions()
	options.Tones = cfg.Tones()
	options.ToneRamp = cfg.ToneRamp
	options.NoiseFadeIn = cfg.NoiseFadeIn
	options.NoiseFadeOut = cfg.NoiseFadeOut

	var buildErr error
	rt.loop.Call(func() {
		audio := engine.New(graphCtx, rt.loop, library, options)
		rt.controller, buildErr = app.New(rt.loop, store, audio, app.Options{
			Preview:    cfg.Preview,
			BreakAudio: cfg.BreakAudio,
			Tones:      cfg.Tones(),
		})
		if buildErr != nil {
			_ = audio.Close()
		}
	})
	if buildErr != nil {
		rt.close()
		return nil, buildErr
	}

	if yamlStore, ok := store.(*storage.YAMLStore); ok {
		watcher, err := storage.Watch(yamlStore.Path(), rt.controller.Reload)
		if err != nil {
			log.Printf("settings watcher: %v", err)
		} else {
			rt.watcher = watcher
		}
	}
	return rt, nil
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		log.Printf("storage: sqlite %s", cfg.DatabasePath())
		return storage.NewSQLiteStore(cfg.DatabasePath())
	default:
		store := storage.NewYAMLStore(cfg.ConfigDir)
		log.Printf("storage: yaml %s", store.Path())
		return store, nil
	}
}

// ensureSounds renders the noise loops the first time the app runs.
func ensureSounds(cfg config.Config) {
	library := asset.NewLibrary(os.DirFS(cfg.SoundsDir), cfg.SampleRate)
	for name := range asset.Synths {
		if library.Has(name) {
			continue
		}
		written, err := asset.Generate(cfg.SoundsDir, cfg.SampleRate, soundLoopLength, false)
		if err != nil {
			log.Printf("generate sounds: %v", err)
			return
		}
		log.Printf("generated %d sound loops in %s", len(written), cfg.SoundsDir)
		return
	}
}

func (rt *runtime) close() {
	if rt.watcher != nil {
		if err := rt.watcher.Close(); err != nil {
			log.Printf("settings watcher close: %v", err)
		}
	}
	if rt.controller != nil {
		rt.controller.Close()
		rt.loop.Call(func() {})
	}
	rt.loop.Stop()
	rt.cancel()
	if err := rt.store.Close(); err != nil {
		log.Printf("store close: %v", err)
	}
}
