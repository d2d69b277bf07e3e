package cli

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/quire/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quire/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quire/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
	"github.com/custodia-labs/quire/internal/core/services"
)

// App holds the stores and services shared by commands.
type App struct {
	Dir      string
	Config   driven.ConfigStore
	Runs     driven.RunStore
	Settings *services.SettingsService
	History  driving.HistoryService

	closers []func() error
}

// AppOptions are the root flags that decide how the App is built.
type AppOptions struct {
	NoConfig  bool
	ConfigDir string
}

// NewApp builds the App. Tests replace it to inject in-memory stores.
var NewApp = newApp

var app *App

func newApp(opts AppOptions) (*App, error) {
	if opts.NoConfig {
		return NewMemoryApp(), nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = file.DefaultDir(); err != nil {
			return nil, err
		}
	}

	cfg, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	runs, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}

	a := newAppWith(cfg, runs)
	a.Dir = dir
	a.closers = append(a.closers, runs.Close)
	return a, nil
}

// NewMemoryApp returns an App whose settings and history live in memory.
func NewMemoryApp() *App {
	return newAppWith(memory.NewConfigStore(), memory.NewRunStore())
}

func newAppWith(cfg driven.ConfigStore, runs driven.RunStore) *App {
	return &App{
		Config:   cfg,
		Runs:     runs,
		Settings: services.NewSettingsService(cfg),
		History:  services.NewHistoryService(runs),
	}
}

// Path resolves a path relative to the configuration directory.
// Absolute paths and an empty App directory return name unchanged.
func (a *App) Path(name string) string {
	if name == "" || filepath.IsAbs(name) || a.Dir == "" {
		return name
	}
	return filepath.Join(a.Dir, name)
}

// Close releases the stores.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func openApp() error {
	if app != nil {
		return nil
	}
	a, err := NewApp(AppOptions{NoConfig: noConfig, ConfigDir: configDir})
	if err != nil {
		return err
	}
	app = a
	return nil
}

func closeApp() error {
	if app == nil {
		return nil
	}
	err := app.Close()
	app = nil
	return err
}
