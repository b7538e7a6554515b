package main

import (
	"context"
	"embed"
	"os"

	"github.com/chazu/zoner/pkg/app"
	"github.com/chazu/zoner/pkg/config"
	"github.com/chazu/zoner/pkg/store"
	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

// loadConfig reads the file named by ZONER_CONFIG, or returns the defaults.
func loadConfig() (config.Config, error) {
	path := os.Getenv("ZONER_CONFIG")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatal(err)
	}
	log := cfg.NamedLogger("main")

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	path, err := cfg.StorePath()
	if err != nil {
		log.Fatal(err)
	}
	s, err := store.Open(context.Background(), path, cfg.NamedLogger("store"))
	if err != nil {
		log.WithError(err).Warn("zone store unavailable, saving disabled")
	} else {
		a.AttachStore(s)
	}

	err = wails.Run(&options.App{
		Title:  "zoner",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  a.Startup,
		OnShutdown: a.Shutdown,
		Bind: []interface{}{
			a,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
