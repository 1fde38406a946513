package main

import (
	"flag"
	"fmt"

	"github.com/danmuck/g2dtex/internal/archive"
	"github.com/danmuck/g2dtex/internal/config"
	"github.com/danmuck/g2dtex/internal/library"
	"github.com/danmuck/g2dtex/internal/observability"
	"github.com/danmuck/g2dtex/internal/renderer"
	"github.com/danmuck/g2dtex/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "cmd/g2dctl/config.toml", "service config path")
	serve := flag.Bool("serve", false, "serve the inspection API after loading (overrides config)")
	flag.Parse()

	logger := observability.InitLogger("g2dctl")
	cfg, err := config.LoadServiceConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load service config")
	}
	log.Info().Str("path", *configPath).Msg("loaded service config")

	paths := append(config.ManifestPaths(cfg, *configPath), flag.Args()...)
	catalog := renderer.NewCatalog(logger)
	lib, err := loadLibrary(logger, catalog, paths)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load g2d archives")
	}
	lib.ForEach(func(g *library.G2D) {
		log.Info().
			Str("g2d", g.Name).
			Int("materials", len(g.Materials)).
			Int("textures", g.TextureCount()).
			Msg("g2d ready")
	})
	log.Info().Int("g2d", lib.Count()).Int("textures", catalog.Len()).Msg("library loaded")

	if !cfg.Serve && !*serve {
		return
	}
	srv := server.New(cfg.Name, cfg.Addr, cfg.CorsOrigins, lib, catalog)
	if err := srv.Serve(); err != nil {
		log.Fatal().Err(err).Msg("inspection server stopped")
	}
}

func loadLibrary(logger zerolog.Logger, backend renderer.Backend, paths []string) (*library.Library, error) {
	lib := library.New(backend, logger)
	for _, path := range paths {
		a, err := archive.Open(path)
		if err != nil {
			return nil, err
		}
		if _, err := lib.Add(a); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return lib, nil
}
