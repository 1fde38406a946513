// Package server exposes the texture library over HTTP for inspection.
package server

import (
	"time"

	"github.com/danmuck/g2dtex/internal/library"
	"github.com/danmuck/g2dtex/internal/observability"
	"github.com/danmuck/g2dtex/internal/renderer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// TextureCatalog lists created textures and closes frames.
type TextureCatalog interface {
	Entries() []renderer.Entry
	EndFrame()
}

type Server struct {
	Name     string
	Addr     string
	Appeared time.Time

	library  *library.Library
	textures TextureCatalog
	router   *gin.Engine
}

func New(name, addr string, corsOrigins []string, lib *library.Library, textures TextureCatalog) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Name:     name,
		Addr:     addr,
		Appeared: time.Now(),
		library:  lib,
		textures: textures,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	log.Info().Str("service", s.Name).Str("addr", s.Addr).Msg("inspection server listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
