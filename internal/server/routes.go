package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/g2dtex/internal/archive"
	"github.com/danmuck/g2dtex/internal/library"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

// G2DSummary is one row of GET /g2d.
type G2DSummary struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Materials int    `json:"materials"`
	Textures  int    `json:"textures"`
}

// MaterialView is the body of GET /materials/:key.
type MaterialView struct {
	*library.Material
	G2D   string `json:"g2d"`
	InUse bool   `json:"in_use"`
}

func (s *Server) registerRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"g2d":     s.library.Count(),
			"service": s.Name,
			"version": version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/g2d", func(c *gin.Context) {
		list := make([]G2DSummary, 0, s.library.Count())
		s.library.ForEach(func(g *library.G2D) {
			list = append(list, G2DSummary{
				Name:      g.Name,
				ShortName: g.ShortName,
				Materials: len(g.Materials),
				Textures:  g.TextureCount(),
			})
		})
		c.JSON(http.StatusOK, gin.H{"g2d": list})
	})

	r.GET("/g2d/:name", func(c *gin.Context) {
		g, ok := s.library.Find(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "g2d not found"})
			return
		}
		c.JSON(http.StatusOK, g)
	})

	r.GET("/materials/:key", func(c *gin.Context) {
		key, err := archive.ParseKey(c.Param("key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		m, err := s.library.FindMaterial(key)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, MaterialView{
			Material: m,
			G2D:      m.G2D().Name,
			InUse:    m.InUse(s.library.Backend()),
		})
	})

	r.POST("/materials/:key/bind", func(c *gin.Context) {
		material, err := archive.ParseKey(c.Param("key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bitmap, err := archive.ParseKey(c.Query("bitmap"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := s.library.BindFromDMAMaterial(library.DMAMaterial{Material: material, Bitmap: bitmap}); err != nil {
			_ = c.Error(err)
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "bound", "material": material, "bitmap": bitmap})
	})

	r.GET("/textures", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"textures": s.textures.Entries()})
	})

	r.POST("/frame/end", func(c *gin.Context) {
		s.textures.EndFrame()
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func statusFor(err error) int {
	if errors.Is(err, library.ErrMaterialNotFound) || errors.Is(err, library.ErrTextureNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
