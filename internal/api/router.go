// Package api exposes generation and the radio over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/satindergrewal/harmonix/internal/generation"
)

// Options tunes the router.
type Options struct {
	Version     string
	Sentry      bool   // attach the Sentry middleware
	AllowOrigin string // CORS origin, "*" when empty
}

// SetupRouter builds the HTTP router. radio may be nil, in which case only
// the generation endpoints are served.
func SetupRouter(svc *generation.Service, radio *Radio, opts Options) *gin.Engine {
	if opts.AllowOrigin == "" {
		opts.AllowOrigin = "*"
	}

	router := gin.New()

	// must be first
	router.Use(RecoverWithSentry())
	if opts.Sentry {
		router.Use(SentryMiddleware())
	}
	router.Use(RequestTracking())
	router.Use(CORS(opts.AllowOrigin))

	gen := NewGenerationHandler(svc, opts.Version)
	router.GET("/", gen.Root)
	router.GET("/health", gen.Health)
	router.POST("/generate", gen.Generate)
	router.POST("/generate/wav", gen.GenerateWAV)
	router.GET("/models", gen.Models)
	router.GET("/lora/:name", gen.Lora)

	if radio != nil {
		rh := NewRadioHandler(radio)
		router.GET("/stream", rh.Stream)
		router.POST("/offer", gin.WrapH(radio.WebRTC))

		api := router.Group("/api")
		{
			api.GET("/status", rh.Status)
			api.POST("/style", rh.SetStyle)
			api.POST("/skip", rh.Skip)
			api.POST("/autodj", rh.AutoDJ)
			api.POST("/config", rh.Config)
			api.GET("/save", rh.Save)
		}
	}

	return router
}
