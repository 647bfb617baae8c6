package api

import (
	"fmt"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/satindergrewal/harmonix/internal/catalog"
	"github.com/satindergrewal/harmonix/internal/generation"
	"github.com/satindergrewal/harmonix/internal/synth"
)

// GenerationHandler serves the synthesis endpoints.
type GenerationHandler struct {
	svc     *generation.Service
	version string
}

// NewGenerationHandler creates the handler for the synthesis endpoints.
func NewGenerationHandler(svc *generation.Service, version string) *GenerationHandler {
	return &GenerationHandler{svc: svc, version: version}
}

// Root describes the service.
func (h *GenerationHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Harmonix music generation API",
		"version":  h.version,
		"features": []string{"Procedural synthesis", "Style modifiers", "Prompt-based generation", "Live radio"},
	})
}

// Health reports service readiness. The procedural renderer is always loaded.
func (h *GenerationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"device":        "cpu",
		"model_loaded":  true,
		"model_loading": false,
		"lora_adapters": h.svc.Catalog().LoadedCount(),
		"in_flight":     h.svc.InFlight(),
		"service":       "Harmonix music generation API",
	})
}

// Generate renders a track and returns it base64-encoded in JSON.
func (h *GenerationHandler) Generate(c *gin.Context) {
	res, ok := h.render(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, generation.NewResponse(res))
}

// GenerateWAV renders a track and returns the raw WAV file.
func (h *GenerationHandler) GenerateWAV(c *gin.Context) {
	res, ok := h.render(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", attachment(fmt.Sprintf("harmonix-%s-%d.wav", res.Style, res.Seed)))
	c.Header("X-Seed", strconv.FormatUint(res.Seed, 10))
	c.Header("X-Style", res.Style.String())
	c.Data(http.StatusOK, "audio/wav", res.WAV)
}

func (h *GenerationHandler) render(c *gin.Context) (*generation.Result, bool) {
	var body generation.GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, generation.ErrorResponse{
			Error:   string(synth.KindInvalidParameter),
			Message: "invalid request body: " + err.Error(),
		})
		return nil, false
	}

	res, err := h.svc.Generate(c.Request.Context(), body.Request())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

// Models lists the advertised style modifiers.
func (h *GenerationHandler) Models(c *gin.Context) {
	names := h.svc.Catalog().Names()
	c.JSON(http.StatusOK, gin.H{
		"available_models": names,
		"total_models":     len(names),
		"lora_support":     true,
	})
}

// Lora describes one style modifier. Unknown names still answer, as
// not_loaded with an empty config.
func (h *GenerationHandler) Lora(c *gin.Context) {
	name := c.Param("name")
	cat := h.svc.Catalog()

	status := "not_loaded"
	if cat.Loaded(name) {
		status = "available"
	}

	config := gin.H{}
	description := fmt.Sprintf("Style modifier for %s music generation", strings.TrimSuffix(name, "-lora"))
	if m, ok := cat.Lookup(name); ok {
		config = loraConfig(m)
		description = m.Description
	}

	c.JSON(http.StatusOK, gin.H{
		"model_name":  name,
		"status":      status,
		"config":      config,
		"description": description,
	})
}

// attachment builds a Content-Disposition value, quoting or encoding
// filename as needed.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func loraConfig(m catalog.Modifier) gin.H {
	return gin.H{
		"r":              m.Rank,
		"alpha":          m.Alpha,
		"target_modules": m.TargetModules,
	}
}

// respondError maps a generation error to a status code and reports server
// faults to Sentry.
func respondError(c *gin.Context, err error) {
	body := generation.NewErrorResponse(err)

	status := http.StatusInternalServerError
	switch body.Error {
	case string(synth.KindInvalidParameter):
		status = http.StatusBadRequest
	case generation.KindUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.Printf("Generation failed [%s]: %v", c.GetString(requestIDKey), err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("error_kind", body.Error)
				hub.CaptureException(err)
			})
		}
	}
	c.JSON(status, body)
}
