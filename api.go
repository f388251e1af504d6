package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"novamcp/nova"
)

const apiVersion = "1.0.0"

type frameRequest struct {
	Hex string `json:"hex" binding:"required"`
	All bool   `json:"all"`
}

type setRequest struct {
	Hex   string `json:"hex" binding:"required"`
	Slot  *int   `json:"slot" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type renameRequest struct {
	Hex  string `json:"hex" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type copyRequest struct {
	Hex    string `json:"hex" binding:"required"`
	Preset string `json:"preset" binding:"required"`
}

type ccRequest struct {
	Hex      string `json:"hex" binding:"required"`
	Function string `json:"function" binding:"required"`
	CC       string `json:"cc" binding:"required"`
}

type programMapRequest struct {
	Hex       string `json:"hex" binding:"required"`
	Direction string `json:"direction" binding:"required"`
	From      string `json:"from" binding:"required"`
	To        string `json:"to" binding:"required"`
}

type settingsRequest struct {
	Hex      string `json:"hex" binding:"required"`
	Settings string `json:"settings" binding:"required"`
}

// newAPI builds the HTTP surface over the codec. It never touches the MIDI
// ports.
func newAPI(cfg Config, logger zerolog.Logger) *gin.Engine {
	registerMetrics(cfg.Metrics.Namespace)
	started := time.Now()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(requestMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.HTTP.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(started).String(),
			"service": "novamcp",
			"version": apiVersion,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/frames/describe", handleDescribe)
	v1.POST("/frames/validate", handleValidate)
	v1.POST("/frames/set", handleSet)
	v1.POST("/presets/rename", handleRename)
	v1.POST("/presets/copy", handleCopy)
	v1.POST("/system/cc", handleCC)
	v1.POST("/system/program-map", handleProgramMap)
	v1.POST("/system/settings", handleSettings)
	v1.GET("/catalog/:type", handleCatalog)
	v1.GET("/layout/:block", handleLayout)
	v1.GET("/layout/:block/:mode", handleLayout)
	return r
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}

// serve runs the API until the listener fails.
func serve(cfg Config, logger zerolog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	r := newAPI(cfg, logger)
	log.Info().Str("addr", cfg.HTTP.Addr).Msg("serving HTTP API")
	return r.Run(cfg.HTTP.Addr)
}

func bindFrame(c *gin.Context) (nova.Frame, frameRequest, bool) {
	var req frameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, req, false
	}
	b, err := decodeHex(req.Hex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, req, false
	}
	f, err := parseFrame(b)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, req, false
	}
	return f, req, true
}

func handleDescribe(c *gin.Context) {
	f, req, ok := bindFrame(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, describe(f, req.All))
}

func handleValidate(c *gin.Context) {
	f, _, ok := bindFrame(c)
	if !ok {
		return
	}
	if err := f.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"valid":  false,
			"kind":   f.Kind().String(),
			"reason": invalidReason(err),
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"kind":     f.Kind().String(),
		"checksum": f.Checksum(),
	})
}

func handleSet(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rep, err := editFrame(req.Hex, *req.Slot, req.Value)
	if err != nil {
		c.JSON(editStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// editStatus is 422 for a frame that fails validation and 400 otherwise.
func editStatus(err error) int {
	var verr *nova.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func respondFrame(c *gin.Context, f nova.Frame, err error) {
	if err != nil {
		c.JSON(editStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, hexReport(f))
}

func handleRename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := editHexFrame(req.Hex, renameEdit(req.Name))
	respondFrame(c, f, err)
}

func handleCopy(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := copyHex(req.Hex, req.Preset)
	if err != nil {
		c.JSON(editStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, hexReport(p))
}

func handleCC(c *gin.Context) {
	var req ccRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := editHexFrame(req.Hex, ccEdit(req.Function, req.CC))
	respondFrame(c, f, err)
}

func handleProgramMap(c *gin.Context) {
	var req programMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := editHexFrame(req.Hex, programMapEdit(req.Direction, req.From, req.To))
	respondFrame(c, f, err)
}

func handleSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := editHexFrame(req.Hex, systemSettingsEdit(req.Settings))
	respondFrame(c, f, err)
}

func handleCatalog(c *gin.Context) {
	rep, err := describeType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func handleLayout(c *gin.Context) {
	mode := 0
	if m := c.Param("mode"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be a number"})
			return
		}
		mode = v
	}
	lay, err := nova.Dispatch(nova.Block(c.Param("block")), mode)
	if err != nil {
		if errors.Is(err, nova.ErrUnknownBlock) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lay)
}
