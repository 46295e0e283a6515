package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venchmarks/internal/auth"
	"venchmarks/internal/venchup"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterOptions struct {
	Auth   auth.Options
	Logger *slog.Logger
	DB     Pinger
}

func NewRouter(h *Handler, opts RouterOptions) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), auth.Middleware(opts.Auth))
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/css", StaticFS())

	requireLogin := auth.RequireLogin(opts.Auth.LoginURL)

	r.GET("/", h.Index)
	r.GET("/register-machine", requireLogin, h.RegisterForm)
	r.POST("/register-machine", requireLogin, h.RegisterMachine)
	r.GET("/"+venchup.FileName, h.DownloadScript)
	r.GET("/users/view/:id", requireLogin, h.ViewUser)
	r.POST("/upload", h.Upload)
	r.GET("/api/results", h.GetResults)
	r.GET("/healthz", func(c *gin.Context) {
		if opts.DB != nil {
			if err := opts.DB.PingContext(c.Request.Context()); err != nil {
				logger.Error("health check failed", "err", err)
				c.String(http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		c.String(http.StatusOK, "ok")
	})

	return r, nil
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
