package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"venchmarks/internal/auth"
	"venchmarks/internal/ingest"
	"venchmarks/internal/models"
	"venchmarks/internal/registrar"
)

// Store is the read side used by the pages and the script download.
type Store interface {
	ListCompilers(ctx context.Context) ([]models.Compiler, error)
	ListMachines(ctx context.Context) ([]models.Machine, error)
	ListMachinesByOwner(ctx context.Context, owner string) ([]models.Machine, error)
	GetMachineByName(ctx context.Context, name string) (*models.Machine, error)
	ListBenchmarks(ctx context.Context) ([]models.Benchmark, error)
	ListResults(ctx context.Context) ([]models.BenchmarkResult, error)
	ListResultsByBenchmark(ctx context.Context, benchmarkID int) ([]models.BenchmarkResult, error)
}

type Handler struct {
	store     Store
	registrar *registrar.Registrar
	ingester  *ingest.Ingester
	loginURL  string
	logger    *slog.Logger
}

func New(store Store, reg *registrar.Registrar, in *ingest.Ingester, loginURL string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     store,
		registrar: reg,
		ingester:  in,
		loginURL:  loginURL,
		logger:    logger,
	}
}

// page returns the template values every page's header needs, plus extra.
func (h *Handler) page(c *gin.Context, title string, extra gin.H) gin.H {
	values := gin.H{
		"Title":     title,
		"User":      auth.CurrentUser(c),
		"LoginURL":  auth.LoginURL(h.loginURL, c.Request.URL.RequestURI()),
		"LogoutURL": auth.LogoutURL(h.loginURL),
	}
	for k, v := range extra {
		values[k] = v
	}
	return values
}

// internalError logs err and answers with a generic message.
func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "err", err, "path", c.Request.URL.Path)
	c.String(http.StatusInternalServerError, "Error: %s", msg)
}
