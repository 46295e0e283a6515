package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GET /
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	compilers, err := h.store.ListCompilers(ctx)
	if err != nil {
		h.internalError(c, "could not load compilers", err)
		return
	}
	machines, err := h.store.ListMachines(ctx)
	if err != nil {
		h.internalError(c, "could not load machines", err)
		return
	}
	benchmarks, err := h.store.ListBenchmarks(ctx)
	if err != nil {
		h.internalError(c, "could not load benchmarks", err)
		return
	}
	results, err := h.store.ListResults(ctx)
	if err != nil {
		h.internalError(c, "could not load results", err)
		return
	}

	c.HTML(http.StatusOK, "index.html", h.page(c, "", gin.H{
		"Compilers":  compilers,
		"Machines":   machines,
		"Benchmarks": benchmarks,
		"Results":    results,
	}))
}

// GET /api/results
// GET /api/results?benchmark_id=:id
func (h *Handler) GetResults(c *gin.Context) {
	ctx := c.Request.Context()

	idStr := c.Query("benchmark_id")
	if idStr == "" {
		results, err := h.store.ListResults(ctx)
		if err != nil {
			h.logger.Error("list results", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load results"})
			return
		}
		c.JSON(http.StatusOK, nonNil(results))
		return
	}

	benchmarkID, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid benchmark id"})
		return
	}
	results, err := h.store.ListResultsByBenchmark(ctx, benchmarkID)
	if err != nil {
		h.logger.Error("list results", "err", err, "benchmark_id", benchmarkID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load results"})
		return
	}
	c.JSON(http.StatusOK, nonNil(results))
}

// nonNil keeps empty listings as [] rather than null in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
