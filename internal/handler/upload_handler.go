package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"venchmarks/internal/ingest"
)

// POST /upload
// Form fields: machine, hexmac, payload.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 4*ingest.MaxPayloadBytes)
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Error: could not read form: %v", err)
		return
	}

	results, err := h.ingester.Ingest(c.Request.Context(), c.Request.PostForm)
	switch {
	case errors.Is(err, ingest.ErrUnknownMachine), errors.Is(err, ingest.ErrBadSignature):
		c.String(http.StatusForbidden, "Error: %v", err)
		return
	case errors.Is(err, ingest.ErrMissingParameter),
		errors.Is(err, ingest.ErrMalformedPayload),
		errors.Is(err, ingest.ErrUnknownBenchmark):
		c.String(http.StatusBadRequest, "Error: %v", err)
		return
	case err != nil:
		h.internalError(c, "could not store results", err)
		return
	}

	c.String(http.StatusOK, "stored %d result(s)", len(results))
}
