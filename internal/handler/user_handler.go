package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"venchmarks/internal/auth"
)

// GET /users/view/:id
// :id is an owner id, or "me" for the current user.
func (h *Handler) ViewUser(c *gin.Context) {
	owner := c.Param("id")
	if owner == "me" {
		user := auth.CurrentUser(c)
		if user == nil {
			c.String(http.StatusUnauthorized, "You must be logged in to view your user page!")
			return
		}
		owner = user.ID
	}

	machines, err := h.store.ListMachinesByOwner(c.Request.Context(), owner)
	if err != nil {
		h.internalError(c, "could not load machines", err)
		return
	}

	c.HTML(http.StatusOK, "user.html", h.page(c, owner, gin.H{
		"Owner":    owner,
		"Machines": machines,
	}))
}
