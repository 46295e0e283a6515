package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"venchmarks/internal/auth"
	"venchmarks/internal/credential"
	"venchmarks/internal/registrar"
	"venchmarks/internal/repository"
	"venchmarks/internal/signer"
	"venchmarks/internal/venchup"
)

// Messages shown for rejected requests.
const (
	msgInvalidName      = "Invalid machine name!"
	msgDuplicateName    = "Error: a machine with that name already exists!"
	msgMissingParameter = "Error: must provide machine name and private key!"
	msgInvalidParameter = "Error: machine name or private key contains invalid characters!"
	msgInvalidHardware  = "Error: hardware description must be the JSON object printed by venchup hwinfo!"
)

// GET /register-machine
func (h *Handler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", h.page(c, "Register a machine", nil))
}

// POST /register-machine
func (h *Handler) RegisterMachine(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, auth.LoginURL(h.loginURL, c.Request.URL.RequestURI()))
		return
	}

	reg, err := h.registrar.Register(c.Request.Context(), registrar.RegisterRequest{
		Name:        c.PostForm("machine-name"),
		Description: c.PostForm("description"),
		Hardware:    c.PostForm("hardware"),
		Owner:       user.ID,
	})
	switch {
	case errors.Is(err, registrar.ErrInvalidName):
		c.String(http.StatusBadRequest, msgInvalidName)
		return
	case errors.Is(err, registrar.ErrDuplicateName):
		c.String(http.StatusConflict, msgDuplicateName)
		return
	case errors.Is(err, registrar.ErrInvalidHardware):
		c.String(http.StatusBadRequest, msgInvalidHardware)
		return
	case err != nil:
		h.internalError(c, "could not register machine", err)
		return
	}

	download := url.Values{
		"machine": {reg.Machine.Name},
		"privkey": {reg.EscapedKey},
	}
	c.HTML(http.StatusOK, "registered.html", h.page(c, "Machine registered", gin.H{
		"Machine":     reg.Machine,
		"Fingerprint": credential.Fingerprint(reg.Machine.PublicKey),
		"Script":      reg.Script,
		"DownloadURL": "/" + venchup.FileName + "?" + download.Encode(),
	}))
}

// GET /venchup.py?machine=:name&privkey=:key
func (h *Handler) DownloadScript(c *gin.Context) {
	machine := c.Query("machine")
	privkey := c.Query("privkey")
	if machine == "" || privkey == "" {
		c.String(http.StatusBadRequest, msgMissingParameter)
		return
	}
	if err := registrar.ValidateName(machine); err != nil {
		c.String(http.StatusBadRequest, msgInvalidName)
		return
	}

	// A registered machine keeps the digest it was issued with.
	var digest signer.Digest
	m, err := h.store.GetMachineByName(c.Request.Context(), machine)
	switch {
	case err == nil:
		digest = signer.Digest(m.Digest)
	case !errors.Is(err, repository.ErrNotFound):
		h.internalError(c, "could not look up machine", err)
		return
	}

	script, err := venchup.RenderString(h.registrar.ScriptParams(machine, privkey, digest))
	switch {
	case errors.Is(err, venchup.ErrMissingParameter):
		c.String(http.StatusBadRequest, msgMissingParameter)
		return
	case errors.Is(err, venchup.ErrInvalidParameter):
		c.String(http.StatusBadRequest, msgInvalidParameter)
		return
	case err != nil:
		h.internalError(c, "could not render script", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+venchup.FileName+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(script))
}
