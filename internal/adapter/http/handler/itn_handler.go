package handler

import (
	"errors"
	"net/http"

	"itn-gateway/internal/core/ports"
	"itn-gateway/pkg/apperror"
	"itn-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ITNHandler receives the gateway's server-to-server payment notifications.
type ITNHandler struct {
	itnSvc ports.ITNService
}

// NewITNHandler creates a new ITNHandler.
func NewITNHandler(itnSvc ports.ITNService) *ITNHandler {
	return &ITNHandler{itnSvc: itnSvc}
}

// Notify handles /api/v1/payments/itn. Only POST is processed; any other
// method is acknowledged so the gateway's probes never see an error.
func (h *ITNHandler) Notify(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		response.TextOK(c)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		response.Text(c, apperror.ErrMalformedNotification(err))
		return
	}

	if _, err := h.itnSvc.Process(c.Request.Context(), body, c.GetHeader("Content-Type")); err != nil {
		response.Text(c, err)
		return
	}

	response.TextOK(c)
}
