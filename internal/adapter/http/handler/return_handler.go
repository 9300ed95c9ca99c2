package handler

import (
	"net/http"

	"itn-gateway/internal/adapter/http/dto"
	"itn-gateway/internal/core/domain"
	"itn-gateway/internal/core/ports"
	"itn-gateway/pkg/apperror"
	"itn-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReturnHandler handles the payer's browser coming back from the gateway.
type ReturnHandler struct {
	returnSvc   ports.ReturnService
	redirectURL string
}

// NewReturnHandler creates a new ReturnHandler. An empty redirectURL sends
// the browser to "/".
func NewReturnHandler(returnSvc ports.ReturnService, redirectURL string) *ReturnHandler {
	if redirectURL == "" {
		redirectURL = "/"
	}
	return &ReturnHandler{returnSvc: returnSvc, redirectURL: redirectURL}
}

// Return handles GET /api/v1/payments/return?pay=success|cancel&pid=<id>.
func (h *ReturnHandler) Return(c *gin.Context) {
	q := dto.ReturnQuery{Pay: c.Query("pay"), Pid: c.Query("pid")}
	q.Normalize()
	if err := dto.Validate(&q); err != nil {
		response.Text(c, apperror.ErrInvalidReturn())
		return
	}

	if _, err := h.returnSvc.HandleReturn(c.Request.Context(), domain.ReturnOutcome(q.Pay), q.Pid, c.ClientIP()); err != nil {
		response.Text(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.redirectURL)
}
