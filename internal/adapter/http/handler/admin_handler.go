package handler

import (
	"time"

	"itn-gateway/internal/adapter/http/dto"
	"itn-gateway/internal/core/domain"
	"itn-gateway/internal/core/ports"
	"itn-gateway/pkg/apperror"
	"itn-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles the manual override endpoints.
type AdminHandler struct {
	adminSvc ports.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// MarkPaid handles POST /api/v1/admin/applications/:id/paid.
func (h *AdminHandler) MarkPaid(c *gin.Context) {
	var req dto.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rec, err := h.adminSvc.MarkPaid(c.Request.Context(), c.Param("id"), req.AdminPassword, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toApplicationResponse(rec))
}

func toApplicationResponse(rec *domain.ApplicationRecord) dto.ApplicationResponse {
	resp := dto.ApplicationResponse{
		ID:               rec.ID,
		Paid:             rec.Paid,
		PaymentMethod:    rec.PaymentMethod,
		PaymentReference: rec.PaymentReference,
		Notes:            rec.Notes,
	}
	if rec.PaymentDate != nil {
		s := rec.PaymentDate.UTC().Format(time.RFC3339)
		resp.PaymentDate = &s
	}
	return resp
}
