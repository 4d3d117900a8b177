package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/pkg/pagination"
	"sogecredit/internal/pkg/response"
)

// AuditHandler handles security trail endpoints
type AuditHandler struct {
	auditRepo repositories.AuditLogRepository
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditRepo repositories.AuditLogRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// List handles audit log listing
// @Summary List audit logs
// @Description Browse the security trail, newest first (manager only)
// @Tags Audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	entries, total, err := h.auditRepo.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list audit logs")
	}

	return response.Success(c, "Audit logs retrieved successfully", pagination.NewResponse(entries, params, total))
}
