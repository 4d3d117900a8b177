package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sogecredit/internal/core/domain"
	"sogecredit/internal/core/services"
	"sogecredit/internal/pkg/response"
)

// ReportHandler handles report and dashboard endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportRequest represents report filter request body
type ReportRequest struct {
	DateFrom    string `json:"date_debut"`
	DateTo      string `json:"date_fin"`
	Branch      string `json:"succursale"`
	DossierType string `json:"type_dossier"`
	Status      string `json:"statut"`
	OfficerID   *uint  `json:"officer_credit_id"`
}

// Report handles filtered report generation
// @Summary Generate report
// @Description Aggregate statistics and matching applications for a filter
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReportRequest true "Report filter"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reports [post]
func (h *ReportHandler) Report(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.ReportInput{
		Branch:      req.Branch,
		DossierType: req.DossierType,
		OfficerID:   req.OfficerID,
	}

	if req.Status != "" {
		status := domain.Status(req.Status)
		if !status.Valid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		input.Status = &status
	}

	var err error
	if input.DateFrom, err = parseDatePtr(req.DateFrom); err != nil {
		return response.BadRequest(c, "Invalid date_debut format (expected YYYY-MM-DD)")
	}
	if input.DateTo, err = parseDatePtr(req.DateTo); err != nil {
		return response.BadRequest(c, "Invalid date_fin format (expected YYYY-MM-DD)")
	}

	result, err := h.reportService.Report(c.Context(), actor, input)
	if err != nil {
		return mapDomainError(c, err, "Failed to generate report")
	}

	return response.Success(c, "Report generated successfully", result)
}

// Dashboard handles the per-role dashboard statistics
// @Summary Dashboard statistics
// @Description Per-role dashboard numbers for the current user
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	stats, err := h.reportService.Dashboard(c.Context(), actor)
	if err != nil {
		return mapDomainError(c, err, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", stats)
}
