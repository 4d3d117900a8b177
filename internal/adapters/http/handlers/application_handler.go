package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sogecredit/internal/core/domain"
	"sogecredit/internal/core/services"
	"sogecredit/internal/pkg/pagination"
	"sogecredit/internal/pkg/response"
)

// ApplicationHandler handles credit application endpoints
type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// CreateApplicationRequest represents create application request body.
// Dates are sent as "2006-01-02".
type CreateApplicationRequest struct {
	GroupLastName     string  `json:"nom_off_groupe"`
	GroupFirstName    string  `json:"prenom_off_groupe"`
	Branch            string  `json:"succursale"`
	BranchNo          string  `json:"no_succursale"`
	OtherBranch       string  `json:"autre_succursale"`
	ClientLastName    string  `json:"nom_client"`
	ClientFirstName   string  `json:"prenom_client"`
	BirthDate         string  `json:"date_naissance"`
	CIN               string  `json:"cin"`
	ClientAddress     string  `json:"adresse_client"`
	ClientPhone       string  `json:"telephone_client"`
	ClientEmail       string  `json:"email_client"`
	DossierType       string  `json:"type_dossier"`
	CampaignType      string  `json:"type_campagne"`
	CampaignStart     string  `json:"date_debut_campagne"`
	CampaignEnd       string  `json:"date_fin_campagne"`
	RequestedCardType string  `json:"type_carte_application"`
	GeneratedAmount   float64 `json:"montant_genere"`
	Comment           string  `json:"commentaire"`
	OfficerID         *uint   `json:"officer_credit_id"`
}

// UpdateApplicationRequest represents a partial update request body; absent
// fields are left untouched
type UpdateApplicationRequest struct {
	GroupLastName       *string  `json:"nom_off_groupe"`
	GroupFirstName      *string  `json:"prenom_off_groupe"`
	Branch              *string  `json:"succursale"`
	BranchNo            *string  `json:"no_succursale"`
	OtherBranch         *string  `json:"autre_succursale"`
	ClientLastName      *string  `json:"nom_client"`
	ClientFirstName     *string  `json:"prenom_client"`
	BirthDate           *string  `json:"date_naissance"`
	CIN                 *string  `json:"cin"`
	ClientAddress       *string  `json:"adresse_client"`
	ClientPhone         *string  `json:"telephone_client"`
	ClientEmail         *string  `json:"email_client"`
	DossierType         *string  `json:"type_dossier"`
	CampaignType        *string  `json:"type_campagne"`
	CampaignStart       *string  `json:"date_debut_campagne"`
	CampaignEnd         *string  `json:"date_fin_campagne"`
	RequestedCardType   *string  `json:"type_carte_application"`
	Status              *string  `json:"statut"`
	GeneratedAmount     *float64 `json:"montant_genere"`
	Comment             *string  `json:"commentaire"`
	FinalCardType       *string  `json:"type_carte_final"`
	RejectionReason     *string  `json:"raison"`
	ApprovedCreditLimit *float64 `json:"limite_credit_approuve"`
	DecisionDate        *string  `json:"date_decision"`
	ProcessingComment   *string  `json:"commentaire_traitement"`
}

// AssignOfficerRequest represents assign officer request body
type AssignOfficerRequest struct {
	OfficerID uint `json:"officer_credit_id"`
}

// Create handles application creation
// @Summary Create credit application
// @Description Create a new credit card application dossier
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateApplicationRequest true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ClientLastName == "" || req.ClientFirstName == "" {
		return response.BadRequest(c, "Client name is required")
	}
	if req.CIN == "" {
		return response.BadRequest(c, "CIN is required")
	}
	if req.BirthDate == "" {
		return response.BadRequest(c, "Birth date is required")
	}
	if req.Branch == "" {
		return response.BadRequest(c, "Branch is required")
	}
	if req.DossierType == "" {
		return response.BadRequest(c, "Dossier type is required")
	}
	if req.RequestedCardType == "" {
		return response.BadRequest(c, "Requested card type is required")
	}

	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return response.BadRequest(c, "Invalid birth date format (expected YYYY-MM-DD)")
	}
	campaignStart, err := parseDatePtr(req.CampaignStart)
	if err != nil {
		return response.BadRequest(c, "Invalid campaign start date format")
	}
	campaignEnd, err := parseDatePtr(req.CampaignEnd)
	if err != nil {
		return response.BadRequest(c, "Invalid campaign end date format")
	}

	input := &services.CreateApplicationInput{
		GroupLastName:     strings.TrimSpace(req.GroupLastName),
		GroupFirstName:    strings.TrimSpace(req.GroupFirstName),
		Branch:            req.Branch,
		BranchNo:          req.BranchNo,
		OtherBranch:       req.OtherBranch,
		ClientLastName:    strings.TrimSpace(req.ClientLastName),
		ClientFirstName:   strings.TrimSpace(req.ClientFirstName),
		BirthDate:         birthDate,
		CIN:               strings.TrimSpace(req.CIN),
		ClientAddress:     req.ClientAddress,
		ClientPhone:       req.ClientPhone,
		ClientEmail:       req.ClientEmail,
		DossierType:       req.DossierType,
		CampaignType:      req.CampaignType,
		CampaignStart:     campaignStart,
		CampaignEnd:       campaignEnd,
		RequestedCardType: req.RequestedCardType,
		GeneratedAmount:   req.GeneratedAmount,
		Comment:           req.Comment,
		OfficerID:         req.OfficerID,
	}

	app, err := h.applicationService.Create(c.Context(), actor, input, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err, "Failed to create application")
	}

	return response.Created(c, "Application created successfully", app.ToResponse())
}

// List handles application listing
// @Summary List credit applications
// @Description List applications visible to the current user, with filters
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param statut query string false "Status filter"
// @Param succursale query string false "Branch filter"
// @Param type_dossier query string false "Dossier type filter"
// @Param search query string false "Search (application id, client name, cin)"
// @Param date_from query string false "Entry date from (YYYY-MM-DD)"
// @Param date_to query string false "Entry date to (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	input := &services.ListApplicationsInput{
		Page:        params.Page,
		Limit:       params.Limit,
		Branch:      c.Query("succursale"),
		DossierType: c.Query("type_dossier"),
		Search:      c.Query("search"),
	}

	if raw := c.Query("statut"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		input.Status = &status
	}

	var err error
	if input.DateFrom, err = parseDatePtr(c.Query("date_from")); err != nil {
		return response.BadRequest(c, "Invalid date_from format (expected YYYY-MM-DD)")
	}
	if input.DateTo, err = parseDatePtr(c.Query("date_to")); err != nil {
		return response.BadRequest(c, "Invalid date_to format (expected YYYY-MM-DD)")
	}

	result, err := h.applicationService.List(c.Context(), actor, input)
	if err != nil {
		return mapDomainError(c, err, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", result)
}

// GetByID handles single application retrieval
// @Summary Get credit application
// @Description Get one application by id, within the user's visibility
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetByID(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application id")
	}

	app, err := h.applicationService.GetByID(c.Context(), actor, id)
	if err != nil {
		return mapDomainError(c, err, "Failed to get application")
	}

	return response.Success(c, "Application retrieved successfully", app.ToResponse())
}

// Update handles partial application update
// @Summary Update credit application
// @Description Apply a partial change set to an application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body UpdateApplicationRequest true "Changed fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id} [patch]
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application id")
	}

	var req UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	app, err := h.applicationService.Update(c.Context(), actor, id, input, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err, "Failed to update application")
	}

	return response.Success(c, "Application updated successfully", app.ToResponse())
}

// AssignOfficer handles officer assignment
// @Summary Assign credit officer
// @Description Assign or reassign the credit officer of an application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body AssignOfficerRequest true "Officer id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id}/assign-officer [post]
func (h *ApplicationHandler) AssignOfficer(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application id")
	}

	var req AssignOfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OfficerID == 0 {
		return response.BadRequest(c, "Officer id is required")
	}

	app, err := h.applicationService.AssignOfficer(c.Context(), actor, id, req.OfficerID, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err, "Failed to assign officer")
	}

	return response.Success(c, "Officer assigned successfully", app.ToResponse())
}

// Delete handles application deletion
// @Summary Delete credit application
// @Description Soft delete an application (manager only)
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application id")
	}

	if err := h.applicationService.Delete(c.Context(), actor, id, requestMeta(c)); err != nil {
		return mapDomainError(c, err, "Failed to delete application")
	}

	return response.Success(c, "Application deleted successfully", nil)
}

// History handles the application business trail listing
// @Summary Application history
// @Description List the application's history entries, newest first
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id}/history [get]
func (h *ApplicationHandler) History(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application id")
	}

	entries, err := h.applicationService.History(c.Context(), actor, id)
	if err != nil {
		return mapDomainError(c, err, "Failed to get application history")
	}

	return response.Success(c, "History retrieved successfully", entries)
}

// toInput converts the request body to the service input, parsing dates
func (req *UpdateApplicationRequest) toInput() (*services.UpdateApplicationInput, error) {
	input := &services.UpdateApplicationInput{
		GroupLastName:       req.GroupLastName,
		GroupFirstName:      req.GroupFirstName,
		Branch:              req.Branch,
		BranchNo:            req.BranchNo,
		OtherBranch:         req.OtherBranch,
		ClientLastName:      req.ClientLastName,
		ClientFirstName:     req.ClientFirstName,
		CIN:                 req.CIN,
		ClientAddress:       req.ClientAddress,
		ClientPhone:         req.ClientPhone,
		ClientEmail:         req.ClientEmail,
		DossierType:         req.DossierType,
		CampaignType:        req.CampaignType,
		RequestedCardType:   req.RequestedCardType,
		GeneratedAmount:     req.GeneratedAmount,
		Comment:             req.Comment,
		FinalCardType:       req.FinalCardType,
		RejectionReason:     req.RejectionReason,
		ApprovedCreditLimit: req.ApprovedCreditLimit,
		ProcessingComment:   req.ProcessingComment,
	}

	if req.Status != nil {
		status := domain.Status(*req.Status)
		input.Status = &status
	}

	var err error
	if req.BirthDate != nil {
		if input.BirthDate, err = parseDatePtr(*req.BirthDate); err != nil {
			return nil, err
		}
	}
	if req.CampaignStart != nil {
		if input.CampaignStart, err = parseDatePtr(*req.CampaignStart); err != nil {
			return nil, err
		}
	}
	if req.CampaignEnd != nil {
		if input.CampaignEnd, err = parseDatePtr(*req.CampaignEnd); err != nil {
			return nil, err
		}
	}
	if req.DecisionDate != nil {
		if input.DecisionDate, err = parseDatePtr(*req.DecisionDate); err != nil {
			return nil, err
		}
	}

	return input, nil
}

// parseID reads the :id path parameter
func parseID(c *fiber.Ctx) (uint, error) {
	raw, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}
