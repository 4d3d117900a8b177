package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/core/domain"
	"sogecredit/internal/core/permissions"
)

// ApplicationService drives the credit application lifecycle. Every mutation
// runs inside one unit of work with a row lock on the application; the
// history entry is part of the transaction, while notifications and audit
// records are dispatched after commit and are best-effort.
type ApplicationService struct {
	uow      repositories.UnitOfWork
	perms    *permissions.Evaluator
	notifier *NotificationService
	audit    *AuditService
}

// NewApplicationService creates a new application service
func NewApplicationService(
	uow repositories.UnitOfWork,
	perms *permissions.Evaluator,
	notifier *NotificationService,
	audit *AuditService,
) *ApplicationService {
	return &ApplicationService{
		uow:      uow,
		perms:    perms,
		notifier: notifier,
		audit:    audit,
	}
}

// CreateApplicationInput represents create application input
type CreateApplicationInput struct {
	GroupLastName     string     `json:"nom_off_groupe" validate:"required"`
	GroupFirstName    string     `json:"prenom_off_groupe" validate:"required"`
	Branch            string     `json:"succursale" validate:"required"`
	BranchNo          string     `json:"no_succursale"`
	OtherBranch       string     `json:"autre_succursale"`
	ClientLastName    string     `json:"nom_client" validate:"required"`
	ClientFirstName   string     `json:"prenom_client" validate:"required"`
	BirthDate         time.Time  `json:"date_naissance" validate:"required"`
	CIN               string     `json:"cin" validate:"required"`
	ClientAddress     string     `json:"adresse_client"`
	ClientPhone       string     `json:"telephone_client"`
	ClientEmail       string     `json:"email_client"`
	DossierType       string     `json:"type_dossier" validate:"required"`
	CampaignType      string     `json:"type_campagne"`
	CampaignStart     *time.Time `json:"date_debut_campagne"`
	CampaignEnd       *time.Time `json:"date_fin_campagne"`
	RequestedCardType string     `json:"type_carte_application" validate:"required"`
	GeneratedAmount   float64    `json:"montant_genere"`
	Comment           string     `json:"commentaire"`
	OfficerID         *uint      `json:"officer_credit_id"`
}

// UpdateApplicationInput represents a partial update; nil fields are left
// untouched. The set of non-nil fields is the change set the permission
// evaluator rules on.
type UpdateApplicationInput struct {
	GroupLastName       *string        `json:"nom_off_groupe"`
	GroupFirstName      *string        `json:"prenom_off_groupe"`
	Branch              *string        `json:"succursale"`
	BranchNo            *string        `json:"no_succursale"`
	OtherBranch         *string        `json:"autre_succursale"`
	ClientLastName      *string        `json:"nom_client"`
	ClientFirstName     *string        `json:"prenom_client"`
	BirthDate           *time.Time     `json:"date_naissance"`
	CIN                 *string        `json:"cin"`
	ClientAddress       *string        `json:"adresse_client"`
	ClientPhone         *string        `json:"telephone_client"`
	ClientEmail         *string        `json:"email_client"`
	DossierType         *string        `json:"type_dossier"`
	CampaignType        *string        `json:"type_campagne"`
	CampaignStart       *time.Time     `json:"date_debut_campagne"`
	CampaignEnd         *time.Time     `json:"date_fin_campagne"`
	RequestedCardType   *string        `json:"type_carte_application"`
	Status              *domain.Status `json:"statut"`
	GeneratedAmount     *float64       `json:"montant_genere"`
	Comment             *string        `json:"commentaire"`
	FinalCardType       *string        `json:"type_carte_final"`
	RejectionReason     *string        `json:"raison"`
	ApprovedCreditLimit *float64       `json:"limite_credit_approuve"`
	DecisionDate        *time.Time     `json:"date_decision"`
	ProcessingComment   *string        `json:"commentaire_traitement"`
}

// changedFields returns the wire names of the non-nil fields
func (in *UpdateApplicationInput) changedFields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}

	add(in.GroupLastName != nil, permissions.FieldGroupLastName)
	add(in.GroupFirstName != nil, permissions.FieldGroupFirstName)
	add(in.Branch != nil, permissions.FieldBranch)
	add(in.BranchNo != nil, permissions.FieldBranchNo)
	add(in.OtherBranch != nil, permissions.FieldOtherBranch)
	add(in.ClientLastName != nil, permissions.FieldClientLastName)
	add(in.ClientFirstName != nil, permissions.FieldClientFirstName)
	add(in.BirthDate != nil, permissions.FieldBirthDate)
	add(in.CIN != nil, permissions.FieldCIN)
	add(in.ClientAddress != nil, permissions.FieldClientAddress)
	add(in.ClientPhone != nil, permissions.FieldClientPhone)
	add(in.ClientEmail != nil, permissions.FieldClientEmail)
	add(in.DossierType != nil, permissions.FieldDossierType)
	add(in.CampaignType != nil, permissions.FieldCampaignType)
	add(in.CampaignStart != nil, permissions.FieldCampaignStart)
	add(in.CampaignEnd != nil, permissions.FieldCampaignEnd)
	add(in.RequestedCardType != nil, permissions.FieldRequestedCardType)
	add(in.Status != nil, permissions.FieldStatus)
	add(in.GeneratedAmount != nil, permissions.FieldGeneratedAmount)
	add(in.Comment != nil, permissions.FieldComment)
	add(in.FinalCardType != nil, permissions.FieldFinalCardType)
	add(in.RejectionReason != nil, permissions.FieldRejectionReason)
	add(in.ApprovedCreditLimit != nil, permissions.FieldApprovedLimit)
	add(in.DecisionDate != nil, permissions.FieldDecisionDate)
	add(in.ProcessingComment != nil, permissions.FieldProcessingComment)

	return fields
}

// apply copies the non-nil fields onto the application
func (in *UpdateApplicationInput) apply(app *models.CreditApplication) {
	if in.GroupLastName != nil {
		app.GroupLastName = *in.GroupLastName
	}
	if in.GroupFirstName != nil {
		app.GroupFirstName = *in.GroupFirstName
	}
	if in.Branch != nil {
		app.Branch = *in.Branch
	}
	if in.BranchNo != nil {
		app.BranchNo = *in.BranchNo
	}
	if in.OtherBranch != nil {
		app.OtherBranch = *in.OtherBranch
	}
	if in.ClientLastName != nil {
		app.ClientLastName = *in.ClientLastName
	}
	if in.ClientFirstName != nil {
		app.ClientFirstName = *in.ClientFirstName
	}
	if in.BirthDate != nil {
		app.BirthDate = *in.BirthDate
	}
	if in.CIN != nil {
		app.CIN = *in.CIN
	}
	if in.ClientAddress != nil {
		app.ClientAddress = *in.ClientAddress
	}
	if in.ClientPhone != nil {
		app.ClientPhone = *in.ClientPhone
	}
	if in.ClientEmail != nil {
		app.ClientEmail = *in.ClientEmail
	}
	if in.DossierType != nil {
		app.DossierType = *in.DossierType
	}
	if in.CampaignType != nil {
		app.CampaignType = *in.CampaignType
	}
	if in.CampaignStart != nil {
		app.CampaignStart = in.CampaignStart
	}
	if in.CampaignEnd != nil {
		app.CampaignEnd = in.CampaignEnd
	}
	if in.RequestedCardType != nil {
		app.RequestedCardType = *in.RequestedCardType
	}
	if in.Status != nil {
		app.Status = *in.Status
	}
	if in.GeneratedAmount != nil {
		app.GeneratedAmount = *in.GeneratedAmount
	}
	if in.Comment != nil {
		app.Comment = *in.Comment
	}
	if in.FinalCardType != nil {
		app.FinalCardType = *in.FinalCardType
	}
	if in.RejectionReason != nil {
		app.RejectionReason = *in.RejectionReason
	}
	if in.ApprovedCreditLimit != nil {
		app.ApprovedCreditLimit = in.ApprovedCreditLimit
	}
	if in.DecisionDate != nil {
		app.DecisionDate = in.DecisionDate
	}
	if in.ProcessingComment != nil {
		app.ProcessingComment = *in.ProcessingComment
	}
}

// ListApplicationsInput represents list applications input
type ListApplicationsInput struct {
	Page        int
	Limit       int
	Status      *domain.Status
	Branch      string
	DossierType string
	Search      string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// ListApplicationsOutput represents list applications output
type ListApplicationsOutput struct {
	Applications []*models.ApplicationResponse `json:"applications"`
	Total        int64                         `json:"total"`
	Page         int                           `json:"page"`
	Limit        int                           `json:"limit"`
	TotalPages   int                           `json:"total_pages"`
}

// Create creates a new credit application
func (s *ApplicationService) Create(ctx context.Context, actor domain.Actor, input *CreateApplicationInput, meta domain.RequestMeta) (*models.CreditApplication, error) {
	if err := s.perms.CanCreate(actor); err != nil {
		return nil, err
	}

	app := &models.CreditApplication{
		ApplicationID:     models.NewApplicationID(),
		GroupLastName:     input.GroupLastName,
		GroupFirstName:    input.GroupFirstName,
		Branch:            input.Branch,
		BranchNo:          input.BranchNo,
		OtherBranch:       input.OtherBranch,
		ClientLastName:    input.ClientLastName,
		ClientFirstName:   input.ClientFirstName,
		BirthDate:         input.BirthDate,
		CIN:               input.CIN,
		ClientAddress:     input.ClientAddress,
		ClientPhone:       input.ClientPhone,
		ClientEmail:       input.ClientEmail,
		DossierType:       input.DossierType,
		CampaignType:      input.CampaignType,
		CampaignStart:     input.CampaignStart,
		CampaignEnd:       input.CampaignEnd,
		RequestedCardType: input.RequestedCardType,
		Status:            domain.StatusPending,
		GeneratedAmount:   input.GeneratedAmount,
		CreatedByID:       actor.ID,
		Comment:           input.Comment,
	}

	app.Normalize()
	if err := app.Validate(); err != nil {
		return nil, err
	}

	var officer *models.User
	err := s.uow.Do(ctx, func(r *repositories.Registry) error {
		if input.OfficerID != nil {
			resolved, err := r.Users.GetActiveOfficer(ctx, *input.OfficerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: officier actif introuvable", domain.ErrNotFound)
				}
				return err
			}
			officer = resolved
			app.OfficerCreditID = &resolved.ID
		}

		if err := r.Applications.Create(ctx, app); err != nil {
			return err
		}

		return r.Histories.Create(ctx, &models.ApplicationHistory{
			ApplicationID: app.ID,
			UserID:        actor.ID,
			Action:        models.HistoryActionCreate,
			Details:       fmt.Sprintf("Dossier créé pour %s", app.ClientFullName()),
		})
	})
	if err != nil {
		return nil, err
	}

	if officer != nil {
		s.notifier.NotifyAssignment(ctx, officer.ID, app)
	}

	s.audit.LogApplicationAction(ctx, actor, models.AuditActionCreateApp, app, nil, meta)

	return app, nil
}

// Update applies a partial change set to an application
func (s *ApplicationService) Update(ctx context.Context, actor domain.Actor, id uint, input *UpdateApplicationInput, meta domain.RequestMeta) (*models.CreditApplication, error) {
	fields := input.changedFields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: aucun champ à modifier", domain.ErrValidation)
	}

	change := permissions.Change{Fields: fields, NewStatus: input.Status}

	var (
		updated       *models.CreditApplication
		diffs         []diffEntry
		statusChanged bool
	)

	err := s.uow.Do(ctx, func(r *repositories.Registry) error {
		app, err := lockApplication(ctx, r, id)
		if err != nil {
			return err
		}

		if err := s.perms.CanUpdate(actor, app, change); err != nil {
			return err
		}

		before := *app
		input.apply(app)
		app.Normalize()
		if err := app.Validate(); err != nil {
			return err
		}

		diffs = diffApplications(&before, app, actor.Role)
		statusChanged = before.Status != app.Status

		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		// One history row per effective update; no row when nothing
		// tracked changed.
		if len(diffs) > 0 {
			if err := r.Histories.Create(ctx, &models.ApplicationHistory{
				ApplicationID: app.ID,
				UserID:        actor.ID,
				Action:        models.HistoryActionUpdate,
				Details:       renderDiff(diffs),
			}); err != nil {
				return err
			}
		}

		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChanged && updated.CreatedByID != actor.ID {
		s.notifier.NotifyStatusChange(ctx, updated.CreatedByID, updated)
	}

	s.audit.LogApplicationAction(ctx, actor, models.AuditActionUpdateApp, updated, diffChanges(diffs), meta)

	return updated, nil
}

// AssignOfficer assigns, or for a manager reassigns, the credit officer
func (s *ApplicationService) AssignOfficer(ctx context.Context, actor domain.Actor, id uint, officerID uint, meta domain.RequestMeta) (*models.CreditApplication, error) {
	var (
		updated    *models.CreditApplication
		officer    *models.User
		previous   *models.User
		reassigned bool
	)

	err := s.uow.Do(ctx, func(r *repositories.Registry) error {
		app, err := lockApplication(ctx, r, id)
		if err != nil {
			return err
		}

		if err := s.perms.CanAssign(actor, app); err != nil {
			return err
		}

		officer, err = r.Users.GetActiveOfficer(ctx, officerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: officier actif introuvable", domain.ErrNotFound)
			}
			return err
		}

		if app.OfficerCreditID != nil {
			if *app.OfficerCreditID == officer.ID {
				return fmt.Errorf("%w: le dossier est déjà assigné à cet officier", domain.ErrConflict)
			}
			reassigned = true
			previous, _ = r.Users.GetByID(ctx, *app.OfficerCreditID)
		}

		app.OfficerCreditID = &officer.ID
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		action := models.HistoryActionAssign
		details := fmt.Sprintf("Dossier assigné à %s", officer.FullName())
		if reassigned {
			action = models.HistoryActionReassign
			previousName := "officier inconnu"
			if previous != nil {
				previousName = previous.FullName()
			}
			details = fmt.Sprintf("Dossier réaffecté de %s à %s", previousName, officer.FullName())
		}

		if err := r.Histories.Create(ctx, &models.ApplicationHistory{
			ApplicationID: app.ID,
			UserID:        actor.ID,
			Action:        action,
			Details:       details,
		}); err != nil {
			return err
		}

		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyAssignment(ctx, officer.ID, updated)
	if reassigned && previous != nil {
		s.notifier.NotifyReassignment(ctx, previous.ID, updated)
	}

	s.audit.LogApplicationAction(ctx, actor, models.AuditActionAssignApp, updated,
		map[string]string{permissions.FieldOfficerCredit: officer.FullName()}, meta)

	return updated, nil
}

// Delete soft deletes an application (manager only)
func (s *ApplicationService) Delete(ctx context.Context, actor domain.Actor, id uint, meta domain.RequestMeta) error {
	if err := s.perms.CanDelete(actor); err != nil {
		return err
	}

	var deleted *models.CreditApplication
	err := s.uow.Do(ctx, func(r *repositories.Registry) error {
		app, err := lockApplication(ctx, r, id)
		if err != nil {
			return err
		}
		deleted = app
		return r.Applications.Delete(ctx, app.ID)
	})
	if err != nil {
		return err
	}

	s.audit.LogApplicationAction(ctx, actor, models.AuditActionDeleteApp, deleted, nil, meta)
	return nil
}

// GetByID returns one application within the actor's visibility scope
func (s *ApplicationService) GetByID(ctx context.Context, actor domain.Actor, id uint) (*models.CreditApplication, error) {
	app, err := s.uow.Repos().Applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: dossier introuvable", domain.ErrNotFound)
		}
		return nil, err
	}

	if err := s.checkVisibility(actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns the actor's visible applications with filters and pagination
func (s *ApplicationService) List(ctx context.Context, actor domain.Actor, input *ListApplicationsInput) (*ListApplicationsOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	filter := repositories.ApplicationFilter{
		Status:      input.Status,
		Branch:      input.Branch,
		DossierType: input.DossierType,
		Search:      input.Search,
		DateFrom:    input.DateFrom,
		DateTo:      input.DateTo,
		Offset:      (input.Page - 1) * input.Limit,
		Limit:       input.Limit,
	}
	scopeFilter(actor, &filter)

	apps, total, err := s.uow.Repos().Applications.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ApplicationResponse, len(apps))
	for i, app := range apps {
		responses[i] = app.ToResponse()
	}

	totalPages := int((total + int64(input.Limit) - 1) / int64(input.Limit))

	return &ListApplicationsOutput{
		Applications: responses,
		Total:        total,
		Page:         input.Page,
		Limit:        input.Limit,
		TotalPages:   totalPages,
	}, nil
}

// History returns the application's business trail, newest first
func (s *ApplicationService) History(ctx context.Context, actor domain.Actor, id uint) ([]*models.HistoryResponse, error) {
	app, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.uow.Repos().Histories.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.HistoryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = entry.ToResponse()
	}
	return responses, nil
}

// checkVisibility enforces the read scope: secretaries see their own
// dossiers, officers the ones assigned to them, managers everything.
func (s *ApplicationService) checkVisibility(actor domain.Actor, app *models.CreditApplication) error {
	switch actor.Role {
	case domain.RoleManager:
		return nil
	case domain.RoleOfficer:
		if app.OfficerCreditID != nil && *app.OfficerCreditID == actor.ID {
			return nil
		}
	case domain.RoleSecretary:
		if app.CreatedByID == actor.ID {
			return nil
		}
	}
	return fmt.Errorf("%w: accès refusé à ce dossier", domain.ErrPermissionDenied)
}

// scopeFilter narrows a listing filter to the actor's visibility
func scopeFilter(actor domain.Actor, filter *repositories.ApplicationFilter) {
	switch actor.Role {
	case domain.RoleOfficer:
		id := actor.ID
		filter.OfficerID = &id
	case domain.RoleSecretary:
		id := actor.ID
		filter.CreatedByID = &id
	}
}

func lockApplication(ctx context.Context, r *repositories.Registry, id uint) (*models.CreditApplication, error) {
	app, err := r.Applications.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: dossier introuvable", domain.ErrNotFound)
		}
		return nil, err
	}
	return app, nil
}

// ============================================================
// History diff rendering
// ============================================================

type diffEntry struct {
	Field string
	Old   string
	New   string
}

// diffApplications compares the tracked fields of the two snapshots in
// allow-list order.
func diffApplications(before, after *models.CreditApplication, role domain.Role) []diffEntry {
	var diffs []diffEntry
	for _, field := range permissions.TrackedFields(role) {
		oldValue := fieldDisplay(before, field)
		newValue := fieldDisplay(after, field)
		if oldValue != newValue {
			diffs = append(diffs, diffEntry{Field: field, Old: oldValue, New: newValue})
		}
	}
	return diffs
}

// renderDiff formats the history details line, "field: old -> new" entries
// joined by " | ".
func renderDiff(diffs []diffEntry) string {
	parts := make([]string, len(diffs))
	for i, d := range diffs {
		parts[i] = fmt.Sprintf("%s: %s -> %s", d.Field, d.Old, d.New)
	}
	return strings.Join(parts, " | ")
}

// diffChanges converts the diff to the audit changes map
func diffChanges(diffs []diffEntry) map[string]string {
	if len(diffs) == 0 {
		return nil
	}
	changes := make(map[string]string, len(diffs))
	for _, d := range diffs {
		changes[d.Field] = d.Old + " -> " + d.New
	}
	return changes
}

// fieldDisplay renders one tracked field as the string used in history diffs
func fieldDisplay(app *models.CreditApplication, field string) string {
	switch field {
	case permissions.FieldStatus:
		return string(app.Status)
	case permissions.FieldOfficerCredit:
		if app.OfficerCreditID == nil {
			return "Non assigné"
		}
		if app.OfficerCredit != nil {
			return app.OfficerCredit.FullName()
		}
		return fmt.Sprintf("officier #%d", *app.OfficerCreditID)
	case permissions.FieldApprovedLimit:
		return displayFloatPtr(app.ApprovedCreditLimit)
	case permissions.FieldProcessingComment:
		return displayString(app.ProcessingComment)
	case permissions.FieldFinalCardType:
		return displayString(app.FinalCardType)
	case permissions.FieldRejectionReason:
		return displayString(app.RejectionReason)
	case permissions.FieldClientLastName:
		return displayString(app.ClientLastName)
	case permissions.FieldClientFirstName:
		return displayString(app.ClientFirstName)
	case permissions.FieldCIN:
		return displayString(app.CIN)
	case permissions.FieldClientPhone:
		return displayString(app.ClientPhone)
	case permissions.FieldClientEmail:
		return displayString(app.ClientEmail)
	case permissions.FieldClientAddress:
		return displayString(app.ClientAddress)
	case permissions.FieldBirthDate:
		return displayDate(app.BirthDate)
	case permissions.FieldGeneratedAmount:
		return strconv.FormatFloat(app.GeneratedAmount, 'f', -1, 64)
	case permissions.FieldBranch:
		return displayString(app.Branch)
	case permissions.FieldBranchNo:
		return displayString(app.BranchNo)
	case permissions.FieldOtherBranch:
		return displayString(app.OtherBranch)
	case permissions.FieldDossierType:
		return displayString(app.DossierType)
	case permissions.FieldCampaignType:
		return displayString(app.CampaignType)
	case permissions.FieldCampaignStart:
		return displayDatePtr(app.CampaignStart)
	case permissions.FieldCampaignEnd:
		return displayDatePtr(app.CampaignEnd)
	case permissions.FieldRequestedCardType:
		return displayString(app.RequestedCardType)
	case permissions.FieldComment:
		return displayString(app.Comment)
	}
	return ""
}

func displayString(v string) string {
	if v == "" {
		return "Aucun"
	}
	return v
}

func displayFloatPtr(v *float64) string {
	if v == nil {
		return "Aucun"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func displayDate(v time.Time) string {
	if v.IsZero() {
		return "Aucun"
	}
	return v.Format("2006-01-02")
}

func displayDatePtr(v *time.Time) string {
	if v == nil {
		return "Aucun"
	}
	return displayDate(*v)
}
