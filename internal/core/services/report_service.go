package services

import (
	"context"
	"time"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/core/domain"
)

// ReportService builds aggregated views over the application set. Reads are
// scoped exactly like the listing endpoints.
type ReportService struct {
	applicationRepo repositories.ApplicationRepository
	userRepo        repositories.UserRepository
}

// NewReportService creates a new report service
func NewReportService(applicationRepo repositories.ApplicationRepository, userRepo repositories.UserRepository) *ReportService {
	return &ReportService{
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
	}
}

// ReportInput represents report filter input
type ReportInput struct {
	DateFrom    *time.Time     `json:"date_debut"`
	DateTo      *time.Time     `json:"date_fin"`
	Branch      string         `json:"succursale"`
	DossierType string         `json:"type_dossier"`
	Status      *domain.Status `json:"statut"`
	OfficerID   *uint          `json:"officer_credit_id"`
}

// ReportOutput represents the report statistics plus the matching rows
type ReportOutput struct {
	Stats        *repositories.ApplicationStats `json:"statistiques"`
	Applications []*models.ApplicationResponse  `json:"applications"`
}

// DashboardStats represents the per-role dashboard numbers
type DashboardStats struct {
	Total       int64   `json:"total"`
	Pending     int64   `json:"en_attente"`
	Approved    int64   `json:"approuve"`
	Rejected    int64   `json:"rejete"`
	TotalAmount float64 `json:"montant_total"`
	Last30Days  int64   `json:"trente_derniers_jours"`
	ActiveUsers int64   `json:"utilisateurs_actifs,omitempty"`
}

// Report runs a filtered report within the actor's visibility scope
func (s *ReportService) Report(ctx context.Context, actor domain.Actor, input *ReportInput) (*ReportOutput, error) {
	filter := repositories.ApplicationFilter{
		DateFrom:    input.DateFrom,
		DateTo:      input.DateTo,
		Branch:      input.Branch,
		DossierType: input.DossierType,
		Status:      input.Status,
		OfficerID:   input.OfficerID,
	}
	scopeFilter(actor, &filter)

	stats, err := s.applicationRepo.Aggregate(ctx, filter)
	if err != nil {
		return nil, err
	}

	apps, _, err := s.applicationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ApplicationResponse, len(apps))
	for i, app := range apps {
		responses[i] = app.ToResponse()
	}

	return &ReportOutput{
		Stats:        stats,
		Applications: responses,
	}, nil
}

// Dashboard returns the actor's dashboard numbers. The active user count is
// only filled for managers.
func (s *ReportService) Dashboard(ctx context.Context, actor domain.Actor) (*DashboardStats, error) {
	var base repositories.ApplicationFilter
	scopeFilter(actor, &base)

	stats, err := s.applicationRepo.Aggregate(ctx, base)
	if err != nil {
		return nil, err
	}

	recent := base
	from := time.Now().AddDate(0, 0, -30)
	recent.DateFrom = &from

	recentStats, err := s.applicationRepo.Aggregate(ctx, recent)
	if err != nil {
		return nil, err
	}

	out := &DashboardStats{
		Total:       stats.Total,
		Pending:     stats.Pending,
		Approved:    stats.Approved,
		Rejected:    stats.Rejected,
		TotalAmount: stats.TotalAmount,
		Last30Days:  recentStats.Total,
	}

	if actor.Role == domain.RoleManager {
		activeUsers, err := s.userRepo.CountActive(ctx)
		if err != nil {
			return nil, err
		}
		out.ActiveUsers = activeUsers
	}

	return out, nil
}
