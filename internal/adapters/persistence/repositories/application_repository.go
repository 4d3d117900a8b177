package repositories

import (
	"context"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applicationRepository implements ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create creates a new application
func (r *applicationRepository) Create(ctx context.Context, app *models.CreditApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID with relations
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.CreditApplication, error) {
	var app models.CreditApplication
	err := r.db.WithContext(ctx).
		Preload("OfficerCredit").
		Preload("CreatedBy").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByIDForUpdate gets an application under a row-level write lock so two
// racing mutations of the same dossier serialize instead of losing updates
func (r *applicationRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.CreditApplication, error) {
	var app models.CreditApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Update updates an application
func (r *applicationRepository) Update(ctx context.Context, app *models.CreditApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// Delete soft deletes an application
func (r *applicationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CreditApplication{}, id).Error
}

func (r *applicationRepository) filtered(ctx context.Context, filter ApplicationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.CreditApplication{})

	if filter.CreatedByID != nil {
		q = q.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.OfficerID != nil {
		q = q.Where("officer_credit_id = ?", *filter.OfficerID)
	}
	if filter.Status != nil {
		q = q.Where("statut = ?", *filter.Status)
	}
	if filter.Branch != "" {
		q = q.Where("succursale = ?", filter.Branch)
	}
	if filter.DossierType != "" {
		q = q.Where("type_dossier = ?", filter.DossierType)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where(
			"application_id LIKE ? OR nom_client LIKE ? OR prenom_client LIKE ? OR cin LIKE ?",
			like, like, like, like,
		)
	}
	if filter.DateFrom != nil {
		q = q.Where("date_saisie >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("date_saisie <= ?", *filter.DateTo)
	}

	return q
}

// List lists applications matching the filter, newest first
func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.CreditApplication, int64, error) {
	var apps []*models.CreditApplication
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.filtered(ctx, filter).
		Preload("OfficerCredit").
		Preload("CreatedBy").
		Order("date_saisie DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := q.Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Aggregate computes counts per status and the total generated amount over
// the filtered set
func (r *applicationRepository) Aggregate(ctx context.Context, filter ApplicationFilter) (*ApplicationStats, error) {
	stats := &ApplicationStats{}

	if err := r.filtered(ctx, filter).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	counts := []struct {
		status domain.Status
		dest   *int64
	}{
		{domain.StatusPending, &stats.Pending},
		{domain.StatusApproved, &stats.Approved},
		{domain.StatusRejected, &stats.Rejected},
	}
	for _, c := range counts {
		if err := r.filtered(ctx, filter).Where("statut = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := r.filtered(ctx, filter).
		Select("COALESCE(SUM(montant_genere), 0)").
		Scan(&stats.TotalAmount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
