package repositories

import (
	"context"
	"time"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetActiveOfficer resolves an id to an active user holding the officer
	// role; it returns gorm.ErrRecordNotFound otherwise.
	GetActiveOfficer(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListActiveOfficers(ctx context.Context) ([]*models.User, error)
	ListAllExcept(ctx context.Context, id uint) ([]*models.User, error)
	CountActive(ctx context.Context) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ApplicationFilter narrows application listings and aggregates
type ApplicationFilter struct {
	CreatedByID *uint
	OfficerID   *uint
	Status      *domain.Status
	Branch      string
	DossierType string
	// Search matches application_id, client names and cin
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Offset   int
	Limit    int // 0 means no pagination
}

// ApplicationStats aggregates a filtered set of applications
type ApplicationStats struct {
	Total       int64   `json:"total"`
	Pending     int64   `json:"en_attente"`
	Approved    int64   `json:"approuve"`
	Rejected    int64   `json:"rejete"`
	TotalAmount float64 `json:"montant_total"`
}

// ApplicationRepository defines credit application repository interface
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.CreditApplication) error
	GetByID(ctx context.Context, id uint) (*models.CreditApplication, error)
	// GetByIDForUpdate loads the row under a write lock; it must be called
	// inside a unit of work so racing mutations serialize on the row.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.CreditApplication, error)
	Update(ctx context.Context, app *models.CreditApplication) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ApplicationFilter) ([]*models.CreditApplication, int64, error)
	Aggregate(ctx context.Context, filter ApplicationFilter) (*ApplicationStats, error)
}

// HistoryRepository defines the append-only application history interface.
// Entries are never updated or deleted.
type HistoryRepository interface {
	Create(ctx context.Context, entry *models.ApplicationHistory) error
	ListByApplication(ctx context.Context, applicationID uint) ([]*models.ApplicationHistory, error)
}

// NotificationRepository defines notification repository interface
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkAllRead(ctx context.Context, userID uint) error
}

// AuditLogRepository defines the security trail repository interface
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, offset, limit int) ([]*models.AuditLog, int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}
