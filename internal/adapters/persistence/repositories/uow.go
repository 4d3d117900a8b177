package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Registry bundles the repositories reachable from one unit of work
type Registry struct {
	Users         UserRepository
	Applications  ApplicationRepository
	Histories     HistoryRepository
	Notifications NotificationRepository
	AuditLogs     AuditLogRepository
	RefreshTokens RefreshTokenRepository
}

// UnitOfWork runs a group of repository calls as one atomic mutation.
// Every core operation takes the actor and this handle explicitly; there is
// no implicit ambient transaction.
type UnitOfWork interface {
	// Do executes fn inside a transaction; any error rolls everything back
	Do(ctx context.Context, fn func(r *Registry) error) error
	// Repos returns the non-transactional registry for plain reads and
	// standalone writes
	Repos() *Registry
}

// gormUnitOfWork implements UnitOfWork on a GORM connection
type gormUnitOfWork struct {
	db    *gorm.DB
	repos *Registry
}

// NewUnitOfWork creates a GORM-backed unit of work
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{
		db:    db,
		repos: NewRegistry(db),
	}
}

// NewRegistry builds a registry bound to the given connection or transaction
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		Users:         NewUserRepository(db),
		Applications:  NewApplicationRepository(db),
		Histories:     NewHistoryRepository(db),
		Notifications: NewNotificationRepository(db),
		AuditLogs:     NewAuditLogRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
	}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(r *Registry) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRegistry(tx))
	})
}

func (u *gormUnitOfWork) Repos() *Registry {
	return u.repos
}
