package config

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/core/domain"
	"sogecredit/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	logrus.Info("Running database seeders")

	if err := s.seedManagerUser(); err != nil {
		logrus.WithError(err).Warn("Manager seeder skipped")
	}

	logrus.Info("Database seeding completed")
	return nil
}

// seedManagerUser creates a default manager account when no manager exists.
// For development and first deployment only; rotate the password right away.
func (s *Seeder) seedManagerUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", domain.RoleManager).Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash("manager123456")
	if err != nil {
		return err
	}

	manager := &models.User{
		Username:  "manager",
		Email:     "manager@sogecredit.ht",
		Password:  hashed,
		FirstName: "Responsable",
		LastName:  "Credit",
		Role:      domain.RoleManager,
		IsActive:  true,
	}

	if err := s.db.Create(manager).Error; err != nil {
		return err
	}

	logrus.WithField("username", manager.Username).Info("Default manager created")
	return nil
}
