package services

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/core/domain"
)

// AuditService records the process-wide security trail. Recording is
// best-effort: a failed insert is logged and swallowed so the business
// operation it accompanies never fails because of it.
type AuditService struct {
	auditRepo repositories.AuditLogRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// AuditEntry describes one security-trail record
type AuditEntry struct {
	UserID          *uint
	Action          string
	ResourceType    string
	ResourceID      string
	ResourceDisplay string
	Changes         map[string]string
	Status          string
	ErrorMessage    string
}

// Record writes one audit log row. Errors are never returned.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry, meta domain.RequestMeta) {
	changes := ""
	if len(entry.Changes) > 0 {
		if raw, err := json.Marshal(entry.Changes); err == nil {
			changes = string(raw)
		}
	}

	status := entry.Status
	if status == "" {
		status = models.AuditStatusSuccess
	}

	row := &models.AuditLog{
		UserID:          entry.UserID,
		Action:          entry.Action,
		ResourceType:    entry.ResourceType,
		ResourceID:      entry.ResourceID,
		ResourceDisplay: entry.ResourceDisplay,
		IPAddress:       meta.IPAddress,
		UserAgent:       meta.UserAgent,
		Changes:         changes,
		Status:          status,
		ErrorMessage:    entry.ErrorMessage,
	}

	if err := s.auditRepo.Create(ctx, row); err != nil {
		logrus.WithError(err).WithField("action", entry.Action).Warn("Audit record dropped")
	}
}

// LogLogin records a successful login
func (s *AuditService) LogLogin(ctx context.Context, user *models.User, meta domain.RequestMeta) {
	s.Record(ctx, AuditEntry{
		UserID:          &user.ID,
		Action:          models.AuditActionLogin,
		ResourceType:    "user",
		ResourceDisplay: user.Username,
	}, meta)
}

// LogLoginFailed records a failed login attempt. The user id stays null when
// the username did not resolve.
func (s *AuditService) LogLoginFailed(ctx context.Context, username string, userID *uint, reason string, meta domain.RequestMeta) {
	s.Record(ctx, AuditEntry{
		UserID:          userID,
		Action:          models.AuditActionLogin,
		ResourceType:    "user",
		ResourceDisplay: username,
		Status:          models.AuditStatusFailed,
		ErrorMessage:    reason,
	}, meta)
}

// LogLogout records a logout
func (s *AuditService) LogLogout(ctx context.Context, userID uint, username string, meta domain.RequestMeta) {
	s.Record(ctx, AuditEntry{
		UserID:          &userID,
		Action:          models.AuditActionLogout,
		ResourceType:    "user",
		ResourceDisplay: username,
	}, meta)
}

// LogApplicationAction records a mutation on a credit application
func (s *AuditService) LogApplicationAction(ctx context.Context, actor domain.Actor, action string, app *models.CreditApplication, changes map[string]string, meta domain.RequestMeta) {
	actorID := actor.ID
	s.Record(ctx, AuditEntry{
		UserID:          &actorID,
		Action:          action,
		ResourceType:    "credit_application",
		ResourceID:      app.ApplicationID,
		ResourceDisplay: app.ClientFullName(),
		Changes:         changes,
	}, meta)
}
