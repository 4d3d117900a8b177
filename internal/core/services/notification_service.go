package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/adapters/persistence/repositories"
)

// NotificationService manages in-app notifications. Dispatch helpers are
// best-effort: they run after the business mutation committed, and a failed
// insert is logged and swallowed.
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListByUser returns the user's notifications, newest first
func (s *NotificationService) ListByUser(ctx context.Context, userID uint) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

// CountUnread returns the number of unread notifications for the user
func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkAllRead marks every notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// NotifyAssignment tells an officer a dossier was assigned to them
func (s *NotificationService) NotifyAssignment(ctx context.Context, officerID uint, app *models.CreditApplication) {
	s.dispatch(ctx, &models.Notification{
		UserID:        officerID,
		Title:         "Nouveau dossier assigné",
		Message:       fmt.Sprintf("Le dossier %s (%s) vous a été assigné.", app.ApplicationID, app.ClientFullName()),
		ApplicationID: &app.ID,
	})
}

// NotifyReassignment tells the previous officer a dossier was taken from them
func (s *NotificationService) NotifyReassignment(ctx context.Context, previousOfficerID uint, app *models.CreditApplication) {
	s.dispatch(ctx, &models.Notification{
		UserID:        previousOfficerID,
		Title:         "Dossier réaffecté",
		Message:       fmt.Sprintf("Le dossier %s (%s) a été réaffecté à un autre officier.", app.ApplicationID, app.ClientFullName()),
		ApplicationID: &app.ID,
	})
}

// NotifyStatusChange tells the dossier creator the status moved
func (s *NotificationService) NotifyStatusChange(ctx context.Context, creatorID uint, app *models.CreditApplication) {
	s.dispatch(ctx, &models.Notification{
		UserID:        creatorID,
		Title:         "Statut du dossier mis à jour",
		Message:       fmt.Sprintf("Le dossier %s (%s) est passé au statut '%s'.", app.ApplicationID, app.ClientFullName(), app.Status),
		ApplicationID: &app.ID,
	})
}

func (s *NotificationService) dispatch(ctx context.Context, n *models.Notification) {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		logrus.WithError(err).WithField("user_id", n.UserID).Warn("Notification dropped")
	}
}
