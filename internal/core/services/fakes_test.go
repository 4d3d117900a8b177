package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/core/domain"
	"sogecredit/internal/core/permissions"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = r.nextID
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetActiveOfficer(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok || user.Role != domain.RoleOfficer || !user.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) ListActiveOfficers(_ context.Context) ([]*models.User, error) {
	var users []*models.User
	for _, user := range r.users {
		if user.Role == domain.RoleOfficer && user.IsActive {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) ListAllExcept(_ context.Context, id uint) ([]*models.User, error) {
	var users []*models.User
	for _, user := range r.users {
		if user.ID != id {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) CountActive(_ context.Context) (int64, error) {
	var count int64
	for _, user := range r.users {
		if user.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeApplicationRepo struct {
	apps   map[uint]*models.CreditApplication
	nextID uint
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: map[uint]*models.CreditApplication{}, nextID: 1}
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *models.CreditApplication) error {
	app.ID = r.nextID
	r.nextID++
	app.CreatedAt = time.Now()
	r.apps[app.ID] = app
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id uint) (*models.CreditApplication, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return app, nil
}

// GetByIDForUpdate hands out a copy, like a row read under lock: changes only
// land in the store through Update.
func (r *fakeApplicationRepo) GetByIDForUpdate(_ context.Context, id uint) (*models.CreditApplication, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *app
	return &copied, nil
}

func (r *fakeApplicationRepo) Update(_ context.Context, app *models.CreditApplication) error {
	r.apps[app.ID] = app
	return nil
}

func (r *fakeApplicationRepo) Delete(_ context.Context, id uint) error {
	delete(r.apps, id)
	return nil
}

func (r *fakeApplicationRepo) matches(app *models.CreditApplication, filter repositories.ApplicationFilter) bool {
	if filter.CreatedByID != nil && app.CreatedByID != *filter.CreatedByID {
		return false
	}
	if filter.OfficerID != nil && (app.OfficerCreditID == nil || *app.OfficerCreditID != *filter.OfficerID) {
		return false
	}
	if filter.Status != nil && app.Status != *filter.Status {
		return false
	}
	if filter.Branch != "" && app.Branch != filter.Branch {
		return false
	}
	if filter.Search != "" && !strings.Contains(app.ApplicationID+app.ClientLastName+app.CIN, strings.ToUpper(filter.Search)) {
		return false
	}
	if filter.DateFrom != nil && app.CreatedAt.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && app.CreatedAt.After(*filter.DateTo) {
		return false
	}
	return true
}

func (r *fakeApplicationRepo) List(_ context.Context, filter repositories.ApplicationFilter) ([]*models.CreditApplication, int64, error) {
	var apps []*models.CreditApplication
	for _, app := range r.apps {
		if r.matches(app, filter) {
			apps = append(apps, app)
		}
	}
	return apps, int64(len(apps)), nil
}

func (r *fakeApplicationRepo) Aggregate(_ context.Context, filter repositories.ApplicationFilter) (*repositories.ApplicationStats, error) {
	stats := &repositories.ApplicationStats{}
	for _, app := range r.apps {
		if !r.matches(app, filter) {
			continue
		}
		stats.Total++
		stats.TotalAmount += app.GeneratedAmount
		switch app.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusApproved:
			stats.Approved++
		case domain.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

type fakeHistoryRepo struct {
	entries  []*models.ApplicationHistory
	failWith error
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *models.ApplicationHistory) error {
	if r.failWith != nil {
		return r.failWith
	}
	entry.ID = uint(len(r.entries) + 1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeHistoryRepo) ListByApplication(_ context.Context, applicationID uint) ([]*models.ApplicationHistory, error) {
	var entries []*models.ApplicationHistory
	for _, entry := range r.entries {
		if entry.ApplicationID == applicationID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (r *fakeHistoryRepo) forApplication(applicationID uint) []*models.ApplicationHistory {
	entries, _ := r.ListByApplication(context.Background(), applicationID)
	return entries
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	n.ID = uint(len(r.notifications) + 1)
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uint) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uint) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type fakeAuditRepo struct {
	entries []*models.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *models.AuditLog) error {
	entry.ID = uint(len(r.entries) + 1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, offset, limit int) ([]*models.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

type fakeRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]*models.RefreshToken{}, nextID: 1}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	token.ID = r.nextID
	r.nextID++
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	token, ok := r.tokens[tokenHash]
	if !ok || token.IsRevoked() {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.ID == id {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	now := time.Now()
	if token, ok := r.tokens[tokenHash]; ok {
		token.RevokedAt = &now
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var deleted int64
	for hash, token := range r.tokens {
		if token.IsExpired() {
			delete(r.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}

// fakeUnitOfWork runs the callback against the shared registry. On error it
// restores the application and history stores to their pre-call state, like
// the transaction rollback it stands in for.
type fakeUnitOfWork struct {
	reg       *repositories.Registry
	apps      *fakeApplicationRepo
	histories *fakeHistoryRepo
}

func (u *fakeUnitOfWork) Do(_ context.Context, fn func(r *repositories.Registry) error) error {
	apps := make(map[uint]*models.CreditApplication, len(u.apps.apps))
	for id, app := range u.apps.apps {
		copied := *app
		apps[id] = &copied
	}
	nextID := u.apps.nextID
	entries := append([]*models.ApplicationHistory(nil), u.histories.entries...)

	if err := fn(u.reg); err != nil {
		u.apps.apps = apps
		u.apps.nextID = nextID
		u.histories.entries = entries
		return err
	}
	return nil
}

func (u *fakeUnitOfWork) Repos() *repositories.Registry {
	return u.reg
}

// testEnv bundles the fakes behind one application service
type testEnv struct {
	users         *fakeUserRepo
	apps          *fakeApplicationRepo
	histories     *fakeHistoryRepo
	notifications *fakeNotificationRepo
	audits        *fakeAuditRepo
	service       *ApplicationService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:         newFakeUserRepo(),
		apps:          newFakeApplicationRepo(),
		histories:     &fakeHistoryRepo{},
		notifications: &fakeNotificationRepo{},
		audits:        &fakeAuditRepo{},
	}

	reg := &repositories.Registry{
		Users:         env.users,
		Applications:  env.apps,
		Histories:     env.histories,
		Notifications: env.notifications,
		AuditLogs:     env.audits,
		RefreshTokens: newFakeRefreshTokenRepo(),
	}
	uow := &fakeUnitOfWork{reg: reg, apps: env.apps, histories: env.histories}

	env.service = NewApplicationService(
		uow,
		permissions.NewEvaluator(),
		NewNotificationService(env.notifications),
		NewAuditService(env.audits),
	)

	env.seedUsers()
	return env
}

func (env *testEnv) seedUsers() {
	ctx := context.Background()
	env.users.Create(ctx, &models.User{ID: 1, Username: "manager", FirstName: "Marie", LastName: "DUPONT", Role: domain.RoleManager, IsActive: true})
	env.users.Create(ctx, &models.User{ID: 2, Username: "secretary", FirstName: "Sophie", LastName: "JEAN", Role: domain.RoleSecretary, IsActive: true})
	env.users.Create(ctx, &models.User{ID: 3, Username: "officer1", FirstName: "Paul", LastName: "LOUIS", Role: domain.RoleOfficer, IsActive: true})
	env.users.Create(ctx, &models.User{ID: 4, Username: "officer2", FirstName: "Jacques", LastName: "PIERRE", Role: domain.RoleOfficer, IsActive: true})
}

func (env *testEnv) actor(id uint) domain.Actor {
	user, _ := env.users.GetByID(context.Background(), id)
	return user.ToActor()
}
