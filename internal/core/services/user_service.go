package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/core/domain"
	"sogecredit/internal/pkg/password"
)

// UserService handles user management. Accounts are managed by the manager;
// the other roles only get role-scoped listings.
type UserService struct {
	userRepo repositories.UserRepository
	mailer   *MailerService
	audit    *AuditService
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, mailer *MailerService, audit *AuditService) *UserService {
	return &UserService{
		userRepo: userRepo,
		mailer:   mailer,
		audit:    audit,
	}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Username  string      `json:"username" validate:"required,min=3,max=50"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=8"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role" validate:"required"`
	Branch    string      `json:"branch"`
	Phone     string      `json:"phone"`
}

// UpdateUserInput represents update user input; nil fields are untouched
type UpdateUserInput struct {
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Role      *domain.Role `json:"role"`
	Branch    *string      `json:"branch"`
	Phone     *string      `json:"phone"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func requireManager(actor domain.Actor) error {
	if actor.Role != domain.RoleManager {
		return fmt.Errorf("%w: reserve au responsable", domain.ErrPermissionDenied)
	}
	return nil
}

// CreateUser creates an account (manager only) and sends the welcome email
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, input *CreateUserInput, meta domain.RequestMeta) (*models.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: role inconnu '%s'", domain.ErrValidation, input.Role)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, fmt.Errorf("%w: mot de passe trop court (8 caracteres minimum)", domain.ErrValidation)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: nom d'utilisateur deja pris", domain.ErrConflict)
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email deja utilise", domain.ErrConflict)
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  hashed,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		Branch:    input.Branch,
		Phone:     input.Phone,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.mailer.SendWelcome(user, input.Password)

	actorID := actor.ID
	s.audit.Record(ctx, AuditEntry{
		UserID:          &actorID,
		Action:          models.AuditActionCreateUser,
		ResourceType:    "user",
		ResourceID:      fmt.Sprintf("%d", user.ID),
		ResourceDisplay: user.Username,
	}, meta)

	return user, nil
}

// UpdateUser updates an account (manager only)
func (s *UserService) UpdateUser(ctx context.Context, actor domain.Actor, id uint, input *UpdateUserInput, meta domain.RequestMeta) (*models.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: role inconnu '%s'", domain.ErrValidation, *input.Role)
		}
		if user.ID == actor.ID && *input.Role != user.Role {
			return nil, fmt.Errorf("%w: impossible de changer son propre role", domain.ErrConflict)
		}
		user.Role = *input.Role
	}
	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: email deja utilise", domain.ErrConflict)
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Branch != nil {
		user.Branch = *input.Branch
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	actorID := actor.ID
	s.audit.Record(ctx, AuditEntry{
		UserID:          &actorID,
		Action:          models.AuditActionUpdateUser,
		ResourceType:    "user",
		ResourceID:      fmt.Sprintf("%d", user.ID),
		ResourceDisplay: user.Username,
	}, meta)

	return user, nil
}

// ToggleActive flips the active flag (manager only, never on self)
func (s *UserService) ToggleActive(ctx context.Context, actor domain.Actor, id uint, meta domain.RequestMeta) (*models.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, fmt.Errorf("%w: impossible de desactiver son propre compte", domain.ErrConflict)
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	actorID := actor.ID
	s.audit.Record(ctx, AuditEntry{
		UserID:          &actorID,
		Action:          models.AuditActionUpdateUser,
		ResourceType:    "user",
		ResourceID:      fmt.Sprintf("%d", user.ID),
		ResourceDisplay: user.Username,
		Changes:         map[string]string{"is_active": fmt.Sprintf("%t", user.IsActive)},
	}, meta)

	return user, nil
}

// DeleteUser soft deletes an account (manager only, never on self)
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Actor, id uint) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	if id == actor.ID {
		return fmt.Errorf("%w: impossible de supprimer son propre compte", domain.ErrConflict)
	}

	if _, err := s.getUser(ctx, id); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, id)
}

// GetByID returns one user (manager only)
func (s *UserService) GetByID(ctx context.Context, actor domain.Actor, id uint) (*models.User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return s.getUser(ctx, id)
}

// ListUsers returns the role-scoped user listing: the manager sees everyone
// but themselves, the other roles see the active officers.
func (s *UserService) ListUsers(ctx context.Context, actor domain.Actor) ([]*models.UserResponse, error) {
	var (
		users []*models.User
		err   error
	)

	if actor.Role == domain.RoleManager {
		users, err = s.userRepo.ListAllExcept(ctx, actor.ID)
	} else {
		users, err = s.userRepo.ListActiveOfficers(ctx)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

// ChangePassword changes the actor's own password
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, input *ChangePasswordInput) error {
	user, err := s.getUser(ctx, actor.ID)
	if err != nil {
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return fmt.Errorf("%w: ancien mot de passe incorrect", domain.ErrValidation)
	}
	if !password.ValidatePassword(input.NewPassword) {
		return fmt.Errorf("%w: mot de passe trop court (8 caracteres minimum)", domain.ErrValidation)
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

func (s *UserService) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: utilisateur introuvable", domain.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
