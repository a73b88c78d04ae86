package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
	"github.com/karimezz22/Library/internal/infra/logger"
	"github.com/karimezz22/Library/internal/infra/security"
	"github.com/karimezz22/Library/internal/repository"
)

const sessionTokenBytes = 16

var (
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates the email/password pair does not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountPending indicates the account exists but has not been approved yet.
	ErrAccountPending = errors.New("account awaiting approval")
	// ErrInvalidToken indicates the presented session token matches no account.
	ErrInvalidToken = errors.New("invalid session token")
)

var emailFormat = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IdentityService handles registration, login, and the admin approval queue.
type IdentityService struct {
	users             port.UserRepository
	uow               port.UnitOfWork
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
}

// NewIdentityService constructs the identity service.
func NewIdentityService(users port.UserRepository, uow port.UnitOfWork, events port.EventPublisher, validator *security.PasswordValidator, log *zap.Logger) *IdentityService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityService{
		users:             users,
		uow:               uow,
		events:            events,
		passwordValidator: validator,
		logger:            log,
	}
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Register creates a pending member account and issues its session token.
// The token is stable for the life of the account.
func (s *IdentityService) Register(ctx context.Context, name, email, phone, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if nameLen := len([]rune(name)); nameLen < 3 || nameLen > 20 {
		return domain.User{}, validationErr("name must be between 3 and 20 characters")
	}
	if !emailFormat.MatchString(email) {
		return domain.User{}, validationErr("email is not valid")
	}
	if phone == "" {
		return domain.User{}, validationErr("phone is required")
	}
	if err := s.passwordValidator.Validate(password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	token, err := security.GenerateToken(sessionTokenBytes)
	if err != nil {
		return domain.User{}, fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Token:        token,
		Status:       domain.UserStatusPending,
		Role:         domain.UserRoleMember,
		RegisteredAt: now,
	}

	// The duplicate check and insert run under the user lock so two
	// concurrent registrations for the same email cannot both pass the check.
	err = s.uow.WithinUserLock(ctx, email, func(repos port.TxRepositories) error {
		if _, err := repos.Users.GetByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup email: %w", err)
		}

		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.publishRegistered(ctx, user)

	return user.Sanitized(), nil
}

func (s *IdentityService) publishRegistered(ctx context.Context, user domain.User) {
	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Status:       string(user.Status),
		RegisteredAt: user.RegisteredAt,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

// Login verifies credentials and marks the account online. Pending accounts
// cannot log in.
func (s *IdentityService) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, validationErr("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, fmt.Errorf("account for email: %w", err)
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Info("login rejected",
			zap.String("email", logger.MaskEmail(email)),
		)
		return domain.User{}, ErrInvalidCredentials
	}

	if user.Status != domain.UserStatusActive {
		return domain.User{}, ErrAccountPending
	}

	if err := s.users.SetOnline(ctx, user.ID, true); err != nil {
		return domain.User{}, fmt.Errorf("mark user online: %w", err)
	}
	user.Online = true

	return user.Sanitized(), nil
}

// Logout marks the account offline. Logging out an already-offline account
// succeeds; logging out a deleted account does not.
func (s *IdentityService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return validationErr("user id is required")
	}

	if err := s.users.SetOnline(ctx, userID, false); err != nil {
		return fmt.Errorf("mark user offline: %w", err)
	}

	return nil
}

// ApproveUser activates a pending account. Approving an already-active
// account is a no-op.
func (s *IdentityService) ApproveUser(ctx context.Context, userID, approvedBy string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if user.Status == domain.UserStatusActive {
		return user.Sanitized(), nil
	}

	if err := s.users.UpdateStatus(ctx, user.ID, domain.UserStatusActive); err != nil {
		return domain.User{}, fmt.Errorf("activate user: %w", err)
	}
	user.Status = domain.UserStatusActive

	event := domain.UserApprovedEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		ApprovedBy: approvedBy,
		ApprovedAt: time.Now().UTC(),
	}
	if err := s.events.PublishUserApproved(ctx, event); err != nil {
		s.logger.Warn("publish user approved failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	return user.Sanitized(), nil
}

// RejectUser removes the registration outright.
func (s *IdentityService) RejectUser(ctx context.Context, userID string) error {
	if userID == "" {
		return validationErr("user id is required")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

// ListPendingUsers returns accounts awaiting approval. An empty queue is not
// an error.
func (s *IdentityService) ListPendingUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx, port.UserFilter{Status: domain.UserStatusPending})
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}

	sanitized := make([]domain.User, 0, len(users))
	for _, user := range users {
		sanitized = append(sanitized, user.Sanitized())
	}

	return sanitized, nil
}

// AuthenticateToken resolves a session token to its account. Tokens of
// accounts still awaiting approval are refused.
func (s *IdentityService) AuthenticateToken(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrInvalidToken
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, fmt.Errorf("lookup token: %w", err)
	}

	if user.Status != domain.UserStatusActive {
		return domain.User{}, ErrAccountPending
	}

	return user.Sanitized(), nil
}
