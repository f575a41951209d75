package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/audioforge/studio/internal/auth"
	"github.com/audioforge/studio/internal/domain"
	"github.com/audioforge/studio/internal/events"
	"github.com/audioforge/studio/internal/repository"
	"github.com/audioforge/studio/internal/session"
	apperrors "github.com/audioforge/studio/pkg/util"
)

const msgUserExists = "User already exists with this email"

// AuthService coordinates registration and sign-in flows.
type AuthService struct {
	users      repository.UserRepository
	sessions   *session.Service
	bcryptCost int
	dispatcher events.Dispatcher
	logger     *zap.Logger
	compare    func(hashed, plain string) error

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates what the auth service needs.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   *session.Service
	BcryptCost int
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// SignUpInput describes a new account. Fields are expected to be validated.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		bcryptCost: deps.BcryptCost,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
		compare:    auth.ComparePassword,
	}
}

// SignUp creates an account. It does not start a session.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	email := domain.NormalizeEmail(input.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict(msgUserExists, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up for the same address.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict(msgUserExists, nil)
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventUserRegistered,
		UserID:  user.ID,
		Payload: events.UserRegisteredPayload{Email: user.Email},
	})
	return user, nil
}

// SignIn checks credentials and issues a session token. Unknown addresses
// and wrong passwords produce the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", time.Time{}, err
	}
	// Unknown addresses cost one bcrypt comparison, the same as a wrong password.
	if err != nil || user.PasswordHash == "" {
		_ = s.compare(s.placeholderHash(), password)
		return nil, "", time.Time{}, apperrors.NewCredentialsInvalid()
	}
	if s.compare(user.PasswordHash, password) != nil {
		return nil, "", time.Time{}, apperrors.NewCredentialsInvalid()
	}

	token, exp, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("placeholder-password", s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to build placeholder hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// CurrentUser loads the account behind a verified session subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// Sessions exposes the token service for the route guard.
func (s *AuthService) Sessions() *session.Service {
	return s.sessions
}
