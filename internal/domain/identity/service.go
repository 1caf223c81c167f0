package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediguard/mediguard/internal/platform/auth"
)

const bcryptCost = 10

// Sentinel errors for the identity domain. Login failures share one error so
// responses cannot distinguish an unknown username from a wrong password.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service provides business logic for user accounts.
type Service struct {
	users UserRepository
}

// NewService creates a new identity service.
func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Register validates the input, enforces username and email uniqueness, and
// stores the user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" || in.FullName == "" {
		return nil, fmt.Errorf("username, password, email and full_name are required")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if !auth.ValidRole(in.Role) {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:       in.Username,
		PasswordHash:   string(hash),
		Email:          in.Email,
		FullName:       in.FullName,
		Role:           in.Role,
		Phone:          in.Phone,
		Specialization: in.Specialization,
		LicenseNumber:  in.LicenseNumber,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and returns the user. Unknown usernames and
// wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// ListByRole returns the directory of users holding the given role, for the
// share and prescribe pickers.
func (s *Service) ListByRole(ctx context.Context, role string) ([]*User, error) {
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return s.users.ListByRole(ctx, role)
}
