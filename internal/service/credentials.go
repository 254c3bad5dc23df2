package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripnosis/tripnosis/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// Demo account inserted by SeedDemoUser. Development only.
const (
	DemoUserName     = "Demo User"
	DemoUserEmail    = "user@example.com"
	DemoUserPassword = "password"
)

// CredentialStore owns user lookup, creation and password verification on
// top of a UserRepository.
type CredentialStore struct {
	users      domain.UserRepository
	bcryptCost int
	now        func() time.Time

	// dummyHash is compared against when an email is unknown so that a miss
	// costs the same bcrypt work as a wrong password.
	dummyHash string
}

// NewCredentialStore creates a CredentialStore hashing at the given bcrypt cost.
func NewCredentialStore(users domain.UserRepository, bcryptCost int) *CredentialStore {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	s := &CredentialStore{
		users:      users,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
	if hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost); err == nil {
		s.dummyHash = string(hash)
	}
	return s
}

// FindByEmail looks a user up by email, ignoring case.
// Returns domain.ErrNotFound when no record matches.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// FindByID looks a user up by id.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create hashes the password and stores a new user.
func (s *CredentialStore) Create(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	// Cheap check before paying for bcrypt; the repository enforces it atomically.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// VerifyPassword reports whether password produced hash.
func (s *CredentialStore) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate returns the user matching email and password.
// Unknown emails and wrong passwords both yield domain.ErrUnauthorized.
func (s *CredentialStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.VerifyPassword(password, s.dummyHash)
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// SeedDemoUser inserts the demo account if it is not already present.
func (s *CredentialStore) SeedDemoUser(ctx context.Context) error {
	_, err := s.Create(ctx, DemoUserName, DemoUserEmail, DemoUserPassword)
	if err != nil && !errors.Is(err, domain.ErrDuplicateEmail) {
		return fmt.Errorf("seed demo user: %w", err)
	}
	return nil
}
