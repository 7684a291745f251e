package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/user/entity"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store is the persistence the user service needs.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	SetFlags(ctx context.Context, id int64, isAdmin, isLoyaltyMember bool) error
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidSignup  = errors.New("a valid email and a password of 8 to 72 bytes are required")
)

const (
	minPasswordLen = 8
	// bcrypt refuses longer input
	maxPasswordLen = 72
)

// UserService orchestrates signup and password authentication.
type UserService struct {
	store  Store
	hasher PasswordHasher
}

func NewUserService(s Store, hasher PasswordHasher) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{store: s, hasher: hasher}
}

// Signup creates a regular user. Capability flags are never set here.
func (s *UserService) Signup(ctx context.Context, email, name, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return nil, ErrInvalidSignup
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := s.store.Create(ctx, u); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both yield ErrBadCredentials to avoid user enumeration.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" || !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// SetFlags grants or revokes the admin and loyalty capabilities.
func (s *UserService) SetFlags(ctx context.Context, id int64, isAdmin, isLoyaltyMember bool) (*entity.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.SetFlags(ctx, id, isAdmin, isLoyaltyMember); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
