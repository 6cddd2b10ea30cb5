package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"competition-voting/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotFound      = domain.NotFound("admin")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Service checks administrator credentials. A successful Login is the
// "admin session active" signal the HTTP layer turns into a token.
type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// EnsureAdmin creates the account if no admin with that username exists yet.
// An existing account keeps its stored password.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Invalid("username", "username and password required")
	}

	existing, err := s.repo.GetAdminByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrAdminNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := &Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateAdmin(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info("admin account created", zap.String("username", username))
	return a, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Admin, error) {
	a, err := s.repo.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrAdminNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("admin login rejected", zap.String("username", a.Username))
		return nil, ErrInvalidCredentials
	}

	return a, nil
}
