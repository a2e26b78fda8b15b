package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

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

// Register creates a user for an external identity. Duplicate identities or
// emails are rejected both by the up-front check and by the unique
// constraints, which catch concurrent registrations.
func (s *Service) Register(ctx context.Context, u User) (User, error) {
	u.ExternalIdentity = strings.TrimSpace(u.ExternalIdentity)
	u.Email = strings.TrimSpace(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	if u.ExternalIdentity == "" || u.Email == "" || u.FullName == "" {
		return User{}, apperror.Validation("Missing required fields")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return User{}, apperror.Validation("Invalid role")
	}

	exists, err := s.repo.Exists(ctx, u.ExternalIdentity, u.Email)
	if err != nil {
		return User{}, apperror.Storage("check user", err)
	}
	if exists {
		return User{}, ErrUserExists
	}

	if err := s.repo.Create(ctx, &u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return User{}, ErrUserExists
		}
		return User{}, apperror.Storage("create user", err)
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login looks the user up by identity. Credentials are verified by the
// identity provider, not here.
func (s *Service) Login(ctx context.Context, externalIdentity string) (User, error) {
	u, err := s.lookup(ctx, externalIdentity)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperror.NotFound("User not found. Please register first.")
	}
	return u, err
}

func (s *Service) GetUser(ctx context.Context, externalIdentity string) (User, error) {
	return s.lookup(ctx, externalIdentity)
}

func (s *Service) lookup(ctx context.Context, externalIdentity string) (User, error) {
	externalIdentity = strings.TrimSpace(externalIdentity)
	if externalIdentity == "" {
		return User{}, apperror.Validation("External identity is required")
	}
	u, err := s.repo.GetByIdentity(ctx, externalIdentity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, apperror.Storage("get user", err)
	}
	return u, nil
}
