package hubservice

import (
	"context"
	"strings"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/crypto/bcrypt"
)

func (s *HubService) Register(ctx context.Context, creds models.Credentials) error {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return errors.NewValidationError("username and password are required", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	if err := s.Users.Create(ctx, models.User{Username: username, Password: string(hash)}); err != nil {
		return err
	}
	nuts.L.Infof("[UserService] Registered user %s", username)
	return nil
}

// Authenticate checks credentials. Plaintext passwords from older user files are
// accepted once and replaced by a bcrypt hash.
func (s *HubService) Authenticate(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.NewAuthError("invalid credentials", nil)
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username != creds.Username {
			continue
		}
		if isBcryptHash(u.Password) {
			if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(creds.Password)) != nil {
				return nil, errors.NewAuthError("invalid credentials", nil)
			}
			return &models.User{Username: u.Username}, nil
		}
		if u.Password != creds.Password {
			return nil, errors.NewAuthError("invalid credentials", nil)
		}
		s.rehash(ctx, u.Username, creds.Password)
		return &models.User{Username: u.Username}, nil
	}
	return nil, errors.NewAuthError("invalid credentials", nil)
}

func (s *HubService) rehash(ctx context.Context, username, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		nuts.L.Errorf("[UserService] Failed to hash legacy password for %s: %v", username, err)
		return
	}
	if err := s.Users.UpdatePassword(ctx, username, string(hash)); err != nil {
		nuts.L.Errorf("[UserService] Failed to store rehashed password for %s: %v", username, err)
		return
	}
	nuts.L.Infof("[UserService] Upgraded legacy password for %s", username)
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
