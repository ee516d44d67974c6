// Package auth implements signup and login. Passwords are bcrypt-hashed
// before storage and before comparison; plaintext is never persisted, at
// signup or at login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bizpulse/internal/models"
	"bizpulse/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords, indistinguishably.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUsernameTaken is returned on signup for an existing username.
	ErrUsernameTaken = errors.New("auth: username already taken")
)

type Service struct {
	store  *store.Store
	cost   int
	logger *slog.Logger
}

func NewService(st *store.Store, cost int, logger *slog.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, cost: cost, logger: logger}
}

// Signup creates an account and returns a session for it.
func (s *Service) Signup(ctx context.Context, username, password string) (models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Session{}, fmt.Errorf("auth: username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth: hash password: %w", err)
	}

	if err := s.store.CreateUser(ctx, username, string(hash)); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Session{}, ErrUsernameTaken
		}
		return models.Session{}, err
	}

	s.logger.Info("account created", "username", username)
	return models.Session{Username: username}, nil
}

// Login verifies credentials against the stored hash and returns a session.
func (s *Service) Login(ctx context.Context, username, password string) (models.Session, error) {
	user, err := s.store.UserByName(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}

	return models.Session{Username: user.Username}, nil
}
