package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phoneid/phoneid/internal/apperr"
)

// Service authenticates console admins and issues their session tokens.
type Service struct {
	repo   Repository
	secret []byte
}

// NewService creates the admin service. The secret signs session tokens.
func NewService(repo Repository, secret string) *Service {
	return &Service{repo: repo, secret: []byte(secret)}
}

// Authenticate verifies an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Admin, error) {
	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return Admin{}, apperr.New(apperr.KindUnauthorized, "invalid email or password")
		}
		return Admin{}, err
	}
	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return Admin{}, apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}
	return a, nil
}

// IssueToken signs a stateless session token carrying the admin identity.
func (s *Service) IssueToken(a Admin) (string, error) {
	claims := map[string]any{
		"sub":   a.ID,
		"email": a.Email,
		"iat":   time.Now().Unix(),
	}
	return signToken(claims, s.secret)
}

// VerifyToken validates a session token and returns the admin id it carries.
func (s *Service) VerifyToken(token string) (string, error) {
	claims, err := parseToken(token, s.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	return sub, nil
}

// Create provisions a new admin with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, email, password string) (Admin, error) {
	if email == "" || password == "" {
		return Admin{}, apperr.New(apperr.KindValidation, "email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Admin{}, err
	}
	a := Admin{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Admin{}, err
	}
	return a, nil
}

// Bootstrap provisions the configured admin at startup if it does not exist.
func (s *Service) Bootstrap(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	_, err := s.Create(ctx, email, password)
	if apperr.IsKind(err, apperr.KindDuplicate) {
		return nil
	}
	return err
}
