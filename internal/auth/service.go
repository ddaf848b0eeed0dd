package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Provider is the account backend a Session signs in against.
type Provider interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*User, string, error)
	Logout(ctx context.Context, userID string) error
}

// Service is the Provider backed by the users table.
type Service struct {
	Repo   *Repo
	Tokens TokenService
	Log    *zap.Logger
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func NewService(repo *Repo, tokens TokenService, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Repo: repo, Tokens: tokens, Log: log}
}

var _ Provider = (*Service)(nil)

func (s *Service) hash(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(b), err
}

// Register creates the account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := s.hash(password)
	if err != nil {
		return errUnavailable("registration", err)
	}
	err = s.Repo.CreateUser(ctx, User{ID: uuid.NewString(), Email: email, PasswordHash: hash})
	if errors.Is(err, ErrEmailTaken) {
		return &AuthError{Kind: KindDuplicateRegistration, Msg: "an account with this email already exists"}
	}
	if err != nil {
		s.Log.Error("create user failed", zap.Error(err))
		return errUnavailable("registration", err)
	}
	s.Log.Info("user registered", zap.String("email", email))
	return nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, token, _, err := s.Authenticate(ctx, email, password)
	return u, token, err
}

// Authenticate is Login that also reports when the token expires.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, errInvalidCredentials()
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		s.Log.Error("lookup user failed", zap.Error(err))
		return nil, "", time.Time{}, errUnavailable("login", err)
	}
	// one answer for unknown email and wrong password
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", time.Time{}, errInvalidCredentials()
	}

	token, exp, err := s.Tokens.Sign(u)
	if err != nil {
		return nil, "", time.Time{}, errUnavailable("login", err)
	}
	return u, token, exp, nil
}

// Logout revokes every token issued to the user so far.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.Repo.BumpTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return errInvalidCredentials()
		}
		return errUnavailable("logout", err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return errUnavailable("password change", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return errInvalidCredentials()
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return errUnavailable("password change", err)
	}
	if err := s.Repo.UpdatePasswordAndBumpTokenVersion(ctx, u.ID, hash); err != nil {
		return errUnavailable("password change", err)
	}
	return nil
}
