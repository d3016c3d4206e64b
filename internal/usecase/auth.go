package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
	pkgAuth "github.com/polkiloo/cryptopay/internal/pkg/auth"
)

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register creates a new user and returns auth token. referrerLogin is
// optional; when set it must name an existing user.
func (u *AuthUseCase) Register(ctx context.Context, login, password, referrerLogin string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if !ValidateLogin(login) || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	var referrerID *int64
	if referrerLogin = strings.TrimSpace(referrerLogin); referrerLogin != "" {
		if referrerLogin == login {
			return nil, "", domainErrors.ErrInvalidReferrer
		}
		referrer, err := u.users.GetByLogin(ctx, referrerLogin)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return nil, "", domainErrors.ErrInvalidReferrer
			}
			return nil, "", err
		}
		referrerID = &referrer.ID
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrPasswordTooLong) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash, referrerID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			return nil, "", domainErrors.ErrAlreadyExists
		case errors.Is(err, domainErrors.ErrNotFound):
			return nil, "", domainErrors.ErrInvalidReferrer
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ParseToken extracts user ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}
