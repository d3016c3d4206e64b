package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
)

const userColumns = `id, login, password_hash, referrer_id, points, vip_expire_at, commission_balance, created_at`

type userRepository struct {
	storage *Storage
}

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, referrerID *int64) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, referrer_id) VALUES ($1, $2, $3) RETURNING id, created_at`
	u := model.User{Login: login, PasswordHash: passwordHash, ReferrerID: referrerID}
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash, referrerID).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case uniqueViolation:
			return nil, domainErrors.ErrAlreadyExists
		case foreignKeyViolation:
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE login=$1`
	return r.get(ctx, query, login)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.get(ctx, query, id)
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Login, &u.PasswordHash, &u.ReferrerID, &u.Points, &u.VIPExpireAt, &u.CommissionBalance, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
