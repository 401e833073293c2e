package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmoskvitin/skyfare/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*domain.User, error)
	UpdatePreferences(ctx context.Context, id int64, prefs map[string]any) (*domain.User, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, otp_code, otp_expires_at, reset_token, preferences, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OTPCode, &u.OTPExpiresAt, &u.ResetToken, &u.Preferences, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Preferences == nil {
		user.Preferences = map[string]any{}
	}
	err := r.db.QueryRow(ctx, `INSERT INTO users (email, password_hash, name, preferences)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`, user.Email, user.PasswordHash, user.Name, user.Preferences).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	return scanUser(row)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `UPDATE users SET name=$1, email=$2, updated_at=now() WHERE id=$3 RETURNING `+userColumns, name, email, id)
	return scanUser(row)
}

func (r *PGUserRepository) UpdatePreferences(ctx context.Context, id int64, prefs map[string]any) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `UPDATE users SET preferences=$1, updated_at=now() WHERE id=$2 RETURNING `+userColumns, prefs, id)
	return scanUser(row)
}

var _ UserRepository = (*PGUserRepository)(nil)
