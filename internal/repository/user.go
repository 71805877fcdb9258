package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"passport-login/internal/db"
	"passport-login/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository persists User and UserCredentials records in Postgres.
type UserRepository struct {
	db *db.DB
}

func NewUserRepository(db *db.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, username, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, username, name, created_at, updated_at
	`, user.Email, user.Username, user.Name).Scan(
		&user.ID, &user.Email, &user.Username, &user.Name,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrDuplicate
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByEmail returns the user together with linked identities.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, name, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(
		&user.ID, &user.Email, &user.Username, &user.Name,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to find user by email: %w", err)
	}

	identities, err := r.identitiesForUser(ctx, user.ID)
	if err != nil {
		return model.User{}, err
	}
	user.Identities = identities

	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Email, &user.Username, &user.Name,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to find user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) CreateCredentials(ctx context.Context, creds model.UserCredentials) (model.UserCredentials, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_credentials (user_id, password_hash)
		VALUES ($1, $2)
		RETURNING id, user_id, password_hash, created_at
	`, creds.UserID, creds.PasswordHash).Scan(
		&creds.ID, &creds.UserID, &creds.PasswordHash, &creds.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.UserCredentials{}, model.ErrDuplicate
		}
		return model.UserCredentials{}, fmt.Errorf("failed to create credentials: %w", err)
	}

	return creds, nil
}

func (r *UserRepository) CredentialsByEmail(ctx context.Context, email string) (model.UserCredentials, error) {
	var creds model.UserCredentials
	err := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.user_id, c.password_hash, c.created_at
		FROM user_credentials c
		JOIN users u ON u.id = c.user_id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(
		&creds.ID, &creds.UserID, &creds.PasswordHash, &creds.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserCredentials{}, model.ErrNotFound
		}
		return model.UserCredentials{}, fmt.Errorf("failed to find credentials by email: %w", err)
	}

	return creds, nil
}

func (r *UserRepository) identitiesForUser(ctx context.Context, userID uuid.UUID) ([]model.UserIdentity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider, provider_user_id, profile, credentials, auth_scheme, created_at, user_id
		FROM user_identities
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var identities []model.UserIdentity
	for rows.Next() {
		var (
			identity    model.UserIdentity
			profile     []byte
			credentials []byte
		)
		if err := rows.Scan(
			&identity.ID, &identity.Provider, &identity.ProviderUserID,
			&profile, &credentials, &identity.AuthScheme,
			&identity.Created, &identity.UserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identity.Profile = profile
		identity.Credentials = credentials
		identities = append(identities, identity)
	}

	return identities, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
