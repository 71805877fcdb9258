package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"passport-login/internal/db"
	"passport-login/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

// IdentityRepository maps external identities to users.
type IdentityRepository struct {
	db    *db.DB
	users model.UserStore
}

func NewIdentityRepository(db *db.DB, users model.UserStore) *IdentityRepository {
	return &IdentityRepository{db: db, users: users}
}

// FindOrCreateUser resolves an external profile to a User:
//
//  1. identity lookup by (provider, provider_user_id);
//  2. email-based linking to an existing user, attaching a new identity;
//  3. new user plus identity link.
//
// Inserts use ON CONFLICT DO NOTHING followed by a re-select, so two
// concurrent logins for the same external identity converge on one row.
func (r *IdentityRepository) FindOrCreateUser(ctx context.Context, profile model.ProviderProfile) (model.User, error) {
	if profile.Provider == "" || profile.ProviderUserID == "" {
		return model.User{}, errors.New("profile missing provider or provider user id")
	}

	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM user_identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`, profile.Provider, profile.ProviderUserID).Scan(&userID)

	if err == nil {
		return r.users.FindByID(ctx, userID)
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("failed to look up identity: %w", err)
	}

	var user model.User
	if profile.Email == "" {
		// Not every provider returns an email; linking by an empty
		// email would glue unrelated external identities onto one
		// user. Mint a fresh user instead.
		user, err = r.users.Create(ctx, model.User{
			Username: profile.Username,
			Name:     profile.Name,
		})
	} else {
		// Existing user, new provider: link by email.
		user, err = r.users.FindByEmail(ctx, profile.Email)
		if errors.Is(err, model.ErrNotFound) {
			user, err = r.users.Create(ctx, model.User{
				Email:    profile.Email,
				Username: profile.Username,
				Name:     profile.Name,
			})
			if errors.Is(err, model.ErrDuplicate) {
				// Lost a race against a concurrent signup for the same email.
				user, err = r.users.FindByEmail(ctx, profile.Email)
			}
		}
	}
	if err != nil {
		return model.User{}, err
	}

	linkedID, err := r.linkIdentity(ctx, user.ID, profile)
	if err != nil {
		return model.User{}, err
	}
	if linkedID != user.ID {
		// A concurrent login linked this identity first; accept the winner.
		return r.users.FindByID(ctx, linkedID)
	}

	return user, nil
}

func (r *IdentityRepository) linkIdentity(ctx context.Context, userID uuid.UUID, profile model.ProviderProfile) (uuid.UUID, error) {
	raw := profile.Raw
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	authScheme := profile.AuthScheme
	if authScheme == "" {
		authScheme = "oauth2"
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO user_identities (user_id, provider, provider_user_id, profile, credentials, auth_scheme)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, provider_user_id) DO NOTHING
	`, userID, profile.Provider, profile.ProviderUserID, []byte(raw), nullableJSON(profile.Credentials), authScheme)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to link identity: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// A concurrent login inserted the link first.
		var existing uuid.UUID
		err := r.db.QueryRowContext(ctx, `
			SELECT user_id
			FROM user_identities
			WHERE provider = $1
			  AND provider_user_id = $2
		`, profile.Provider, profile.ProviderUserID).Scan(&existing)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to re-read identity after conflict: %w", err)
		}
		return existing, nil
	}

	return userID, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
