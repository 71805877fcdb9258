package db

import (
	"context"
)

const bootstrapMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    username text NOT NULL DEFAULT '',
    name text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

-- partial: users minted for email-less provider identities all carry
-- an empty email and must not collide
CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email)) WHERE email <> '';

CREATE TABLE IF NOT EXISTS user_credentials (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL REFERENCES users(id),
    password_hash text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT user_credentials_user_unique UNIQUE (user_id)
);

CREATE TABLE IF NOT EXISTS user_identities (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL REFERENCES users(id),
    provider text NOT NULL,
    provider_user_id text NOT NULL,
    profile jsonb NOT NULL DEFAULT '{}',
    credentials jsonb,
    auth_scheme text NOT NULL DEFAULT 'oauth2',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT user_identities_provider_unique
        UNIQUE (provider, provider_user_id)
);

CREATE INDEX IF NOT EXISTS user_identities_user_id_idx
ON user_identities (user_id);
`

// RunBootstrapMigration creates the identity-store schema. The unique
// (provider, provider_user_id) constraint is what makes find-or-create
// safe under concurrent duplicate logins.
func RunBootstrapMigration(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, bootstrapMigration)
	return err
}
