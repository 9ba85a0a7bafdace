package storage

import "context"

// schema holds the DDL the server applies at startup. Properties are
// referenced by bookings, payments and issues without foreign keys:
// deleting a property leaves its bookings in place. Rooms own their
// messages and events own their RSVPs, so those cascade.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		last_login_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id     UUID PRIMARY KEY,
		role        TEXT NOT NULL CHECK (role IN ('tenant', 'owner', 'admin')),
		assigned_at TIMESTAMPTZ NOT NULL,
		assigned_by TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id          UUID PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		owner_id    UUID NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		rent_price  DOUBLE PRECISION NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		amenities   TEXT[] NOT NULL DEFAULT '{}',
		images      TEXT[] NOT NULL DEFAULT '{}',
		status      TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id          UUID PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		tenant_id   UUID NOT NULL,
		property_id UUID NOT NULL,
		start_date  TIMESTAMPTZ NOT NULL,
		end_date    TIMESTAMPTZ NOT NULL,
		amount      DOUBLE PRECISION NOT NULL DEFAULT 0,
		status      TEXT NOT NULL DEFAULT 'pending'
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id                 UUID PRIMARY KEY,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		tenant_id          UUID NOT NULL,
		property_id        UUID NOT NULL,
		booking_id         UUID NOT NULL,
		amount             DOUBLE PRECISION NOT NULL,
		status             TEXT NOT NULL DEFAULT 'pending',
		order_id           TEXT NOT NULL DEFAULT '',
		gateway_payment_id TEXT NOT NULL DEFAULT '',
		notes              JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id          UUID PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		tenant_id   UUID NOT NULL,
		property_id UUID NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'reported',
		attachments TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS announcements (
		id         UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		message    TEXT NOT NULL,
		type       TEXT NOT NULL,
		date       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS polls (
		id         UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		question   TEXT NOT NULL,
		options    TEXT[] NOT NULL,
		votes      BIGINT[] NOT NULL,
		voters     TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id          UUID PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS event_rsvps (
		event_id   UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id    UUID NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('yes', 'no')),
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (event_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS chat_rooms (
		code       CHAR(6) PRIMARY KEY,
		created_by UUID NOT NULL,
		members    TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         UUID PRIMARY KEY,
		room_code  CHAR(6) NOT NULL REFERENCES chat_rooms(code) ON DELETE CASCADE,
		user_id    UUID NOT NULL,
		body       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_tenant ON bookings (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_property ON bookings (property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_booking ON payments (booking_id)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_property ON issues (property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_room ON chat_messages (room_code, created_at)`,
}

// EnsureSchema creates missing tables and indexes
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
