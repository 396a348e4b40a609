//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the table layouts documented on each postgres store.
const schema = `
CREATE TABLE IF NOT EXISTS subjects (
	address    TEXT PRIMARY KEY,
	role       TEXT NOT NULL,
	hydration  BOOL NOT NULL DEFAULT FALSE,
	wellness   BOOL NOT NULL DEFAULT FALSE,
	inactivity BOOL NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS caregiver_contacts (
	subject_address TEXT NOT NULL,
	name            TEXT NOT NULL,
	address         TEXT NOT NULL,
	is_primary      BOOL NOT NULL,
	position        INT NOT NULL,
	PRIMARY KEY (subject_address, address)
);

CREATE TABLE IF NOT EXISTS tasks (
	subject_id TEXT NOT NULL,
	id         INT NOT NULL,
	text       TEXT NOT NULL,
	done       BOOL NOT NULL,
	created    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (subject_id, id)
);

CREATE TABLE IF NOT EXISTS notes (
	subject_id TEXT NOT NULL,
	id         INT NOT NULL,
	text       TEXT NOT NULL,
	created    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (subject_id, id)
);

CREATE TABLE IF NOT EXISTS shopping_items (
	subject_id TEXT NOT NULL,
	id         INT NOT NULL,
	item       TEXT NOT NULL,
	bought     BOOL NOT NULL,
	added      TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (subject_id, id)
);

CREATE TABLE IF NOT EXISTS expenses (
	subject_id  TEXT NOT NULL,
	id          INT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL,
	category    TEXT NOT NULL,
	date        TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (subject_id, id)
);

CREATE TABLE IF NOT EXISTS locations (
	subject_id TEXT PRIMARY KEY,
	city       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS medications (
	subject_id TEXT PRIMARY KEY,
	names      TEXT[] NOT NULL
);

CREATE TABLE IF NOT EXISTS medication_intake (
	subject_id TEXT NOT NULL,
	day        TEXT NOT NULL,
	period     TEXT NOT NULL,
	logged_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reminders (
	subject_id TEXT NOT NULL,
	id         INT NOT NULL,
	message    TEXT NOT NULL,
	fire_at    TIMESTAMPTZ NOT NULL,
	created    TIMESTAMPTZ NOT NULL,
	sent       BOOL NOT NULL,
	PRIMARY KEY (subject_id, id)
);

CREATE TABLE IF NOT EXISTS activity_ledger (
	subject_id TEXT NOT NULL,
	day        TEXT NOT NULL,
	count      INT NOT NULL,
	PRIMARY KEY (subject_id, day)
);

CREATE TABLE IF NOT EXISTS obligations (
	subject_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	period_key TEXT NOT NULL,
	state      TEXT NOT NULL,
	attempt    INT NOT NULL,
	sent_at    TIMESTAMPTZ NOT NULL,
	response   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (subject_id, kind, period_key)
);

CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	subject_id TEXT NOT NULL,
	title      TEXT NOT NULL,
	start_at   TIMESTAMPTZ NOT NULL,
	end_at     TIMESTAMPTZ NOT NULL,
	created    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_events (
	id         BIGSERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ NOT NULL,
	subject_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	detail     TEXT NOT NULL
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the full
// application schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("asistente"),
		tcpostgres.WithUsername("asistente"),
		tcpostgres.WithPassword("asistente"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		URL:       url,
		DB:        db,
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})

	return pc
}

// Truncate empties the given tables. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			return err
		}
	}
	return nil
}
