// Package sqlite provides SQLite-backed persistence for apps and profiles.
// A single database file holds both tables; wrapper types expose the
// driven store interfaces over the shared connection.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/relaykit/connect-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/relaykit/connect-cli/internal/core/domain"
	"github.com/relaykit/connect-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to the
// profile and app store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.connect/data/profiles.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".connect", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "profiles.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ProfileStore returns a ProfileStore interface backed by this store.
func (s *Store) ProfileStore() driven.ProfileStore {
	return &profileStore{store: s}
}

// AppStore returns an AppStore interface backed by this store.
func (s *Store) AppStore() driven.AppStore {
	return &appStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Profile Store ====================

// profileStore implements driven.ProfileStore.
type profileStore struct {
	store *Store
}

var _ driven.ProfileStore = (*profileStore)(nil)

// Save stores or updates a profile.
func (s *profileStore) Save(ctx context.Context, profile domain.Profile) error {
	if profile.ID == "" {
		return domain.ErrInvalidInput
	}

	oauth2JSON, err := json.Marshal(profile.OAuth2)
	if err != nil {
		return fmt.Errorf("marshalling oauth2 tokens: %w", err)
	}
	oauth1JSON, err := json.Marshal(profile.OAuth1)
	if err != nil {
		return fmt.Errorf("marshalling oauth1 tokens: %w", err)
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO profiles (id, app_id, connector, account_identifier, oauth2, oauth1, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			app_id = excluded.app_id,
			connector = excluded.connector,
			account_identifier = excluded.account_identifier,
			oauth2 = excluded.oauth2,
			oauth1 = excluded.oauth1,
			updated_at = excluded.updated_at
	`, profile.ID, profile.AppID, string(profile.Connector), profile.AccountIdentifier,
		string(oauth2JSON), string(oauth1JSON), profile.CreatedAt, profile.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Get retrieves a profile by ID.
func (s *profileStore) Get(ctx context.Context, id string) (*domain.Profile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, app_id, connector, account_identifier, oauth2, oauth1, created_at, updated_at
		FROM profiles WHERE id = ?
	`, id)

	return scanProfileRow(row)
}

// GetByConnector retrieves the most recently updated profile for a connector.
func (s *profileStore) GetByConnector(ctx context.Context, connector domain.ConnectorType) (*domain.Profile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, app_id, connector, account_identifier, oauth2, oauth1, created_at, updated_at
		FROM profiles WHERE connector = ?
		ORDER BY updated_at DESC LIMIT 1
	`, string(connector))

	return scanProfileRow(row)
}

// List returns all profiles.
func (s *profileStore) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, app_id, connector, account_identifier, oauth2, oauth1, created_at, updated_at
		FROM profiles
	`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile //nolint:prealloc // size unknown from query
	for rows.Next() {
		profile, err := scanProfileRows(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}

	return profiles, nil
}

// Delete removes a profile by ID.
func (s *profileStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}

// scanProfileRow scans a single profile row.
func scanProfileRow(row *sql.Row) (*domain.Profile, error) {
	var profile domain.Profile
	var connector string
	var oauth2JSON, oauth1JSON sql.NullString

	if err := row.Scan(&profile.ID, &profile.AppID, &connector, &profile.AccountIdentifier,
		&oauth2JSON, &oauth1JSON, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	profile.Connector = domain.ConnectorType(connector)
	if err := unmarshalProfileTokens(&profile, oauth2JSON, oauth1JSON); err != nil {
		return nil, err
	}

	return &profile, nil
}

// scanProfileRows scans a profile from *sql.Rows.
func scanProfileRows(rows *sql.Rows) (*domain.Profile, error) {
	var profile domain.Profile
	var connector string
	var oauth2JSON, oauth1JSON sql.NullString

	if err := rows.Scan(&profile.ID, &profile.AppID, &connector, &profile.AccountIdentifier,
		&oauth2JSON, &oauth1JSON, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	profile.Connector = domain.ConnectorType(connector)
	if err := unmarshalProfileTokens(&profile, oauth2JSON, oauth1JSON); err != nil {
		return nil, err
	}

	return &profile, nil
}

func unmarshalProfileTokens(profile *domain.Profile, oauth2JSON, oauth1JSON sql.NullString) error {
	if oauth2JSON.Valid && oauth2JSON.String != jsonNull {
		var tokens domain.TokenSet
		if err := json.Unmarshal([]byte(oauth2JSON.String), &tokens); err != nil {
			return fmt.Errorf("unmarshalling oauth2 tokens: %w", err)
		}
		profile.OAuth2 = &tokens
	}
	if oauth1JSON.Valid && oauth1JSON.String != jsonNull {
		var tokens domain.OAuth1Tokens
		if err := json.Unmarshal([]byte(oauth1JSON.String), &tokens); err != nil {
			return fmt.Errorf("unmarshalling oauth1 tokens: %w", err)
		}
		profile.OAuth1 = &tokens
	}
	return nil
}

// ==================== App Store ====================

// appStore implements driven.AppStore.
type appStore struct {
	store *Store
}

var _ driven.AppStore = (*appStore)(nil)

// Save stores or updates an app.
func (s *appStore) Save(ctx context.Context, app domain.App) error {
	if app.ID == "" {
		return domain.ErrInvalidInput
	}

	oauth2JSON, err := json.Marshal(app.OAuth2)
	if err != nil {
		return fmt.Errorf("marshalling oauth2 config: %w", err)
	}
	oauth1JSON, err := json.Marshal(app.OAuth1)
	if err != nil {
		return fmt.Errorf("marshalling oauth1 config: %w", err)
	}

	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO apps (id, name, connector, oauth2, oauth1, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			connector = excluded.connector,
			oauth2 = excluded.oauth2,
			oauth1 = excluded.oauth1,
			updated_at = excluded.updated_at
	`, app.ID, app.Name, string(app.Connector),
		string(oauth2JSON), string(oauth1JSON), app.CreatedAt, app.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving app: %w", err)
	}
	return nil
}

// Get retrieves an app by ID.
func (s *appStore) Get(ctx context.Context, id string) (*domain.App, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, connector, oauth2, oauth1, created_at, updated_at
		FROM apps WHERE id = ?
	`, id)

	return scanAppRow(row)
}

// ListByConnector returns apps registered for a connector.
func (s *appStore) ListByConnector(ctx context.Context, connector domain.ConnectorType) ([]domain.App, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, connector, oauth2, oauth1, created_at, updated_at
		FROM apps WHERE connector = ?
	`, string(connector))
	if err != nil {
		return nil, fmt.Errorf("querying apps by connector: %w", err)
	}
	defer rows.Close()

	return scanAppRows(rows)
}

// List returns all apps.
func (s *appStore) List(ctx context.Context) ([]domain.App, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, connector, oauth2, oauth1, created_at, updated_at
		FROM apps
	`)
	if err != nil {
		return nil, fmt.Errorf("querying apps: %w", err)
	}
	defer rows.Close()

	return scanAppRows(rows)
}

// Delete removes an app by ID.
func (s *appStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM apps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting app: %w", err)
	}
	return nil
}

// scanAppRow scans a single app row.
func scanAppRow(row *sql.Row) (*domain.App, error) {
	var app domain.App
	var connector string
	var oauth2JSON, oauth1JSON sql.NullString

	if err := row.Scan(&app.ID, &app.Name, &connector,
		&oauth2JSON, &oauth1JSON, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning app: %w", err)
	}

	app.Connector = domain.ConnectorType(connector)
	if err := unmarshalAppConfigs(&app, oauth2JSON, oauth1JSON); err != nil {
		return nil, err
	}

	return &app, nil
}

// scanAppRows scans multiple app rows.
func scanAppRows(rows *sql.Rows) ([]domain.App, error) {
	var apps []domain.App //nolint:prealloc // size unknown from query
	for rows.Next() {
		var app domain.App
		var connector string
		var oauth2JSON, oauth1JSON sql.NullString

		if err := rows.Scan(&app.ID, &app.Name, &connector,
			&oauth2JSON, &oauth1JSON, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning app: %w", err)
		}

		app.Connector = domain.ConnectorType(connector)
		if err := unmarshalAppConfigs(&app, oauth2JSON, oauth1JSON); err != nil {
			return nil, err
		}

		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating apps: %w", err)
	}

	return apps, nil
}

func unmarshalAppConfigs(app *domain.App, oauth2JSON, oauth1JSON sql.NullString) error {
	if oauth2JSON.Valid && oauth2JSON.String != jsonNull {
		var cfg domain.OAuth2Config
		if err := json.Unmarshal([]byte(oauth2JSON.String), &cfg); err != nil {
			return fmt.Errorf("unmarshalling oauth2 config: %w", err)
		}
		app.OAuth2 = &cfg
	}
	if oauth1JSON.Valid && oauth1JSON.String != jsonNull {
		var cfg domain.OAuth1Config
		if err := json.Unmarshal([]byte(oauth1JSON.String), &cfg); err != nil {
			return fmt.Errorf("unmarshalling oauth1 config: %w", err)
		}
		app.OAuth1 = &cfg
	}
	return nil
}
