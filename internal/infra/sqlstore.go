package infra

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"
	_ "modernc.org/sqlite"

	"github.com/eliteGoblin/focusd/web_gate/internal/condition"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// Ensure sqlcipher driver is registered.
var _ = sqlcipher.ErrBusy

const (
	storeDBName = "webgate.db"
)

// SQLStore implements domain.Store on a SQLite database, either encrypted
// with SQLCipher or plain.
type SQLStore struct {
	db        *sql.DB
	dbPath    string
	encrypted bool
}

// OpenEncryptedStore opens (or creates) the SQLCipher database in dataDir.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func OpenEncryptedStore(dataDir string, key []byte) (*SQLStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, storeDBName)
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096",
		dbPath, hex.EncodeToString(key))
	return openStore("sqlite3", dsn, dbPath, true)
}

// OpenPlainStore opens (or creates) an unencrypted database in dataDir.
func OpenPlainStore(dataDir string) (*SQLStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, storeDBName)
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return openStore("sqlite", dsn, dbPath, false)
}

// OpenStore opens the encrypted store, creating a key through keys on first
// use, or the plain store when encryption is off.
func OpenStore(dataDir string, encrypted bool, keys domain.KeyProvider) (*SQLStore, error) {
	if !encrypted {
		return OpenPlainStore(dataDir)
	}
	key, err := EnsureKey(keys)
	if err != nil {
		return nil, err
	}
	return OpenEncryptedStore(dataDir, key)
}

func openStore(driver, dsn, dbPath string, encrypted bool) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under the API server.
	db.SetMaxOpenConns(1)

	// A wrong SQLCipher key only surfaces on the first real query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLStore{db: db, dbPath: dbPath, encrypted: encrypted}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		items TEXT NOT NULL,
		mode TEXT NOT NULL,
		cond TEXT NOT NULL,
		exceptions TEXT NOT NULL,
		enabled INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS progress (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		steps INTEGER NOT NULL,
		workout_minutes INTEGER NOT NULL,
		date TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS secrets (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', '1')`)
	return err
}

// Path returns the database file path.
func (s *SQLStore) Path() string {
	return s.dbPath
}

// Encrypted reports whether the database is SQLCipher-encrypted.
func (s *SQLStore) Encrypted() bool {
	return s.encrypted
}

// Close releases the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- domain.RuleRepository implementation ---

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ListRules returns all rules ordered by position.
func (s *SQLStore) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, items, mode, cond, exceptions, enabled, created_at
		FROM rules ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var (
			id, items, mode, cond, exceptions string
			enabled                           bool
			created                           int64
		)
		if err := rows.Scan(&id, &items, &mode, &cond, &exceptions, &enabled, &created); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r, err := decodeRule(id, items, mode, cond, exceptions, enabled, created)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rule %s: %w", id, err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// SaveRule updates a rule in place, keeping its position, or appends it.
func (s *SQLStore) SaveRule(ctx context.Context, rule domain.Rule) error {
	row, err := encodeRule(rule)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules (id, position, items, mode, cond, exceptions, enabled, created_at)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM rules), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			items = excluded.items,
			mode = excluded.mode,
			cond = excluded.cond,
			exceptions = excluded.exceptions,
			enabled = excluded.enabled,
			created_at = excluded.created_at`,
		row.id, row.items, row.mode, row.condition, row.exceptions, row.enabled, row.createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.ID, err)
	}
	return nil
}

// DeleteRule removes a rule.
func (s *SQLStore) DeleteRule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	return nil
}

// ReplaceRules swaps the whole list in one transaction.
func (s *SQLStore) ReplaceRules(ctx context.Context, rules []domain.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}
	for i, rule := range rules {
		if err := insertRule(ctx, tx, i, rule); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertRule(ctx context.Context, q querier, position int, rule domain.Rule) error {
	row, err := encodeRule(rule)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO rules (id, position, items, mode, cond, exceptions, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, position, row.items, row.mode, row.condition, row.exceptions, row.enabled, row.createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rule %s: %w", rule.ID, err)
	}
	return nil
}

type ruleRow struct {
	id, items, mode, condition, exceptions string
	enabled                                bool
	createdAt                              int64
}

func encodeRule(rule domain.Rule) (ruleRow, error) {
	cond, err := condition.Marshal(rule.Condition)
	if err != nil {
		return ruleRow{}, fmt.Errorf("failed to encode rule %s: %w", rule.ID, err)
	}
	items, err := json.Marshal(nonNil(rule.Items))
	if err != nil {
		return ruleRow{}, err
	}
	exceptions, err := json.Marshal(nonNil(rule.Exceptions))
	if err != nil {
		return ruleRow{}, err
	}
	return ruleRow{
		id:         rule.ID,
		items:      string(items),
		mode:       string(rule.Mode),
		condition:  string(cond),
		exceptions: string(exceptions),
		enabled:    rule.Enabled,
		createdAt:  rule.CreatedAt.UnixMilli(),
	}, nil
}

func decodeRule(id, items, mode, cond, exceptions string, enabled bool, created int64) (domain.Rule, error) {
	r := domain.Rule{ID: id, Enabled: enabled, CreatedAt: time.UnixMilli(created)}

	var err error
	if r.Mode, err = domain.ParseMode(mode); err != nil {
		return domain.Rule{}, err
	}
	if r.Condition, err = condition.Unmarshal([]byte(cond)); err != nil {
		return domain.Rule{}, err
	}
	if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
		return domain.Rule{}, fmt.Errorf("bad items: %w", err)
	}
	if err := json.Unmarshal([]byte(exceptions), &r.Exceptions); err != nil {
		return domain.Rule{}, fmt.Errorf("bad exceptions: %w", err)
	}
	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- domain.ProgressStore implementation ---

// GetProgress returns the stored counters, zero-valued if none.
func (s *SQLStore) GetProgress(ctx context.Context) (domain.Progress, error) {
	var p domain.Progress
	err := s.db.QueryRowContext(ctx, `SELECT steps, workout_minutes, date FROM progress WHERE id = 1`).
		Scan(&p.Steps, &p.WorkoutMinutes, &p.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Progress{}, nil
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to read progress: %w", err)
	}
	return p, nil
}

// SaveProgress overwrites the stored counters.
func (s *SQLStore) SaveProgress(ctx context.Context, p domain.Progress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO progress (id, steps, workout_minutes, date, updated_at)
		VALUES (1, ?, ?, ?, ?)`,
		p.Steps, p.WorkoutMinutes, p.Date, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// AddProgress increments the counters for date in one upsert. A row stamped
// with an older date is reset to the deltas.
func (s *SQLStore) AddProgress(ctx context.Context, date string, steps, workoutMinutes int) (domain.Progress, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to begin progress update: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO progress (id, steps, workout_minutes, date, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			steps = CASE WHEN progress.date = excluded.date
				THEN progress.steps + excluded.steps ELSE excluded.steps END,
			workout_minutes = CASE WHEN progress.date = excluded.date
				THEN progress.workout_minutes + excluded.workout_minutes ELSE excluded.workout_minutes END,
			date = excluded.date,
			updated_at = excluded.updated_at`,
		steps, workoutMinutes, date, time.Now().Unix())
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to add progress: %w", err)
	}

	var p domain.Progress
	err = tx.QueryRowContext(ctx, `SELECT steps, workout_minutes, date FROM progress WHERE id = 1`).
		Scan(&p.Steps, &p.WorkoutMinutes, &p.Date)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to read progress: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Progress{}, fmt.Errorf("failed to commit progress: %w", err)
	}
	return p, nil
}

// --- domain.KeyValueStore implementation ---

// Get returns the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set writes key, last write wins.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Unix())
	return err
}

// Delete removes key if present.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// List returns every entry under prefix.
func (s *SQLStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE substr(key, 1, ?) = ?`, len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// --- domain.SecretStore implementation ---

// GetSecret retrieves a secret by key.
func (s *SQLStore) GetSecret(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", domain.ErrSecretNotFound, key)
	}
	return value, err
}

// SetSecret stores a secret.
func (s *SQLStore) SetSecret(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO secrets (key, value, created_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Unix())
	return err
}

// DeleteSecret removes a secret.
func (s *SQLStore) DeleteSecret(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSecretNotFound, key)
	}
	return nil
}

// Ensure SQLStore implements domain.Store.
var _ domain.Store = (*SQLStore)(nil)
