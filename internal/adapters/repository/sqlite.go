package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // SQLite driver.

	"github.com/okian/spinner/internal/domain/model"
)

// SQLiteStore implements Store on modernc.org/sqlite.
type SQLiteStore struct {
	db         *sql.DB
	bcryptCost int
	now        func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// Open opens or creates the database at path and applies migrations.
// ":memory:" gives a private in-memory database.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}
	dsn := path
	if path != ":memory:" {
		clean := filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		dsn = clean + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &SQLiteStore{db: db, bcryptCost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS spinners (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			duration REAL NOT NULL,
			primary_color TEXT NOT NULL,
			secondary_color TEXT NOT NULL,
			show_confetti INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS spinner_segments (
			spinner_id TEXT NOT NULL REFERENCES spinners(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			label TEXT NOT NULL,
			value TEXT NOT NULL,
			color TEXT NOT NULL,
			weight REAL,
			PRIMARY KEY (spinner_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_spinners_owner ON spinners(owner_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, email, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, fmt.Errorf("create user: %w", ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{ID: uuid.NewString(), Email: email, CreatedAt: s.now().UTC()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, string(hash), u.CreatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, fmt.Errorf("create user %s: %w", email, ErrConflict)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) VerifyPassword(ctx context.Context, email, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	var (
		u       User
		hash    string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		normalizeEmail(email)).Scan(&u.ID, &u.Email, &hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	var (
		u       User
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = ?`, id).Scan(&u.ID, &u.Email, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

func (s *SQLiteStore) ListSpinners(ctx context.Context, ownerID string) ([]model.WheelConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, duration, primary_color, secondary_color, show_confetti
		 FROM spinners WHERE owner_id = ? ORDER BY created_at, rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list spinners: %w", err)
	}
	out := []model.WheelConfiguration{}
	index := map[string]int{}
	for rows.Next() {
		w, err := scanSpinner(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan spinner: %w", err)
		}
		w.OwnerID = ownerID
		index[w.ID] = len(out)
		out = append(out, w)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	segRows, err := s.db.QueryContext(ctx,
		`SELECT g.spinner_id, g.id, g.label, g.value, g.color, g.weight
		 FROM spinner_segments g JOIN spinners p ON p.id = g.spinner_id
		 WHERE p.owner_id = ? ORDER BY g.spinner_id, g.position`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer func() { _ = segRows.Close() }()
	for segRows.Next() {
		var spinnerID string
		seg, err := scanSegment(segRows, &spinnerID)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if i, ok := index[spinnerID]; ok {
			out[i].Segments = append(out[i].Segments, seg)
		}
	}
	return out, segRows.Err()
}

func (s *SQLiteStore) GetSpinner(ctx context.Context, ownerID, id string) (model.WheelConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return model.WheelConfiguration{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, duration, primary_color, secondary_color, show_confetti
		 FROM spinners WHERE owner_id = ? AND id = ?`, ownerID, id)
	w, err := scanSpinner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WheelConfiguration{}, ErrNotFound
	}
	if err != nil {
		return model.WheelConfiguration{}, fmt.Errorf("get spinner: %w", err)
	}
	w.OwnerID = ownerID
	w.Segments, err = s.segments(ctx, s.db, id)
	if err != nil {
		return model.WheelConfiguration{}, err
	}
	return w, nil
}

func (s *SQLiteStore) CreateSpinner(ctx context.Context, ownerID string, cfg model.WheelConfiguration) (model.WheelConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return model.WheelConfiguration{}, err
	}
	cfg = cfg.Clone()
	cfg.ID = uuid.NewString()
	cfg.OwnerID = ownerID
	now := s.now().UnixMilli()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO spinners (id, owner_id, name, duration, primary_color, secondary_color, show_confetti, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cfg.ID, ownerID, cfg.Name, cfg.Duration, cfg.PrimaryColor, cfg.SecondaryColor, boolToInt(cfg.ShowConfetti), now, now); err != nil {
			return fmt.Errorf("insert spinner: %w", err)
		}
		return insertSegments(ctx, tx, cfg.ID, cfg.Segments)
	})
	if err != nil {
		return model.WheelConfiguration{}, err
	}
	return cfg, nil
}

func (s *SQLiteStore) UpdateSpinner(ctx context.Context, ownerID string, cfg model.WheelConfiguration) (model.WheelConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return model.WheelConfiguration{}, err
	}
	cfg = cfg.Clone()
	cfg.OwnerID = ownerID

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE spinners SET name = ?, duration = ?, primary_color = ?, secondary_color = ?, show_confetti = ?, updated_at = ?
			 WHERE id = ? AND owner_id = ?`,
			cfg.Name, cfg.Duration, cfg.PrimaryColor, cfg.SecondaryColor, boolToInt(cfg.ShowConfetti), s.now().UnixMilli(), cfg.ID, ownerID)
		if err != nil {
			return fmt.Errorf("update spinner: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM spinner_segments WHERE spinner_id = ?`, cfg.ID); err != nil {
			return fmt.Errorf("clear segments: %w", err)
		}
		return insertSegments(ctx, tx, cfg.ID, cfg.Segments)
	})
	if err != nil {
		return model.WheelConfiguration{}, err
	}
	return cfg, nil
}

func (s *SQLiteStore) DeleteSpinner(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM spinners WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete spinner: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM spinner_segments WHERE spinner_id = ?`, id)
		return err
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) segments(ctx context.Context, q queryer, spinnerID string) ([]model.Segment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT spinner_id, id, label, value, color, weight FROM spinner_segments
		 WHERE spinner_id = ? ORDER BY position`, spinnerID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []model.Segment{}
	for rows.Next() {
		var owner string
		seg, err := scanSegment(rows, &owner)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

func insertSegments(ctx context.Context, tx *sql.Tx, spinnerID string, segs []model.Segment) error {
	for i, seg := range segs {
		var weight sql.NullFloat64
		if seg.Weight != nil {
			weight = sql.NullFloat64{Float64: *seg.Weight, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO spinner_segments (spinner_id, position, id, label, value, color, weight)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			spinnerID, i, seg.ID, seg.Label, seg.Value, seg.Color, weight); err != nil {
			return fmt.Errorf("insert segment %d: %w", i, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpinner(row scanner) (model.WheelConfiguration, error) {
	var (
		w        model.WheelConfiguration
		confetti int
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Duration, &w.PrimaryColor, &w.SecondaryColor, &confetti); err != nil {
		return model.WheelConfiguration{}, err
	}
	w.ShowConfetti = confetti != 0
	w.Segments = []model.Segment{}
	return w, nil
}

func scanSegment(row scanner, spinnerID *string) (model.Segment, error) {
	var (
		seg    model.Segment
		weight sql.NullFloat64
	)
	if err := row.Scan(spinnerID, &seg.ID, &seg.Label, &seg.Value, &seg.Color, &weight); err != nil {
		return model.Segment{}, err
	}
	if weight.Valid {
		w := weight.Float64
		seg.Weight = &w
	}
	return seg, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
