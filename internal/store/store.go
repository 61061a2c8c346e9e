// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps every stored timestamp the same width so text ordering in
// SQL matches time ordering. Reads use RFC3339Nano, which also accepts it.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrInvalidProgress is returned when a record violates its invariants.
var ErrInvalidProgress = errors.New("invalid progress record")

// Store wraps SQLite access for user progress and repetitions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_key TEXT PRIMARY KEY,
			total_points INTEGER NOT NULL DEFAULT 0,
			completed_sessions INTEGER NOT NULL DEFAULT 0,
			achievements TEXT NOT NULL DEFAULT '[]',
			last_active TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS repetitions (
			id INTEGER PRIMARY KEY,
			user_key TEXT NOT NULL,
			variant TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			chars INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_ranking ON users(total_points DESC, completed_sessions DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_repetitions_user ON repetitions(user_key, ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the progress record for userKey. Unknown users get a
// zero-valued record.
func (s *Store) Load(ctx context.Context, userKey string) (model.Progress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_key, total_points, completed_sessions, achievements, last_active
		 FROM users WHERE user_key = ?`, userKey)
	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewProgress(userKey), nil
	}
	if err != nil {
		return model.Progress{}, err
	}
	return p, nil
}

// Save stores p, replacing any previous record for the same user. Saving
// the same values twice leaves the table unchanged apart from updated_at.
func (s *Store) Save(ctx context.Context, p model.Progress) error {
	if err := Validate(p); err != nil {
		return err
	}
	ids := achievement.Dedupe(p.Achievements)
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode achievements: %w", err)
	}
	lastActive := ""
	if !p.LastActive.IsZero() {
		lastActive = p.LastActive.UTC().Format(timeLayout)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (user_key, total_points, completed_sessions, achievements, last_active, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_key) DO UPDATE SET
			total_points = excluded.total_points,
			completed_sessions = excluded.completed_sessions,
			achievements = excluded.achievements,
			last_active = excluded.last_active,
			updated_at = excluded.updated_at`,
		p.UserKey,
		p.TotalPoints,
		p.CompletedSessions,
		string(encoded),
		lastActive,
		time.Now().UTC().Format(timeLayout),
	)
	return err
}

// Validate checks the invariants every stored record must satisfy.
func Validate(p model.Progress) error {
	if strings.TrimSpace(p.UserKey) == "" {
		return fmt.Errorf("%w: user key is empty", ErrInvalidProgress)
	}
	if p.TotalPoints < 0 {
		return fmt.Errorf("%w: total points must be >= 0", ErrInvalidProgress)
	}
	if p.CompletedSessions < 0 {
		return fmt.Errorf("%w: completed sessions must be >= 0", ErrInvalidProgress)
	}
	return nil
}

// ListProgress returns every stored record in leaderboard order.
func (s *Store) ListProgress(ctx context.Context) ([]model.Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_key, total_points, completed_sessions, achievements, last_active
		 FROM users
		 ORDER BY total_points DESC, completed_sessions DESC, user_key ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteUser removes a user and their repetition log. It reports whether a
// record existed.
func (s *Store) DeleteUser(ctx context.Context, userKey string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_key = ?`, userKey)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM repetitions WHERE user_key = ?`, userKey); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertRepetition appends one accepted repetition to the log.
func (s *Store) InsertRepetition(ctx context.Context, rep model.Repetition) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO repetitions (user_key, variant, started_at, ended_at, chars, keystrokes, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.UserKey,
		rep.Variant,
		rep.StartedAt.UTC().Format(timeLayout),
		rep.EndedAt.UTC().Format(timeLayout),
		rep.Chars,
		rep.Keystrokes,
		rep.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRepetitions returns a user's most recent repetitions in chronological
// order. A non-positive limit returns all of them.
func (s *Store) ListRepetitions(ctx context.Context, userKey string, limit int) ([]model.Repetition, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_key, variant, started_at, ended_at, chars, keystrokes, duration_ms FROM (
			SELECT * FROM repetitions
			WHERE user_key = ?
			ORDER BY ended_at DESC, id DESC
			LIMIT ?
		) ORDER BY ended_at ASC, id ASC`, userKey, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var reps []model.Repetition
	for rows.Next() {
		var rep model.Repetition
		var startedAt, endedAt string
		if err := rows.Scan(&rep.UserKey, &rep.Variant, &startedAt, &endedAt, &rep.Chars, &rep.Keystrokes, &rep.DurationMs); err != nil {
			return nil, err
		}
		if rep.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rep.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reps, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (model.Progress, error) {
	var p model.Progress
	var encoded, lastActive string
	if err := row.Scan(&p.UserKey, &p.TotalPoints, &p.CompletedSessions, &encoded, &lastActive); err != nil {
		return model.Progress{}, err
	}
	p.Achievements = decodeAchievements(encoded)
	if lastActive != "" {
		parsed, err := time.Parse(time.RFC3339Nano, lastActive)
		if err != nil {
			return model.Progress{}, err
		}
		p.LastActive = parsed
	}
	return p, nil
}

// Unknown identifiers are dropped so a renamed achievement cannot poison a record.
func decodeAchievements(encoded string) []achievement.ID {
	var raw []string
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		return []achievement.ID{}
	}
	ids := make([]achievement.ID, 0, len(raw))
	for _, r := range raw {
		id, err := achievement.Parse(r)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return achievement.Dedupe(ids)
}
