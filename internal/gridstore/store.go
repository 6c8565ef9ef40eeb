// Package gridstore persists mapping sessions and occupancy-grid snapshots
// to SQLite. All database read/write operations for sessions and snapshots
// belong here rather than in the mapping package, which stays free of SQL
// noise.
package gridstore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"embed"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/occupancy.report/internal/mapping"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the SQLite database holding sessions and grid snapshots.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies any pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrateUp applies the embedded migrations to the latest version.
func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// Note: we don't close m here because it would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// NewSessionID returns a fresh unique session identifier.
func NewSessionID() string { return uuid.NewString() }

// SessionRecord is one persisted mapping session.
type SessionRecord struct {
	SessionID          string     `json:"session_id"`
	Label              string     `json:"label,omitempty"`
	CellSize           float64    `json:"cell_size"`
	Rows               int        `json:"rows"`
	Cols               int        `json:"cols"`
	OriginX            float64    `json:"origin_x"`
	OriginY            float64    `json:"origin_y"`
	FreeConfidence     float64    `json:"free_confidence"`
	OccupiedConfidence float64    `json:"occupied_confidence"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	StepsProcessed int64 `json:"steps_processed"`
	RaysProcessed  int64 `json:"rays_processed"`
	RaysSkipped    int64 `json:"rays_skipped"`
	RaysClamped    int64 `json:"rays_clamped"`
	RaysTruncated  int64 `json:"rays_truncated"`
}

// InsertSession creates a session record when a mapping run starts.
func (s *Store) InsertSession(rec SessionRecord) error {
	query := `
		INSERT INTO map_sessions (
			session_id, label, cell_size, rows, cols, origin_x, origin_y,
			free_confidence, occupied_confidence, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.Exec(query,
		rec.SessionID,
		rec.Label,
		rec.CellSize,
		rec.Rows,
		rec.Cols,
		rec.OriginX,
		rec.OriginY,
		rec.FreeConfidence,
		rec.OccupiedConfidence,
		rec.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", rec.SessionID, err)
	}
	return nil
}

// CompleteSession records the end of a run and its final diagnostics.
func (s *Store) CompleteSession(sessionID string, completedAt time.Time, d mapping.Diagnostics) error {
	query := `
		UPDATE map_sessions
		SET completed_at = ?, steps_processed = ?, rays_processed = ?,
		    rays_skipped = ?, rays_clamped = ?, rays_truncated = ?
		WHERE session_id = ?
	`
	res, err := s.Exec(query,
		completedAt.UTC().Format(time.RFC3339),
		d.StepsProcessed,
		d.RaysProcessed,
		d.RaysSkipped,
		d.RaysClamped,
		d.RaysTruncated,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("completing session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("completing session %s: not found", sessionID)
	}
	return nil
}

// GetSession loads one session record.
func (s *Store) GetSession(sessionID string) (SessionRecord, error) {
	query := `
		SELECT session_id, label, cell_size, rows, cols, origin_x, origin_y,
		       free_confidence, occupied_confidence, started_at, completed_at,
		       steps_processed, rays_processed, rays_skipped, rays_clamped, rays_truncated
		FROM map_sessions WHERE session_id = ?
	`
	var rec SessionRecord
	var startedAt string
	var completedAt sql.NullString
	err := s.QueryRow(query, sessionID).Scan(
		&rec.SessionID, &rec.Label, &rec.CellSize, &rec.Rows, &rec.Cols,
		&rec.OriginX, &rec.OriginY, &rec.FreeConfidence, &rec.OccupiedConfidence,
		&startedAt, &completedAt,
		&rec.StepsProcessed, &rec.RaysProcessed, &rec.RaysSkipped,
		&rec.RaysClamped, &rec.RaysTruncated,
	)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if rec.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return SessionRecord{}, fmt.Errorf("parsing started_at for %s: %w", sessionID, err)
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return SessionRecord{}, fmt.Errorf("parsing completed_at for %s: %w", sessionID, err)
		}
		rec.CompletedAt = &t
	}
	return rec, nil
}

// ListSessions returns all sessions, most recently started first.
func (s *Store) ListSessions() ([]SessionRecord, error) {
	rows, err := s.Query(`SELECT session_id FROM map_sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	out := make([]SessionRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetSession(id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveSnapshot serialises a grid snapshot (gob, gzip-compressed) and inserts
// it for the session. Returns the new snapshot's row id.
func (s *Store) SaveSnapshot(sessionID, reason string, snap mapping.GridSnapshot) (int64, error) {
	blob, err := encodeSnapshot(snap)
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot for %s: %w", sessionID, err)
	}
	query := `
		INSERT INTO grid_snapshots (session_id, reason, rows, cols, cell_size, grid_blob, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.Exec(query,
		sessionID, reason, snap.Rows, snap.Cols, snap.CellSize, blob,
		snap.CapturedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot for %s: %w", sessionID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id for %s: %w", sessionID, err)
	}
	return id, nil
}

// LoadSnapshot loads a snapshot by row id.
func (s *Store) LoadSnapshot(snapshotID int64) (mapping.GridSnapshot, error) {
	var blob []byte
	err := s.QueryRow(`SELECT grid_blob FROM grid_snapshots WHERE snapshot_id = ?`, snapshotID).Scan(&blob)
	if err != nil {
		return mapping.GridSnapshot{}, fmt.Errorf("loading snapshot %d: %w", snapshotID, err)
	}
	return decodeSnapshot(blob)
}

// LatestSnapshot loads the most recent snapshot for a session.
func (s *Store) LatestSnapshot(sessionID string) (mapping.GridSnapshot, error) {
	var blob []byte
	err := s.QueryRow(`
		SELECT grid_blob FROM grid_snapshots
		WHERE session_id = ? ORDER BY snapshot_id DESC LIMIT 1
	`, sessionID).Scan(&blob)
	if err != nil {
		return mapping.GridSnapshot{}, fmt.Errorf("loading latest snapshot for %s: %w", sessionID, err)
	}
	return decodeSnapshot(blob)
}

func encodeSnapshot(snap mapping.GridSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(snap); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(blob []byte) (mapping.GridSnapshot, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return mapping.GridSnapshot{}, fmt.Errorf("decompressing snapshot: %w", err)
	}
	defer gz.Close()
	var snap mapping.GridSnapshot
	if err := gob.NewDecoder(gz).Decode(&snap); err != nil {
		return mapping.GridSnapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}
