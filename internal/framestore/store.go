// Package framestore records raw observation buffers in SQLite so that
// sessions can be replayed through the decoder later.
//
// Raw buffers are stored as delivered by the engine, not decoded frames:
// replay always goes through the same decode path as live frames.
package framestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/povframe/internal/observation"
)

// ErrNotFound is returned when a session or frame does not exist.
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed frame recorder.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" only with a single connection; Open limits the pool to one
// connection for that reason.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame store: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	diagf("opened frame store %s", path)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewSession creates a recording session and returns its ID.
func (s *Store) NewSession(ctx context.Context, label string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, label, created_unix_nanos) VALUES (?, ?, ?)`,
		id, label, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	diagf("created session %s (%q)", id, label)
	return id, nil
}

// FrameRecord is one stored frame.
type FrameRecord struct {
	FrameID      string
	SessionID    string
	Seq          int64
	Kind         observation.Kind
	Width        int
	Height       int
	IncludeDepth bool
	CapturedAt   time.Time
	Raw          []byte
}

// Config rebuilds the observation config the frame was recorded with.
func (r *FrameRecord) Config() (observation.Config, error) {
	switch r.Kind {
	case observation.KindDepth:
		return observation.NewDepthConfig(r.Width, r.Height)
	case observation.KindPOV:
		return observation.NewPOVConfig(r.Width, r.Height, r.IncludeDepth)
	default:
		return observation.Config{}, fmt.Errorf("frame %s: unknown kind %q", r.FrameID, r.Kind)
	}
}

// SaveFrame stores a copy of raw for cfg and returns the new frame ID.
// An empty raw buffer is stored as-is and replays as a zero observation.
func (s *Store) SaveFrame(ctx context.Context, sessionID string, cfg observation.Config, raw []byte, capturedAt time.Time) (string, error) {
	if !cfg.Valid() {
		return "", fmt.Errorf("cannot save frame: %w", &observation.ConfigError{Reason: "config not initialised"})
	}
	id := uuid.NewString()
	blob := make([]byte, len(raw))
	copy(blob, raw)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frames (frame_id, session_id, seq, kind, width, height, include_depth, captured_unix_nanos, byte_len, raw)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM frames WHERE session_id = ?), ?, ?, ?, ?, ?, ?, ?)`,
		id, sessionID, sessionID, string(cfg.Kind()), cfg.Width(), cfg.Height(), cfg.IncludeDepth(),
		capturedAt.UnixNano(), len(blob), blob)
	if err != nil {
		return "", fmt.Errorf("failed to save frame: %w", err)
	}
	return id, nil
}

const frameColumns = `frame_id, session_id, seq, kind, width, height, include_depth, captured_unix_nanos, raw`

func scanFrame(row interface{ Scan(...any) error }) (*FrameRecord, error) {
	var (
		r     FrameRecord
		kind  string
		nanos int64
	)
	if err := row.Scan(&r.FrameID, &r.SessionID, &r.Seq, &kind, &r.Width, &r.Height, &r.IncludeDepth, &nanos, &r.Raw); err != nil {
		return nil, err
	}
	r.Kind = observation.Kind(kind)
	r.CapturedAt = time.Unix(0, nanos)
	return &r, nil
}

// LoadFrame returns one stored frame.
func (s *Store) LoadFrame(ctx context.Context, frameID string) (*FrameRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+frameColumns+` FROM frames WHERE frame_id = ?`, frameID)
	r, err := scanFrame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("frame %s: %w", frameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load frame %s: %w", frameID, err)
	}
	return r, nil
}

// FrameSummary describes a stored frame without its payload.
type FrameSummary struct {
	FrameID    string
	Seq        int64
	Kind       observation.Kind
	Width      int
	Height     int
	ByteLen    int
	CapturedAt time.Time
}

// ListFrames returns the frames of a session in capture order.
func (s *Store) ListFrames(ctx context.Context, sessionID string) ([]FrameSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame_id, seq, kind, width, height, byte_len, captured_unix_nanos
		FROM frames WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	defer rows.Close()

	var out []FrameSummary
	for rows.Next() {
		var (
			f     FrameSummary
			kind  string
			nanos int64
		)
		if err := rows.Scan(&f.FrameID, &f.Seq, &kind, &f.Width, &f.Height, &f.ByteLen, &nanos); err != nil {
			return nil, fmt.Errorf("failed to scan frame summary: %w", err)
		}
		f.Kind = observation.Kind(kind)
		f.CapturedAt = time.Unix(0, nanos)
		out = append(out, f)
	}
	return out, rows.Err()
}

// ReplayFunc receives each replayed frame with its decoded observation.
type ReplayFunc func(rec *FrameRecord, obs *observation.Observation) error

// Replay decodes every frame of a session in capture order and calls fn.
// Decode errors abort the replay; so does an error returned by fn or the
// cancellation of ctx. A session with no frames yields ErrNotFound. fn must
// not call back into the Store: the store holds a single connection.
func (s *Store) Replay(ctx context.Context, sessionID string, opts observation.DecoderOptions, fn ReplayFunc) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+frameColumns+` FROM frames WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to query session %s: %w", sessionID, err)
	}
	defer rows.Close()

	decoders := make(map[observation.Config]*observation.Decoder)
	n := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := scanFrame(rows)
		if err != nil {
			return fmt.Errorf("failed to scan frame: %w", err)
		}
		cfg, err := rec.Config()
		if err != nil {
			return err
		}
		dec, ok := decoders[cfg]
		if !ok {
			if dec, err = observation.NewDecoder(cfg, opts); err != nil {
				return err
			}
			decoders[cfg] = dec
		}
		obs, err := dec.Decode(rec.Raw)
		if err != nil {
			opsf("replay %s: frame %d (%s): %v", sessionID, rec.Seq, rec.FrameID, err)
			return fmt.Errorf("frame %s: %w", rec.FrameID, err)
		}
		if err := fn(rec, obs); err != nil {
			return err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	diagf("replayed %d frames from session %s", n, sessionID)
	return nil
}
