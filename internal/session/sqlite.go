package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/josephgoksu/cascade/internal/effects"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Summary is a lightweight view for listings.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Mode          Mode      `json:"mode"`
	EffectCount   int       `json:"effect_count"`
	DeepDiveCount int       `json:"deep_dive_count"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"`
}

// SQLiteStore persists sessions. Deep dives are stored append-only, one row
// per record, ordered by insertion sequence.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the session database under basePath.
// Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(basePath string) (*SQLiteStore, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "sessions.db")
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL,
		seeds TEXT NOT NULL,
		objectives TEXT NOT NULL,
		constraints TEXT NOT NULL,
		effect_graph TEXT,
		leaps TEXT,
		synthesis TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deep_dives (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		level TEXT NOT NULL,
		record TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deep_dives_session ON deep_dives(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new session, assigning an id and timestamps when unset.
func (s *SQLiteStore) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = "sess-" + uuid.New().String()[:8]
	}
	if sess.Mode == "" {
		sess.Mode = DefaultMode
	}
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	seeds, err := json.Marshal(sess.Seeds)
	if err != nil {
		return fmt.Errorf("marshal seeds: %w", err)
	}
	objectives, err := json.Marshal(sess.Objectives)
	if err != nil {
		return fmt.Errorf("marshal objectives: %w", err)
	}
	constraints, err := json.Marshal(sess.Constraints)
	if err != nil {
		return fmt.Errorf("marshal constraints: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, name, mode, seeds, objectives, constraints, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Name, string(sess.Mode), string(seeds), string(objectives), string(constraints),
		sess.CreatedAt.Format(time.RFC3339Nano), sess.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SaveResult stores the engine-owned outputs of a completed pipeline run.
func (s *SQLiteStore) SaveResult(sess *Session) error {
	graph, err := json.Marshal(sess.EffectGraph)
	if err != nil {
		return fmt.Errorf("marshal effect graph: %w", err)
	}
	leaps, err := json.Marshal(sess.Leaps)
	if err != nil {
		return fmt.Errorf("marshal leaps: %w", err)
	}
	var synthesis sql.NullString
	if sess.Synthesis != nil {
		raw, err := json.Marshal(sess.Synthesis)
		if err != nil {
			return fmt.Errorf("marshal synthesis: %w", err)
		}
		synthesis = sql.NullString{String: string(raw), Valid: true}
	}

	sess.UpdatedAt = time.Now().UTC()
	result, err := s.db.Exec(`
		UPDATE sessions SET effect_graph = ?, leaps = ?, synthesis = ?, updated_at = ?
		WHERE id = ?
	`, string(graph), string(leaps), synthesis, sess.UpdatedAt.Format(time.RFC3339Nano), sess.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sess.ID)
	}
	return nil
}

// AppendDeepDive stores one deep-dive record after all previous ones.
func (s *SQLiteStore) AppendDeepDive(sessionID string, rec effects.DeepDiveRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal deep dive: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	result, err := tx.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, sessionID)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}

	_, err = tx.Exec(`
		INSERT INTO deep_dives (id, session_id, level, record, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, sessionID, string(rec.Level), string(raw), rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert deep dive: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get loads a session with its deep dives in append order.
func (s *SQLiteStore) Get(id string) (*Session, error) {
	var sess Session
	var mode, seeds, objectives, constraints, createdAt, updatedAt string
	var graph, leaps, synthesis sql.NullString

	err := s.db.QueryRow(`
		SELECT id, name, mode, seeds, objectives, constraints, effect_graph, leaps, synthesis, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Name, &mode, &seeds, &objectives, &constraints,
		&graph, &leaps, &synthesis, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	sess.Mode = Mode(mode)
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	if err := json.Unmarshal([]byte(seeds), &sess.Seeds); err != nil {
		return nil, fmt.Errorf("unmarshal seeds: %w", err)
	}
	if err := json.Unmarshal([]byte(objectives), &sess.Objectives); err != nil {
		return nil, fmt.Errorf("unmarshal objectives: %w", err)
	}
	if err := json.Unmarshal([]byte(constraints), &sess.Constraints); err != nil {
		return nil, fmt.Errorf("unmarshal constraints: %w", err)
	}
	if graph.Valid {
		if err := json.Unmarshal([]byte(graph.String), &sess.EffectGraph); err != nil {
			return nil, fmt.Errorf("unmarshal effect graph: %w", err)
		}
	}
	if leaps.Valid {
		if err := json.Unmarshal([]byte(leaps.String), &sess.Leaps); err != nil {
			return nil, fmt.Errorf("unmarshal leaps: %w", err)
		}
	}
	if synthesis.Valid {
		var syn effects.Synthesis
		if err := json.Unmarshal([]byte(synthesis.String), &syn); err != nil {
			return nil, fmt.Errorf("unmarshal synthesis: %w", err)
		}
		sess.Synthesis = &syn
	}

	dives, err := s.deepDives(id)
	if err != nil {
		return nil, err
	}
	sess.DeepDives = dives
	return &sess, nil
}

func (s *SQLiteStore) deepDives(sessionID string) ([]effects.DeepDiveRecord, error) {
	rows, err := s.db.Query(`SELECT record FROM deep_dives WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query deep dives: %w", err)
	}
	defer func() { _ = rows.Close() }()

	dives := []effects.DeepDiveRecord{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan deep dive: %w", err)
		}
		var rec effects.DeepDiveRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal deep dive: %w", err)
		}
		dives = append(dives, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return dives, nil
}

// List returns summaries of all sessions, newest first.
func (s *SQLiteStore) List() ([]Summary, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.name, s.mode, s.effect_graph, s.synthesis IS NOT NULL, s.created_at,
			(SELECT COUNT(*) FROM deep_dives d WHERE d.session_id = s.id)
		FROM sessions s ORDER BY s.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var mode, createdAt string
		var graph sql.NullString
		if err := rows.Scan(&sum.ID, &sum.Name, &mode, &graph, &sum.Completed, &createdAt, &sum.DeepDiveCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.Mode = Mode(mode)
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if graph.Valid {
			var g effects.Graph
			if err := json.Unmarshal([]byte(graph.String), &g); err == nil {
				sum.EffectCount = len(g.Nodes)
			}
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// FindIDsByPrefix returns session ids starting with prefix, sorted.
func (s *SQLiteStore) FindIDsByPrefix(prefix string) ([]string, error) {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(prefix)
	rows, err := s.db.Query(`SELECT id FROM sessions WHERE id LIKE ? ESCAPE '\' ORDER BY id`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("find session IDs by prefix: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return ids, nil
}

// Delete removes a session and its deep dives.
func (s *SQLiteStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
