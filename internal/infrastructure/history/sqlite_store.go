package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// timestampLayout is fixed-width UTC so that text comparison orders rows.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		prompt TEXT,
		command TEXT,
		dialect TEXT,
		model TEXT,
		action TEXT,
		risk_level TEXT,
		matched_rule TEXT,
		executed INTEGER,
		success INTEGER,
		exit_code INTEGER,
		execution_time_ms INTEGER
	);
	CREATE INDEX IF NOT EXISTS invocations_timestamp ON invocations(timestamp);`)
	return err
}

// Save inserts a new record, assigning an ID and timestamp when missing.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	record = stamp(record)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO invocations
		(id, timestamp, prompt, command, dialect, model, action, risk_level, matched_rule, executed, success, exit_code, execution_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.UTC().Format(timestampLayout),
		record.Prompt,
		record.Command,
		string(record.Dialect),
		record.Model,
		string(record.Action),
		string(record.RiskLevel),
		record.MatchedRule,
		boolToInt(record.Executed),
		boolToInt(record.Success),
		record.ExitCode,
		record.ExecutionTimeMS,
	)
	if err != nil {
		return fmt.Errorf("save history record: %w", err)
	}
	return nil
}

// Records returns history entries newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, timestamp, prompt, command, dialect, model, action, risk_level, matched_rule,
		executed, success, exit_code, execution_time_ms FROM invocations`)
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE prompt LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY timestamp DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts, dialect, action, level string
		var executed, success int
		if err := rows.Scan(&rec.ID, &ts, &rec.Prompt, &rec.Command, &dialect, &rec.Model, &action, &level,
			&rec.MatchedRule, &executed, &success, &rec.ExitCode, &rec.ExecutionTimeMS); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if t, err := time.Parse(timestampLayout, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Dialect = domain.ShellDialect(dialect)
		rec.Action = domain.Action(action)
		rec.RiskLevel = domain.RiskLevel(level)
		rec.Executed = executed == 1
		rec.Success = success == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM invocations")
	return err
}

// PruneOlderThan deletes entries older than the given number of days.
func (s *SQLiteStore) PruneOlderThan(days int) error {
	if days <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format(timestampLayout)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM invocations WHERE timestamp < ?", cutoff); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func stamp(record domain.HistoryRecord) domain.HistoryRecord {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	return record
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
