package tracker

// #region imports
import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	_ "modernc.org/sqlite"
)

// #endregion imports

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	attempt_id    TEXT PRIMARY KEY,
	student_id    TEXT NOT NULL,
	problem_id    TEXT NOT NULL,
	tier          INTEGER NOT NULL,
	outcome       TEXT NOT NULL,
	abort_reason  TEXT NOT NULL DEFAULT '',
	steps         INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	program_json  TEXT NOT NULL,
	trace_json    TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_student
ON attempts(student_id, created_at DESC);

CREATE TABLE IF NOT EXISTS profiles (
	student_id       TEXT PRIMARY KEY,
	tier             INTEGER NOT NULL,
	success_streak   INTEGER NOT NULL DEFAULT 0,
	failure_streak   INTEGER NOT NULL DEFAULT 0,
	updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attempt_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	attempt_id    TEXT NOT NULL,
	student_id    TEXT NOT NULL,
	problem_id    TEXT NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT,
	signals_json  TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (attempt_id) REFERENCES attempts(attempt_id)
);
`

// #endregion schema

// #region store

// Store persists attempt records and student profiles in SQLite.
// A mutex serializes all access: attempts, profiles, and the tier
// state are the only mutable state shared across sessions, and
// serialization here prevents lost updates without any retry logic.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	config Config
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string, config Config) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, config: config}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region record

// Record appends one attempt. Records are immutable once written.
func (s *Store) Record(rec AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO attempts
		 (attempt_id, student_id, problem_id, tier, outcome, abort_reason,
		  steps, duration_ms, program_json, trace_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StudentID, rec.ProblemID, rec.Tier,
		string(rec.Outcome), string(rec.AbortReason),
		rec.Steps, rec.Duration.Milliseconds(),
		rec.ProgramJSON, rec.TraceJSON,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// #endregion record

// #region profile-for

// ProfileFor returns the rolling aggregate for a student. A student
// with no attempts gets a zeroed profile (tier 0, callers map that to
// the lowest defined tier).
func (s *Store) ProfileFor(studentID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLocked(studentID)
}

func (s *Store) profileLocked(studentID string) (Profile, error) {
	p := Profile{StudentID: studentID}

	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM attempts WHERE student_id = ?`, studentID,
	).Scan(&p.TotalAttempts)
	if err != nil {
		return Profile{}, fmt.Errorf("count attempts: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT outcome, steps, created_at FROM attempts
		 WHERE student_id = ? ORDER BY created_at DESC, attempt_id LIMIT ?`,
		studentID, s.config.Window,
	)
	if err != nil {
		return Profile{}, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	var successes, solvedSteps, solved, window int
	for rows.Next() {
		var outcome string
		var steps int
		var createdStr string
		if err := rows.Scan(&outcome, &steps, &createdStr); err != nil {
			return Profile{}, fmt.Errorf("scan attempt: %w", err)
		}
		if window == 0 {
			p.LastAttemptAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		}
		window++
		if outcome == string(engine.OutcomeSuccess) {
			successes++
			solved++
			solvedSteps += steps
		}
	}
	if err := rows.Err(); err != nil {
		return Profile{}, err
	}

	if window > 0 {
		p.SuccessRate = float64(successes) / float64(window)
	}
	if solved > 0 {
		p.AvgSteps = float64(solvedSteps) / float64(solved)
	}

	var tier, sStreak, fStreak int
	err = s.db.QueryRow(
		`SELECT tier, success_streak, failure_streak FROM profiles WHERE student_id = ?`,
		studentID,
	).Scan(&tier, &sStreak, &fStreak)
	switch {
	case err == sql.ErrNoRows:
		// brand-new student: zero profile
	case err != nil:
		return Profile{}, fmt.Errorf("get profile row: %w", err)
	default:
		p.Tier = tier
		p.SuccessStreak = sStreak
		p.FailureStreak = fStreak
	}
	return p, nil
}

// #endregion profile-for

// #region tier-state

// SetTierState writes the tier and streak columns for a student. Called
// only from the adaptive agent after an attempt record is committed.
func (s *Store) SetTierState(studentID string, tier, successStreak, failureStreak int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO profiles (student_id, tier, success_streak, failure_streak, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(student_id) DO UPDATE SET
		   tier = excluded.tier,
		   success_streak = excluded.success_streak,
		   failure_streak = excluded.failure_streak,
		   updated_at = excluded.updated_at`,
		studentID, tier, successStreak, failureStreak,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set tier state: %w", err)
	}
	return nil
}

// #endregion tier-state

// #region list-attempts

// ListAttempts returns a student's most recent attempts, newest first.
// An empty studentID lists attempts across all students.
func (s *Store) ListAttempts(studentID string, limit int) ([]AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT attempt_id, student_id, problem_id, tier, outcome, abort_reason,
	                 steps, duration_ms, program_json, trace_json, created_at
	          FROM attempts`
	args := []any{}
	if studentID != "" {
		query += ` WHERE student_id = ?`
		args = append(args, studentID)
	}
	query += ` ORDER BY created_at DESC, attempt_id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var records []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		var outcome, reason, createdStr string
		var durMs int64
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.ProblemID, &rec.Tier,
			&outcome, &reason, &rec.Steps, &durMs,
			&rec.ProgramJSON, &rec.TraceJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Outcome = engine.Outcome(outcome)
		rec.AbortReason = engine.AbortReason(reason)
		rec.Duration = time.Duration(durMs) * time.Millisecond
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Students returns the distinct student ids with at least one attempt.
func (s *Store) Students() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT DISTINCT student_id FROM attempts ORDER BY student_id`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// #endregion list-attempts
