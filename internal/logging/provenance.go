package logging

// #region imports
import (
	"database/sql"
	"fmt"
	"time"
)

// #endregion imports

// #region types

// AttemptEntry links one attempt to the adaptive decision it triggered.
type AttemptEntry struct {
	AttemptID   string
	StudentID   string
	ProblemID   string
	Decision    string // "hold" | "promote" | "demote"
	Reason      string
	SignalsJSON string
	CreatedAt   time.Time
}

// #endregion types

// #region log-attempt

// LogAttempt writes a provenance entry to the attempt_log table.
func LogAttempt(db *sql.DB, entry AttemptEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO attempt_log (attempt_id, student_id, problem_id, decision, reason, signals_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.AttemptID,
		entry.StudentID,
		entry.ProblemID,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.SignalsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log attempt: %w", err)
	}
	return nil
}

// #endregion log-attempt

// #region list

// ListByStudent returns the most recent provenance entries for a student.
func ListByStudent(db *sql.DB, studentID string, limit int) ([]AttemptEntry, error) {
	rows, err := db.Query(
		`SELECT attempt_id, student_id, problem_id, decision, reason, signals_json, created_at
		 FROM attempt_log WHERE student_id = ? ORDER BY id DESC LIMIT ?`,
		studentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempt log: %w", err)
	}
	defer rows.Close()

	var entries []AttemptEntry
	for rows.Next() {
		var e AttemptEntry
		var reason, signals sql.NullString
		var createdStr string
		if err := rows.Scan(&e.AttemptID, &e.StudentID, &e.ProblemID, &e.Decision, &reason, &signals, &createdStr); err != nil {
			return nil, fmt.Errorf("scan attempt log: %w", err)
		}
		e.Reason = reason.String
		e.SignalsJSON = signals.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
