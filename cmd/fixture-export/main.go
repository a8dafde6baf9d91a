package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/replay"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
)

// #endregion imports

// #region main

func main() {
	dbPath := flag.String("db", "", "path to blockquest.db")
	student := flag.String("student", "", "export one student's attempts (default: all)")
	limit := flag.Int("limit", 200, "max attempts to export")
	out := flag.String("out", "", "output file (default: stdout)")
	desc := flag.String("desc", "exported from attempts DB", "fixture description")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/blockquest.db [--student id] [--limit N] [--out fixture.json]")
		os.Exit(2)
	}

	if err := run(*dbPath, *student, *limit, *out, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, student string, limit int, out, desc string) error {
	store, err := tracker.NewStore(dbPath, tracker.DefaultConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListAttempts(student, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no attempts to export")
	}

	// ListAttempts returns newest first; a fixture replays oldest first.
	subs := make([]replay.FixtureSubmission, 0, len(records))
	results := make([]replay.Result, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		var program block.Sequence
		if err := json.Unmarshal([]byte(r.ProgramJSON), &program); err != nil {
			return fmt.Errorf("attempt %s: decode program: %w", r.ID, err)
		}
		subs = append(subs, replay.FixtureSubmission{StudentID: r.StudentID, Program: program})
		results = append(results, replay.Result{
			StudentID: r.StudentID,
			ProblemID: r.ProblemID,
			Outcome:   r.Outcome,
			Steps:     r.Steps,
		})
	}

	fix := replay.FixtureFromAttempts(desc, subs, results)

	// Tier expectations can't be reconstructed from attempt rows alone;
	// leave them zero and let the operator prune what they don't need.
	data, err := json.MarshalIndent(fix, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	data = append(data, '\n')

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d submissions to %s\n", len(subs), out)
	return nil
}

// #endregion main
