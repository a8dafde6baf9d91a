package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/logging"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
)

// #endregion imports

// #region main

func main() {
	dbPath := flag.String("db", "", "path to blockquest.db")
	student := flag.String("student", "", "filter to one student")
	last := flag.Int("last", 20, "show N most recent attempts")
	profile := flag.Bool("profile", false, "show the student profile instead of attempts")
	provenance := flag.Bool("log", false, "show adaptive decisions from the attempt log")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/blockquest.db [--student id] [--last N] [--profile] [--log] [--json]")
		os.Exit(2)
	}
	if (*profile || *provenance) && *student == "" {
		fmt.Fprintln(os.Stderr, "--profile and --log need --student")
		os.Exit(2)
	}

	store, err := tracker.NewStore(*dbPath, tracker.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *profile:
		err = runProfile(store, *student, *jsonOut)
	case *provenance:
		err = runLog(store, *student, *last, *jsonOut)
	default:
		err = runAttempts(store, *student, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region attempts

func runAttempts(store *tracker.Store, student string, last int, jsonOut bool) error {
	records, err := store.ListAttempts(student, last)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(records)
	}

	fmt.Printf("%-36s  %-12s  %-16s  %-8s  %5s  %8s  %s\n",
		"ATTEMPT", "STUDENT", "PROBLEM", "OUTCOME", "STEPS", "MS", "CREATED")
	for _, r := range records {
		outcome := string(r.Outcome)
		if r.AbortReason != "" {
			outcome = fmt.Sprintf("%s(%s)", r.Outcome, r.AbortReason)
		}
		fmt.Printf("%-36s  %-12s  %-16s  %-8s  %5d  %8d  %s\n",
			r.ID, r.StudentID, r.ProblemID, outcome, r.Steps,
			r.Duration.Milliseconds(), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// #endregion attempts

// #region profile

func runProfile(store *tracker.Store, student string, jsonOut bool) error {
	p, err := store.ProfileFor(student)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(p)
	}

	fmt.Printf("student:         %s\n", p.StudentID)
	fmt.Printf("total attempts:  %d\n", p.TotalAttempts)
	fmt.Printf("success rate:    %.0f%% (window)\n", p.SuccessRate*100)
	fmt.Printf("avg steps:       %.1f (solved attempts)\n", p.AvgSteps)
	fmt.Printf("tier:            %d\n", p.Tier)
	fmt.Printf("streaks:         %d up / %d down\n", p.SuccessStreak, p.FailureStreak)
	if !p.LastAttemptAt.IsZero() {
		fmt.Printf("last attempt:    %s\n", p.LastAttemptAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// #endregion profile

// #region provenance

func runLog(store *tracker.Store, student string, last int, jsonOut bool) error {
	entries, err := logging.ListByStudent(store.DB(), student, last)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("%s  %-16s  %-8s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.ProblemID, e.Decision, e.Reason)
	}
	return nil
}

// #endregion provenance
