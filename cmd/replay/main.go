package main

// #region imports
import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/replay"
)

// #endregion imports

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to replay fixture JSON")
	verbose := flag.Bool("v", false, "print per-submission results")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [-v]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *verbose))
}

func run(path string, verbose bool) int {
	fix, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	catalog, err := fix.Catalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	subs := make([]replay.Submission, len(fix.Submissions))
	for i, s := range fix.Submissions {
		subs[i] = replay.Submission{StudentID: s.StudentID, Program: s.Program}
	}

	results, summary, err := replay.Replay(catalog, subs, fix.Config())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
		return 1
	}

	if fix.Description != "" {
		fmt.Printf("%s\n", fix.Description)
	}
	if verbose {
		for i, r := range results {
			fmt.Printf("  %2d  %-12s %-16s %-8s steps=%-3d tier=%d\n",
				i, r.StudentID, r.ProblemID, r.Outcome, r.Steps, r.TierAfter)
		}
	}
	fmt.Printf("replayed %d submissions: %d success / %d failure / %d aborted, %d promotions / %d demotions\n",
		summary.Total, summary.Successes, summary.Failures, summary.Aborts,
		summary.Promotes, summary.Demotes)

	mismatches := fix.Verify(results)
	if len(mismatches) > 0 {
		for _, m := range mismatches {
			fmt.Fprintf(os.Stderr, "MISMATCH %s\n", m)
		}
		return 1
	}
	if len(fix.ExpectedResults) > 0 {
		fmt.Println("all expectations matched")
	}
	return 0
}

// #endregion main
