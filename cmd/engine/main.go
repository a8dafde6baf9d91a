package main

// #region imports
import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/adaptive"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/problems"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/queue"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/session"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
)

// #endregion imports

// #region main
func main() {
	dbPath := envOr("BLOCKQUEST_DB", "blockquest.db")
	catalogPath := os.Getenv("BLOCKQUEST_CATALOG")
	student := envOr("BLOCKQUEST_STUDENT", "student-1")

	catalog := problems.DefaultCatalog()
	if catalogPath != "" {
		var err error
		catalog, err = problems.LoadCatalogFile(catalogPath)
		if err != nil {
			log.Fatalf("failed to load catalog: %v", err)
		}
	}

	store, err := tracker.NewStore(dbPath, tracker.DefaultConfig())
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	eng := engine.New(block.NewRegistry(), block.DefaultRules())
	agent := adaptive.NewAgent(adaptive.DefaultConfig(), store, catalog)
	runner := session.NewRunner(catalog, queue.New(), eng, store, agent, true)

	if _, err := runner.Start(student); err != nil {
		log.Fatalf("failed to queue first assignment: %v", err)
	}

	fmt.Println("Block Engine ready.")
	fmt.Printf("  DB: %s | student: %s | problems: %d\n", dbPath, student, catalog.Len())
	fmt.Println("Submit a program as one line of JSON (or 'skip', 'quit'):")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		entry, p, ok := runner.Next()
		if !ok {
			fmt.Println("Queue drained, goodbye.")
			return
		}

		fmt.Printf("\n[tier %d] %s: %s\n", entry.Tier, p.ID, p.Title)
		fmt.Printf("  goal: %s | budget: %d steps | vars: %v\n", p.Goal, p.Budget, p.Vars)
		if p.Allowed != nil {
			fmt.Printf("  allowed blocks: %v\n", p.Allowed)
		}
		fmt.Print("> ")

		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "skip" {
			runner.Start(student)
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		seq, err := block.ParseSequence([]byte(line), block.NewRegistry(), eng.Rules())
		if err != nil {
			fmt.Printf("rejected: %v\n", err)
			// A rejected program never ran; the assignment goes back up front.
			runner.Start(student)
			continue
		}

		res, err := runner.Run(entry, seq)
		if err != nil {
			fmt.Printf("rejected: %v\n", err)
			runner.Start(student)
			continue
		}

		printResult(res)
	}
}

// #endregion main

// #region output

func printResult(res session.AttemptResult) {
	switch res.Run.Outcome {
	case engine.OutcomeSuccess:
		fmt.Printf("✓ solved in %d steps (%d budget left)\n", res.Run.Steps, res.Run.Snapshot.Remaining)
	case engine.OutcomeAborted:
		fmt.Printf("✗ ran out of steps after %d\n", res.Run.Steps)
	default:
		fmt.Printf("✗ goal not reached after %d steps\n", res.Run.Steps)
	}

	for _, e := range res.Run.Trace {
		fmt.Printf("  step %d: %s %s → %s = %g\n",
			e.Step, e.Kind, e.Pos, e.Delta.Var, e.Delta.After)
	}
	if len(res.Run.Snapshot.Outputs) > 0 {
		fmt.Printf("  outputs: %v\n", res.Run.Snapshot.Outputs)
	}
	if res.TierChange.Decision != adaptive.DecisionHold {
		fmt.Printf("  tier %d → %d (%s)\n",
			res.TierChange.OldTier, res.TierChange.NewTier, res.TierChange.Reason)
	}
}

// #endregion output

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
