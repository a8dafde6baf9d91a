package replay

// #region imports
import (
	"fmt"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/adaptive"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/problems"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/queue"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/session"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
)

// #endregion imports

// #region types

// Submission is one recorded program hand-in for replay. The problem is
// not part of the submission: the adaptive agent assigns it, so a
// replay exercises the same assignment path the live system ran.
type Submission struct {
	StudentID string
	Program   block.Sequence
}

// Result captures the outcome of replaying one submission.
type Result struct {
	StudentID string
	ProblemID string
	Outcome   engine.Outcome
	Steps     int
	TierAfter int
	Decision  adaptive.Decision
}

// Summary aggregates a replay run.
type Summary struct {
	Total     int
	Successes int
	Failures  int
	Aborts    int
	Promotes  int
	Demotes   int
}

// Config bundles the knobs a replay run needs.
type Config struct {
	Rules    block.Rules
	Adaptive adaptive.Config
	Tracker  tracker.Config
}

// DefaultConfig returns the standard replay configuration.
func DefaultConfig() Config {
	return Config{
		Rules:    block.DefaultRules(),
		Adaptive: adaptive.DefaultConfig(),
		Tracker:  tracker.DefaultConfig(),
	}
}

// #endregion types

// #region replay

// Replay runs recorded submissions through the full pipeline (agent
// assignment, execution, tracking, tier policy) against a throwaway
// in-memory store. Given identical submissions and catalog, the results
// are identical run to run; this is the determinism contract made
// executable.
func Replay(catalog *problems.Catalog, submissions []Submission, config Config) ([]Result, Summary, error) {
	store, err := tracker.NewStore(":memory:", config.Tracker)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("replay store: %w", err)
	}
	defer store.Close()

	reg := block.NewRegistry()
	eng := engine.New(reg, config.Rules)
	agent := adaptive.NewAgent(config.Adaptive, store, catalog)
	q := queue.New()
	runner := session.NewRunner(catalog, q, eng, store, agent, false)

	results := make([]Result, 0, len(submissions))
	var summary Summary

	for i, sub := range submissions {
		if err := block.ValidateSequence(sub.Program, reg, config.Rules); err != nil {
			return nil, Summary{}, fmt.Errorf("submission %d: %w", i, err)
		}

		if _, err := runner.Start(sub.StudentID); err != nil {
			return nil, Summary{}, fmt.Errorf("submission %d: %w", i, err)
		}
		entry, _, ok := runner.Next()
		if !ok {
			return nil, Summary{}, fmt.Errorf("submission %d: queue empty after start", i)
		}

		res, err := runner.Run(entry, sub.Program)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("submission %d: %w", i, err)
		}

		results = append(results, Result{
			StudentID: sub.StudentID,
			ProblemID: entry.ProblemID,
			Outcome:   res.Run.Outcome,
			Steps:     res.Run.Steps,
			TierAfter: res.TierChange.NewTier,
			Decision:  res.TierChange.Decision,
		})

		summary.Total++
		switch res.Run.Outcome {
		case engine.OutcomeSuccess:
			summary.Successes++
		case engine.OutcomeFailure:
			summary.Failures++
		case engine.OutcomeAborted:
			summary.Aborts++
		}
		switch res.TierChange.Decision {
		case adaptive.DecisionPromote:
			summary.Promotes++
		case adaptive.DecisionDemote:
			summary.Demotes++
		}

		// Drain whatever the runner queued for the next turn; replay
		// drives assignment per submission instead.
		for {
			if _, _, ok := runner.Next(); !ok {
				break
			}
		}
	}
	return results, summary, nil
}

// #endregion replay
