package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/problems"
)

// #endregion imports

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string              `json:"description"`
	Problems        []problems.Problem  `json:"problems,omitempty"` // empty = built-in catalog
	MaxBlocks       int                 `json:"max_blocks,omitempty"`
	StreakUp        int                 `json:"streak_up,omitempty"`
	StreakDown      int                 `json:"streak_down,omitempty"`
	Submissions     []FixtureSubmission `json:"submissions"`
	ExpectedResults []FixtureExpected   `json:"expected_results,omitempty"`
}

// FixtureSubmission is one recorded hand-in.
type FixtureSubmission struct {
	StudentID string         `json:"student_id"`
	Program   block.Sequence `json:"program"`
}

// FixtureExpected pins the outcome a replayed submission must produce.
type FixtureExpected struct {
	ProblemID string `json:"problem_id,omitempty"`
	Outcome   string `json:"outcome"`
	Steps     int    `json:"steps"`
	TierAfter int    `json:"tier_after"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and sanity-checks a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fix Fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if len(fix.Submissions) == 0 {
		return nil, fmt.Errorf("fixture has no submissions")
	}
	if len(fix.ExpectedResults) > 0 && len(fix.ExpectedResults) != len(fix.Submissions) {
		return nil, fmt.Errorf("fixture has %d submissions but %d expected results",
			len(fix.Submissions), len(fix.ExpectedResults))
	}
	return &fix, nil
}

// Catalog builds the problem catalog a fixture replays against.
func (f *Fixture) Catalog() (*problems.Catalog, error) {
	if len(f.Problems) == 0 {
		return problems.DefaultCatalog(), nil
	}
	return problems.NewCatalog(f.Problems)
}

// Config derives the replay configuration from fixture overrides.
func (f *Fixture) Config() Config {
	config := DefaultConfig()
	if f.MaxBlocks > 0 {
		config.Rules.MaxBlocks = f.MaxBlocks
	}
	if f.StreakUp > 0 {
		config.Adaptive.StreakUp = f.StreakUp
	}
	if f.StreakDown > 0 {
		config.Adaptive.StreakDown = f.StreakDown
	}
	return config
}

// #endregion load

// #region verify

// Mismatch describes one divergence between a replay and its fixture.
type Mismatch struct {
	Index int
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("submission %d: %s: want %s, got %s", m.Index, m.Field, m.Want, m.Got)
}

// Verify compares replay results against the fixture's expectations.
func (f *Fixture) Verify(results []Result) []Mismatch {
	var mismatches []Mismatch
	for i, want := range f.ExpectedResults {
		if i >= len(results) {
			break
		}
		got := results[i]
		if want.ProblemID != "" && want.ProblemID != got.ProblemID {
			mismatches = append(mismatches, Mismatch{i, "problem", want.ProblemID, got.ProblemID})
		}
		if engine.Outcome(want.Outcome) != got.Outcome {
			mismatches = append(mismatches, Mismatch{i, "outcome", want.Outcome, string(got.Outcome)})
		}
		if want.Steps != got.Steps {
			mismatches = append(mismatches, Mismatch{i, "steps", fmt.Sprint(want.Steps), fmt.Sprint(got.Steps)})
		}
		// Exported fixtures leave tier expectations zeroed; only pin a
		// tier when the fixture author asked for it.
		if want.TierAfter != 0 && want.TierAfter != got.TierAfter {
			mismatches = append(mismatches, Mismatch{i, "tier", fmt.Sprint(want.TierAfter), fmt.Sprint(got.TierAfter)})
		}
	}
	return mismatches
}

// #endregion verify

// #region export

// FixtureFromAttempts rebuilds a fixture from recorded attempt rows so a
// live session can be replayed offline.
func FixtureFromAttempts(description string, programs []FixtureSubmission, results []Result) *Fixture {
	fix := &Fixture{
		Description: description,
		Submissions: programs,
	}
	for _, r := range results {
		fix.ExpectedResults = append(fix.ExpectedResults, FixtureExpected{
			ProblemID: r.ProblemID,
			Outcome:   string(r.Outcome),
			Steps:     r.Steps,
			TierAfter: r.TierAfter,
		})
	}
	return fix
}

// #endregion export
