package problems

import "github.com/danielpatrickdp/blockquest/go-engine/internal/block"

// #region default-catalog

// defaultProblems is the built-in three-tier progression used when no
// catalog file is supplied.
var defaultProblems = []Problem{
	{
		ID:      "walk-3",
		Title:   "Walk three tiles",
		Tier:    1,
		Goal:    "position == 3",
		Budget:  5,
		Vars:    map[string]float64{"position": 0},
		Allowed: []block.Kind{block.KindMove},
	},
	{
		ID:      "walk-7",
		Title:   "Walk seven tiles",
		Tier:    1,
		Goal:    "position == 7",
		Budget:  8,
		Vars:    map[string]float64{"position": 0},
		Allowed: []block.Kind{block.KindMove, block.KindLoop},
	},
	{
		ID:     "count-to-10",
		Title:  "Count to ten with a loop",
		Tier:   2,
		Goal:   "counter == 10",
		Budget: 15,
		Vars:   map[string]float64{"counter": 0},
		Allowed: []block.Kind{
			block.KindSet, block.KindAdd, block.KindLoop,
		},
	},
	{
		ID:     "target-eight",
		Title:  "Land exactly on tile eight",
		Tier:   2,
		Goal:   "position == 8",
		Budget: 12,
		Vars:   map[string]float64{"position": 0},
		Allowed: []block.Kind{
			block.KindMove, block.KindLoop, block.KindIf,
		},
	},
	{
		ID:     "sum-series",
		Title:  "Sum the first five numbers",
		Tier:   3,
		Goal:   "total == 15",
		Budget: 20,
		Vars:   map[string]float64{"total": 0, "i": 0},
		Allowed: []block.Kind{
			block.KindSet, block.KindAdd, block.KindLoop, block.KindIf, block.KindOutput,
		},
	},
	{
		ID:     "threshold-gate",
		Title:  "Cross the threshold, then report",
		Tier:   3,
		Goal:   "reported == 1",
		Budget: 25,
		Vars:   map[string]float64{"level": 0, "reported": 0},
		Allowed: []block.Kind{
			block.KindSet, block.KindAdd, block.KindLoop, block.KindIf, block.KindOutput,
		},
	},
}

// DefaultCatalog returns the built-in problem set. It panics only if
// the built-in definitions themselves are broken, which the package
// tests guard against.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultProblems)
	if err != nil {
		panic("problems: built-in catalog invalid: " + err.Error())
	}
	return c
}

// #endregion default-catalog
