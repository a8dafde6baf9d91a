package problems

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/world"
)

// #endregion imports

// #region problem

// Problem defines one exercise: the initial world, the goal predicate,
// the step budget, and which block kinds the student may use.
type Problem struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Tier    int                `json:"tier"`
	Goal    string             `json:"goal"`
	Budget  int                `json:"budget"`
	Vars    map[string]float64 `json:"vars,omitempty"`
	Allowed []block.Kind       `json:"allowed,omitempty"` // nil = all kinds

	goal *block.CondProgram // compiled at catalog build time
}

// NewContext creates a fresh context for one attempt at this problem.
// Each attempt owns its context exclusively; nothing is shared between
// concurrent attempts.
func (p *Problem) NewContext() *world.Context {
	return world.NewContext(p.Vars, p.Budget, p.goal)
}

// #endregion problem

// #region catalog

// Catalog holds the tiered problem set. Problems are validated when the
// catalog is built: goals must compile to boolean expressions and
// budgets must be positive. Problem definitions are data, never code.
type Catalog struct {
	byID    map[string]*Problem
	byTier  map[int][]*Problem
	minTier int
	maxTier int
}

// NewCatalog validates a problem set and indexes it by tier.
func NewCatalog(list []Problem) (*Catalog, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("catalog: no problems defined")
	}

	c := &Catalog{
		byID:   make(map[string]*Problem, len(list)),
		byTier: make(map[int][]*Problem),
	}
	for i := range list {
		p := list[i]
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: problem %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate problem id %q", p.ID)
		}
		if p.Budget <= 0 {
			return nil, fmt.Errorf("catalog: problem %q: budget must be positive", p.ID)
		}
		goal, err := block.CompileCond(p.Goal)
		if err != nil {
			return nil, fmt.Errorf("catalog: problem %q: %w", p.ID, err)
		}
		p.goal = goal

		c.byID[p.ID] = &p
		c.byTier[p.Tier] = append(c.byTier[p.Tier], &p)
	}

	tiers := make([]int, 0, len(c.byTier))
	for t := range c.byTier {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)
	c.minTier = tiers[0]
	c.maxTier = tiers[len(tiers)-1]
	return c, nil
}

// LoadCatalogFile reads a problem set from a JSON file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var list []Problem
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(list)
}

// #endregion catalog

// #region lookup

// ByID returns the problem with the given id.
func (c *Catalog) ByID(id string) (*Problem, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// ForTier returns the problems at a tier, clamped into the defined
// tier range so every tier the adaptive policy can reach has work.
func (c *Catalog) ForTier(tier int) []*Problem {
	if tier < c.minTier {
		tier = c.minTier
	}
	if tier > c.maxTier {
		tier = c.maxTier
	}
	// Tiers inside the range may be sparse; walk down to the nearest
	// populated one.
	for t := tier; t >= c.minTier; t-- {
		if ps := c.byTier[t]; len(ps) > 0 {
			return ps
		}
	}
	return c.byTier[c.minTier]
}

// MinTier returns the lowest defined tier.
func (c *Catalog) MinTier() int { return c.minTier }

// MaxTier returns the highest defined tier.
func (c *Catalog) MaxTier() int { return c.maxTier }

// Len returns the number of problems in the catalog.
func (c *Catalog) Len() int { return len(c.byID) }

// All returns every problem ordered by tier, then id.
func (c *Catalog) All() []*Problem {
	out := make([]*Problem, 0, len(c.byID))
	for _, p := range c.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// #endregion lookup
