package block

// #region imports
import (
	"fmt"
	"sort"

	"github.com/awalterschulze/gographviz"
)

// #endregion imports

// #region dot-export

// ToDOT renders a block sequence as a Graphviz digraph, one node per
// block with composite children linked to their parent. Useful for
// showing students the structure of what they submitted.
func ToDOT(seq Sequence, name string) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(name); err != nil {
		return "", fmt.Errorf("set graph name: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("set directed: %w", err)
	}

	var prev string
	for i, b := range seq {
		id, err := addBlockNode(g, name, b, i)
		if err != nil {
			return "", err
		}
		if prev != "" {
			if err := g.AddEdge(prev, id, true, map[string]string{"style": `"bold"`}); err != nil {
				return "", fmt.Errorf("add edge: %w", err)
			}
		}
		prev = id
	}
	return g.String(), nil
}

func addBlockNode(g *gographviz.Graph, parent string, b *Block, idx int) (string, error) {
	id := fmt.Sprintf("n%s", sanitize(b.ID))
	label := string(b.Kind)
	for _, name := range sortedParamNames(b.Params) {
		label = fmt.Sprintf("%s\\n%s=%v", label, name, b.Params[name])
	}
	attrs := map[string]string{
		"label": fmt.Sprintf("%q", label),
		"shape": "box",
	}
	if len(b.Children) > 0 {
		attrs["style"] = `"rounded"`
	}
	if err := g.AddNode(parent, id, attrs); err != nil {
		return "", fmt.Errorf("add node: %w", err)
	}

	for i, c := range b.Children {
		cid, err := addBlockNode(g, parent, c, i)
		if err != nil {
			return "", err
		}
		if err := g.AddEdge(id, cid, true, map[string]string{"label": fmt.Sprintf(`"%d"`, i)}); err != nil {
			return "", fmt.Errorf("add child edge: %w", err)
		}
	}
	return id, nil
}

func sortedParamNames(params map[string]any) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sanitize keeps DOT node names to identifier-safe characters.
func sanitize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// #endregion dot-export
