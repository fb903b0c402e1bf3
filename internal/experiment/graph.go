package experiment

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/graphs"
)

// BuildGraph generates the graph a config section describes.
func BuildGraph(cfg config.GraphConfig) (*graphs.EdgeList, error) {
	switch cfg.Type {
	case "path":
		return graphs.Path(cfg.Vertices, cfg.Directed)
	case "ring":
		return graphs.Ring(cfg.Vertices, cfg.Directed)
	case "star":
		return graphs.Star(cfg.Vertices, cfg.Directed)
	case "complete":
		return graphs.Complete(cfg.Vertices, cfg.Directed)
	case "grid":
		return graphs.Grid(cfg.Rows, cfg.Cols, cfg.Directed)
	case "random":
		return graphs.ErdosRenyi(cfg.Vertices, cfg.P, cfg.Seed, cfg.Directed)
	case "explicit":
		pairs := make([][2]int, len(cfg.Edges))
		for j, e := range cfg.Edges {
			if len(e) != 2 {
				return nil, fmt.Errorf("edge %d: expected [src, dst], got %v", j, e)
			}
			pairs[j] = [2]int{e[0], e[1]}
		}
		return graphs.FromPairs(cfg.Vertices, cfg.Directed, pairs...)
	default:
		return nil, fmt.Errorf("unknown graph type: %s", cfg.Type)
	}
}
