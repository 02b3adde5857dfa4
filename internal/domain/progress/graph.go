package progress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Graph is a validated, acyclic prerequisite graph over the content catalog.
type Graph struct {
	nodes map[string]domain.ContentNode
	order []string
}

// NewGraph validates the catalog and computes a topological order in which
// every node follows its prerequisites. Unknown prerequisites, self
// references, duplicate slugs and cycles are configuration errors.
func NewGraph(catalog domain.Catalog) (*Graph, error) {
	nodes := make(map[string]domain.ContentNode, len(catalog))
	for _, n := range catalog {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("%w: catalog node %q: %v", domain.ErrConfiguration, n.Slug, err)
		}
		if _, dup := nodes[n.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate catalog slug %q", domain.ErrConfiguration, n.Slug)
		}
		nodes[n.Slug] = n
	}

	indegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for slug := range nodes {
		indegree[slug] = 0
	}
	for slug, n := range nodes {
		seen := make(map[string]struct{}, len(n.Prerequisites))
		for _, pre := range n.Prerequisites {
			if pre == slug {
				return nil, fmt.Errorf("%w: %q lists itself as a prerequisite", domain.ErrConfiguration, slug)
			}
			if _, ok := nodes[pre]; !ok {
				return nil, fmt.Errorf("%w: %q requires unknown content %q", domain.ErrConfiguration, slug, pre)
			}
			if _, dup := seen[pre]; dup {
				continue
			}
			seen[pre] = struct{}{}
			indegree[slug]++
			dependents[pre] = append(dependents[pre], slug)
		}
	}

	// Kahn's algorithm, always taking the smallest ready slug.
	var ready []string
	for slug, d := range indegree {
		if d == 0 {
			ready = append(ready, slug)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		slug := ready[0]
		ready = ready[1:]
		order = append(order, slug)

		released := false
		for _, dep := range dependents[slug] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	if len(order) != len(nodes) {
		var cyclic []string
		for slug, d := range indegree {
			if d > 0 {
				cyclic = append(cyclic, slug)
			}
		}
		sort.Strings(cyclic)
		return nil, fmt.Errorf("%w: prerequisite cycle among %s",
			domain.ErrConfiguration, strings.Join(cyclic, ", "))
	}

	return &Graph{nodes: nodes, order: order}, nil
}

// Order returns the slugs in topological order.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Node returns the catalog node for slug.
func (g *Graph) Node(slug string) (domain.ContentNode, bool) {
	n, ok := g.nodes[slug]
	return n, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}
