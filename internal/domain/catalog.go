package domain

import "strings"

// ContentNode is one entry of the content catalog. The catalog is owned by the
// content-management system and is read-only reference data here.
type ContentNode struct {
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// Validate checks that the node can be placed in a prerequisite graph.
func (n ContentNode) Validate() error {
	if strings.TrimSpace(n.Slug) == "" {
		return NewValidationError("slug", "cannot be empty")
	}
	for _, p := range n.Prerequisites {
		if strings.TrimSpace(p) == "" {
			return NewValidationError("prerequisites", "cannot contain an empty slug")
		}
	}
	return nil
}

// Catalog is the set of content nodes known to the engine.
type Catalog []ContentNode

// Lookup returns the node with the given slug.
func (c Catalog) Lookup(slug string) (ContentNode, bool) {
	for _, n := range c {
		if n.Slug == slug {
			return n, true
		}
	}
	return ContentNode{}, false
}
