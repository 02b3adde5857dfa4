package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentNodeValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ContentNode{Slug: "inversion", Prerequisites: []string{"first-principles"}}.Validate())

	err := ContentNode{Slug: ""}.Validate()
	assert.True(t, errors.Is(err, ErrValidation))

	err = ContentNode{Slug: "inversion", Prerequisites: []string{" "}}.Validate()
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "prerequisites")
}

func TestCatalogLookup(t *testing.T) {
	t.Parallel()

	c := Catalog{{Slug: "a", Name: "A"}, {Slug: "b", Name: "B"}}

	n, ok := c.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "B", n.Name)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}
