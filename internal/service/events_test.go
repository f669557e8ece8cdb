package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	slug := generateSlug("GopherCon Europe 2026!")

	assert.True(t, strings.HasPrefix(slug, "gophercon-europe-2026-"), slug)
	assert.NotContains(t, slug, "!")
	assert.NotContains(t, slug, " ")
}

func TestGenerateSlugCollapsesSeparators(t *testing.T) {
	slug := generateSlug("  Go --- Meetup  ")
	assert.True(t, strings.HasPrefix(slug, "go-meetup-"), slug)
	assert.NotContains(t, slug, "--")
}

func TestGenerateSlugUnique(t *testing.T) {
	a := generateSlug("Same Title")
	b := generateSlug("Same Title")
	assert.NotEqual(t, a, b)
}

func TestGenerateSlugNonLatinTitle(t *testing.T) {
	// A title with no slug-safe characters still yields a usable slug.
	slug := generateSlug("Конференция")
	assert.NotEmpty(t, slug)
	assert.NotContains(t, slug, "-")
	assert.Len(t, slug, 6)
}
