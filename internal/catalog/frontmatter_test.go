package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter_WellFormed(t *testing.T) {
	doc := `---
layout: col-sidebar
title: X
pitch: Finds bugs before they find you
type: tool
level: 3
tags: a, b
---

# X

Body text.
`

	meta, ok := ParseFrontMatter(doc)
	require.True(t, ok)
	assert.Equal(t, "X", meta.Title)
	assert.Equal(t, "Finds bugs before they find you", meta.Pitch)
	assert.Equal(t, "tool", meta.Type)
	assert.Equal(t, 3, meta.Level)
	assert.Equal(t, []string{"a", "b"}, meta.Tags)
}

func TestParseFrontMatter_NoOpeningDelimiter(t *testing.T) {
	_, ok := ParseFrontMatter("# Just a readme\n\ntitle: X\n")
	assert.False(t, ok)
}

func TestParseFrontMatter_Unterminated(t *testing.T) {
	_, ok := ParseFrontMatter("---\ntitle: X\nlevel: 3\n")
	assert.False(t, ok)
}

func TestParseFrontMatter_MissingTitleDiscarded(t *testing.T) {
	_, ok := ParseFrontMatter("---\nlevel: 2\ntags: web\n---\n")
	assert.False(t, ok)
}

func TestParseFrontMatter_BadLevelDefaultsToZero(t *testing.T) {
	meta, ok := ParseFrontMatter("---\ntitle: X\nlevel: flagship\n---\n")
	require.True(t, ok)
	assert.Equal(t, 0, meta.Level)
}

func TestParseFrontMatter_EmptyTagLine(t *testing.T) {
	meta, ok := ParseFrontMatter("---\ntitle: X\ntags:\n---\n")
	require.True(t, ok)
	assert.Empty(t, meta.Tags)
}

func TestParseFrontMatter_EmptyDocument(t *testing.T) {
	_, ok := ParseFrontMatter("")
	assert.False(t, ok)
}
