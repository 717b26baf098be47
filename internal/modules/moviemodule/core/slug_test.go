package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple title", "The Godfather", "the-godfather"},
		{"punctuation collapses", "Once Upon a Time... in Hollywood", "once-upon-a-time-in-hollywood"},
		{"digits kept", "2001: A Space Odyssey", "2001-a-space-odyssey"},
		{"leading junk stripped", "  --Heat", "heat"},
		{"non-ascii dropped", "Amélie", "am-lie"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "the-godfather-42", MakeSlug("The Godfather", 42))
	assert.Equal(t, "john-smith-7", MakeSlug("John Smith", 7))

	// Identical display text stays unique through the id suffix
	assert.NotEqual(t, MakeSlug("John Smith", 1), MakeSlug("John Smith", 2))

	// Empty text degrades to the bare id
	assert.Equal(t, "9", MakeSlug("???", 9))
}

func TestMakeSlugTruncation(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	slug := MakeSlug(long, 123)

	require.True(t, strings.HasSuffix(slug, "-123"))
	text := strings.TrimSuffix(slug, "-123")
	assert.LessOrEqual(t, len(text), 45)
	assert.False(t, strings.HasSuffix(text, "-"), "truncation must not leave a dangling hyphen")
}

func TestIDFromSlug(t *testing.T) {
	id, err := IDFromSlug("the-godfather-42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	// Round trip
	id, err = IDFromSlug(MakeSlug("Heat", 310))
	require.NoError(t, err)
	assert.Equal(t, uint(310), id)

	// Bare numeric slug
	id, err = IDFromSlug("9")
	require.NoError(t, err)
	assert.Equal(t, uint(9), id)

	_, err = IDFromSlug("no-numeric-suffix-")
	assert.Error(t, err)

	_, err = IDFromSlug("not-a-number-abc")
	assert.Error(t, err)
}
