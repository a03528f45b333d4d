package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTextProcessor_TruncateText(t *testing.T) {
	tp := NewTextProcessor(nil)

	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 10))
		assert.Equal(t, "hello", tp.TruncateText("hello", 0))
	})

	t.Run("long text gets the marker", func(t *testing.T) {
		got := tp.TruncateText(strings.Repeat("x", 20), 5)
		assert.Equal(t, "xxxxx"+truncationMarker, got)
	})

	t.Run("never splits a rune", func(t *testing.T) {
		got := tp.TruncateText("ab€cd", 3)
		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasPrefix(got, "ab\n"))
	})
}

func TestTextProcessor_SanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(nil)

	assert.Equal(t, "valid", tp.SanitizeUTF8("valid"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}

func TestTextProcessor_Normalize(t *testing.T) {
	tp := NewTextProcessor(nil)

	decomposed := "e\u0301te\u0301"
	assert.Equal(t, "\u00e9t\u00e9", tp.Normalize(decomposed))
	assert.Equal(t, "ok", tp.Normalize("o\xc0k"))
}

func TestTextProcessor_ProcessText(t *testing.T) {
	tp := NewTextProcessor(nil)

	got := tp.ProcessText("a\xffbcdef", 4)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(got, "abc\n"))
}
