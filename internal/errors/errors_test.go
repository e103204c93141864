package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/docblock/pkg/annotation"
)

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ParseErrorCode, "ParseError"},
		{SourceErrorCode, "SourceError"},
		{CacheErrorCode, "CacheError"},
		{ConfigurationErrorCode, "ConfigurationError"},
		{FileSystemErrorCode, "FileSystemError"},
		{ServerErrorCode, "ServerError"},
		{UnknownErrorCode, "UnknownError"},
		{ErrorCode(99), "UnknownError"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.expected {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.expected)
		}
	}
}

func TestSourceLocationString(t *testing.T) {
	tests := []struct {
		loc      SourceLocation
		expected string
	}{
		{SourceLocation{}, "unknown location"},
		{SourceLocation{File: "User.php"}, "User.php"},
		{SourceLocation{File: "User.php", Line: 12}, "User.php:12"},
		{SourceLocation{File: "User.php", Line: 12, Column: 4}, "User.php:12:4"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.expected {
			t.Errorf("%#v.String() = %q, want %q", tt.loc, got, tt.expected)
		}
	}
}

func TestBaseError(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CacheErrorCode, "failed to save", cause).
		WithLocation(SourceLocation{File: ".docblock.cache"}).
		WithContext("entries", 3).
		WithSuggestions("free some space")

	assert.Equal(t, ".docblock.cache: failed to save: disk full", err.Error())
	assert.Equal(t, CacheErrorCode, err.ErrorCode())
	assert.Equal(t, 3, err.Context()["entries"])
	assert.Equal(t, []string{"free some space"}, err.Suggestions())
	assert.ErrorIs(t, err, cause)

	plain := Newf(UnknownErrorCode, "unknown target %s", "App\\User")
	assert.Equal(t, "unknown target App\\User", plain.Error())
	assert.NotNil(t, plain.Context())
	assert.Empty(t, plain.Context())
}

func TestWrapParseError(t *testing.T) {
	_, perr := annotation.Parse("/**\n * @Route(path='/oops\n */", "Shop::buy()")
	require.Error(t, perr)

	err := WrapParseError("Shop::buy()", SourceLocation{File: "Shop.php", Line: 20}, perr)
	assert.Equal(t, ParseErrorCode, err.ErrorCode())
	assert.Contains(t, err.Error(), "Shop.php:20: failed to parse annotations of Shop::buy()")
	assert.Equal(t, "Shop::buy()", err.Context()["target"])
	assert.Equal(t, annotation.Unterminated.String(), err.Context()["kind"])
	assert.NotEmpty(t, err.Suggestions())
	assert.True(t, stderrors.Is(err, annotation.ErrParse))

	other := WrapParseError("t", SourceLocation{}, fmt.Errorf("boom"))
	assert.Empty(t, other.Suggestions())
	assert.NotContains(t, other.Context(), "kind")
}

func TestWrappers(t *testing.T) {
	cause := fmt.Errorf("permission denied")

	cfg := WrapConfigurationError(".docblock.toml", "parse", cause)
	assert.Equal(t, ConfigurationErrorCode, cfg.ErrorCode())
	assert.Equal(t, "failed to parse configuration '.docblock.toml': permission denied", cfg.Error())
	assert.Equal(t, "parse", cfg.Context()["operation"])

	fs := WrapFileSystemError("read", "doc.txt", cause)
	assert.Equal(t, FileSystemErrorCode, fs.ErrorCode())
	assert.Equal(t, "doc.txt", fs.Context()["path"])

	src := WrapSourceError("User.php", cause)
	assert.Equal(t, "User.php", src.Location().File)
	assert.Equal(t, "User.php: failed to extract declarations: permission denied", src.Error())

	cache := WrapCacheError("load", cause)
	assert.Equal(t, CacheErrorCode, cache.ErrorCode())
	assert.Contains(t, cache.Suggestions()[0], "cache flush")

	op := WrapWithOperation("discover", "source files", cause)
	assert.Equal(t, "failed to discover source files: permission denied", op.Error())
}

func TestMultipleErrors(t *testing.T) {
	multi := NewMultipleErrors()
	assert.Nil(t, multi.ErrOrNil())
	assert.Equal(t, "no errors", multi.Error())

	first := New(SourceErrorCode, "first")
	multi.Add(first)
	assert.Equal(t, "first", multi.Error())

	multi.Add(New(ParseErrorCode, "second"))
	assert.Equal(t, "multiple errors (2 total):\n  1. first\n  2. second", multi.Error())
	assert.ErrorIs(t, multi.ErrOrNil(), first)

	var nilMulti *MultipleErrors
	assert.Nil(t, nilMulti.ErrOrNil())
}

func TestMultipleErrorsMerge(t *testing.T) {
	inner := NewMultipleErrors()
	inner.Add(New(SourceErrorCode, "a"))
	inner.Add(New(SourceErrorCode, "b"))

	merged := NewMultipleErrors()
	merged.Merge(nil)
	merged.Merge(inner)
	merged.Merge(New(ParseErrorCode, "c"))
	merged.Merge(fmt.Errorf("plain"))

	require.Equal(t, 4, merged.Count())
	assert.Equal(t, "a", merged.Errors[0].Error())
	assert.Equal(t, ParseErrorCode, merged.Errors[2].ErrorCode())
	assert.Equal(t, UnknownErrorCode, merged.Errors[3].ErrorCode())
	assert.Equal(t, "unexpected failure: plain", merged.Errors[3].Error())
}
