package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/toyz/docblock/pkg/annotation"
)

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	return Wrap(UnknownErrorCode, fmt.Sprintf("failed to %s %s", operation, item), cause)
}

// WrapParseError attaches the declaration a doc comment belongs to.
func WrapParseError(target string, loc SourceLocation, cause error) *BaseError {
	err := Wrap(ParseErrorCode, fmt.Sprintf("failed to parse annotations of %s", target), cause).
		WithLocation(loc).
		WithContext("target", target)

	var perr *annotation.ParseError
	if stderrors.As(cause, &perr) {
		err.WithContext("kind", perr.Kind.String())
		if perr.Literal != "" {
			err.WithContext("literal", perr.Literal)
		}
		err.WithSuggestions(hintFor(perr.Kind)...)
	}
	return err
}

// WrapSourceError wraps failures reading declarations from a file.
func WrapSourceError(path string, cause error) *BaseError {
	return Wrap(SourceErrorCode, "failed to extract declarations", cause).
		WithLocation(SourceLocation{File: path})
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	return Wrap(FileSystemErrorCode, fmt.Sprintf("failed to %s file '%s'", operation, path), cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(path, operation string, cause error) *BaseError {
	return Wrap(ConfigurationErrorCode, fmt.Sprintf("failed to %s configuration '%s'", operation, path), cause).
		WithContext("path", path).
		WithContext("operation", operation)
}

// WrapCacheError wraps failures of the annotation cache.
func WrapCacheError(operation string, cause error) *BaseError {
	return Wrap(CacheErrorCode, fmt.Sprintf("failed to %s annotation cache", operation), cause).
		WithSuggestions("run 'docblock cache flush' to discard the cached data")
}

func hintFor(kind annotation.ErrorKind) []string {
	switch kind {
	case annotation.MissingEquals:
		return []string{"write parameters as name='value'"}
	case annotation.DuplicateSingleValue, annotation.SingleValueAfterNamed:
		return []string{"only one unnamed value is allowed and it can not follow named values"}
	case annotation.Unterminated:
		return []string{"check for an unclosed (, [, { or quote"}
	case annotation.EmptyName, annotation.InvalidName:
		return []string{"escape a literal @ or follow it with whitespace"}
	default:
		return nil
	}
}
