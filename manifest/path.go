package manifest

import (
	"net/http"
	"strings"
)

// NormalizePath collapses duplicate slashes, guarantees a leading
// slash and strips the trailing slash except for the root path.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// JoinPaths concatenates a base path and a relative path and
// normalizes the result.
func JoinPaths(base, path string) string {
	return NormalizePath(NormalizePath(base) + NormalizePath(path))
}

// PathSegments splits a normalized path template into its segments.
// The root path yields no segments.
func PathSegments(path string) []string {
	path = NormalizePath(path)
	if path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// IsDynamicSegment reports whether a path segment uses the brace
// template syntax, e.g. "{id}".
func IsDynamicSegment(segment string) bool {
	return len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

// SegmentName returns the parameter name of a dynamic segment.
func SegmentName(segment string) string {
	return strings.TrimSuffix(strings.TrimPrefix(segment, "{"), "}")
}

// DefaultStatus returns the default response status for an HTTP verb
// when no explicit response override is declared.
func DefaultStatus(method string) int {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return http.StatusCreated
	case http.MethodDelete:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}
