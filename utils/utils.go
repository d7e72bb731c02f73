package utils

import "strings"

func ToPtr[T any](v T) *T {
	return &v
}

// Deref returns the pointed-to string or "" for nil
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NilIfBlank returns nil when s is nil or contains only whitespace
func NilIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
