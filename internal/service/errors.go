package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidURL          = errors.New("invalid URL")
	ErrGenerationExhausted = errors.New("short code generation exhausted")
)

// ValidationError перечисляет некорректные поля запроса.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is позволяет сопоставлять ошибку адреса через errors.Is(err, ErrInvalidURL).
func (e *ValidationError) Is(target error) bool {
	if target != ErrInvalidURL {
		return false
	}
	_, ok := e.Fields[fieldOriginalURL]
	return ok
}
