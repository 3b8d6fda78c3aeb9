package util

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 250 {
		s = strings.TrimRight(s[:250], "-")
	}
	return s
}

// UniqueSlug appends a short random suffix while taken reports a collision.
func UniqueSlug(name string, taken func(slug string) (bool, error)) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "item"
	}
	slug := base
	for i := 0; i < 5; i++ {
		exists, err := taken(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + uuid.New().String()[:5]
	}
	return base + "-" + uuid.New().String()[:8], nil
}
