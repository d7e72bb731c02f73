package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateSlug derives a slug candidate from title, or draws a random one when
// title is absent or blank. fromTitle reports which path produced the slug.
// Uniqueness is not checked here.
func GenerateSlug(title *string) (slug string, fromTitle bool, err error) {
	if title != nil && strings.TrimSpace(*title) != "" {
		return NormalizeTitle(*title), true, nil
	}
	slug, err = RandomSlug(SlugLength)
	if err != nil {
		return "", false, err
	}
	return slug, false, nil
}

// NormalizeTitle lower-cases title and replaces every run of characters outside
// [a-z0-9] with a single hyphen, trimming hyphens at both ends.
func NormalizeTitle(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > MaxTitleSlugLength {
		slug = strings.TrimRight(slug[:MaxTitleSlugLength], "-")
	}
	if slug == "" {
		return DefaultSlugToken
	}
	return slug
}

// RandomSlug returns n symbols drawn uniformly from SlugAlphabet using crypto/rand
func RandomSlug(n int) (string, error) {
	code := make([]byte, n)
	alphabetLength := big.NewInt(int64(len(SlugAlphabet)))

	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, alphabetLength)
		if err != nil {
			return "", fmt.Errorf("failed to draw random slug: %w", err)
		}
		code[i] = SlugAlphabet[idx.Int64()]
	}

	return string(code), nil
}

// SuffixSlug returns base with a numeric suffix, e.g. "menu-3"
func SuffixSlug(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}
