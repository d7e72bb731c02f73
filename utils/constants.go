package utils

import (
	"time"
)

// Slug constants
const (
	// SlugLength is the length of randomly drawn slugs
	SlugLength = 8

	// SlugAlphabet holds the 62 symbols random slugs are drawn from
	SlugAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultSlugToken is used when a title normalizes to nothing
	DefaultSlugToken = "qr"

	// MaxTitleSlugLength caps title-derived slugs so suffixed forms fit the slug column
	MaxTitleSlugLength = 48
)

// Registry defaults
const (
	DefaultListLimit    = 100
	MaxListLimit        = 500
	StatsRecentScans    = 50
	StatsTopReferrers   = 10
	SlugSuffixAttempts  = 100
	RequestTimeout      = 10 * time.Second
	ExportScansMaxRows  = 100000
	DefaultImageScale   = 8
	DefaultImageBorder  = 2
	DefaultDarkColor    = "#000000"
	DefaultLightColor   = "#ffffff"
	MaxImagePayloadSize = 2048
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
