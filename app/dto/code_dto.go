package dto

// CreateCodeRequest represents the request to register a new code
type CreateCodeRequest struct {
	Title     *string        `json:"title,omitempty" validate:"omitempty,max=200"`
	Type      string         `json:"type" validate:"required,max=16"`
	TargetURL *string        `json:"target_url,omitempty" validate:"omitempty,max=4096"`
	Data      map[string]any `json:"data,omitempty"`
	Note      *string        `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// ListCodesRequest represents the query of the recent codes listing
type ListCodesRequest struct {
	Limit int `query:"limit" validate:"omitempty,gte=1"`
}

// CodeResponse is the serialized form of a code
type CodeResponse struct {
	ID         string  `json:"id"`
	Slug       string  `json:"slug"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	TargetURL  string  `json:"target_url"`
	Note       *string `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at"`
	ScansCount int64   `json:"scans_count"`
	ShortURL   string  `json:"short_url,omitempty"`
}

// ListCodesResponse represents the recent codes listing
type ListCodesResponse struct {
	Items []CodeResponse `json:"items"`
	Count int            `json:"count"`
	Limit int            `json:"limit"`
}

// ScanEventResponse is the serialized form of one scan
type ScanEventResponse struct {
	Timestamp string  `json:"timestamp"`
	Referrer  *string `json:"referrer"`
	UserAgent *string `json:"user_agent"`
	IP        *string `json:"ip"`
}

// ReferrerCountResponse is one row of the referrer breakdown
type ReferrerCountResponse struct {
	Referrer *string `json:"referrer"`
	Count    int64   `json:"count"`
}

// CodeStatsResponse represents the scan statistics of a code
type CodeStatsResponse struct {
	Slug         string                  `json:"slug"`
	Title        string                  `json:"title"`
	ScansCount   int64                   `json:"scans_count"`
	CreatedAt    string                  `json:"created_at"`
	Recent       []ScanEventResponse     `json:"recent"`
	TopReferrers []ReferrerCountResponse `json:"top_referrers"`
}
