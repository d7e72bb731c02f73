package businessflow

import "github.com/amirphl/Kyu-Ar/utils"

// ScanMetadata carries what a redirect request reveals about its client.
// IPAddress is the raw address and is anonymized before storage.
type ScanMetadata struct {
	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`
	Referrer  *string `json:"referrer,omitempty"`
}

// NewScanMetadata creates metadata from raw header values; blank values become nil
func NewScanMetadata(ipAddress, userAgent, referrer string) *ScanMetadata {
	return &ScanMetadata{
		IPAddress: utils.NilIfBlank(&ipAddress),
		UserAgent: utils.NilIfBlank(&userAgent),
		Referrer:  utils.NilIfBlank(&referrer),
	}
}
