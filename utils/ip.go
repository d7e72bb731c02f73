package utils

import (
	"net"
	"strings"
)

// AnonymizeIP redacts the host part of a client address before it is stored.
// A trailing ":port" is dropped by keeping everything before the first colon,
// so bracketed IPv6 literals are not special-cased. Dotted IPv4 addresses get
// their last octet replaced by 0; other valid addresses are returned as is.
// Invalid input yields nil.
func AnonymizeIP(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}

	addr := strings.SplitN(*raw, ":", 2)[0]
	if net.ParseIP(addr) == nil {
		return nil
	}

	parts := strings.Split(addr, ".")
	if len(parts) == 4 {
		parts[3] = "0"
		masked := strings.Join(parts, ".")
		return &masked
	}
	return &addr
}
