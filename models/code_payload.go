package models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// CodeType discriminates how a Code's payload becomes its target string
type CodeType string

const (
	CodeTypeURL   CodeType = "URL"
	CodeTypeWiFi  CodeType = "WIFI"
	CodeTypeVCard CodeType = "VCARD"
	CodeTypeText  CodeType = "TEXT"
)

// DefaultWiFiEncryption is used when a WIFI payload omits encryption
const DefaultWiFiEncryption = "nopass"

// ErrUnsupportedCodeType is returned for a type discriminator outside the known set
var ErrUnsupportedCodeType = errors.New("unsupported code type")

// CodePayload is the type-specific content of a Code
type CodePayload interface {
	Type() CodeType
	// Target renders the string encoded into the image and used for redirects
	Target() string
	// Fields returns the structured data persisted alongside the Code
	Fields() datatypes.JSONMap
}

type URLPayload struct {
	URL string
}

func (p URLPayload) Type() CodeType            { return CodeTypeURL }
func (p URLPayload) Target() string            { return p.URL }
func (p URLPayload) Fields() datatypes.JSONMap { return nil }

type WiFiPayload struct {
	SSID       string
	Password   string
	Encryption string
}

func (p WiFiPayload) Type() CodeType { return CodeTypeWiFi }

func (p WiFiPayload) Target() string {
	enc := p.Encryption
	if enc == "" {
		enc = DefaultWiFiEncryption
	}
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;;", enc, p.SSID, p.Password)
}

func (p WiFiPayload) Fields() datatypes.JSONMap {
	return datatypes.JSONMap{"ssid": p.SSID, "password": p.Password, "encryption": p.Encryption}
}

type VCardPayload struct {
	Name  string
	Phone string
	Email string
}

func (p VCardPayload) Type() CodeType { return CodeTypeVCard }

func (p VCardPayload) Target() string {
	return fmt.Sprintf("BEGIN:VCARD\nVERSION:3.0\nFN:%s\nTEL:%s\nEMAIL:%s\nEND:VCARD", p.Name, p.Phone, p.Email)
}

func (p VCardPayload) Fields() datatypes.JSONMap {
	return datatypes.JSONMap{"name": p.Name, "phone": p.Phone, "email": p.Email}
}

type TextPayload struct {
	Content string
}

func (p TextPayload) Type() CodeType            { return CodeTypeText }
func (p TextPayload) Target() string            { return p.Content }
func (p TextPayload) Fields() datatypes.JSONMap { return datatypes.JSONMap{"content": p.Content} }

// ParseCodePayload decodes the loosely typed request fields into the payload
// variant selected by codeType, which must match a CodeType exactly.
// Missing data fields default to "".
// URL validity is checked by the caller.
func ParseCodePayload(codeType string, targetURL *string, data map[string]any) (CodePayload, error) {
	switch CodeType(codeType) {
	case CodeTypeURL:
		p := URLPayload{}
		if targetURL != nil {
			p.URL = strings.TrimSpace(*targetURL)
		}
		return p, nil
	case CodeTypeWiFi:
		return WiFiPayload{
			SSID:       stringField(data, "ssid"),
			Password:   stringField(data, "password"),
			Encryption: stringField(data, "encryption"),
		}, nil
	case CodeTypeVCard:
		return VCardPayload{
			Name:  stringField(data, "name"),
			Phone: stringField(data, "phone"),
			Email: stringField(data, "email"),
		}, nil
	case CodeTypeText:
		return TextPayload{Content: stringField(data, "content")}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodeType, codeType)
	}
}

func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
