package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodePayload(t *testing.T) {
	target := "https://example.com/menu"

	tests := []struct {
		name       string
		codeType   string
		targetURL  *string
		data       map[string]any
		wantType   CodeType
		wantTarget string
	}{
		{
			name:       "url",
			codeType:   "URL",
			targetURL:  &target,
			wantType:   CodeTypeURL,
			wantTarget: target,
		},
		{
			name:       "wifi full",
			codeType:   "WIFI",
			data:       map[string]any{"ssid": "net", "password": "pw", "encryption": "WPA"},
			wantType:   CodeTypeWiFi,
			wantTarget: "WIFI:T:WPA;S:net;P:pw;;",
		},
		{
			name:       "wifi without data",
			codeType:   "WIFI",
			wantType:   CodeTypeWiFi,
			wantTarget: "WIFI:T:nopass;S:;P:;;",
		},
		{
			name:       "vcard partial",
			codeType:   "VCARD",
			data:       map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"},
			wantType:   CodeTypeVCard,
			wantTarget: "BEGIN:VCARD\nVERSION:3.0\nFN:Ada Lovelace\nTEL:\nEMAIL:ada@example.com\nEND:VCARD",
		},
		{
			name:       "text",
			codeType:   "TEXT",
			data:       map[string]any{"content": "hello there"},
			wantType:   CodeTypeText,
			wantTarget: "hello there",
		},
		{
			name:       "text non string value",
			codeType:   "TEXT",
			data:       map[string]any{"content": 42},
			wantType:   CodeTypeText,
			wantTarget: "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseCodePayload(tt.codeType, tt.targetURL, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, p.Type())
			assert.Equal(t, tt.wantTarget, p.Target())
		})
	}
}

func TestParseCodePayloadUnsupported(t *testing.T) {
	for _, codeType := range []string{"SMS", "", "wifi", "url", " URL ", "Text"} {
		t.Run(codeType, func(t *testing.T) {
			p, err := ParseCodePayload(codeType, nil, nil)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrUnsupportedCodeType)
		})
	}
}
