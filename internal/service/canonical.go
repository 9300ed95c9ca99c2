package service

import (
	"sort"
	"strings"

	"itn-gateway/internal/core/domain"
)

const upperHex = "0123456789ABCDEF"

// Canonicalize builds the string the gateway signed: every field but the
// signature, sorted by raw name, as name=encoded(value) joined by "&", with
// "&passphrase=..." appended when the trimmed passphrase is non-empty.
func Canonicalize(fields []domain.Field, passphrase string) string {
	values := make(map[string]string, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Name == domain.FieldSignature {
			continue
		}
		if _, seen := values[f.Name]; !seen {
			names = append(names, f.Name)
		}
		values[f.Name] = f.Value
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(encodeComponent(values[name]))
	}

	if p := strings.TrimSpace(passphrase); p != "" {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString("passphrase=")
		b.WriteString(encodeComponent(p))
	}

	return b.String()
}

// encodeComponent percent-encodes s byte by byte, leaving the URI component
// unreserved set alone and writing a space as "+".
func encodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case isUnreserved(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0f])
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
