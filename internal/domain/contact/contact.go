// Package contact pulls a phone number and an email address out of scanned
// QR payloads. Only vCard payloads are inspected; anything else yields an
// empty Contact.
package contact

import (
	"regexp"
	"strings"
)

// VCardMarker must appear in a payload for it to be parsed at all.
const VCardMarker = "BEGIN:VCARD"

// Contact is the best-effort result of parsing a payload. Missing values are
// empty strings.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// IsEmpty reports whether neither a phone nor an email was found.
func (c Contact) IsEmpty() bool {
	return c.Phone == "" && c.Email == ""
}

// fieldLine matches "[group.]NAME[;param...]:value".
var fieldLine = regexp.MustCompile(`^(?:[A-Za-z0-9-]+\.)?([A-Za-z][A-Za-z0-9-]*)(;[^:]*)?:(.*)$`)

// Inline forms for payloads whose fields were not split onto separate lines.
var (
	inlineTel   = regexp.MustCompile(`(?i)\bTEL[^:\s]*:(?:tel:)?(\+?[0-9]+)`)
	inlineEmail = regexp.MustCompile(`(?i)\bEMAIL[^:\s]*:(?:mailto:)?([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
)

// Extract parses raw and returns the first TEL and EMAIL values found.
// It never fails and has no side effects.
func Extract(raw string) Contact {
	if raw == "" || !strings.Contains(raw, VCardMarker) {
		return Contact{}
	}

	var c Contact
	for _, line := range unfold(raw) {
		name, value, ok := splitField(line)
		if !ok || value == "" {
			continue
		}
		switch {
		case c.Phone == "" && strings.HasPrefix(name, "TEL"):
			c.Phone = stripScheme(value, "tel:")
		case c.Email == "" && strings.HasPrefix(name, "EMAIL"):
			c.Email = stripScheme(value, "mailto:")
		}
		if c.Phone != "" && c.Email != "" {
			break
		}
	}

	if c.Phone == "" {
		c.Phone = firstGroup(inlineTel, raw)
	}
	if c.Email == "" {
		c.Email = firstGroup(inlineEmail, raw)
	}
	return c
}

func firstGroup(re *regexp.Regexp, raw string) string {
	if m := re.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// Fields returns every field of a vCard payload keyed by upper-cased name,
// first occurrence wins. Non-vCard payloads return an empty map.
func Fields(raw string) map[string]string {
	out := map[string]string{}
	if !strings.Contains(raw, VCardMarker) {
		return out
	}
	for _, line := range unfold(raw) {
		name, value, ok := splitField(line)
		if !ok {
			continue
		}
		if _, seen := out[name]; !seen {
			out[name] = value
		}
	}
	return out
}

func splitField(line string) (name, value string, ok bool) {
	m := fieldLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]), strings.TrimSpace(m[3]), true
}

// unfold joins RFC 6350 continuation lines (leading space or tab) onto the
// previous line and splits on CRLF or LF.
func unfold(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if len(lines) > 0 && (strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t")) {
			lines[len(lines)-1] += l[1:]
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func stripScheme(value, scheme string) string {
	if len(value) >= len(scheme) && strings.EqualFold(value[:len(scheme)], scheme) {
		value = value[len(scheme):]
	}
	return strings.TrimSpace(value)
}
