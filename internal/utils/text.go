package utils

import (
	"net/mail"
	"path/filepath"
	"strings"
	"unicode"
)

// nordic covers the accented characters that show up in Swedish form labels.
var nordic = strings.NewReplacer(
	"å", "a", "ä", "a", "ö", "o", "é", "e", "ü", "u",
	"Å", "a", "Ä", "a", "Ö", "o", "É", "e", "Ü", "u",
)

// Slugify derives the wire field name from a human label: lowercase ASCII,
// words joined by hyphens, everything else dropped.
func Slugify(label string) string {
	s := nordic.Replace(strings.ToLower(strings.TrimSpace(label)))
	var b strings.Builder
	lastHyphen := true // swallow leading separators
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// SanitizeText trims the value and strips control characters. Submitted
// values pass through here before storage and mail-body rendering.
func SanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// IsEmail reports whether s is a plain valid email address (no display
// name, no angle brackets).
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// SanitizeFileName strips path components and control characters from a
// client-supplied file name so it is safe to use on disk.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "file"
	}
	return name
}
