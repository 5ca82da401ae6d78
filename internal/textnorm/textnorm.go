// Package textnorm holds the language-aware text helpers shared by CV extraction and tender ingestion.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// mojibakeMarkers are sequences produced when UTF-8 bytes are decoded as Latin-1 or CP1252
var mojibakeMarkers = []string{"Ã", "Â", "â€", "Ø", "Ù"}

// NormalizeText repairs mojibake, composes to NFC and HTML-escapes control characters.
// Tabs and line breaks are kept.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	s = repairMojibake(s)
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			fmt.Fprintf(&b, "&#%d;", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func repairMojibake(s string) string {
	before := mojibakeScore(s)
	if before == 0 {
		return s
	}
	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		raw, err := cm.NewEncoder().String(s)
		if err != nil || !utf8.ValidString(raw) {
			continue
		}
		if mojibakeScore(raw) < before {
			return raw
		}
	}
	return s
}

func mojibakeScore(s string) int {
	n := 0
	for _, m := range mojibakeMarkers {
		n += strings.Count(s, m)
	}
	return n
}

// Lower lowercases s and keeps diacritics
func Lower(s string) string {
	return strings.ToLower(s)
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips diacritics. Use it for keyword matching only, never for stored text.
func Fold(s string) string {
	return Unaccent(strings.ToLower(s))
}

// Unaccent strips diacritics and keeps case: "Émilie" becomes "Emilie"
func Unaccent(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseSpaces trims s and replaces every whitespace run with one space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase converts "JEAN-PIERRE OULD AHMED" to "Jean-Pierre Ould Ahmed"
func TitleCase(s string) string {
	return cases.Title(language.French).String(strings.ToLower(s))
}

// IsUpper reports whether every letter of s is upper-case and s has at least one letter
func IsUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 0
}
