package textnorm

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	mauritaniaCode    = "222"
	localNumberDigits = 8
)

// CleanPhone normalizes a phone number.
//
// Mauritanian numbers written with the "00222" prefix, or as a bare "222" followed by eight
// digits, are reduced to the local form "NN NN NN NN". Numbers written with a leading "+"
// or another "00" international prefix are kept as E.164. Anything else must have exactly
// eight digits. The second return value is false when the input cannot be a phone number.
func CleanPhone(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	international := strings.HasPrefix(trimmed, "+")
	digits := onlyDigits(trimmed)

	switch {
	case international:
		return formatInternational(digits)
	case strings.HasPrefix(digits, "00"+mauritaniaCode) && len(digits) == 5+localNumberDigits:
		digits = digits[5:]
	case strings.HasPrefix(digits, "00"):
		return formatInternational(digits[2:])
	case strings.HasPrefix(digits, mauritaniaCode) && len(digits) == 3+localNumberDigits:
		digits = digits[3:]
	}

	if len(digits) != localNumberDigits {
		return "", false
	}
	return digits[0:2] + " " + digits[2:4] + " " + digits[4:6] + " " + digits[6:8], true
}

func formatInternational(digits string) (string, bool) {
	if len(digits) < 8 || len(digits) > 15 {
		return "", false
	}
	num, err := phonenumbers.Parse("+"+digits, "")
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
