package matching

import (
	"regexp"
	"strings"

	"github.com/richat-partners/staffing-api/internal/taxonomy"
	"github.com/richat-partners/staffing-api/internal/textnorm"
)

const (
	substringFactor = 0.8
	baseFactor      = 0.9
	jaccardFactor   = 0.6
)

var versionToken = regexp.MustCompile(`^v?\d+(\.\d+)*[a-z]?$`)

// Similarity compares two skill names and returns a value in [0,1].
// Exact (after separator folding) is 1; containment is 0.8 scaled by the length ratio;
// equal names once version numbers are dropped is 0.9; otherwise 0.6 times the token Jaccard.
// The best applicable rule wins.
func Similarity(a, b string) float64 {
	la := textnorm.CollapseSpaces(textnorm.Lower(a))
	lb := textnorm.CollapseSpaces(textnorm.Lower(b))
	if la == "" || lb == "" {
		return 0
	}
	ka, kb := taxonomy.Key(la), taxonomy.Key(lb)
	if la == lb || (ka != "" && ka == kb) {
		return 1
	}

	best := 0.0
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		shorter, longer := len(la), len(lb)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		best = substringFactor * float64(shorter) / float64(longer)
	}

	ba, bb := baseName(la), baseName(lb)
	if ba != "" && ba == bb && baseFactor > best {
		best = baseFactor
	}

	if j := jaccard(tokens(la), tokens(lb)); jaccardFactor*j > best {
		best = jaccardFactor * j
	}
	return best
}

// baseName drops version tokens such as "3", "v2" or "11.2"
func baseName(s string) string {
	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(s) {
		if !versionToken.MatchString(tok) {
			kept = append(kept, tok)
		}
	}
	return taxonomy.Key(strings.Join(kept, " "))
}

func tokens(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == ',' || r == '(' || r == ')'
	}) {
		out[tok] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
