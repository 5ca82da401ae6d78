// Package skillminer finds taxonomy skills in free text and infers the dominant business domain.
package skillminer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/taxonomy"
	"github.com/richat-partners/staffing-api/internal/textnorm"
)

const (
	contextWindow = 100
	exactWeight   = 1.0
	variantWeight = 0.8
)

// technicalContext are stems whose presence near a short skill confirms a technical reading
var technicalContext = []string{
	"développ", "develop", "projet", "project", "framework", "compétence", "competence",
	"skill", "stack", "technolog", "outil", "tool", "langage", "programm", "logiciel",
	"software", "ingénieur", "engineer", "maîtrise", "maitrise", "expérience", "experience",
	"certifi", "environnement", "conception", "architecture", "plateforme", "platform",
	"base de données", "database", "application", "système", "system", "expertise",
}

var separators = []string{" ", "-", ".", "_", "/", ""}

// Result is the outcome of mining one text
type Result struct {
	// Skills holds the canonical names found, sorted
	Skills        []string
	PrimaryDomain domain.Domain
	DomainScores  map[domain.Domain]float64
	// Confidence is the accumulated hit weight of the primary domain
	Confidence float64
}

// Mine scans text for every catalog skill. The primary domain is the domain with the
// highest accumulated hit weight; when nothing matches it falls back to hint, then Digital.
func Mine(text string, hint *domain.Domain) Result {
	haystack := textnorm.CollapseSpaces(textnorm.Lower(text))

	res := Result{DomainScores: make(map[domain.Domain]float64, len(domain.Domains()))}
	for _, d := range domain.Domains() {
		res.DomainScores[d] = 0
	}

	seen := make(map[string]bool)
	consider := func(skill string, d domain.Domain, soft bool) {
		key := taxonomy.Key(skill)
		if seen[key] || !taxonomy.Admissible(key) {
			return
		}
		weight, ok := detect(haystack, skill, key)
		if !ok {
			return
		}
		seen[key] = true
		res.Skills = append(res.Skills, skill)
		if !soft {
			res.DomainScores[d] += weight
		}
	}

	for _, d := range domain.Domains() {
		for _, skill := range taxonomy.SkillsFor(d) {
			consider(skill, d, false)
		}
	}
	for _, skill := range taxonomy.SoftSkills() {
		consider(skill, "", true)
	}

	sort.Strings(res.Skills)

	best := 0.0
	for _, d := range domain.Domains() {
		if s := res.DomainScores[d]; s > best {
			best = s
			res.PrimaryDomain = d
		}
	}
	res.Confidence = best
	if best == 0 {
		res.PrimaryDomain = domain.DomainDigital
		if hint != nil && hint.IsValid() {
			res.PrimaryDomain = *hint
		}
	}
	return res
}

// Skills is a shortcut returning only the mined skill names
func Skills(text string) []string {
	return Mine(text, nil).Skills
}

// detect returns the hit weight of skill in haystack
func detect(haystack, skill, key string) (float64, bool) {
	needle := strings.ToLower(skill)
	strict := utf8.RuneCountInString(needle) <= 3 || taxonomy.IsShortAtom(key)
	if pos := indexWord(haystack, needle, strict); pos >= 0 {
		return exactWeight, validContext(haystack, pos, len(needle), key)
	}
	if utf8.RuneCountInString(needle) <= 3 {
		return 0, false
	}
	for _, v := range variants(needle) {
		if pos := indexWord(haystack, v, strict); pos >= 0 {
			return variantWeight, validContext(haystack, pos, len(v), key)
		}
	}
	return 0, false
}

func validContext(haystack string, pos, length int, key string) bool {
	if utf8.RuneCountInString(key) > 5 || taxonomy.IsShortAtom(key) {
		return true
	}
	start := pos - contextWindow
	if start < 0 {
		start = 0
	}
	end := pos + length + contextWindow
	if end > len(haystack) {
		end = len(haystack)
	}
	window := haystack[start:end]
	for _, kw := range technicalContext {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

// variants re-joins the parts of a multi-part skill with every separator
func variants(needle string) []string {
	parts := strings.FieldsFunc(needle, func(r rune) bool {
		return r == ' ' || r == '-' || r == '.' || r == '_' || r == '/'
	})
	if len(parts) < 2 {
		return nil
	}
	out := make([]string, 0, len(separators))
	for _, sep := range separators {
		v := strings.Join(parts, sep)
		if v != needle {
			out = append(out, v)
		}
	}
	return out
}

// indexWord returns the first occurrence of needle in s that is not glued to a letter.
// A strict match must not touch a digit either; otherwise a trailing version number such
// as "python3" still counts.
func indexWord(s, needle string, strict bool) int {
	if needle == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(s[offset:], needle)
		if i < 0 {
			return -1
		}
		pos := offset + i
		end := pos + len(needle)
		if boundaryBefore(s, pos, strict) && boundaryAfter(s, end, strict) {
			return pos
		}
		_, size := utf8.DecodeRuneInString(s[pos:])
		offset = pos + size
	}
}

func boundaryBefore(s string, pos int, strict bool) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return !isWordRune(r, strict)
}

func boundaryAfter(s string, end int, strict bool) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !isWordRune(r, strict)
}

func isWordRune(r rune, strict bool) bool {
	return unicode.IsLetter(r) || (strict && unicode.IsDigit(r))
}
