package cvparser

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/richat-partners/staffing-api/internal/skillminer"
	"github.com/richat-partners/staffing-api/internal/textnorm"
)

const identityLines = 20

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionProfile
	sectionEducation
	sectionExperience
	sectionSkills
	sectionLanguages
	sectionCertifications
	sectionProjects
)

// sectionHeaders are folded (lower-case, no diacritics) header spellings
var sectionHeaders = map[sectionKind][]string{
	sectionProfile: {
		"profil", "profil professionnel", "profile", "resume", "summary", "a propos", "about me", "objectif",
		"professional summary",
	},
	sectionEducation: {
		"formation", "formations", "formation academique", "education", "etudes", "diplomes",
		"diplomes et formations", "parcours academique", "cursus", "academic background", "qualifications",
	},
	sectionExperience: {
		"experience", "experiences", "experience professionnelle", "experiences professionnelles",
		"parcours professionnel", "professional experience", "work experience", "employment history",
		"emplois", "career",
	},
	sectionSkills: {
		"competences", "competences techniques", "competences cles", "skills", "technical skills",
		"savoir-faire", "outils", "outils et technologies", "expertise", "domaines d'expertise",
	},
	sectionLanguages: {"langues", "langue", "languages", "language", "competences linguistiques"},
	sectionCertifications: {
		"certifications", "certification", "certificats", "certificates", "certifications professionnelles",
	},
	sectionProjects: {"projets", "projects", "realisations", "projets realises", "key projects", "references"},
}

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern    = regexp.MustCompile(`(?:\+|00)?\d[\d\s.\-()]{6,}\d`)
	datePattern     = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}\b|\b\d{1,2}(?:er)?\s+[a-z]+\.?\s+\d{4}\b`)
	birthKeywords   = []string{"ne le", "nee le", "date de naissance", "naissance", "born", "date of birth", "dob"}
	bulletTrimset   = " \t•·-–—*►▪●○◦>:|,;"
	yearRange       = regexp.MustCompile(`^(?:19|20)\d{2}\s*[-–/.]?\s*(?:19|20)\d{2}$`)
	periodSeparator = `\s*(?:-|–|—|/|a|au|to|until|jusqu'a)\s*`
	monthWord       = `(?:(?:\d{1,2}/)|(?:janvier|janv|jan|fevrier|fevr|fev|feb|mars|mar|avril|avr|apr|mai|may|juin|june|jun|` +
		`juillet|juil|july|jul|aout|august|aug|septembre|sept|sep|september|octobre|oct|october|novembre|nov|november|` +
		`decembre|dec|december|january|february|march|april)\.?\s+)?`
	periodPattern   = regexp.MustCompile(
		`\b` + monthWord + `((?:19|20)\d{2})(?:` + periodSeparator + monthWord +
			`((?:19|20)\d{2}|present|actuel|aujourd'hui|a ce jour|now|current|en cours|today))?\b`)
)

// headerWords disqualify a line as a person's name
var headerWords = []string{
	"curriculum", "vitae", "cv", "resume", "richat", "partners", "profil", "profile", "contact", "adresse",
	"address", "email", "e-mail", "tel", "telephone", "phone", "mobile", "nationalite", "nationality",
	"ingenieur", "engineer", "consultant", "consultante", "developpeur", "developer", "manager", "chef",
	"directeur", "director", "expert", "experte", "analyste", "analyst", "comptable", "technicien",
	"architecte", "architect", "responsable", "charge", "chargee", "specialiste", "specialist", "auditeur",
	"formateur", "coordinateur", "assistant", "gestionnaire", "senior", "junior", "stagiaire",
	"nouakchott", "mauritanie", "donnees", "personnelles", "informations", "personal", "details",
	"information",
}

// titleWords mark the professional title line near the top of a CV
var titleWords = []string{
	"ingenieur", "engineer", "consultant", "consultante", "developpeur", "developer", "manager",
	"chef de projet", "directeur", "director", "expert", "experte", "analyste", "analyst", "comptable",
	"architecte", "architect", "responsable", "specialiste", "specialist", "auditeur", "data scientist",
	"economiste", "juriste", "gestionnaire",
}

// ParseText builds a ParsedCV from already extracted text. It is pure and deterministic.
func ParseText(text string) *ParsedCV {
	parsed := Empty()
	normalized := textnorm.NormalizeText(text)
	parsed.Text = normalized

	lines := splitLines(normalized)
	if len(lines) == 0 {
		return parsed
	}

	parsed.Identity = parseIdentity(lines)
	sections := splitSections(lines)

	parsed.Summary = strings.Join(sections[sectionProfile], " ")
	parsed.Education = parseEducation(sections[sectionEducation])
	parsed.Experience = parseExperience(sections[sectionExperience])
	parsed.Certifications = listItems(sections[sectionCertifications])
	parsed.Projects = listItems(sections[sectionProjects])

	full := skillminer.Mine(normalized, nil)
	parsed.PrimaryDomain = full.PrimaryDomain
	if skillsText := strings.Join(sections[sectionSkills], "\n"); skillsText != "" {
		parsed.Skills = skillminer.Skills(skillsText)
	}
	if len(parsed.Skills) == 0 {
		parsed.Skills = full.Skills
	}
	if parsed.Skills == nil {
		parsed.Skills = []string{}
	}

	langSource := sections[sectionLanguages]
	if len(langSource) == 0 {
		langSource = lines
	}
	parsed.Languages = parseLanguages(langSource)
	return parsed
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = textnorm.CollapseSpaces(strings.ReplaceAll(l, "\r", ""))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func parseIdentity(lines []string) Identity {
	var id Identity
	limit := len(lines)
	if limit > identityLines {
		limit = identityLines
	}
	head := lines[:limit]

	for _, line := range head {
		if id.Email == "" {
			id.Email = strings.ToLower(emailPattern.FindString(line))
		}
		if id.Phone == "" {
			for _, candidate := range phonePattern.FindAllString(emailPattern.ReplaceAllString(line, ""), -1) {
				if looksLikeDate(candidate) {
					continue
				}
				if phone, ok := textnorm.CleanPhone(candidate); ok {
					id.Phone = phone
					break
				}
			}
		}
	}

	id.DateOfBirth = findBirthDate(head)

	for _, line := range head {
		if id.Title == "" && containsAny(textnorm.Fold(line), titleWords) && len(strings.Fields(line)) <= 8 {
			id.Title = strings.Trim(line, bulletTrimset)
		}
	}

	for _, line := range head {
		if first, last, ok := nameFromLine(line); ok {
			id.FirstName, id.LastName = first, last
			break
		}
	}
	return id
}

func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	return datePattern.MatchString(textnorm.Fold(s)) || yearRange.MatchString(s)
}

func findBirthDate(head []string) *time.Time {
	for _, line := range head {
		folded := textnorm.Fold(line)
		if !containsAny(folded, birthKeywords) {
			continue
		}
		if m := datePattern.FindString(folded); m != "" {
			if d := textnorm.ParseDate(m); d != nil {
				return d
			}
		}
	}
	for _, line := range head {
		folded := textnorm.Fold(line)
		if strings.TrimSpace(datePattern.FindString(folded)) == strings.TrimSpace(folded) && folded != "" {
			if d := textnorm.ParseDate(folded); d != nil {
				return d
			}
		}
	}
	return nil
}

func nameFromLine(line string) (string, string, bool) {
	clean := strings.Trim(line, bulletTrimset)
	folded := textnorm.Fold(clean)
	if clean == "" || strings.Contains(clean, "@") || sectionOf(clean) != sectionNone {
		return "", "", false
	}
	for _, w := range strings.Fields(folded) {
		for _, hw := range headerWords {
			if strings.Trim(w, ".:,") == hw {
				return "", "", false
			}
		}
	}
	tokens := strings.Fields(clean)
	if len(tokens) < 2 || len(tokens) > 4 || len(skillminer.Skills(clean)) > 0 {
		return "", "", false
	}
	for _, tok := range tokens {
		if !isNameToken(tok) {
			return "", "", false
		}
	}
	if textnorm.IsUpper(clean) {
		tokens = strings.Fields(textnorm.TitleCase(clean))
	}
	return tokens[0], strings.Join(tokens[1:], " "), true
}

func isNameToken(tok string) bool {
	letters := 0
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == '-' || r == '\'' || r == '’' || r == '.':
		default:
			return false
		}
	}
	return letters > 0
}

// sectionOf returns the section a header line opens
func sectionOf(line string) sectionKind {
	folded := strings.Trim(textnorm.Fold(line), bulletTrimset+".")
	if folded == "" || len(strings.Fields(folded)) > 5 {
		return sectionNone
	}
	for kind := sectionProfile; kind <= sectionProjects; kind++ {
		for _, h := range sectionHeaders[kind] {
			if folded == h {
				return kind
			}
		}
	}
	return sectionNone
}

// isSectionBreak reports whether an unknown short all-caps line closes the current section
func isSectionBreak(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 4 || len([]rune(line)) < 4 || !textnorm.IsUpper(line) {
		return false
	}
	if periodPattern.MatchString(textnorm.Fold(line)) {
		return false
	}
	return len(skillminer.Skills(line)) == 0
}

func splitSections(lines []string) map[sectionKind][]string {
	sections := make(map[sectionKind][]string)
	current := sectionNone
	for _, line := range lines {
		if kind := sectionOf(line); kind != sectionNone {
			current = kind
			continue
		}
		if current != sectionNone && isSectionBreak(line) {
			current = sectionNone
			continue
		}
		if current != sectionNone {
			sections[current] = append(sections[current], line)
		}
	}
	return sections
}

// findPeriod locates a year range in line and returns it with the remaining text
func findPeriod(line string) (Period, string, bool) {
	folded, offsets := foldWithOffsets(line)
	loc := periodPattern.FindStringSubmatchIndex(folded)
	if loc == nil {
		return Period{}, "", false
	}
	p := Period{Start: atoi(folded[loc[2]:loc[3]])}
	if loc[4] >= 0 {
		end := folded[loc[4]:loc[5]]
		if end[0] >= '0' && end[0] <= '9' {
			p.End = atoi(end)
		} else {
			p.Current = true
		}
	}
	from, to := offsets[loc[0]], offsets[loc[1]]
	p.Raw = strings.TrimSpace(line[from:to])
	rest := textnorm.CollapseSpaces(line[:from] + " " + line[to:])
	return p, strings.Trim(rest, bulletTrimset+"()"), true
}

// foldWithOffsets folds line rune by rune. offsets maps every byte of the folded string,
// plus its end, to the byte offset of the original rune.
func foldWithOffsets(line string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(line)+1)
	for i, r := range line {
		f := textnorm.Fold(string(r))
		b.WriteString(f)
		for range len(f) {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(line))
	return b.String(), offsets
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

type rawEntry struct {
	period Period
	fields []string
	extra  []string
}

// groupEntries anchors entries on period lines. Lines right after a period fill the entry;
// lines collected before a period line with no text of its own become that entry's fields.
func groupEntries(lines []string) []rawEntry {
	var entries []rawEntry
	var pending []string
	for _, line := range lines {
		text := strings.Trim(line, bulletTrimset)
		if text == "" {
			continue
		}
		if p, rest, ok := findPeriod(text); ok {
			e := rawEntry{period: p}
			if rest != "" {
				e.fields = append(e.fields, rest)
			}
			switch {
			case len(pending) > 0 && rest == "":
				e.fields = append(e.fields, pending...)
			case len(pending) > 0 && len(entries) > 0:
				entries[len(entries)-1].extra = append(entries[len(entries)-1].extra, pending...)
			case len(pending) > 0:
				e.fields = append(pending, e.fields...)
			}
			pending = nil
			entries = append(entries, e)
			continue
		}
		if n := len(entries); n > 0 && len(entries[n-1].fields) < 2 {
			entries[n-1].fields = append(entries[n-1].fields, text)
			continue
		}
		pending = append(pending, text)
	}
	if len(pending) > 0 && len(entries) > 0 {
		entries[len(entries)-1].extra = append(entries[len(entries)-1].extra, pending...)
	}
	return entries
}

var (
	employerSeparators    = []string{" chez ", " at ", " @ ", " | ", " - ", " – "}
	institutionSeparators = []string{" - ", " – ", " | ", ", "}
)

// splitHead splits the first field around the first separator found. The remaining
// fields are returned as overflow.
func splitHead(fields, seps []string) (string, string, []string) {
	if len(fields) == 0 {
		return "", "", nil
	}
	for _, sep := range seps {
		if i := strings.Index(fields[0], sep); i > 0 {
			return strings.TrimSpace(fields[0][:i]), strings.TrimSpace(fields[0][i+len(sep):]), fields[1:]
		}
	}
	if len(fields) == 1 {
		return fields[0], "", nil
	}
	return fields[0], fields[1], fields[2:]
}

func parseExperience(lines []string) []ExperienceEntry {
	out := []ExperienceEntry{}
	for _, e := range groupEntries(lines) {
		role, employer, overflow := splitHead(e.fields, employerSeparators)
		desc := append(append([]string{}, overflow...), e.extra...)
		out = append(out, ExperienceEntry{
			Period:      e.period,
			Role:        role,
			Employer:    employer,
			Description: strings.Join(desc, " "),
		})
	}
	return out
}

func parseEducation(lines []string) []EducationEntry {
	out := []EducationEntry{}
	for _, e := range groupEntries(lines) {
		diploma, institution, _ := splitHead(e.fields, institutionSeparators)
		out = append(out, EducationEntry{Period: e.period, Diploma: diploma, Institution: institution})
	}
	return out
}

func listItems(lines []string) []string {
	out := []string{}
	for _, l := range lines {
		if item := strings.Trim(l, bulletTrimset); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// languages maps folded spellings to the display name
var languages = []struct {
	name      string
	spellings []string
}{
	{"Français", []string{"francais", "french"}},
	{"Anglais", []string{"anglais", "english"}},
	{"Arabe", []string{"arabe", "arabic"}},
	{"Espagnol", []string{"espagnol", "spanish"}},
	{"Allemand", []string{"allemand", "german"}},
	{"Italien", []string{"italien", "italian"}},
	{"Portugais", []string{"portugais", "portuguese"}},
	{"Chinois", []string{"chinois", "chinese", "mandarin"}},
	{"Russe", []string{"russe", "russian"}},
	{"Turc", []string{"turc", "turkish"}},
	{"Wolof", []string{"wolof"}},
	{"Pulaar", []string{"pulaar", "peul"}},
	{"Soninké", []string{"soninke"}},
	{"Hassaniya", []string{"hassaniya", "hassania"}},
}

var languageLevels = []struct {
	token string
	label string
}{
	{"langue maternelle", "Langue maternelle"},
	{"maternelle", "Langue maternelle"},
	{"natif", "Natif"},
	{"native", "Native"},
	{"bilingue", "Bilingue"},
	{"bilingual", "Bilingual"},
	{"courant", "Courant"},
	{"fluent", "Fluent"},
	{"avance", "Avancé"},
	{"advanced", "Advanced"},
	{"intermediaire", "Intermédiaire"},
	{"intermediate", "Intermediate"},
	{"debutant", "Débutant"},
	{"beginner", "Beginner"},
	{"notions", "Notions"},
	{"basic", "Basic"},
	{"c2", "C2"}, {"c1", "C1"}, {"b2", "B2"}, {"b1", "B1"}, {"a2", "A2"}, {"a1", "A1"},
}

const levelLookahead = 40

func parseLanguages(lines []string) []LanguageEntry {
	out := []LanguageEntry{}
	seen := make(map[string]bool)
	for _, line := range lines {
		folded := textnorm.Fold(line)
		for _, lang := range languages {
			if seen[lang.name] {
				continue
			}
			for _, sp := range lang.spellings {
				pos := indexWord(folded, sp)
				if pos < 0 {
					continue
				}
				seen[lang.name] = true
				out = append(out, LanguageEntry{Name: lang.name, Level: levelNear(folded, pos+len(sp))})
				break
			}
		}
	}
	return out
}

// levelNear looks for a proficiency token right after a language name
func levelNear(folded string, from int) string {
	end := from + levelLookahead
	if end > len(folded) {
		end = len(folded)
	}
	window := folded[from:end]
	best, bestPos := "", -1
	for _, lvl := range languageLevels {
		if pos := indexWord(window, lvl.token); pos >= 0 && (bestPos < 0 || pos < bestPos) {
			best, bestPos = lvl.label, pos
		}
	}
	return best
}

func indexWord(s, word string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			return -1
		}
		pos := offset + i
		end := pos + len(word)
		before := pos == 0 || !isAlnumByte(s[pos-1])
		after := end >= len(s) || !isAlnumByte(s[end])
		if before && after {
			return pos
		}
		offset = pos + 1
	}
}

func isAlnumByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if indexWord(s, w) >= 0 {
			return true
		}
	}
	return false
}
