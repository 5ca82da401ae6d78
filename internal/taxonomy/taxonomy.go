// Package taxonomy is the read-only skill catalog shared by CV mining, tender analysis and matching.
package taxonomy

import (
	"strings"
	"unicode/utf8"

	"github.com/richat-partners/staffing-api/internal/domain"
)

var domainSkills = map[domain.Domain][]string{
	domain.DomainDigital: {
		"Python", "Django", "Flask", "FastAPI", "Java", "Spring Boot", "JavaScript", "TypeScript",
		"React", "Angular", "Vue.js", "Node.js", "PHP", "Laravel", "Symfony", "SQL", "PostgreSQL",
		"MySQL", "MongoDB", "Oracle", "Docker", "Kubernetes", "AWS", "Azure", "GCP", "DevOps",
		"CI/CD", "Git", "Linux", "API", "REST", "Microservices", "Machine Learning", "Deep Learning",
		"Data Science", "Big Data", "Spark", "Hadoop", "ETL", "Power BI", "Tableau", "Cybersécurité",
		"Réseaux informatiques", "HTML", "CSS", "XML", "Flutter", "Android", "Cloud Computing",
		"Transformation digitale", "Systèmes d'information",
	},
	domain.DomainFinance: {
		"Comptabilité", "Audit", "Contrôle de gestion", "Analyse financière", "Finance d'entreprise",
		"IFRS", "SYSCOHADA", "Fiscalité", "Trésorerie", "Gestion des risques", "Microfinance",
		"Banque", "Assurance", "SAP", "ERP", "Sage", "Budget", "Reporting financier", "Consolidation",
		"Modélisation financière", "Passation de marchés", "Marchés publics", "Conformité",
		"Due diligence", "Finance islamique", "Gestion de portefeuille", "Évaluation de projets",
	},
	domain.DomainEnergy: {
		"Énergie renouvelable", "Solaire", "Photovoltaïque", "Éolien", "Hydrogène", "Pétrole", "Gaz",
		"Oil & Gas", "Électricité", "Réseaux électriques", "Haute tension", "Efficacité énergétique",
		"Transition énergétique", "Smart Grid", "Hydroélectricité", "Biomasse", "Stockage d'énergie",
		"Forage", "Mines", "HSE", "Audit énergétique", "Distribution électrique",
	},
	domain.DomainIndustry: {
		"Génie civil", "BTP", "BIM", "AutoCAD", "Revit", "Maintenance industrielle", "Lean Manufacturing",
		"Six Sigma", "Supply Chain", "Logistique", "Qualité", "ISO 9001", "Production", "Mécanique",
		"Automatisme", "IoT", "SCADA", "Hydraulique", "Topographie", "Infrastructure", "Métallurgie",
		"Génie électrique", "Électrotechnique",
	},
}

var softSkills = []string{
	"Gestion de projet", "Leadership", "Communication", "Travail en équipe", "Management",
	"Négociation", "Coordination", "Planification", "Résolution de problèmes",
	"Agile", "Scrum", "Prince2", "PMP",
}

// shortAtoms are technical tokens of three characters or fewer that are still meaningful
var shortAtoms = map[string]bool{
	"sql": true, "php": true, "css": true, "xml": true, "api": true, "aws": true, "gcp": true,
	"erp": true, "sap": true, "bim": true, "iot": true, "git": true, "etl": true, "hse": true,
	"gaz": true, "btp": true, "pmp": true,
}

// blacklist holds frequent false positives: stop words, country codes and generic acronyms
var blacklist = map[string]bool{
	"de": true, "la": true, "le": true, "les": true, "et": true, "en": true, "du": true, "des": true,
	"un": true, "une": true, "the": true, "and": true, "for": true, "of": true, "to": true, "in": true,
	"fr": true, "us": true, "uk": true, "ma": true, "mr": true, "sn": true, "ml": true, "dz": true,
	"tn": true, "it": true, "rh": true, "cv": true, "pdf": true, "doc": true, "etc": true, "ong": true,
	"nb": true, "tel": true, "bp": true,
}

type entry struct {
	canonical string
	domain    domain.Domain
	soft      bool
}

var index = buildIndex()

func buildIndex() map[string]entry {
	idx := make(map[string]entry)
	for _, d := range domain.Domains() {
		for _, s := range domainSkills[d] {
			k := Key(s)
			if _, exists := idx[k]; !exists {
				idx[k] = entry{canonical: s, domain: d}
			}
		}
	}
	for _, s := range softSkills {
		k := Key(s)
		if _, exists := idx[k]; !exists {
			idx[k] = entry{canonical: s, soft: true}
		}
	}
	return idx
}

// Key folds a skill name for case-insensitive comparison.
// Whitespace, hyphens, dots, underscores and slashes are removed; diacritics are kept.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '.', '_', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SkillsFor returns the canonical skills of a domain in catalog order
func SkillsFor(d domain.Domain) []string {
	skills := domainSkills[d]
	out := make([]string, len(skills))
	copy(out, skills)
	return out
}

// AllSkills returns a copy of the full domain catalog
func AllSkills() map[domain.Domain][]string {
	out := make(map[domain.Domain][]string, len(domainSkills))
	for _, d := range domain.Domains() {
		out[d] = SkillsFor(d)
	}
	return out
}

// SoftSkills returns the cross-domain general skills
func SoftSkills() []string {
	out := make([]string, len(softSkills))
	copy(out, softSkills)
	return out
}

// IsShortAtom reports whether key is a whitelisted short technical token
func IsShortAtom(key string) bool {
	return shortAtoms[key]
}

// IsBlacklisted reports whether key is a known false positive
func IsBlacklisted(key string) bool {
	return blacklist[key]
}

// Admissible reports whether a folded key may name a skill at all
func Admissible(key string) bool {
	if key == "" || blacklist[key] {
		return false
	}
	if utf8.RuneCountInString(key) <= 3 && !shortAtoms[key] {
		return false
	}
	return true
}

// IsKnown reports whether skill names a catalog entry
func IsKnown(skill string) bool {
	_, ok := Canonical(skill)
	return ok
}

// Canonical returns the catalog spelling of skill
func Canonical(skill string) (string, bool) {
	k := Key(skill)
	if !Admissible(k) {
		return "", false
	}
	e, ok := index[k]
	if !ok {
		return "", false
	}
	return e.canonical, true
}

// DomainOf returns the domain a skill belongs to. Soft skills have no domain.
func DomainOf(skill string) (domain.Domain, bool) {
	e, ok := index[Key(skill)]
	if !ok || e.soft {
		return "", false
	}
	return e.domain, true
}
