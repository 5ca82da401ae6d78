package taxonomy_test

import (
	"testing"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillsFor_ReturnsOrderedCopy(t *testing.T) {
	skills := taxonomy.SkillsFor(domain.DomainDigital)
	require.NotEmpty(t, skills)
	assert.Equal(t, "Python", skills[0])

	skills[0] = "mutated"
	assert.Equal(t, "Python", taxonomy.SkillsFor(domain.DomainDigital)[0])
}

func TestAllSkills_CoversEveryDomain(t *testing.T) {
	all := taxonomy.AllSkills()
	for _, d := range domain.Domains() {
		assert.NotEmpty(t, all[d], "domain %s should have skills", d)
	}
}

func TestKey_FoldsSeparatorsAndCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Node.js", "nodejs"},
		{"node js", "nodejs"},
		{"NODE-JS", "nodejs"},
		{"ci/cd", "cicd"},
		{"Spring_Boot", "springboot"},
		{"Cybersécurité", "cybersécurité"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, taxonomy.Key(tt.in))
		})
	}
}

func TestIsKnown(t *testing.T) {
	tests := []struct {
		skill string
		known bool
	}{
		{"python", true},
		{"Vue JS", true},
		{"power-bi", true},
		{"sql", true},
		{"AWS", true},
		{"go", false},
		{"fr", false},
		{"de", false},
		{"cobol", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			assert.Equal(t, tt.known, taxonomy.IsKnown(tt.skill))
		})
	}
}

func TestCanonical_ReturnsCatalogSpelling(t *testing.T) {
	name, ok := taxonomy.Canonical("postgre sql")
	require.True(t, ok)
	assert.Equal(t, "PostgreSQL", name)
}

func TestDomainOf(t *testing.T) {
	d, ok := taxonomy.DomainOf("IFRS")
	require.True(t, ok)
	assert.Equal(t, domain.DomainFinance, d)

	d, ok = taxonomy.DomainOf("photovoltaïque")
	require.True(t, ok)
	assert.Equal(t, domain.DomainEnergy, d)

	_, ok = taxonomy.DomainOf("Leadership")
	assert.False(t, ok, "soft skills have no domain")
}

func TestAdmissible_ShortTokens(t *testing.T) {
	assert.True(t, taxonomy.Admissible("sql"))
	assert.False(t, taxonomy.Admissible("abc"))
	assert.False(t, taxonomy.Admissible("the"))
	assert.True(t, taxonomy.Admissible("django"))
}
