package textnorm_test

import (
	"testing"
	"time"

	"github.com/richat-partners/staffing-api/internal/textnorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText_RepairsMojibake(t *testing.T) {
	assert.Equal(t, "Ingénieur réseau", textnorm.NormalizeText("IngÃ©nieur rÃ©seau"))
}

func TestNormalizeText_KeepsCleanText(t *testing.T) {
	in := "Ingénieur\tréseau\nNouakchott"
	assert.Equal(t, in, textnorm.NormalizeText(in))
}

func TestNormalizeText_EscapesControlCharacters(t *testing.T) {
	assert.Equal(t, "a&#7;b", textnorm.NormalizeText("a\x07b"))
}

func TestNormalizeText_ComposesToNFC(t *testing.T) {
	decomposed := "e\u0301"
	assert.Equal(t, "\u00e9", textnorm.NormalizeText(decomposed))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "expérience", textnorm.Lower("EXPÉRIENCE"))
	assert.Equal(t, "experience", textnorm.Fold("EXPÉRIENCE"))
	assert.Equal(t, "competences", textnorm.Fold("Compétences"))
	assert.Equal(t, "Emilie Ould Cheikh", textnorm.Unaccent("Émilie Ould Cheïkh"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Jean-Pierre Ould Ahmed", textnorm.TitleCase("JEAN-PIERRE OULD AHMED"))
}

func TestIsUpper(t *testing.T) {
	assert.True(t, textnorm.IsUpper("MOHAMED SALEM"))
	assert.False(t, textnorm.IsUpper("Mohamed Salem"))
	assert.False(t, textnorm.IsUpper("2024 - 2025"))
}

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"mauritanian with 00222 prefix", "00222 31 34 61 21", "31 34 61 21", true},
		{"international plus form kept", "+22231346121", "+22231346121", true},
		{"bare 222 prefix", "22231346121", "31 34 61 21", true},
		{"local eight digits", "31346121", "31 34 61 21", true},
		{"local with separators", "31-34-61-21", "31 34 61 21", true},
		{"other international prefix", "0033612345678", "+33612345678", true},
		{"too short", "12345", "", false},
		{"letters only", "n/a", "", false},
		{"empty", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := textnorm.CleanPhone(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"15/03/2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2025-03-15", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15-03-2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15.03.2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"1er janvier 2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"12 décembre 2024", time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)},
		{"3 févr. 2025", time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"15 January 2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"January 15, 2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := textnorm.ParseDate(tt.in)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestParseDate_RejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "31 février 2025", "32/01/2025", "bientôt", "15 brumaire 2025"} {
		assert.Nil(t, textnorm.ParseDate(in), in)
	}
}
