package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"worldbest-ai-api/internal/domain/entity"
)

func TestFormatCharacter(t *testing.T) {
	c := &entity.Character{
		Name:        "Mira",
		Aliases:     []string{"The Gray Hand", "Mira of Vel"},
		Role:        "protagonist",
		Appearance:  "Scarred hands, storm-gray eyes.",
		Personality: "Wry, guarded, fiercely loyal.",
		Backstory:   "Raised in the salt quarries of Vel.",
		Relationships: []entity.Relationship{
			{CharacterID: "ch-2", Name: "Tomas", Kind: "brother", Description: "estranged"},
			{CharacterID: "ch-3", Kind: "rival"},
		},
	}

	t.Run("全量渲染段落顺序固定", func(t *testing.T) {
		got := FormatCharacter(c, nil)
		assert.Equal(t,
			"Aliases: The Gray Hand, Mira of Vel\n"+
				"Role: protagonist\n"+
				"Appearance: Scarred hands, storm-gray eyes.\n"+
				"Personality: Wry, guarded, fiercely loyal.\n"+
				"Backstory: Raised in the salt quarries of Vel.\n"+
				"Relationships: Tomas (brother): estranged; ch-3 (rival)",
			got)
	})

	t.Run("字段过滤只保留指定段落", func(t *testing.T) {
		got := FormatCharacter(c, []string{"personality", "backstory"})
		assert.Equal(t,
			"Personality: Wry, guarded, fiercely loyal.\n"+
				"Backstory: Raised in the salt quarries of Vel.",
			got)
	})

	t.Run("字段名大小写与空白不敏感", func(t *testing.T) {
		got := FormatCharacter(c, []string{" Personality ", "BACKSTORY"})
		assert.Contains(t, got, "Personality:")
		assert.Contains(t, got, "Backstory:")
		assert.NotContains(t, got, "Appearance:")
	})

	t.Run("空段落自动省略", func(t *testing.T) {
		bare := &entity.Character{Name: "Ghost", Role: "extra"}
		assert.Equal(t, "Role: extra", FormatCharacter(bare, nil))
	})
}

func TestFormatProject(t *testing.T) {
	p := &entity.Project{
		Title:          "The Salt Road",
		Genre:          "fantasy",
		Synopsis:       "A smuggler inherits a dying god.",
		TimePeriod:     "bronze age",
		TargetAudience: "adult",
		StyleProfile: &entity.StyleProfile{
			Tone:          "melancholic",
			POV:           "third limited",
			Tense:         "past",
			Influences:    []string{"Le Guin", "Kay"},
			AvoidedTropes: []string{"chosen one"},
		},
	}
	got := FormatProject(p)
	assert.Contains(t, got, "Title: The Salt Road")
	assert.Contains(t, got, "Genre: fantasy")
	assert.Contains(t, got, "Tone: melancholic")
	assert.Contains(t, got, "Influences: Le Guin, Kay")
	assert.Contains(t, got, "Avoided tropes: chosen one")
}

func TestFormatLocation(t *testing.T) {
	l := &entity.Location{
		Name:         "Vel Harbor",
		Kind:         "port city",
		Description:  "Brine and rust everywhere.",
		Atmosphere:   "uneasy",
		Significance: "last neutral port",
	}
	assert.Equal(t,
		"Kind: port city\nDescription: Brine and rust everywhere.\nAtmosphere: uneasy\nSignificance: last neutral port",
		FormatLocation(l, nil))
	assert.Equal(t, "Atmosphere: uneasy", FormatLocation(l, []string{"atmosphere"}))
}

func TestFormatScene(t *testing.T) {
	s := &entity.Scene{
		Title:   "Night Crossing",
		Summary: "Mira crosses the strait.",
		Content: "The water was black glass.",
	}
	assert.Equal(t,
		"Summary: Mira crosses the strait.\nContent: The water was black glass.",
		FormatScene(s, nil))
	assert.Equal(t, "Summary: Mira crosses the strait.", FormatScene(s, []string{"summary"}))
}

func TestFormatCulture(t *testing.T) {
	c := &entity.Culture{
		Name:        "Velan Guilds",
		Values:      "thrift, secrecy",
		Customs:     "salt oaths",
		Language:    "Low Velan",
		SocialNorms: "debts bind families",
		History:     "founded after the flood",
	}
	got := FormatCulture(c, nil)
	assert.Equal(t,
		"Values: thrift, secrecy\nCustoms: salt oaths\nLanguage: Low Velan\nSocial norms: debts bind families\nHistory: founded after the flood",
		got)
}
