package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldbest-ai-api/internal/application/persona"
	"worldbest-ai-api/internal/domain/entity"
)

func TestSerializeContext(t *testing.T) {
	items := []entity.ContextItem{
		{Type: entity.ItemTypeProject, Title: "The Salt Road", Content: "Genre: fantasy"},
		{Type: entity.ItemTypeCharacter, Title: "Mira", Content: "Role: protagonist"},
	}
	got := SerializeContext(items)
	assert.Equal(t,
		"[project] The Salt Road\nGenre: fantasy\n\n[character] Mira\nRole: protagonist",
		got)
	assert.Empty(t, SerializeContext(nil))
}

func TestBuildSystemPrompt(t *testing.T) {
	cfg := &persona.Config{
		Name:                "muse",
		SystemPrompt:        "You are Muse.",
		SpecialInstructions: []string{"Never summarize.", "Stay in scene."},
	}
	items := []entity.ContextItem{
		{Type: entity.ItemTypeProject, Title: "The Salt Road", Content: "Genre: fantasy"},
	}

	got := BuildSystemPrompt(cfg, items)
	assert.Equal(t,
		"You are Muse.\n\nNever summarize.\nStay in scene.\n\n## Story context\n\n[project] The Salt Road\nGenre: fantasy",
		got)

	// 无上下文时省略 context 段落
	bare := BuildSystemPrompt(cfg, nil)
	assert.NotContains(t, bare, "## Story context")
}

func TestBuildUserPrompt(t *testing.T) {
	t.Run("每种意图都有任务指令", func(t *testing.T) {
		for _, intent := range []entity.GenerationIntent{
			entity.IntentGenerateScene,
			entity.IntentContinueScene,
			entity.IntentImproveDialogue,
			entity.IntentDescribeSetting,
			entity.IntentDevelopCharacter,
			entity.IntentBrainstorm,
		} {
			got := BuildUserPrompt(intent, &entity.GenerationParams{})
			require.NotEmpty(t, got, "intent %s", intent)
		}
	})

	t.Run("组合用户指令与档位提示", func(t *testing.T) {
		got := BuildUserPrompt(entity.IntentGenerateScene, &entity.GenerationParams{
			Instruction:    "Open with the storm.",
			Length:         "short",
			StyleIntensity: "pronounced",
		})
		assert.Contains(t, got, "Write a new scene")
		assert.Contains(t, got, "Open with the storm.")
		assert.Contains(t, got, "150-300 words")
		assert.Contains(t, got, "Lean strongly")
	})

	t.Run("未知档位静默忽略", func(t *testing.T) {
		got := BuildUserPrompt(entity.IntentBrainstorm, &entity.GenerationParams{Length: "epic"})
		assert.NotContains(t, got, "words")
	})
}
