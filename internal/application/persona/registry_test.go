package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldbest-ai-api/internal/domain/entity"
	apperrors "worldbest-ai-api/pkg/errors"
)

func TestRegistry_GetCaseInsensitive(t *testing.T) {
	r := Default()

	lower, err := r.Get("muse")
	require.NoError(t, err)
	upper, err := r.Get("MUSE")
	require.NoError(t, err)
	mixed, err := r.Get("Muse")
	require.NoError(t, err)

	// 大小写变体解析到同一份配置
	assert.Same(t, lower, upper)
	assert.Same(t, lower, mixed)
	assert.Equal(t, "muse", lower.Name)
}

func TestRegistry_UnknownPersona(t *testing.T) {
	r := Default()

	_, err := r.Get("ghostwriter")
	require.Error(t, err)
	assert.True(t, apperrors.ErrPersonaNotFound.Is(err))
}

func TestDefault_BuiltinPersonas(t *testing.T) {
	r := Default()

	// Names 按字典序返回，输出在进程间稳定
	assert.Equal(t, []string{"coach", "editor", "muse"}, r.Names())

	muse, err := r.Get("muse")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, muse.Temperature, 0.001)
	assert.Equal(t, 2048, muse.MaxTokens)
	assert.NotEmpty(t, muse.SystemPrompt)
	assert.NotEmpty(t, muse.PreferredProviders)
	// muse 优先补充角色
	require.NotEmpty(t, muse.ContextPriority)
	assert.Equal(t, entity.ItemTypeCharacter, muse.ContextPriority[0])

	editor, err := r.Get("editor")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, editor.Temperature, 0.001)
	// editor 优先补充场景
	require.NotEmpty(t, editor.ContextPriority)
	assert.Equal(t, entity.ItemTypeScene, editor.ContextPriority[0])

	coach, err := r.Get("coach")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, coach.Temperature, 0.001)
}
