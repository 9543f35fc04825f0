package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidItemType(t *testing.T) {
	for _, valid := range []ItemType{ItemTypeProject, ItemTypeCharacter, ItemTypeLocation, ItemTypeScene, ItemTypeCulture} {
		assert.True(t, ValidItemType(valid), string(valid))
	}
	assert.False(t, ValidItemType("chapter"))
	assert.False(t, ValidItemType(""))
}

func TestContextItem_Key(t *testing.T) {
	item := ContextItem{Type: ItemTypeCharacter, ID: "ch-1"}
	assert.Equal(t, "character:ch-1", item.Key())
}

func TestContextItem_MetadataRoundTrip(t *testing.T) {
	// 缓存场景：序列化再反序列化后元数据还原为具体类型
	items := []ContextItem{
		{Type: ItemTypeProject, ID: "p-1", Title: "The Salt Road", Metadata: ProjectMetadata{Genre: "fantasy", TargetAudience: "adult"}},
		{Type: ItemTypeCharacter, ID: "ch-1", Title: "Mira", Metadata: CharacterMetadata{Role: "protagonist", RelationshipCount: 2}},
		{Type: ItemTypeLocation, ID: "loc-1", Title: "Vel Harbor", Metadata: LocationMetadata{Kind: "port city"}},
		{Type: ItemTypeScene, ID: "sc-1", Title: "Night Crossing", Metadata: SceneMetadata{ChapterID: "chap-3", Sequence: 7}},
		{Type: ItemTypeCulture, ID: "cul-1", Title: "Velan Guilds", Metadata: CultureMetadata{Language: "Low Velan"}},
	}

	raw, err := json.Marshal(items)
	require.NoError(t, err)

	var decoded []ContextItem
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, len(items))

	assert.Equal(t, ProjectMetadata{Genre: "fantasy", TargetAudience: "adult"}, decoded[0].Metadata)
	assert.Equal(t, CharacterMetadata{Role: "protagonist", RelationshipCount: 2}, decoded[1].Metadata)
	assert.Equal(t, LocationMetadata{Kind: "port city"}, decoded[2].Metadata)
	assert.Equal(t, SceneMetadata{ChapterID: "chap-3", Sequence: 7}, decoded[3].Metadata)
	assert.Equal(t, CultureMetadata{Language: "Low Velan"}, decoded[4].Metadata)
}

func TestContextItem_UnmarshalWithoutMetadata(t *testing.T) {
	var item ContextItem
	require.NoError(t, json.Unmarshal([]byte(`{"type":"scene","id":"sc-1","title":"x","content":"y","estimated_tokens":3}`), &item))
	assert.Nil(t, item.Metadata)
	assert.Equal(t, 3, item.EstimatedTokens)
}

func TestContextItem_EmbeddingNotSerialized(t *testing.T) {
	item := ContextItem{Type: ItemTypeScene, ID: "sc-1", Embedding: []float32{0.1, 0.2}}
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "0.1")
}

func TestValidIntent(t *testing.T) {
	for _, valid := range []GenerationIntent{
		IntentGenerateScene, IntentContinueScene, IntentImproveDialogue,
		IntentDescribeSetting, IntentDevelopCharacter, IntentBrainstorm,
	} {
		assert.True(t, ValidIntent(valid), string(valid))
	}
	assert.False(t, ValidIntent("compose_symphony"))
	assert.False(t, ValidIntent(""))
}

func TestProject_IsAccessibleBy(t *testing.T) {
	p := &Project{OwnerID: "u-1", CollaboratorIDs: []string{"u-2", "u-3"}}
	assert.True(t, p.IsAccessibleBy("u-1"))
	assert.True(t, p.IsAccessibleBy("u-2"))
	assert.False(t, p.IsAccessibleBy("u-9"))
}
