package assembly

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldbest-ai-api/internal/domain/entity"
	apperrors "worldbest-ai-api/pkg/errors"
)

// ---- 仓储桩实现 ----

type stubProjectRepo struct {
	project *entity.Project
	err     error
}

func (s *stubProjectRepo) GetForUser(ctx context.Context, tenantID, projectID, userID string) (*entity.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.project, nil
}

type stubCharacterRepo struct {
	byID   map[string]*entity.Character
	recent []*entity.Character
	err    error
}

func (s *stubCharacterRepo) GetByID(ctx context.Context, tenantID, projectID, id string) (*entity.Character, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrEntityNotFound
	}
	return c, nil
}

func (s *stubCharacterRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Character, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

type stubLocationRepo struct {
	byID   map[string]*entity.Location
	recent []*entity.Location
}

func (s *stubLocationRepo) GetByID(ctx context.Context, tenantID, projectID, id string) (*entity.Location, error) {
	l, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrEntityNotFound
	}
	return l, nil
}

func (s *stubLocationRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Location, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

type stubSceneRepo struct {
	byID   map[string]*entity.Scene
	recent []*entity.Scene
}

func (s *stubSceneRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Scene, error) {
	sc, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrEntityNotFound
	}
	return sc, nil
}

func (s *stubSceneRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Scene, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

type stubCultureRepo struct {
	byID   map[string]*entity.Culture
	recent []*entity.Culture
}

func (s *stubCultureRepo) GetByID(ctx context.Context, tenantID, projectID, id string) (*entity.Culture, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrEntityNotFound
	}
	return c, nil
}

func (s *stubCultureRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Culture, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubVectorWriter struct {
	upserted []entity.ContextItem
	err      error
}

func (s *stubVectorWriter) UpsertContextItems(ctx context.Context, tenantID, projectID string, items []entity.ContextItem) error {
	s.upserted = append(s.upserted, items...)
	return s.err
}

// ---- 测试夹具 ----

func testProject() *entity.Project {
	return &entity.Project{
		ID:       "proj-1",
		TenantID: "t-1",
		OwnerID:  "u-1",
		Title:    "The Salt Road",
		Genre:    "fantasy",
		Synopsis: "A smuggler inherits a dying god.",
	}
}

func testCharacter(id, name, backstory string) *entity.Character {
	return &entity.Character{
		ID:        id,
		ProjectID: "proj-1",
		Name:      name,
		Role:      "protagonist",
		Backstory: backstory,
	}
}

func defaultPriority() []entity.ItemType {
	return []entity.ItemType{
		entity.ItemTypeCharacter,
		entity.ItemTypeLocation,
		entity.ItemTypeScene,
		entity.ItemTypeCulture,
	}
}

func newTestEngine(projects *stubProjectRepo, chars *stubCharacterRepo) *Engine {
	return NewEngine(
		projects,
		chars,
		&stubLocationRepo{},
		&stubSceneRepo{},
		&stubCultureRepo{},
		nil, nil, 2,
	)
}

// ---- 测试 ----

func TestBuildContext_SeedAlwaysIncluded(t *testing.T) {
	// 预算极小，种子条目依旧无条件包含，且不计入预算
	e := newTestEngine(
		&stubProjectRepo{project: testProject()},
		&stubCharacterRepo{recent: []*entity.Character{
			testCharacter("ch-1", "Mira", strings.Repeat("背景故事", 125)),
		}},
	)

	result, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:        "t-1",
		ProjectID:       "proj-1",
		UserID:          "u-1",
		MaxTokens:       50,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Items)

	assert.Equal(t, entity.ItemTypeProject, result.Items[0].Type)
	// 500 字背景的角色估算远超 50 预算，被跳过
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 0, result.TotalTokens)

	var skipped bool
	for _, d := range result.Diagnostics {
		if d.Stage == "supplement" && d.ID == "ch-1" {
			skipped = true
		}
	}
	assert.True(t, skipped, "超预算条目应产生诊断信息")
}

func TestBuildContext_BudgetExcludesSeed(t *testing.T) {
	// 每个角色格式化后约 48 token
	chars := []*entity.Character{
		testCharacter("ch-1", "Mira", strings.Repeat("abcd", 40)),
		testCharacter("ch-2", "Tomas", strings.Repeat("abcd", 40)),
		testCharacter("ch-3", "Ilse", strings.Repeat("abcd", 40)),
	}
	e := newTestEngine(
		&stubProjectRepo{project: testProject()},
		&stubCharacterRepo{recent: chars},
	)

	result, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:        "t-1",
		ProjectID:       "proj-1",
		UserID:          "u-1",
		MaxTokens:       100,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.NoError(t, err)

	// 种子之外的聚合估算不得超过预算
	assert.LessOrEqual(t, result.TotalTokens, 100)
	// 前两个角色能放下，第三个会超出
	assert.Len(t, result.Items, 3)
}

func TestBuildContext_ExplicitRefResolutionFailureSkipped(t *testing.T) {
	e := newTestEngine(
		&stubProjectRepo{project: testProject()},
		&stubCharacterRepo{byID: map[string]*entity.Character{}},
	)

	result, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:  "t-1",
		ProjectID: "proj-1",
		UserID:    "u-1",
		ExplicitRefs: []ContextRef{
			{Type: entity.ItemTypeCharacter, ID: "missing"},
		},
		MaxTokens:       1000,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.NoError(t, err)

	assert.Len(t, result.Items, 1) // 只有种子
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, "explicit", result.Diagnostics[0].Stage)
	assert.Equal(t, "missing", result.Diagnostics[0].ID)
}

func TestBuildContext_ExplicitRefDeduplicatedAgainstSupplement(t *testing.T) {
	mira := testCharacter("ch-1", "Mira", "Raised in the salt quarries.")
	e := newTestEngine(
		&stubProjectRepo{project: testProject()},
		&stubCharacterRepo{
			byID:   map[string]*entity.Character{"ch-1": mira},
			recent: []*entity.Character{mira},
		},
	)

	result, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:  "t-1",
		ProjectID: "proj-1",
		UserID:    "u-1",
		ExplicitRefs: []ContextRef{
			{Type: entity.ItemTypeCharacter, ID: "ch-1"},
		},
		MaxTokens:       1000,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.NoError(t, err)

	count := 0
	for _, item := range result.Items {
		if item.Key() == "character:ch-1" {
			count++
		}
	}
	assert.Equal(t, 1, count, "同一实体不应重复出现")
}

func TestBuildContext_Deterministic(t *testing.T) {
	build := func() *BuildResult {
		e := newTestEngine(
			&stubProjectRepo{project: testProject()},
			&stubCharacterRepo{recent: []*entity.Character{
				testCharacter("ch-1", "Mira", "Quarry-born."),
				testCharacter("ch-2", "Tomas", "Estranged brother."),
			}},
		)
		result, err := e.BuildContext(context.Background(), &BuildInput{
			TenantID:        "t-1",
			ProjectID:       "proj-1",
			UserID:          "u-1",
			MaxTokens:       1000,
			ContextPriority: defaultPriority(),
		}, "muse")
		require.NoError(t, err)
		return result
	}

	a, b := build(), build()
	require.Equal(t, len(a.Items), len(b.Items))
	for i := range a.Items {
		assert.Equal(t, a.Items[i].Key(), b.Items[i].Key())
		assert.Equal(t, a.Items[i].Content, b.Items[i].Content)
	}
	assert.Equal(t, a.TotalTokens, b.TotalTokens)
}

func TestBuildContext_ProjectNotFoundIsHardError(t *testing.T) {
	e := newTestEngine(
		&stubProjectRepo{err: apperrors.ErrProjectNotFound},
		&stubCharacterRepo{},
	)

	_, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:        "t-1",
		ProjectID:       "proj-x",
		UserID:          "u-1",
		MaxTokens:       1000,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.Error(t, err)
	assert.True(t, apperrors.ErrProjectNotFound.Is(err))
}

func TestBuildContext_InfraFailureDegradesToPartialResult(t *testing.T) {
	e := newTestEngine(
		&stubProjectRepo{err: errors.New("connection refused")},
		&stubCharacterRepo{recent: []*entity.Character{
			testCharacter("ch-1", "Mira", "Quarry-born."),
		}},
	)

	result, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:        "t-1",
		ProjectID:       "proj-1",
		UserID:          "u-1",
		MaxTokens:       1000,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.NoError(t, err, "基础设施故障应降级而非失败")

	// 没有种子，但补充阶段照常进行
	require.Len(t, result.Items, 1)
	assert.Equal(t, entity.ItemTypeCharacter, result.Items[0].Type)

	var seedDiag bool
	for _, d := range result.Diagnostics {
		if d.Stage == "seed" {
			seedDiag = true
		}
	}
	assert.True(t, seedDiag)
}

func TestBuildContext_EnrichEmbedsAndUpserts(t *testing.T) {
	embedder := &stubEmbedder{}
	vectors := &stubVectorWriter{}
	e := NewEngine(
		&stubProjectRepo{project: testProject()},
		&stubCharacterRepo{recent: []*entity.Character{
			testCharacter("ch-1", "Mira", "Quarry-born."),
		}},
		&stubLocationRepo{},
		&stubSceneRepo{},
		&stubCultureRepo{},
		embedder, vectors, 2,
	)

	result, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:        "t-1",
		ProjectID:       "proj-1",
		UserID:          "u-1",
		MaxTokens:       1000,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.NoError(t, err)

	assert.Equal(t, len(result.Items), embedder.calls)
	assert.Len(t, vectors.upserted, len(result.Items))
	for _, item := range result.Items {
		assert.NotEmpty(t, item.Embedding)
	}
}

func TestBuildContext_EmbeddingFailureIsNonFatal(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("embedding quota exceeded")}
	e := NewEngine(
		&stubProjectRepo{project: testProject()},
		&stubCharacterRepo{},
		&stubLocationRepo{},
		&stubSceneRepo{},
		&stubCultureRepo{},
		embedder, &stubVectorWriter{}, 2,
	)

	result, err := e.BuildContext(context.Background(), &BuildInput{
		TenantID:        "t-1",
		ProjectID:       "proj-1",
		UserID:          "u-1",
		MaxTokens:       1000,
		ContextPriority: defaultPriority(),
	}, "muse")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Empty(t, result.Items[0].Embedding)

	var enrichDiag bool
	for _, d := range result.Diagnostics {
		if d.Stage == "enrich" {
			enrichDiag = true
		}
	}
	assert.True(t, enrichDiag)
}
