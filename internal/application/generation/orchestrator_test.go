package generation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldbest-ai-api/internal/application/assembly"
	"worldbest-ai-api/internal/application/persona"
	"worldbest-ai-api/internal/config"
	"worldbest-ai-api/internal/domain/entity"
	"worldbest-ai-api/internal/domain/repository"
	"worldbest-ai-api/internal/infrastructure/llm"
	apperrors "worldbest-ai-api/pkg/errors"
)

// ---- 桩实现 ----

type fakeProjectRepo struct {
	calls int
}

func (f *fakeProjectRepo) GetForUser(ctx context.Context, tenantID, projectID, userID string) (*entity.Project, error) {
	f.calls++
	return &entity.Project{
		ID:       projectID,
		TenantID: tenantID,
		OwnerID:  userID,
		Title:    "The Salt Road",
		Genre:    "fantasy",
	}, nil
}

type emptyCharacterRepo struct{}

func (emptyCharacterRepo) GetByID(ctx context.Context, tenantID, projectID, id string) (*entity.Character, error) {
	return nil, apperrors.ErrEntityNotFound
}

func (emptyCharacterRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Character, error) {
	return nil, nil
}

type emptyLocationRepo struct{}

func (emptyLocationRepo) GetByID(ctx context.Context, tenantID, projectID, id string) (*entity.Location, error) {
	return nil, apperrors.ErrEntityNotFound
}

func (emptyLocationRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Location, error) {
	return nil, nil
}

type emptySceneRepo struct{}

func (emptySceneRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Scene, error) {
	return nil, apperrors.ErrEntityNotFound
}

func (emptySceneRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Scene, error) {
	return nil, nil
}

type emptyCultureRepo struct{}

func (emptyCultureRepo) GetByID(ctx context.Context, tenantID, projectID, id string) (*entity.Culture, error) {
	return nil, apperrors.ErrEntityNotFound
}

func (emptyCultureRepo) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Culture, error) {
	return nil, nil
}

// fakeProvider 可配置行为的生成后端桩
type fakeProvider struct {
	name    string
	result  *llm.TextResult
	err     error
	calls   int
	lastReq *llm.TextRequest
	onCall  func()
	ratePer float64
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GenerateText(ctx context.Context, req *llm.TextRequest) (*llm.TextResult, error) {
	f.calls++
	f.lastReq = req
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func (f *fakeProvider) EstimateCost(model string, promptTokens, completionTokens int) float64 {
	return float64(promptTokens+completionTokens) * f.ratePer
}

// fakeGenerationRepo 内存生成记录仓储
type fakeGenerationRepo struct {
	records []*entity.GenerationRecord
}

func (f *fakeGenerationRepo) Create(ctx context.Context, record *entity.GenerationRecord) error {
	clone := *record
	f.records = append(f.records, &clone)
	return nil
}

func (f *fakeGenerationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.GenerationRecord, error) {
	for _, r := range f.records {
		if r.TenantID == tenantID && r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.ErrGenerationNotFound
}

func (f *fakeGenerationRepo) GetByIdempotencyKey(ctx context.Context, tenantID, projectID, key string) (*entity.GenerationRecord, error) {
	for _, r := range f.records {
		if r.TenantID == tenantID && r.ProjectID == projectID && r.IdempotencyKey == key {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeGenerationRepo) ListByProject(ctx context.Context, tenantID, projectID string, page *repository.Pagination) (*repository.PagedResult[*entity.GenerationRecord], error) {
	page.Normalize()
	var items []*entity.GenerationRecord
	for _, r := range f.records {
		if r.TenantID == tenantID && r.ProjectID == projectID {
			items = append(items, r)
		}
	}
	return &repository.PagedResult[*entity.GenerationRecord]{
		Items:    items,
		Total:    int64(len(items)),
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

// fakeKVCache 内存键值缓存
type fakeKVCache struct {
	data map[string][]byte
}

func newFakeKVCache() *fakeKVCache {
	return &fakeKVCache{data: make(map[string][]byte)}
}

func (f *fakeKVCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeKVCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

// ---- 测试夹具 ----

type orchestratorFixture struct {
	orchestrator *Orchestrator
	projects     *fakeProjectRepo
	provider     *fakeProvider
	fallback     *fakeProvider
	records      *fakeGenerationRepo
	cache        *fakeKVCache
}

func newFixture(t *testing.T, cacheEnabled bool) *orchestratorFixture {
	t.Helper()

	projects := &fakeProjectRepo{}
	engine := assembly.NewEngine(
		projects,
		emptyCharacterRepo{},
		emptyLocationRepo{},
		emptySceneRepo{},
		emptyCultureRepo{},
		nil, nil, 2,
	)

	provider := &fakeProvider{
		name: "openai",
		result: &llm.TextResult{
			Content:      "The water was black glass.",
			FinishReason: llm.FinishStop,
			Model:        "gpt-4o",
			Usage: entity.TokenUsage{
				PromptTokens:     120,
				CompletionTokens: 80,
				TotalTokens:      200,
			},
		},
		ratePer: 0.00001,
	}
	fallback := &fakeProvider{
		name: "deepseek",
		result: &llm.TextResult{
			Content:      "Fallback prose.",
			FinishReason: llm.FinishStop,
			Model:        "deepseek-chat",
			Usage: entity.TokenUsage{
				PromptTokens:     100,
				CompletionTokens: 50,
				TotalTokens:      150,
			},
		},
		ratePer: 0.00001,
	}

	records := &fakeGenerationRepo{}
	cache := newFakeKVCache()

	cfg := &config.GenerationConfig{
		CallTimeout:         5 * time.Second,
		ContextCacheEnabled: cacheEnabled,
		ContextCacheTTL:     time.Minute,
	}
	o := NewOrchestrator(
		persona.Default(),
		engine,
		llm.NewChain(provider, fallback),
		records,
		nil,
		cache,
		cfg,
	)

	return &orchestratorFixture{
		orchestrator: o,
		projects:     projects,
		provider:     provider,
		fallback:     fallback,
		records:      records,
		cache:        cache,
	}
}

func testInput() *GenerateInput {
	return &GenerateInput{
		TenantID:  "t-1",
		UserID:    "u-1",
		ProjectID: "proj-1",
		Intent:    entity.IntentGenerateScene,
		Persona:   "muse",
	}
}

// ---- 测试 ----

func TestGenerate_Success(t *testing.T) {
	fx := newFixture(t, false)

	record, err := fx.orchestrator.Generate(context.Background(), testInput())
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "muse", record.Persona)
	assert.Equal(t, "openai", record.Provider)
	assert.Equal(t, "gpt-4o", record.Model)
	assert.Equal(t, "The water was black glass.", record.Content)
	assert.Equal(t, llm.FinishStop, record.FinishReason)
	// 用量来自后端实际返回值
	assert.Equal(t, 120, record.Usage.PromptTokens)
	assert.Equal(t, 80, record.Usage.CompletionTokens)
	assert.Equal(t, 200, record.Usage.TotalTokens)
	assert.InDelta(t, 200*0.00001, record.EstimatedCost, 1e-9)
	assert.Len(t, record.ContextHash, 64)
	assert.GreaterOrEqual(t, record.ContextItemCount, 1)
	assert.False(t, record.Cached)

	// 记录已落库
	require.Len(t, fx.records.records, 1)
	assert.Equal(t, record.ID, fx.records.records[0].ID)
}

func TestGenerate_PersonaCaseInsensitive(t *testing.T) {
	fx := newFixture(t, false)

	in := testInput()
	in.Persona = "MUSE"
	record, err := fx.orchestrator.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "muse", record.Persona)
}

func TestGenerate_UnknownPersona(t *testing.T) {
	fx := newFixture(t, false)

	in := testInput()
	in.Persona = "ghostwriter"
	_, err := fx.orchestrator.Generate(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperrors.ErrPersonaNotFound.Is(err))
	assert.Zero(t, fx.provider.calls)
}

func TestGenerate_InvalidIntent(t *testing.T) {
	fx := newFixture(t, false)

	in := testInput()
	in.Intent = "compose_symphony"
	_, err := fx.orchestrator.Generate(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperrors.ErrInvalidIntent.Is(err))
}

func TestGenerate_IdempotentReplay(t *testing.T) {
	fx := newFixture(t, false)

	in := testInput()
	in.IdempotencyKey = "key-123"

	first, err := fx.orchestrator.Generate(context.Background(), in)
	require.NoError(t, err)
	require.False(t, first.Cached)

	// 重放返回同一条记录，不再触发后端调用
	callsBefore := fx.provider.calls
	second, err := fx.orchestrator.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Cached)
	assert.Equal(t, callsBefore, fx.provider.calls)
	assert.Len(t, fx.records.records, 1)

	// 重放匹配不区分人设
	replay := *in
	replay.Persona = "editor"
	third, err := fx.orchestrator.Generate(context.Background(), &replay)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
}

func TestGenerate_ProviderFallback(t *testing.T) {
	fx := newFixture(t, false)
	fx.provider.err = &llm.ProviderUnavailableError{Provider: "openai", Status: "503"}

	record, err := fx.orchestrator.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "deepseek", record.Provider)
	assert.Equal(t, 1, fx.provider.calls)
	assert.Equal(t, 1, fx.fallback.calls)
}

func TestGenerate_AllProvidersUnavailable(t *testing.T) {
	fx := newFixture(t, false)
	fx.provider.err = &llm.ProviderUnavailableError{Provider: "openai", Status: "503"}
	fx.fallback.err = &llm.ProviderUnavailableError{Provider: "deepseek", Status: "timeout"}

	_, err := fx.orchestrator.Generate(context.Background(), testInput())
	require.Error(t, err)
	assert.True(t, apperrors.ErrProviderUnavailable.Is(err))
	// 失败的请求不落库
	assert.Empty(t, fx.records.records)
}

func TestGenerate_CancelledBeforePersist(t *testing.T) {
	fx := newFixture(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	// 后端调用期间请求被取消
	fx.provider.onCall = cancel

	_, err := fx.orchestrator.Generate(ctx, testInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// 取消的请求绝不产生记录
	assert.Empty(t, fx.records.records)
}

func TestGenerate_ContextBundleCache(t *testing.T) {
	fx := newFixture(t, true)

	_, err := fx.orchestrator.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 1, fx.projects.calls)

	// 相同请求命中缓存，不再调用组装引擎
	_, err = fx.orchestrator.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 1, fx.projects.calls)

	// 换用户则缓存键不同
	other := testInput()
	other.UserID = "u-2"
	_, err = fx.orchestrator.Generate(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.projects.calls)
}

func TestGenerate_ParamOverrides(t *testing.T) {
	fx := newFixture(t, false)

	budget := 512
	temp := 0.2
	in := testInput()
	in.Params.MaxTokens = &budget
	in.Params.Temperature = &temp
	in.Params.ModelOverride = "gpt-4o-mini"

	_, err := fx.orchestrator.Generate(context.Background(), in)
	require.NoError(t, err)

	req := fx.provider.lastReq
	require.NotNil(t, req)
	assert.Equal(t, 512, req.MaxTokens)
	assert.InDelta(t, 0.2, req.Temperature, 0.001)
	assert.Equal(t, "gpt-4o-mini", req.Model)
}

func TestGenerate_DefaultsFromPersona(t *testing.T) {
	fx := newFixture(t, false)

	_, err := fx.orchestrator.Generate(context.Background(), testInput())
	require.NoError(t, err)

	req := fx.provider.lastReq
	require.NotNil(t, req)
	// muse 默认 2048 token、0.9 温度
	assert.Equal(t, 2048, req.MaxTokens)
	assert.InDelta(t, 0.9, req.Temperature, 0.001)
	assert.Empty(t, req.Model)
	assert.Contains(t, req.SystemPrompt, "## Story context")
}

func TestGenerate_DeterministicForcesZeroTemperature(t *testing.T) {
	fx := newFixture(t, false)

	in := testInput()
	in.Params.Deterministic = true

	_, err := fx.orchestrator.Generate(context.Background(), in)
	require.NoError(t, err)

	req := fx.provider.lastReq
	require.NotNil(t, req)
	// 确定性输出压过 muse 的 0.9 默认温度
	assert.Zero(t, req.Temperature)
}

func TestGenerate_DeterministicOverridesExplicitTemperature(t *testing.T) {
	fx := newFixture(t, false)

	temp := 0.7
	in := testInput()
	in.Params.Temperature = &temp
	in.Params.Deterministic = true

	_, err := fx.orchestrator.Generate(context.Background(), in)
	require.NoError(t, err)

	req := fx.provider.lastReq
	require.NotNil(t, req)
	assert.Zero(t, req.Temperature)
}

func TestGenerate_StreamRejected(t *testing.T) {
	fx := newFixture(t, false)

	in := testInput()
	in.Params.Stream = true

	_, err := fx.orchestrator.Generate(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperrors.ErrInvalidParam.Is(err))
	// 拒绝发生在任何后端调用之前
	assert.Zero(t, fx.provider.calls)
}
