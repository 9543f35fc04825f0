package generation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"worldbest-ai-api/internal/application/assembly"
	"worldbest-ai-api/internal/application/persona"
	"worldbest-ai-api/internal/config"
	"worldbest-ai-api/internal/domain/entity"
	"worldbest-ai-api/internal/domain/repository"
	"worldbest-ai-api/internal/infrastructure/llm"
	einoobs "worldbest-ai-api/internal/observability/eino"
	apperrors "worldbest-ai-api/pkg/errors"
	"worldbest-ai-api/pkg/logger"
	"worldbest-ai-api/pkg/metrics"
)

// Orchestrator 生成编排器：解析人设、组装上下文、调用后端、
// 核算费用并持久化生成记录。请求级无状态，可安全并发使用。
type Orchestrator struct {
	personas *persona.Registry
	engine   *assembly.Engine
	chain    *llm.Chain
	records  repository.GenerationRepository
	tx       repository.Transactor

	// cache 可为空，为空时关闭上下文包缓存
	cache    KVCache
	cacheTTL time.Duration
	// sf 合并缓存未命中时的并发组装，防止相同请求击穿缓存
	sf singleflight.Group

	callTimeout time.Duration
}

// NewOrchestrator 创建生成编排器
func NewOrchestrator(
	personas *persona.Registry,
	engine *assembly.Engine,
	chain *llm.Chain,
	records repository.GenerationRepository,
	tx repository.Transactor,
	cache KVCache,
	cfg *config.GenerationConfig,
) *Orchestrator {
	o := &Orchestrator{
		personas:    personas,
		engine:      engine,
		chain:       chain,
		records:     records,
		tx:          tx,
		callTimeout: cfg.CallTimeout,
		cacheTTL:    cfg.ContextCacheTTL,
	}
	if cfg.ContextCacheEnabled {
		o.cache = cache
	}
	if o.callTimeout <= 0 {
		o.callTimeout = 90 * time.Second
	}
	return o
}

// Generate 执行一次生成请求
func (o *Orchestrator) Generate(ctx context.Context, in *GenerateInput) (*entity.GenerationRecord, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	if !entity.ValidIntent(in.Intent) {
		return nil, apperrors.ErrInvalidIntent.WithDetail("不支持的生成意图: " + string(in.Intent))
	}
	// 接口是同步的，流式请求直接拒绝而不是静默忽略
	if in.Params.Stream {
		return nil, apperrors.ErrInvalidParam.WithDetail("流式输出暂不支持，请使用同步调用")
	}

	cfg, err := o.personas.Get(in.Persona)
	if err != nil {
		return nil, err
	}

	// 幂等重放：同一 (项目, 幂等键) 的历史记录直接返回，不再触发后端调用。
	// 匹配不区分人设，也不设过期窗口。
	if in.IdempotencyKey != "" {
		prior, err := o.records.GetByIdempotencyKey(ctx, in.TenantID, in.ProjectID, in.IdempotencyKey)
		if err != nil {
			return nil, apperrors.ErrGenerationFailed.WithError(err)
		}
		if prior != nil {
			log.Info("幂等键命中，返回历史记录", "generation_id", prior.ID)
			prior.Cached = true
			metrics.GenerationTotal.WithLabelValues(cfg.Name, string(in.Intent), "replayed").Inc()
			return prior, nil
		}
	}

	budget := cfg.MaxTokens
	if in.Params.MaxTokens != nil {
		budget = *in.Params.MaxTokens
	}

	bundle, err := o.assembleContext(ctx, in, cfg, budget)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(cfg.Name, string(in.Intent), "context_failed").Inc()
		return nil, err
	}
	for _, d := range bundle.Diagnostics {
		log.Debug("上下文组装降级", "stage", d.Stage, "type", d.Type, "id", d.ID, "reason", d.Message)
	}

	contextHash := ContextHash(bundle.Items)
	systemPrompt := BuildSystemPrompt(cfg, bundle.Items)
	userPrompt := BuildUserPrompt(in.Intent, &in.Params)

	temperature := cfg.Temperature
	if in.Params.Temperature != nil {
		temperature = *in.Params.Temperature
	}
	// 确定性输出优先于显式温度
	if in.Params.Deterministic {
		temperature = 0
	}
	req := &llm.TextRequest{
		SystemPrompt:     systemPrompt,
		Prompt:           userPrompt,
		Model:            in.Params.ModelOverride,
		MaxTokens:        budget,
		Temperature:      temperature,
		TopP:             in.Params.TopP,
		FrequencyPenalty: in.Params.FrequencyPenalty,
		PresencePenalty:  in.Params.PresencePenalty,
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	callCtx = einoobs.WithIntent(callCtx, string(in.Intent))
	result, providerName, err := o.chain.GenerateText(callCtx, cfg.PreferredProviders, req)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(cfg.Name, string(in.Intent), "provider_failed").Inc()
		if pe, ok := llm.IsProviderUnavailable(err); ok {
			return nil, apperrors.ErrProviderUnavailable.
				WithDetail("后端 " + pe.Provider + " 不可用: " + pe.Status).
				WithError(err)
		}
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}

	// 调用方取消时不落库：取消的请求绝不产生半成品记录
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cost := 0.0
	if p, ok := o.chain.Provider(providerName); ok {
		cost = p.EstimateCost(result.Model, result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}

	record := &entity.GenerationRecord{
		ID:               uuid.NewString(),
		TenantID:         in.TenantID,
		ProjectID:        in.ProjectID,
		UserID:           in.UserID,
		Persona:          cfg.Name,
		Intent:           in.Intent,
		Provider:         providerName,
		Model:            result.Model,
		Content:          result.Content,
		FinishReason:     result.FinishReason,
		Usage:            result.Usage,
		EstimatedCost:    cost,
		ContextHash:      contextHash,
		ContextItemCount: len(bundle.Items),
		SafetyOverrides:  in.SafetyOverrides,
		IdempotencyKey:   in.IdempotencyKey,
		ProcessingTimeMs: result.ProcessingTimeMs,
		CreatedAt:        time.Now().UTC(),
	}
	if err := o.persist(ctx, record); err != nil {
		metrics.GenerationTotal.WithLabelValues(cfg.Name, string(in.Intent), "persist_failed").Inc()
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}

	metrics.GenerationTotal.WithLabelValues(cfg.Name, string(in.Intent), "success").Inc()
	metrics.GenerationDuration.WithLabelValues(cfg.Name).Observe(time.Since(start).Seconds())
	metrics.GenerationEstimatedCost.WithLabelValues(providerName, result.Model).Add(cost)
	log.Info("生成完成",
		"generation_id", record.ID,
		"provider", providerName,
		"model", result.Model,
		"total_tokens", result.Usage.TotalTokens,
		"context_items", len(bundle.Items),
	)
	return record, nil
}

// persist 落库生成记录，配置了事务管理器时在事务内写入
func (o *Orchestrator) persist(ctx context.Context, record *entity.GenerationRecord) error {
	if o.tx == nil {
		return o.records.Create(ctx, record)
	}
	return o.tx.WithTx(ctx, func(ctx context.Context) error {
		return o.records.Create(ctx, record)
	})
}

// assembleContext 组装上下文，命中缓存时跳过引擎调用
func (o *Orchestrator) assembleContext(ctx context.Context, in *GenerateInput, cfg *persona.Config, budget int) (*assembly.BuildResult, error) {
	input := &assembly.BuildInput{
		TenantID:        in.TenantID,
		ProjectID:       in.ProjectID,
		UserID:          in.UserID,
		Intent:          in.Intent,
		ExplicitRefs:    in.ContextRefs,
		MaxTokens:       budget,
		ContextPriority: cfg.ContextPriority,
	}

	if o.cache == nil {
		return o.engine.BuildContext(ctx, input, cfg.Name)
	}

	key := bundleCacheKey(in, cfg.Name, budget)
	var cached assembly.BuildResult
	hit, err := o.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn(ctx, "上下文缓存读取失败", "error", err)
	}
	if hit {
		metrics.ContextCacheTotal.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	metrics.ContextCacheTotal.WithLabelValues("miss").Inc()

	// 并发的相同请求只组装一次
	v, err, _ := o.sf.Do(key, func() (interface{}, error) {
		bundle, err := o.engine.BuildContext(ctx, input, cfg.Name)
		if err != nil {
			return nil, err
		}
		if err := o.cache.Set(ctx, key, bundle, o.cacheTTL); err != nil {
			logger.Warn(ctx, "上下文缓存写入失败", "error", err)
		}
		return bundle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*assembly.BuildResult), nil
}

// GetGeneration 按 ID 查询生成记录
func (o *Orchestrator) GetGeneration(ctx context.Context, tenantID, generationID string) (*entity.GenerationRecord, error) {
	return o.records.GetByID(ctx, tenantID, generationID)
}

// ListGenerations 分页查询项目下的生成记录
func (o *Orchestrator) ListGenerations(ctx context.Context, tenantID, projectID string, page *repository.Pagination) (*repository.PagedResult[*entity.GenerationRecord], error) {
	return o.records.ListByProject(ctx, tenantID, projectID, page)
}
