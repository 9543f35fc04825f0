package assembly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"worldbest-ai-api/internal/domain/entity"
	"worldbest-ai-api/internal/domain/repository"
	apperrors "worldbest-ai-api/pkg/errors"
	"worldbest-ai-api/pkg/logger"
	"worldbest-ai-api/pkg/metrics"
)

// 自动补充阶段每种实体类型的条目上限
var supplementCaps = map[entity.ItemType]int{
	entity.ItemTypeCharacter: 3,
	entity.ItemTypeLocation:  2,
	entity.ItemTypeScene:     2,
	entity.ItemTypeCulture:   2,
}

// Engine 上下文组装引擎，只读项目数据，每次调用产出独立结果
type Engine struct {
	projects   repository.ProjectRepository
	characters repository.CharacterRepository
	locations  repository.LocationRepository
	scenes     repository.SceneRepository
	cultures   repository.CultureRepository

	// embedder 和 vectors 均可为空，为空时跳过相似度增强
	embedder Embedder
	vectors  VectorWriter

	enrichConcurrency int
}

// NewEngine 创建组装引擎
func NewEngine(
	projects repository.ProjectRepository,
	characters repository.CharacterRepository,
	locations repository.LocationRepository,
	scenes repository.SceneRepository,
	cultures repository.CultureRepository,
	embedder Embedder,
	vectors VectorWriter,
	enrichConcurrency int,
) *Engine {
	if enrichConcurrency < 1 {
		enrichConcurrency = 4
	}
	return &Engine{
		projects:          projects,
		characters:        characters,
		locations:         locations,
		scenes:            scenes,
		cultures:          cultures,
		embedder:          embedder,
		vectors:           vectors,
		enrichConcurrency: enrichConcurrency,
	}
}

// BuildContext 组装上下文条目列表。
// 顺序固定：种子（项目概要，无条件包含）→ 显式引用 → 按人设优先级自动补充。
// 预算按不含种子的聚合估算值跟踪，任何会使聚合超出预算的条目都被跳过。
// 唯一的硬失败是项目查不到或无权访问；基础设施故障降级为返回已组装的部分结果。
func (e *Engine) BuildContext(ctx context.Context, in *BuildInput, personaName string) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{}
	seen := make(map[string]struct{})

	// 第一步：鉴权并加载种子条目
	project, err := e.projects.GetForUser(ctx, in.TenantID, in.ProjectID, in.UserID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		// 基础设施故障：记录诊断信息后继续组装，不让查询层故障拖垮整次生成
		logger.Warn(ctx, "项目加载失败，降级为无种子组装", "error", err)
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Stage:   "seed",
			Type:    string(entity.ItemTypeProject),
			ID:      in.ProjectID,
			Message: err.Error(),
		})
	}
	if project != nil {
		content := FormatProject(project)
		seed := entity.ContextItem{
			Type:            entity.ItemTypeProject,
			ID:              project.ID,
			Title:           project.Title,
			Content:         content,
			EstimatedTokens: EstimateTokens(content),
			Metadata: entity.ProjectMetadata{
				Genre:          project.Genre,
				TargetAudience: project.TargetAudience,
			},
		}
		result.Items = append(result.Items, seed)
		seen[seed.Key()] = struct{}{}
	}

	// 第二步：解析显式引用，任何解析失败只跳过该引用
	for _, ref := range in.ExplicitRefs {
		item, err := e.resolveRef(ctx, in, ref)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   "explicit",
				Type:    string(ref.Type),
				ID:      ref.ID,
				Message: err.Error(),
			})
			continue
		}
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		if result.TotalTokens+item.EstimatedTokens > in.MaxTokens {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   "explicit",
				Type:    string(ref.Type),
				ID:      ref.ID,
				Message: "超出上下文预算，已跳过",
			})
			continue
		}
		result.Items = append(result.Items, *item)
		result.TotalTokens += item.EstimatedTokens
		seen[item.Key()] = struct{}{}
	}

	// 第三步：按人设优先级自动补充最近更新的实体
	e.supplement(ctx, in, result, seen)

	// 第四步：尽力而为的向量增强，单条失败不影响整体
	e.enrich(ctx, in, result)

	metrics.ContextItemsIncluded.WithLabelValues(personaName).Observe(float64(len(result.Items)))
	metrics.ContextAssemblyDuration.WithLabelValues(personaName).Observe(time.Since(start).Seconds())
	return result, nil
}

// resolveRef 解析单条显式引用并格式化为上下文条目
func (e *Engine) resolveRef(ctx context.Context, in *BuildInput, ref ContextRef) (*entity.ContextItem, error) {
	switch ref.Type {
	case entity.ItemTypeCharacter:
		c, err := e.characters.GetByID(ctx, in.TenantID, in.ProjectID, ref.ID)
		if err != nil {
			return nil, err
		}
		return characterItem(c, ref.Fields), nil
	case entity.ItemTypeLocation:
		l, err := e.locations.GetByID(ctx, in.TenantID, in.ProjectID, ref.ID)
		if err != nil {
			return nil, err
		}
		return locationItem(l, ref.Fields), nil
	case entity.ItemTypeScene:
		// 场景按 ID 直接解析，项目归属由上游校验
		s, err := e.scenes.GetByID(ctx, in.TenantID, ref.ID)
		if err != nil {
			return nil, err
		}
		return sceneItem(s, ref.Fields), nil
	case entity.ItemTypeCulture:
		c, err := e.cultures.GetByID(ctx, in.TenantID, in.ProjectID, ref.ID)
		if err != nil {
			return nil, err
		}
		return cultureItem(c, ref.Fields), nil
	default:
		return nil, fmt.Errorf("不支持的引用类型: %s", ref.Type)
	}
}

// supplement 在剩余预算内按优先级顺序补充最近更新的实体
func (e *Engine) supplement(ctx context.Context, in *BuildInput, result *BuildResult, seen map[string]struct{}) {
	for _, itemType := range in.ContextPriority {
		if result.TotalTokens >= in.MaxTokens {
			return
		}
		limit, ok := supplementCaps[itemType]
		if !ok {
			continue
		}
		candidates, err := e.listRecent(ctx, in, itemType, limit)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   "supplement",
				Type:    string(itemType),
				Message: err.Error(),
			})
			continue
		}
		for _, item := range candidates {
			if result.TotalTokens >= in.MaxTokens {
				return
			}
			if _, dup := seen[item.Key()]; dup {
				continue
			}
			if result.TotalTokens+item.EstimatedTokens > in.MaxTokens {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Stage:   "supplement",
					Type:    string(item.Type),
					ID:      item.ID,
					Message: "超出上下文预算，已跳过",
				})
				continue
			}
			result.Items = append(result.Items, item)
			result.TotalTokens += item.EstimatedTokens
			seen[item.Key()] = struct{}{}
		}
	}
}

// listRecent 按类型拉取最近更新的候选条目
func (e *Engine) listRecent(ctx context.Context, in *BuildInput, itemType entity.ItemType, limit int) ([]entity.ContextItem, error) {
	var items []entity.ContextItem
	switch itemType {
	case entity.ItemTypeCharacter:
		rows, err := e.characters.ListRecent(ctx, in.TenantID, in.ProjectID, limit)
		if err != nil {
			return nil, err
		}
		for _, c := range rows {
			items = append(items, *characterItem(c, nil))
		}
	case entity.ItemTypeLocation:
		rows, err := e.locations.ListRecent(ctx, in.TenantID, in.ProjectID, limit)
		if err != nil {
			return nil, err
		}
		for _, l := range rows {
			items = append(items, *locationItem(l, nil))
		}
	case entity.ItemTypeScene:
		rows, err := e.scenes.ListRecent(ctx, in.TenantID, in.ProjectID, limit)
		if err != nil {
			return nil, err
		}
		for _, s := range rows {
			items = append(items, *sceneItem(s, nil))
		}
	case entity.ItemTypeCulture:
		rows, err := e.cultures.ListRecent(ctx, in.TenantID, in.ProjectID, limit)
		if err != nil {
			return nil, err
		}
		for _, c := range rows {
			items = append(items, *cultureItem(c, nil))
		}
	}
	return items, nil
}

// enrich 并行计算缺失向量并尽力同步到向量库
func (e *Engine) enrich(ctx context.Context, in *BuildInput, result *BuildResult) {
	if e.embedder == nil || len(result.Items) == 0 {
		return
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.enrichConcurrency)

	for i := range result.Items {
		if len(result.Items[i].Embedding) > 0 {
			continue
		}
		idx := i
		g.Go(func() error {
			text := result.Items[idx].Title + "\n" + result.Items[idx].Content
			vec, err := e.embedder.EmbedText(gctx, text)
			if err != nil {
				metrics.EmbeddingFailures.Inc()
				mu.Lock()
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Stage:   "enrich",
					Type:    string(result.Items[idx].Type),
					ID:      result.Items[idx].ID,
					Message: err.Error(),
				})
				mu.Unlock()
				return nil
			}
			result.Items[idx].Embedding = vec
			return nil
		})
	}
	_ = g.Wait()

	if e.vectors == nil {
		return
	}
	var embedded []entity.ContextItem
	for _, item := range result.Items {
		if len(item.Embedding) > 0 {
			embedded = append(embedded, item)
		}
	}
	if len(embedded) == 0 {
		return
	}
	if err := e.vectors.UpsertContextItems(ctx, in.TenantID, in.ProjectID, embedded); err != nil {
		logger.Warn(ctx, "上下文向量同步失败", "error", err)
	}
}

func characterItem(c *entity.Character, fields []string) *entity.ContextItem {
	content := FormatCharacter(c, fields)
	return &entity.ContextItem{
		Type:            entity.ItemTypeCharacter,
		ID:              c.ID,
		Title:           c.Name,
		Content:         content,
		EstimatedTokens: EstimateTokens(content),
		Metadata: entity.CharacterMetadata{
			Role:              c.Role,
			RelationshipCount: len(c.Relationships),
		},
	}
}

func locationItem(l *entity.Location, fields []string) *entity.ContextItem {
	content := FormatLocation(l, fields)
	return &entity.ContextItem{
		Type:            entity.ItemTypeLocation,
		ID:              l.ID,
		Title:           l.Name,
		Content:         content,
		EstimatedTokens: EstimateTokens(content),
		Metadata:        entity.LocationMetadata{Kind: l.Kind},
	}
}

func sceneItem(s *entity.Scene, fields []string) *entity.ContextItem {
	content := FormatScene(s, fields)
	return &entity.ContextItem{
		Type:            entity.ItemTypeScene,
		ID:              s.ID,
		Title:           s.Title,
		Content:         content,
		EstimatedTokens: EstimateTokens(content),
		Metadata: entity.SceneMetadata{
			ChapterID: s.ChapterID,
			Sequence:  s.Sequence,
		},
	}
}

func cultureItem(c *entity.Culture, fields []string) *entity.ContextItem {
	content := FormatCulture(c, fields)
	return &entity.ContextItem{
		Type:            entity.ItemTypeCulture,
		ID:              c.ID,
		Title:           c.Name,
		Content:         content,
		EstimatedTokens: EstimateTokens(content),
		Metadata:        entity.CultureMetadata{Language: c.Language},
	}
}
