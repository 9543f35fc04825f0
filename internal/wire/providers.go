// Package wire 提供依赖注入配置
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"worldbest-ai-api/internal/application/assembly"
	"worldbest-ai-api/internal/application/generation"
	"worldbest-ai-api/internal/application/persona"
	"worldbest-ai-api/internal/config"
	infraembedding "worldbest-ai-api/internal/infrastructure/embedding"
	"worldbest-ai-api/internal/infrastructure/llm"
	"worldbest-ai-api/internal/infrastructure/persistence/milvus"
	"worldbest-ai-api/internal/infrastructure/persistence/postgres"
	"worldbest-ai-api/internal/infrastructure/persistence/redis"
	"worldbest-ai-api/internal/interfaces/http/handler"
	"worldbest-ai-api/internal/interfaces/http/router"
	"worldbest-ai-api/pkg/logger"
)

// App 应用依赖容器
type App struct {
	Router     *router.Router
	VectorRepo *milvus.Repository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusClientOptional 提供可选的 Milvus 客户端，不可达时不阻塞启动
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus 不可用，已关闭向量增强", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusRepositoryOptional 提供可选的向量仓储
func ProvideMilvusRepositoryOptional(client *milvus.Client) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client)
}

// ProvideVectorWriterOptional 提供可选的向量写入端口
func ProvideVectorWriterOptional(repo *milvus.Repository) assembly.VectorWriter {
	if repo == nil {
		return nil
	}
	return repo
}

// ProvideEinoEmbedderOptional 提供可选的 eino Embedder，不可用时关闭向量增强
func ProvideEinoEmbedderOptional(ctx context.Context, cfg *config.Config) einoembedding.Embedder {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding 不可用，已关闭向量增强", "error", err.Error())
		return nil
	}
	return embedder
}

// ProvideAssemblyEmbedderOptional 提供组装引擎使用的向量化端口
func ProvideAssemblyEmbedderOptional(embedder einoembedding.Embedder) assembly.Embedder {
	if embedder == nil {
		return nil
	}
	return infraembedding.NewAdapter(embedder)
}

// ProvidePersonaRegistry 提供内置人设注册表
func ProvidePersonaRegistry() *persona.Registry {
	return persona.Default()
}

// ProvideProviderChain 按配置构建生成后端链
func ProvideProviderChain(cfg *config.Config, embedder einoembedding.Embedder) *llm.Chain {
	factory := llm.NewEinoFactory(cfg)
	costs := llm.NewCostTable(&cfg.LLM)

	providers := make([]llm.Provider, 0, len(cfg.LLM.Providers))
	for name := range cfg.LLM.Providers {
		providers = append(providers, llm.NewEinoProvider(name, factory, embedder, costs))
	}
	return llm.NewChain(providers...)
}

// ProvideAssemblyEngine 提供上下文组装引擎
func ProvideAssemblyEngine(
	cfg *config.Config,
	projects *postgres.ProjectRepository,
	characters *postgres.CharacterRepository,
	locations *postgres.LocationRepository,
	scenes *postgres.SceneRepository,
	cultures *postgres.CultureRepository,
	embedder assembly.Embedder,
	vectors assembly.VectorWriter,
) *assembly.Engine {
	return assembly.NewEngine(
		projects, characters, locations, scenes, cultures,
		embedder, vectors,
		cfg.Generation.EnrichConcurrency,
	)
}

// ProvideOrchestrator 提供生成编排器
func ProvideOrchestrator(
	cfg *config.Config,
	personas *persona.Registry,
	engine *assembly.Engine,
	chain *llm.Chain,
	records *postgres.GenerationRepository,
	tx *postgres.TxManager,
	cache *redis.Cache,
) *generation.Orchestrator {
	return generation.NewOrchestrator(personas, engine, chain, records, tx, cache, &cfg.Generation)
}

// ProvideRouter 提供 HTTP 路由器
func ProvideRouter(
	cfg *config.Config,
	health *handler.HealthHandler,
	gen *handler.GenerationHandler,
	per *handler.PersonaHandler,
	ret *handler.RetrievalHandler,
	limiter *redis.RateLimiter,
) *router.Router {
	return router.New(cfg, &router.Handlers{
		Health:     health,
		Generation: gen,
		Persona:    per,
		Retrieval:  ret,
	}, limiter)
}
