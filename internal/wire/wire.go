//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"worldbest-ai-api/internal/config"
	"worldbest-ai-api/internal/infrastructure/persistence/postgres"
	"worldbest-ai-api/internal/infrastructure/persistence/redis"
	"worldbest-ai-api/internal/interfaces/http/handler"
)

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewProjectRepository,
	postgres.NewCharacterRepository,
	postgres.NewLocationRepository,
	postgres.NewSceneRepository,
	postgres.NewCultureRepository,
	postgres.NewGenerationRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
)

// VectorSet 可选 Milvus 与 Embedding 提供者集合
var VectorSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepositoryOptional,
	ProvideVectorWriterOptional,
	ProvideEinoEmbedderOptional,
	ProvideAssemblyEmbedderOptional,
)

// GenerationSet 生成编排提供者集合
var GenerationSet = wire.NewSet(
	ProvidePersonaRegistry,
	ProvideProviderChain,
	ProvideAssemblyEngine,
	ProvideOrchestrator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewGenerationHandler,
	handler.NewPersonaHandler,
	handler.NewRetrievalHandler,
	ProvideRouter,
)

// InitializeApp 初始化整个应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		VectorSet,
		GenerationSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
