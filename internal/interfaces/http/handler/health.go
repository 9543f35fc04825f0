package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"worldbest-ai-api/internal/infrastructure/persistence/milvus"
	"worldbest-ai-api/internal/infrastructure/persistence/postgres"
	"worldbest-ai-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg     *postgres.Client
	rdb    *redis.Client
	milvus *milvus.Client
}

// NewHealthHandler 创建健康检查处理器，milvus 可为 nil
func NewHealthHandler(pg *postgres.Client, rdb *redis.Client, mv *milvus.Client) *HealthHandler {
	return &HealthHandler{pg: pg, rdb: rdb, milvus: mv}
}

// Live 存活探针
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready 就绪探针，Postgres 与 Redis 任一不可用即未就绪
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if err := h.pg.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
		ready = false
	} else {
		checks["postgres"] = "ok"
	}

	if err := h.rdb.Ping(ctx); err != nil {
		checks["redis"] = err.Error()
		ready = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": checks})
}

// Health 整体健康状态，向量库不可用时降级而非报错
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	status := "healthy"

	if err := h.pg.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
		status = "unhealthy"
	} else {
		checks["postgres"] = "ok"
	}

	if err := h.rdb.Ping(ctx); err != nil {
		checks["redis"] = err.Error()
		status = "unhealthy"
	} else {
		checks["redis"] = "ok"
	}

	if h.milvus != nil {
		if err := h.milvus.HealthCheck(ctx); err != nil {
			checks["milvus"] = err.Error()
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			checks["milvus"] = "ok"
		}
	} else {
		checks["milvus"] = "disabled"
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
