package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"worldbest-ai-api/internal/infrastructure/persistence/milvus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRetrievalRouter(h *RetrievalHandler) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("tenant_id", "t-1")
		c.Set("user_id", "u-1")
	})
	r.GET("/v1/projects/:pid/context/similar", h.SimilarItems)
	return r
}

func TestSimilarItems_VectorSearchDisabled(t *testing.T) {
	// 未接入向量库时返回服务不可用而不是空结果
	r := newRetrievalRouter(NewRetrievalHandler(nil, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/projects/p-1/context/similar?q=old+harbor", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

type stubQueryEmbedder struct{}

func (stubQueryEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func TestSimilarItems_MissingQuery(t *testing.T) {
	r := newRetrievalRouter(NewRetrievalHandler(stubQueryEmbedder{}, &milvus.Repository{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/projects/p-1/context/similar", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"1001"`)
}
