package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"worldbest-ai-api/internal/domain/entity"
)

// ContextHash 计算上下文条目集的稳定指纹。
// 序列化形式为按条目顺序拼接的 "title\ncontent" 块，
// 相同条目集必然产生相同哈希，仅用于缓存与调试关联。
func ContextHash(items []entity.ContextItem) string {
	h := sha256.New()
	for i, item := range items {
		if i > 0 {
			h.Write([]byte("\x00"))
		}
		h.Write([]byte(item.Title))
		h.Write([]byte("\n"))
		h.Write([]byte(item.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// bundleCacheKey 计算上下文包的缓存键。
// 指纹覆盖租户、项目、用户、人设、意图、显式引用与预算，
// 用户纳入指纹以避免跨协作者泄露鉴权结果。
func bundleCacheKey(in *GenerateInput, personaName string, budget int) string {
	var b strings.Builder
	b.WriteString(in.TenantID)
	b.WriteString("|")
	b.WriteString(in.ProjectID)
	b.WriteString("|")
	b.WriteString(in.UserID)
	b.WriteString("|")
	b.WriteString(personaName)
	b.WriteString("|")
	b.WriteString(string(in.Intent))
	b.WriteString("|")
	fmt.Fprintf(&b, "%d", budget)
	for _, ref := range in.ContextRefs {
		b.WriteString("|")
		b.WriteString(string(ref.Type))
		b.WriteString(":")
		b.WriteString(ref.ID)
		if len(ref.Fields) > 0 {
			b.WriteString(":")
			b.WriteString(strings.Join(ref.Fields, ","))
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return "ctx:bundle:" + hex.EncodeToString(sum[:])
}
