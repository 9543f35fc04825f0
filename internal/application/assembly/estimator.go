// Package assembly 实现 Token 预算约束下的上下文组装引擎
package assembly

import (
	"unicode/utf8"
)

// EstimateTokens 以 ceil(字符数/4) 估算文本 Token 数。
// 纯启发式，保证确定性与单调性，不对任何具体模型分词器的精确性负责。
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
