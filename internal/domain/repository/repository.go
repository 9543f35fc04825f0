// Package repository 定义领域仓储接口
package repository

import (
	"context"
)

// Pagination 分页参数
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Offset 计算偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// Transactor 事务管理接口
type Transactor interface {
	// WithTx 在事务中执行 fn，fn 返回错误则回滚
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxKey 上下文中事务对象的键
type TxKey struct{}
