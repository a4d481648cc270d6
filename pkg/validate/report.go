// Package validate 在模板引擎之上提供策略性检查：语法、渲染结果与仪表盘结构。
//
// 检查结果分为错误与警告，只有错误会使 [Report.OK] 返回 false。
package validate

import "time"

// Report 一次或多次检查的结果
type Report struct {
	Errors     []string
	Warnings   []string
	RenderTime time.Duration
	Size       int
}

// OK 没有错误时返回 true
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Merge 追加 other 的错误与警告；渲染耗时与大小取非零的一方
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	if other.RenderTime != 0 {
		r.RenderTime = other.RenderTime
	}
	if other.Size != 0 {
		r.Size = other.Size
	}
}

// Policy 渲染检查的阈值
type Policy struct {
	Strict         bool
	MaxOutputBytes int
	SlowRender     time.Duration
	PreviewBytes   int
}

// DefaultPolicy 返回默认阈值
func DefaultPolicy() Policy {
	return Policy{
		Strict:         false,
		MaxOutputBytes: 100000,
		SlowRender:     time.Second,
		PreviewBytes:   200,
	}
}
