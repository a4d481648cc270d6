package tmpl

import "errors"

// 模板渲染的哨兵错误，调用方通过 errors.Is 判断。
var (
	// ErrDepthExceeded 块嵌套层数超过引擎上限。
	ErrDepthExceeded = errors.New("template nesting exceeds depth limit")

	// ErrMissing 严格模式下变量路径无法解析。
	ErrMissing = errors.New("unresolved template reference")

	// ErrUnknownFilter 严格模式下使用了未知过滤器。
	ErrUnknownFilter = errors.New("unknown template filter")
)
