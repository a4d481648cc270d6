package dashboard

import "errors"

var (
	// ErrTemplateNotFound 模板目录中没有该名称的模板
	ErrTemplateNotFound = errors.New("template not found")
	// ErrInvalidTemplate 模板既不是合法 JSON，也无法作为 handlebars 模板渲染成 JSON
	ErrInvalidTemplate = errors.New("invalid template")
	// ErrValidation 模板结构或参数校验失败
	ErrValidation = errors.New("validation failed")
	// ErrInvalidOutput 渲染结果不是合法的仪表盘 JSON
	ErrInvalidOutput = errors.New("rendered output is not valid JSON")
)
