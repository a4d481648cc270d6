package tmpl

import (
	"fmt"
	"maps"
	"strings"
)

// DefaultMaxDepth 默认的块嵌套层数上限
const DefaultMaxDepth = 64

// ═══════════════════════════════════════════════════════════════════════════
// 引擎
// ═══════════════════════════════════════════════════════════════════════════

// Engine 模板渲染引擎。
//
// 创建后不可变，可在多个 goroutine 中并发调用 Render。
type Engine struct {
	maxDepth int
	strict   bool
}

// Option 引擎选项
type Option func(*Engine)

// WithMaxDepth 设置块嵌套层数上限，n <= 0 时使用 DefaultMaxDepth。
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithStrict 启用严格模式：无法解析的变量返回 ErrMissing，未知过滤器返回 ErrUnknownFilter。
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// New 创建渲染引擎
func New(opts ...Option) *Engine {
	e := &Engine{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Lenient 返回深度上限相同、关闭严格模式的引擎
func (e *Engine) Lenient() *Engine {
	return &Engine{maxDepth: e.maxDepth}
}

var defaultEngine = New()

// Render 使用默认引擎渲染模板，参见 [Engine.Render]。
func Render(text string, data map[string]any) (string, error) {
	return defaultEngine.Render(text, data)
}

// Render 以 data 为上下文渲染模板。
//
// 处理顺序等价于：先展开 #each，再展开 #if、#unless，最后替换变量。
// 块内容以（迭代时扩充后的）上下文递归渲染。替换进输出的值不会再被当作模板解析。
//
// 缺失变量、假条件、未知过滤器都降级为空输出或原值，不返回错误；
// 仅嵌套过深以及严格模式下的缺失引用会返回错误。data 不会被修改。
func (e *Engine) Render(text string, data map[string]any) (string, error) {
	nodes, err := parse(text, e.maxDepth)
	if err != nil {
		return "", err
	}
	if data == nil {
		data = map[string]any{}
	}

	r := &renderer{engine: e, text: text}
	var b strings.Builder
	b.Grow(len(text))
	if err := r.exec(&b, nodes, data); err != nil {
		return "", err
	}

	return b.String(), nil
}

// renderer 单次渲染的状态
type renderer struct {
	engine *Engine
	text   string
}

func (r *renderer) exec(b *strings.Builder, nodes []node, data map[string]any) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *textNode:
			b.WriteString(n.text)
		case *varNode:
			s, err := r.variable(n, data)
			if err != nil {
				return err
			}
			b.WriteString(s)
		case *blockNode:
			if err := r.block(b, n, data); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *renderer) block(b *strings.Builder, n *blockNode, data map[string]any) error {
	switch n.kind {
	case blockEach:
		items, ok := sequence(data[n.arg])
		if !ok {
			return nil
		}
		for i, item := range items {
			scope := maps.Clone(data)
			scope["this"] = item
			scope["@index"] = i
			scope["@first"] = i == 0
			scope["@last"] = i == len(items)-1
			if err := r.exec(b, n.body, scope); err != nil {
				return err
			}
		}
	case blockIf, blockUnless:
		v, ok := lookup(data, n.arg)
		if (ok && truthy(v)) == (n.kind == blockIf) {
			return r.exec(b, n.body, data)
		}
	}

	return nil
}

func (r *renderer) variable(n *varNode, data map[string]any) (string, error) {
	path, filterExpr, hasFilter := splitExpr(n.expr)
	v, ok := lookup(data, path)
	if !ok && r.engine.strict {
		line, col := position(r.text, n.pos)
		return "", fmt.Errorf("%w: %q at line %d, column %d", ErrMissing, path, line, col)
	}
	if !hasFilter {
		return stringify(v), nil
	}

	s, known := applyFilter(v, filterExpr)
	if !known && r.engine.strict {
		line, col := position(r.text, n.pos)
		return "", fmt.Errorf("%w: %q at line %d, column %d", ErrUnknownFilter, filterExpr, line, col)
	}

	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 引用分析
// ═══════════════════════════════════════════════════════════════════════════

// References 返回模板引用的顶层上下文名称，按首次出现顺序去重。
//
// 包括变量路径的第一段以及 #each、#if、#unless 的键；this 和 @ 开头的迭代变量除外。
// 只做词法分析，不执行渲染。
func References(text string) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(path string) {
		root, _, _ := strings.Cut(strings.TrimSpace(path), ".")
		if root == "" || root == "this" || strings.HasPrefix(root, "@") || seen[root] {
			return
		}
		seen[root] = true
		names = append(names, root)
	}

	for _, tok := range lex(text) {
		switch tok.typ {
		case tokenOpen:
			add(tok.arg)
		case tokenVar:
			path, _, _ := splitExpr(tok.arg)
			add(path)
		}
	}

	return names
}
