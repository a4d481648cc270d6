package tmpl

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ═══════════════════════════════════════════════════════════════════════════
// 过滤器 (固定集合，不支持自定义)
// ═══════════════════════════════════════════════════════════════════════════

// filter 过滤器定义
type filter struct {
	args bool // 是否接受单引号参数
	fn   func(v any, args []string) (string, bool)
}

// filters 内置过滤器表
var filters = map[string]filter{
	"title":   {fn: titleFilter},
	"upper":   {fn: func(v any, _ []string) (string, bool) { return strings.ToUpper(stringify(v)), true }},
	"lower":   {fn: func(v any, _ []string) (string, bool) { return strings.ToLower(stringify(v)), true }},
	"length":  {fn: lengthFilter},
	"json":    {fn: jsonFilter},
	"replace": {args: true, fn: replaceFilter},
}

var quotedArg = regexp.MustCompile(`^'([^']*)'\s*`)

// splitExpr 在第一个 "|" 处拆分变量表达式。
func splitExpr(expr string) (path, filterExpr string, ok bool) {
	path, filterExpr, ok = strings.Cut(expr, "|")
	return strings.TrimSpace(path), strings.TrimSpace(filterExpr), ok
}

// applyFilter 执行过滤器表达式 "name" 或 "name 'a' 'b'"。
//
// 第二个返回值为 false 表示过滤器未知（包括链式写法和多余参数），
// 此时调用方按原值字符串化输出。
func applyFilter(v any, expr string) (string, bool) {
	name, rest, _ := strings.Cut(expr, " ")
	rest = strings.TrimSpace(rest)

	f, ok := filters[name]
	if !ok {
		return stringify(v), false
	}
	if !f.args {
		if rest != "" {
			return stringify(v), false
		}
		return f.fn(v, nil)
	}

	return f.fn(v, quotedArgs(rest))
}

// quotedArgs 依次解析开头的单引号参数，最多两个。
func quotedArgs(s string) []string {
	var args []string
	for len(args) < 2 {
		m := quotedArg.FindStringSubmatch(s)
		if m == nil {
			break
		}
		args = append(args, m[1])
		s = s[len(m[0]):]
	}

	return args
}

// titleFilter 单词首字母大写、其余字母小写；任何非字母字符都作为单词边界。
func titleFilter(v any, _ []string) (string, bool) {
	s := stringify(v)
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}

	return b.String(), true
}

// lengthFilter 字符串返回字符数，序列和映射返回元素数，其他类型返回 0。
func lengthFilter(v any, _ []string) (string, bool) {
	if s, ok := v.(string); ok {
		return strconv.Itoa(utf8.RuneCountInString(s)), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return strconv.Itoa(rv.Len()), true
	default:
		return "0", true
	}
}

// jsonFilter 输出值的 JSON 序列化；无法序列化时退回字符串化。
func jsonFilter(v any, _ []string) (string, bool) {
	b, err := marshal(v)
	if err != nil {
		return stringify(v), true
	}

	return string(b), true
}

// replaceFilter 字面替换，第二个参数缺省为空字符串；缺少参数时视为未知过滤器。
func replaceFilter(v any, args []string) (string, bool) {
	if len(args) == 0 {
		return stringify(v), false
	}
	repl := ""
	if len(args) > 1 {
		repl = args[1]
	}

	return strings.ReplaceAll(stringify(v), args[0], repl), true
}
