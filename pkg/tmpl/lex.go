package tmpl

import (
	"regexp"
	"strings"
)

// tokenType 词法单元类型
type tokenType int

const (
	tokenText  tokenType = iota // 原样输出的文本
	tokenVar                    // {{path}} / {{path|filter}}
	tokenOpen                   // {{#each x}} / {{#if x}} / {{#unless x}}
	tokenClose                  // {{/each}} / {{/if}} / {{/unless}}
)

// blockKind 块类型
type blockKind string

const (
	blockEach   blockKind = "each"
	blockIf     blockKind = "if"
	blockUnless blockKind = "unless"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

var (
	eachHeader   = regexp.MustCompile(`^#each\s+(\w+)$`)
	ifHeader     = regexp.MustCompile(`^#if\s+([^}]+)$`)
	unlessHeader = regexp.MustCompile(`^#unless\s+([^}]+)$`)
)

// token 词法单元
//
// raw 保存占位符的完整原文，未配对的块标记回退为文本时使用。
type token struct {
	typ  tokenType
	kind blockKind
	arg  string // 块参数或变量表达式
	raw  string
	pos  int // 在模板中的字节偏移
}

// lex 将模板切分为文本和占位符。
//
// 占位符从最内层的 "{{" 开始，到其后第一个 "}}" 结束；缺少结束符时余下内容全部视为文本。
// 模板本身是 JSON，占位符前紧邻的 "{" 与单独出现的 "}}" 都属于结构字符。
func lex(text string) []token {
	var toks []token
	pos := 0
	for pos < len(text) {
		start := nextOpen(text, pos)
		if start < 0 {
			break
		}
		end := strings.Index(text[start+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		end += start + len(openDelim)

		if start > pos {
			toks = append(toks, token{typ: tokenText, raw: text[pos:start], pos: pos})
		}
		raw := text[start : end+len(closeDelim)]
		toks = append(toks, classify(raw, text[start+len(openDelim):end], start))
		pos = end + len(closeDelim)
	}
	if pos < len(text) {
		toks = append(toks, token{typ: tokenText, raw: text[pos:], pos: pos})
	}

	return toks
}

// nextOpen 返回 pos 之后第一个占位符起点。
// 连续的 "{" 中只有最后两个组成定界符，例如 {{{#if x}} 中的第一个 "{" 是 JSON 文本。
func nextOpen(text string, pos int) int {
	start := strings.Index(text[pos:], openDelim)
	if start < 0 {
		return -1
	}
	start += pos
	for start+len(openDelim) < len(text) && text[start+len(openDelim)] == '{' {
		start++
	}

	return start
}

// classify 根据占位符内容判断类型。
func classify(raw, inner string, pos int) token {
	tok := token{typ: tokenText, raw: raw, pos: pos}

	switch {
	case inner == "/each":
		tok.typ, tok.kind = tokenClose, blockEach
	case inner == "/if":
		tok.typ, tok.kind = tokenClose, blockIf
	case inner == "/unless":
		tok.typ, tok.kind = tokenClose, blockUnless
	case strings.HasPrefix(inner, "#"):
		if m := eachHeader.FindStringSubmatch(inner); m != nil {
			tok.typ, tok.kind, tok.arg = tokenOpen, blockEach, m[1]
		} else if m := ifHeader.FindStringSubmatch(inner); m != nil {
			tok.typ, tok.kind, tok.arg = tokenOpen, blockIf, strings.TrimSpace(m[1])
		} else if m := unlessHeader.FindStringSubmatch(inner); m != nil {
			tok.typ, tok.kind, tok.arg = tokenOpen, blockUnless, strings.TrimSpace(m[1])
		}
	case inner == "", strings.HasPrefix(strings.TrimLeft(inner, " \t"), "/"),
		strings.HasPrefix(strings.TrimLeft(inner, " \t"), "#"), strings.Contains(inner, "}"):
		// 空占位符、畸形块标记按文本输出
	default:
		tok.typ, tok.arg = tokenVar, inner
	}

	return tok
}

// position 将字节偏移换算为行列号（从 1 开始）。
func position(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndex(before, "\n")

	return line, col
}

// Unterminated 返回第一个缺少 "}}" 的 "{{" 的行列号，不存在时 found 为 false。
// 单独出现的 "}}" 不计入，JSON 中嵌套对象的结尾常常如此。
func Unterminated(text string) (line, col int, found bool) {
	pos := 0
	for {
		start := nextOpen(text, pos)
		if start < 0 {
			return 0, 0, false
		}
		end := strings.Index(text[start+len(openDelim):], closeDelim)
		if end < 0 {
			line, col = position(text, start)
			return line, col, true
		}
		pos = start + len(openDelim) + end + len(closeDelim)
	}
}
