package tmpl

import "fmt"

// node 语法树节点：*textNode、*varNode 或 *blockNode。
type node interface{}

type textNode struct {
	text string
}

type varNode struct {
	expr string
	pos  int
}

type blockNode struct {
	kind blockKind
	arg  string
	body []node
}

// frame 解析栈中尚未闭合的块
type frame struct {
	open token
	body []node
}

// parse 将词法单元组装为块树。
//
// 闭合标记与最近的同类未闭合块配对，中间未闭合的块及其内容回退为文本；
// 没有可配对块的闭合标记、直到末尾仍未闭合的块同样回退为文本。
// 嵌套层数超过 maxDepth 时返回 ErrDepthExceeded。
func parse(text string, maxDepth int) ([]node, error) {
	root := &frame{}
	stack := []*frame{root}

	for _, tok := range lex(text) {
		top := stack[len(stack)-1]
		switch tok.typ {
		case tokenText:
			top.body = appendText(top.body, tok.raw)
		case tokenVar:
			top.body = append(top.body, &varNode{expr: tok.arg, pos: tok.pos})
		case tokenOpen:
			if maxDepth > 0 && len(stack) > maxDepth {
				line, col := position(text, tok.pos)
				return nil, fmt.Errorf("%w: %d levels at line %d, column %d (%s)",
					ErrDepthExceeded, maxDepth, line, col, tok.raw)
			}
			stack = append(stack, &frame{open: tok})
		case tokenClose:
			idx := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].open.kind == tok.kind {
					idx = i
					break
				}
			}
			if idx < 0 {
				top.body = appendText(top.body, tok.raw)
				continue
			}
			for len(stack)-1 > idx {
				stack = unwind(stack)
			}
			closed := stack[idx]
			stack = stack[:idx]
			parent := stack[len(stack)-1]
			parent.body = append(parent.body, &blockNode{
				kind: closed.open.kind,
				arg:  closed.open.arg,
				body: closed.body,
			})
		}
	}

	for len(stack) > 1 {
		stack = unwind(stack)
	}

	return root.body, nil
}

// unwind 弹出栈顶未闭合的块，将其开始标记和内容作为文本并入父级。
func unwind(stack []*frame) []*frame {
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	parent := stack[len(stack)-1]
	parent.body = appendText(parent.body, top.open.raw)
	for _, n := range top.body {
		if t, ok := n.(*textNode); ok {
			parent.body = appendText(parent.body, t.text)
			continue
		}
		parent.body = append(parent.body, n)
	}

	return stack
}

// appendText 追加文本，与前一个文本节点合并。
func appendText(body []node, text string) []node {
	if text == "" {
		return body
	}
	if n := len(body); n > 0 {
		if t, ok := body[n-1].(*textNode); ok {
			t.text += text
			return body
		}
	}

	return append(body, &textNode{text: text})
}
