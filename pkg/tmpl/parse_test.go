package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	toks := lex(`{"a": {{x|upper}}}{{#each items}}{{/each}}{{#if  ok }}{{/if}}{{#with y}}`)
	require.Len(t, toks, 8)

	assert.Equal(t, tokenText, toks[0].typ)
	assert.Equal(t, `{"a": `, toks[0].raw)
	assert.Equal(t, tokenVar, toks[1].typ)
	assert.Equal(t, "x|upper", toks[1].arg)
	assert.Equal(t, tokenText, toks[2].typ)
	assert.Equal(t, "}", toks[2].raw)
	assert.Equal(t, tokenOpen, toks[3].typ)
	assert.Equal(t, blockEach, toks[3].kind)
	assert.Equal(t, "items", toks[3].arg)
	assert.Equal(t, tokenClose, toks[4].typ)
	assert.Equal(t, tokenOpen, toks[5].typ)
	assert.Equal(t, "ok", toks[5].arg, "if argument is trimmed")
	assert.Equal(t, tokenClose, toks[6].typ)
	assert.Equal(t, tokenText, toks[7].typ, "unsupported helpers are literal")
}

func TestLex_BraceBeforePlaceholder(t *testing.T) {
	toks := lex(`{{{{#if on}}x{{/if}}`)
	require.Len(t, toks, 4)

	assert.Equal(t, tokenText, toks[0].typ)
	assert.Equal(t, "{{", toks[0].raw)
	assert.Equal(t, tokenOpen, toks[1].typ)
	assert.Equal(t, "on", toks[1].arg)
	assert.Equal(t, 2, toks[1].pos)
	assert.Equal(t, tokenClose, toks[3].typ)
}

func TestParse_InterleavedBlocks(t *testing.T) {
	// {{/each}} 关闭 each 时，内部未闭合的 if 回退为文本
	nodes, err := parse("{{#each xs}}{{#if a}}b{{/each}}{{/if}}", 0)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	each, ok := nodes[0].(*blockNode)
	require.True(t, ok)
	assert.Equal(t, blockEach, each.kind)
	require.Len(t, each.body, 1)
	assert.Equal(t, "{{#if a}}b", each.body[0].(*textNode).text)
	assert.Equal(t, "{{/if}}", nodes[1].(*textNode).text)
}

func TestPosition(t *testing.T) {
	line, col := position("ab\ncd\nef", 7)
	assert.Equal(t, 3, line)
	assert.Equal(t, 2, col)

	line, col = position("abc", 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}

func TestUnterminated(t *testing.T) {
	_, _, found := Unterminated(`{"a": {"b": "{{x}}"}}`)
	assert.False(t, found, "JSON closing braces are not placeholders")

	_, _, found = Unterminated(`{"inputs": {{{#if on}}"a": 1{{/if}}}}`)
	assert.False(t, found, "a JSON brace before a placeholder is not part of it")

	line, col, found := Unterminated("{{a}}\n  {{b")
	assert.True(t, found)
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)
}
