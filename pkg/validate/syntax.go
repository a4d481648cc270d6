package validate

import (
	"fmt"
	"regexp"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
)

const maxComplexQueries = 10

var blockHelpers = []string{"each", "if", "unless", "with"}

var (
	blockOpens  = make(map[string]*regexp.Regexp, len(blockHelpers))
	blockCloses = make(map[string]*regexp.Regexp, len(blockHelpers))
)

func init() {
	for _, h := range blockHelpers {
		blockOpens[h] = regexp.MustCompile(`\{\{#` + h + `\s`)
		blockCloses[h] = regexp.MustCompile(`\{\{/` + h + `\}\}`)
	}
}

type pattern struct {
	re      *regexp.Regexp
	message string
}

var problematicPatterns = []pattern{
	{regexp.MustCompile(`\{\{\{[^}]*\}\}\}`), "Triple braces found - use double braces for JSON templates"},
	{regexp.MustCompile(`\{\{[^}]*\n[^}]*\}\}`), "Multi-line template expressions may cause JSON parsing issues"},
	{regexp.MustCompile(`\{\{[^}]*"[^}]*\}\}`), "Template expressions containing quotes may break JSON"},
}

var (
	complexQuery = regexp.MustCompile(`index=[^|]*\|.*?\|.*?\|`)
	wildcard     = regexp.MustCompile(`\*\s*\|`)

	slowCommands = []pattern{
		{regexp.MustCompile(`(?i)transaction\s+`), "Consider using stats instead of transaction for better performance"},
		{regexp.MustCompile(`(?i)join\s+`), "Consider using stats instead of join for better performance"},
	}
)

// Syntax 检查模板文本：占位符是否闭合、块标记是否配对，并提示容易破坏 JSON 的写法。
// strict 为 true 时额外检查 SPL 查询的性能与安全问题。
func Syntax(text string, strict bool) Report {
	var r Report

	if line, col, found := tmpl.Unterminated(text); found {
		r.Errors = append(r.Errors, fmt.Sprintf("Unterminated template expression at line %d, column %d", line, col))
	}

	for _, h := range blockHelpers {
		opens := len(blockOpens[h].FindAllStringIndex(text, -1))
		closes := len(blockCloses[h].FindAllStringIndex(text, -1))
		if opens != closes {
			r.Errors = append(r.Errors, fmt.Sprintf("Unmatched #%s blocks: %d opens, %d closes", h, opens, closes))
		}
	}

	for _, p := range problematicPatterns {
		if p.re.MatchString(text) {
			r.Warnings = append(r.Warnings, p.message)
		}
	}

	if !strict {
		return r
	}

	if n := len(complexQuery.FindAllStringIndex(text, -1)); n > maxComplexQueries {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Found %d complex queries - consider simplifying for performance", n))
	}
	if wildcard.MatchString(text) {
		r.Warnings = append(r.Warnings, "Wildcard searches found - ensure appropriate time bounds for security")
	}
	for _, p := range slowCommands {
		if p.re.MatchString(text) {
			r.Warnings = append(r.Warnings, p.message)
		}
	}

	return r
}
