package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
)

// Template 对模板执行结构、语法与渲染检查，渲染使用 dashboard.SampleContext。
// 引用了既未声明为参数、也不在 dashboard.DefaultContext 中的变量时给出警告。
func Template(engine *tmpl.Engine, t *dashboard.Template, policy Policy) Report {
	var r Report
	errs, warns := t.Check()
	r.Errors = append(r.Errors, errs...)
	r.Warnings = append(r.Warnings, warns...)

	source, err := renderSource(t)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
		return r
	}
	if source == "" {
		return r
	}

	r.Warnings = append(r.Warnings, undeclared(t, source)...)
	r.Merge(Syntax(source, policy.Strict))
	r.Merge(Render(engine, source, dashboard.SampleContext(t.Parameters), policy))

	return r
}

func undeclared(t *dashboard.Template, source string) []string {
	known := dashboard.DefaultContext()
	var warns []string
	for _, name := range tmpl.References(source) {
		if _, ok := t.Parameters[name]; ok {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		warns = append(warns, fmt.Sprintf("Template references undeclared parameter: %s", name))
	}

	return warns
}

// renderSource 返回参与渲染的文本：handlebars 模板为原文，JSON 模板为缩进后的 dashboard 段
func renderSource(t *dashboard.Template) (string, error) {
	if t.Handlebars {
		return t.Raw, nil
	}
	if len(t.Dashboard) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, t.Dashboard, "", "  "); err != nil {
		return "", fmt.Errorf("dashboard section is not valid JSON: %w", err)
	}

	return buf.String(), nil
}
