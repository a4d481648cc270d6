package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
)

// Info 模板描述信息，对应 template_info 段
type Info struct {
	Name        string `json:"name"                  jsonschema:"required"`
	Title       string `json:"title"                 jsonschema:"required"`
	Description string `json:"description"           jsonschema:"required"`
	Category    string `json:"category,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Parameter 模板参数声明
type Parameter struct {
	Type        string `json:"type,omitempty"        jsonschema:"enum=string,enum=number,enum=boolean,enum=array,enum=object"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Template 已解析的模板文件
type Template struct {
	Name       string
	Path       string
	Info       Info
	Parameters map[string]Parameter
	// Dashboard 为 dashboard 段原文；handlebars 模板中为默认上下文下的渲染结果
	Dashboard json.RawMessage
	// Raw 为 handlebars 模板的原始文本
	Raw        string
	Handlebars bool

	order    []string
	sections map[string]json.RawMessage
}

// ParamNames 按文件中声明的顺序返回参数名
func (t *Template) ParamNames() []string {
	return t.order
}

// Parse 解析模板文件内容。
//
// 先按 JSON 解析；失败时视为 handlebars 模板，用 DefaultContext 渲染后再解析，
// 并保留原文供生成时重新渲染。两种方式都失败时返回 ErrInvalidTemplate。
func Parse(name, path string, content []byte, engine *tmpl.Engine) (*Template, error) {
	if engine == nil {
		engine = tmpl.New()
	}

	var sections map[string]json.RawMessage
	jsonErr := json.Unmarshal(content, &sections)
	if jsonErr == nil {
		return build(name, path, sections, false)
	}

	// 声明了默认值的参数未必在 DefaultContext 中，识别阶段不用严格模式
	rendered, renderErr := engine.Lenient().Render(string(content), DefaultContext())
	if renderErr == nil {
		renderErr = json.Unmarshal([]byte(rendered), &sections)
	}
	if renderErr != nil {
		return nil, fmt.Errorf("%w: %s: JSON parse error: %v; template rendering error: %v",
			ErrInvalidTemplate, name, jsonErr, renderErr)
	}

	if _, ok := sections["template_info"]; !ok {
		title, _ := tmpl.Render("{{name|title}}", map[string]any{"name": name})
		synthesized, _ := json.Marshal(Info{
			Name:        name,
			Title:       title + " Template",
			Description: "Handlebars template: " + name,
		})
		sections["template_info"] = synthesized
	}

	t, err := build(name, path, sections, true)
	if err != nil {
		return nil, err
	}
	t.Raw = string(content)

	return t, nil
}

func build(name, path string, sections map[string]json.RawMessage, handlebars bool) (*Template, error) {
	t := &Template{
		Name:       name,
		Path:       path,
		Handlebars: handlebars,
		Parameters: map[string]Parameter{},
		Dashboard:  sections["dashboard"],
		sections:   sections,
	}

	if raw, ok := sections["template_info"]; ok {
		// 字段缺失由 Check 报告，这里只取能取到的
		_ = json.Unmarshal(raw, &t.Info)
	}

	if raw, ok := sections["parameters"]; ok && isObject(raw) {
		names, err := objectKeys(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: parameters: %v", ErrInvalidTemplate, name, err)
		}
		var params map[string]json.RawMessage
		_ = json.Unmarshal(raw, &params)
		for _, n := range names {
			var p Parameter
			dec := json.NewDecoder(bytes.NewReader(params[n]))
			dec.UseNumber()
			if !isObject(params[n]) || dec.Decode(&p) != nil {
				continue
			}
			t.Parameters[n] = p
			t.order = append(t.order, n)
		}
	}

	return t, nil
}

// Check 校验模板结构，返回错误与警告
func (t *Template) Check() (errs, warns []string) {
	info, hasInfo := t.sections["template_info"]
	if !hasInfo {
		errs = append(errs, "Missing required section: template_info")
	}
	if _, ok := t.sections["dashboard"]; !ok && !t.Handlebars {
		errs = append(errs, "Missing dashboard content")
	}

	if hasInfo {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(info, &fields); err != nil {
			errs = append(errs, "template_info section must be an object")
		} else {
			for _, f := range []string{"name", "title", "description"} {
				if _, ok := fields[f]; !ok {
					errs = append(errs, "template_info missing required field: "+f)
				}
			}
		}
	}

	raw, ok := t.sections["parameters"]
	if !ok {
		return errs, warns
	}
	if !isObject(raw) {
		return append(errs, "parameters section must be an object"), warns
	}

	names, _ := objectKeys(raw)
	var params map[string]json.RawMessage
	_ = json.Unmarshal(raw, &params)
	for _, name := range names {
		var fields map[string]json.RawMessage
		if !isObject(params[name]) || json.Unmarshal(params[name], &fields) != nil {
			warns = append(warns, fmt.Sprintf("Parameter '%s' configuration is not an object", name))
			continue
		}
		if _, ok := fields["type"]; !ok {
			warns = append(warns, fmt.Sprintf("Parameter '%s' missing type specification", name))
		}
		if _, ok := fields["default"]; !ok && t.Parameters[name].Required {
			warns = append(warns, fmt.Sprintf("Required parameter '%s' has no default value", name))
		}
	}

	return errs, warns
}

// checkError 将 Check 的错误合并为 ErrValidation
func (t *Template) checkError() error {
	errs, _ := t.Check()
	if len(errs) == 0 {
		return nil
	}

	joined := make([]error, len(errs))
	for i, msg := range errs {
		joined[i] = errors.New(msg)
	}

	return fmt.Errorf("%w: template %q: %w", ErrValidation, t.Name, errors.Join(joined...))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// objectKeys 按出现顺序返回 JSON 对象的顶层键
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}

	return keys, nil
}
