package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
)

// Resolve 返回补全后的参数副本：
//   - 按声明类型转换已提供的值 (number / boolean / array)
//   - 缺失参数取默认值，含 {{ 的字符串默认值以当前已构建的上下文渲染
//   - 必填参数既未提供也无默认值时报错
//
// 所有问题合并后以 ErrValidation 返回；params 不会被修改。
func (t *Template) Resolve(params map[string]any, engine *tmpl.Engine) (map[string]any, error) {
	if engine == nil {
		engine = tmpl.New()
	}

	ctx := make(map[string]any, len(params)+len(t.order))
	maps.Copy(ctx, params)

	var errs []error
	for _, name := range t.order {
		v, ok := ctx[name]
		if !ok {
			continue
		}
		coerced, err := coerce(t.Parameters[name].Type, v)
		if err != nil {
			errs = append(errs, fmt.Errorf("parameter '%s' %w", name, err))
			continue
		}
		ctx[name] = coerced
	}

	for _, name := range t.order {
		if _, ok := ctx[name]; ok {
			continue
		}
		p := t.Parameters[name]
		// 必填参数有默认值即视为已提供，命令行不交互询问
		if p.Default == nil {
			if p.Required {
				errs = append(errs, fmt.Errorf("required parameter '%s' not provided", name))
			}
			continue
		}

		value := p.Default
		if s, isString := value.(string); isString && strings.Contains(s, "{{") {
			rendered, err := engine.Render(s, ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("parameter '%s' default: %w", name, err))
				continue
			}
			value = rendered
		}
		ctx[name] = value
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}

	return ctx, nil
}

func coerce(typ string, v any) (any, error) {
	switch typ {
	case "number":
		switch x := v.(type) {
		case json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return x, nil
		case string:
			s := strings.TrimSpace(x)
			if strings.Contains(s, ".") {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					return f, nil
				}
			} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}

		return nil, errors.New("must be a number")
	case "boolean":
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "true", "yes", "1", "on":
				return true, nil
			}

			return false, nil
		}

		return nil, errors.New("must be a boolean")
	case "array":
		if s, ok := v.(string); ok {
			parts := strings.Split(s, ",")
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = strings.TrimSpace(p)
			}

			return out, nil
		}
		if rv := reflect.ValueOf(v); v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			return v, nil
		}

		return nil, errors.New("must be an array")
	}

	return v, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 参数文件
// ═══════════════════════════════════════════════════════════════════════════

// LoadParams 读取参数文件，按扩展名支持 JSON、YAML 与 TOML
func LoadParams(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parser = kjson.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".toml":
		parser = tomlParser{}
	default:
		return nil, fmt.Errorf("unsupported params file format: %s", path)
	}

	// 参数名不含层级，使用不会出现在键中的分隔符避免拆分
	k := koanf.New("\x00")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("parse params file %s: %w", path, err)
	}

	return k.Raw(), nil
}

// tomlParser 以 BurntSushi/toml 实现 koanf.Parser
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]any, error) {
	out := map[string]any{}
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (tomlParser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ParseAssignments 解析 key=value 形式的参数。
// 以 [ 或 { 开头的值按 JSON 解析，其余保留为字符串，由 Resolve 按声明类型转换。
func ParseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", pair)
		}

		if strings.HasPrefix(value, "[") || strings.HasPrefix(value, "{") {
			var decoded any
			if err := json.Unmarshal([]byte(value), &decoded); err == nil {
				out[key] = decoded
				continue
			}
		}
		out[key] = value
	}

	return out, nil
}
