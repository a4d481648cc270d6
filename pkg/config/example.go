package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "go.yaml.in/yaml/v3"
)

const exampleHeader = "dashgen 配置示例, 复制为 config.yaml 后按需修改"

// ExampleYAML 将配置结构体渲染为带 desc 注释的 YAML 文档。
//
//	data := config.ExampleYAML(DefaultConfig())
//	os.WriteFile("config/config.example.yaml", data, 0o644)
func ExampleYAML[T any](cfg T) []byte {
	doc := mappingNode(reflect.ValueOf(cfg))
	doc.HeadComment = exampleHeader

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	_ = enc.Encode(doc)
	_ = enc.Close()

	return buf.Bytes()
}

// MarshalYAML 将配置结构体序列化为 YAML，不带注释
func MarshalYAML[T any](cfg T) []byte {
	k := koanf.New(".")
	_ = k.Load(structs.Provider(cfg, "koanf"), nil)
	data, _ := k.Marshal(yaml.Parser())

	return data
}

// MarshalJSON 将配置结构体序列化为缩进 JSON，键名取 koanf tag
func MarshalJSON[T any](cfg T) []byte {
	k := koanf.New(".")
	_ = k.Load(structs.Provider(cfg, "koanf"), nil)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	_ = enc.Encode(k.Raw())

	return buf.Bytes()
}

// mappingNode 把结构体按字段顺序转成 mapping 节点。
// 嵌套结构体和切片的注释放在键上方，标量的单行注释放在行尾。
func mappingNode(val reflect.Value) *yamlv3.Node {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!null"}
		}
		val = val.Elem()
	}

	node := &yamlv3.Node{Kind: yamlv3.MappingNode}
	typ := val.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := field.Tag.Get("koanf")
		if key == "" {
			continue
		}
		desc := field.Tag.Get("desc")
		keyNode := &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: key}

		var valNode *yamlv3.Node
		switch {
		case isNestedStruct(field.Type):
			valNode = mappingNode(val.Field(i))
			keyNode.HeadComment = "\n" + desc
		case field.Type.Kind() == reflect.Slice:
			valNode = scalarNode(val.Field(i))
			keyNode.HeadComment = "\n" + desc
		default:
			valNode = scalarNode(val.Field(i))
			if strings.Contains(desc, "\n") {
				keyNode.HeadComment = "\n" + desc
			} else {
				valNode.LineComment = desc
			}
		}
		node.Content = append(node.Content, keyNode, valNode)
	}

	return node
}

// scalarNode 将字段值转为 YAML 节点；切片和 map 递归展开
func scalarNode(val reflect.Value) *yamlv3.Node {
	switch v := val.Interface().(type) {
	case time.Duration:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: v.String()}
	case time.Time:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: v.Format(time.RFC3339)}
	}

	var value string
	switch val.Kind() {
	case reflect.String:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: val.String(), Style: yamlv3.DoubleQuotedStyle}
	case reflect.Bool:
		value = strconv.FormatBool(val.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value = strconv.FormatInt(val.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value = strconv.FormatUint(val.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		value = strconv.FormatFloat(val.Float(), 'g', -1, 64)
	case reflect.Slice:
		seq := &yamlv3.Node{Kind: yamlv3.SequenceNode}
		if val.Len() == 0 {
			seq.Style = yamlv3.FlowStyle
		}
		for j := range val.Len() {
			elem := scalarNode(val.Index(j))
			elem.Style = 0
			seq.Content = append(seq.Content, elem)
		}

		return seq
	case reflect.Map:
		m := &yamlv3.Node{Kind: yamlv3.MappingNode}
		if val.Len() == 0 {
			m.Style = yamlv3.FlowStyle
		}
		keys := val.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, k := range keys {
			m.Content = append(m.Content,
				&yamlv3.Node{Kind: yamlv3.ScalarNode, Value: fmt.Sprint(k.Interface())},
				scalarNode(val.MapIndex(k)),
			)
		}

		return m
	default:
		value = fmt.Sprint(val.Interface())
	}

	return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: value}
}

// ═══════════════════════════════════════════════════════════════════════════
// 测试辅助
// ═══════════════════════════════════════════════════════════════════════════

// ConfigTestHelper 让使用方在测试中维护示例配置文件：
//
//	var helper = config.ConfigTestHelper[Config]{
//	    ExamplePath: "config/config.example.yaml",
//	    ConfigPath:  "config/config.yaml",
//	}
//
//	func TestWriteExample(t *testing.T)    { helper.WriteExampleFile(t, DefaultConfig()) }
//	func TestConfigKeysValid(t *testing.T) { helper.ValidateKeys(t) }
type ConfigTestHelper[T any] struct {
	ExamplePath string // 相对 go.mod 所在目录
	ConfigPath  string // 相对 go.mod 所在目录
}

// WriteExampleFile 用默认配置重新生成示例文件
func (h *ConfigTestHelper[T]) WriteExampleFile(t *testing.T, defaultConfig T) {
	t.Helper()

	root, err := FindProjectRoot(1)
	if err != nil {
		t.Fatalf("无法找到项目根目录: %v", err)
	}

	out := filepath.Join(root, h.ExamplePath)
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(out, ExampleYAML(defaultConfig), 0o600); err != nil {
		t.Fatalf("写入示例文件失败: %v", err)
	}

	t.Logf("已生成配置示例文件: %s", out)
}

// ValidateKeys 检查本地配置文件里没有示例文件之外的键；配置文件不存在时跳过
func (h *ConfigTestHelper[T]) ValidateKeys(t *testing.T) {
	t.Helper()

	root, err := FindProjectRoot(1)
	if err != nil {
		t.Fatalf("无法找到项目根目录: %v", err)
	}

	configPath := filepath.Join(root, h.ConfigPath)
	if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
		t.Skipf("%s 不存在，跳过验证", h.ConfigPath)
	}

	exampleKeys, err := loadConfigKeys(filepath.Join(root, h.ExamplePath))
	if err != nil {
		t.Fatalf("无法加载 %s: %v", h.ExamplePath, err)
	}
	configKeys, err := loadConfigKeys(configPath)
	if err != nil {
		t.Fatalf("无法加载 %s: %v", h.ConfigPath, err)
	}

	for _, key := range unknownKeys(exampleKeys, configKeys) {
		t.Errorf("%s 包含无效配置项: %s", h.ConfigPath, key)
	}
}

// unknownKeys 返回 got 中不在 valid 里的键；envbind 下的键由用户自定义，不参与校验
func unknownKeys(valid, got []string) []string {
	var unknown []string
	for _, key := range got {
		if slices.Contains(valid, key) || key == "envbind" || strings.HasPrefix(key, "envbind.") {
			continue
		}
		unknown = append(unknown, key)
	}

	return unknown
}

// FindProjectRoot 从调用者源文件所在目录向上查找 go.mod。
//
// skip 为跳过的调用栈层数，0 表示调用者。
func FindProjectRoot(skip int) (string, error) {
	_, filename, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return "", errors.New("无法获取调用者文件路径")
	}

	for dir := filepath.Dir(filename); ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("未找到 go.mod")
		}
		dir = parent
	}
}

// loadConfigKeys 读取 YAML 或 JSON 文件的全部键
func loadConfigKeys(path string) ([]string, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserForPath(path)); err != nil {
		return nil, fmt.Errorf("加载文件失败: %w", err)
	}

	return k.Keys(), nil
}
