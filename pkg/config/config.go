// Author: lwmacct (https://github.com/lwmacct)
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// DefaultPaths 返回默认配置文件搜索路径
// appName 可选，若提供则包含当前目录、用户主目录和系统配置目录下的应用专属文件
func DefaultPaths(appName ...string) []string {
	paths := []string{
		"config.yaml",
		"config/config.yaml",
	}

	if len(appName) > 0 && appName[0] != "" {
		name := appName[0]
		paths = append(paths, "."+name+".yaml")
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, "."+name+".yaml"))
		}
		paths = append(paths, "/etc/"+name+"/config.yaml")
	}

	return paths
}

// ═══════════════════════════════════════════════════════════════════════════
// 选项
// ═══════════════════════════════════════════════════════════════════════════

type options struct {
	configPaths []string
	envPrefix   string
	envBindKey  string
	envBindings map[string]string
	cmd         *cli.Command
}

// Option 配置加载选项
type Option func(*options)

// WithConfigPaths 设置配置文件搜索路径，找到第一个存在的文件即停止
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = append(o.configPaths, paths...)
	}
}

// WithEnvPrefix 启用带前缀的环境变量，如 DASHGEN_OUTPUT_DIR → output.dir
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithEnvBindKey 从配置文件的指定键读取 环境变量→配置键 绑定
func WithEnvBindKey(key string) Option {
	return func(o *options) {
		o.envBindKey = key
	}
}

// WithEnvBinding 绑定单个环境变量到配置键
func WithEnvBinding(envVar, koanfKey string) Option {
	return func(o *options) {
		if o.envBindings == nil {
			o.envBindings = make(map[string]string)
		}
		o.envBindings[envVar] = koanfKey
	}
}

// WithEnvBindings 批量绑定环境变量到配置键
func WithEnvBindings(bindings map[string]string) Option {
	return func(o *options) {
		for envVar, key := range bindings {
			WithEnvBinding(envVar, key)(o)
		}
	}
}

// WithCommand 使用 CLI flags 覆盖配置（仅用户明确指定的 flag）
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 加载
// ═══════════════════════════════════════════════════════════════════════════

// Load 加载配置，按优先级合并 (从低到高)：
//  1. 默认值 - defaultConfig
//  2. 配置文件 - WithConfigPaths，找到第一个即停止
//  3. 环境变量(前缀) - WithEnvPrefix
//  4. 环境变量(绑定) - WithEnvBindKey(配置文件) < WithEnvBinding(代码)
//  5. CLI flags - WithCommand
//
// 泛型参数 T 为配置结构体类型，必须使用 koanf tag 标记字段。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	// 1️⃣ 默认值
	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// 2️⃣ 配置文件
	loadConfigFile(k, o.configPaths)

	keys := collectKoanfKeys(defaultConfig)

	// 3️⃣ 环境变量(前缀)
	if o.envPrefix != "" {
		if err := k.Load(confmap.Provider(prefixedEnv(o.envPrefix, keys), "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load env config: %w", err)
		}
	}

	// 4️⃣ 环境变量(绑定)，代码绑定覆盖配置文件绑定
	bindings := make(map[string]string)
	if o.envBindKey != "" {
		for envVar, key := range k.StringMap(o.envBindKey) {
			bindings[envVar] = key
		}
	}
	if len(bindings) > 0 {
		if err := k.Load(confmap.Provider(boundEnv(bindings), "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load env bindings: %w", err)
		}
	}
	if len(o.envBindings) > 0 {
		if err := k.Load(confmap.Provider(boundEnv(o.envBindings), "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load env bindings: %w", err)
		}
	}

	// 5️⃣ CLI flags
	if o.cmd != nil {
		applyCLIFlags(o.cmd, k, reflect.TypeOf(defaultConfig), "")
	}

	var cfg T
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// loadConfigFile 按顺序搜索配置文件，加载第一个成功解析的文件
func loadConfigFile(k *koanf.Koanf, paths []string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), parserForPath(path)); err != nil {
			slog.Warn("Failed to parse config file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded config from file", "path", path)
		return
	}
	slog.Debug("No config file found, using defaults")
}

// parserForPath 根据扩展名选择解析器，默认 YAML
func parserForPath(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Parser()
	}

	return yaml.Parser()
}

// ═══════════════════════════════════════════════════════════════════════════
// 环境变量
// ═══════════════════════════════════════════════════════════════════════════

// envKeyDecoder 将带前缀的环境变量名解码为 koanf key：去前缀、小写、_ 转为 .
func envKeyDecoder(prefix string) func(string) string {
	return func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "_", ".")
	}
}

// generateEnvBindings 为所有 koanf key 生成 前缀环境变量名→key 的绑定，. 和 - 都转为 _
func generateEnvBindings(prefix string, koanfKeys []string) map[string]string {
	bindings := make(map[string]string, len(koanfKeys))
	replacer := strings.NewReplacer(".", "_", "-", "_")
	for _, key := range koanfKeys {
		bindings[prefix+strings.ToUpper(replacer.Replace(key))] = key
	}

	return bindings
}

// prefixedEnv 收集带前缀的环境变量。
//
// 优先使用自动生成的绑定（支持含连字符的 key）；其余变量按 envKeyDecoder 解码，
// 仅当解码结果落在某个 map 类型字段之下时才采用。
func prefixedEnv(prefix string, keys []string) map[string]any {
	bindings := generateEnvBindings(prefix, keys)
	decode := envKeyDecoder(prefix)
	values := make(map[string]any)

	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		if key, bound := bindings[name]; bound {
			values[key] = value
			continue
		}
		decoded := decode(name)
		for _, key := range keys {
			if strings.HasPrefix(decoded, key+".") {
				values[decoded] = value
				break
			}
		}
	}

	return values
}

// boundEnv 读取绑定的环境变量，未设置的跳过
func boundEnv(bindings map[string]string) map[string]any {
	values := make(map[string]any)
	for envVar, key := range bindings {
		if value, ok := os.LookupEnv(envVar); ok {
			values[key] = value
		}
	}

	return values
}

// collectKoanfKeys 递归收集结构体的叶子 koanf key，time.Duration、time.Time 和 map 视为叶子
func collectKoanfKeys[T any](cfg T) []string {
	var keys []string
	collectKeysRecursive(reflect.TypeOf(cfg), "", &keys)

	return keys
}

func collectKeysRecursive(typ reflect.Type, prefix string, keys *[]string) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := field.Tag.Get("koanf")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if isNestedStruct(field.Type) {
			collectKeysRecursive(field.Type, key, keys)
			continue
		}
		*keys = append(*keys, key)
	}
}

func isNestedStruct(typ reflect.Type) bool {
	return typ.Kind() == reflect.Struct &&
		typ != reflect.TypeFor[time.Duration]() &&
		typ != reflect.TypeFor[time.Time]()
}

// ═══════════════════════════════════════════════════════════════════════════
// CLI flags
// ═══════════════════════════════════════════════════════════════════════════

// applyCLIFlags 通过反射将用户明确指定的 CLI flags 应用到 koanf 实例。
//
// koanf key 中的 . 转为 -，例如：
//   - output.dir → --output-dir
//   - render.max_depth → --render-max_depth，也接受 --render-max-depth
func applyCLIFlags(cmd *cli.Command, k *koanf.Koanf, typ reflect.Type, prefix string) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := field.Tag.Get("koanf")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		if isNestedStruct(field.Type) {
			applyCLIFlags(cmd, k, field.Type, key)
			continue
		}

		flag, ok := setFlagName(cmd, key)
		if !ok {
			continue
		}
		setCLIFlagValue(cmd, k, key, flag, field.Type)
	}
}

// setFlagName 按 kebab-case、全 kebab-case、点号的顺序查找用户设置过的 flag
func setFlagName(cmd *cli.Command, key string) (string, bool) {
	kebab := strings.ReplaceAll(key, ".", "-")
	candidates := []string{kebab, strings.ReplaceAll(kebab, "_", "-"), key}
	for _, name := range candidates {
		if cmd.IsSet(name) {
			return name, true
		}
	}

	return "", false
}

// setCLIFlagValue 根据字段类型从 CLI 获取值并设置到 koanf
func setCLIFlagValue(cmd *cli.Command, k *koanf.Koanf, key, flag string, fieldType reflect.Type) {
	switch fieldType {
	case reflect.TypeFor[time.Duration]():
		_ = k.Set(key, cmd.Duration(flag))
		return
	case reflect.TypeFor[time.Time]():
		_ = k.Set(key, cmd.Timestamp(flag))
		return
	}

	switch fieldType.Kind() {
	case reflect.String:
		_ = k.Set(key, cmd.String(flag))
	case reflect.Bool:
		_ = k.Set(key, cmd.Bool(flag))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_ = k.Set(key, cmd.Int(flag))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_ = k.Set(key, cmd.Uint(flag))
	case reflect.Float32, reflect.Float64:
		_ = k.Set(key, cmd.Float64(flag))
	case reflect.Slice:
		switch fieldType.Elem().Kind() {
		case reflect.String:
			_ = k.Set(key, cmd.StringSlice(flag))
		case reflect.Int:
			_ = k.Set(key, cmd.IntSlice(flag))
		case reflect.Float64:
			_ = k.Set(key, cmd.Float64Slice(flag))
		}
	case reflect.Map:
		if fieldType.Key().Kind() == reflect.String && fieldType.Elem().Kind() == reflect.String {
			_ = k.Set(key, cmd.StringMap(flag))
		}
	}
}
