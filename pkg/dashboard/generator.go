package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/natefinch/atomic"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
)

// 元数据中的固定值
const (
	GeneratedBy   = "dashgen dashboard generator"
	SplunkVersion = "9.0+"
	DashboardType = "splunk_dashboard_studio"

	defaultTemplateVersion = "1.0.0"
	defaultPreviewBytes    = 200
)

// Metadata 与仪表盘一同写出的生成记录
type Metadata struct {
	TemplateUsed    string         `json:"template_used"`
	TemplateVersion string         `json:"template_version"`
	GeneratedAt     time.Time      `json:"generated_at"`
	GeneratedBy     string         `json:"generated_by"`
	Parameters      map[string]any `json:"parameters"`
	SplunkVersion   string         `json:"splunk_version"`
	DashboardType   string         `json:"dashboard_type"`
}

// Result Generate 的产出
type Result struct {
	DashboardPath string
	MetadataPath  string
	Metadata      Metadata
}

// Output 已渲染但尚未写盘的仪表盘
type Output struct {
	Template  *Template
	Params    map[string]any
	Dashboard []byte
	Filename  string
}

// Recorder 记录每次生成，由 history.Store 实现
type Recorder interface {
	Record(ctx context.Context, meta Metadata, dashboardPath string) error
}

// ═══════════════════════════════════════════════════════════════════════════
// Generator
// ═══════════════════════════════════════════════════════════════════════════

// Generator 从模板目录生成仪表盘
type Generator struct {
	catalog      *Catalog
	engine       *tmpl.Engine
	recorder     Recorder
	now          func() time.Time
	previewBytes int
}

// GeneratorOption Generator 配置选项
type GeneratorOption func(*Generator)

// WithEngine 指定渲染引擎
func WithEngine(engine *tmpl.Engine) GeneratorOption {
	return func(g *Generator) {
		if engine != nil {
			g.engine = engine
		}
	}
}

// WithRecorder 指定生成记录器
func WithRecorder(r Recorder) GeneratorOption {
	return func(g *Generator) { g.recorder = r }
}

// WithClock 替换时间来源
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithPreviewBytes 设置渲染失败时附带的输出预览长度
func WithPreviewBytes(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.previewBytes = n
		}
	}
}

// NewGenerator 创建生成器
func NewGenerator(catalog *Catalog, opts ...GeneratorOption) *Generator {
	g := &Generator{
		catalog:      catalog,
		engine:       catalog.engine,
		now:          time.Now,
		previewBytes: defaultPreviewBytes,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Render 以 ctx 渲染模板的 dashboard 部分，返回 2 空格缩进的 JSON
func (g *Generator) Render(t *Template, ctx map[string]any) ([]byte, error) {
	var source string
	if t.Handlebars {
		source = t.Raw
	} else {
		var buf bytes.Buffer
		if err := json.Indent(&buf, t.Dashboard, "", "  "); err != nil {
			return nil, fmt.Errorf("%w: %s: dashboard section: %v", ErrInvalidTemplate, t.Name, err)
		}
		source = buf.String()
	}

	start := time.Now()
	rendered, err := g.engine.Render(source, ctx)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name, err)
	}
	slog.Debug("Rendered template", "template", t.Name, "elapsed", time.Since(start))

	dashboard := json.RawMessage(rendered)
	if t.Handlebars {
		var sections map[string]json.RawMessage
		if err := json.Unmarshal(dashboard, &sections); err != nil {
			return nil, g.invalidOutput(t, rendered, err)
		}
		d, ok := sections["dashboard"]
		if !ok {
			return nil, fmt.Errorf("%w: %s: rendered template has no dashboard section", ErrInvalidOutput, t.Name)
		}
		dashboard = d
	}

	var out bytes.Buffer
	if err := json.Indent(&out, dashboard, "", "  "); err != nil {
		return nil, g.invalidOutput(t, rendered, err)
	}

	return out.Bytes(), nil
}

func (g *Generator) invalidOutput(t *Template, rendered string, err error) error {
	return fmt.Errorf("%w: %s: %v (output: %s)", ErrInvalidOutput, t.Name, err, Preview(rendered, g.previewBytes))
}

// Build 加载模板、补全参数并渲染，不写文件
func (g *Generator) Build(name string, params map[string]any) (*Output, error) {
	t, err := g.catalog.Load(name)
	if err != nil {
		return nil, err
	}

	resolved, err := t.Resolve(params, g.engine)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}

	dashboard, err := g.Render(t, resolved)
	if err != nil {
		return nil, err
	}

	title, _ := resolved["dashboard_title"].(string)
	filename := SafeFilename(title)
	if filename == "" {
		filename = SafeFilename(name)
	}
	if filename == "" {
		filename = "dashboard"
	}

	return &Output{Template: t, Params: resolved, Dashboard: dashboard, Filename: filename}, nil
}

// Generate 生成仪表盘及其元数据文件并写入 outDir，两者都以原子方式写入
func (g *Generator) Generate(ctx context.Context, name string, params map[string]any, outDir string) (*Result, error) {
	out, err := g.Build(name, params)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	version := out.Template.Info.Version
	if version == "" {
		version = defaultTemplateVersion
	}
	res := &Result{
		DashboardPath: filepath.Join(outDir, out.Filename+".json"),
		MetadataPath:  filepath.Join(outDir, out.Filename+"_metadata.json"),
		Metadata: Metadata{
			TemplateUsed:    name,
			TemplateVersion: version,
			GeneratedAt:     g.now(),
			GeneratedBy:     GeneratedBy,
			Parameters:      out.Params,
			SplunkVersion:   SplunkVersion,
			DashboardType:   DashboardType,
		},
	}

	if err := writeFile(res.DashboardPath, append(out.Dashboard, '\n')); err != nil {
		return nil, err
	}

	meta, err := json.MarshalIndent(res.Metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if err := writeFile(res.MetadataPath, append(meta, '\n')); err != nil {
		return nil, err
	}

	slog.Info("Dashboard generated", "template", name, "path", res.DashboardPath)

	if g.recorder != nil {
		if err := g.recorder.Record(ctx, res.Metadata, res.DashboardPath); err != nil {
			slog.Warn("Failed to record generation history", "template", name, "error", err)
		}
	}

	return res, nil
}

func writeFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	underscores = regexp.MustCompile(`_+`)
)

// SafeFilename 将标题转为文件名：小写，非 [a-zA-Z0-9_-] 字符替换为 _，合并连续 _ 并去掉首尾 _
func SafeFilename(title string) string {
	s := unsafeChars.ReplaceAllString(strings.ToLower(title), "_")
	s = underscores.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}

// OutputDir 按环境布局选择输出目录：
// <environmentsDir>/<environment> 存在时输出到其下的 dashboards/generated，否则使用 base
func OutputDir(base, environmentsDir, environment string) string {
	if environment == "" {
		return base
	}

	envDir := filepath.Join(environmentsDir, environment)
	if info, err := os.Stat(envDir); err == nil && info.IsDir() {
		return filepath.Join(envDir, "dashboards", "generated")
	}

	return base
}

// Preview 截取前 n 字节用于错误信息，不截断多字节字符
func Preview(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}

	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + "..."
}
