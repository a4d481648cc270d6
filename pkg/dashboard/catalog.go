package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
)

// 模板文件匹配顺序，同名时后者覆盖前者
var templatePatterns = []string{"*.json", "*.json.hbs", "*.hbs"}

// Catalog 模板目录
type Catalog struct {
	dir    string
	engine *tmpl.Engine
}

// NewCatalog 创建模板目录，engine 为 nil 时使用默认引擎
func NewCatalog(dir string, engine *tmpl.Engine) *Catalog {
	if engine == nil {
		engine = tmpl.New()
	}

	return &Catalog{dir: dir, engine: engine}
}

// Dir 返回模板目录路径
func (c *Catalog) Dir() string { return c.dir }

// Discover 返回 模板名→文件路径。目录不存在时返回空结果。
func (c *Catalog) Discover() (map[string]string, error) {
	found := make(map[string]string)
	if _, err := os.Stat(c.dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("Template directory does not exist", "dir", c.dir)
		return found, nil
	}

	for _, pattern := range templatePatterns {
		matches, err := filepath.Glob(filepath.Join(c.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("discover templates: %w", err)
		}
		for _, path := range matches {
			base := filepath.Base(path)
			if strings.HasSuffix(base, "_metadata.json") {
				continue
			}
			found[TemplateName(base)] = path
		}
	}

	slog.Debug("Discovered templates", "dir", c.dir, "count", len(found))

	return found, nil
}

// TemplateName 由文件名得到模板名：依次去掉 .hbs 与 .json 后缀
func TemplateName(filename string) string {
	name := strings.TrimSuffix(filename, ".hbs")
	return strings.TrimSuffix(name, ".json")
}

// IsTemplateFile 判断文件名是否会被 Discover 收录
func IsTemplateFile(filename string) bool {
	base := filepath.Base(filename)
	if strings.HasSuffix(base, "_metadata.json") {
		return false
	}

	return strings.HasSuffix(base, ".json") || strings.HasSuffix(base, ".hbs")
}

// Names 返回排序后的模板名
func (c *Catalog) Names() ([]string, error) {
	found, err := c.Discover()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	slices.Sort(names)

	return names, nil
}

// Open 读取并解析模板，不做结构校验
func (c *Catalog) Open(name string) (*Template, error) {
	found, err := c.Discover()
	if err != nil {
		return nil, err
	}

	path, ok := found[name]
	if !ok {
		names := make([]string, 0, len(found))
		for n := range found {
			names = append(names, n)
		}
		slices.Sort(names)

		return nil, fmt.Errorf("%w: '%s' (available: %s)", ErrTemplateNotFound, name, strings.Join(names, ", "))
	}

	return c.parse(name, path)
}

// Load 读取并解析模板，结构校验错误以 ErrValidation 返回
func (c *Catalog) Load(name string) (*Template, error) {
	t, err := c.Open(name)
	if err != nil {
		return nil, err
	}
	if err := t.checkError(); err != nil {
		return nil, err
	}

	return t, nil
}

// ParseFile 解析任意路径的模板文件，模板名取自文件名
func (c *Catalog) ParseFile(path string) (*Template, error) {
	return c.parse(TemplateName(filepath.Base(path)), path)
}

func (c *Catalog) parse(name, path string) (*Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}

	return Parse(name, path, content, c.engine)
}
