package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type renderSection struct {
	MaxDepth int  `koanf:"max_depth" desc:"最大嵌套深度"`
	Strict   bool `koanf:"strict"    desc:"缺失变量报错"`
}

type outputSection struct {
	Dir         string `koanf:"dir"          desc:"输出目录"`
	Environment string `koanf:"environment"  desc:"目标环境"`
	ArchiveKey  string `koanf:"archive-key"  desc:"归档键"`
}

type testConfig struct {
	Name    string            `koanf:"name"    desc:"名称"`
	Timeout time.Duration     `koanf:"timeout" desc:"超时"`
	Tags    []string          `koanf:"tags"    desc:"标签"`
	Labels  map[string]string `koanf:"labels"  desc:"标签映射"`
	Render  renderSection     `koanf:"render"  desc:"渲染配置"`
	Output  outputSection     `koanf:"output"  desc:"输出配置"`
}

func defaultTestConfig() testConfig {
	return testConfig{
		Name:    "dashgen",
		Timeout: time.Second,
		Tags:    []string{},
		Labels:  map[string]string{},
		Render:  renderSection{MaxDepth: 64},
		Output:  outputSection{Dir: "dashboards"},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestEnvKeyDecoder(t *testing.T) {
	tests := []struct {
		prefix, input, want string
	}{
		{"DASHGEN_", "DASHGEN_NAME", "name"},
		{"DASHGEN_", "DASHGEN_OUTPUT_DIR", "output.dir"},
		{"DASHGEN_", "DASHGEN_LABELS_TEAM_OWNER", "labels.team.owner"},
		{"", "OUTPUT_DIR", "output.dir"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, envKeyDecoder(tt.prefix)(tt.input))
		})
	}
}

func TestCollectKoanfKeys(t *testing.T) {
	keys := collectKoanfKeys(defaultTestConfig())

	assert.Equal(t, []string{
		"name", "timeout", "tags", "labels",
		"render.max_depth", "render.strict",
		"output.dir", "output.environment", "output.archive-key",
	}, keys)
}

func TestGenerateEnvBindings(t *testing.T) {
	bindings := generateEnvBindings("DASHGEN_", []string{"render.max_depth", "output.archive-key"})

	assert.Equal(t, map[string]string{
		"DASHGEN_RENDER_MAX_DEPTH":   "render.max_depth",
		"DASHGEN_OUTPUT_ARCHIVE_KEY": "output.archive-key",
	}, bindings)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(defaultTestConfig(), WithConfigPaths("does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dashgen", cfg.Name)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, 64, cfg.Render.MaxDepth)
	assert.Equal(t, "dashboards", cfg.Output.Dir)
}

func TestLoad_FirstExistingFileWins(t *testing.T) {
	yamlPath := writeFile(t, "config.yaml", "render:\n  strict: true\noutput:\n  dir: from-yaml\n")
	jsonPath := writeFile(t, "config.json", `{"output": {"dir": "from-json"}}`)

	cfg, err := Load(defaultTestConfig(), WithConfigPaths("missing.yaml", yamlPath, jsonPath))
	require.NoError(t, err)

	assert.Equal(t, "from-yaml", cfg.Output.Dir)
	assert.True(t, cfg.Render.Strict)
	assert.Equal(t, 64, cfg.Render.MaxDepth, "unset keys keep defaults")

	cfg, err = Load(defaultTestConfig(), WithConfigPaths(jsonPath))
	require.NoError(t, err)
	assert.Equal(t, "from-json", cfg.Output.Dir)
}

func TestLoad_EnvPrefix(t *testing.T) {
	t.Setenv("DASHGEN_OUTPUT_DIR", "/srv/dashboards")
	t.Setenv("DASHGEN_RENDER_MAX_DEPTH", "8")
	t.Setenv("DASHGEN_OUTPUT_ARCHIVE_KEY", "nightly")
	t.Setenv("DASHGEN_LABELS_TEAM", "secops")
	t.Setenv("DASHGEN_UNKNOWN_THING", "ignored")

	cfg, err := Load(defaultTestConfig(), WithEnvPrefix("DASHGEN_"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/dashboards", cfg.Output.Dir)
	assert.Equal(t, 8, cfg.Render.MaxDepth)
	assert.Equal(t, "nightly", cfg.Output.ArchiveKey, "hyphenated keys map through generated bindings")
	assert.Equal(t, "secops", cfg.Labels["team"])
}

func TestLoad_EnvBindingPriority(t *testing.T) {
	path := writeFile(t, "config.yaml", `
envbind:
  SIEM_ENV: output.environment
  SIEM_DIR: output.dir
output:
  dir: from-file
`)
	t.Setenv("SIEM_ENV", "staging")
	t.Setenv("SIEM_DIR", "from-file-binding")
	t.Setenv("CI_OUTPUT_DIR", "from-code-binding")
	t.Setenv("DASHGEN_OUTPUT_ENVIRONMENT", "from-prefix")

	cfg, err := Load(defaultTestConfig(),
		WithConfigPaths(path),
		WithEnvPrefix("DASHGEN_"),
		WithEnvBindKey("envbind"),
		WithEnvBindings(map[string]string{"CI_OUTPUT_DIR": "output.dir"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Output.Environment, "file binding beats prefix")
	assert.Equal(t, "from-code-binding", cfg.Output.Dir, "code binding beats file binding")
}

func TestLoad_WithCommand(t *testing.T) {
	defaults := defaultTestConfig()
	t.Setenv("DASHGEN_OUTPUT_DIR", "from-env")

	var loaded *testConfig
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output-dir", Value: defaults.Output.Dir},
			&cli.IntFlag{Name: "render-max-depth", Value: defaults.Render.MaxDepth},
			&cli.BoolFlag{Name: "render-strict"},
			&cli.DurationFlag{Name: "timeout", Value: defaults.Timeout},
			&cli.StringSliceFlag{Name: "tags"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := Load(defaults, WithEnvPrefix("DASHGEN_"), WithCommand(cmd))
			loaded = cfg

			return err
		},
	}

	err := cmd.Run(context.Background(), []string{"test", "--render-max-depth", "3", "--tags", "a", "--tags", "b"})
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, 3, loaded.Render.MaxDepth)
	assert.Equal(t, []string{"a", "b"}, loaded.Tags)
	assert.Equal(t, "from-env", loaded.Output.Dir, "unset flags do not override env")
	assert.False(t, loaded.Render.Strict)
	assert.Equal(t, time.Second, loaded.Timeout)
}

func TestParserForPath(t *testing.T) {
	data := []byte(`{"a": 1}`)

	out, err := parserForPath("x.JSON").Unmarshal(data)
	require.NoError(t, err)
	assert.Contains(t, out, "a")

	out, err = parserForPath("x.yml").Unmarshal([]byte("a: 1\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "a")
}

func TestExampleYAML_RoundTrip(t *testing.T) {
	data := ExampleYAML(defaultTestConfig())
	path := writeFile(t, "config.example.yaml", string(data))

	assert.Contains(t, string(data), "max_depth: 64")
	assert.Contains(t, string(data), "最大嵌套深度")
	assert.Contains(t, string(data), "# 渲染配置")

	cfg, err := Load(testConfig{}, WithConfigPaths(path))
	require.NoError(t, err)
	assert.Equal(t, defaultTestConfig().Render, cfg.Render)
	assert.Equal(t, defaultTestConfig().Output, cfg.Output)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestUnknownKeys(t *testing.T) {
	valid := []string{"output.dir", "render.strict"}
	got := []string{"output.dir", "output.dirr", "envbind.SIEM_ENV", "render.strict"}

	assert.Equal(t, []string{"output.dirr"}, unknownKeys(valid, got))
}
