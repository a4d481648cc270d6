package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/config"
)

var helper = config.ConfigTestHelper[Config]{
	ExamplePath: "config/config.example.yaml",
	ConfigPath:  "config/config.yaml",
}

func TestWriteExample(t *testing.T)    { helper.WriteExampleFile(t, DefaultConfig()) }
func TestConfigKeysValid(t *testing.T) { helper.ValidateKeys(t) }

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DASHGEN_OUTPUT_ENVIRONMENT", "prod")
	t.Setenv("DASHGEN_VALIDATE_SLOW_RENDER", "250ms")
	t.Setenv("DASHGEN_HISTORY_ENABLED", "false")

	cfg, err := Load(nil, "dashgen-test", config.WithConfigPaths())
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Output.Environment)
	assert.Equal(t, 250*time.Millisecond, cfg.Validate.SlowRender)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, DefaultConfig().Templates, cfg.Templates)
}
