package dashboard

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const typedTemplate = `{
  "template_info": {"name": "typed", "title": "Typed", "description": "typed params"},
  "parameters": {
    "threshold": {"type": "number"},
    "ratio":     {"type": "number"},
    "enabled":   {"type": "boolean"},
    "indexes":   {"type": "array"},
    "owner":     {"type": "string", "required": true},
    "label":     {"type": "string", "default": "{{owner}}-{{ENV_NAME}}"},
    "limit":     {"type": "number", "default": 10}
  },
  "dashboard": {}
}`

func mustParse(t *testing.T, content string) *Template {
	t.Helper()
	tpl, err := Parse("typed", "typed.json", []byte(content), nil)
	require.NoError(t, err)

	return tpl
}

func TestResolve_Coercion(t *testing.T) {
	tpl := mustParse(t, typedTemplate)
	params := map[string]any{
		"ENV_NAME":  "prod",
		"threshold": "60",
		"ratio":     "0.5",
		"enabled":   "Yes",
		"indexes":   "firewall, ids ,proxy",
		"owner":     "secops",
	}

	got, err := tpl.Resolve(params, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(60), got["threshold"])
	assert.Equal(t, 0.5, got["ratio"])
	assert.Equal(t, true, got["enabled"])
	assert.Equal(t, []any{"firewall", "ids", "proxy"}, got["indexes"])
	assert.Equal(t, "secops-prod", got["label"], "string defaults render against the built context")
	assert.Equal(t, json.Number("10"), got["limit"])

	assert.Equal(t, "60", params["threshold"], "input is not modified")
	assert.NotContains(t, params, "label")
}

func TestResolve_Errors(t *testing.T) {
	tpl := mustParse(t, typedTemplate)

	_, err := tpl.Resolve(map[string]any{
		"threshold": "lots",
		"enabled":   3,
		"indexes":   map[string]any{},
	}, nil)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "parameter 'threshold' must be a number")
	assert.Contains(t, err.Error(), "parameter 'enabled' must be a boolean")
	assert.Contains(t, err.Error(), "parameter 'indexes' must be an array")
	assert.Contains(t, err.Error(), "required parameter 'owner' not provided")
}

func TestResolve_RequiredWithDefault(t *testing.T) {
	tpl := mustParse(t, testTemplate)

	got, err := tpl.Resolve(map[string]any{"ENV_NAME": "test"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "test Test Dashboard", got["dashboard_title"])
	assert.Equal(t, "security", got["primary_index"])
}

func TestCoerce_BooleanFalseStrings(t *testing.T) {
	for _, s := range []string{"false", "no", "0", "off", "maybe"} {
		v, err := coerce("boolean", s)
		require.NoError(t, err)
		assert.Equal(t, false, v, s)
	}
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"params.json": `{"primary_index": "main", "secondary_indexes": ["a", "b"], "threshold": 5}`,
		"params.yaml": "primary_index: main\nsecondary_indexes:\n  - a\n  - b\nthreshold: 5\n",
		"params.toml": "primary_index = \"main\"\nsecondary_indexes = [\"a\", \"b\"]\nthreshold = 5\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			params, err := LoadParams(path)
			require.NoError(t, err)

			assert.Equal(t, "main", params["primary_index"])
			assert.Len(t, params["secondary_indexes"], 2)
			assert.EqualValues(t, 5, params["threshold"])
		})
	}
}

func TestLoadParams_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadParams(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	path := filepath.Join(dir, "params.ini")
	require.NoError(t, os.WriteFile(path, []byte("a=b"), 0o600))
	_, err = LoadParams(path)
	require.ErrorContains(t, err, "unsupported params file format")
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{
		"primary_index=main",
		"query=index=main | stats count",
		`indexes=["a","b"]`,
		"empty=",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"primary_index": "main",
		"query":         "index=main | stats count",
		"indexes":       []any{"a", "b"},
		"empty":         "",
	}, got)

	_, err = ParseAssignments([]string{"novalue"})
	require.Error(t, err)
}
