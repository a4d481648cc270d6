package validate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/validate"
)

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, validate.Policy{
		Strict:         false,
		MaxOutputBytes: 100000,
		SlowRender:     time.Second,
		PreviewBytes:   200,
	}, validate.DefaultPolicy())
}

func TestReportMerge(t *testing.T) {
	r := validate.Report{Errors: []string{"a"}, Size: 10}
	r.Merge(validate.Report{Warnings: []string{"w"}, RenderTime: time.Millisecond})

	assert.False(t, r.OK())
	assert.Equal(t, []string{"w"}, r.Warnings)
	assert.Equal(t, 10, r.Size)
	assert.Equal(t, time.Millisecond, r.RenderTime)
	assert.True(t, validate.Report{Warnings: []string{"only warnings"}}.OK())
}

func TestSyntax(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		strict   bool
		errors   []string
		warnings []string
	}{
		{
			name: "clean JSON template",
			text: `{"a": {"b": "{{x}}"}, "c": [{{#each xs}}"{{this}}"{{/each}}]}`,
		},
		{
			name:   "unterminated expression",
			text:   "{\n  \"a\": \"{{x\"\n}",
			errors: []string{"Unterminated template expression at line 2, column 9"},
		},
		{
			name: "unmatched blocks",
			text: `{{#each xs}}{{#if a}}{{/if}}{{/if}}{{#with y}}`,
			errors: []string{
				"Unmatched #each blocks: 1 opens, 0 closes",
				"Unmatched #if blocks: 1 opens, 2 closes",
				"Unmatched #with blocks: 1 opens, 0 closes",
			},
		},
		{
			name:     "triple braces",
			text:     `{"a": "{{{raw}}}"}`,
			warnings: []string{"Triple braces found - use double braces for JSON templates"},
		},
		{
			name:     "multi-line expression",
			text:     "{\"a\": \"{{x\n}}\"}",
			warnings: []string{"Multi-line template expressions may cause JSON parsing issues"},
		},
		{
			name:     "quotes inside expression",
			text:     `{"a": "{{x|replace '"' 'y'}}"}`,
			warnings: []string{"Template expressions containing quotes may break JSON"},
		},
		{
			name: "strict checks are off by default",
			text: `{"q": "index=* | transaction host | join x"}`,
		},
		{
			name:   "strict checks",
			text:   `{"q": "index=* | transaction host | join x"}`,
			strict: true,
			warnings: []string{
				"Wildcard searches found - ensure appropriate time bounds for security",
				"Consider using stats instead of transaction for better performance",
				"Consider using stats instead of join for better performance",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validate.Syntax(tt.text, tt.strict)
			assert.Equal(t, tt.errors, r.Errors)
			assert.Equal(t, tt.warnings, r.Warnings)
		})
	}
}

func TestSyntax_ComplexQueries(t *testing.T) {
	line := `"index=main | stats count | sort - count | head 5"`
	text := "[" + strings.Repeat(line+",\n", 11) + "0]"

	assert.Empty(t, validate.Syntax(text, false).Warnings)
	assert.Contains(t, validate.Syntax(text, true).Warnings,
		"Found 11 complex queries - consider simplifying for performance")
}

func TestRender(t *testing.T) {
	policy := validate.DefaultPolicy()

	r := validate.Render(nil, `{"title": "{{t}}"}`, map[string]any{"t": "ok"}, policy)
	assert.True(t, r.OK())
	assert.Equal(t, len(`{"title": "ok"}`), r.Size)

	r = validate.Render(nil, `{"title": "{{t}}"}`, map[string]any{"t": `a "quoted" title`}, policy)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "Template rendering produces invalid JSON")
	assert.Contains(t, r.Errors[0], `a "quoted"`)

	r = validate.Render(tmpl.New(tmpl.WithStrict(true)), `{"title": "{{t}}"}`, map[string]any{}, policy)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "Template rendering failed")
}

func TestRender_Strict(t *testing.T) {
	policy := validate.DefaultPolicy()
	policy.Strict = true
	policy.MaxOutputBytes = 10

	r := validate.Render(nil, `{"version": "2.0", "visualizations": {"v1": {}}}`, nil, policy)

	assert.Equal(t, []string{"Visualization 'v1' missing type field"}, r.Errors)
	assert.Contains(t, r.Warnings, "Dashboard missing recommended field: title")
	assert.Contains(t, r.Warnings, "Unknown dashboard version: 2.0")
	assert.Contains(t, r.Warnings, "Large dashboard size (48 bytes) - may impact Splunk performance")
}

func TestDashboard(t *testing.T) {
	errs, warns := validate.Dashboard(map[string]any{
		"version": "1.1",
		"title":   "SOC",
		"dataSources": map[string]any{
			"ds_b": map[string]any{"type": "ds.custom"},
			"ds_a": map[string]any{"options": map[string]any{}},
			"ds_c": map[string]any{"type": "ds.search"},
		},
		"visualizations": map[string]any{
			"viz_1": map[string]any{"type": "splunk.line"},
			"viz_2": map[string]any{"type": "splunk.map"},
			"viz_3": "not an object",
		},
	})

	assert.Equal(t, []string{
		"DataSource 'ds_a' missing type field",
		"Visualization 'viz_3' must be an object",
	}, errs)
	assert.Equal(t, []string{
		"DataSource 'ds_b' has unusual type: ds.custom",
		"Visualization 'viz_2' uses non-standard type: splunk.map",
	}, warns)
}

func TestTemplate(t *testing.T) {
	content := `{
  "template_info": {"name": "soc", "title": "SOC", "description": "SOC overview"},
  "parameters": {
    "dashboard_title": {"type": "string", "default": "{{ENV_NAME}} SOC"},
    "extra_indexes": {"type": "array"}
  },
  "dashboard": {
    "version": "1.1",
    "title": "{{dashboard_title}}",
    "dataSources": {
      "ds_main": {"type": "ds.search", "options": {"query": "index={{primary_index}} OR index IN ({{#each extra_indexes}}{{this}} {{/each}})"}}
    }
  }
}`
	tpl, err := dashboard.Parse("soc", "soc.json", []byte(content), nil)
	require.NoError(t, err)

	policy := validate.DefaultPolicy()
	policy.Strict = true
	r := validate.Template(nil, tpl, policy)

	assert.True(t, r.OK(), "errors: %v", r.Errors)
	assert.Empty(t, r.Warnings)
	assert.Positive(t, r.Size)
}

func TestTemplate_Handlebars(t *testing.T) {
	content := `{"template_info": {"name": "hb", "title": "HB", "description": "d"},
 "dashboard": {"title": "{{dashboard_title}}", "version": "1.1", "visualizations": {
 {{#each secondary_indexes}}"viz_{{this}}": {"type": "splunk.table"}{{#unless @last}},{{/unless}}{{/each}}}}}`
	tpl, err := dashboard.Parse("hb", "hb.json.hbs", []byte(content), nil)
	require.NoError(t, err)
	require.True(t, tpl.Handlebars)

	policy := validate.DefaultPolicy()
	policy.Strict = true
	r := validate.Template(nil, tpl, policy)

	assert.True(t, r.OK(), "errors: %v", r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestTemplate_UndeclaredReferences(t *testing.T) {
	content := `{
  "template_info": {"name": "net", "title": "Net", "description": "d"},
  "parameters": {"site": {"type": "string", "default": "hq"}},
  "dashboard": {
    "version": "1.1",
    "title": "{{site}} {{ENV_NAME}} {{region.name|upper}}",
    "description": "{{#if show_owner}}{{owner}}{{/if}}{{#each primary_indexes}}{{this}}{{@index}}{{/each}}"
  }
}`
	tpl, err := dashboard.Parse("net", "net.json", []byte(content), nil)
	require.NoError(t, err)

	r := validate.Template(nil, tpl, validate.DefaultPolicy())

	assert.True(t, r.OK(), "errors: %v", r.Errors)
	assert.Equal(t, []string{
		"Template references undeclared parameter: region",
		"Template references undeclared parameter: show_owner",
		"Template references undeclared parameter: owner",
	}, r.Warnings)
}

func TestTemplate_StructureErrors(t *testing.T) {
	tpl, err := dashboard.Parse("x", "x.json", []byte(`{"dashboard": {"title": "{{#if x}}"}}`), nil)
	require.NoError(t, err)

	r := validate.Template(nil, tpl, validate.DefaultPolicy())

	assert.Contains(t, r.Errors, "Missing required section: template_info")
	assert.Contains(t, r.Errors, "Unmatched #if blocks: 1 opens, 0 closes")
}
